// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

import "testing"

func TestSEGDEFRoundTrip(t *testing.T) {
	tbl := newTables()
	tbl.addName("_TEXT")
	tbl.addName("CODE")

	body := SEGDEFBody{
		Alignment:   3, // PARA
		Combination: 2, // PUBLIC
		Use32:       false,
		Length:      0x200,
		NameIndex:   1,
		ClassIndex:  2,
		OverlayIndex: 0,
	}
	e := &encoder{}
	encodeSEGDEF(e, body, 2, false)

	got, err := decodeSEGDEF(newCursor(e.b), tbl, 2, false)
	if err != nil {
		t.Fatalf("decodeSEGDEF: %v", err)
	}
	if got.Alignment != body.Alignment || got.Combination != body.Combination || got.Length != body.Length {
		t.Fatalf("SEGDEF round trip = %+v, want %+v", got, body)
	}
	if got.IsAbsolute {
		t.Error("SEGDEF.IsAbsolute = true for a non-zero-alignment segment")
	}
}

func TestSEGDEFBigSegment(t *testing.T) {
	tbl := newTables()
	tbl.addName("_BSS")

	body := SEGDEFBody{Alignment: 3, Combination: 0, Big: true, NameIndex: 1}
	e := &encoder{}
	encodeSEGDEF(e, body, 2, false)

	got, err := decodeSEGDEF(newCursor(e.b), tbl, 2, false)
	if err != nil {
		t.Fatalf("decodeSEGDEF: %v", err)
	}
	if got.Length != 1<<16 {
		t.Errorf("big 16-bit SEGDEF length = %#x, want 0x10000", got.Length)
	}
}

func TestSEGDEFBig32Segment(t *testing.T) {
	tbl := newTables()
	tbl.addName("_BSS32")

	body := SEGDEFBody{Alignment: 3, Combination: 0, Big: true, Use32: true, NameIndex: 1}
	e := &encoder{}
	encodeSEGDEF(e, body, 4, true)

	got, err := decodeSEGDEF(newCursor(e.b), tbl, 4, true)
	if err != nil {
		t.Fatalf("decodeSEGDEF: %v", err)
	}
	if got.Length != 1<<32 {
		t.Errorf("big 32-bit SEGDEF length = %#x, want 0x100000000", got.Length)
	}
}

func TestSEGDEFAbsolute(t *testing.T) {
	tbl := newTables()
	tbl.addName("ABS_SEG")

	e := &encoder{}
	e.u8(0) // ACBP: alignment 0 -> absolute
	e.u16le(0xF000)
	e.u8(0x10)
	e.uWidth(0x100, 2)
	e.omfIndex(1)
	e.omfIndex(0)
	e.omfIndex(0)

	got, err := decodeSEGDEF(newCursor(e.b), tbl, 2, false)
	if err != nil {
		t.Fatalf("decodeSEGDEF: %v", err)
	}
	if !got.IsAbsolute || got.FrameNumber != 0xF000 || got.FrameOffset != 0x10 {
		t.Fatalf("absolute SEGDEF = %+v", got)
	}
}

func TestSEGDEFEasyOmfAccessAttr(t *testing.T) {
	tbl := newTables()
	tbl.addName("_TEXT")

	body := SEGDEFBody{
		Alignment: 3, NameIndex: 1,
		AccessAttrPresent: true, AccessAttrAT: 2, AccessAttrU: 1,
	}
	e := &encoder{}
	encodeSEGDEF(e, body, 2, false)

	got, err := decodeSEGDEF(newCursor(e.b), tbl, 2, false)
	if err != nil {
		t.Fatalf("decodeSEGDEF: %v", err)
	}
	if !got.AccessAttrPresent || got.AccessAttrAT != 2 || got.AccessAttrU != 1 {
		t.Fatalf("EasyOMF access attribute = %+v", got)
	}
}

// TestSEGDEFAccessAttrPresentRegardlessOfVariant guards against gating the
// access-attribute byte on FileVariant: its presence is detected purely by
// whether a byte remains before the checksum, so a TisOmf86 or
// OmfWithMsExt module carrying it must decode and re-dump it unchanged.
func TestSEGDEFAccessAttrPresentRegardlessOfVariant(t *testing.T) {
	tbl := newTables()
	tbl.addName("_TEXT")

	e := &encoder{}
	e.u8(3 << 5) // alignment 3, no other ACBP bits
	e.uWidth(0x100, 2)
	e.omfIndex(1) // name
	e.omfIndex(0) // class
	e.omfIndex(0) // overlay
	e.u8(0x05)    // trailing access-attribute byte

	got, err := decodeSEGDEF(newCursor(e.b), tbl, 2, false)
	if err != nil {
		t.Fatalf("decodeSEGDEF: %v", err)
	}
	if !got.AccessAttrPresent {
		t.Fatalf("decodeSEGDEF dropped the trailing access-attribute byte for a non-EasyOmf386 module: %+v", got)
	}

	out := &encoder{}
	encodeSEGDEF(out, got, 2, false)
	if string(out.b) != string(e.b) {
		t.Errorf("SEGDEF access-attribute round trip = %v, want %v", out.b, e.b)
	}
}

func TestSEGDEFDanglingName(t *testing.T) {
	tbl := newTables()
	e := &encoder{}
	e.u8(3 << 5) // alignment 3, no other bits
	e.uWidth(0, 2)
	e.omfIndex(9) // no such NameTable entry
	e.omfIndex(0) // class
	e.omfIndex(0) // overlay

	if _, err := decodeSEGDEF(newCursor(e.b), tbl, 2, false); err == nil {
		t.Fatal("decodeSEGDEF with dangling name index succeeded, want an error")
	}
}

func TestGRPDEFRoundTrip(t *testing.T) {
	tbl := newTables()
	tbl.addName("DGROUP")
	tbl.addSegment(SegmentDef{})
	tbl.addSegment(SegmentDef{})

	body := GRPDEFBody{NameIndex: 1, Segments: []int{1, 2}}
	e := &encoder{}
	encodeGRPDEF(e, body)

	got, warnings, err := decodeGRPDEF(newCursor(e.b), tbl)
	if err != nil {
		t.Fatalf("decodeGRPDEF: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("decodeGRPDEF warnings = %v, want none", warnings)
	}
	if got.NameIndex != 1 || len(got.Segments) != 2 || got.Segments[0] != 1 || got.Segments[1] != 2 {
		t.Fatalf("GRPDEF round trip = %+v", got)
	}

	out := &encoder{}
	encodeGRPDEF(out, got)
	if string(out.b) != string(e.b) {
		t.Errorf("encodeGRPDEF round trip = %v, want %v", out.b, e.b)
	}
}

func TestGRPDEFUnsupportedComponentPreserved(t *testing.T) {
	tbl := newTables()
	tbl.addName("DGROUP")

	e := &encoder{}
	e.omfIndex(1)
	e.u8(grpComponentExternIdx)
	e.omfIndex(5)

	got, warnings, err := decodeGRPDEF(newCursor(e.b), tbl)
	if err != nil {
		t.Fatalf("decodeGRPDEF: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Kind != WarnUnsupportedGroupComponent {
		t.Fatalf("decodeGRPDEF warnings = %v, want a single WarnUnsupportedGroupComponent", warnings)
	}
	if len(got.Unsupported) != 1 || got.Unsupported[0].Tag != grpComponentExternIdx {
		t.Fatalf("GRPDEF.Unsupported = %+v", got.Unsupported)
	}

	out := &encoder{}
	encodeGRPDEF(out, got)
	if string(out.b) != string(e.b) {
		t.Errorf("encodeGRPDEF round trip of unsupported component = %v, want %v", out.b, e.b)
	}
}
