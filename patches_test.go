// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

import "testing"

func TestBAKPATSegmentForm(t *testing.T) {
	tbl := newTables()
	tbl.addSegment(SegmentDef{})

	body := BAKPATBody{SegmentIndex: 1, Pairs: []BakpatPair{{Offset: 0x10, Value: 0x20}}}
	e := &encoder{}
	encodeBAKPAT(e, body, 2)

	got, warnings, err := decodeBAKPAT(newCursor(e.b), tbl, 2, false, false)
	if err != nil {
		t.Fatalf("decodeBAKPAT: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("decodeBAKPAT warnings = %v, want none", warnings)
	}
	if got.SegmentIndex != 1 || len(got.Pairs) != 1 || got.Pairs[0].Offset != 0x10 || got.Pairs[0].Value != 0x20 {
		t.Fatalf("BAKPAT round trip = %+v", got)
	}
}

func TestNBKPATNamedForm(t *testing.T) {
	tbl := newTables()
	tbl.addName("FIXUP_SYM")

	body := BAKPATBody{IsNamed: true, LocationType: BakpatLocWord, NameIndex: 1, Pairs: []BakpatPair{{Offset: 4, Value: 8}}}
	e := &encoder{}
	encodeBAKPAT(e, body, 2)

	got, warnings, err := decodeBAKPAT(newCursor(e.b), tbl, 2, true, false)
	if err != nil {
		t.Fatalf("decodeBAKPAT: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("decodeBAKPAT warnings = %v, want none", warnings)
	}
	if !got.IsNamed || got.LocationType != BakpatLocWord || got.NameIndex != 1 {
		t.Fatalf("NBKPAT round trip = %+v", got)
	}
}

func TestNBKPATDwordOn16BitWarns(t *testing.T) {
	tbl := newTables()
	tbl.addName("FIXUP_SYM")

	body := BAKPATBody{IsNamed: true, LocationType: BakpatLocDword, NameIndex: 1}
	e := &encoder{}
	encodeBAKPAT(e, body, 2)

	_, warnings, err := decodeBAKPAT(newCursor(e.b), tbl, 2, true, false)
	if err != nil {
		t.Fatalf("decodeBAKPAT: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Kind != WarnReservedBitsNonzero {
		t.Errorf("decodeBAKPAT warnings = %v, want a single WarnReservedBitsNonzero", warnings)
	}
}

func TestBAKPATDanglingSegment(t *testing.T) {
	tbl := newTables()
	e := &encoder{}
	e.omfIndex(4) // no such segment

	if _, _, err := decodeBAKPAT(newCursor(e.b), tbl, 2, false, false); err == nil {
		t.Fatal("decodeBAKPAT with dangling segment index succeeded, want an error")
	}
}

func TestLINSYMRoundTrip(t *testing.T) {
	tbl := newTables()
	tbl.addName("_main")

	body := LINSYMBody{Flags: 0x01, PublicNameIndex: 1, Lines: []LineEntry{{Line: 10, Offset: 0}, {Line: 12, Offset: 8}}}
	e := &encoder{}
	encodeLINSYM(e, body, 2)

	got, err := decodeLINSYM(newCursor(e.b), tbl, 2)
	if err != nil {
		t.Fatalf("decodeLINSYM: %v", err)
	}
	if got.Flags != 0x01 || len(got.Lines) != 2 || got.Lines[1].Line != 12 || got.Lines[1].Offset != 8 {
		t.Fatalf("LINSYM round trip = %+v", got)
	}
}
