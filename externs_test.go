// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

import "testing"

func TestEXTDEFRoundTrip(t *testing.T) {
	e := &encoder{}
	e.lpName([]byte("_printf"))
	e.omfIndex(0)
	e.lpName([]byte("_malloc"))
	e.omfIndex(3)

	tbl := newTables()
	body, err := decodeEXTDEF(newCursor(e.b), tbl, false, false)
	if err != nil {
		t.Fatalf("decodeEXTDEF: %v", err)
	}
	if len(body.Entries) != 2 {
		t.Fatalf("EXTDEF entries = %d, want 2", len(body.Entries))
	}
	if body.Entries[0].Name != "_printf" || body.Entries[0].TypeIndex != 0 {
		t.Errorf("entry[0] = %+v", body.Entries[0])
	}
	if body.Entries[1].Name != "_malloc" || body.Entries[1].TypeIndex != 3 {
		t.Errorf("entry[1] = %+v", body.Entries[1])
	}
	if tbl.externs[1].Name != "_printf" || tbl.externs[2].Name != "_malloc" {
		t.Errorf("ExternTable not populated: %+v", tbl.externs)
	}

	out := &encoder{}
	encodeEXTDEF(out, body)
	if string(out.b) != string(e.b) {
		t.Errorf("encodeEXTDEF round trip = %v, want %v", out.b, e.b)
	}
}

func TestCEXTDEFResolvesNameIndex(t *testing.T) {
	tbl := newTables()
	tbl.addName("_strcpy")

	e := &encoder{}
	e.omfIndex(1) // name index into NameTable
	e.omfIndex(0)

	body, err := decodeEXTDEF(newCursor(e.b), tbl, false, true)
	if err != nil {
		t.Fatalf("decodeEXTDEF (CEXTDEF): %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].Name != "_strcpy" || body.Entries[0].NameIndex != 1 {
		t.Fatalf("CEXTDEF entry = %+v", body.Entries)
	}
}

func TestEXTDEFDanglingNameIndex(t *testing.T) {
	tbl := newTables()
	e := &encoder{}
	e.omfIndex(5) // no such NameTable entry
	e.omfIndex(0)

	_, err := decodeEXTDEF(newCursor(e.b), tbl, false, true)
	if _, ok := err.(*DanglingIndexError); !ok {
		t.Fatalf("decodeEXTDEF with dangling name index = %v, want *DanglingIndexError", err)
	}
}

func TestDecodeComdefLengthBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint64
	}{
		{"single byte", []byte{0x80}, 0x80},
		{"single byte zero", []byte{0x00}, 0},
		{"two-byte form", []byte{0x81, 0x34, 0x12}, 0x1234},
		{"three-byte form", []byte{0x84, 0x01, 0x02, 0x03}, 0x030201},
		{"four-byte form", []byte{0x88, 0x78, 0x56, 0x34, 0x12}, 0x12345678},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeComdefLength(newCursor(tt.in))
			if err != nil {
				t.Fatalf("decodeComdefLength(%v): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("decodeComdefLength(%v) = %#x, want %#x", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeComdefLengthChoosesSmallestForm(t *testing.T) {
	tests := []struct {
		v        uint64
		wantLen  int
	}{
		{0, 1},
		{0x80, 1},
		{0x81, 3},
		{0xFFFF, 3},
		{0x10000, 4},
		{0xFFFFFF, 4},
		{0x1000000, 5},
	}
	for _, tt := range tests {
		e := &encoder{}
		encodeComdefLength(e, tt.v)
		if len(e.b) != tt.wantLen {
			t.Errorf("encodeComdefLength(%#x) produced %d bytes, want %d", tt.v, len(e.b), tt.wantLen)
		}
		got, err := decodeComdefLength(newCursor(e.b))
		if err != nil || got != tt.v {
			t.Errorf("encodeComdefLength(%#x) round trip = %#x, %v", tt.v, got, err)
		}
	}
}

func TestCOMDEFRoundTrip(t *testing.T) {
	e := &encoder{}
	e.lpName([]byte("_buffer"))
	e.omfIndex(0)
	e.u8(ComdefFar)
	encodeComdefLength(e, 1024)

	tbl := newTables()
	body, err := decodeCOMDEF(newCursor(e.b), tbl, false)
	if err != nil {
		t.Fatalf("decodeCOMDEF: %v", err)
	}
	if len(body.Entries) != 1 {
		t.Fatalf("COMDEF entries = %d, want 1", len(body.Entries))
	}
	entry := body.Entries[0]
	if entry.Name != "_buffer" || entry.DataType != ComdefFar || entry.Length != 1024 {
		t.Fatalf("COMDEF entry = %+v", entry)
	}
	if !tbl.externs[1].IsCommunal || tbl.externs[1].Length != 1024 {
		t.Fatalf("ExternTable communal entry = %+v", tbl.externs[1])
	}

	out := &encoder{}
	encodeCOMDEF(out, body)
	if string(out.b) != string(e.b) {
		t.Errorf("encodeCOMDEF round trip = %v, want %v", out.b, e.b)
	}
}
