// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

import "testing"

func TestTHEADRRoundTrip(t *testing.T) {
	c := newCursor(append([]byte{byte(len("MYMOD.OBJ"))}, "MYMOD.OBJ"...))
	body, err := decodeTHEADR(c)
	if err != nil {
		t.Fatalf("decodeTHEADR: %v", err)
	}
	if body.Name != "MYMOD.OBJ" {
		t.Errorf("THEADR name = %q, want %q", body.Name, "MYMOD.OBJ")
	}

	e := &encoder{}
	encodeTHEADR(e, body)
	c2 := newCursor(e.b)
	body2, err := decodeTHEADR(c2)
	if err != nil || body2 != body {
		t.Errorf("THEADR round trip = %+v, %v; want %+v, nil", body2, err, body)
	}
}

func TestLNAMESRoundTrip(t *testing.T) {
	e := &encoder{}
	e.lpName([]byte("_TEXT"))
	e.lpName([]byte("_DATA"))
	e.lpName([]byte("CONST"))

	tbl := newTables()
	body, err := decodeLNAMES(newCursor(e.b), tbl)
	if err != nil {
		t.Fatalf("decodeLNAMES: %v", err)
	}
	want := []string{"_TEXT", "_DATA", "CONST"}
	if len(body.Names) != len(want) {
		t.Fatalf("LNAMES names = %v, want %v", body.Names, want)
	}
	for i, n := range want {
		if body.Names[i] != n {
			t.Errorf("LNAMES.Names[%d] = %q, want %q", i, body.Names[i], n)
		}
	}
	for i, n := range want {
		if got, _ := (&Module{tables: tbl}).NameAt(i + 1); got != n {
			t.Errorf("NameTable[%d] = %q, want %q", i+1, got, n)
		}
	}

	out := &encoder{}
	encodeLNAMES(out, body)
	if string(out.b) != string(e.b) {
		t.Errorf("encodeLNAMES round trip = %v, want %v", out.b, e.b)
	}
}

func TestALIASRoundTrip(t *testing.T) {
	e := &encoder{}
	e.lpName([]byte("OLDNAME"))
	e.lpName([]byte("NEWNAME"))

	body, err := decodeALIAS(newCursor(e.b))
	if err != nil {
		t.Fatalf("decodeALIAS: %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].Alias != "OLDNAME" || body.Entries[0].Substitute != "NEWNAME" {
		t.Fatalf("ALIAS entries = %+v", body.Entries)
	}

	out := &encoder{}
	encodeALIAS(out, body)
	if string(out.b) != string(e.b) {
		t.Errorf("encodeALIAS round trip = %v, want %v", out.b, e.b)
	}
}

func TestVERNUMRoundTrip(t *testing.T) {
	c := newCursor([]byte("2.1"))
	body, err := decodeVERNUM(c)
	if err != nil || body.Version != "2.1" {
		t.Fatalf("decodeVERNUM = %+v, %v; want Version=2.1, nil", body, err)
	}
	e := &encoder{}
	encodeVERNUM(e, body)
	if string(e.b) != "2.1" {
		t.Errorf("encodeVERNUM = %q, want %q", e.b, "2.1")
	}
}

func TestVENDEXTRoundTrip(t *testing.T) {
	e := &encoder{}
	e.u16le(0x00A8)
	e.bytes([]byte{0x01, 0x02, 0x03})

	body, err := decodeVENDEXT(newCursor(e.b))
	if err != nil {
		t.Fatalf("decodeVENDEXT: %v", err)
	}
	if body.VendorNumber != 0x00A8 || string(body.Data) != "\x01\x02\x03" {
		t.Fatalf("VENDEXT body = %+v", body)
	}

	out := &encoder{}
	encodeVENDEXT(out, body)
	if string(out.b) != string(e.b) {
		t.Errorf("encodeVENDEXT round trip = %v, want %v", out.b, e.b)
	}
}
