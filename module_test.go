// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

import "testing"

// buildMinimalModule assembles a small but complete OMF module byte stream:
// THEADR, LNAMES, SEGDEF16, PUBDEF16, LEDATA16, MODEND16. It exercises the
// module-level state machine (NameTable/SegmentTable population feeding a
// later record) rather than any single record codec in isolation.
func buildMinimalModule(t *testing.T) []byte {
	t.Helper()
	out := &encoder{}

	theadr := &encoder{}
	theadr.lpName([]byte("TESTMOD.OBJ"))
	writeFramedRecord(out, THEADR, theadr.b)

	lnames := &encoder{}
	lnames.lpName([]byte("_TEXT"))
	lnames.lpName([]byte("CODE"))
	writeFramedRecord(out, LNAMES, lnames.b)

	segdef := &encoder{}
	body := SEGDEFBody{Alignment: 3, Combination: 2, NameIndex: 1, ClassIndex: 2}
	encodeSEGDEF(segdef, body, 2, false)
	writeFramedRecord(out, SEGDEF16, segdef.b)

	pubdef := &encoder{}
	pubdef.omfIndex(0) // group
	pubdef.omfIndex(1) // segment
	pubdef.lpName([]byte("_main"))
	pubdef.uWidth(0, 2)
	pubdef.omfIndex(0)
	writeFramedRecord(out, PUBDEF16, pubdef.b)

	ledata := &encoder{}
	ledata.omfIndex(1)
	ledata.uWidth(0, 2)
	ledata.bytes([]byte{0xB8, 0x00, 0x00, 0xCD, 0x21}) // mov ax,0 ; int 21h
	writeFramedRecord(out, LEDATA16, ledata.b)

	modend := &encoder{}
	modend.u8(0x80) // IsMain only
	writeFramedRecord(out, MODEND16, modend.b)

	return out.b
}

func TestParseModuleMinimal(t *testing.T) {
	data := buildMinimalModule(t)

	m, err := ParseModule(data, nil)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(m.Warnings) != 0 {
		t.Errorf("ParseModule warnings = %v, want none", m.Warnings)
	}
	if m.Variant != TisOmf86 {
		t.Errorf("Module.Variant = %v, want TisOmf86", m.Variant)
	}
	if len(m.Records) != 6 {
		t.Fatalf("Module.Records has %d entries, want 6", len(m.Records))
	}
	if name, ok := m.NameAt(1); !ok || name != "_TEXT" {
		t.Errorf("NameAt(1) = %q, %v; want _TEXT, true", name, ok)
	}
	if m.NumSegments() != 1 {
		t.Errorf("NumSegments() = %d, want 1", m.NumSegments())
	}

	theadr, ok := m.Records[0].Body.(THEADRBody)
	if !ok || theadr.Name != "TESTMOD.OBJ" {
		t.Fatalf("Records[0] = %+v, want THEADRBody{Name: TESTMOD.OBJ}", m.Records[0].Body)
	}
}

func TestDumpModuleRoundTrip(t *testing.T) {
	data := buildMinimalModule(t)
	m, err := ParseModule(data, nil)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	out, err := DumpModule(m)
	if err != nil {
		t.Fatalf("DumpModule: %v", err)
	}
	if string(out) != string(data) {
		t.Errorf("DumpModule round trip mismatch:\n got %v\nwant %v", out, data)
	}

	m2, err := ParseModule(out, nil)
	if err != nil {
		t.Fatalf("re-ParseModule: %v", err)
	}
	if len(m2.Records) != len(m.Records) {
		t.Errorf("re-parsed module has %d records, want %d", len(m2.Records), len(m.Records))
	}
}

func TestVerifyChecksumsCleanModule(t *testing.T) {
	data := buildMinimalModule(t)
	m, err := ParseModule(data, nil)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if warnings := VerifyChecksums(m); len(warnings) != 0 {
		t.Errorf("VerifyChecksums = %v, want none", warnings)
	}
}

func TestParseModuleRejectsMissingTHEADR(t *testing.T) {
	out := &encoder{}
	modend := &encoder{}
	modend.u8(0x80)
	writeFramedRecord(out, MODEND16, modend.b)

	if _, err := ParseModule(out.b, nil); err == nil {
		t.Fatal("ParseModule without a leading THEADR/LHEADR succeeded, want an error")
	}
}

func TestParseModuleRejectsMissingMODEND(t *testing.T) {
	out := &encoder{}
	theadr := &encoder{}
	theadr.lpName([]byte("X"))
	writeFramedRecord(out, THEADR, theadr.b)

	if _, err := ParseModule(out.b, nil); err == nil {
		t.Fatal("ParseModule without a trailing MODEND succeeded, want an error")
	}
}

func TestParseModuleDanglingSegmentReference(t *testing.T) {
	out := &encoder{}
	theadr := &encoder{}
	theadr.lpName([]byte("X"))
	writeFramedRecord(out, THEADR, theadr.b)

	ledata := &encoder{}
	ledata.omfIndex(5) // no SEGDEF ever defined
	ledata.uWidth(0, 2)
	writeFramedRecord(out, LEDATA16, ledata.b)

	modend := &encoder{}
	modend.u8(0x80)
	writeFramedRecord(out, MODEND16, modend.b)

	if _, err := ParseModule(out.b, nil); err == nil {
		t.Fatal("ParseModule with a dangling segment reference succeeded, want an error")
	}
}

func TestParseModuleVariantHintOverridesDetection(t *testing.T) {
	data := buildMinimalModule(t)
	hint := OmfWithMsExt
	m, err := ParseModule(data, &hint)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if m.Variant != OmfWithMsExt {
		t.Errorf("Module.Variant = %v, want the hinted OmfWithMsExt", m.Variant)
	}
}

func TestComputeAnomaliesDuplicatePublicName(t *testing.T) {
	out := &encoder{}
	theadr := &encoder{}
	theadr.lpName([]byte("X"))
	writeFramedRecord(out, THEADR, theadr.b)

	lnames := &encoder{}
	lnames.lpName([]byte("_TEXT"))
	lnames.lpName([]byte("CODE"))
	writeFramedRecord(out, LNAMES, lnames.b)

	segdef := &encoder{}
	encodeSEGDEF(segdef, SEGDEFBody{Alignment: 3, NameIndex: 1, ClassIndex: 2}, 2, false)
	writeFramedRecord(out, SEGDEF16, segdef.b)

	for i := 0; i < 2; i++ {
		pubdef := &encoder{}
		pubdef.omfIndex(0)
		pubdef.omfIndex(1)
		pubdef.lpName([]byte("_dup"))
		pubdef.uWidth(0, 2)
		pubdef.omfIndex(0)
		writeFramedRecord(out, PUBDEF16, pubdef.b)
	}

	modend := &encoder{}
	modend.u8(0x80)
	writeFramedRecord(out, MODEND16, modend.b)

	m, err := ParseModule(out.b, nil)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	found := false
	for _, a := range m.Anomalies {
		if a == AnoDuplicatePublicName {
			found = true
		}
	}
	if !found {
		t.Errorf("Module.Anomalies = %v, want it to include AnoDuplicatePublicName", m.Anomalies)
	}
}
