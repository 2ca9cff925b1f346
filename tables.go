// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// SegmentDef is a minimal view of a SEGDEF entry as it is known to the
// SegmentTable: enough for other records (FIXUPP, PUBDEF, LINNUM) to
// resolve a segment index without reaching back into the record list.
type SegmentDef struct {
	NameIndex    int // into NameTable
	ClassIndex   int // into NameTable
	OverlayIndex int // into NameTable
}

// GroupDef is the GroupTable's view of a GRPDEF entry.
type GroupDef struct {
	NameIndex int // into NameTable
	Segments  []int
}

// ExternDef is the ExternTable's view of an EXTDEF/COMDEF/LEXTDEF/LCOMDEF/
// CEXTDEF entry. Communal fields are populated only for COMDEF/LCOMDEF.
type ExternDef struct {
	Name       string
	TypeIndex  int
	IsCommunal bool
	DataType   byte // 0x61 FAR, 0x62 NEAR; valid only when IsCommunal
	Length     uint64
}

// tables holds the four ordered, 1-indexed, append-only collections
// populated as a module's records are decoded (§3). Index 0 always means
// "not present"; tables[k] for k>=1 is entry number k.
type tables struct {
	names    []string     // NameTable; index 0 unused
	segments []SegmentDef // SegmentTable
	groups   []GroupDef   // GroupTable
	externs  []ExternDef  // ExternTable
}

func newTables() *tables {
	// Seed index 0 as the "not present" sentinel so table[i] in decoded
	// records can be used directly as a slice index without an off-by-one.
	return &tables{
		names:    []string{""},
		segments: []SegmentDef{{}},
		groups:   []GroupDef{{}},
		externs:  []ExternDef{{}},
	}
}

func (t *tables) addName(n string) int {
	t.names = append(t.names, n)
	return len(t.names) - 1
}

func (t *tables) addSegment(s SegmentDef) int {
	t.segments = append(t.segments, s)
	return len(t.segments) - 1
}

func (t *tables) addGroup(g GroupDef) int {
	t.groups = append(t.groups, g)
	return len(t.groups) - 1
}

func (t *tables) addExtern(x ExternDef) int {
	t.externs = append(t.externs, x)
	return len(t.externs) - 1
}

// checkName validates i against invariant 3: every index must refer to an
// entry defined by a preceding record. i==0 ("not specified") always
// passes.
func (t *tables) checkName(i int) error {
	if i == 0 {
		return nil
	}
	if i < 0 || i >= len(t.names) {
		return &DanglingIndexError{Table: "NameTable", Value: i, Max: len(t.names) - 1}
	}
	return nil
}

func (t *tables) checkSegment(i int) error {
	if i == 0 {
		return nil
	}
	if i < 0 || i >= len(t.segments) {
		return &DanglingIndexError{Table: "SegmentTable", Value: i, Max: len(t.segments) - 1}
	}
	return nil
}

func (t *tables) checkGroup(i int) error {
	if i == 0 {
		return nil
	}
	if i < 0 || i >= len(t.groups) {
		return &DanglingIndexError{Table: "GroupTable", Value: i, Max: len(t.groups) - 1}
	}
	return nil
}

func (t *tables) checkExtern(i int) error {
	if i == 0 {
		return nil
	}
	if i < 0 || i >= len(t.externs) {
		return &DanglingIndexError{Table: "ExternTable", Value: i, Max: len(t.externs) - 1}
	}
	return nil
}
