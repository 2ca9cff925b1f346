// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// RecordBody is the per-type payload of a Record. It is a closed set: every
// concrete type below implements it, giving the tagged-union shape spec.md
// §9 calls for (a sum type keyed on the record-type byte) instead of a
// visitor or inheritance hierarchy.
type RecordBody interface {
	recordBody()
}

// Record is one fully decoded unit of an OMF stream. The raw checksum byte
// and original wire length are retained alongside the decoded Body (§3);
// DumpModule does not reuse them but recomputes both from the re-encoded
// body, and VerifyChecksums compares the retained checksum against it.
type Record struct {
	Type     RecordType
	Length   int // record_length as read from the wire (body + checksum byte)
	Checksum byte
	Body     RecordBody
	// DataAnchor is the index into the owning Module's Records of the most
	// recent LEDATA/LIDATA/COMDAT record, for FIXUPP records only (-1
	// otherwise or when none preceded). It lets the dumper reproduce the
	// data/fixup grouping of the original file (§4.5 decoder invariants).
	DataAnchor int
}

// OpaqueBody preserves a record's bytes verbatim: used for the obsolete
// record types (§6) and for any other record type ParseModule has no
// decoder for (LINNUM among them). Unknown COMENT classes and unsupported
// GRPDEF components are kept in CommentBody and GRPDEFBody instead.
type OpaqueBody struct {
	Data []byte
}

func (OpaqueBody) recordBody() {}

// THEADRBody is the body of THEADR (0x80) and LHEADR (0x82): a single
// length-prefixed module or source-file name.
type THEADRBody struct {
	Name string
}

func (THEADRBody) recordBody() {}

// MODENDBody is the body of MODEND (0x8A/0x8B).
type MODENDBody struct {
	IsMain    bool
	IsStart   bool
	IsSegment bool // X bit: start address' Frame Datum is a segment, not group
	// Target is only populated when IsStart is true.
	Target FixupTarget
}

func (MODENDBody) recordBody() {}

// EXTDEFBody is the body of EXTDEF (0x8C), LEXTDEF (0xB4) and CEXTDEF
// (0xBC). For CEXTDEF, Name holds the literal string resolved from the
// referenced LNAME at decode time (NameIndex carries the raw LNAME index).
type EXTDEFBody struct {
	IsLocal    bool // true for LEXTDEF
	IsComdat   bool // true for CEXTDEF ("name" is an LNAME index, not text)
	Entries    []ExternEntry
}

// ExternEntry is one (name, type_index) pair within an EXTDEF family
// record.
type ExternEntry struct {
	Name      string
	NameIndex int // LNAME index, populated only when the owning record is CEXTDEF
	TypeIndex int
}

func (EXTDEFBody) recordBody() {}

// COMDEFBody is the body of COMDEF (0xB0) / LCOMDEF (0xB8).
type COMDEFBody struct {
	IsLocal bool
	Entries []ComdefEntry
}

// ComdefEntry is one communal-variable definition.
type ComdefEntry struct {
	Name      string
	TypeIndex int
	DataType  byte // 0x61 FAR, 0x62 NEAR
	Length    uint64
}

func (COMDEFBody) recordBody() {}

// PUBDEFBody is the body of PUBDEF (0x90/0x91) / LPUBDEF (0xB6/0xB7).
type PUBDEFBody struct {
	IsLocal      bool
	GroupIndex   int
	SegmentIndex int
	BaseFrame    *int // present iff SegmentIndex == 0
	Publics      []PublicEntry
}

// PublicEntry is one (name, offset, type_index) triple in a PUBDEF family
// record.
type PublicEntry struct {
	Name      string
	Offset    uint32
	TypeIndex int
}

func (PUBDEFBody) recordBody() {}

// LNAMESBody is the body of LNAMES (0x96) / LLNAMES (0xCA): the decoded
// names are appended to the module's NameTable as a side effect of parsing;
// Names here is the record-local list for dump purposes.
type LNAMESBody struct {
	Names []string
}

func (LNAMESBody) recordBody() {}

// SEGDEFBody is the body of SEGDEF (0x98/0x99).
type SEGDEFBody struct {
	Alignment    byte // A: 3 bits
	Combination  byte // C: 3 bits
	Big          bool // B: segment is exactly 64KiB (0x98) or 4GiB (0x99)
	Use32        bool // P bit name is historically "P" (proc); modern readers call it Use32/Use16 per alignment semantics below
	FrameNumber  uint16
	FrameOffset  uint8
	IsAbsolute   bool // Alignment == 0
	Length       uint64
	NameIndex    int
	ClassIndex   int
	OverlayIndex int
	// AccessAttr is the optional PharLap/Easy-OMF access-attribute byte
	// (§4.4 SEGDEF, §9 open question 2). Present reports whether a byte
	// remained before the checksum to decode it from.
	AccessAttrPresent  bool
	AccessAttrReserved byte
	AccessAttrU        byte
	AccessAttrAT       byte
}

func (SEGDEFBody) recordBody() {}

// GRPDEFBody is the body of GRPDEF (0x9A).
type GRPDEFBody struct {
	NameIndex int
	Segments  []int
	// Unsupported preserves any non-0xFF components verbatim, in file
	// order interleaved conceptually with Segments; each carries its raw
	// type tag and bytes for round-trip (§4.4).
	Unsupported []GRPDEFComponent
}

// GRPDEFComponent is a GRPDEF component this module recognizes the type
// tag of but does not interpret (0xFE extern-index, 0xFD name-triple, 0xFB
// LTL data, 0xFA frame/offset).
type GRPDEFComponent struct {
	Tag  byte
	Data []byte
}

func (GRPDEFBody) recordBody() {}

// LEDATABody is the body of LEDATA (0xA0/0xA1).
type LEDATABody struct {
	SegmentIndex int
	DataOffset   uint32
	Data         []byte
}

func (LEDATABody) recordBody() {}

// LIDATABody is the body of LIDATA (0xA2/0xA3).
type LIDATABody struct {
	SegmentIndex int
	DataOffset   uint32
	Blocks       []IteratedBlock
}

// IteratedBlock is one repeat_count/block_count/content triple (§4.4
// LIDATA). Exactly one of Nested or Leaf is populated, selected by
// BlockCount.
type IteratedBlock struct {
	RepeatCount uint32
	BlockCount  uint16
	Nested      []IteratedBlock
	Leaf        []byte
}

func (LIDATABody) recordBody() {}

// BAKPATBody is the body of BAKPAT (0xB2/0xB3) / NBKPAT (0xC8/0xC9).
type BAKPATBody struct {
	IsNamed      bool // true for NBKPAT
	SegmentIndex int  // BAKPAT
	NameIndex    int  // NBKPAT: LNAME index, read after LocationType
	LocationType byte // NBKPAT only: 0=byte/1=word/2=dword (dword only in 0xC9)
	Pairs        []BakpatPair
}

// BakpatPair is one (offset, value) backpatch pair.
type BakpatPair struct {
	Offset uint32
	Value  uint32
}

func (BAKPATBody) recordBody() {}

// COMDATBody is the body of COMDAT (0xC2/0xC3).
type COMDATBody struct {
	Flags              byte
	SelectionCriteria  byte // high 4 bits of attributes
	Allocation         byte // low 4 bits of attributes
	Align              byte
	DataOffset         uint32
	TypeIndex          int
	PublicBaseGroup    int // present iff Allocation == explicit
	PublicBaseSegment  int
	PublicBaseFrame    uint16
	HasPublicBase      bool
	PublicNameIndex    int // LNAME index
	Data               []byte
}

func (COMDATBody) recordBody() {}

// LINSYMBody is the body of LINSYM (0xC4/0xC5).
type LINSYMBody struct {
	Flags           byte
	PublicNameIndex int
	Lines           []LineEntry
}

// LineEntry is one (line_number, offset) pair.
type LineEntry struct {
	Line   uint16
	Offset uint32
}

func (LINSYMBody) recordBody() {}

// ALIASBody is the body of ALIAS (0xC6).
type ALIASBody struct {
	Entries []AliasEntry
}

// AliasEntry is one (alias_name, substitute_name) pair.
type AliasEntry struct {
	Alias      string
	Substitute string
}

func (ALIASBody) recordBody() {}

// VERNUMBody is the body of VERNUM (0xCC).
type VERNUMBody struct {
	Version string
}

func (VERNUMBody) recordBody() {}

// VENDEXTBody is the body of VENDEXT (0xCE).
type VENDEXTBody struct {
	VendorNumber uint16
	Data         []byte
}

func (VENDEXTBody) recordBody() {}
