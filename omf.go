// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package omf implements a parser and dumper for the Relocatable Object
// Module Format (OMF) used by 8086/80286/80386 object files and static
// libraries, following the TIS OMF 1.1 specification and the common vendor
// extensions (Microsoft, Watcom, PharLap Easy OMF-386, IBM, Borland, Intel).
package omf

// RecordType identifies the kind of an OMF record. The least significant
// bit of most record types selects the 16-bit vs 32-bit encoding of the
// offset/length/displacement fields the record carries; Is32 reports that
// bit without needing a record-specific table.
type RecordType byte

// Record type bytes, TIS OMF 1.1 plus recognized vendor extensions. Where a
// record comes in 16/32-bit pairs the 32-bit form is the base type with bit
// 0 set.
const (
	RHEADR  RecordType = 0x6E // obsolete, preserved opaque
	REGINT  RecordType = 0x70 // obsolete, preserved opaque
	REDATA  RecordType = 0x72 // obsolete, preserved opaque
	RIDATA  RecordType = 0x74 // obsolete, preserved opaque
	OVLDEF  RecordType = 0x76 // obsolete, preserved opaque
	ENDREC  RecordType = 0x78 // obsolete, preserved opaque
	BLKDEF  RecordType = 0x7A // obsolete, preserved opaque
	BLKEND  RecordType = 0x7C // obsolete, preserved opaque
	DEBSYM  RecordType = 0x7E // obsolete, preserved opaque
	THEADR  RecordType = 0x80
	LHEADR  RecordType = 0x82
	PEDATA  RecordType = 0x84 // obsolete, preserved opaque
	PIDATA  RecordType = 0x86 // obsolete, preserved opaque
	COMENT  RecordType = 0x88
	MODEND16 RecordType = 0x8A
	MODEND32 RecordType = 0x8B
	EXTDEF  RecordType = 0x8C
	TYPDEFOld RecordType = 0x8E // obsolete, preserved opaque
	PUBDEF16 RecordType = 0x90
	PUBDEF32 RecordType = 0x91
	LOCSYM  RecordType = 0x92 // obsolete, preserved opaque
	LINNUM16 RecordType = 0x94
	LINNUM32 RecordType = 0x95
	LNAMES  RecordType = 0x96
	SEGDEF16 RecordType = 0x98
	SEGDEF32 RecordType = 0x99
	GRPDEF  RecordType = 0x9A
	FIXUPP16 RecordType = 0x9C
	FIXUPP32 RecordType = 0x9D
	LEDATA16 RecordType = 0xA0
	LEDATA32 RecordType = 0xA1
	LIDATA16 RecordType = 0xA2
	LIDATA32 RecordType = 0xA3
	LIBHED  RecordType = 0xA4 // obsolete as a module record, preserved opaque
	LIBNAM  RecordType = 0xA6 // obsolete as a module record, preserved opaque
	LIBLOC  RecordType = 0xA8 // obsolete as a module record, preserved opaque
	LIBDIC  RecordType = 0xAA // obsolete as a module record, preserved opaque
	COMDEF  RecordType = 0xB0
	BAKPAT16 RecordType = 0xB2
	BAKPAT32 RecordType = 0xB3
	LEXTDEF RecordType = 0xB4
	LPUBDEF16 RecordType = 0xB6
	LPUBDEF32 RecordType = 0xB7
	LCOMDEF RecordType = 0xB8
	CEXTDEF RecordType = 0xBC
	COMDAT16 RecordType = 0xC2
	COMDAT32 RecordType = 0xC3
	LINSYM16 RecordType = 0xC4
	LINSYM32 RecordType = 0xC5
	ALIAS   RecordType = 0xC6
	NBKPAT16 RecordType = 0xC8
	NBKPAT32 RecordType = 0xC9
	LLNAMES RecordType = 0xCA
	VERNUM  RecordType = 0xCC
	VENDEXT RecordType = 0xCE
	MODEND  RecordType = MODEND16 // alias used where width is irrelevant

	// Library container records (§4.6), not module records.
	LibraryHeader    RecordType = 0xF0
	LibraryEndMarker RecordType = 0xF1
	ExtendedDict     RecordType = 0xF2
)

// Is32 reports whether the record's least significant bit selects the
// 32-bit field-width encoding. The bit is meaningless for record types that
// do not come in 16/32-bit pairs (the caller must know which types do).
func (t RecordType) Is32() bool { return t&1 == 1 }

// obsoleteTypes are recognized by type byte and preserved as opaque bodies;
// their specific fields are never interpreted (§6).
var obsoleteTypes = map[RecordType]bool{
	RHEADR: true, REGINT: true, REDATA: true, RIDATA: true, OVLDEF: true,
	ENDREC: true, BLKDEF: true, BLKEND: true, DEBSYM: true, PEDATA: true,
	PIDATA: true, TYPDEFOld: true, LOCSYM: true, LIBHED: true, LIBNAM: true,
	LIBLOC: true, LIBDIC: true,
}

// IsObsolete reports whether t is one of the obsolete record types that this
// module recognizes only by type byte and preserves verbatim.
func (t RecordType) IsObsolete() bool { return obsoleteTypes[t] }

// FileVariant identifies the OMF dialect a file or module was produced
// under; it changes field widths and reassigns some FIXUP location codes.
type FileVariant int

const (
	// TisOmf86 is the plain TIS OMF-86 dialect; the default when no vendor
	// marker is found.
	TisOmf86 FileVariant = iota

	// EasyOmf386 is PharLap's 80386 extension, signaled by a COMENT class
	// 0xAA record bearing the literal payload "80386" immediately after the
	// module header.
	EasyOmf386

	// OmfWithMsExt is TIS OMF carrying Microsoft symbolic/type debug
	// extensions, signaled by a COMENT class 0xA1 record appearing before
	// the Link Pass Separator.
	OmfWithMsExt

	// LibraryVariant identifies a library container file (§4.6); the
	// declared page size is held in Library.PageSize.
	LibraryVariant
)

// String returns a human-readable name for the variant, used in error
// messages and log lines.
func (v FileVariant) String() string {
	switch v {
	case TisOmf86:
		return "TIS OMF-86"
	case EasyOmf386:
		return "Easy OMF-386"
	case OmfWithMsExt:
		return "OMF with Microsoft extensions"
	case LibraryVariant:
		return "library"
	default:
		return "unknown variant"
	}
}

// widthFor returns 4 when t's LSB selects the 32-bit encoding, else 2. It is
// the single place every record codec consults for field width, so the
// 16/32-bit duality (§4.4) never needs re-deriving per record type.
func widthFor(t RecordType) uint32 {
	if t.Is32() {
		return 4
	}
	return 2
}
