// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// COMENT (0x88) class bytes (§4.4).
const (
	CommentClassTranslator        = 0x00
	CommentClassMemoryModel       = 0x9D
	CommentClassDefaultLibrary    = 0x9F
	CommentClassOmfExtensions     = 0xA0
	CommentClassDebugInfo         = 0xA1
	CommentClassLinkPassSeparator = 0xA2
	CommentClassLibMod            = 0xA3
	CommentClassExeStr            = 0xA4
	CommentClassIncErr            = 0xA6
	CommentClassNoPad             = 0xA7
	CommentClassWkExt             = 0xA8
	CommentClassLzExt             = 0xA9
	CommentClassEasyOmf386        = 0xAA
	CommentClassBorlandDependency = 0xE9
	CommentClassWatcomDisasm      = 0xFD
	CommentClassLinkerDirective   = 0xFE
	CommentClassQuickC            = 0xFF
)

// OMF extensions (class 0xA0) sub-types.
const (
	OmfExtImpdef     = 0x01
	OmfExtExpdef     = 0x02
	OmfExtIncdef     = 0x03
	OmfExtProtMemLib = 0x04
	OmfExtLnkDir     = 0x05
	OmfExtBigEndian  = 0x06
	OmfExtPrecomp    = 0x07
)

// CommentBody is the body of a COMENT record: the NP/NL flag byte, the
// class byte, and a class-specific payload. Classes this module does not
// further decode (and any unrecognized class byte) keep their payload in
// Raw, preserved verbatim (§4.4).
type CommentBody struct {
	NoPurge bool // NP bit: comment survives into the linked executable
	NoList  bool // NL bit: comment is suppressed from listings
	Class   byte
	Sub     CommentSub // nil when the class has no further structure here
	Raw     []byte     // full class-specific payload, always populated
}

func (CommentBody) recordBody() {}

// CommentSub is the decoded payload of a COMENT class this module
// interprets beyond raw bytes.
type CommentSub interface {
	commentSub()
}

// CommentText is the payload shape shared by the free-text classes:
// translator id (0x00), memory model (0x9D), default library (0x9F),
// LIBMOD (0xA3), EXESTR (0xA4), the Borland comment family (0xDA-0xDF),
// the Easy OMF-386 marker (0xAA) and the QuickC command line (0xFF).
type CommentText struct {
	Text string
}

func (CommentText) commentSub() {}

// CommentExtensions is the payload of class 0xA0: a sub-type byte followed
// by sub-type-specific bytes this module does not further decode (IMPDEF/
// EXPDEF/INCDEF/protected-memory-library/LNKDIR/big-endian/PRECOMP carry no
// additional structure in the reference documents beyond their presence).
type CommentExtensions struct {
	SubType byte
	Data    []byte
}

func (CommentExtensions) commentSub() {}

// CommentLinkPassSeparator is the payload of class 0xA2. SubType 0x01
// marks the start of pass-2 records.
type CommentLinkPassSeparator struct {
	SubType byte
}

func (CommentLinkPassSeparator) commentSub() {}

// CommentNoPad is the payload of class 0xA7: a list of segment indices
// that must not be end-padded by the linker.
type CommentNoPad struct {
	SegmentIndices []int
}

func (CommentNoPad) commentSub() {}

// WeakExternPair is one (weak, default) extern-index pair, shared by WKEXT
// (0xA8) and LZEXT (0xA9), which are wire-identical.
type WeakExternPair struct {
	WeakIndex    int
	DefaultIndex int
}

// CommentWeakExtern is the payload of classes 0xA8 and 0xA9.
type CommentWeakExtern struct {
	Pairs []WeakExternPair
}

func (CommentWeakExtern) commentSub() {}

// CommentWatcomDisasm is the payload of class 0xFD: Watcom disassembler
// directives.
type CommentWatcomDisasm struct {
	SubType      byte // 's' or 'S'
	SegmentIndex int
	HasNameIndex bool // present only when SegmentIndex == 0
	NameIndex    int
	StartOffset  uint32
	EndOffset    uint32
}

func (CommentWatcomDisasm) commentSub() {}

// CommentLinkerDirective is the payload of class 0xFE: Watcom/Microsoft
// linker directives. The sub-type byte selects the directive ('D','L','O',
// 'U','V','P','R','7','F','T'); this module preserves the remaining bytes
// verbatim rather than further decoding each directive's internal shape,
// which the reference documents describe only by name (§9 design notes).
type CommentLinkerDirective struct {
	SubType byte
	Data    []byte
}

func (CommentLinkerDirective) commentSub() {}

func decodeComment(c *cursor, tbl *tables, variant FileVariant) (CommentBody, []Warning, error) {
	flags, err := c.u8()
	if err != nil {
		return CommentBody{}, nil, err
	}
	class, err := c.u8()
	if err != nil {
		return CommentBody{}, nil, err
	}
	rest, err := c.bytesN(c.remaining())
	if err != nil {
		return CommentBody{}, nil, err
	}

	body := CommentBody{
		NoPurge: flags&0x80 != 0,
		NoList:  flags&0x40 != 0,
		Class:   class,
		Raw:     rest,
	}

	var warnings []Warning
	sc := newCursor(rest)
	switch class {
	case CommentClassTranslator, CommentClassMemoryModel, CommentClassDefaultLibrary,
		CommentClassLibMod, CommentClassExeStr, CommentClassEasyOmf386, CommentClassQuickC:
		body.Sub = CommentText{Text: decodeCommentText(rest)}
	case CommentClassOmfExtensions:
		subType, err := sc.u8()
		if err != nil {
			return body, warnings, err
		}
		data, _ := sc.bytesN(sc.remaining())
		switch subType {
		case OmfExtImpdef, OmfExtExpdef, OmfExtIncdef, OmfExtProtMemLib,
			OmfExtLnkDir, OmfExtBigEndian, OmfExtPrecomp:
			body.Sub = CommentExtensions{SubType: subType, Data: data}
		default:
			body.Sub = CommentExtensions{SubType: subType, Data: data}
			warnings = append(warnings, Warning{
				Kind:    WarnUnknownCommentSubtype,
				Message: "unrecognized OMF extensions sub-type, bytes preserved",
			})
		}
	case CommentClassLinkPassSeparator:
		subType, err := sc.u8()
		if err != nil {
			return body, warnings, err
		}
		body.Sub = CommentLinkPassSeparator{SubType: subType}
	case CommentClassIncErr:
		// No payload; the class byte alone marks the object unlinkable.
	case CommentClassNoPad:
		var indices []int
		for sc.remaining() > 0 {
			idx, err := sc.omfIndex()
			if err != nil {
				return body, warnings, err
			}
			indices = append(indices, idx)
		}
		body.Sub = CommentNoPad{SegmentIndices: indices}
	case CommentClassWkExt, CommentClassLzExt:
		var pairs []WeakExternPair
		for sc.remaining() > 0 {
			weak, err := sc.omfIndex()
			if err != nil {
				return body, warnings, err
			}
			def, err := sc.omfIndex()
			if err != nil {
				return body, warnings, err
			}
			pairs = append(pairs, WeakExternPair{WeakIndex: weak, DefaultIndex: def})
		}
		body.Sub = CommentWeakExtern{Pairs: pairs}
	case CommentClassWatcomDisasm:
		subType, err := sc.u8()
		if err != nil {
			return body, warnings, err
		}
		seg, err := sc.omfIndex()
		if err != nil {
			return body, warnings, err
		}
		wd := CommentWatcomDisasm{SubType: subType, SegmentIndex: seg}
		if seg == 0 {
			nameIdx, err := sc.omfIndex()
			if err != nil {
				return body, warnings, err
			}
			wd.HasNameIndex = true
			wd.NameIndex = nameIdx
		}
		// Width is ambiguous from the class alone; Easy OMF-386 uses
		// 32-bit offsets, TIS OMF-86 uses 16-bit (§4.3/§4.4).
		width := uint32(2)
		if variant == EasyOmf386 {
			width = 4
		}
		start, err := sc.uWidth(width)
		if err != nil {
			return body, warnings, err
		}
		end, err := sc.uWidth(width)
		if err != nil {
			return body, warnings, err
		}
		wd.StartOffset, wd.EndOffset = start, end
		body.Sub = wd
	case CommentClassLinkerDirective:
		subType, err := sc.u8()
		if err != nil {
			return body, warnings, err
		}
		data, _ := sc.bytesN(sc.remaining())
		body.Sub = CommentLinkerDirective{SubType: subType, Data: data}
	default:
		if class >= 0xDA && class <= 0xDF {
			body.Sub = CommentText{Text: decodeCommentText(rest)}
		}
		// CommentClassBorlandDependency (0xE9) and any other 0xC0..0xFF
		// class, plus anything below that, are preserved in Raw only.
	}

	_ = tbl
	return body, warnings, nil
}

func encodeComment(e *encoder, body CommentBody) {
	var flags byte
	if body.NoPurge {
		flags |= 0x80
	}
	if body.NoList {
		flags |= 0x40
	}
	e.u8(flags)
	e.u8(body.Class)
	// Raw is kept as the authoritative wire bytes: every decode path above
	// fully consumes the class payload into Raw before deriving Sub, so
	// re-emitting Raw is always byte-exact regardless of which Sub shape
	// was populated.
	e.bytes(body.Raw)
}
