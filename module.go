// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// Module is one fully decoded OMF module: an ordered record sequence
// opening with THEADR/LHEADR and closing with MODEND, plus the four
// ordered tables those records populated and any non-fatal warnings
// collected along the way (§3).
type Module struct {
	Variant  FileVariant
	Records  []Record
	Warnings []Warning

	// Anomalies records structural oddities this module notices but does
	// not treat as parse failures (duplicate public names, an EXTDEF never
	// referenced by any FIXUP, ...). Populated by computeAnomalies at the
	// end of ParseModule.
	Anomalies []string

	tables *tables
}

// NameAt, SegmentAt, GroupAt and ExternAt give read-only access to the
// module's four ordered tables by 1-based index (0 always means "not
// present").
func (m *Module) NameAt(i int) (string, bool) {
	if i <= 0 || i >= len(m.tables.names) {
		return "", false
	}
	return m.tables.names[i], true
}

func (m *Module) SegmentAt(i int) (SegmentDef, bool) {
	if i <= 0 || i >= len(m.tables.segments) {
		return SegmentDef{}, false
	}
	return m.tables.segments[i], true
}

func (m *Module) GroupAt(i int) (GroupDef, bool) {
	if i <= 0 || i >= len(m.tables.groups) {
		return GroupDef{}, false
	}
	return m.tables.groups[i], true
}

func (m *Module) ExternAt(i int) (ExternDef, bool) {
	if i <= 0 || i >= len(m.tables.externs) {
		return ExternDef{}, false
	}
	return m.tables.externs[i], true
}

// NumNames, NumSegments, NumGroups and NumExterns report how many entries
// (not counting the index-0 sentinel) each of the module's four ordered
// tables holds.
func (m *Module) NumNames() int    { return len(m.tables.names) - 1 }
func (m *Module) NumSegments() int { return len(m.tables.segments) - 1 }
func (m *Module) NumGroups() int   { return len(m.tables.groups) - 1 }
func (m *Module) NumExterns() int  { return len(m.tables.externs) - 1 }

// ParseModule decodes a single OMF module from data. variantHint, when
// non-nil, overrides §4.3's variant detection (for a caller that already
// knows the dialect; ParseLibrary passes nil and detects every module).
func ParseModule(data []byte, variantHint *FileVariant) (*Module, error) {
	raw := newCursor(data)

	var frames []frame
	var warnings []Warning
	for raw.remaining() > 0 {
		f, w, err := readFrame(raw)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
		warnings = append(warnings, w...)
	}
	if len(frames) == 0 {
		return nil, newParseError(KindUnexpectedRecordType, "module start", ErrUnexpectedRecordType)
	}
	if frames[0].Type != THEADR && frames[0].Type != LHEADR {
		return nil, newParseError(KindUnexpectedRecordType, "module start", ErrUnexpectedRecordType)
	}
	last := frames[len(frames)-1]
	if last.Type != MODEND16 && last.Type != MODEND32 {
		return nil, newParseError(KindUnexpectedRecordType, "module end", ErrUnexpectedRecordType)
	}

	variant := TisOmf86
	if variantHint != nil {
		variant = *variantHint
	} else {
		variant = detectVariant(frames)
	}

	tbl := newTables()
	threads := &ThreadState{}
	records := make([]Record, 0, len(frames))
	lastDataAnchor := -1

	for _, f := range frames {
		rec := Record{Type: f.Type, Length: f.Length(), Checksum: f.Checksum, DataAnchor: -1}

		switch f.Type {
		case LEDATA16, LEDATA32, LIDATA16, LIDATA32, COMDAT16, COMDAT32:
			// recorded after this record is appended, see below.
		case FIXUPP16, FIXUPP32:
			rec.DataAnchor = lastDataAnchor
		}

		c := newCursor(f.Body)
		width := widthFor(f.Type)

		switch f.Type {
		case THEADR, LHEADR:
			body, err := decodeTHEADR(c)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case MODEND16, MODEND32:
			body, err := decodeMODEND(c, tbl, width, threads)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case COMENT:
			body, w, err := decodeComment(c, tbl, variant)
			if err != nil {
				return nil, err
			}
			rec.Body = body
			warnings = append(warnings, w...)
		case EXTDEF:
			body, err := decodeEXTDEF(c, tbl, false, false)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case LEXTDEF:
			body, err := decodeEXTDEF(c, tbl, true, false)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case CEXTDEF:
			body, err := decodeEXTDEF(c, tbl, false, true)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case COMDEF:
			body, err := decodeCOMDEF(c, tbl, false)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case LCOMDEF:
			body, err := decodeCOMDEF(c, tbl, true)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case PUBDEF16, PUBDEF32:
			body, err := decodePUBDEF(c, tbl, width, false)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case LPUBDEF16, LPUBDEF32:
			body, err := decodePUBDEF(c, tbl, width, true)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case LNAMES, LLNAMES:
			body, err := decodeLNAMES(c, tbl)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case SEGDEF16, SEGDEF32:
			body, err := decodeSEGDEF(c, tbl, width, f.Type.Is32())
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case GRPDEF:
			body, w, err := decodeGRPDEF(c, tbl)
			if err != nil {
				return nil, err
			}
			rec.Body = body
			warnings = append(warnings, w...)
		case FIXUPP16, FIXUPP32:
			body, err := decodeFIXUPP(c, tbl, width, threads)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case LEDATA16, LEDATA32:
			body, err := decodeLEDATA(c, tbl, width)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case LIDATA16, LIDATA32:
			body, err := decodeLIDATA(c, tbl, width)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case BAKPAT16, BAKPAT32:
			body, w, err := decodeBAKPAT(c, tbl, width, false, f.Type.Is32())
			if err != nil {
				return nil, err
			}
			rec.Body = body
			warnings = append(warnings, w...)
		case NBKPAT16, NBKPAT32:
			body, w, err := decodeBAKPAT(c, tbl, width, true, f.Type.Is32())
			if err != nil {
				return nil, err
			}
			rec.Body = body
			warnings = append(warnings, w...)
		case COMDAT16, COMDAT32:
			body, err := decodeCOMDAT(c, tbl, width)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case LINSYM16, LINSYM32:
			body, err := decodeLINSYM(c, tbl, width)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case ALIAS:
			body, err := decodeALIAS(c)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case VERNUM:
			body, err := decodeVERNUM(c)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		case VENDEXT:
			body, err := decodeVENDEXT(c)
			if err != nil {
				return nil, err
			}
			rec.Body = body
		default:
			rec.Body = OpaqueBody{Data: f.Body}
		}

		records = append(records, rec)
		if f.Type == LEDATA16 || f.Type == LEDATA32 || f.Type == LIDATA16 ||
			f.Type == LIDATA32 || f.Type == COMDAT16 || f.Type == COMDAT32 {
			lastDataAnchor = len(records) - 1
		}
	}

	m := &Module{Variant: variant, Records: records, Warnings: warnings, tables: tbl}
	m.Anomalies = computeAnomalies(m)
	return m, nil
}

// DumpModule renders m back to bytes: every Record's Body is re-encoded by
// its paired codec and reframed with a freshly computed checksum (§4.2,
// §6). This always produces a parseable, minimally-indexed module; it is
// byte-exact with the original input only when that input was itself
// minimally encoded and carried valid checksums (§6).
func DumpModule(m *Module) ([]byte, error) {
	out := &encoder{}
	for _, rec := range m.Records {
		width := widthFor(rec.Type)
		body := &encoder{}
		switch b := rec.Body.(type) {
		case THEADRBody:
			encodeTHEADR(body, b)
		case MODENDBody:
			encodeMODEND(body, b, width)
		case CommentBody:
			encodeComment(body, b)
		case EXTDEFBody:
			encodeEXTDEF(body, b)
		case COMDEFBody:
			encodeCOMDEF(body, b)
		case PUBDEFBody:
			encodePUBDEF(body, b, width)
		case LNAMESBody:
			encodeLNAMES(body, b)
		case SEGDEFBody:
			encodeSEGDEF(body, b, width, rec.Type.Is32())
		case GRPDEFBody:
			encodeGRPDEF(body, b)
		case FIXUPPBody:
			encodeFIXUPP(body, b, width)
		case LEDATABody:
			encodeLEDATA(body, b, width)
		case LIDATABody:
			encodeLIDATA(body, b, width)
		case BAKPATBody:
			encodeBAKPAT(body, b, width)
		case COMDATBody:
			encodeCOMDAT(body, b, width)
		case LINSYMBody:
			encodeLINSYM(body, b, width)
		case ALIASBody:
			encodeALIAS(body, b)
		case VERNUMBody:
			encodeVERNUM(body, b)
		case VENDEXTBody:
			encodeVENDEXT(body, b)
		case OpaqueBody:
			body.bytes(b.Data)
		}
		writeFramedRecord(out, rec.Type, body.b)
	}
	return out.b, nil
}

// writeFramedRecord appends one (type, length, body, checksum) unit to out,
// computing a checksum that satisfies invariant 2 of §3 exactly.
func writeFramedRecord(out *encoder, t RecordType, body []byte) {
	out.u8(byte(t))
	length := uint16(len(body) + 1)
	out.u16le(length)
	out.bytes(body)

	sum := byte(t) + byte(length) + byte(length>>8)
	for _, b := range body {
		sum += b
	}
	out.u8(-sum)
}

// Length returns the record's on-wire length field (body bytes plus the
// trailing checksum byte), matching how frame.Length is computed.
func (f frame) Length() int { return len(f.Body) + 1 }

// VerifyChecksums re-validates every record's checksum against its decoded
// body, independent of what readFrame already warned about at parse time.
// It exists so callers can re-run the check after mutating a Module in
// memory (§9 supplemented feature).
func VerifyChecksums(m *Module) []Warning {
	bytes, err := DumpModule(m)
	if err != nil {
		return nil
	}
	var warnings []Warning
	c := newCursor(bytes)
	for i := 0; c.remaining() > 0 && i < len(m.Records); i++ {
		f, w, err := readFrame(c)
		if err != nil {
			break
		}
		warnings = append(warnings, w...)
		if rec := m.Records[i]; rec.Checksum != 0 && rec.Checksum != f.Checksum {
			warnings = append(warnings, Warning{Kind: WarnBadChecksum, Offset: f.Offset, Message: "stored checksum does not match the record body"})
		}
	}
	return warnings
}
