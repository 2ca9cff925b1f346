// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// NBKPAT location-type byte values (§4.4).
const (
	BakpatLocByte  = 0
	BakpatLocWord  = 1
	BakpatLocDword = 2 // valid only with the 32-bit form, 0xC9
)

// decodeBAKPAT decodes BAKPAT (0xB2/0xB3) / NBKPAT (0xC8/0xC9). BAKPAT
// opens with a segment index; NBKPAT opens with a location-type byte
// followed by a name index. Both then carry repeated (offset, value)
// pairs, both fields using the record's LSB-selected width (§4.4).
func decodeBAKPAT(c *cursor, tbl *tables, width uint32, isNamed, is32 bool) (BAKPATBody, []Warning, error) {
	body := BAKPATBody{IsNamed: isNamed}
	var warnings []Warning
	if isNamed {
		locType, err := c.u8()
		if err != nil {
			return BAKPATBody{}, warnings, err
		}
		nameIdx, err := c.omfIndex()
		if err != nil {
			return BAKPATBody{}, warnings, err
		}
		if err := tbl.checkName(nameIdx); err != nil {
			return BAKPATBody{}, warnings, err
		}
		if locType == BakpatLocDword && !is32 {
			warnings = append(warnings, Warning{
				Kind:    WarnReservedBitsNonzero,
				Message: "NBKPAT dword location type used with the 16-bit record form",
			})
		}
		body.LocationType = locType
		body.NameIndex = nameIdx
	} else {
		segIdx, err := c.omfIndex()
		if err != nil {
			return BAKPATBody{}, warnings, err
		}
		if err := tbl.checkSegment(segIdx); err != nil {
			return BAKPATBody{}, warnings, err
		}
		body.SegmentIndex = segIdx
	}

	for c.remaining() > 0 {
		offset, err := c.uWidth(width)
		if err != nil {
			return BAKPATBody{}, warnings, err
		}
		value, err := c.uWidth(width)
		if err != nil {
			return BAKPATBody{}, warnings, err
		}
		body.Pairs = append(body.Pairs, BakpatPair{Offset: offset, Value: value})
	}
	return body, warnings, nil
}

func encodeBAKPAT(e *encoder, body BAKPATBody, width uint32) {
	if body.IsNamed {
		e.u8(body.LocationType)
		e.omfIndex(body.NameIndex)
	} else {
		e.omfIndex(body.SegmentIndex)
	}
	for _, p := range body.Pairs {
		e.uWidth(p.Offset, width)
		e.uWidth(p.Value, width)
	}
}

// decodeLINSYM decodes LINSYM (0xC4/0xC5): flags, a public name (LNAME
// index), then repeated (line_number, offset) pairs (§4.4).
func decodeLINSYM(c *cursor, tbl *tables, width uint32) (LINSYMBody, error) {
	flags, err := c.u8()
	if err != nil {
		return LINSYMBody{}, err
	}
	nameIdx, err := c.omfIndex()
	if err != nil {
		return LINSYMBody{}, err
	}
	if err := tbl.checkName(nameIdx); err != nil {
		return LINSYMBody{}, err
	}
	body := LINSYMBody{Flags: flags, PublicNameIndex: nameIdx}
	for c.remaining() > 0 {
		line, err := c.u16le()
		if err != nil {
			return LINSYMBody{}, err
		}
		offset, err := c.uWidth(width)
		if err != nil {
			return LINSYMBody{}, err
		}
		body.Lines = append(body.Lines, LineEntry{Line: line, Offset: offset})
	}
	return body, nil
}

func encodeLINSYM(e *encoder, body LINSYMBody, width uint32) {
	e.u8(body.Flags)
	e.omfIndex(body.PublicNameIndex)
	for _, l := range body.Lines {
		e.u16le(l.Line)
		e.uWidth(l.Offset, width)
	}
}
