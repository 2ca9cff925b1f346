// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// decodePUBDEF decodes PUBDEF (0x90/0x91) / LPUBDEF (0xB6/0xB7): group
// index, segment index, an optional base frame (present iff segment index
// is 0), then repeated (name, offset, type_index) entries to exhaustion.
// Offset width follows the record-type LSB (§4.4).
func decodePUBDEF(c *cursor, tbl *tables, width uint32, isLocal bool) (PUBDEFBody, error) {
	groupIdx, err := c.omfIndex()
	if err != nil {
		return PUBDEFBody{}, err
	}
	segIdx, err := c.omfIndex()
	if err != nil {
		return PUBDEFBody{}, err
	}
	if err := tbl.checkGroup(groupIdx); err != nil {
		return PUBDEFBody{}, err
	}
	if err := tbl.checkSegment(segIdx); err != nil {
		return PUBDEFBody{}, err
	}

	body := PUBDEFBody{IsLocal: isLocal, GroupIndex: groupIdx, SegmentIndex: segIdx}
	if segIdx == 0 {
		frame, err := c.u16le()
		if err != nil {
			return PUBDEFBody{}, err
		}
		f := int(frame)
		body.BaseFrame = &f
	}

	for c.remaining() > 0 {
		name, err := c.lpName()
		if err != nil {
			return PUBDEFBody{}, err
		}
		offset, err := c.uWidth(width)
		if err != nil {
			return PUBDEFBody{}, err
		}
		typeIdx, err := c.omfIndex()
		if err != nil {
			return PUBDEFBody{}, err
		}
		body.Publics = append(body.Publics, PublicEntry{Name: string(name), Offset: offset, TypeIndex: typeIdx})
	}
	return body, nil
}

func encodePUBDEF(e *encoder, body PUBDEFBody, width uint32) {
	e.omfIndex(body.GroupIndex)
	e.omfIndex(body.SegmentIndex)
	if body.SegmentIndex == 0 {
		frame := 0
		if body.BaseFrame != nil {
			frame = *body.BaseFrame
		}
		e.u16le(uint16(frame))
	}
	for _, p := range body.Publics {
		e.lpName([]byte(p.Name))
		e.uWidth(p.Offset, width)
		e.omfIndex(p.TypeIndex)
	}
}
