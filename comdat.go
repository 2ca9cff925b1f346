// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// COMDAT allocation values (low 4 bits of the attributes byte), §4.4. Only
// ComdatAllocExplicit carries a public-base triple on the wire.
const (
	ComdatAllocExplicit = 0x0
	ComdatAllocFarCode   = 0x1
	ComdatAllocFarData   = 0x2
	ComdatAllocCode32    = 0x3
	ComdatAllocData32    = 0x4
)

// decodeCOMDAT decodes COMDAT (0xC2/0xC3): flags, an attributes byte
// (selection criteria in the high 4 bits, allocation in the low 4), an
// alignment byte, an enumerated data offset, a type index, a public-base
// triple present only when allocation is explicit, a public name (LNAME
// index), then raw data to the end of the record (§4.4).
func decodeCOMDAT(c *cursor, tbl *tables, width uint32) (COMDATBody, error) {
	flags, err := c.u8()
	if err != nil {
		return COMDATBody{}, err
	}
	attr, err := c.u8()
	if err != nil {
		return COMDATBody{}, err
	}
	align, err := c.u8()
	if err != nil {
		return COMDATBody{}, err
	}
	offset, err := c.uWidth(width)
	if err != nil {
		return COMDATBody{}, err
	}
	typeIdx, err := c.omfIndex()
	if err != nil {
		return COMDATBody{}, err
	}

	body := COMDATBody{
		Flags:             flags,
		SelectionCriteria: byte(bits(uint32(attr), 4, 4)),
		Allocation:        byte(bits(uint32(attr), 0, 4)),
		Align:             align,
		DataOffset:        offset,
		TypeIndex:         typeIdx,
	}

	if body.Allocation == ComdatAllocExplicit {
		groupIdx, err := c.omfIndex()
		if err != nil {
			return COMDATBody{}, err
		}
		segIdx, err := c.omfIndex()
		if err != nil {
			return COMDATBody{}, err
		}
		if err := tbl.checkGroup(groupIdx); err != nil {
			return COMDATBody{}, err
		}
		if err := tbl.checkSegment(segIdx); err != nil {
			return COMDATBody{}, err
		}
		body.HasPublicBase = true
		body.PublicBaseGroup = groupIdx
		body.PublicBaseSegment = segIdx
		if segIdx == 0 {
			frame, err := c.u16le()
			if err != nil {
				return COMDATBody{}, err
			}
			body.PublicBaseFrame = frame
		}
	}

	nameIdx, err := c.omfIndex()
	if err != nil {
		return COMDATBody{}, err
	}
	if err := tbl.checkName(nameIdx); err != nil {
		return COMDATBody{}, err
	}
	body.PublicNameIndex = nameIdx

	data, err := c.bytesN(c.remaining())
	if err != nil {
		return COMDATBody{}, err
	}
	body.Data = data
	return body, nil
}

func encodeCOMDAT(e *encoder, body COMDATBody, width uint32) {
	e.u8(body.Flags)
	attr := (body.SelectionCriteria&0xF)<<4 | (body.Allocation & 0xF)
	e.u8(attr)
	e.u8(body.Align)
	e.uWidth(body.DataOffset, width)
	e.omfIndex(body.TypeIndex)

	if body.HasPublicBase {
		e.omfIndex(body.PublicBaseGroup)
		e.omfIndex(body.PublicBaseSegment)
		if body.PublicBaseSegment == 0 {
			e.u16le(body.PublicBaseFrame)
		}
	}

	e.omfIndex(body.PublicNameIndex)
	e.bytes(body.Data)
}
