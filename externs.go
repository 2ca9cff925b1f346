// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// COMDEF/LCOMDEF data-type bytes (§4.4).
const (
	ComdefFar  = 0x61
	ComdefNear = 0x62
)

// decodeEXTDEF decodes EXTDEF (0x8C), LEXTDEF (0xB4) and CEXTDEF (0xBC): a
// list of (name, type_index) pairs until the body is exhausted, each
// appending one entry to the ExternTable (§3, §4.4). For CEXTDEF the
// "name" on the wire is an LNAME index rather than literal text; the
// decoder resolves it against the NameTable as populated so far.
func decodeEXTDEF(c *cursor, tbl *tables, isLocal, isComdat bool) (EXTDEFBody, error) {
	body := EXTDEFBody{IsLocal: isLocal, IsComdat: isComdat}
	for c.remaining() > 0 {
		var entry ExternEntry
		if isComdat {
			idx, err := c.omfIndex()
			if err != nil {
				return EXTDEFBody{}, err
			}
			if err := tbl.checkName(idx); err != nil {
				return EXTDEFBody{}, err
			}
			entry.NameIndex = idx
			entry.Name = tbl.names[idx]
		} else {
			name, err := c.lpName()
			if err != nil {
				return EXTDEFBody{}, err
			}
			entry.Name = string(name)
		}
		typeIdx, err := c.omfIndex()
		if err != nil {
			return EXTDEFBody{}, err
		}
		entry.TypeIndex = typeIdx
		body.Entries = append(body.Entries, entry)
		tbl.addExtern(ExternDef{Name: entry.Name, TypeIndex: typeIdx})
	}
	return body, nil
}

func encodeEXTDEF(e *encoder, body EXTDEFBody) {
	for _, entry := range body.Entries {
		if body.IsComdat {
			e.omfIndex(entry.NameIndex)
		} else {
			e.lpName([]byte(entry.Name))
		}
		e.omfIndex(entry.TypeIndex)
	}
}

// decodeComdefLength decodes the variable-length communal-length encoding
// (§4.4 COMDEF): first byte b0; if b0 <= 0x80 the size is b0 itself; if
// b0==0x81/0x84/0x88 the next 2/3/4 bytes (little-endian) carry the size.
func decodeComdefLength(c *cursor) (uint64, error) {
	b0, err := c.u8()
	if err != nil {
		return 0, err
	}
	switch {
	case b0 <= 0x80:
		return uint64(b0), nil
	case b0 == 0x81:
		lo, err := c.u8()
		if err != nil {
			return 0, err
		}
		hi, err := c.u8()
		if err != nil {
			return 0, err
		}
		return uint64(lo) | uint64(hi)<<8, nil
	case b0 == 0x84:
		b, err := c.bytesN(3)
		if err != nil {
			return 0, err
		}
		return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16, nil
	case b0 == 0x88:
		b, err := c.bytesN(4)
		if err != nil {
			return 0, err
		}
		return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24, nil
	default:
		return 0, ErrTruncated
	}
}

func encodeComdefLength(e *encoder, v uint64) {
	switch {
	case v <= 0x80:
		e.u8(byte(v))
	case v <= 0xFFFF:
		e.u8(0x81)
		e.u16le(uint16(v))
	case v <= 0xFFFFFF:
		e.u8(0x84)
		e.u8(byte(v))
		e.u8(byte(v >> 8))
		e.u8(byte(v >> 16))
	default:
		e.u8(0x88)
		e.u32le(uint32(v))
	}
}

// decodeCOMDEF decodes COMDEF (0xB0) / LCOMDEF (0xB8): repeated (name,
// type_index, data_type_byte, communal_length) entries to exhaustion.
func decodeCOMDEF(c *cursor, tbl *tables, isLocal bool) (COMDEFBody, error) {
	body := COMDEFBody{IsLocal: isLocal}
	for c.remaining() > 0 {
		name, err := c.lpName()
		if err != nil {
			return COMDEFBody{}, err
		}
		typeIdx, err := c.omfIndex()
		if err != nil {
			return COMDEFBody{}, err
		}
		dataType, err := c.u8()
		if err != nil {
			return COMDEFBody{}, err
		}
		length, err := decodeComdefLength(c)
		if err != nil {
			return COMDEFBody{}, err
		}
		entry := ComdefEntry{Name: string(name), TypeIndex: typeIdx, DataType: dataType, Length: length}
		body.Entries = append(body.Entries, entry)
		tbl.addExtern(ExternDef{
			Name: entry.Name, TypeIndex: typeIdx, IsCommunal: true,
			DataType: dataType, Length: length,
		})
	}
	return body, nil
}

func encodeCOMDEF(e *encoder, body COMDEFBody) {
	for _, entry := range body.Entries {
		e.lpName([]byte(entry.Name))
		e.omfIndex(entry.TypeIndex)
		e.u8(entry.DataType)
		encodeComdefLength(e, entry.Length)
	}
}
