// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// MODEND module-type bit field (§4.4): `Main Start Segment X 0000`, the
// high nibble of the first byte.
const (
	modendMain    = 1 << 7
	modendStart   = 1 << 6
	modendSegment = 1 << 5
)

// decodeMODEND decodes MODEND (0x8A) / MODEND32 (0x8B). When the Start bit
// is set, the module-type byte is followed by a FIXUP-subrecord-shaped
// target specifier identifying the program entry point, using the record's
// LSB-selected width for any displacement (§4.4).
func decodeMODEND(c *cursor, tbl *tables, width uint32, state *ThreadState) (MODENDBody, error) {
	typeByte, err := c.u8()
	if err != nil {
		return MODENDBody{}, err
	}
	body := MODENDBody{
		IsMain:    typeByte&modendMain != 0,
		IsStart:   typeByte&modendStart != 0,
		IsSegment: typeByte&modendSegment != 0,
	}
	if body.IsStart {
		target, err := decodeFixupTarget(c, tbl, width, state)
		if err != nil {
			return MODENDBody{}, err
		}
		body.Target = target
	}
	return body, nil
}

func encodeMODEND(e *encoder, body MODENDBody, width uint32) {
	var typeByte byte
	if body.IsMain {
		typeByte |= modendMain
	}
	if body.IsStart {
		typeByte |= modendStart
	}
	if body.IsSegment {
		typeByte |= modendSegment
	}
	e.u8(typeByte)
	if body.IsStart {
		encodeFixupTarget(e, body.Target, width)
	}
}
