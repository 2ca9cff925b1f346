// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// maxRecordBodyLength is the conventional OMF record body size cap; records
// that legitimately carry large payloads are exempt (§4.2).
const maxRecordBodyLength = 1024

// oversizedExempt lists record types allowed to exceed maxRecordBodyLength
// without a warning: data-bearing records and the library header, whose
// body length is dictated by the declared page size (§4.2, §4.6).
var oversizedExempt = map[RecordType]bool{
	LEDATA16: true, LEDATA32: true,
	LIDATA16: true, LIDATA32: true,
	COMDAT16: true, COMDAT32: true,
	LibraryHeader: true,
}

// frame is the result of splitting one record off the wire: its type, raw
// body bytes (excluding the trailing checksum byte), and that checksum
// byte, before any type-specific body decoding happens (§4.2 component
// design: "Record Framer").
type frame struct {
	Type     RecordType
	Body     []byte
	Checksum byte
	Offset   int // file offset the type byte was read from, for diagnostics
}

// readFrame splits one (type, length, body, checksum) unit off r. Checksum
// mismatches and oversized bodies are reported as warnings, not errors —
// real-world OMF producers routinely emit a zero checksum byte meaning
// "not computed", and some emit oversized non-exempt records without
// consequence (§4.2, §7 propagation policy).
func readFrame(r *cursor) (frame, []Warning, error) {
	offset := r.pos
	typeByte, err := r.u8()
	if err != nil {
		return frame{}, nil, err
	}
	length, err := r.u16le()
	if err != nil {
		return frame{}, nil, err
	}
	if length < 1 {
		return frame{}, nil, newParseError(KindTruncated, "record length", ErrTruncated)
	}
	payload, err := r.bytesN(int(length))
	if err != nil {
		return frame{}, nil, err
	}
	body := payload[:len(payload)-1]
	checksum := payload[len(payload)-1]

	var warnings []Warning
	if checksum != 0 {
		sum := typeByte + byte(length) + byte(length>>8)
		for _, b := range body {
			sum += b
		}
		sum += checksum
		if sum != 0 {
			warnings = append(warnings, Warning{
				Kind:    WarnBadChecksum,
				Offset:  offset,
				Message: "record checksum does not verify",
			})
		}
	}

	t := RecordType(typeByte)
	if len(body) > maxRecordBodyLength && !oversizedExempt[t] {
		warnings = append(warnings, Warning{
			Kind:    WarnOversizedRecord,
			Offset:  offset,
			Message: "record body exceeds the conventional 1024-byte limit",
		})
	}

	return frame{Type: t, Body: body, Checksum: checksum, Offset: offset}, warnings, nil
}
