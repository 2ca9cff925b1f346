// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

// looksUTF16 is a cheap heuristic for the rare Borland/Microsoft COMENT
// payloads (classes 0xDA-0xDF) that carry UTF-16LE text instead of ASCII:
// an even length and at least one interior null byte where ASCII text
// never has one.
func looksUTF16(b []byte) bool {
	if len(b) == 0 || len(b)%2 != 0 {
		return false
	}
	for i := 1; i < len(b); i += 2 {
		if b[i] == 0 && b[i-1] != 0 {
			return true
		}
	}
	return false
}

// decodeCommentText decodes a COMENT text payload, trying UTF-16LE first
// when the bytes look like it and falling back to the raw bytes, with no
// character-set conversion, otherwise (§4.4: the reference documents never pin down an encoding for
// the free-text classes, and real producers use both).
func decodeCommentText(raw []byte) string {
	if !looksUTF16(raw) {
		return string(raw)
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := decoder.Bytes(bytes.TrimRight(raw, "\x00"))
	if err != nil {
		return string(raw)
	}
	return string(s)
}
