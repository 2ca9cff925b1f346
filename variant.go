// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// isLibraryHeader reports whether data opens with a library header record
// (0xF0) whose declared page size (record_length + 3, the 3 being the type
// and length field bytes themselves) is a power of two in [16, 32768]
// (§4.3, §4.6). A library file is recognized purely from its first bytes,
// before any module-level framing happens.
func isLibraryHeader(data []byte) (pageSize int, ok bool) {
	if len(data) < 3 || data[0] != byte(LibraryHeader) {
		return 0, false
	}
	length := int(data[1]) | int(data[2])<<8
	pageSize = length + 3
	if pageSize < 16 || pageSize > 32768 || pageSize&(pageSize-1) != 0 {
		return 0, false
	}
	return pageSize, true
}

// easyOmf386Marker is the literal payload a COMENT class 0xAA record must
// carry to mark Easy OMF-386 (§4.3 rule 2).
const easyOmf386Marker = "80386"

// detectVariant inspects a module's already-framed records (type and raw
// body, not yet body-decoded) to classify its FileVariant, applying the
// rules of §4.3 in order:
//
//  1. (library detection happens before framing even starts; see
//     isLibraryHeader)
//  2. the first record is THEADR/LHEADR and the very next record is a
//     COMENT class 0xAA carrying the literal payload "80386" → EasyOmf386;
//  3. any COMENT class 0xA1 appearing before the Link Pass Separator →
//     OmfWithMsExt;
//  4. otherwise TisOmf86.
func detectVariant(frames []frame) FileVariant {
	if len(frames) >= 2 && (frames[0].Type == THEADR || frames[0].Type == LHEADR) {
		next := frames[1]
		if next.Type == COMENT && len(next.Body) >= 2 && next.Body[1] == CommentClassEasyOmf386 {
			if string(next.Body[2:]) == easyOmf386Marker {
				return EasyOmf386
			}
		}
	}

	for _, f := range frames {
		if f.Type != COMENT || len(f.Body) < 2 {
			continue
		}
		switch f.Body[1] {
		case CommentClassDebugInfo:
			return OmfWithMsExt
		case CommentClassLinkPassSeparator:
			return TisOmf86
		}
	}
	return TisOmf86
}
