// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

import "testing"

func TestIsLibraryHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"512-byte page", []byte{byte(LibraryHeader), 0xFD, 0x01}, true}, // length 0x1FD + 3 = 512
		{"not a power of two", []byte{byte(LibraryHeader), 0x00, 0x01}, false},
		{"wrong record type", []byte{byte(THEADR), 0xFD, 0x01}, false},
		{"too short", []byte{byte(LibraryHeader), 0x00}, false},
		{"power of two but below 16", []byte{byte(LibraryHeader), 0x05, 0x00}, false},  // length 5 + 3 = 8
		{"power of two but above 32768", []byte{byte(LibraryHeader), 0xFD, 0xFF}, false}, // length 0xFFFD + 3 = 65536
		{"minimum valid page size 16", []byte{byte(LibraryHeader), 0x0D, 0x00}, true},    // length 13 + 3 = 16
		{"maximum valid page size 32768", []byte{byte(LibraryHeader), 0xFD, 0x7F}, true}, // length 0x7FFD + 3 = 32768
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := isLibraryHeader(tt.data)
			if ok != tt.want {
				t.Errorf("isLibraryHeader(%v) ok = %v, want %v", tt.data, ok, tt.want)
			}
		})
	}
}

func TestIsLibraryHeaderPageSize(t *testing.T) {
	// length 0x1FD -> pageSize = 0x1FD + 3 = 512.
	pageSize, ok := isLibraryHeader([]byte{byte(LibraryHeader), 0xFD, 0x01})
	if !ok || pageSize != 512 {
		t.Fatalf("isLibraryHeader = %d, %v; want 512, true", pageSize, ok)
	}
}

func commentFrame(class byte, payload []byte) frame {
	body := append([]byte{0x00, class}, payload...)
	return frame{Type: COMENT, Body: body}
}

func TestDetectVariantEasyOmf386(t *testing.T) {
	frames := []frame{
		{Type: THEADR, Body: []byte{0x07, 'M', 'O', 'D', 'U', 'L', 'E'}},
		commentFrame(CommentClassEasyOmf386, []byte(easyOmf386Marker)),
		{Type: MODEND16, Body: []byte{0x00}},
	}
	if got := detectVariant(frames); got != EasyOmf386 {
		t.Errorf("detectVariant = %v, want EasyOmf386", got)
	}
}

func TestDetectVariantEasyOmf386WrongMarker(t *testing.T) {
	frames := []frame{
		{Type: THEADR, Body: []byte{0x07, 'M', 'O', 'D', 'U', 'L', 'E'}},
		commentFrame(CommentClassEasyOmf386, []byte("wrong")),
		{Type: MODEND16, Body: []byte{0x00}},
	}
	if got := detectVariant(frames); got != TisOmf86 {
		t.Errorf("detectVariant = %v, want TisOmf86 (marker payload mismatch)", got)
	}
}

func TestDetectVariantMsExt(t *testing.T) {
	frames := []frame{
		{Type: THEADR, Body: []byte{0x07, 'M', 'O', 'D', 'U', 'L', 'E'}},
		commentFrame(CommentClassDebugInfo, []byte{0x01, 0x02}),
		{Type: MODEND16, Body: []byte{0x00}},
	}
	if got := detectVariant(frames); got != OmfWithMsExt {
		t.Errorf("detectVariant = %v, want OmfWithMsExt", got)
	}
}

func TestDetectVariantTisDefault(t *testing.T) {
	frames := []frame{
		{Type: THEADR, Body: []byte{0x07, 'M', 'O', 'D', 'U', 'L', 'E'}},
		commentFrame(CommentClassLinkPassSeparator, nil),
		{Type: MODEND16, Body: []byte{0x00}},
	}
	if got := detectVariant(frames); got != TisOmf86 {
		t.Errorf("detectVariant = %v, want TisOmf86", got)
	}
}

func TestDetectVariantPlainModule(t *testing.T) {
	frames := []frame{
		{Type: THEADR, Body: []byte{0x07, 'M', 'O', 'D', 'U', 'L', 'E'}},
		{Type: MODEND16, Body: []byte{0x00}},
	}
	if got := detectVariant(frames); got != TisOmf86 {
		t.Errorf("detectVariant = %v, want TisOmf86 for a module with no distinguishing COMENT", got)
	}
}

func TestDetectVariantMsExtTakesPrecedenceOverLaterSeparator(t *testing.T) {
	// CommentClassDebugInfo appears before the Link Pass Separator, so MS
	// extensions should win even though a plain separator also appears.
	frames := []frame{
		{Type: THEADR, Body: []byte{0x07, 'M', 'O', 'D', 'U', 'L', 'E'}},
		commentFrame(CommentClassDebugInfo, []byte{0x01}),
		commentFrame(CommentClassLinkPassSeparator, nil),
		{Type: MODEND16, Body: []byte{0x00}},
	}
	if got := detectVariant(frames); got != OmfWithMsExt {
		t.Errorf("detectVariant = %v, want OmfWithMsExt", got)
	}
}
