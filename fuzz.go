// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// Fuzz is the go-fuzz entry point: it tries data as a library first (cheap
// to rule out via isLibraryHeader) and falls back to a single module,
// returning 1 only when the corresponding parse and re-dump both succeed
// without panicking.
func Fuzz(data []byte) int {
	if _, ok := isLibraryHeader(data); ok {
		lib, err := ParseLibrary(data)
		if err != nil {
			return 0
		}
		if _, err := DumpLibrary(lib); err != nil {
			return 0
		}
		return 1
	}

	mod, err := ParseModule(data, nil)
	if err != nil {
		return 0
	}
	if _, err := DumpModule(mod); err != nil {
		return 0
	}
	return 1
}
