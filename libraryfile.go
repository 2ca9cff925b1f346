// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// Library is a fully decoded OMF static library (§4.6): a header, the
// page-aligned modules it contains, and the two-level hashed dictionary
// (plus optional extended dictionary) that lets a linker find a module by
// the public or communal name it defines without scanning every module.
type Library struct {
	Header             LibraryHeader
	PageSize           int
	Variant            FileVariant
	Modules            []*Module
	ModulePages        []int // page number each Modules[i] starts on
	Dictionary         *Dictionary
	ExtendedDictionary *ExtendedDictionary
	Warnings           []Warning
}

// moduleName returns the name carried by a module's THEADR/LHEADR record,
// the name a conforming librarian indexes the module's dictionary entry
// under (§4.6).
func moduleName(m *Module) string {
	for _, rec := range m.Records {
		if h, ok := rec.Body.(THEADRBody); ok {
			return h.Name
		}
	}
	return ""
}

// padLen reports how many zero bytes n must grow by to reach the next
// multiple of pageSize.
func padLen(n, pageSize int) int {
	rem := n % pageSize
	if rem == 0 {
		return 0
	}
	return pageSize - rem
}

// ParseLibrary decodes an OMF static library: the header record, each
// page-aligned module (parsed with ParseModule, each module's variant
// detected on its own and compared with the first module's), the end
// marker, and the hashed dictionary (§4.6). Modules disagreeing on
// FileVariant is a hard error
// (ErrMixedVariantLibrary); mixed-variant libraries are a declared
// non-goal.
func ParseLibrary(data []byte) (*Library, error) {
	pageSize, ok := isLibraryHeader(data)
	if !ok {
		return nil, newParseError(KindInvalidLibraryHeader, "library header", ErrInvalidLibraryHeader)
	}

	c := newCursor(data)
	hf, _, err := readFrame(c)
	if err != nil {
		return nil, err
	}
	header, err := decodeLibraryHeader(newCursor(hf.Body))
	if err != nil {
		return nil, err
	}

	lib := &Library{Header: header, PageSize: pageSize}

	pos := pageSize
	var warnings []Warning
	var variant *FileVariant
	dictStart := int(header.DictionaryOffset)

	for pos < len(data) && pos < dictStart {
		if data[pos] == byte(LibraryEndMarker) {
			break
		}

		mc := newCursor(data[pos:])
		for {
			f, w, err := readFrame(mc)
			if err != nil {
				return nil, err
			}
			warnings = append(warnings, w...)
			if f.Type == MODEND16 || f.Type == MODEND32 {
				break
			}
		}

		modData := data[pos : pos+mc.pos]
		mod, err := ParseModule(modData, nil)
		if err != nil {
			return nil, err
		}
		if variant == nil {
			v := mod.Variant
			variant = &v
		} else if *variant != mod.Variant {
			return nil, newParseError(KindMixedVariantLibrary, "library module variant", ErrMixedVariantLibrary)
		}

		lib.Modules = append(lib.Modules, mod)
		lib.ModulePages = append(lib.ModulePages, pos/pageSize)
		warnings = append(warnings, mod.Warnings...)

		pos += mc.pos
		pos += padLen(pos, pageSize)
	}
	if variant != nil {
		lib.Variant = *variant
	}

	if dictStart < 0 || dictStart+int(header.DictionaryBlocks)*dictBlockSize > len(data) {
		return nil, newParseError(KindInvalidLibraryHeader, "dictionary bounds", ErrInvalidLibraryHeader)
	}
	dict := &Dictionary{NumBlocks: int(header.DictionaryBlocks)}
	for i := 0; i < dict.NumBlocks; i++ {
		start := dictStart + i*dictBlockSize
		block := make([]byte, dictBlockSize)
		copy(block, data[start:start+dictBlockSize])
		dict.Blocks = append(dict.Blocks, block)
	}
	lib.Dictionary = dict

	extStart := dictStart + dict.NumBlocks*dictBlockSize
	if extStart < len(data) && RecordType(data[extStart]) == ExtendedDict {
		ed, _, err := decodeExtendedDictionary(data[extStart:])
		if err == nil {
			lib.ExtendedDictionary = &ed
		}
	}

	lib.Warnings = warnings
	return lib, nil
}

// DumpLibrary renders lib back to bytes: header, page-aligned modules, end
// marker, and a freshly built dictionary over each module's THEADR name and
// the page it landed on (§4.6). The dictionary's block count is kept from
// Header.DictionaryBlocks when that value is a valid prime, otherwise
// chosen fresh via chooseDictionaryBlockCount — a library round-tripped
// through Parse/Dump keeps its original block count, but one assembled
// from scratch gets a reasonable one picked for it.
func DumpLibrary(lib *Library) ([]byte, error) {
	pageSize := lib.PageSize
	if pageSize <= 0 {
		pageSize = dictBlockSize
	}

	out := &encoder{}
	hb := &encoder{}
	encodeLibraryHeader(hb, lib.Header)
	// The header record's length field is pageSize-3, so its body fills
	// page 0 once the type, length and checksum bytes are counted.
	if n := pageSize - 4 - len(hb.b); n > 0 {
		hb.bytes(make([]byte, n))
	}
	writeFramedRecord(out, LibraryHeader, hb.b)
	out.bytes(make([]byte, padLen(len(out.b), pageSize)))

	pages := make([]int, len(lib.Modules))
	for i, mod := range lib.Modules {
		pages[i] = len(out.b) / pageSize
		data, err := DumpModule(mod)
		if err != nil {
			return nil, err
		}
		out.bytes(data)
		out.bytes(make([]byte, padLen(len(out.b), pageSize)))
	}

	out.u8(byte(LibraryEndMarker))
	out.u16le(1)
	out.u8(0)
	// The dictionary always starts on a 512-byte boundary, independent of
	// the library's page size (§4.6).
	out.bytes(make([]byte, padLen(len(out.b), dictBlockSize)))

	dictOffset := len(out.b)
	entries := make([]DictEntry, len(lib.Modules))
	for i, mod := range lib.Modules {
		entries[i] = DictEntry{Name: moduleName(mod), PageNumber: uint16(pages[i])}
	}
	nblocks := int(lib.Header.DictionaryBlocks)
	if !validDictionaryBlockCount(nblocks) {
		nblocks = chooseDictionaryBlockCount(len(entries))
	}
	dict, err := buildDictionary(nblocks, entries)
	if err != nil {
		return nil, err
	}
	for _, block := range dict.Blocks {
		out.bytes(block)
	}

	if lib.ExtendedDictionary != nil {
		out.bytes(encodeExtendedDictionary(*lib.ExtendedDictionary))
	}

	lib.Header.DictionaryOffset = uint32(dictOffset)
	lib.Header.DictionaryBlocks = uint16(nblocks)

	final := &encoder{}
	fhb := &encoder{}
	encodeLibraryHeader(fhb, lib.Header)
	if n := pageSize - 4 - len(fhb.b); n > 0 {
		fhb.bytes(make([]byte, n))
	}
	writeFramedRecord(final, LibraryHeader, fhb.b)
	copy(out.b[:len(final.b)], final.b)

	return out.b, nil
}
