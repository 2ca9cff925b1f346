// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

const (
	dictBlockSize       = 512
	dictBucketsPerBlock = 37
	// minDictionaryBlocks and maxDictionaryBlocks bound dictionary_blocks
	// (§4.6: "must be a prime in [2, 251]").
	minDictionaryBlocks = 2
	maxDictionaryBlocks = 251
)

// LibraryHeader is the body of the library header record (0xF0), minus the
// page size itself (which isLibraryHeader derives from the record length, not
// stored redundantly here) (§4.6).
type LibraryHeader struct {
	DictionaryOffset uint32
	DictionaryBlocks uint16
	CaseSensitive    bool // flags bit 0
	Padding          []byte
}

func decodeLibraryHeader(c *cursor) (LibraryHeader, error) {
	dictOffset, err := c.u32le()
	if err != nil {
		return LibraryHeader{}, err
	}
	dictBlocks, err := c.u16le()
	if err != nil {
		return LibraryHeader{}, err
	}
	flags, err := c.u8()
	if err != nil {
		return LibraryHeader{}, err
	}
	padding, err := c.bytesN(c.remaining())
	if err != nil {
		return LibraryHeader{}, err
	}
	return LibraryHeader{
		DictionaryOffset: dictOffset,
		DictionaryBlocks: dictBlocks,
		CaseSensitive:    flags&1 != 0,
		Padding:          padding,
	}, nil
}

func encodeLibraryHeader(e *encoder, h LibraryHeader) {
	e.u32le(h.DictionaryOffset)
	e.u16le(h.DictionaryBlocks)
	var flags byte
	if h.CaseSensitive {
		flags |= 1
	}
	e.u8(flags)
	e.bytes(h.Padding)
}

// validDictionaryBlockCount reports whether n satisfies §4.6's "prime in
// [2, 251]" requirement.
func validDictionaryBlockCount(n int) bool {
	if n < minDictionaryBlocks || n > maxDictionaryBlocks {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// rotl16 and rotr16 are the 16-bit rotate primitives the dictionary hash
// (§4.6) is built from.
func rotl16(v uint16, n uint) uint16 {
	n &= 15
	if n == 0 {
		return v
	}
	return v<<n | v>>(16-n)
}

func rotr16(v uint16, n uint) uint16 {
	n &= 15
	if n == 0 {
		return v
	}
	return v>>n | v<<(16-n)
}

// dictHash is the four-value result of hashing a module name for dictionary
// placement (§4.6 "Hashing").
type dictHash struct {
	BlockX, BlockD, BucketX, BucketD int
}

// hashLibraryName reproduces the Microsoft LIB dictionary hash bit for bit:
// characters are consumed alternately from the back and the front of the
// name (folded to lowercase via `| 0x20`), driving two independent
// rotate-XOR accumulators whose final values select the starting block,
// the block probe stride, the starting bucket, and the bucket probe
// stride (§4.6).
func hashLibraryName(name string, nblocks int) dictHash {
	blockX := uint16(len(name)) | 0x20
	var blockD uint16
	var bucketX uint16
	bucketD := blockX

	i, j := 0, len(name)-1
	for i <= j {
		back := uint16(name[j]|0x20) & 0xFF
		bucketX = rotr16(bucketX, 2) ^ back
		blockD = rotl16(blockD, 2) ^ back
		j--
		if i > j {
			break
		}
		front := uint16(name[i]|0x20) & 0xFF
		blockX = rotl16(blockX, 2) ^ front
		bucketD = rotr16(bucketD, 2) ^ front
		i++
	}

	h := dictHash{
		BlockX:  int(blockX) % nblocks,
		BlockD:  int(blockD) % nblocks,
		BucketX: int(bucketX) % dictBucketsPerBlock,
		BucketD: int(bucketD) % dictBucketsPerBlock,
	}
	if h.BlockD < 1 {
		h.BlockD = 1
	}
	if h.BucketD < 1 {
		h.BucketD = 1
	}
	return h
}

// DictEntry is one (name, page) pair the dictionary maps, identifying the
// library page a module starts on.
type DictEntry struct {
	Name       string
	PageNumber uint16
}

// Dictionary is the parsed two-level hashed dictionary: NumBlocks raw
// 512-byte blocks, each laid out per §4.6 (37 one-byte bucket slots, a
// free-space pointer, then a half-word-aligned entry area).
type Dictionary struct {
	NumBlocks int
	Blocks    [][]byte
}

func newDictBlock() []byte {
	b := make([]byte, dictBlockSize)
	b[dictBucketsPerBlock] = (dictBucketsPerBlock + 1) / 2 // first free unit, byte offset 38
	return b
}

// newDictionary allocates an empty dictionary of nblocks blocks, ready for
// insert.
func newDictionary(nblocks int) *Dictionary {
	d := &Dictionary{NumBlocks: nblocks, Blocks: make([][]byte, nblocks)}
	for i := range d.Blocks {
		d.Blocks[i] = newDictBlock()
	}
	return d
}

// readDictEntry reads one (length, name, page_number) entry at offset
// within block, returning its on-wire size including any padding byte.
func readDictEntry(block []byte, offset int) (name string, page uint16, size int, ok bool) {
	if offset < 0 || offset >= len(block) {
		return "", 0, 0, false
	}
	length := int(block[offset])
	start := offset + 1
	end := start + length
	if end+2 > len(block) {
		return "", 0, 0, false
	}
	name = string(block[start:end])
	page = uint16(block[end]) | uint16(block[end+1])<<8
	size = 1 + length + 2
	if size%2 == 1 {
		size++
	}
	return name, page, size, true
}

func writeDictEntry(block []byte, offset int, name string, page uint16) int {
	block[offset] = byte(len(name))
	copy(block[offset+1:], name)
	end := offset + 1 + len(name)
	block[end] = byte(page)
	block[end+1] = byte(page >> 8)
	size := 1 + len(name) + 2
	if size%2 == 1 {
		size++
	}
	return size
}

// insert places name/page following the probing discipline of §4.6: within
// a block, step the bucket index by BucketD until an empty slot (value 0)
// is found or all 37 buckets have been tried; a block already flagged full
// (free-pointer byte 0xFF) is skipped entirely, since by definition it has
// no room for a new entry regardless of individual bucket occupancy.
func (d *Dictionary) insert(name string, page uint16) error {
	h := hashLibraryName(name, d.NumBlocks)
	blockIdx := h.BlockX
	for attempt := 0; attempt < d.NumBlocks; attempt++ {
		block := d.Blocks[blockIdx]
		if block[dictBucketsPerBlock] != 0xFF {
			bucket := h.BucketX
			for i := 0; i < dictBucketsPerBlock; i++ {
				if block[bucket] == 0 {
					freeUnits := block[dictBucketsPerBlock]
					offset := int(freeUnits) * 2
					size := 1 + len(name) + 2
					if size%2 == 1 {
						size++
					}
					if offset+size > dictBlockSize {
						block[dictBucketsPerBlock] = 0xFF
						break
					}
					writeDictEntry(block, offset, name, page)
					block[bucket] = freeUnits
					newOffset := offset + size
					if newOffset >= dictBlockSize {
						block[dictBucketsPerBlock] = 0xFF
					} else {
						block[dictBucketsPerBlock] = byte(newOffset / 2)
					}
					return nil
				}
				bucket = (bucket + h.BucketD) % dictBucketsPerBlock
			}
		}
		blockIdx = (blockIdx + h.BlockD) % d.NumBlocks
	}
	return newParseError(KindCorruptDictionary, "dictionary insert", ErrCorruptDictionary)
}

// lookup walks the same probing path as insert. An empty bucket stops the
// search only when the current block is not flagged full; inside a full
// block an apparently-empty bucket carries no information (the block may
// have run out of entry-area space while bucket slots were still unused),
// so the scan must keep visiting that block's remaining buckets instead of
// concluding "not found" (§4.6).
func (d *Dictionary) lookup(name string) (uint16, bool, error) {
	h := hashLibraryName(name, d.NumBlocks)
	blockIdx := h.BlockX
	for attempt := 0; attempt < d.NumBlocks; attempt++ {
		block := d.Blocks[blockIdx]
		full := block[dictBucketsPerBlock] == 0xFF
		bucket := h.BucketX
		for i := 0; i < dictBucketsPerBlock; i++ {
			k := block[bucket]
			if k == 0 {
				if !full {
					return 0, false, nil
				}
			} else {
				entName, page, _, ok := readDictEntry(block, int(k)*2)
				if ok && entName == name {
					return page, true, nil
				}
			}
			bucket = (bucket + h.BucketD) % dictBucketsPerBlock
		}
		blockIdx = (blockIdx + h.BlockD) % d.NumBlocks
	}
	return 0, false, newParseError(KindCorruptDictionary, "dictionary lookup", ErrCorruptDictionary)
}

// entries walks every occupied bucket slot across all blocks, in block then
// bucket-slot order, collecting every (name, page) pair — used when dumping
// a library back out and when archiving a dictionary for inspection
// (lookup() alone only answers membership queries).
func (d *Dictionary) entries() []DictEntry {
	var out []DictEntry
	for _, block := range d.Blocks {
		for bucket := 0; bucket < dictBucketsPerBlock; bucket++ {
			k := block[bucket]
			if k == 0 {
				continue
			}
			name, page, _, ok := readDictEntry(block, int(k)*2)
			if ok {
				out = append(out, DictEntry{Name: name, PageNumber: page})
			}
		}
	}
	return out
}

// buildDictionary allocates a fresh dictionary of nblocks blocks and
// inserts every entry via the probing algorithm above, reproducing what a
// conforming librarian would build.
func buildDictionary(nblocks int, entries []DictEntry) (*Dictionary, error) {
	d := newDictionary(nblocks)
	for _, ent := range entries {
		if err := d.insert(ent.Name, ent.PageNumber); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// chooseDictionaryBlockCount picks the smallest prime in [2, 251] whose
// capacity (37 buckets/block, roughly 16 bytes/entry of usable space) can
// plausibly hold numEntries modules, defaulting to 251 when even that
// cannot. This governs only fresh dictionary construction; a parsed
// library's block count always comes from its own header.
func chooseDictionaryBlockCount(numEntries int) int {
	const assumedBytesPerEntry = 16
	const usableBytesPerBlock = dictBlockSize - dictBucketsPerBlock - 1
	needed := (numEntries*assumedBytesPerEntry + usableBytesPerBlock - 1) / usableBytesPerBlock
	if needed < minDictionaryBlocks {
		needed = minDictionaryBlocks
	}
	for n := needed; n <= maxDictionaryBlocks; n++ {
		if validDictionaryBlockCount(n) {
			return n
		}
	}
	return maxDictionaryBlocks
}

// ExtendedDictEntry is one (page_number, offset_to_deps) pair of the
// optional extended dictionary (§4.6).
type ExtendedDictEntry struct {
	PageNumber   uint16
	OffsetToDeps uint16
}

// ExtendedDictionary is the optional translator-dependency table that may
// follow the regular dictionary (record type 0xF2, §4.6). Entries excludes
// the wire's trailing zero terminator entry; encode reconstructs it.
type ExtendedDictionary struct {
	Entries []ExtendedDictEntry
}

// decodeExtendedDictionary parses an extended dictionary starting at data[0]
// (which must be the 0xF2 type byte) and reports the total bytes consumed.
func decodeExtendedDictionary(data []byte) (ExtendedDictionary, int, error) {
	c := newCursor(data)
	typeByte, err := c.u8()
	if err != nil {
		return ExtendedDictionary{}, 0, err
	}
	if RecordType(typeByte) != ExtendedDict {
		return ExtendedDictionary{}, 0, newParseError(KindInvalidLibraryHeader, "extended dictionary marker", nil)
	}
	length, err := c.u16le()
	if err != nil {
		return ExtendedDictionary{}, 0, err
	}
	body, err := c.bytesN(int(length))
	if err != nil {
		return ExtendedDictionary{}, 0, err
	}
	bc := newCursor(body)
	nModules, err := bc.u16le()
	if err != nil {
		return ExtendedDictionary{}, 0, err
	}
	ed := ExtendedDictionary{}
	for i := 0; i < int(nModules); i++ {
		page, err := bc.u16le()
		if err != nil {
			return ExtendedDictionary{}, 0, err
		}
		dep, err := bc.u16le()
		if err != nil {
			return ExtendedDictionary{}, 0, err
		}
		ed.Entries = append(ed.Entries, ExtendedDictEntry{PageNumber: page, OffsetToDeps: dep})
	}
	// Trailing zero terminator entry; consumed but not retained.
	if _, err := bc.u16le(); err != nil {
		return ExtendedDictionary{}, 0, err
	}
	if _, err := bc.u16le(); err != nil {
		return ExtendedDictionary{}, 0, err
	}
	return ed, 3 + int(length), nil
}

func encodeExtendedDictionary(ed ExtendedDictionary) []byte {
	body := &encoder{}
	body.u16le(uint16(len(ed.Entries)))
	for _, ent := range ed.Entries {
		body.u16le(ent.PageNumber)
		body.u16le(ent.OffsetToDeps)
	}
	body.u16le(0)
	body.u16le(0)

	e := &encoder{}
	e.u8(byte(ExtendedDict))
	e.u16le(uint16(len(body.b)))
	e.bytes(body.b)
	return e.b
}
