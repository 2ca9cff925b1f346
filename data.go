// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// decodeLEDATA decodes LEDATA (0xA0/0xA1): a segment index, an enumerated
// data offset, then raw bytes to the end of the record (§4.4).
func decodeLEDATA(c *cursor, tbl *tables, width uint32) (LEDATABody, error) {
	segIdx, err := c.omfIndex()
	if err != nil {
		return LEDATABody{}, err
	}
	if err := tbl.checkSegment(segIdx); err != nil {
		return LEDATABody{}, err
	}
	offset, err := c.uWidth(width)
	if err != nil {
		return LEDATABody{}, err
	}
	data, err := c.bytesN(c.remaining())
	if err != nil {
		return LEDATABody{}, err
	}
	return LEDATABody{SegmentIndex: segIdx, DataOffset: offset, Data: data}, nil
}

func encodeLEDATA(e *encoder, body LEDATABody, width uint32) {
	e.omfIndex(body.SegmentIndex)
	e.uWidth(body.DataOffset, width)
	e.bytes(body.Data)
}

// decodeLIDATA decodes LIDATA (0xA2/0xA3): a segment index, an enumerated
// data offset, then a list of iterated data blocks to exhaustion (§4.4).
func decodeLIDATA(c *cursor, tbl *tables, width uint32) (LIDATABody, error) {
	segIdx, err := c.omfIndex()
	if err != nil {
		return LIDATABody{}, err
	}
	if err := tbl.checkSegment(segIdx); err != nil {
		return LIDATABody{}, err
	}
	offset, err := c.uWidth(width)
	if err != nil {
		return LIDATABody{}, err
	}
	var blocks []IteratedBlock
	for c.remaining() > 0 {
		blk, err := decodeIteratedBlock(c, width)
		if err != nil {
			return LIDATABody{}, err
		}
		blocks = append(blocks, blk)
	}
	return LIDATABody{SegmentIndex: segIdx, DataOffset: offset, Blocks: blocks}, nil
}

// decodeIteratedBlock decodes one (repeat_count, block_count, content)
// triple. content is block_count nested blocks when block_count > 0, else
// a single (length, bytes) leaf (§4.4).
func decodeIteratedBlock(c *cursor, width uint32) (IteratedBlock, error) {
	repeat, err := c.uWidth(width)
	if err != nil {
		return IteratedBlock{}, err
	}
	blockCount, err := c.u16le()
	if err != nil {
		return IteratedBlock{}, err
	}
	blk := IteratedBlock{RepeatCount: repeat, BlockCount: blockCount}
	if blockCount > 0 {
		for i := uint16(0); i < blockCount; i++ {
			nested, err := decodeIteratedBlock(c, width)
			if err != nil {
				return IteratedBlock{}, err
			}
			blk.Nested = append(blk.Nested, nested)
		}
		return blk, nil
	}
	leaf, err := c.lpName()
	if err != nil {
		return IteratedBlock{}, err
	}
	blk.Leaf = leaf
	return blk, nil
}

func encodeLIDATA(e *encoder, body LIDATABody, width uint32) {
	e.omfIndex(body.SegmentIndex)
	e.uWidth(body.DataOffset, width)
	for _, blk := range body.Blocks {
		encodeIteratedBlock(e, blk, width)
	}
}

func encodeIteratedBlock(e *encoder, blk IteratedBlock, width uint32) {
	e.uWidth(blk.RepeatCount, width)
	e.u16le(blk.BlockCount)
	if blk.BlockCount > 0 {
		for _, nested := range blk.Nested {
			encodeIteratedBlock(e, nested, width)
		}
		return
	}
	e.lpName(blk.Leaf)
}
