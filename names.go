// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

// decodeTHEADR decodes THEADR (0x80) / LHEADR (0x82): a single
// length-prefixed name, valid only as a module's first record (§3
// invariant 4, §4.4).
func decodeTHEADR(c *cursor) (THEADRBody, error) {
	name, err := c.lpName()
	if err != nil {
		return THEADRBody{}, err
	}
	return THEADRBody{Name: string(name)}, nil
}

func encodeTHEADR(e *encoder, body THEADRBody) {
	e.lpName([]byte(body.Name))
}

// decodeLNAMES decodes LNAMES (0x96) / LLNAMES (0xCA): repeated
// length-prefixed names to exhaustion, each appended to the NameTable
// (§3, §4.4).
func decodeLNAMES(c *cursor, tbl *tables) (LNAMESBody, error) {
	var names []string
	for c.remaining() > 0 {
		name, err := c.lpName()
		if err != nil {
			return LNAMESBody{}, err
		}
		names = append(names, string(name))
		tbl.addName(string(name))
	}
	return LNAMESBody{Names: names}, nil
}

func encodeLNAMES(e *encoder, body LNAMESBody) {
	for _, n := range body.Names {
		e.lpName([]byte(n))
	}
}

// decodeALIAS decodes ALIAS (0xC6): repeated (alias_name, substitute_name)
// pairs to exhaustion.
func decodeALIAS(c *cursor) (ALIASBody, error) {
	var entries []AliasEntry
	for c.remaining() > 0 {
		alias, err := c.lpName()
		if err != nil {
			return ALIASBody{}, err
		}
		sub, err := c.lpName()
		if err != nil {
			return ALIASBody{}, err
		}
		entries = append(entries, AliasEntry{Alias: string(alias), Substitute: string(sub)})
	}
	return ALIASBody{Entries: entries}, nil
}

func encodeALIAS(e *encoder, body ALIASBody) {
	for _, entry := range body.Entries {
		e.lpName([]byte(entry.Alias))
		e.lpName([]byte(entry.Substitute))
	}
}

// decodeVERNUM decodes VERNUM (0xCC): a version string.
func decodeVERNUM(c *cursor) (VERNUMBody, error) {
	b, err := c.bytesN(c.remaining())
	if err != nil {
		return VERNUMBody{}, err
	}
	return VERNUMBody{Version: string(b)}, nil
}

func encodeVERNUM(e *encoder, body VERNUMBody) {
	e.bytes([]byte(body.Version))
}

// decodeVENDEXT decodes VENDEXT (0xCE): a vendor number followed by
// vendor-specific bytes.
func decodeVENDEXT(c *cursor) (VENDEXTBody, error) {
	num, err := c.u16le()
	if err != nil {
		return VENDEXTBody{}, err
	}
	data, err := c.bytesN(c.remaining())
	if err != nil {
		return VENDEXTBody{}, err
	}
	return VENDEXTBody{VendorNumber: num, Data: data}, nil
}

func encodeVENDEXT(e *encoder, body VENDEXTBody) {
	e.u16le(body.VendorNumber)
	e.bytes(body.Data)
}
