// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/go-omf/omf/log"
)

// Options controls parsing behavior of Open and OpenBytes. VariantHint is
// passed on to ParseModule for a single module; ParseLibrary takes no
// options.
type Options struct {
	// VariantHint overrides §4.3's variant detection when non-nil, useful
	// when a caller already knows the dialect (e.g. every module pulled
	// from the same library shares the library's first module's variant).
	VariantHint *FileVariant

	// A custom logger; defaults to a stderr logger filtered to warnings
	// and above when nil.
	Logger log.Logger
}

func (o *Options) logger() *log.Helper {
	if o == nil || o.Logger == nil {
		return log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelWarn)))
	}
	return log.NewHelper(o.Logger)
}

// File is an open, memory-mapped OMF file: either a single module or a
// library container, decoded on Open and kept alive only as long as the
// backing mapping is (Close unmaps it).
type File struct {
	Module  *Module
	Library *Library

	data mmap.MMap
	f    *os.File
}

// Open memory-maps name and decodes it as either a single module or a
// library container, detected by isLibraryHeader (§4.3, §4.6).
func Open(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file, err := decodeFile(data, opts)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	file.data = data
	file.f = f
	return file, nil
}

// OpenBytes decodes data already held in memory, without mmap-ing a file.
func OpenBytes(data []byte, opts *Options) (*File, error) {
	return decodeFile(data, opts)
}

func decodeFile(data []byte, opts *Options) (*File, error) {
	logger := opts.logger()
	if _, ok := isLibraryHeader(data); ok {
		lib, err := ParseLibrary(data)
		if err != nil {
			return nil, err
		}
		for _, w := range lib.Warnings {
			logger.Warnf("%s", w)
		}
		return &File{Library: lib}, nil
	}

	var hint *FileVariant
	if opts != nil {
		hint = opts.VariantHint
	}
	mod, err := ParseModule(data, hint)
	if err != nil {
		return nil, err
	}
	for _, w := range mod.Warnings {
		logger.Warnf("%s", w)
	}
	return &File{Module: mod}, nil
}

// Close unmaps the backing file, if Open mapped one. OpenBytes-backed
// Files have nothing to release and always return nil.
func (f *File) Close() error {
	if f.data != nil {
		_ = f.data.Unmap()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Dump re-renders the decoded module or library back to bytes.
func (f *File) Dump() ([]byte, error) {
	if f.Library != nil {
		return DumpLibrary(f.Library)
	}
	return DumpModule(f.Module)
}
