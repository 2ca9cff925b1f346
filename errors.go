// Copyright 2024 The OMF Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package omf

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no record-specific data.
var (
	// ErrTruncated is returned when the input ends mid-record or mid-field.
	ErrTruncated = errors.New("omf: truncated input")

	// ErrUnexpectedRecordType is returned when a record appears where the
	// module state machine forbids it (§3 invariant 4, §4.2 state machine).
	ErrUnexpectedRecordType = errors.New("omf: unexpected record type for current state")

	// ErrMalformedFixupp names a malformed FIXUPP subrecord (§4.5). The
	// FIXUPP decoder does not return it: a reference to an undeclared thread
	// is a ParseError of KindMalformedFixupp, a short body is ErrTruncated.
	ErrMalformedFixupp = errors.New("omf: malformed FIXUPP subrecord")

	// ErrMixedVariantLibrary is returned when two modules of one library
	// disagree on FileVariant (§4.3, a deliberate non-goal of mixed-variant
	// support).
	ErrMixedVariantLibrary = errors.New("omf: library contains modules of different OMF variants")

	// ErrInvalidLibraryHeader is returned when the library header (§4.6)
	// fails its structural checks (bad page size, short record, ...).
	ErrInvalidLibraryHeader = errors.New("omf: invalid library header")

	// ErrCorruptDictionary is returned when the two-level hashed dictionary
	// (§4.6) cannot be parsed or a search visits more entries than the
	// structure allows without finding an empty slot.
	ErrCorruptDictionary = errors.New("omf: corrupt library dictionary")

	// ErrIndexOverflow is returned when a variable-length OMF index (§4.1)
	// decodes to a value outside [0, 0x7FFF].
	ErrIndexOverflow = errors.New("omf: OMF index overflows 15 bits")
)

// ErrorKind discriminates the fatal error taxonomy of spec.md §7. Warnings
// are represented separately, as Warning values collected on the Module or
// Library rather than returned as errors.
type ErrorKind int

const (
	KindTruncated ErrorKind = iota
	KindUnexpectedRecordType
	KindMalformedFixupp
	KindDanglingIndex
	KindMixedVariantLibrary
	KindInvalidLibraryHeader
	KindCorruptDictionary
	KindIndexOverflow
)

func (k ErrorKind) String() string {
	switch k {
	case KindTruncated:
		return "Truncated"
	case KindUnexpectedRecordType:
		return "UnexpectedRecordType"
	case KindMalformedFixupp:
		return "MalformedFixupp"
	case KindDanglingIndex:
		return "DanglingIndex"
	case KindMixedVariantLibrary:
		return "MixedVariantLibrary"
	case KindInvalidLibraryHeader:
		return "InvalidLibraryHeader"
	case KindCorruptDictionary:
		return "CorruptDictionary"
	case KindIndexOverflow:
		return "IndexOverflow"
	default:
		return "Unknown"
	}
}

// ParseError is the fatal-error value surfaced by the parser. Where is a
// short description of the decode step that failed (record type, table
// name, subrecord offset, ...), to let callers report something actionable
// without walking a stack trace.
type ParseError struct {
	Kind  ErrorKind
	Where string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("omf: %s at %s: %v", e.Kind, e.Where, e.Err)
	}
	return fmt.Sprintf("omf: %s at %s", e.Kind, e.Where)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(kind ErrorKind, where string, err error) *ParseError {
	return &ParseError{Kind: kind, Where: where, Err: err}
}

// DanglingIndexError reports a forward or out-of-range reference into one
// of the four ordered tables (§3 invariant 3, §4.7).
type DanglingIndexError struct {
	Table string
	Value int
	Max   int
}

func (e *DanglingIndexError) Error() string {
	return fmt.Sprintf("omf: dangling %s index %d (table has %d entries)", e.Table, e.Value, e.Max)
}

// WarningKind discriminates the non-fatal diagnostics of spec.md §7.
type WarningKind int

const (
	WarnBadChecksum WarningKind = iota
	WarnOversizedRecord
	WarnUnsupportedGroupComponent
	WarnUnknownCommentSubtype
	WarnReservedBitsNonzero
)

func (k WarningKind) String() string {
	switch k {
	case WarnBadChecksum:
		return "BadChecksum"
	case WarnOversizedRecord:
		return "OversizedRecord"
	case WarnUnsupportedGroupComponent:
		return "UnsupportedGroupComponent"
	case WarnUnknownCommentSubtype:
		return "UnknownCommentSubtype"
	case WarnReservedBitsNonzero:
		return "ReservedBitsNonzero"
	default:
		return "Unknown"
	}
}

// Warning is a non-fatal diagnostic collected alongside a successfully
// parsed Module or Library rather than short-circuiting the parse (§7
// propagation policy).
type Warning struct {
	Kind    WarningKind
	Offset  int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s at offset %d: %s", w.Kind, w.Offset, w.Message)
}
