// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	IOFailure ErrorKind = iota + 1
	MissingStructuralKeyword
	MalformedHeader
	MalformedCrossReferenceSection
	MalformedTrailer
	ObjectBoundaryMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case IOFailure:
		return "io failure"
	case MissingStructuralKeyword:
		return "missing structural keyword"
	case MalformedHeader:
		return "malformed header"
	case MalformedCrossReferenceSection:
		return "malformed cross-reference section"
	case MalformedTrailer:
		return "malformed trailer"
	case ObjectBoundaryMismatch:
		return "object boundary mismatch"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is. They match any *ParseError of the same kind.
var (
	ErrIOFailure                      error = &ParseError{Kind: IOFailure, Offset: -1}
	ErrMissingStructuralKeyword       error = &ParseError{Kind: MissingStructuralKeyword, Offset: -1}
	ErrMalformedHeader                error = &ParseError{Kind: MalformedHeader, Offset: -1}
	ErrMalformedCrossReferenceSection error = &ParseError{Kind: MalformedCrossReferenceSection, Offset: -1}
	ErrMalformedTrailer               error = &ParseError{Kind: MalformedTrailer, Offset: -1}
	ErrObjectBoundaryMismatch         error = &ParseError{Kind: ObjectBoundaryMismatch, Offset: -1}
)

// A ParseError reports why a buffer could not be parsed.
// Offset is the absolute byte offset at which the problem was detected,
// or -1 when the error is not tied to a position.
type ParseError struct {
	Kind   ErrorKind
	Offset int64
	Msg    string
	Err    error
}

func newParseError(kind ErrorKind, offset int, format string, a ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Offset: int64(offset), Msg: fmt.Sprintf(format, a...)}
}

func (e *ParseError) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a ParseError of the same kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first ParseError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
