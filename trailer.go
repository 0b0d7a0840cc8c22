// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/sassoftware/viya-pdf-struct/logger"
)

// TrailerKey classifies a trailer dictionary key. The set is closed:
// any key not listed is KeyUnknown and keeps its value as Opaque.
type TrailerKey int

const (
	KeyUnknown TrailerKey = iota
	KeySize
	KeyPrev
	KeyRoot
	KeyEncrypt
	KeyInfo
	KeyID
)

func (k TrailerKey) String() string {
	switch k {
	case KeySize:
		return "Size"
	case KeyPrev:
		return "Prev"
	case KeyRoot:
		return "Root"
	case KeyEncrypt:
		return "Encrypt"
	case KeyInfo:
		return "Info"
	case KeyID:
		return "ID"
	}
	return "Unknown"
}

func classifyKey(name string) TrailerKey {
	switch name {
	case "Size":
		return KeySize
	case "Prev":
		return KeyPrev
	case "Root":
		return KeyRoot
	case "Encrypt":
		return KeyEncrypt
	case "Info":
		return KeyInfo
	case "ID":
		return KeyID
	}
	return KeyUnknown
}

// TrailerValue is one of Integer, IndirectReference, HexStringArray or Opaque.
// The variant follows from the key: Size is Integer, Root and Info are
// IndirectReference, ID is HexStringArray, everything else is Opaque.
type TrailerValue interface {
	isTrailerValue()
}

type Integer int64

// ObjectStatus tells whether an indirect reference was written as a
// definition ("obj") or a reference ("R").
type ObjectStatus int

const (
	StatusUnknown ObjectStatus = iota
	StatusDefinition
	StatusReference
)

func (s ObjectStatus) String() string {
	switch s {
	case StatusDefinition:
		return "obj"
	case StatusReference:
		return "R"
	}
	return "unknown"
}

type IndirectReference struct {
	ObjectNumber     int64
	GenerationNumber int64
	Status           ObjectStatus
}

func (r IndirectReference) String() string {
	return fmt.Sprintf("%d %d %s", r.ObjectNumber, r.GenerationNumber, r.Status)
}

// HexStringArray holds the hex digits of each string, whitespace removed.
type HexStringArray []string

// Opaque is the undecoded value text, surrounding whitespace trimmed.
type Opaque []byte

func (Integer) isTrailerValue()           {}
func (IndirectReference) isTrailerValue() {}
func (HexStringArray) isTrailerValue()    {}
func (Opaque) isTrailerValue()            {}

var (
	dictOpen     = []byte("<<")
	dictClose    = []byte(">>")
	startxrefTag = []byte("startxref")
	eofTag       = []byte("%%EOF")
)

// parseTrailer decodes the trailer dictionary that follows the trailer keyword
// match m, then the startxref/%%EOF footer after it.
func parseTrailer(buf []byte, m Match, strict bool) (Trailer, Footer, error) {
	logger.Debug(fmt.Sprintf("trailer: parsing at offset=%d", m.Start), true)

	if m.End > len(buf) {
		return Trailer{}, Footer{}, newParseError(MalformedTrailer, m.Start, "trailer keyword out of range")
	}
	rel := bytes.Index(buf[m.End:], dictOpen)
	if rel < 0 {
		return Trailer{}, Footer{}, newParseError(MalformedTrailer, m.End, "missing << after trailer")
	}
	open := m.End + rel
	closeAt, ok := matchDictClose(buf, open+len(dictOpen))
	if !ok {
		return Trailer{}, Footer{}, newParseError(MalformedTrailer, open, "missing >> for trailer dictionary")
	}
	bodyStart := open + len(dictOpen)

	pairs, err := splitTrailerBody(buf[bodyStart:closeAt], bodyStart)
	if err != nil {
		return Trailer{}, Footer{}, err
	}

	var t Trailer
	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if seen[p.name] {
			return Trailer{}, Footer{}, newParseError(MalformedTrailer, p.offset, "duplicate key /%s", p.name)
		}
		seen[p.name] = true

		key := classifyKey(p.name)
		v, err := decodeTrailerValue(key, p.value)
		if err != nil {
			return Trailer{}, Footer{}, &ParseError{Kind: MalformedTrailer, Offset: int64(p.offset), Msg: "/" + p.name, Err: err}
		}
		t.Entries = append(t.Entries, TrailerEntry{Key: key, Name: p.name, Value: v})
	}

	if _, ok := t.Size(); !ok {
		return Trailer{}, Footer{}, newParseError(MalformedTrailer, bodyStart, "missing /Size")
	}
	if _, ok := t.Root(); !ok {
		if strict {
			return Trailer{}, Footer{}, newParseError(MalformedTrailer, bodyStart, "missing /Root")
		}
		logger.Debug("trailer: /Root missing, continuing in best-effort mode", true)
	}

	footer, err := parseFooter(buf, closeAt+len(dictClose))
	if err != nil {
		if strict {
			return Trailer{}, Footer{}, err
		}
		logger.Debug(fmt.Sprintf("trailer: ignoring malformed footer: %v", err), true)
		footer = Footer{}
	}

	logger.Debug(fmt.Sprintf("trailer: entries=%d startxref=%d eof=%v", len(t.Entries), footer.StartXRef, footer.HasEOF), true)
	return t, footer, nil
}

// matchDictClose returns the index of the >> that closes the dictionary whose
// body starts at i. Nested dictionaries and literal strings are skipped.
func matchDictClose(buf []byte, i int) (int, bool) {
	depth := 0
	for i < len(buf) {
		switch {
		case bytes.HasPrefix(buf[i:], dictOpen):
			depth++
			i += 2
		case bytes.HasPrefix(buf[i:], dictClose):
			if depth == 0 {
				return i, true
			}
			depth--
			i += 2
		case buf[i] == '<':
			i = skipHexString(buf, i)
		case buf[i] == '(':
			i = skipLiteralString(buf, i)
		default:
			i++
		}
	}
	return 0, false
}

// skipHexString returns the index after the string opened at buf[i] == '<'.
func skipHexString(buf []byte, i int) int {
	if end := bytes.IndexByte(buf[i:], '>'); end >= 0 {
		return i + end + 1
	}
	return len(buf)
}

// skipLiteralString returns the index after the string opened at buf[i] == '('.
func skipLiteralString(buf []byte, i int) int {
	depth := 0
	for ; i < len(buf); i++ {
		switch buf[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(buf)
}

type rawPair struct {
	name   string
	value  []byte
	offset int
}

// splitTrailerBody tokenizes "/Key value /Key value ...". A key runs from its
// slash to the next whitespace or delimiter. The value runs to the next slash
// that is not inside an array, dictionary or string; a value that is itself a
// name keeps that name.
func splitTrailerBody(body []byte, base int) ([]rawPair, error) {
	var pairs []rawPair
	i := SkipWhitespace(body, 0)
	for i < len(body) {
		if body[i] != '/' {
			return nil, newParseError(MalformedTrailer, base+i, "expected /Key, found %q", body[i])
		}
		keyStart := i + 1
		j := nameEnd(body, keyStart)
		if j == keyStart {
			return nil, newParseError(MalformedTrailer, base+i, "empty key")
		}
		v := SkipWhitespace(body, j)
		k := v
		if k < len(body) && body[k] == '/' {
			k = nameEnd(body, k+1)
		}
		k = valueEnd(body, k)
		pairs = append(pairs, rawPair{
			name:   string(body[keyStart:j]),
			value:  trimWhitespace(body[v:k]),
			offset: base + i,
		})
		i = k
	}
	return pairs, nil
}

func nameEnd(buf []byte, i int) int {
	for i < len(buf) && !isWhitespace(buf[i]) && !isDelimiter(buf[i]) {
		i++
	}
	return i
}

func valueEnd(buf []byte, i int) int {
	depth := 0
	for i < len(buf) {
		switch c := buf[i]; {
		case c == '/' && depth == 0:
			return i
		case c == '[':
			depth++
			i++
		case c == ']':
			if depth > 0 {
				depth--
			}
			i++
		case bytes.HasPrefix(buf[i:], dictOpen):
			depth++
			i += 2
		case bytes.HasPrefix(buf[i:], dictClose):
			if depth > 0 {
				depth--
			}
			i += 2
		case c == '<':
			i = skipHexString(buf, i)
		case c == '(':
			i = skipLiteralString(buf, i)
		default:
			i++
		}
	}
	return i
}

func trimWhitespace(b []byte) []byte {
	start := SkipWhitespace(b, 0)
	end := len(b)
	for end > start && isWhitespace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func decodeTrailerValue(key TrailerKey, value []byte) (TrailerValue, error) {
	switch key {
	case KeySize:
		n, err := strconv.ParseInt(string(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer: %w", err)
		}
		return Integer(n), nil
	case KeyRoot, KeyInfo:
		return parseIndirectReference(value)
	case KeyID:
		return parseHexStringArray(value)
	}
	return Opaque(bytes.Clone(value)), nil
}

// parseIndirectReference parses "<int> <int> <word>" where word is obj or R.
func parseIndirectReference(value []byte) (IndirectReference, error) {
	fields := strings.FieldsFunc(string(value), func(r rune) bool {
		return r < 0x80 && isWhitespace(byte(r))
	})
	if len(fields) != 3 {
		return IndirectReference{}, fmt.Errorf("indirect reference %q: want 3 fields, got %d", value, len(fields))
	}
	num, err := parseDigits(fields[0])
	if err != nil {
		return IndirectReference{}, fmt.Errorf("object number: %w", err)
	}
	gen, err := parseDigits(fields[1])
	if err != nil {
		return IndirectReference{}, fmt.Errorf("generation number: %w", err)
	}
	ref := IndirectReference{ObjectNumber: num, GenerationNumber: gen}
	switch fields[2] {
	case "obj":
		ref.Status = StatusDefinition
	case "R":
		ref.Status = StatusReference
	default:
		for _, c := range []byte(fields[2]) {
			if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
				return IndirectReference{}, fmt.Errorf("indirect reference keyword %q", fields[2])
			}
		}
		ref.Status = StatusUnknown
	}
	return ref, nil
}

func parseDigits(s string) (int64, error) {
	if s == "" || digitRun([]byte(s), 0) != len(s) {
		return 0, fmt.Errorf("%q is not a digit run", s)
	}
	return strconv.ParseInt(s, 10, 64)
}

// parseHexStringArray parses "[ <hex> <hex> ]".
func parseHexStringArray(value []byte) (HexStringArray, error) {
	if len(value) < 2 || value[0] != '[' || value[len(value)-1] != ']' {
		return nil, fmt.Errorf("ID %q is not an array", value)
	}
	inner := value[1 : len(value)-1]
	var out HexStringArray
	i := SkipWhitespace(inner, 0)
	for i < len(inner) {
		if inner[i] != '<' {
			return nil, fmt.Errorf("ID element at %d is not a hex string", i)
		}
		end := bytes.IndexByte(inner[i:], '>')
		if end < 0 {
			return nil, fmt.Errorf("unterminated hex string")
		}
		var sb strings.Builder
		for _, c := range inner[i+1 : i+end] {
			switch {
			case isHexDigit(c):
				sb.WriteByte(c)
			case isWhitespace(c):
			default:
				return nil, fmt.Errorf("invalid hex digit %q", c)
			}
		}
		out = append(out, sb.String())
		i = SkipWhitespace(inner, i+end+1)
	}
	if len(out) != 2 {
		return nil, fmt.Errorf("ID has %d strings, want 2", len(out))
	}
	return out, nil
}

// parseFooter reads "startxref <EOL> <offset>" and "%%EOF" starting at i.
// Neither is required; a startxref keyword not followed by an offset is an error.
func parseFooter(buf []byte, i int) (Footer, error) {
	var f Footer
	i = SkipWhitespace(buf, i)
	if bytes.HasPrefix(buf[i:], startxrefTag) {
		after := i + len(startxrefTag)
		j := SkipWhitespace(buf, after)
		if !EndsWithEOL(buf, after, j) {
			return Footer{}, newParseError(MalformedTrailer, after, "startxref not followed by end-of-line")
		}
		k := digitRun(buf, j)
		if k == j {
			return Footer{}, newParseError(MalformedTrailer, j, "startxref not followed by an offset")
		}
		off, err := strconv.ParseInt(string(buf[j:k]), 10, 64)
		if err != nil {
			return Footer{}, &ParseError{Kind: MalformedTrailer, Offset: int64(j), Msg: "startxref offset", Err: err}
		}
		f.StartXRef = off
		f.HasStartXRef = true
		i = SkipWhitespace(buf, k)
	}
	f.HasEOF = bytes.HasPrefix(buf[i:], eofTag)
	return f, nil
}
