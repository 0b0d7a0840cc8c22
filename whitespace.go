// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

var (
	wsBits    [4]uint64 // 256 bits = 4 * 64
	delimBits [4]uint64
)

func init() {
	for _, b := range []byte{0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20} {
		wsBits[b>>6] |= 1 << (b & 63)
	}
	for _, b := range []byte("()<>[]{}/%") {
		delimBits[b>>6] |= 1 << (b & 63)
	}
}

// isWhitespace reports whether b is one of the six whitespace characters
// defined by ISO 32000-2 §7.2.3 for PDF syntax: 00, 09, 0A, 0C, 0D, 20.
// Note: This is PDF-specific whitespace, not Unicode or Go's definition.
func isWhitespace(b byte) bool {
	return (wsBits[b>>6] & (1 << (b & 63))) != 0
}

// isDelimiter reports whether b is a PDF delimiter character.
func isDelimiter(b byte) bool {
	return (delimBits[b>>6] & (1 << (b & 63))) != 0
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || ('a' <= b && b <= 'f') || ('A' <= b && b <= 'F')
}

// SkipWhitespace advances j past all whitespace.
func SkipWhitespace(buf []byte, j int) int {
	for j < len(buf) && isWhitespace(buf[j]) {
		j++
	}
	return j
}

// EndsWithEOL checks if the last skipped char is CR or LF.
func EndsWithEOL(buf []byte, start, end int) bool {
	if end > start && end <= len(buf) {
		last := buf[end-1]
		return last == '\n' || last == '\r'
	}
	return false
}

// lineEnd returns the index of the first CR or LF at or after i, or len(buf).
func lineEnd(buf []byte, i int) int {
	for i < len(buf) && buf[i] != '\n' && buf[i] != '\r' {
		i++
	}
	return i
}

// skipEOL consumes a single end-of-line marker (CR LF, LF or CR) at i.
// It returns the position after the marker and whether one was present.
func skipEOL(buf []byte, i int) (int, bool) {
	if i >= len(buf) {
		return i, false
	}
	switch buf[i] {
	case '\r':
		if i+1 < len(buf) && buf[i+1] == '\n' {
			return i + 2, true
		}
		return i + 1, true
	case '\n':
		return i + 1, true
	}
	return i, false
}

// digitRun returns the end of the run of ASCII digits starting at i.
func digitRun(buf []byte, i int) int {
	for i < len(buf) && isDigit(buf[i]) {
		i++
	}
	return i
}

// skipBlanks advances past spaces and tabs only; EOL markers are significant
// in the line-oriented parts of the file.
func skipBlanks(buf []byte, i int) int {
	for i < len(buf) && (buf[i] == ' ' || buf[i] == '\t') {
		i++
	}
	return i
}
