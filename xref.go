// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sassoftware/viya-pdf-struct/logger"
)

// EntrySize is the fixed width of a cross-reference entry, EOL included.
const EntrySize = 20

const (
	maxEntryOffset     = 9999999999
	maxEntryGeneration = 99999
)

var errEntryRange = errors.New("value does not fit the fixed-width entry")

// MarshalBinary encodes e in its 20-byte form:
// "oooooooooo ggggg n\r\n" with a CR LF end-of-line.
func (e SubsectionEntry) MarshalBinary() ([]byte, error) {
	if e.ByteOffset < 0 || e.ByteOffset > maxEntryOffset ||
		e.GenerationNumber < 0 || e.GenerationNumber > maxEntryGeneration {
		return nil, errEntryRange
	}
	flag := 'f'
	if e.InUse {
		flag = 'n'
	}
	return []byte(fmt.Sprintf("%010d %05d %c\r\n", e.ByteOffset, e.GenerationNumber, flag)), nil
}

// UnmarshalBinary decodes a 20-byte entry into e.
func (e *SubsectionEntry) UnmarshalBinary(b []byte) error {
	v, err := ParseSubsectionEntry(b)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// ParseSubsectionEntry decodes exactly one 20-byte cross-reference entry.
// The end-of-line must be one of "SP CR", "SP LF" or "CR LF".
func ParseSubsectionEntry(b []byte) (SubsectionEntry, error) {
	if len(b) != EntrySize {
		return SubsectionEntry{}, newParseError(MalformedCrossReferenceSection, -1, "entry is %d bytes, want %d", len(b), EntrySize)
	}
	if digitRun(b, 0) != 10 || b[10] != ' ' || digitRun(b, 11) != 16 || b[16] != ' ' {
		return SubsectionEntry{}, newParseError(MalformedCrossReferenceSection, -1, "entry fields malformed: %q", b)
	}
	var e SubsectionEntry
	switch b[17] {
	case 'n':
		e.InUse = true
	case 'f':
	default:
		return SubsectionEntry{}, newParseError(MalformedCrossReferenceSection, -1, "entry flag %q is neither n nor f", b[17])
	}
	switch string(b[18:20]) {
	case " \r", " \n", "\r\n":
	default:
		return SubsectionEntry{}, newParseError(MalformedCrossReferenceSection, -1, "entry end-of-line %q is not two bytes", b[18:20])
	}
	// Digit runs of fixed width cannot overflow int64.
	off, _ := strconv.ParseInt(string(b[0:10]), 10, 64)
	gen, _ := strconv.Atoi(string(b[11:16]))
	e.ByteOffset = off
	e.GenerationNumber = gen
	return e, nil
}

// parseCrossRefTable parses the subsections following the xref keyword match m.
// The table ends where the trailer keyword begins; trailerStart is -1 when no
// trailer follows, in which case the table runs to the end of buf and must fail.
func parseCrossRefTable(buf []byte, m Match, trailerStart int) (CrossRefTable, error) {
	logger.Debug(fmt.Sprintf("xref: parsing table at offset=%d trailer=%d", m.End, trailerStart), true)

	end := len(buf)
	if trailerStart >= m.End {
		end = trailerStart
	}
	region := buf[:end]

	var table CrossRefTable
	pos := m.End
	for {
		if pos = skipBlankLines(region, pos); pos >= end {
			break
		}
		sub, next, err := parseSubsection(region, pos)
		if err != nil {
			return CrossRefTable{}, err
		}
		table.Subsections = append(table.Subsections, sub)
		pos = next
	}
	if trailerStart < m.End {
		return CrossRefTable{}, newParseError(MalformedCrossReferenceSection, end, "table not terminated by trailer")
	}
	if len(table.Subsections) == 0 {
		return CrossRefTable{}, newParseError(MalformedCrossReferenceSection, m.End, "table has no subsections")
	}

	logger.Debug(fmt.Sprintf("xref: parsed subsections=%d entries=%d", len(table.Subsections), table.Len()), true)
	return table, nil
}

// skipBlankLines advances past whitespace between subsections. A LF right
// after an entry that ended in CR completes that entry's line, making it 21
// bytes long, so it is left for parseSubsection to reject.
func skipBlankLines(buf []byte, pos int) int {
	if pos > 0 && pos < len(buf) && buf[pos-1] == '\r' && buf[pos] == '\n' {
		return pos
	}
	return SkipWhitespace(buf, pos)
}

// parseSubsection reads "<start> <count><EOL>" at pos followed by count entries.
// It returns the position just past the last entry.
func parseSubsection(buf []byte, pos int) (Subsection, int, error) {
	startEnd := digitRun(buf, pos)
	if startEnd == pos {
		return Subsection{}, pos, newParseError(MalformedCrossReferenceSection, pos, "subsection start is not a digit run")
	}
	sep := skipBlanks(buf, startEnd)
	if sep == startEnd {
		return Subsection{}, pos, newParseError(MalformedCrossReferenceSection, startEnd, "subsection header missing separator")
	}
	countEnd := digitRun(buf, sep)
	if countEnd == sep {
		return Subsection{}, pos, newParseError(MalformedCrossReferenceSection, sep, "subsection count is not a digit run")
	}
	lineStop := skipBlanks(buf, countEnd)
	next, ok := skipEOL(buf, lineStop)
	if !ok {
		return Subsection{}, pos, newParseError(MalformedCrossReferenceSection, lineStop, "subsection header not terminated by end-of-line")
	}

	start, err := strconv.ParseInt(string(buf[pos:startEnd]), 10, 64)
	if err != nil {
		return Subsection{}, pos, &ParseError{Kind: MalformedCrossReferenceSection, Offset: int64(pos), Msg: "subsection start", Err: err}
	}
	count, err := strconv.ParseInt(string(buf[sep:countEnd]), 10, 64)
	if err != nil {
		return Subsection{}, pos, &ParseError{Kind: MalformedCrossReferenceSection, Offset: int64(sep), Msg: "subsection count", Err: err}
	}
	logger.Debug(fmt.Sprintf("xref: subsection start=%d count=%d", start, count))

	// Bound the allocation by what the buffer can actually hold.
	if avail := int64(len(buf)-next) / EntrySize; count > avail {
		return Subsection{}, pos, newParseError(MalformedCrossReferenceSection, next,
			"subsection declares %d entries, only %d available", count, avail)
	}

	sub := Subsection{StartObjectNumber: start, EntryCount: count, Entries: make([]SubsectionEntry, 0, count)}
	for i := int64(0); i < count; i++ {
		e, err := ParseSubsectionEntry(buf[next : next+EntrySize])
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Offset = int64(next)
				pe.Msg = fmt.Sprintf("object %d: %s", start+i, pe.Msg)
			}
			return Subsection{}, pos, err
		}
		sub.Entries = append(sub.Entries, e)
		next += EntrySize
	}
	return sub, next, nil
}

// checkSize verifies that no subsection names an object number at or beyond /Size.
func checkSize(table CrossRefTable, size int64) error {
	for _, s := range table.Subsections {
		if s.EntryCount > 0 && (s.StartObjectNumber >= size || s.EntryCount > size-s.StartObjectNumber) {
			return newParseError(MalformedCrossReferenceSection, -1,
				"subsection %d+%d exceeds trailer /Size %d", s.StartObjectNumber, s.EntryCount, size)
		}
	}
	return nil
}
