// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"bytes"
	"fmt"

	"github.com/sassoftware/viya-pdf-struct/logger"
)

var headerTag = []byte(keywordLiterals[KeywordHeader])

// parseHeader reads the version line that starts at the %PDF- match m and
// classifies the line after it.
//
// The version runs to the next end-of-line marker, so multi-digit versions and
// trailing blanks are handled without fixed offsets. In strict mode only PDF
// whitespace may precede the tag; best-effort mode tolerates up to
// maxHeaderJunk bytes of leading garbage such as a byte order mark.
func parseHeader(buf []byte, m Match, strict bool) (Header, error) {
	logger.Debug(fmt.Sprintf("header: parsing at offset=%d", m.Start), true)

	if m.Start < 0 || m.End > len(buf) || !bytes.Equal(buf[m.Start:m.End], headerTag) {
		return Header{}, newParseError(MalformedHeader, m.Start, "missing %%PDF- tag")
	}
	if strict {
		if SkipWhitespace(buf, 0) != m.Start {
			return Header{}, newParseError(MalformedHeader, 0, "unexpected bytes before %%PDF- tag")
		}
	} else if m.Start > maxHeaderJunk {
		return Header{}, newParseError(MalformedHeader, m.Start, "%%PDF- tag beyond first %d bytes", maxHeaderJunk)
	}

	end := lineEnd(buf, m.End)
	// Some files have trailing spaces/tabs/NULLs before the newline; trim them.
	version := bytes.TrimRight(buf[m.End:end], " \t\x00")
	if !validVersion(version) {
		return Header{}, newParseError(MalformedHeader, m.End, "invalid version %q", version)
	}

	h := Header{Version: string(version)}
	next, ok := skipEOL(buf, end)
	if ok {
		commentEnd := lineEnd(buf, next)
		h.HasBinaryComment = hasHighByte(buf[next:commentEnd])
	}

	logger.Debug(fmt.Sprintf("header: PDF-%s binary=%v", h.Version, h.HasBinaryComment), true)
	return h, nil
}

// validVersion reports whether v has the form major.minor with digit runs.
func validVersion(v []byte) bool {
	dot := bytes.IndexByte(v, '.')
	if dot <= 0 || dot == len(v)-1 {
		return false
	}
	return digitRun(v, 0) == dot && digitRun(v, dot+1) == len(v)
}

func hasHighByte(line []byte) bool {
	for _, c := range line {
		if c >= 0x80 {
			return true
		}
	}
	return false
}
