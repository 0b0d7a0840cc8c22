// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"cmp"
	"fmt"
	"slices"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
	"github.com/sassoftware/viya-pdf-struct/logger"
)

// Keyword identifies one of the structural markers located by Scan.
type Keyword int

const (
	KeywordHeader  Keyword = iota // "%PDF-"
	KeywordXRef                   // "\nxref\n"
	KeywordTrailer                // "trailer\n"
	KeywordObj                    // " obj\n"
	KeywordEndObj                 // "endobj\n"
	numKeywords
)

// keywordLiterals is indexed by Keyword; its length is fixed by numKeywords.
var keywordLiterals = [numKeywords]string{
	KeywordHeader:  "%PDF-",
	KeywordXRef:    "\nxref\n",
	KeywordTrailer: "trailer\n",
	KeywordObj:     " obj\n",
	KeywordEndObj:  "endobj\n",
}

// Literal returns the exact byte sequence matched for k.
func (k Keyword) Literal() string {
	if k < 0 || k >= numKeywords {
		return ""
	}
	return keywordLiterals[k]
}

func (k Keyword) String() string {
	switch k {
	case KeywordHeader:
		return "%PDF-"
	case KeywordXRef:
		return "xref"
	case KeywordTrailer:
		return "trailer"
	case KeywordObj:
		return "obj"
	case KeywordEndObj:
		return "endobj"
	}
	return fmt.Sprintf("Keyword(%d)", int(k))
}

// A Match is one keyword occurrence covering buf[Start:End].
type Match struct {
	Keyword Keyword
	Start   int
	End     int
}

// Matches is the scanner output in ascending Start order.
type Matches []Match

// Of returns the matches of keyword k, preserving order.
func (ms Matches) Of(k Keyword) Matches {
	var out Matches
	for _, m := range ms {
		if m.Keyword == k {
			out = append(out, m)
		}
	}
	return out
}

// First returns the first match of keyword k at or after offset from.
func (ms Matches) First(k Keyword, from int) (Match, bool) {
	for _, m := range ms {
		if m.Keyword == k && m.Start >= from {
			return m, true
		}
	}
	return Match{}, false
}

var keywordTrie = func() *ahocorasick.Trie {
	b := ahocorasick.NewTrieBuilder()
	for _, lit := range keywordLiterals {
		b.AddString(lit)
	}
	return b.Build()
}()

// Scan locates every keyword occurrence in buf in a single pass.
//
// Occurrences of the same keyword never overlap. Occurrences of different
// keywords may share an end-of-line byte, as in "endobj\nxref\n", where the
// newline closing endobj also opens the xref keyword.
func Scan(buf []byte) Matches {
	raw := keywordTrie.Match(buf)
	out := make(Matches, 0, len(raw))
	for _, m := range raw {
		k := Keyword(m.Pattern())
		start := int(m.Pos())
		out = append(out, Match{Keyword: k, Start: start, End: start + len(keywordLiterals[k])})
	}
	slices.SortFunc(out, func(a, b Match) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Keyword, b.Keyword)
	})

	var lastEnd [numKeywords]int
	kept := out[:0]
	for _, m := range out {
		if m.Start < lastEnd[m.Keyword] {
			continue
		}
		lastEnd[m.Keyword] = m.End
		kept = append(kept, m)
	}
	logger.Debug(fmt.Sprintf("scan: buffer=%d matches=%d", len(buf), len(kept)), true)
	return kept
}
