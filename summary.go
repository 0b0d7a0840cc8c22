// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/sassoftware/viya-pdf-struct/logger"
)

// Summary is a flat structural report of a Document.
type Summary struct {
	// Header
	PDFVersion       string `json:"pdf:PDFVersion"`
	HasBinaryComment bool   `json:"pdf:hasBinaryComment"`

	// Cross-reference table
	Subsections   int   `json:"xref:subsections"`
	Entries       int   `json:"xref:entries"`
	InUseEntries  int   `json:"xref:inUse"`
	FreeEntries   int   `json:"xref:free"`
	HighestObjNum int64 `json:"xref:highestObjectNumber"`

	// Trailer
	Size        int64    `json:"trailer:size,omitempty"`
	Root        string   `json:"trailer:root,omitempty"`
	Info        string   `json:"trailer:info,omitempty"`
	ID          []string `json:"trailer:id,omitempty"`
	Encrypted   bool     `json:"trailer:encrypted"`
	Keys        []string `json:"trailer:keys"`
	UnknownKeys []string `json:"trailer:unknownKeys,omitempty"`
	WellFormed  bool     `json:"trailer:wellFormed"`

	// Footer
	StartXRef *int64 `json:"footer:startxref,omitempty"`
	HasEOF    bool   `json:"footer:hasEOF"`

	// Body
	Objects     int   `json:"body:objects"`
	ObjectBytes int64 `json:"body:objectBytes"`
}

// Summary computes the structural report for d.
func (d *Document) Summary() Summary {
	var s Summary
	s.PDFVersion = d.Header.Version
	s.HasBinaryComment = d.Header.HasBinaryComment

	s.Subsections = len(d.CrossRefTable.Subsections)
	s.HighestObjNum = -1
	for _, sub := range d.CrossRefTable.Subsections {
		for i, e := range sub.Entries {
			s.Entries++
			if e.InUse {
				s.InUseEntries++
			} else {
				s.FreeEntries++
			}
			if n := sub.StartObjectNumber + int64(i); n > s.HighestObjNum {
				s.HighestObjNum = n
			}
		}
	}

	s.Size, _ = d.Trailer.Size()
	if ref, ok := d.Trailer.Root(); ok {
		s.Root = ref.String()
	}
	if ref, ok := d.Trailer.Info(); ok {
		s.Info = ref.String()
	}
	if ids, ok := d.Trailer.ID(); ok {
		s.ID = ids
	}
	_, s.Encrypted = d.Trailer.byKey(KeyEncrypt)
	s.Keys = []string{} // not nil
	for _, e := range d.Trailer.Entries {
		s.Keys = append(s.Keys, e.Name)
		if e.Key == KeyUnknown {
			s.UnknownKeys = append(s.UnknownKeys, e.Name)
		}
	}
	s.WellFormed = d.Trailer.WellFormed()

	if d.Footer.HasStartXRef {
		off := d.Footer.StartXRef
		s.StartXRef = &off
	}
	s.HasEOF = d.Footer.HasEOF

	s.Objects = len(d.Objects)
	for _, o := range d.Objects {
		s.ObjectBytes += o.Len()
	}
	return s
}

// WriteJSON writes the structural summary as pretty JSON to the provided writer.
func (d *Document) WriteJSON(w io.Writer) error {
	logger.Debug("summary: writing JSON", true)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Summary())
}

// IDBytes decodes the file identifiers to raw bytes. Odd-length hex strings
// are padded with a trailing zero as the PDF format requires.
func (d *Document) IDBytes() ([][]byte, error) {
	ids, ok := d.Trailer.ID()
	if !ok {
		return nil, nil
	}
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		if len(id)%2 == 1 {
			id += "0"
		}
		b, err := hex.DecodeString(id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
