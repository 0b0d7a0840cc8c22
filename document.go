// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

// A Document is the physical structure of one PDF file.
// It is built once by Parse and never modified afterwards.
type Document struct {
	Header        Header
	CrossRefTable CrossRefTable
	Trailer       Trailer
	Footer        Footer
	Objects       []ObjectSpan
}

// Header is the first line of the file and the optional binary comment after it.
type Header struct {
	Version          string
	HasBinaryComment bool
}

// CrossRefTable is the file's object-offset index.
type CrossRefTable struct {
	Subsections []Subsection
}

// Len returns the total number of entries across all subsections.
func (t CrossRefTable) Len() int {
	n := 0
	for _, s := range t.Subsections {
		n += len(s.Entries)
	}
	return n
}

// Lookup returns the entry for the given object number.
// When subsections overlap, the first one listed wins.
func (t CrossRefTable) Lookup(objectNumber int64) (SubsectionEntry, bool) {
	for _, s := range t.Subsections {
		if objectNumber >= s.StartObjectNumber && objectNumber-s.StartObjectNumber < s.EntryCount {
			return s.Entries[objectNumber-s.StartObjectNumber], true
		}
	}
	return SubsectionEntry{}, false
}

// A Subsection is a contiguous run of object numbers starting at StartObjectNumber.
// len(Entries) == EntryCount.
type Subsection struct {
	StartObjectNumber int64
	EntryCount        int64
	Entries           []SubsectionEntry
}

// SubsectionEntry is one fixed-width cross-reference record.
type SubsectionEntry struct {
	ByteOffset       int64
	GenerationNumber int
	InUse            bool
}

// Trailer holds the trailer dictionary entries in file order.
type Trailer struct {
	Entries []TrailerEntry
}

// TrailerEntry is one /Key value pair. Name is the key without its slash;
// it is kept for Unknown keys so that they remain distinguishable.
type TrailerEntry struct {
	Key   TrailerKey
	Name  string
	Value TrailerValue
}

// Get returns the entry whose key name is name (without the leading slash).
func (t Trailer) Get(name string) (TrailerEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TrailerEntry{}, false
}

func (t Trailer) byKey(k TrailerKey) (TrailerValue, bool) {
	for _, e := range t.Entries {
		if e.Key == k {
			return e.Value, true
		}
	}
	return nil, false
}

// Size returns the /Size value.
func (t Trailer) Size() (int64, bool) {
	v, ok := t.byKey(KeySize)
	if !ok {
		return 0, false
	}
	n, ok := v.(Integer)
	return int64(n), ok
}

// Root returns the /Root reference.
func (t Trailer) Root() (IndirectReference, bool) {
	return t.reference(KeyRoot)
}

// Info returns the /Info reference.
func (t Trailer) Info() (IndirectReference, bool) {
	return t.reference(KeyInfo)
}

func (t Trailer) reference(k TrailerKey) (IndirectReference, bool) {
	v, ok := t.byKey(k)
	if !ok {
		return IndirectReference{}, false
	}
	ref, ok := v.(IndirectReference)
	return ref, ok
}

// ID returns the two file identifiers as hex digit strings.
func (t Trailer) ID() ([]string, bool) {
	v, ok := t.byKey(KeyID)
	if !ok {
		return nil, false
	}
	ids, ok := v.(HexStringArray)
	return ids, ok
}

// WellFormed reports whether both /Size and /Root are present.
func (t Trailer) WellFormed() bool {
	_, hasSize := t.Size()
	_, hasRoot := t.Root()
	return hasSize && hasRoot
}

// Footer is what follows the trailer dictionary: startxref and %%EOF.
type Footer struct {
	StartXRef    int64
	HasStartXRef bool
	HasEOF       bool
}

// ObjectSpan is the raw byte range [StartOffset, EndOffset) of one indirect
// object, from its " obj" marker through its "endobj" marker.
type ObjectSpan struct {
	StartOffset int64
	EndOffset   int64
}

// Len returns the number of bytes in the span.
func (s ObjectSpan) Len() int64 {
	return s.EndOffset - s.StartOffset
}

// Bytes returns the span's bytes within data, the buffer the Document was parsed from.
// It returns nil if the span does not lie within data.
func (s ObjectSpan) Bytes(data []byte) []byte {
	if s.StartOffset < 0 || s.EndOffset > int64(len(data)) || s.StartOffset >= s.EndOffset {
		return nil
	}
	return data[s.StartOffset:s.EndOffset]
}
