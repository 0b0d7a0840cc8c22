// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	data        []byte
	objOffsets  []int
	xrefOffset  int
	trailerDict string
}

var sampleObjects = []string{
	"<< /Type /Catalog /Pages 2 0 R >>",
	"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
	"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
}

// buildPDF assembles a classic PDF with a correct cross-reference table.
// An empty trailerDict yields "/Size n /Root 1 0 R".
func buildPDF(header string, objects []string, trailerDict string) fixture {
	var buf bytes.Buffer
	buf.WriteString(header)

	f := fixture{}
	for i, body := range objects {
		f.objOffsets = append(f.objOffsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	f.xrefOffset = buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range f.objOffsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}

	if trailerDict == "" {
		trailerDict = fmt.Sprintf("/Size %d /Root 1 0 R", len(objects)+1)
	}
	f.trailerDict = trailerDict
	fmt.Fprintf(&buf, "trailer\n<< %s >>\nstartxref\n%d\n%%%%EOF\n", trailerDict, f.xrefOffset)
	f.data = buf.Bytes()
	return f
}

const binaryHeader = "%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"

func newStrictParser(t *testing.T) *Parser {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.ParsingMode = Strict
	p, err := NewParser(cfg)
	require.NoError(t, err)
	return p
}

func TestParse_MinimalDocument(t *testing.T) {
	f := buildPDF(binaryHeader, sampleObjects, "")

	doc, err := Parse(f.data)
	require.NoError(t, err)

	assert.Equal(t, Header{Version: "1.7", HasBinaryComment: true}, doc.Header)

	require.Len(t, doc.CrossRefTable.Subsections, 1)
	sub := doc.CrossRefTable.Subsections[0]
	assert.Equal(t, int64(0), sub.StartObjectNumber)
	assert.Equal(t, int64(4), sub.EntryCount)
	require.Len(t, sub.Entries, 4)
	assert.Equal(t, SubsectionEntry{ByteOffset: 0, GenerationNumber: 65535, InUse: false}, sub.Entries[0])
	for i, off := range f.objOffsets {
		e, ok := doc.CrossRefTable.Lookup(int64(i + 1))
		require.True(t, ok)
		assert.Equal(t, int64(off), e.ByteOffset)
		assert.True(t, e.InUse)
		assert.True(t, bytes.HasPrefix(f.data[e.ByteOffset:], []byte(fmt.Sprintf("%d 0 obj", i+1))),
			"xref offset for object %d does not point at its definition", i+1)
	}

	size, ok := doc.Trailer.Size()
	require.True(t, ok)
	assert.Equal(t, int64(4), size)
	root, ok := doc.Trailer.Root()
	require.True(t, ok)
	assert.Equal(t, IndirectReference{ObjectNumber: 1, GenerationNumber: 0, Status: StatusReference}, root)
	assert.True(t, doc.Trailer.WellFormed())

	assert.Equal(t, Footer{StartXRef: int64(f.xrefOffset), HasStartXRef: true, HasEOF: true}, doc.Footer)

	require.Len(t, doc.Objects, len(sampleObjects))
	for i, span := range doc.Objects {
		raw := span.Bytes(f.data)
		assert.True(t, bytes.HasPrefix(raw, []byte(" obj\n")))
		assert.True(t, bytes.HasSuffix(raw, []byte("endobj\n")))
		assert.Contains(t, string(raw), sampleObjects[i])
		if i > 0 {
			assert.LessOrEqual(t, doc.Objects[i-1].EndOffset, span.StartOffset, "spans must not overlap")
		}
	}
}

func TestParse_MultipleSubsections(t *testing.T) {
	data := []byte("%PDF-1.4\nASCII_ONLY_LINE\n" +
		"1 0 obj\n<< /Type /Catalog >>\nendobj\n" +
		"xref\n" +
		"0 1\n" +
		"0000000000 65535 f\r\n" +
		"3 2\n" +
		"0000000025 00000 n\r\n" +
		"0000000099 00002 f\r\n" +
		"trailer\n<< /Size 5 /Root 1 0 R >>\n%%EOF\n")

	doc, err := Parse(data)
	require.NoError(t, err)
	assert.False(t, doc.Header.HasBinaryComment)

	require.Len(t, doc.CrossRefTable.Subsections, 2)
	assert.Equal(t, 3, doc.CrossRefTable.Len())

	e, ok := doc.CrossRefTable.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, SubsectionEntry{ByteOffset: 99, GenerationNumber: 2, InUse: false}, e)

	_, ok = doc.CrossRefTable.Lookup(1)
	assert.False(t, ok, "object 1 is not covered by any subsection")

	assert.False(t, doc.Footer.HasStartXRef)
	assert.True(t, doc.Footer.HasEOF)
}

func TestParse_MissingStructuralKeyword(t *testing.T) {
	f := buildPDF(binaryHeader, sampleObjects, "")
	full := string(f.data)

	tests := []struct {
		name string
		data string
	}{
		{"empty buffer", ""},
		{"no header", strings.Replace(full, "%PDF-", "%XXX-", 1)},
		{"no xref", strings.Replace(full, "\nxref\n", "\nxxxx\n", 1)},
		{"no trailer", strings.Replace(full, "trailer\n", "trailor\n", 1)},
		{"garbage", "hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, ErrMissingStructuralKeyword), "got %v", err)
		})
	}
}

func TestParse_ObjectBoundaryMismatch(t *testing.T) {
	f := buildPDF(binaryHeader, sampleObjects, "")
	// Drop the last endobj: 3 obj markers, 2 endobj markers.
	i := bytes.LastIndex(f.data, []byte("endobj\n"))
	data := append(append([]byte{}, f.data[:i]...), f.data[i+len("endobj\n"):]...)

	_, err := Parse(data)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ObjectBoundaryMismatch, kind)
}

func TestParse_ErrorOrderIsDeterministic(t *testing.T) {
	// Malformed header and unbalanced objects at once: the header error wins.
	f := buildPDF("%PDF-x.y\n", sampleObjects, "")
	data := bytes.Replace(f.data, []byte("endobj\n"), []byte("endob\n"), 1)

	for i := 0; i < 20; i++ {
		_, err := Parse(data)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedHeader)
	}

	// Malformed xref and trailer at once: the xref error wins.
	g := buildPDF(binaryHeader, sampleObjects, "/Size abc /Root 1 0 R")
	data = bytes.Replace(g.data, []byte("65535 f"), []byte("65535 x"), 1)
	for i := 0; i < 20; i++ {
		_, err := Parse(data)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedCrossReferenceSection)
	}
}

func TestParse_Modes(t *testing.T) {
	strict := newStrictParser(t)

	t.Run("leading junk", func(t *testing.T) {
		f := buildPDF("\xef\xbb\xbfjunk\n"+binaryHeader, sampleObjects, "")
		doc, err := Parse(f.data)
		require.NoError(t, err)
		assert.Equal(t, "1.7", doc.Header.Version)

		_, err = strict.Parse(f.data)
		assert.ErrorIs(t, err, ErrMalformedHeader)
	})

	t.Run("leading whitespace is fine in strict mode", func(t *testing.T) {
		f := buildPDF(" \r\n"+binaryHeader, sampleObjects, "")
		_, err := strict.Parse(f.data)
		assert.NoError(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		f := buildPDF(binaryHeader, sampleObjects, "/Size 4")
		doc, err := Parse(f.data)
		require.NoError(t, err)
		assert.False(t, doc.Trailer.WellFormed())

		_, err = strict.Parse(f.data)
		assert.ErrorIs(t, err, ErrMalformedTrailer)
	})

	t.Run("size smaller than table", func(t *testing.T) {
		f := buildPDF(binaryHeader, sampleObjects, "/Size 2 /Root 1 0 R")
		_, err := Parse(f.data)
		require.NoError(t, err)

		_, err = strict.Parse(f.data)
		assert.ErrorIs(t, err, ErrMalformedCrossReferenceSection)
	})
}

func TestParse_SizeCheckAtInt64Limit(t *testing.T) {
	data := []byte("%PDF-1.4\n" +
		"\nxref\n" +
		"9223372036854775807 1\n" +
		"0000000000 65535 f\r\n" +
		"trailer\n<< /Size 2 /Root 1 0 R >>\n")

	_, err := newStrictParser(t).Parse(data)
	assert.ErrorIs(t, err, ErrMalformedCrossReferenceSection)

	doc, err := Parse(data)
	require.NoError(t, err)
	_, ok := doc.CrossRefTable.Lookup(9223372036854775807)
	assert.True(t, ok)
}

func TestParse_BlankLineBeforeTrailer(t *testing.T) {
	f := buildPDF(binaryHeader, sampleObjects, "")
	data := bytes.Replace(f.data, []byte("\r\ntrailer\n"), []byte("\r\n\ntrailer\n"), 1)
	require.NotEqual(t, f.data, data)

	doc, err := newStrictParser(t).Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 4, doc.CrossRefTable.Len())
}

func TestParse_TrailerKeywordInsideObjectData(t *testing.T) {
	objects := append([]string{"(decoy trailer\n<< /Size 99 /Root 7 0 R >>)"}, sampleObjects[1:]...)
	f := buildPDF(binaryHeader, objects, "")

	for _, p := range []*Parser{defaultParser, newStrictParser(t)} {
		doc, err := p.Parse(f.data)
		require.NoError(t, err)
		size, ok := doc.Trailer.Size()
		require.True(t, ok)
		assert.Equal(t, int64(4), size)
		root, ok := doc.Trailer.Root()
		require.True(t, ok)
		assert.Equal(t, int64(1), root.ObjectNumber)
		assert.Equal(t, Footer{StartXRef: int64(f.xrefOffset), HasStartXRef: true, HasEOF: true}, doc.Footer)
	}
}

func TestParse_ConcurrentCallsAgree(t *testing.T) {
	f := buildPDF(binaryHeader, sampleObjects, "")
	want, err := Parse(f.data)
	require.NoError(t, err)

	var wg sync.WaitGroup
	docs := make([]*Document, 16)
	errs := make([]error, 16)
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			docs[i], errs[i] = Parse(f.data)
		}(i)
	}
	wg.Wait()
	for i := range docs {
		require.NoError(t, errs[i])
		assert.Equal(t, want, docs[i])
	}
}

func TestParse_DoesNotModifyInput(t *testing.T) {
	f := buildPDF(binaryHeader, sampleObjects, "")
	before := bytes.Clone(f.data)
	_, err := Parse(f.data)
	require.NoError(t, err)
	assert.Equal(t, before, f.data)
}

type errReaderAt struct{}

func (e errReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return 0, errors.New("read failure")
}

func TestParseReaderAt(t *testing.T) {
	p, err := NewParser(NewDefaultConfig())
	require.NoError(t, err)

	f := buildPDF(binaryHeader, sampleObjects, "")
	doc, err := p.ParseReaderAt(bytes.NewReader(f.data), int64(len(f.data)))
	require.NoError(t, err)
	assert.Len(t, doc.Objects, 3)

	_, err = p.ParseReaderAt(errReaderAt{}, 100)
	assert.ErrorIs(t, err, ErrIOFailure)

	// Declared size larger than the source.
	_, err = p.ParseReaderAt(bytes.NewReader(f.data), int64(len(f.data))+10)
	assert.ErrorIs(t, err, ErrIOFailure)

	_, err = p.ParseReaderAt(bytes.NewReader(nil), -1)
	assert.ErrorIs(t, err, ErrIOFailure)
}

func FuzzParse(f *testing.F) {
	f.Add(buildPDF(binaryHeader, sampleObjects, "").data)
	f.Add([]byte("%PDF-1.4\n\nxref\n0 1\n0000000000 65535 f\r\ntrailer\n<< /Size 1 >>"))
	f.Add([]byte("%PDF-\n\nxref\n9 9\ntrailer\n<<"))
	f.Fuzz(func(t *testing.T, data []byte) {
		doc, err := Parse(data)
		if err != nil {
			_, ok := KindOf(err)
			assert.True(t, ok, "error without kind: %v", err)
			assert.Nil(t, doc)
			return
		}
		for _, s := range doc.Objects {
			assert.Less(t, s.StartOffset, s.EndOffset)
		}
	})
}
