// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package pdfstruct parses the physical structure of PDF files.
//
// # Overview
//
// A basic conforming PDF file is built from four parts: a one-line header
// naming the version, a body of indirect objects, a cross-reference table
// giving the byte offset of each object, and a trailer naming the document's
// root object. This package locates and decodes those parts from a byte
// buffer without interpreting object contents:
//
//	Header         version and binary-comment flag
//	CrossRefTable  subsections of fixed-width 20-byte entries
//	Trailer        the << ... >> dictionary, keys classified and values decoded
//	Footer         the startxref offset and %%EOF marker
//	Objects        raw byte spans of every "obj ... endobj" pair
//
// A single keyword scan over the buffer finds every structural marker; the
// header, table, trailer and object components then work on disjoint views of
// the same buffer in parallel. The first error, in component order, is
// returned and no partial Document is produced.
//
// Fonts, pages, streams, filters, cross-reference streams, encryption and
// incremental updates are not handled.
package pdfstruct

import (
	"fmt"

	"github.com/sassoftware/viya-pdf-struct/logger"
	"github.com/sassoftware/viya-pdf-struct/tracer"
	"golang.org/x/sync/errgroup"
)

// A Parser turns byte buffers into Documents. It holds no per-parse state
// and may be used from several goroutines.
type Parser struct {
	cfg *Config
}

// NewParser validates cfg and returns a Parser using it.
func NewParser(cfg *Config) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}
	tracer.Enable(cfg.DebugOn)
	return &Parser{cfg: cfg}, nil
}

var defaultParser = &Parser{cfg: NewDefaultConfig()}

// Parse parses data with the default configuration.
func Parse(data []byte) (*Document, error) {
	return defaultParser.Parse(data)
}

// Parse parses the full contents of a PDF file.
func (p *Parser) Parse(data []byte) (*Document, error) {
	doc, err := p.parse(data)
	if err != nil {
		logger.Error("parse failed", "err", err)
		return nil, err
	}
	return doc, nil
}

func (p *Parser) parse(data []byte) (*Document, error) {
	logger.Debug(fmt.Sprintf("parse: size=%d mode=%s", len(data), p.cfg.ParsingMode), true)

	matches := Scan(data)

	header, ok := matches.First(KeywordHeader, 0)
	if !ok {
		return nil, newParseError(MissingStructuralKeyword, -1, "no %%PDF- header")
	}
	xref, ok := matches.First(KeywordXRef, 0)
	if !ok {
		return nil, newParseError(MissingStructuralKeyword, -1, "no xref keyword")
	}
	trailerMatch, ok := matches.First(KeywordTrailer, 0)
	if !ok {
		return nil, newParseError(MissingStructuralKeyword, -1, "no trailer keyword")
	}
	// The table is bounded by the first trailer after it, and that trailer is
	// the one decoded; a "trailer" inside object data before xref is ignored.
	tableEnd := -1
	if m, ok := matches.First(KeywordTrailer, xref.End); ok {
		tableEnd = m.Start
		trailerMatch = m
	}

	strict := p.cfg.strict()
	var (
		doc  Document
		errs [4]error
		g    errgroup.Group
	)
	g.SetLimit(p.cfg.MaxWorkers)

	// Each component writes only its own result slot and returns nil; errors
	// are collected in errs so they are reported in component order. g.Wait
	// is only the barrier.
	g.Go(func() error {
		doc.Header, errs[0] = parseHeader(data, header, strict)
		return nil
	})
	g.Go(func() error {
		doc.CrossRefTable, errs[1] = parseCrossRefTable(data, xref, tableEnd)
		return nil
	})
	g.Go(func() error {
		doc.Trailer, doc.Footer, errs[2] = parseTrailer(data, trailerMatch, strict)
		return nil
	})
	g.Go(func() error {
		doc.Objects, errs[3] = objectSpans(matches)
		return nil
	})
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	if err := p.checkInvariants(&doc); err != nil {
		return nil, err
	}

	logger.Debug(fmt.Sprintf("parse: version=%s subsections=%d trailer_entries=%d objects=%d",
		doc.Header.Version, len(doc.CrossRefTable.Subsections), len(doc.Trailer.Entries), len(doc.Objects)), true)
	return &doc, nil
}

// checkInvariants enforces relations between the independently parsed parts.
func (p *Parser) checkInvariants(doc *Document) error {
	size, _ := doc.Trailer.Size()
	if err := checkSize(doc.CrossRefTable, size); err != nil {
		if p.cfg.strict() {
			return err
		}
		logger.Debug(fmt.Sprintf("parse: %v", err), true)
	}
	if !doc.Trailer.WellFormed() {
		logger.Debug("parse: trailer lacks /Root", true)
	}
	return nil
}
