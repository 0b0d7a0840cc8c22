// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/sassoftware/viya-pdf-struct/logger"
	"golang.org/x/sync/semaphore"
)

// Processor defines the contract for parsing PDF files from disk.
type Processor interface {
	ParseFile(ctx context.Context, path string) (*Document, error)
}

// processor reads files with a bounded number in flight at once and hands
// their bytes to a Parser.
type processor struct {
	cfg    *Config
	sem    *semaphore.Weighted
	parser *Parser
}

// NewProcessor validates the config and creates a new processor.
func NewProcessor(cfg *Config) (*processor, error) {
	parser, err := NewParser(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug(fmt.Sprintf("Processor initialized: parsing_mode=%v, max_concurrent_pdfs=%d, max_workers=%d",
		cfg.ParsingMode, cfg.MaxConcurrentPDFs, cfg.MaxWorkers), true)

	return &processor{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrentPDFs)),
		parser: parser,
	}, nil
}

// ParseFile reads the file at path and parses it.
// Read failures are reported as IOFailure.
func (p *processor) ParseFile(ctx context.Context, path string) (*Document, error) {
	logger.Debug(fmt.Sprintf("Starting parse: path=%s", path), true)

	if err := p.acquireSlot(ctx); err != nil {
		logger.Debug(fmt.Sprintf("Failed to acquire slot: err=%v", err), true)
		return nil, &ParseError{Kind: IOFailure, Offset: -1, Msg: path, Err: err}
	}
	defer p.sem.Release(1)

	data, err := p.load(ctx, path)
	if err != nil {
		logger.Error("failed to read PDF", "path", path, "err", err)
		return nil, err
	}

	doc, err := p.parser.Parse(data)
	if err != nil {
		return nil, err
	}
	logger.Debug(fmt.Sprintf("Parse completed: path=%s objects=%d", path, len(doc.Objects)), true)
	return doc, nil
}

// FileResult is the outcome of parsing one file in ParseFiles.
type FileResult struct {
	Path     string
	Document *Document
	Err      error
}

// ParseFiles parses every path, at most MaxConcurrentPDFs at a time, and
// returns the results in the order of paths.
func (p *processor) ParseFiles(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	numWorkers := min(p.cfg.MaxConcurrentPDFs, len(paths))
	jobs := make(chan int, len(paths))

	var wg sync.WaitGroup
	p.startWorkers(ctx, paths, jobs, results, numWorkers, &wg)
	p.feedJobs(ctx, len(paths), jobs)
	close(jobs)
	wg.Wait()

	// Paths never dispatched because ctx ended still get a result.
	for i := range results {
		if results[i].Path == "" {
			results[i] = FileResult{Path: paths[i], Err: &ParseError{Kind: IOFailure, Offset: -1, Msg: paths[i], Err: ctx.Err()}}
		}
	}
	return results
}

func (p *processor) startWorkers(ctx context.Context, paths []string, jobs <-chan int, results []FileResult, numWorkers int, wg *sync.WaitGroup) {
	logger.Debug(fmt.Sprintf("Spawning workers: num_workers=%d", numWorkers), true)
	for w := 1; w <= numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range jobs {
				doc, err := p.ParseFile(ctx, paths[i])
				// Each index is written by exactly one worker.
				results[i] = FileResult{Path: paths[i], Document: doc, Err: err}
				if err != nil {
					logger.Debug(fmt.Sprintf("Worker: parse error: worker_id=%d path=%s err=%v", id, paths[i], err), true)
				}
			}
		}(w)
	}
}

func (p *processor) feedJobs(ctx context.Context, total int, jobs chan<- int) {
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			logger.Debug("Context cancelled while feeding jobs", true)
			return
		case jobs <- i:
		}
	}
}

// Summary writes the structural summary of the file at path as JSON to w.
func (p *processor) Summary(ctx context.Context, path string, w io.Writer) error {
	doc, err := p.ParseFile(ctx, path)
	if err != nil {
		return err
	}
	if err := doc.WriteJSON(w); err != nil {
		logger.Error("failed to write summary")
		return err
	}
	return nil
}

func (p *processor) acquireSlot(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	return nil
}

// load reads the whole file into memory, retrying transient read failures.
func (p *processor) load(ctx context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Kind: IOFailure, Offset: -1, Msg: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &ParseError{Kind: IOFailure, Offset: -1, Msg: path, Err: err}
	}
	size := fi.Size()
	if p.cfg.MaxFileSize > 0 && size > p.cfg.MaxFileSize {
		return nil, newParseError(IOFailure, -1, "%s: size %d exceeds limit %d", path, size, p.cfg.MaxFileSize)
	}
	logger.Debug(fmt.Sprintf("document: file:%s -- opened (size=%d)", path, size), true)

	return p.readWithRetry(ctx, f, size, path)
}

// readWithRetry reads size bytes from ra, retrying transient failures up to
// MaxRetries times. Every failure is reported as IOFailure.
func (p *processor) readWithRetry(ctx context.Context, ra io.ReaderAt, size int64, path string) ([]byte, error) {
	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return nil, &ParseError{Kind: IOFailure, Offset: -1, Msg: path, Err: cerr}
		}
		var data []byte
		data, err = readAllAt(ra, size)
		if err == nil {
			return data, nil
		}
		if !retryable(err) {
			break
		}
		logger.Debug(fmt.Sprintf("Retrying read: attempt=%d err=%v", attempt, err), true)
	}
	return nil, &ParseError{Kind: IOFailure, Offset: -1, Msg: path, Err: err}
}

// ParseReaderAt reads size bytes from ra and parses them.
func (p *Parser) ParseReaderAt(ra io.ReaderAt, size int64) (*Document, error) {
	if size < 0 {
		return nil, newParseError(IOFailure, -1, "negative size %d", size)
	}
	data, err := readAllAt(ra, size)
	if err != nil {
		return nil, &ParseError{Kind: IOFailure, Offset: -1, Err: err}
	}
	return p.Parse(data)
}

func readAllAt(ra io.ReaderAt, size int64) ([]byte, error) {
	buf := make([]byte, size)
	n, err := ra.ReadAt(buf, 0)
	if int64(n) == size {
		// ReadAt may report io.EOF together with a full read.
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, err
}

func retryable(err error) bool {
	return !errors.Is(err, fs.ErrNotExist) &&
		!errors.Is(err, fs.ErrPermission) &&
		!errors.Is(err, fs.ErrClosed)
}
