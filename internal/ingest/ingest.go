// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns staged PDFs into embedded chunks in the vector
// store: extract, chunk, attach metadata, insert in one batch, record in
// the catalog.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/arxiv"
	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

// ErrInvalidInput indicates the input is not a directory, a PDF file, or
// a list of PDF files.
var ErrInvalidInput = errors.New("input must be a directory, a PDF file, or a list of PDF files")

// Extractor parses PDFs into documents. Satisfied by *extract.Extractor.
type Extractor interface {
	Extract(ctx context.Context, paths []string, w io.Writer) ([]types.ParsedDocument, error)
}

// Splitter segments text. Satisfied by *chunk.Splitter.
type Splitter interface {
	Split(text string) []string
}

// Inserter persists chunk batches. Satisfied by *store.Store.
type Inserter interface {
	AddDocuments(ctx context.Context, chunks []types.Chunk) error
}

// Cataloger records indexed papers. Satisfied by *catalog.Store.
type Cataloger interface {
	Upsert(ctx context.Context, rec types.PaperRecord, chunks int) error
}

// Pipeline wires extraction, chunking, storage, and cataloging.
type Pipeline struct {
	extractor Extractor
	splitter  Splitter
	store     Inserter
	catalog   Cataloger
}

// New builds a Pipeline. The catalog may be nil, in which case indexed
// papers are not recorded locally.
func New(extractor Extractor, splitter Splitter, store Inserter, cat Cataloger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		splitter:  splitter,
		store:     store,
		catalog:   cat,
	}
}

// Ingest extracts, chunks, and stores the papers named by input. Input is
// a directory (all PDFs directly inside it), a single PDF path, or a list
// of PDF paths; anything else is ErrInvalidInput.
//
// meta supplies known metadata keyed by paper id. For papers absent from
// meta, a staged YAML sidecar is consulted first, then the metadata the
// extractor derived. All chunks across the batch go to the store in a
// single insert; the catalog is written per paper after that insert
// succeeds. Chunk ids are "{paper_id}-{i}" with i contiguous from 0.
func (p *Pipeline) Ingest(ctx context.Context, input []string, meta map[string]types.PaperRecord, w io.Writer) ([]types.Chunk, error) {
	paths, err := resolveInput(input)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	docs, err := p.extractor.Extract(ctx, paths, w)
	if err != nil {
		return nil, fmt.Errorf("extracting %d papers: %w", len(paths), err)
	}

	var allChunks []types.Chunk
	records := make([]types.PaperRecord, len(paths))
	counts := make([]int, len(paths))

	for i, path := range paths {
		id := paperID(path)
		rec := resolveMetadata(id, path, docs[i], meta)
		records[i] = rec

		base := types.MetadataFor(rec)
		pieces := p.splitter.Split(docs[i].RawText)
		for j, piece := range pieces {
			md := base
			md.ChunkID = fmt.Sprintf("%s-%d", id, j)
			allChunks = append(allChunks, types.Chunk{Content: piece, Metadata: md})
		}
		counts[i] = len(pieces)
		fmt.Fprintf(w, "chunked: %s (%d chunks)\n", id, len(pieces))
	}

	if err := p.store.AddDocuments(ctx, allChunks); err != nil {
		return nil, fmt.Errorf("storing %d chunks: %w", len(allChunks), err)
	}

	if p.catalog != nil {
		for i, rec := range records {
			if err := p.catalog.Upsert(ctx, rec, counts[i]); err != nil {
				fmt.Fprintf(w, "warning: catalog write failed for %s: %v\n", rec.PaperID, err)
			}
		}
	}

	fmt.Fprintf(w, "\ningested: %d papers, %d chunks\n", len(paths), len(allChunks))
	return allChunks, nil
}

// resolveInput normalizes the accepted input shapes into a list of PDF
// paths.
func resolveInput(input []string) ([]string, error) {
	if len(input) == 0 {
		return nil, ErrInvalidInput
	}

	if len(input) == 1 {
		info, err := os.Stat(input[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if info.IsDir() {
			return listPDFs(input[0])
		}
	}

	for _, path := range input {
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil, fmt.Errorf("%w: %s is not a PDF", ErrInvalidInput, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return input, nil
}

// listPDFs returns the PDF files directly inside dir, sorted by name.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// paperID derives the paper identifier from a PDF filename, falling back
// to the bare stem for non-arXiv files.
func paperID(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if id, ok := arxiv.Normalize(stem); ok {
		return id
	}
	return stem
}

// resolveMetadata picks the best available metadata for one paper:
// caller-supplied, then the staged sidecar, then what extraction derived.
func resolveMetadata(id, path string, doc types.ParsedDocument, meta map[string]types.PaperRecord) types.PaperRecord {
	if rec, ok := meta[id]; ok {
		return rec
	}

	if rec, err := arxiv.ReadMetadata(filepath.Dir(path), id); err == nil {
		return rec
	}

	return types.PaperRecord{
		PaperID:       id,
		Title:         doc.Title,
		Authors:       doc.Authors,
		PublishedDate: doc.PublishedDate,
		Abstract:      doc.Abstract,
		SourcePDFPath: path,
	}
}
