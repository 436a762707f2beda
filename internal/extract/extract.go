// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract parses PDFs into plain text plus bibliographic metadata.
// Two interchangeable strategies share the contract: a fast in-process
// parser that trims raw page text between section headings, and a GROBID
// service parser that works from structured TEI markup. Either way,
// metadata comes from GROBID header processing, because raw PDF text does
// not reliably expose title, authors, or abstract structure.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/arxiv"
	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

// ErrExtractionTimeout indicates a TEI artifact never materialized within
// the polling bound.
var ErrExtractionTimeout = errors.New("timed out waiting for extraction artifacts")

const (
	defaultPollInterval = 1 * time.Second
	defaultPollTimeout  = 2 * time.Minute
)

// Extractor parses batches of PDFs using the strategy chosen at
// construction time.
type Extractor struct {
	strategy types.ParserStrategy
	grobid   *grobidService
	output   string
}

// New builds an Extractor. The strategy is dispatched once here, not
// re-checked per call.
func New(httpClient *http.Client, cfg types.ExtractConfig) (*Extractor, error) {
	switch cfg.Strategy {
	case types.StrategyFastLocal, types.StrategyGrobid:
	case "":
		cfg.Strategy = types.StrategyFastLocal
	default:
		return nil, fmt.Errorf("unknown parser strategy %q", cfg.Strategy)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}

	return &Extractor{
		strategy: cfg.Strategy,
		output:   cfg.OutputDir,
		grobid: &grobidService{
			http:         httpClient,
			baseURL:      cfg.GrobidURL,
			outputDir:    cfg.OutputDir,
			userAgent:    cfg.UserAgent,
			pollInterval: cfg.PollInterval,
			pollTimeout:  cfg.PollTimeout,
		},
	}, nil
}

// Strategy reports the parser strategy selected at construction.
func (e *Extractor) Strategy() types.ParserStrategy { return e.strategy }

// Extract parses the given PDFs into documents with body text and
// metadata, in input order. All paths must share one parent directory.
func (e *Extractor) Extract(ctx context.Context, paths []string, w io.Writer) ([]types.ParsedDocument, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if err := sharedParent(paths); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.output, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", e.output, err)
	}

	if e.strategy == types.StrategyGrobid {
		return e.extractGrobid(ctx, paths, w)
	}
	return e.extractFastLocal(ctx, paths, w)
}

// ExtractMetadata runs header-only GROBID processing and returns documents
// carrying metadata but no body text. Papers whose header artifact already
// exists on disk are not resubmitted to the service.
func (e *Extractor) ExtractMetadata(ctx context.Context, paths []string, w io.Writer) ([]types.ParsedDocument, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if err := sharedParent(paths); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.output, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", e.output, err)
	}

	if err := e.grobid.processBatch(ctx, serviceHeader, paths, w); err != nil {
		return nil, err
	}

	docs := make([]types.ParsedDocument, 0, len(paths))
	for _, p := range paths {
		tei, err := parseTEIFile(e.grobid.artifactPath(p, serviceHeader))
		if err != nil {
			return nil, fmt.Errorf("parsing header artifact for %s: %w", p, err)
		}
		doc := tei.document()
		doc.RawText = ""
		docs = append(docs, doc)
	}
	return docs, nil
}

// extractGrobid runs full-text GROBID processing and builds complete
// documents from the TEI artifacts.
func (e *Extractor) extractGrobid(ctx context.Context, paths []string, w io.Writer) ([]types.ParsedDocument, error) {
	if err := e.grobid.processBatch(ctx, serviceFulltext, paths, w); err != nil {
		return nil, err
	}

	docs := make([]types.ParsedDocument, 0, len(paths))
	for _, p := range paths {
		tei, err := parseTEIFile(e.grobid.artifactPath(p, serviceFulltext))
		if err != nil {
			return nil, fmt.Errorf("parsing artifact for %s: %w", p, err)
		}
		docs = append(docs, tei.document())
	}
	return docs, nil
}

// extractFastLocal reads page text in-process and trims it between section
// headings; metadata still comes from GROBID header processing.
func (e *Extractor) extractFastLocal(ctx context.Context, paths []string, w io.Writer) ([]types.ParsedDocument, error) {
	docs, err := e.ExtractMetadata(ctx, paths, w)
	if err != nil {
		return nil, err
	}

	for i, p := range paths {
		text, err := extractPageText(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		docs[i].RawText = trimSections(text)
	}
	return docs, nil
}

// sharedParent verifies the batch constraint that all input files live in
// one directory, since the service call takes a single input path.
func sharedParent(paths []string) error {
	parent := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		if filepath.Dir(p) != parent {
			return fmt.Errorf("all input files must share one parent directory, got %s and %s", parent, filepath.Dir(p))
		}
	}
	return nil
}

// artifactID derives the artifact filename stem from a PDF path. Filenames
// carrying an arXiv identifier use it; anything else keeps its base name.
func artifactID(pdfPath string) string {
	base := filepath.Base(pdfPath)
	stem := base[:len(base)-len(filepath.Ext(base))]
	if id, ok := arxiv.Normalize(stem); ok {
		return id
	}
	return stem
}
