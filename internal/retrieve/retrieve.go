// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve answers free-text queries from the vector store. It
// expands the query into paraphrases, searches each with diversity
// re-ranking, merges the hits, and formats a citation block.
package retrieve

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/store"
	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

// Searcher runs one similarity search. Satisfied by *store.Store.
type Searcher interface {
	Search(ctx context.Context, query string, k, fetchK int) ([]store.Document, error)
}

// Result is a retrieval answer: the matched chunks and a numbered
// citation block for the papers they came from.
type Result struct {
	Documents []store.Document
	Citations string
}

// AsyncResult carries a Result or the error that prevented one.
type AsyncResult struct {
	Result
	Err error
}

// Retriever answers queries from what is already stored.
type Retriever struct {
	expander QueryExpander
	searcher Searcher
	cfg      types.RetrieveConfig
}

// New builds a Retriever. The expander may be nil to disable query
// expansion.
func New(expander QueryExpander, searcher Searcher, cfg types.RetrieveConfig) *Retriever {
	if cfg.K <= 0 {
		cfg.K = 3
	}
	if cfg.FetchK <= 0 {
		cfg.FetchK = 10
	}
	if cfg.MaxQueries <= 0 {
		cfg.MaxQueries = 3
	}
	return &Retriever{expander: expander, searcher: searcher, cfg: cfg}
}

// Retrieve expands query, searches every variant, and merges the hits,
// deduplicated by chunk id in first-seen order. Expansion failure is not
// fatal: the search degrades to the original query.
func (r *Retriever) Retrieve(ctx context.Context, query string) (Result, error) {
	queries := []string{query}
	if r.expander != nil {
		expanded, err := r.expander.Expand(ctx, query, r.cfg.MaxQueries)
		if err == nil {
			queries = expanded
		}
	}

	seen := make(map[string]bool)
	var docs []store.Document
	for _, q := range queries {
		hits, err := r.searcher.Search(ctx, q, r.cfg.K, r.cfg.FetchK)
		if err != nil {
			return Result{}, fmt.Errorf("searching %q: %w", q, err)
		}
		for _, hit := range hits {
			if seen[hit.ID] {
				continue
			}
			seen[hit.ID] = true
			docs = append(docs, hit)
		}
	}

	return Result{Documents: docs, Citations: citations(docs)}, nil
}

// Go runs Retrieve in the background, delivering exactly one value.
func (r *Retriever) Go(ctx context.Context, query string) <-chan AsyncResult {
	ch := make(chan AsyncResult, 1)
	go func() {
		res, err := r.Retrieve(ctx, query)
		ch <- AsyncResult{Result: res, Err: err}
		close(ch)
	}()
	return ch
}

// citations formats one numbered line per distinct source paper, in the
// order papers first appear in the results.
func citations(docs []store.Document) string {
	var b strings.Builder
	seen := make(map[string]bool)
	n := 0
	for _, doc := range docs {
		paperID := metaString(doc.Metadata, "paper_id")
		if paperID == "" || seen[paperID] {
			continue
		}
		seen[paperID] = true
		n++
		fmt.Fprintf(&b, "%d. %s, arXiv ID: %s\n", n, metaString(doc.Metadata, "title"), paperID)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	s, _ := meta[key].(string)
	return s
}

// Indexer grows the store before retrieval. Satisfied by
// *indexer.Indexer.
type Indexer interface {
	IndexNewPapers(ctx context.Context, query string, w io.Writer) ([]string, error)
}

// SearchRetriever indexes new papers matching the query, then retrieves.
// Retrieval itself is identical to Retriever's.
type SearchRetriever struct {
	indexer   Indexer
	retriever *Retriever
	progress  io.Writer
}

// NewSearchRetriever wires indexing ahead of retrieval. Indexing progress
// goes to w.
func NewSearchRetriever(idx Indexer, retriever *Retriever, w io.Writer) *SearchRetriever {
	if w == nil {
		w = io.Discard
	}
	return &SearchRetriever{indexer: idx, retriever: retriever, progress: w}
}

// Retrieve indexes papers for query and then delegates.
func (s *SearchRetriever) Retrieve(ctx context.Context, query string) (Result, error) {
	if _, err := s.indexer.IndexNewPapers(ctx, query, s.progress); err != nil {
		return Result{}, fmt.Errorf("indexing papers: %w", err)
	}
	return s.retriever.Retrieve(ctx, query)
}

// Go runs Retrieve in the background, delivering exactly one value.
func (s *SearchRetriever) Go(ctx context.Context, query string) <-chan AsyncResult {
	ch := make(chan AsyncResult, 1)
	go func() {
		res, err := s.Retrieve(ctx, query)
		ch <- AsyncResult{Result: res, Err: err}
		close(ch)
	}()
	return ch
}
