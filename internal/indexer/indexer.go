// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package indexer orchestrates incremental indexing: locate candidate
// papers for a query, drop the ones already stored, fetch the rest, and
// run them through the ingestion pipeline.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/locate"
	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

// Locator finds candidate paper ids for a query. Satisfied by
// *locate.Locator.
type Locator interface {
	FindCandidates(ctx context.Context, query string, limit int) ([]string, error)
}

// Checker reports whether a paper is already stored. Satisfied by
// *store.Store.
type Checker interface {
	HasPaper(ctx context.Context, paperID string) (bool, error)
}

// Fetcher downloads papers and their metadata. Satisfied by
// *arxiv.Client.
type Fetcher interface {
	Fetch(ctx context.Context, ids []string, w io.Writer) ([]types.PaperRecord, error)
}

// Ingestor chunks and stores staged papers. Satisfied by
// *ingest.Pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, input []string, meta map[string]types.PaperRecord, w io.Writer) ([]types.Chunk, error)
}

// Indexer runs the locate-dedup-fetch-ingest cycle. Concurrent runs
// touching the same paper id serialize on per-id locks, so a paper is
// fetched and ingested at most once at a time.
type Indexer struct {
	locator Locator
	store   Checker
	fetcher Fetcher
	ingest  Ingestor

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires an Indexer from its stage dependencies.
func New(locator Locator, store Checker, fetcher Fetcher, ingest Ingestor) *Indexer {
	return &Indexer{
		locator: locator,
		store:   store,
		fetcher: fetcher,
		ingest:  ingest,
		locks:   make(map[string]*sync.Mutex),
	}
}

// IndexNewPapers finds papers relevant to query that are not yet in the
// store and indexes them. It returns the ids of newly indexed papers; a
// query yielding no candidates, or only already-indexed ones, returns an
// empty set without error.
func (ix *Indexer) IndexNewPapers(ctx context.Context, query string, w io.Writer) ([]string, error) {
	candidates, err := ix.locator.FindCandidates(ctx, query, 0)
	if errors.Is(err, locate.ErrNoPapersFound) {
		fmt.Fprintf(w, "no papers found for query\n")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("locating papers: %w", err)
	}

	fresh, err := ix.filterKnown(ctx, candidates, w)
	if err != nil {
		return nil, err
	}
	if len(fresh) == 0 {
		fmt.Fprintf(w, "all %d candidates already indexed\n", len(candidates))
		return nil, nil
	}

	unlock := ix.lockIDs(fresh)
	defer unlock()

	// Re-check under the locks: a concurrent run may have indexed some of
	// these between the filter and the lock.
	fresh, err = ix.filterKnown(ctx, fresh, io.Discard)
	if err != nil {
		return nil, err
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	records, err := ix.fetcher.Fetch(ctx, fresh, w)
	if err != nil {
		return nil, fmt.Errorf("fetching papers: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	paths := make([]string, len(records))
	meta := make(map[string]types.PaperRecord, len(records))
	indexed := make([]string, len(records))
	for i, rec := range records {
		paths[i] = rec.SourcePDFPath
		meta[rec.PaperID] = rec
		indexed[i] = rec.PaperID
	}

	if _, err := ix.ingest.Ingest(ctx, paths, meta, w); err != nil {
		return nil, fmt.Errorf("ingesting papers: %w", err)
	}
	return indexed, nil
}

// filterKnown returns a new slice holding only the candidates with no
// chunks in the store.
func (ix *Indexer) filterKnown(ctx context.Context, candidates []string, w io.Writer) ([]string, error) {
	fresh := make([]string, 0, len(candidates))
	for _, id := range candidates {
		known, err := ix.store.HasPaper(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", id, err)
		}
		if known {
			fmt.Fprintf(w, "skipped: %s (already indexed)\n", id)
			continue
		}
		fresh = append(fresh, id)
	}
	return fresh, nil
}

// lockIDs acquires the per-paper locks in sorted order and returns a
// release function.
func (ix *Indexer) lockIDs(ids []string) func() {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for _, id := range sorted {
		ix.mu.Lock()
		lock, ok := ix.locks[id]
		if !ok {
			lock = &sync.Mutex{}
			ix.locks[id] = lock
		}
		ix.mu.Unlock()

		lock.Lock()
		held = append(held, lock)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
