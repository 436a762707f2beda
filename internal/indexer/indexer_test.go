// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package indexer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/locate"
	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

type fakeLocator struct {
	ids []string
	err error
}

func (f *fakeLocator) FindCandidates(context.Context, string, int) ([]string, error) {
	return f.ids, f.err
}

type fakeChecker struct {
	mu    sync.Mutex
	known map[string]bool
}

func (f *fakeChecker) HasPaper(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.known[id], nil
}

func (f *fakeChecker) markKnown(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.known == nil {
		f.known = make(map[string]bool)
	}
	f.known[id] = true
}

type fakeFetcher struct {
	mu      sync.Mutex
	fetched [][]string
}

func (f *fakeFetcher) Fetch(_ context.Context, ids []string, _ io.Writer) ([]types.PaperRecord, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, ids)
	f.mu.Unlock()

	records := make([]types.PaperRecord, len(ids))
	for i, id := range ids {
		records[i] = types.PaperRecord{
			PaperID:       id,
			Title:         "Title " + id,
			SourcePDFPath: "pdfs/" + id + ".pdf",
		}
	}
	return records, nil
}

type fakeIngestor struct {
	checker *fakeChecker

	mu    sync.Mutex
	calls int
	paths []string
	meta  map[string]types.PaperRecord
}

func (f *fakeIngestor) Ingest(_ context.Context, input []string, meta map[string]types.PaperRecord, _ io.Writer) ([]types.Chunk, error) {
	f.mu.Lock()
	f.calls++
	f.paths = append(f.paths, input...)
	f.meta = meta
	f.mu.Unlock()

	if f.checker != nil {
		for id := range meta {
			f.checker.markKnown(id)
		}
	}
	return nil, nil
}

func TestIndexNewPapersFiltersKnown(t *testing.T) {
	locator := &fakeLocator{ids: []string{"2301.00001", "2301.00002"}}
	checker := &fakeChecker{known: map[string]bool{"2301.00001": true}}
	fetcher := &fakeFetcher{}
	ingestor := &fakeIngestor{}

	ix := New(locator, checker, fetcher, ingestor)
	got, err := ix.IndexNewPapers(context.Background(), "attention", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("IndexNewPapers: %v", err)
	}

	if !reflect.DeepEqual(got, []string{"2301.00002"}) {
		t.Errorf("indexed = %v, want [2301.00002]", got)
	}
	if len(fetcher.fetched) != 1 || !reflect.DeepEqual(fetcher.fetched[0], []string{"2301.00002"}) {
		t.Errorf("fetched = %v, want only the fresh paper", fetcher.fetched)
	}
	if rec, ok := ingestor.meta["2301.00002"]; !ok || rec.Title != "Title 2301.00002" {
		t.Errorf("ingest meta = %v, want fetched metadata passed through", ingestor.meta)
	}
	if !reflect.DeepEqual(ingestor.paths, []string{"pdfs/2301.00002.pdf"}) {
		t.Errorf("ingest paths = %v", ingestor.paths)
	}
}

func TestIndexNewPapersNoCandidates(t *testing.T) {
	locator := &fakeLocator{err: locate.ErrNoPapersFound}
	fetcher := &fakeFetcher{}

	ix := New(locator, &fakeChecker{}, fetcher, &fakeIngestor{})
	got, err := ix.IndexNewPapers(context.Background(), "obscure", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("IndexNewPapers: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("indexed = %v, want empty set", got)
	}
	if len(fetcher.fetched) != 0 {
		t.Error("fetch ran despite no candidates")
	}
}

func TestIndexNewPapersAllKnown(t *testing.T) {
	locator := &fakeLocator{ids: []string{"2301.00001", "2301.00002"}}
	checker := &fakeChecker{known: map[string]bool{"2301.00001": true, "2301.00002": true}}
	fetcher := &fakeFetcher{}
	ingestor := &fakeIngestor{}

	ix := New(locator, checker, fetcher, ingestor)
	got, err := ix.IndexNewPapers(context.Background(), "attention", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("IndexNewPapers: %v", err)
	}
	if len(got) != 0 || len(fetcher.fetched) != 0 || ingestor.calls != 0 {
		t.Errorf("indexed = %v, fetches = %d, ingests = %d; want all zero", got, len(fetcher.fetched), ingestor.calls)
	}
}

func TestIndexNewPapersLocatorError(t *testing.T) {
	locator := &fakeLocator{err: errors.New("search quota exceeded")}

	ix := New(locator, &fakeChecker{}, &fakeFetcher{}, &fakeIngestor{})
	if _, err := ix.IndexNewPapers(context.Background(), "attention", &bytes.Buffer{}); err == nil {
		t.Error("locator error not propagated")
	}
}

func TestIndexNewPapersConcurrentRunsIngestOnce(t *testing.T) {
	locator := &fakeLocator{ids: []string{"2301.00001"}}
	checker := &fakeChecker{}
	fetcher := &fakeFetcher{}
	ingestor := &fakeIngestor{checker: checker}

	ix := New(locator, checker, fetcher, ingestor)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ix.IndexNewPapers(context.Background(), "attention", io.Discard); err != nil {
				t.Errorf("IndexNewPapers: %v", err)
			}
		}()
	}
	wg.Wait()

	if ingestor.calls != 1 {
		t.Errorf("ingest calls = %d, want 1 (paper serialized on its lock)", ingestor.calls)
	}
}
