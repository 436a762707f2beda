// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

func newFakeSearch(t *testing.T, links []string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" || r.URL.Query().Get("cx") == "" {
			http.Error(w, "missing credentials", http.StatusBadRequest)
			return
		}
		items := make([]map[string]string, len(links))
		for i, link := range links {
			items[i] = map[string]string{"link": link}
		}
		json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
	t.Cleanup(srv.Close)

	orig := searchAPIBase
	searchAPIBase = srv.URL
	t.Cleanup(func() { searchAPIBase = orig })

	return srv
}

func newTestLocator() *Locator {
	return New(&http.Client{}, types.LocatorConfig{
		APIKey:         "test-key",
		SearchEngineID: "test-cx",
	})
}

func TestFindCandidates(t *testing.T) {
	newFakeSearch(t, []string{
		"https://arxiv.org/abs/2301.07041",
		"https://example.com/blog/attention",
		"https://arxiv.org/pdf/2106.09685v2",
		"https://arxiv.org/abs/2301.07041",
	})

	got, err := newTestLocator().FindCandidates(context.Background(), "attention mechanisms", 0)
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}

	want := []string{"2106.09685v2", "2301.07041"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindCandidates = %v, want %v", got, want)
	}
}

func TestFindCandidatesNoPapers(t *testing.T) {
	newFakeSearch(t, []string{
		"https://example.com/one",
		"https://example.com/two",
	})

	_, err := newTestLocator().FindCandidates(context.Background(), "nothing relevant", 0)
	if !errors.Is(err, ErrNoPapersFound) {
		t.Errorf("err = %v, want ErrNoPapersFound", err)
	}
}

func TestFindCandidatesEmptyResults(t *testing.T) {
	newFakeSearch(t, nil)

	_, err := newTestLocator().FindCandidates(context.Background(), "obscure query", 0)
	if !errors.Is(err, ErrNoPapersFound) {
		t.Errorf("err = %v, want ErrNoPapersFound", err)
	}
}

func TestFindCandidatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	orig := searchAPIBase
	searchAPIBase = srv.URL
	t.Cleanup(func() { searchAPIBase = orig })

	_, err := newTestLocator().FindCandidates(context.Background(), "query", 0)
	if err == nil || errors.Is(err, ErrNoPapersFound) {
		t.Errorf("err = %v, want transport error", err)
	}
}
