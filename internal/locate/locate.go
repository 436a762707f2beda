// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate resolves a free-text query to candidate arXiv paper
// identifiers via web search.
package locate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/arxiv"
	"github.com/raihanfadhilah/arxiv-chatbot/internal/httputil"
	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

// searchAPIBase is the Google Custom Search JSON API endpoint. Declared as
// a var so tests can substitute an httptest server.
var searchAPIBase = "https://www.googleapis.com/customsearch/v1"

// ErrNoPapersFound indicates the web search yielded no results carrying a
// recognizable arXiv identifier. Callers treat this as "nothing new to
// index", not as a fatal condition.
var ErrNoPapersFound = errors.New("no papers found, try a different query")

// Locator finds candidate arXiv identifiers for a query via web search.
type Locator struct {
	http *http.Client
	cfg  types.LocatorConfig
}

// New builds a Locator around the given HTTP client.
func New(httpClient *http.Client, cfg types.LocatorConfig) *Locator {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	return &Locator{http: httpClient, cfg: cfg}
}

// Google Custom Search JSON structures. Only the result link is consumed.
type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Link string `json:"link"`
}

// FindCandidates issues a web search for query and extracts arXiv
// identifiers from the result links. Links without a recognizable
// identifier are dropped silently. The returned set is deduplicated and
// sorted; when it is empty, FindCandidates returns ErrNoPapersFound.
func (l *Locator) FindCandidates(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = l.cfg.MaxResults
	}

	params := url.Values{
		"key": {l.cfg.APIKey},
		"cx":  {l.cfg.SearchEngineID},
		"q":   {query},
		"num": {fmt.Sprintf("%d", limit)},
	}
	reqURL := searchAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", l.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, l.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing web search response: %w", err)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, item := range sr.Items {
		id, ok := arxiv.Normalize(item.Link)
		if !ok {
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, ErrNoPapersFound
	}
	sort.Strings(ids)
	return ids, nil
}
