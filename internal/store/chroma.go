// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists and searches paper chunks in a Chroma vector
// database over its v2 REST API. Embeddings are computed client-side
// through an EmbeddingsProvider; Chroma only holds the vectors.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

const (
	defaultTenant   = "default_tenant"
	defaultDatabase = "default_database"
)

// Store wraps one Chroma collection.
type Store struct {
	http         *http.Client
	baseURL      string
	tenant       string
	database     string
	collectionID string
	embedder     EmbeddingsProvider
}

// Document is one stored chunk as returned by a search.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// New connects to the Chroma server, resolving (or creating) the
// configured collection.
func New(ctx context.Context, httpClient *http.Client, cfg types.StoreConfig, embedder EmbeddingsProvider) (*Store, error) {
	s := &Store{
		http:     httpClient,
		baseURL:  cfg.URL + "/api/v2",
		tenant:   defaultTenant,
		database: defaultDatabase,
		embedder: embedder,
	}

	name := cfg.Collection
	if name == "" {
		name = "arxiv"
	}
	id, err := s.getOrCreateCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolving collection %s: %w", name, err)
	}
	s.collectionID = id
	return s, nil
}

func (s *Store) getOrCreateCollection(ctx context.Context, name string) (string, error) {
	createURL := fmt.Sprintf("%s/tenants/%s/databases/%s/collections", s.baseURL, s.tenant, s.database)
	payload := map[string]any{
		"name":          name,
		"get_or_create": true,
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := s.post(ctx, createURL, payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("collection %s has no id", name)
	}
	return result.ID, nil
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/tenants/%s/databases/%s/collections/%s", s.baseURL, s.tenant, s.database, s.collectionID)
}

// AddDocuments embeds and inserts chunks in a single batch call.
func (s *Store) AddDocuments(ctx context.Context, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	metadatas := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		ids[i] = c.Metadata.ChunkID
		documents[i] = c.Content
		metadatas[i] = map[string]any{
			"paper_id": c.Metadata.PaperID,
			"title":    c.Metadata.Title,
			"authors":  c.Metadata.Authors,
			"date":     c.Metadata.Date,
			"abstract": c.Metadata.Abstract,
		}
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, documents)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}

	payload := map[string]any{
		"ids":        ids,
		"documents":  documents,
		"metadatas":  metadatas,
		"embeddings": embeddings,
	}
	if err := s.post(ctx, s.collectionURL()+"/add", payload, nil); err != nil {
		return fmt.Errorf("adding %d chunks: %w", len(chunks), err)
	}
	return nil
}

// HasPaper reports whether any chunk of the given paper is already
// stored, using a metadata filter on paper_id.
func (s *Store) HasPaper(ctx context.Context, paperID string) (bool, error) {
	payload := map[string]any{
		"where": map[string]any{"paper_id": paperID},
		"limit": 1,
	}

	var result struct {
		IDs []string `json:"ids"`
	}
	if err := s.post(ctx, s.collectionURL()+"/get", payload, &result); err != nil {
		return false, fmt.Errorf("checking paper %s: %w", paperID, err)
	}
	return len(result.IDs) > 0, nil
}

// Search embeds the query, fetches fetchK nearest chunks, and re-ranks
// them for diversity down to k with maximal marginal relevance.
func (s *Store) Search(ctx context.Context, query string, k, fetchK int) ([]Document, error) {
	queryEmb, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	payload := map[string]any{
		"query_embeddings": [][]float32{queryEmb},
		"n_results":        fetchK,
		"include":          []string{"documents", "metadatas", "embeddings"},
	}

	var result struct {
		IDs        [][]string         `json:"ids"`
		Documents  [][]string         `json:"documents"`
		Metadatas  [][]map[string]any `json:"metadatas"`
		Embeddings [][][]float32      `json:"embeddings"`
	}
	if err := s.post(ctx, s.collectionURL()+"/query", payload, &result); err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	if len(result.IDs) == 0 || len(result.IDs[0]) == 0 {
		return nil, nil
	}

	ids := result.IDs[0]
	var embeddings [][]float32
	if len(result.Embeddings) > 0 {
		embeddings = result.Embeddings[0]
	}

	order := maxMarginalRelevance(queryEmb, embeddings, k)
	if len(embeddings) != len(ids) {
		// Without candidate embeddings fall back to distance order.
		order = order[:0]
		for i := 0; i < len(ids) && i < k; i++ {
			order = append(order, i)
		}
	}

	docs := make([]Document, 0, len(order))
	for _, i := range order {
		doc := Document{ID: ids[i]}
		if len(result.Documents) > 0 && i < len(result.Documents[0]) {
			doc.Content = result.Documents[0][i]
		}
		if len(result.Metadatas) > 0 && i < len(result.Metadatas[0]) {
			doc.Metadata = result.Metadatas[0][i]
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// post sends a JSON payload and decodes the JSON response into out when
// out is non-nil.
func (s *Store) post(ctx context.Context, url string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("chroma request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing chroma response: %w", err)
	}
	return nil
}
