// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

const atomFeedBody = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v1</id>
    <title>Attention Revisited</title>
    <summary>  We revisit attention mechanisms.  </summary>
    <published>2023-01-17T12:00:00Z</published>
    <author><name>Jane Doe</name></author>
    <author><name>John Smith</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2106.09685v2</id>
    <title>Low-Rank Adaptation</title>
    <summary>LoRA freezes pretrained weights.</summary>
    <published>2021-06-17T00:00:00Z</published>
    <author><name>Ada Lovelace</name></author>
  </entry>
</feed>`

func newFakeArxiv(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/query", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_list") == "" {
			http.Error(w, "missing id_list", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, atomFeedBody)
	})
	mux.HandleFunc("/pdf/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprintf(w, "%%PDF-1.4 fake %s", strings.TrimPrefix(r.URL.Path, "/pdf/"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	origAPI, origPDF := apiBase, pdfBase
	apiBase = srv.URL + "/api/query"
	pdfBase = srv.URL + "/pdf/"
	t.Cleanup(func() { apiBase, pdfBase = origAPI, origPDF })

	return srv
}

func TestFetch(t *testing.T) {
	newFakeArxiv(t)
	dir := t.TempDir()

	client := NewClient(&http.Client{}, types.FetchConfig{
		PDFDir:       dir,
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  time.Second,
	})

	var out bytes.Buffer
	records, err := client.Fetch(context.Background(), []string{"2301.07041v1", "2106.09685v2"}, &out)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.PaperID != "2301.07041v1" {
		t.Errorf("PaperID = %q, want 2301.07041v1", first.PaperID)
	}
	if first.Title != "Attention Revisited" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Abstract != "We revisit attention mechanisms." {
		t.Errorf("Abstract = %q, want trimmed summary", first.Abstract)
	}
	if len(first.Authors) != 2 || first.Authors[0] != "Jane Doe" {
		t.Errorf("Authors = %v", first.Authors)
	}
	if first.PublishedDate.Year() != 2023 {
		t.Errorf("PublishedDate = %v", first.PublishedDate)
	}

	for _, rec := range records {
		if _, err := os.Stat(rec.SourcePDFPath); err != nil {
			t.Errorf("PDF not staged: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, rec.PaperID+".yaml")); err != nil {
			t.Errorf("sidecar not written: %v", err)
		}
	}

	if !strings.Contains(out.String(), "downloading: 2301.07041v1") {
		t.Errorf("missing progress line, got %q", out.String())
	}
}

func TestFetchSkipsExisting(t *testing.T) {
	newFakeArxiv(t)
	dir := t.TempDir()

	existing := filepath.Join(dir, "2301.07041v1.pdf")
	if err := os.WriteFile(existing, []byte("already here"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := NewClient(&http.Client{}, types.FetchConfig{
		PDFDir:       dir,
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  time.Second,
	})

	var out bytes.Buffer
	if _, err := client.Fetch(context.Background(), []string{"2301.07041v1", "2106.09685v2"}, &out); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if !strings.Contains(out.String(), "skipped: 2301.07041v1 (already exists)") {
		t.Errorf("missing skip line, got %q", out.String())
	}
	data, err := os.ReadFile(existing)
	if err != nil || string(data) != "already here" {
		t.Errorf("existing PDF was overwritten: %q, %v", data, err)
	}
}

func TestFetchEmptyInput(t *testing.T) {
	client := NewClient(&http.Client{}, types.FetchConfig{PDFDir: t.TempDir()})
	records, err := client.Fetch(context.Background(), nil, &bytes.Buffer{})
	if err != nil || records != nil {
		t.Errorf("Fetch(nil) = %v, %v, want nil, nil", records, err)
	}
}

func TestReadMetadataRoundtrip(t *testing.T) {
	dir := t.TempDir()
	rec := types.PaperRecord{
		PaperID:       "2301.07041",
		Title:         "Attention Revisited",
		Authors:       []string{"Jane Doe"},
		PublishedDate: time.Date(2023, 1, 17, 0, 0, 0, 0, time.UTC),
		Abstract:      "We revisit attention mechanisms.",
		SourcePDFPath: filepath.Join(dir, "2301.07041.pdf"),
	}
	if err := writeMetadata(rec, metadataPath(dir, rec.PaperID)); err != nil {
		t.Fatalf("writeMetadata: %v", err)
	}

	got, err := ReadMetadata(dir, "2301.07041")
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if got.Title != rec.Title || got.PaperID != rec.PaperID || len(got.Authors) != 1 {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}
