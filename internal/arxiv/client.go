// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/httputil"
	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

// Base URLs for the arXiv service. Declared as vars so tests can
// substitute httptest servers.
var (
	apiBase = "https://export.arxiv.org/api/query"
	pdfBase = "https://arxiv.org/pdf/"
)

const (
	defaultPollInterval = 1 * time.Second
	defaultPollTimeout  = 2 * time.Minute
)

// Client fetches paper metadata and PDFs from arXiv.
type Client struct {
	http *http.Client
	cfg  types.FetchConfig
}

// NewClient builds a fetcher around the given HTTP client.
func NewClient(httpClient *http.Client, cfg types.FetchConfig) *Client {
	if cfg.PDFDir == "" {
		cfg.PDFDir = "pdfs"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	return &Client{http: httpClient, cfg: cfg}
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// Fetch resolves metadata for the given identifiers and downloads their
// PDFs into the staging directory, writing a YAML metadata sidecar next to
// each PDF. It blocks until every expected file is observed on disk or the
// poll timeout elapses. Records are returned in the order arXiv reports
// them; identifiers unknown to arXiv are absent from the result.
func (c *Client) Fetch(ctx context.Context, ids []string, w io.Writer) ([]types.PaperRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(c.cfg.PDFDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory %s: %w", c.cfg.PDFDir, err)
	}

	entries, err := c.queryAPI(ctx, ids)
	if err != nil {
		return nil, err
	}

	var records []types.PaperRecord
	for i, entry := range entries {
		id, ok := Normalize(entry.ID)
		if !ok {
			// Entry without a recognizable identifier; dropped.
			continue
		}

		rec := types.PaperRecord{
			PaperID:       id,
			Title:         strings.TrimSpace(entry.Title),
			Abstract:      strings.TrimSpace(entry.Summary),
			SourcePDFPath: filepath.Join(c.cfg.PDFDir, PDFFilename(id)),
		}
		for _, a := range entry.Authors {
			rec.Authors = append(rec.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			rec.PublishedDate = t
		}

		if i > 0 && c.cfg.DownloadDelay > 0 {
			time.Sleep(c.cfg.DownloadDelay)
		}

		if _, statErr := os.Stat(rec.SourcePDFPath); statErr == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", id)
		} else {
			fmt.Fprintf(w, "downloading: %s\n", id)
			if err := c.downloadPDF(ctx, id, rec.SourcePDFPath); err != nil {
				return nil, fmt.Errorf("downloading %s: %w", id, err)
			}
		}

		if err := writeMetadata(rec, metadataPath(c.cfg.PDFDir, id)); err != nil {
			return nil, fmt.Errorf("writing metadata for %s: %w", id, err)
		}

		records = append(records, rec)
	}

	if err := c.waitForFiles(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// queryAPI resolves metadata for a list of identifiers in one call.
func (c *Client) queryAPI(ctx context.Context, ids []string) ([]atomEntry, error) {
	params := url.Values{
		"id_list":     {strings.Join(ids, ",")},
		"max_results": {fmt.Sprintf("%d", len(ids))},
	}
	reqURL := apiBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return feed.Entries, nil
}

// downloadPDF fetches the PDF to destPath using a temporary file.
func (c *Client) downloadPDF(ctx context.Context, id, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfBase+id, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// waitForFiles polls the staging directory until every record's PDF exists.
func (c *Client) waitForFiles(ctx context.Context, records []types.PaperRecord) error {
	deadline := time.Now().Add(c.cfg.PollTimeout)
	for {
		missing := ""
		for _, rec := range records {
			if _, err := os.Stat(rec.SourcePDFPath); err != nil {
				missing = rec.SourcePDFPath
				break
			}
		}
		if missing == "" {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %v waiting for %s", c.cfg.PollTimeout, missing)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

func metadataPath(dir, id string) string {
	return filepath.Join(dir, id+".yaml")
}

// writeMetadata writes a PaperRecord sidecar next to the staged PDF.
func writeMetadata(rec types.PaperRecord, path string) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads a PaperRecord sidecar written by a previous fetch.
func ReadMetadata(dir, id string) (types.PaperRecord, error) {
	data, err := os.ReadFile(metadataPath(dir, id))
	if err != nil {
		return types.PaperRecord{}, err
	}
	var rec types.PaperRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return types.PaperRecord{}, err
	}
	return rec, nil
}
