// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// GROBID service names.
const (
	serviceFulltext = "processFulltextDocument"
	serviceHeader   = "processHeaderDocument"
)

// maxInFlight bounds concurrent submissions to the GROBID service.
const maxInFlight = 10

// grobidService submits PDFs to a GROBID server and stages the TEI
// artifacts it returns. Submissions run in the background; callers observe
// completion by polling for artifact files, so a crashed or still-busy
// service surfaces as a poll timeout rather than a direct call error.
type grobidService struct {
	http         *http.Client
	baseURL      string
	outputDir    string
	userAgent    string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// artifactPath returns the staged TEI artifact path for a PDF and service.
func (g *grobidService) artifactPath(pdfPath, service string) string {
	id := artifactID(pdfPath)
	if service == serviceHeader {
		return filepath.Join(g.outputDir, id+".header.grobid.tei.xml")
	}
	return filepath.Join(g.outputDir, id+".grobid.tei.xml")
}

// processBatch submits every path whose artifact is missing, then polls
// until all artifacts exist or the timeout elapses. Already-staged
// artifacts are never resubmitted, which makes re-runs idempotent.
func (g *grobidService) processBatch(ctx context.Context, service string, paths []string, w io.Writer) error {
	var pending []string
	for _, p := range paths {
		if _, err := os.Stat(g.artifactPath(p, service)); err == nil {
			continue
		}
		pending = append(pending, p)
	}

	sem := make(chan struct{}, maxInFlight)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, p := range pending {
		wg.Add(1)
		go func(pdfPath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := g.submit(ctx, service, pdfPath); err != nil {
				mu.Lock()
				fmt.Fprintf(w, "warning: %s failed for %s: %v\n", service, pdfPath, err)
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	return g.waitForArtifacts(ctx, service, paths)
}

// submit posts one PDF to the service and writes the TEI response to the
// artifact path via a temporary file, so pollers never observe a partial
// artifact.
func (g *grobidService) submit(ctx context.Context, service, pdfPath string) error {
	f, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("input", filepath.Base(pdfPath))
	if err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading %s: %w", pdfPath, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	reqURL := g.baseURL + "/api/" + service
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("GROBID request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GROBID returned HTTP %d", resp.StatusCode)
	}

	dest := g.artifactPath(pdfPath, service)
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".tei-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing artifact: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming artifact: %w", err)
	}
	return nil
}

// waitForArtifacts polls until every expected artifact exists.
func (g *grobidService) waitForArtifacts(ctx context.Context, service string, paths []string) error {
	deadline := time.Now().Add(g.pollTimeout)
	for {
		missing := ""
		for _, p := range paths {
			if _, err := os.Stat(g.artifactPath(p, service)); err != nil {
				missing = g.artifactPath(p, service)
				break
			}
		}
		if missing == "" {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s missing after %v", ErrExtractionTimeout, missing, g.pollTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.pollInterval):
		}
	}
}
