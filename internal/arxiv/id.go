// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv resolves arXiv identifiers and fetches paper metadata and
// PDFs from the arXiv API into the local staging directory.
package arxiv

import (
	"regexp"
	"strings"
)

// idPattern matches arXiv identifiers in the YYYY.NNNNN[vN] form, anywhere
// inside a string ("2301.07041", "arXiv:2301.07041v2",
// "https://arxiv.org/abs/2301.07041").
var idPattern = regexp.MustCompile(`(\d{4}\.\d{4,5})(v\d+)?`)

// Normalize extracts the canonical arXiv identifier from s. The second
// return value is false when s contains no recognizable identifier.
// Normalize is idempotent: applying it to its own output returns the same
// identifier.
func Normalize(s string) (string, bool) {
	m := idPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1] + m[2], true
}

// BareID strips the version suffix from a normalized identifier
// ("2301.07041v2" -> "2301.07041").
func BareID(id string) string {
	if i := strings.IndexByte(id, 'v'); i > 0 {
		return id[:i]
	}
	return id
}

// PDFFilename returns the staging filename for an identifier.
func PDFFilename(id string) string {
	return id + ".pdf"
}
