// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Section heading patterns used to trim front matter, references, and
// appendices out of raw page text. Matches are heading lines only, which
// is why the trailing newline is part of the pattern.
var (
	introPattern    = regexp.MustCompile(`Introduction\n|INTRODUCTION\n`)
	refPattern      = regexp.MustCompile(`References\n|REFERENCES\n`)
	appendixPattern = regexp.MustCompile(`Appendix\n|APPENDIX\n`)
)

// extractPageText reads all page text from a PDF in page order.
func extractPageText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// trimSections cuts raw page text down to the paper body: everything
// between the last Introduction heading and the first References heading,
// plus any appendix material after the Appendix heading. Text without an
// Introduction heading is returned untouched.
func trimSections(text string) string {
	intros := introPattern.FindAllStringIndex(text, -1)
	if len(intros) == 0 {
		return text
	}
	afterIntro := text[intros[len(intros)-1][1]:]

	ref := refPattern.FindStringIndex(afterIntro)
	if ref == nil {
		return afterIntro
	}
	body := afterIntro[:ref[0]]
	rest := afterIntro[ref[0]:]

	if app := appendixPattern.FindStringIndex(rest); app != nil {
		body += "\n\n" + rest[app[1]:]
	}
	return body
}
