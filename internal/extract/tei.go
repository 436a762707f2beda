// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

// TEI markup structures as produced by GROBID. Only the elements the
// pipeline consumes are mapped.
type teiFile struct {
	Header teiHeader `xml:"teiHeader"`
	Text   teiText   `xml:"text"`
}

type teiHeader struct {
	FileDesc    teiFileDesc    `xml:"fileDesc"`
	ProfileDesc teiProfileDesc `xml:"profileDesc"`
}

type teiFileDesc struct {
	Title           string             `xml:"titleStmt>title"`
	PublicationStmt teiPublicationStmt `xml:"publicationStmt"`
	SourceDesc      teiSourceDesc      `xml:"sourceDesc"`
}

type teiPublicationStmt struct {
	Date teiDate `xml:"date"`
}

type teiDate struct {
	When string `xml:"when,attr"`
}

type teiSourceDesc struct {
	Analytic teiAnalytic `xml:"biblStruct>analytic"`
}

type teiAnalytic struct {
	Authors []teiAuthor `xml:"author"`
	IDs     []teiIdno   `xml:"idno"`
}

type teiIdno struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type teiAuthor struct {
	Forenames []teiForename `xml:"persName>forename"`
	Surname   string        `xml:"persName>surname"`
}

type teiForename struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type teiProfileDesc struct {
	Abstract teiRawText `xml:"abstract"`
}

type teiText struct {
	Divs []teiDiv `xml:"body>div"`
}

type teiDiv struct {
	Type  string `xml:"type,attr"`
	Inner string `xml:",innerxml"`
}

type teiRawText struct {
	Inner string `xml:",innerxml"`
}

// parseTEIFile reads and decodes one staged TEI artifact.
func parseTEIFile(path string) (*teiFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tei teiFile
	if err := xml.Unmarshal(data, &tei); err != nil {
		return nil, fmt.Errorf("decoding TEI: %w", err)
	}
	return &tei, nil
}

// document assembles a ParsedDocument from the decoded TEI markup.
func (t *teiFile) document() types.ParsedDocument {
	doc := types.ParsedDocument{
		Title:    strings.TrimSpace(t.Header.FileDesc.Title),
		Abstract: flattenMarkup(t.Header.ProfileDesc.Abstract.Inner, " "),
		Authors:  t.authors(),
		DOI:      t.doi(),
		RawText:  t.bodyText(),
	}
	if when := t.Header.FileDesc.PublicationStmt.Date.When; when != "" {
		doc.PublishedDate = parseTEIDate(when)
	}
	return doc
}

// authors reconstructs author names from first/middle forenames and the
// surname. Authors without a surname are dropped.
func (t *teiFile) authors() []string {
	var authors []string
	for _, a := range t.Header.FileDesc.SourceDesc.Analytic.Authors {
		surname := strings.TrimSpace(a.Surname)
		if surname == "" {
			continue
		}
		var first, middle string
		for _, f := range a.Forenames {
			switch f.Type {
			case "first":
				first = strings.TrimSpace(f.Value)
			case "middle":
				middle = strings.TrimSpace(f.Value)
			}
		}
		name := strings.Join(nonEmpty(first, middle, surname), " ")
		authors = append(authors, name)
	}
	return authors
}

func (t *teiFile) doi() string {
	for _, id := range t.Header.FileDesc.SourceDesc.Analytic.IDs {
		if id.Type == "DOI" {
			return strings.TrimSpace(id.Value)
		}
	}
	return ""
}

// bodyText concatenates the untyped body divisions in document order,
// separated by blank lines. Typed divisions (references, annexes) are
// excluded.
func (t *teiFile) bodyText() string {
	var parts []string
	for _, div := range t.Text.Divs {
		if div.Type != "" {
			continue
		}
		text := strings.ReplaceAll(flattenMarkup(div.Inner, ": "), "\n", "")
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}

// flattenMarkup strips tags from an XML fragment and joins the trimmed
// text of its elements with sep.
func flattenMarkup(fragment, sep string) string {
	dec := xml.NewDecoder(strings.NewReader(fragment))
	var parts []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			if text := strings.TrimSpace(string(cd)); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, sep)
}

// parseTEIDate parses a TEI when attribute, which carries anything from a
// full date down to a bare year. Unparseable values yield the zero time.
func parseTEIDate(when string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, when); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
