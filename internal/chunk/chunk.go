// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits extracted text into overlapping, boundary-aware
// segments suitable for embedding.
package chunk

import (
	"errors"
	"strings"

	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

const (
	defaultSize    = 1024
	defaultOverlap = 100
)

// Splitter produces overlapping segments of at most Size characters,
// preferring paragraph boundaries and falling back to sentence boundaries
// inside oversized paragraphs. For fixed input and configuration the
// output is stable and reproducible.
type Splitter struct {
	size    int
	overlap int
}

// New validates the configuration and returns a Splitter. Zero values get
// the defaults (1024/100); overlap must be smaller than size.
func New(cfg types.ChunkConfig) (*Splitter, error) {
	size := cfg.Size
	if size == 0 {
		size = defaultSize
	}
	overlap := cfg.Overlap
	if cfg.Size == 0 && cfg.Overlap == 0 {
		overlap = defaultOverlap
	}
	if size <= 0 {
		return nil, errors.New("chunk size must be > 0")
	}
	if overlap < 0 || overlap >= size {
		return nil, errors.New("chunk overlap must be >= 0 and < chunk size")
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split segments text in document order. Each segment except the first
// begins with up to Overlap trailing characters of its predecessor, taken
// at unit boundaries; stripping those prefixes and concatenating the
// segments reconstructs the input exactly.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	units := s.units(text)

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, ""))

		// Carry trailing units into the next chunk as overlap context.
		var carry []string
		carryLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			if carryLen+len(current[i]) > s.overlap {
				break
			}
			carryLen += len(current[i])
			carry = append([]string{current[i]}, carry...)
		}
		current = carry
		currentLen = carryLen
	}

	for _, u := range units {
		if currentLen > 0 && currentLen+len(u) > s.size {
			flush()
		}
		current = append(current, u)
		currentLen += len(u)
	}
	if currentLen > 0 {
		chunks = append(chunks, strings.Join(current, ""))
	}
	return chunks
}

// units breaks text into separator-preserving pieces: paragraphs first,
// sentences inside paragraphs longer than the chunk size, and hard splits
// for sentences that still exceed it. Concatenating all units yields the
// original text.
func (s *Splitter) units(text string) []string {
	var units []string
	for _, para := range splitAfter(text, "\n\n") {
		if len(para) <= s.size {
			units = append(units, para)
			continue
		}
		for _, sent := range splitSentences(para) {
			for len(sent) > s.size {
				units = append(units, sent[:s.size])
				sent = sent[s.size:]
			}
			if sent != "" {
				units = append(units, sent)
			}
		}
	}
	return units
}

// splitAfter splits s on sep, keeping sep attached to the preceding piece.
func splitAfter(s, sep string) []string {
	parts := strings.SplitAfter(s, sep)
	// SplitAfter may produce a trailing empty string when s ends with sep.
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

// splitSentences splits a paragraph after sentence-terminating punctuation
// followed by whitespace, keeping terminators and whitespace attached.
func splitSentences(para string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(para); i++ {
		c := para[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		// Consume the whitespace run after the terminator.
		j := i + 1
		for j < len(para) && (para[j] == ' ' || para[j] == '\n' || para[j] == '\t') {
			j++
		}
		if j == i+1 {
			continue
		}
		sentences = append(sentences, para[start:j])
		start = j
		i = j - 1
	}
	if start < len(para) {
		sentences = append(sentences, para[start:])
	}
	return sentences
}
