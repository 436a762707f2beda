// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the arxiv-chatbot
// retrieval-augmentation pipeline.
package types

import (
	"strings"
	"time"
)

// ParsedDocument is the output of text and metadata extraction from a
// single paper. Immutable once built.
type ParsedDocument struct {
	// RawText is the extracted body text.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// PublishedDate is the publication date. Zero when unknown.
	PublishedDate time.Time `json:"published_date" yaml:"published_date"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// DOI is the digital object identifier, when present.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// PaperRecord holds canonical metadata and the staged PDF location for an
// arXiv paper. PaperID is the natural key for dedup and cross-referencing.
type PaperRecord struct {
	// PaperID is the canonical arXiv identifier (e.g. "2301.07041" or
	// "2301.07041v2").
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// PublishedDate is the publication or preprint date.
	PublishedDate time.Time `json:"published_date" yaml:"published_date"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// SourcePDFPath is the local filesystem path to the downloaded PDF.
	SourcePDFPath string `json:"source_pdf_path" yaml:"source_pdf_path"`
}

// ChunkMetadata is attached to every stored chunk. All fields are flat
// strings so the vector store can filter on them.
type ChunkMetadata struct {
	// PaperID is the canonical arXiv identifier of the source paper.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the source paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is the comma-joined author list.
	Authors string `json:"authors" yaml:"authors"`

	// Date is the publication date in YYYY-MM-DD form, empty when unknown.
	Date string `json:"date" yaml:"date"`

	// Abstract is the source paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// ChunkID is "{paper_id}-{sequence_index}", unique within a paper and
	// stable only within one ingestion run.
	ChunkID string `json:"chunk_id" yaml:"chunk_id"`
}

// Chunk is one embeddable segment of a paper plus its metadata.
type Chunk struct {
	// Content is the segment text.
	Content string `json:"content" yaml:"content"`

	// Metadata carries provenance for citation and dedup.
	Metadata ChunkMetadata `json:"metadata" yaml:"metadata"`
}

// MetadataFor builds the chunk metadata shared by all chunks of a paper.
// The per-chunk ChunkID is filled in by the ingestion pipeline.
func MetadataFor(rec PaperRecord) ChunkMetadata {
	date := ""
	if !rec.PublishedDate.IsZero() {
		date = rec.PublishedDate.Format("2006-01-02")
	}
	return ChunkMetadata{
		PaperID:  rec.PaperID,
		Title:    rec.Title,
		Authors:  strings.Join(rec.Authors, ", "),
		Date:     date,
		Abstract: rec.Abstract,
	}
}
