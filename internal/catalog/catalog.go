// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a local SQLite record of every paper that has
// been chunked and inserted into the vector store. The vector store
// stays the dedup authority; the catalog exists so users can list what
// is indexed without a running Chroma server.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

const dbFile = "catalog.db"

// Store manages the paper catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Entry is one catalog row.
type Entry struct {
	PaperID   string
	Title     string
	Authors   []string
	Date      string
	Abstract  string
	PDFPath   string
	Chunks    int
	IndexedAt time.Time
}

// NewStore opens or creates the catalog database at dir/catalog.db,
// creating the schema if needed.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "index"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		title TEXT,
		authors TEXT,
		date TEXT,
		abstract TEXT,
		pdf_path TEXT,
		chunks INTEGER,
		indexed_at TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Upsert records a paper as indexed with the given chunk count.
func (s *Store) Upsert(ctx context.Context, rec types.PaperRecord, chunks int) error {
	authorsJSON, _ := json.Marshal(rec.Authors)
	dateStr := ""
	if !rec.PublishedDate.IsZero() {
		dateStr = rec.PublishedDate.Format("2006-01-02")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (id, title, authors, date, abstract, pdf_path, chunks, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, date=excluded.date,
			abstract=excluded.abstract, pdf_path=excluded.pdf_path,
			chunks=excluded.chunks, indexed_at=excluded.indexed_at`,
		rec.PaperID, rec.Title, string(authorsJSON), dateStr,
		rec.Abstract, rec.SourcePDFPath, chunks,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", rec.PaperID, err)
	}
	return nil
}

// List returns all cataloged papers ordered by indexing time, newest
// first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, date, abstract, pdf_path, chunks, indexed_at
		 FROM papers ORDER BY indexed_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var authorsJSON, indexedAt string
		if err := rows.Scan(&e.PaperID, &e.Title, &authorsJSON, &e.Date,
			&e.Abstract, &e.PDFPath, &e.Chunks, &indexedAt); err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		if authorsJSON != "" {
			json.Unmarshal([]byte(authorsJSON), &e.Authors)
		}
		if t, err := time.Parse(time.RFC3339, indexedAt); err == nil {
			e.IndexedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
