// Package storage persists TOC snapshots in a local SQLite database so a
// working document can be compared against a labeled earlier revision.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"mddelta/internal/toc"
)

type SnapshotStore struct {
	db *sql.DB
}

// SnapshotInfo describes one stored snapshot without its payload.
type SnapshotInfo struct {
	DocPath   string `json:"doc_path"`
	Label     string `json:"label"`
	PageHash  string `json:"page_hash"`
	CreatedAt string `json:"created_at"`
}

// NewSnapshotStore creates or opens a snapshot database.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SnapshotStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

func (s *SnapshotStore) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		doc_path TEXT NOT NULL,
		label TEXT NOT NULL,
		page_hash TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		toc JSON NOT NULL,
		PRIMARY KEY (doc_path, label)
	);`)
	return err
}

// Save stores (or replaces) the snapshot of a document under a label. The
// payload is validated against the snapshot schema before it is written.
func (s *SnapshotStore) Save(ctx context.Context, docPath, label string, t *toc.MarkdownToc) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := validateSnapshot(payload); err != nil {
		return fmt.Errorf("snapshot validation failed: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (doc_path, label, page_hash, toc)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(doc_path, label) DO UPDATE SET
			page_hash=excluded.page_hash,
			created_at=(strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			toc=excluded.toc
	`, docPath, label, fmt.Sprintf("%016x", t.PageHash), payload)
	return err
}

// Load returns the snapshot of a document stored under a label.
func (s *SnapshotStore) Load(ctx context.Context, docPath, label string) (*toc.MarkdownToc, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT toc FROM snapshots WHERE doc_path = ? AND label = ?`,
		docPath, label).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no snapshot %q for %s", label, docPath)
	}
	if err != nil {
		return nil, err
	}
	if err := validateSnapshot(payload); err != nil {
		return nil, fmt.Errorf("stored snapshot is corrupt: %w", err)
	}

	var t toc.MarkdownToc
	if err := json.Unmarshal(payload, &t); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &t, nil
}

// List returns the snapshots stored for a document, newest first.
func (s *SnapshotStore) List(ctx context.Context, docPath string) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_path, label, page_hash, created_at FROM snapshots
		WHERE doc_path = ? ORDER BY created_at DESC, label ASC
	`, docPath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.DocPath, &info.Label, &info.PageHash, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
