// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/storage"
)

// Driver implements storage.Driver using SQLite via github.com/mattn/go-sqlite3.
type Driver struct {
	db     *sql.DB
	logger *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT '',
	circular_number TEXT NOT NULL DEFAULT '',
	file_path TEXT NOT NULL DEFAULT '',
	is_processed INTEGER NOT NULL DEFAULT 0,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	processing_error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS audits (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	status TEXT NOT NULL,
	confidence_score REAL NOT NULL,
	retrieval_confidence REAL NOT NULL,
	source_count INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audits_created_at ON audits(created_at);
`

// NewDriver creates a SQLite-backed storage driver.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string, logger *zap.Logger) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("opened document store", zap.String("path", dbPath))

	return &Driver{db: db, logger: logger}, nil
}

func (d *Driver) PutDocument(ctx context.Context, doc *storage.Document) error {
	if doc == nil {
		return errors.New("cannot store nil document")
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents
			(id, name, type, source, circular_number, file_path, is_processed, chunk_count, processing_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.Type, doc.Source, doc.CircularNumber, doc.FilePath,
		doc.IsProcessed, doc.ChunkCount, doc.ProcessingError, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	return nil
}

func (d *Driver) GetDocument(ctx context.Context, id string) (*storage.Document, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, type, source, circular_number, file_path, is_processed, chunk_count, processing_error, created_at, updated_at
		FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}

func (d *Driver) ListDocuments(ctx context.Context) ([]*storage.Document, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, type, source, circular_number, file_path, is_processed, chunk_count, processing_error, created_at, updated_at
		FROM documents ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*storage.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (d *Driver) DeleteDocument(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound{ID: id}
	}
	return nil
}

func (d *Driver) MarkProcessed(ctx context.Context, id string, chunkCount int) error {
	return d.updateStatus(ctx, id, true, chunkCount, "")
}

func (d *Driver) MarkFailed(ctx context.Context, id string, processingError string) error {
	return d.updateStatus(ctx, id, false, 0, processingError)
}

func (d *Driver) updateStatus(ctx context.Context, id string, processed bool, chunkCount int, processingError string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE documents
		SET is_processed = ?, chunk_count = ?, processing_error = ?, updated_at = ?
		WHERE id = ?`,
		processed, chunkCount, processingError, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound{ID: id}
	}
	return nil
}

func (d *Driver) PutAudit(ctx context.Context, rec *storage.AuditRecord) error {
	if rec == nil {
		return errors.New("cannot store nil audit record")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO audits (id, query, status, confidence_score, retrieval_confidence, source_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, rec.Status, rec.ConfidenceScore, rec.RetrievalConfidence, rec.SourceCount, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("storing audit record: %w", err)
	}
	return nil
}

func (d *Driver) ListAudits(ctx context.Context, limit int) ([]*storage.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, query, status, confidence_score, retrieval_confidence, source_count, created_at
		FROM audits ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit records: %w", err)
	}
	defer rows.Close()

	var recs []*storage.AuditRecord
	for rows.Next() {
		rec := &storage.AuditRecord{}
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Status, &rec.ConfidenceScore,
			&rec.RetrievalConfidence, &rec.SourceCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*storage.Document, error) {
	doc := &storage.Document{}
	err := s.Scan(&doc.ID, &doc.Name, &doc.Type, &doc.Source, &doc.CircularNumber,
		&doc.FilePath, &doc.IsProcessed, &doc.ChunkCount, &doc.ProcessingError, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

var _ storage.Driver = (*Driver)(nil)
