// Package storage persists document metadata and compliance audit records.
package storage

import (
	"context"
	"time"
)

// Document is the metadata record for an ingested regulatory document.
// The chunk contents themselves live in the vector store.
type Document struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Source          string    `json:"source"`
	CircularNumber  string    `json:"circular_number,omitempty"`
	FilePath        string    `json:"file_path,omitempty"`
	IsProcessed     bool      `json:"is_processed"`
	ChunkCount      int       `json:"chunk_count"`
	ProcessingError string    `json:"processing_error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AuditRecord captures one compliance check and its verdict for review.
type AuditRecord struct {
	ID                  string    `json:"id"`
	Query               string    `json:"query"`
	Status              string    `json:"status"`
	ConfidenceScore     float64   `json:"confidence_score"`
	RetrievalConfidence float64   `json:"retrieval_confidence"`
	SourceCount         int       `json:"source_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// Driver defines the interface for persisting documents and audit records
// in a storage backend.
type Driver interface {
	// PutDocument inserts or replaces a document record.
	PutDocument(ctx context.Context, doc *Document) error

	// GetDocument retrieves a document by ID. Returns ErrNotFound if no
	// document has that ID.
	GetDocument(ctx context.Context, id string) (*Document, error)

	// ListDocuments returns all documents ordered by creation time.
	ListDocuments(ctx context.Context) ([]*Document, error)

	// DeleteDocument removes a document record. Returns ErrNotFound if no
	// document has that ID.
	DeleteDocument(ctx context.Context, id string) error

	// MarkProcessed records successful ingestion of a document.
	MarkProcessed(ctx context.Context, id string, chunkCount int) error

	// MarkFailed records a failed ingestion with its error message.
	MarkFailed(ctx context.Context, id string, processingError string) error

	// PutAudit stores a compliance check audit record.
	PutAudit(ctx context.Context, rec *AuditRecord) error

	// ListAudits returns the most recent audit records, newest first.
	ListAudits(ctx context.Context, limit int) ([]*AuditRecord, error)

	// Close closes the store and releases any resources.
	Close() error
}
