// Package vector provides interfaces and implementations for storing and
// searching embedded document chunks.
package vector

import (
	"context"

	"github.com/complydesk/arbiter/pkg/chunk"
)

// DocumentMeta is the document-level metadata stored alongside every chunk.
type DocumentMeta struct {
	// DocumentType classifies the source (e.g. "SBP_CIRCULAR",
	// "INTERNAL_POLICY", "USER_UPLOAD").
	DocumentType string

	// DocumentName is the original file or circular name.
	DocumentName string

	// Source names the issuing body.
	Source string

	// CircularNumber is the regulator's circular reference, if any.
	CircularNumber string
}

// EmbeddedChunk pairs a chunk with its embedding for insertion.
type EmbeddedChunk struct {
	Chunk     chunk.Chunk
	Embedding []float32
}

// Result is a single retrieval hit. Similarity is 1 minus the cosine
// distance between the query and the stored chunk.
type Result struct {
	ChunkID      string
	DocumentID   string
	ChunkIndex   int
	Content      string
	SectionTitle string
	ClauseNumber string
	Similarity   float64
	Meta         DocumentMeta
}

// Filter restricts a search. Zero-value fields do not filter; set fields
// are combined conjunctively.
type Filter struct {
	// DocumentType requires an exact document type match.
	DocumentType string

	// DocumentIDs restricts hits to the given documents.
	DocumentIDs []string
}

// Driver handles storage and retrieval of embedded chunks.
//
// Insert is not idempotent by itself: re-ingesting a document must first
// call DeleteByDocument for that document ID. The ingest pipeline serializes
// that delete-then-insert sequence per document.
type Driver interface {
	// Insert stores the embedded chunks of one document and returns the
	// number stored.
	Insert(ctx context.Context, documentID string, chunks []EmbeddedChunk, meta DocumentMeta) (int, error)

	// Search returns up to limit nearest chunks for the query embedding.
	// Callers pass an over-fetch limit strictly greater than the final
	// desired count to compensate for similarity filtering downstream.
	Search(ctx context.Context, embedding []float32, limit int, filter Filter) ([]Result, error)

	// DeleteByDocument removes all chunks stored for the given document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases any resources held by the driver.
	Close() error
}
