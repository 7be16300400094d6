// Package embeddings provides text embedding for document chunks and queries.
package embeddings

import (
	"context"
	"errors"
)

var (
	// ErrEmptyText is returned when the input text is empty or whitespace.
	// It is a precondition violation and is never retried.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrService is returned when the embedding service fails after all
	// retry attempts are exhausted. Callers must treat it as an ingestion
	// or retrieval failure.
	ErrService = errors.New("embedding service failed")
)

// Embedder produces fixed-dimension vectors for documents and queries.
// Document and query embeddings may use different retrieval intents for
// identical text (asymmetric embedding).
type Embedder interface {
	// EmbedDocument embeds text with document-retrieval intent.
	EmbedDocument(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery embeds text with query-retrieval intent.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds texts with document-retrieval intent, partitioned
	// into fixed-size sub-batches. Output order matches input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
