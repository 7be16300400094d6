package vector

import "errors"

var (
	// ErrNotFound is returned when a document has no chunks in the index.
	ErrNotFound = errors.New("document not found")

	// ErrDimension is returned when an embedding does not match the
	// configured index dimension.
	ErrDimension = errors.New("embedding dimension mismatch")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")
)
