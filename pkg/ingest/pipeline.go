// Package ingest turns uploaded documents into embedded chunks in the
// vector store. The pipeline decouples extraction and embedding from the
// API hot path and serializes re-ingestion per document so delete-then-insert
// never interleaves for the same document.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/chunk"
	"github.com/complydesk/arbiter/pkg/embeddings"
	"github.com/complydesk/arbiter/pkg/eventstream"
	"github.com/complydesk/arbiter/pkg/extract"
	"github.com/complydesk/arbiter/pkg/storage"
	"github.com/complydesk/arbiter/pkg/vector"
)

// minTextLength is the minimum extracted text length considered a real
// document rather than an empty or corrupt upload.
const minTextLength = 50

// Pipeline runs the ingestion stages for one document at a time:
// extract, chunk, embed, then replace the document's chunks in the
// vector store.
type Pipeline struct {
	extractor extract.Extractor
	chunker   *chunk.Chunker
	embedder  embeddings.Embedder
	vectors   vector.Driver
	store     storage.Driver
	events    eventstream.Publisher
	logger    *zap.Logger

	// locks serializes vector store writes per document ID.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	extractor extract.Extractor,
	chunker *chunk.Chunker,
	embedder embeddings.Embedder,
	vectors vector.Driver,
	store storage.Driver,
	events eventstream.Publisher,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		vectors:   vectors,
		store:     store,
		events:    events,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Ingest processes the file at path as the given document. On success the
// document's previous chunks are replaced and its metadata marked
// processed. On failure the metadata records the error and the previous
// chunks are left as they were, except when deletion already happened.
func (p *Pipeline) Ingest(ctx context.Context, documentID, path string, meta vector.DocumentMeta) error {
	started := time.Now()

	count, err := p.ingest(ctx, documentID, path, meta)
	if err != nil {
		p.logger.Error("ingestion failed",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		if markErr := p.store.MarkFailed(ctx, documentID, err.Error()); markErr != nil {
			p.logger.Error("recording ingestion failure",
				zap.String("document_id", documentID),
				zap.Error(markErr),
			)
		}
		return err
	}

	if err := p.store.MarkProcessed(ctx, documentID, count); err != nil {
		return fmt.Errorf("recording ingestion result: %w", err)
	}

	event := &eventstream.DocumentIngestedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeDocumentIngested,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		DocumentID:    documentID,
		DocumentName:  meta.DocumentName,
		DocumentType:  meta.DocumentType,
		ChunkCount:    count,
		DurationMs:    time.Since(started).Milliseconds(),
	}
	if err := p.events.PublishDocumentIngested(ctx, event); err != nil {
		p.logger.Warn("publishing ingestion event",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
	}

	p.logger.Info("document ingested",
		zap.String("document_id", documentID),
		zap.Int("chunks", count),
		zap.Duration("elapsed", time.Since(started)),
	)

	return nil
}

func (p *Pipeline) ingest(ctx context.Context, documentID, path string, meta vector.DocumentMeta) (int, error) {
	text, hints, err := p.extractor.Extract(path)
	if err != nil {
		return 0, fmt.Errorf("extracting text: %w", err)
	}
	if len(strings.TrimSpace(text)) < minTextLength {
		return 0, fmt.Errorf("document text too short: %d characters", len(strings.TrimSpace(text)))
	}

	chunks := p.chunker.Chunk(text, hints)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks produced")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vecs, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vecs) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vecs), len(chunks))
	}

	embedded := make([]vector.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		embedded[i] = vector.EmbeddedChunk{Chunk: c, Embedding: vecs[i]}
	}

	lock := p.lockFor(documentID)
	lock.Lock()
	defer lock.Unlock()

	// Re-check after acquiring the lock so a cancelled request doesn't
	// delete chunks it will never replace.
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := p.vectors.DeleteByDocument(ctx, documentID); err != nil {
		return 0, fmt.Errorf("removing previous chunks: %w", err)
	}
	count, err := p.vectors.Insert(ctx, documentID, embedded, meta)
	if err != nil {
		return 0, fmt.Errorf("storing chunks: %w", err)
	}

	return count, nil
}

func (p *Pipeline) lockFor(documentID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[documentID] = lock
	}
	return lock
}
