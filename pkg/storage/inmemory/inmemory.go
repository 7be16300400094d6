// Package inmemory provides a map-backed storage driver for tests and
// ephemeral runs.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/complydesk/arbiter/pkg/storage"
)

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	mu     sync.RWMutex
	docs   map[string]*storage.Document
	audits []*storage.AuditRecord
}

// NewDriver creates a new in-memory storage driver.
func NewDriver() *Driver {
	return &Driver{
		docs: make(map[string]*storage.Document),
	}
}

func (d *Driver) PutDocument(_ context.Context, doc *storage.Document) error {
	if doc == nil {
		return errors.New("cannot store nil document")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().UTC()
	cp := *doc
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	d.docs[cp.ID] = &cp
	return nil
}

func (d *Driver) GetDocument(_ context.Context, id string) (*storage.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc, ok := d.docs[id]
	if !ok {
		return nil, storage.ErrNotFound{ID: id}
	}
	cp := *doc
	return &cp, nil
}

func (d *Driver) ListDocuments(_ context.Context) ([]*storage.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	docs := make([]*storage.Document, 0, len(d.docs))
	for _, doc := range d.docs {
		cp := *doc
		docs = append(docs, &cp)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

func (d *Driver) DeleteDocument(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.docs[id]; !ok {
		return storage.ErrNotFound{ID: id}
	}
	delete(d.docs, id)
	return nil
}

func (d *Driver) MarkProcessed(_ context.Context, id string, chunkCount int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.docs[id]
	if !ok {
		return storage.ErrNotFound{ID: id}
	}
	doc.IsProcessed = true
	doc.ChunkCount = chunkCount
	doc.ProcessingError = ""
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *Driver) MarkFailed(_ context.Context, id string, processingError string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.docs[id]
	if !ok {
		return storage.ErrNotFound{ID: id}
	}
	doc.IsProcessed = false
	doc.ChunkCount = 0
	doc.ProcessingError = processingError
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *Driver) PutAudit(_ context.Context, rec *storage.AuditRecord) error {
	if rec == nil {
		return errors.New("cannot store nil audit record")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	d.audits = append(d.audits, &cp)
	return nil
}

func (d *Driver) ListAudits(_ context.Context, limit int) ([]*storage.AuditRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	recs := make([]*storage.AuditRecord, len(d.audits))
	for i, rec := range d.audits {
		cp := *rec
		recs[i] = &cp
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

var _ storage.Driver = (*Driver)(nil)
