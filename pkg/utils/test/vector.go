package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/complydesk/arbiter/pkg/vector"
)

// MockVectorDriver is an in-memory vector.Driver that returns canned
// search results and records writes for assertions.
type MockVectorDriver struct {
	mu sync.Mutex

	// SearchResults are returned verbatim from Search.
	SearchResults []vector.Result

	// Inserted maps document ID to the chunks stored for it.
	Inserted map[string][]vector.EmbeddedChunk

	// Deleted lists document IDs passed to DeleteByDocument, in order.
	Deleted []string

	// FailSearch and FailInsert force the corresponding call to error.
	FailSearch bool
	FailInsert bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Inserted: make(map[string][]vector.EmbeddedChunk),
	}
}

func (m *MockVectorDriver) Insert(_ context.Context, documentID string, chunks []vector.EmbeddedChunk, _ vector.DocumentMeta) (int, error) {
	if m.FailInsert {
		return 0, fmt.Errorf("insert failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inserted[documentID] = append([]vector.EmbeddedChunk(nil), chunks...)
	return len(chunks), nil
}

func (m *MockVectorDriver) Search(_ context.Context, _ []float32, limit int, _ vector.Filter) ([]vector.Result, error) {
	if m.FailSearch {
		return nil, fmt.Errorf("search failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	results := m.SearchResults
	if len(results) > limit {
		results = results[:limit]
	}
	return append([]vector.Result(nil), results...), nil
}

func (m *MockVectorDriver) DeleteByDocument(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, documentID)
	delete(m.Inserted, documentID)
	return nil
}

func (m *MockVectorDriver) Close() error { return nil }

var _ vector.Driver = (*MockVectorDriver)(nil)
