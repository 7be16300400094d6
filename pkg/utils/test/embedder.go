package testutils

import (
	"context"
	"fmt"

	"github.com/complydesk/arbiter/pkg/embeddings"
)

// MockEmbedder is a test embedder that returns predictable embeddings.
type MockEmbedder struct {
	Embeddings map[string][]float32

	// Dimensions is the vector size returned for unknown texts.
	Dimensions int

	// FailOn causes embedding to return an error when the input text matches.
	FailOn string
}

func NewMockEmbedder(dimensions int) *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Dimensions: dimensions,
	}
}

func (m *MockEmbedder) embed(text string) ([]float32, error) {
	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("embedding failed for %q", text)
	}
	if vec, ok := m.Embeddings[text]; ok {
		return vec, nil
	}

	// Deterministic fill derived from the text so distinct inputs get
	// distinct vectors.
	vec := make([]float32, m.Dimensions)
	var sum int
	for _, r := range text {
		sum += int(r)
	}
	for i := range vec {
		vec[i] = float32((sum+i)%97) / 97
	}
	return vec, nil
}

func (m *MockEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	return m.embed(text)
}

func (m *MockEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return m.embed(text)
}

func (m *MockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := m.embed(t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *MockEmbedder) Close() error { return nil }

var _ embeddings.Embedder = (*MockEmbedder)(nil)
