package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/complydesk/arbiter/pkg/retry"
)

// RetryEmbedder wraps an Embedder with the configured retry policy.
// Transient service failures are retried with exponential backoff; after
// exhaustion the call fails with a terminal ErrService.
type RetryEmbedder struct {
	inner  Embedder
	policy retry.Policy
}

// NewRetryEmbedder wraps inner with policy.
func NewRetryEmbedder(inner Embedder, policy retry.Policy) *RetryEmbedder {
	return &RetryEmbedder{inner: inner, policy: policy}
}

func (r *RetryEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		vec, err = r.inner.EmbedDocument(ctx, text)
		return err
	})
	if err != nil {
		return nil, terminal(err)
	}
	return vec, nil
}

func (r *RetryEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		vec, err = r.inner.EmbedQuery(ctx, text)
		return err
	})
	if err != nil {
		return nil, terminal(err)
	}
	return vec, nil
}

func (r *RetryEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		vecs, err = r.inner.EmbedBatch(ctx, texts)
		return err
	})
	if err != nil {
		return nil, terminal(err)
	}
	return vecs, nil
}

func (r *RetryEmbedder) Close() error {
	return r.inner.Close()
}

// terminal maps exhausted or failed calls onto ErrService, preserving
// cancellation and precondition violations as-is.
func terminal(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrEmptyText), errors.Is(err, ErrService):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrService, err)
	}
}
