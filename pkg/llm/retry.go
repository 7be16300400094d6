package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/complydesk/arbiter/pkg/retry"
)

// RetryClient wraps a Client with the configured retry policy. Transient
// service failures are retried with exponential backoff; after exhaustion
// the call fails with a terminal ErrService.
type RetryClient struct {
	inner  Client
	policy retry.Policy
}

// NewRetryClient wraps inner with policy.
func NewRetryClient(inner Client, policy retry.Policy) *RetryClient {
	return &RetryClient{inner: inner, policy: policy}
}

func (r *RetryClient) Complete(ctx context.Context, prompt string) (string, error) {
	var text string
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		text, err = r.inner.Complete(ctx, prompt)
		return err
	})
	if err != nil {
		return "", terminal(err)
	}
	return text, nil
}

func (r *RetryClient) Close() error {
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
	case errors.Is(err, ErrEmptyPrompt), errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrService):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrService, err)
	}
}
