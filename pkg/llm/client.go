// Package llm defines the language model client used for compliance
// analysis.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrEmptyPrompt is returned when a completion is requested for an
	// empty prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("model returned no text")

	// ErrService is returned when the model service fails after retries.
	ErrService = errors.New("language model service unavailable")
)

// Client generates text completions.
type Client interface {
	// Complete sends the prompt and returns the model's text output.
	Complete(ctx context.Context, prompt string) (string, error)

	// Close releases any held resources.
	Close() error
}
