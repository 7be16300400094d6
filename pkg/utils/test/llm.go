package testutils

import (
	"context"
	"fmt"

	"github.com/complydesk/arbiter/pkg/llm"
)

// MockLLM is a test llm.Client returning a canned response.
type MockLLM struct {
	// Response is returned from every Complete call.
	Response string

	// Fail forces Complete to error.
	Fail bool

	// Prompts records every prompt received.
	Prompts []string
}

func (m *MockLLM) Complete(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Fail {
		return "", fmt.Errorf("model unavailable")
	}
	return m.Response, nil
}

func (m *MockLLM) Close() error { return nil }

var _ llm.Client = (*MockLLM)(nil)
