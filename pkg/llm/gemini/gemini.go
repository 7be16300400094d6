// Package gemini implements pkg/llm's Client against the Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/llm"
	"github.com/complydesk/arbiter/pkg/retry"
)

const (
	// DefaultModel is the default generation model.
	DefaultModel = "gemini-2.5-flash"

	// DefaultBaseURL is the default Gemini API URL.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
)

// Client wraps the Gemini text generation API.
type Client struct {
	baseURL         string
	model           string
	apiKey          string
	system          string
	temperature     float64
	topP            float64
	maxOutputTokens int
	httpClient      *http.Client
	logger          *zap.Logger
}

// Config holds configuration for the Gemini client.
type Config struct {
	// BaseURL is the API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the generation model. Defaults to DefaultModel if empty.
	Model string

	// APIKey authenticates against the API.
	APIKey string

	// SystemInstruction is prepended to every request as the system role.
	SystemInstruction string

	// Temperature controls sampling randomness (defaults to 0.1).
	Temperature float64

	// TopP is the nucleus sampling cutoff (defaults to 0.8).
	TopP float64

	// MaxOutputTokens caps the completion length (defaults to 2048).
	MaxOutputTokens int
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// NewClient creates a Gemini-backed language model client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}
	topP := cfg.TopP
	if topP == 0 {
		topP = 0.8
	}
	maxOutputTokens := cfg.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = 2048
	}

	return &Client{
		baseURL:         baseURL,
		model:           model,
		apiKey:          cfg.APIKey,
		system:          cfg.SystemInstruction,
		temperature:     temperature,
		topP:            topP,
		maxOutputTokens: maxOutputTokens,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}, nil
}

// Complete sends the prompt and returns the model's text output.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", retry.Permanent(llm.ErrEmptyPrompt)
	}

	req := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []contentPart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			TopP:            c.topP,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
	if c.system != "" {
		req.SystemInstruction = &content{Parts: []contentPart{{Text: c.system}}}
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("marshaling request: %w", err))
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var sb strings.Builder
	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", retry.Permanent(llm.ErrEmptyResponse)
	}

	c.logger.Debug("completion generated",
		zap.Int("prompt_length", len(prompt)),
		zap.Int("response_length", len(text)),
	)

	return text, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	return nil
}

var _ llm.Client = (*Client)(nil)
