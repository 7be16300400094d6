// Package gemini implements pkg/embeddings' Embedder against the Gemini
// embedContent REST API.
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

	"github.com/complydesk/arbiter/pkg/embeddings"
	"github.com/complydesk/arbiter/pkg/retry"
)

const (
	// DefaultModel is the default embedding model.
	DefaultModel = "gemini-embedding-001"

	// DefaultBaseURL is the default Gemini API URL.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// taskDocument and taskQuery select the asymmetric retrieval intent:
	// chunks are embedded as documents, user queries as queries.
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

// Embedder wraps the Gemini embedding API.
type Embedder struct {
	baseURL    string
	model      string
	apiKey     string
	dimensions int
	batchSize  int
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the Gemini embedder.
type Config struct {
	// BaseURL is the API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the embedding model. Defaults to DefaultModel if empty.
	Model string

	// APIKey authenticates against the API.
	APIKey string

	// Dimensions is the expected embedding dimension. Responses with a
	// different dimension are rejected.
	Dimensions int

	// BatchSize caps each batch request to respect rate limits
	// (defaults to 100).
	BatchSize int
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type embedRequest struct {
	Model                string  `json:"model"`
	Content              content `json:"content"`
	TaskType             string  `json:"taskType"`
	OutputDimensionality int     `json:"outputDimensionality,omitempty"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// NewEmbedder creates a Gemini-backed embedder.
func NewEmbedder(cfg Config, logger *zap.Logger) (*Embedder, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be configured")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Embedder{
		baseURL:    baseURL,
		model:      model,
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
		batchSize:  batchSize,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}, nil
}

// EmbedDocument embeds text with document-retrieval intent.
func (e *Embedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, taskDocument)
}

// EmbedQuery embeds text with query-retrieval intent.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, taskQuery)
}

func (e *Embedder) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, retry.Permanent(embeddings.ErrEmptyText)
	}

	req := e.newRequest(text, taskType)
	url := fmt.Sprintf("%s/v1beta/models/%s:embedContent", e.baseURL, e.model)

	var resp embedResponse
	if err := e.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	if err := e.checkDimension(resp.Embedding.Values); err != nil {
		return nil, err
	}

	e.logger.Debug("text embedded",
		zap.String("task_type", taskType),
		zap.Int("text_length", len(text)),
	)

	return resp.Embedding.Values, nil
}

// EmbedBatch embeds texts with document-retrieval intent, partitioned into
// sub-batches of at most the configured batch size. Output order matches
// input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, retry.Permanent(embeddings.ErrEmptyText)
		}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:batchEmbedContents", e.baseURL, e.model)

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := batchEmbedRequest{}
		for _, t := range texts[start:end] {
			batch.Requests = append(batch.Requests, e.newRequest(t, taskDocument))
		}

		var resp batchEmbedResponse
		if err := e.post(ctx, url, batch, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), end-start)
		}

		for _, emb := range resp.Embeddings {
			if err := e.checkDimension(emb.Values); err != nil {
				return nil, err
			}
			out = append(out, emb.Values)
		}
	}

	e.logger.Debug("batch embedded", zap.Int("count", len(out)))

	return out, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

func (e *Embedder) newRequest(text, taskType string) embedRequest {
	return embedRequest{
		Model:                "models/" + e.model,
		Content:              content{Parts: []contentPart{{Text: text}}},
		TaskType:             taskType,
		OutputDimensionality: e.dimensions,
	}
}

func (e *Embedder) post(ctx context.Context, url string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return retry.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("x-goog-api-key", e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (e *Embedder) checkDimension(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("no embedding returned")
	}
	if len(vec) != e.dimensions {
		return retry.Permanent(fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), e.dimensions))
	}
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
