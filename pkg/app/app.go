// Package app assembles the arbiter component graph from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/chunk"
	"github.com/complydesk/arbiter/pkg/compliance"
	"github.com/complydesk/arbiter/pkg/config"
	"github.com/complydesk/arbiter/pkg/embeddings"
	embgemini "github.com/complydesk/arbiter/pkg/embeddings/gemini"
	"github.com/complydesk/arbiter/pkg/eventstream"
	eskafka "github.com/complydesk/arbiter/pkg/eventstream/kafka"
	"github.com/complydesk/arbiter/pkg/eventstream/nop"
	"github.com/complydesk/arbiter/pkg/extract"
	"github.com/complydesk/arbiter/pkg/ingest"
	"github.com/complydesk/arbiter/pkg/llm"
	llmgemini "github.com/complydesk/arbiter/pkg/llm/gemini"
	"github.com/complydesk/arbiter/pkg/retrieval"
	"github.com/complydesk/arbiter/pkg/retry"
	"github.com/complydesk/arbiter/pkg/storage"
	storesqlite "github.com/complydesk/arbiter/pkg/storage/sqlite"
	"github.com/complydesk/arbiter/pkg/vector"
	"github.com/complydesk/arbiter/pkg/vector/vectorutils"
)

// App holds the assembled application components.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     storage.Driver
	Vectors   vector.Driver
	Embedder  embeddings.Embedder
	Model     llm.Client
	Events    eventstream.Publisher
	Authority *retrieval.Authority
	Chunker   *chunk.Chunker
	Checker   *compliance.Checker
	Pipeline  *ingest.Pipeline
	Pool      *ingest.Pool
}

// New builds the full component graph. Close must be called to release
// the held drivers.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := storesqlite.NewDriver(cfg.Storage.SQLitePath, logger)
	if err != nil {
		return nil, fmt.Errorf("creating document store: %w", err)
	}

	vectors, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		Collection:   cfg.VectorStore.Collection,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating vector driver: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
	}

	rawEmbedder, err := embgemini.NewEmbedder(embgemini.Config{
		BaseURL:    cfg.Embedding.Target,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
	}, logger)
	if err != nil {
		vectors.Close()
		store.Close()
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	embedder := embeddings.NewRetryEmbedder(rawEmbedder, policy)

	rawModel, err := llmgemini.NewClient(llmgemini.Config{
		BaseURL:           cfg.LLM.Target,
		Model:             cfg.LLM.Model,
		APIKey:            cfg.LLM.APIKey,
		SystemInstruction: compliance.SystemPrompt,
		Temperature:       cfg.LLM.Temperature,
		MaxOutputTokens:   cfg.LLM.MaxOutputTokens,
	}, logger)
	if err != nil {
		vectors.Close()
		store.Close()
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	model := llm.NewRetryClient(rawModel, policy)

	events, err := newPublisher(cfg, logger)
	if err != nil {
		vectors.Close()
		store.Close()
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	authority := retrieval.NewAuthority(cfg.Retrieval.AuthoritativeTypes)

	chunker := chunk.New(chunk.Config{
		ChunkSize:    cfg.Chunking.ChunkSize,
		ChunkOverlap: cfg.Chunking.ChunkOverlap,
		MinChunkSize: cfg.Chunking.MinChunkSize,
	}, logger)

	checker := compliance.NewChecker(
		embedder, vectors, model, authority, store, events,
		compliance.Config{
			TopK:                cfg.Retrieval.TopK,
			MinSimilarity:       cfg.Retrieval.MinSimilarity,
			ConfidenceThreshold: cfg.Retrieval.ConfidenceThreshold,
		},
		logger,
	)

	pipeline := ingest.NewPipeline(
		extract.NewPlainText(), chunker, embedder, vectors, store, events, logger,
	)

	pool, err := ingest.NewPool(&ingest.PoolConfig{
		Pipeline:   pipeline,
		NumWorkers: cfg.Ingest.Workers,
		QueueSize:  cfg.Ingest.QueueSize,
		Logger:     logger,
	})
	if err != nil {
		events.Close()
		vectors.Close()
		store.Close()
		return nil, fmt.Errorf("creating ingestion pool: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Vectors:   vectors,
		Embedder:  embedder,
		Model:     model,
		Events:    events,
		Authority: authority,
		Chunker:   chunker,
		Checker:   checker,
		Pipeline:  pipeline,
		Pool:      pool,
	}, nil
}

// Close drains the worker pool and releases all drivers.
func (a *App) Close() {
	a.Pool.Close()
	if err := a.Events.Close(); err != nil {
		a.Logger.Warn("closing event publisher", zap.Error(err))
	}
	if err := a.Model.Close(); err != nil {
		a.Logger.Warn("closing model client", zap.Error(err))
	}
	if err := a.Embedder.Close(); err != nil {
		a.Logger.Warn("closing embedder", zap.Error(err))
	}
	if err := a.Vectors.Close(); err != nil {
		a.Logger.Warn("closing vector driver", zap.Error(err))
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("closing document store", zap.Error(err))
	}
}

func newPublisher(cfg *config.Config, logger *zap.Logger) (eventstream.Publisher, error) {
	switch cfg.Events.Provider {
	case "kafka":
		return eskafka.NewPublisher(eskafka.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
		}, logger)
	case "", "nop":
		return nop.NewPublisher(), nil
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Events.Provider)
	}
}
