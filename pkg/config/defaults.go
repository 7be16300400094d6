package config

import "time"

// NewDefaultConfig returns the default configuration. These values are the
// single source of truth for defaults; viper registration derives from here.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen: ":8090",
		},
		Storage: StorageConfig{
			SQLitePath: "arbiter.db",
		},
		VectorStore: VectorStoreConfig{
			Provider:   "sqlitevec",
			Target:     "arbiter-vec.db",
			Collection: "compliance_chunks",
		},
		Embedding: EmbeddingConfig{
			Target:     "https://generativelanguage.googleapis.com",
			Model:      "gemini-embedding-001",
			Dimensions: 3072,
			BatchSize:  100,
		},
		LLM: LLMConfig{
			Target:          "https://generativelanguage.googleapis.com",
			Model:           "gemini-2.5-flash",
			Temperature:     0.1,
			MaxOutputTokens: 2048,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    400,
			ChunkOverlap: 50,
			MinChunkSize: 100,
		},
		Retrieval: RetrievalConfig{
			TopK:                5,
			MinSimilarity:       0.25,
			ConfidenceThreshold: 0.9,
			AuthoritativeTypes:  []string{"SBP_CIRCULAR", "SBP_REGULATION"},
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
		},
		Ingest: IngestConfig{
			Workers:   3,
			QueueSize: 64,
		},
		Events: EventsConfig{
			Provider: "nop",
			Brokers:  []string{"localhost:9092"},
			Topic:    "arbiter.events",
		},
	}
}
