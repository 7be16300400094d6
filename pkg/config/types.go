package config

import "time"

// Config represents the arbiter service configuration. It is read from
// config.toml (or the path given via --config), environment variables with
// the ARBITER_ prefix, and CLI flags, in ascending precedence.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Chunking    ChunkingConfig    `mapstructure:"chunking"`
	Retrieval   RetrievalConfig   `mapstructure:"retrieval"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Ingest      IngestConfig      `mapstructure:"ingest"`
	Events      EventsConfig      `mapstructure:"events"`
}

// ServerConfig holds HTTP API server settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// StorageConfig holds metadata store settings.
type StorageConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

// VectorStoreConfig holds vector index settings.
type VectorStoreConfig struct {
	// Provider selects the driver: "qdrant" or "sqlitevec".
	Provider string `mapstructure:"provider"`

	// Target is the qdrant host:port, or the sqlite-vec database path.
	Target string `mapstructure:"target"`

	// Collection is the qdrant collection name.
	Collection string `mapstructure:"collection"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Target     string `mapstructure:"target"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	Dimensions int    `mapstructure:"dimensions"`
	BatchSize  int    `mapstructure:"batch_size"`
}

// LLMConfig holds language model settings for compliance analysis.
type LLMConfig struct {
	Target          string  `mapstructure:"target"`
	Model           string  `mapstructure:"model"`
	APIKey          string  `mapstructure:"api_key"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
}

// ChunkingConfig holds text chunking parameters, all in tokens.
type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	MinChunkSize int `mapstructure:"min_chunk_size"`
}

// RetrievalConfig holds retrieval ranking and confidence gating parameters.
type RetrievalConfig struct {
	TopK                int     `mapstructure:"top_k"`
	MinSimilarity       float64 `mapstructure:"min_similarity"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`

	// AuthoritativeTypes are the document types treated as regulator-issued.
	// Results from these types outrank other sources at equal similarity.
	AuthoritativeTypes []string `mapstructure:"authoritative_types"`
}

// RetryConfig holds the retry policy applied to embedding and LLM calls.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// IngestConfig holds bulk ingestion worker pool settings.
type IngestConfig struct {
	Workers   uint `mapstructure:"workers"`
	QueueSize uint `mapstructure:"queue_size"`
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	// Provider selects the publisher backend: "kafka" or "nop".
	Provider string   `mapstructure:"provider"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
}
