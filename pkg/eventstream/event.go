package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDocumentIngested is emitted after a document's chunks are
	// embedded and stored.
	EventTypeDocumentIngested = "arbiter.document.ingested"

	// EventTypeVerdictIssued is emitted after a compliance check resolves
	// to a verdict.
	EventTypeVerdictIssued = "arbiter.verdict.issued"
)

// DocumentIngestedEvent is a transport-neutral event payload for a
// processed document.
type DocumentIngestedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	DocumentID    string    `json:"document_id"`
	DocumentName  string    `json:"document_name"`
	DocumentType  string    `json:"document_type"`
	ChunkCount    int       `json:"chunk_count"`
	DurationMs    int64     `json:"duration_ms"`
}

// VerdictIssuedEvent is a transport-neutral event payload for a resolved
// compliance check.
type VerdictIssuedEvent struct {
	SchemaVersion       int       `json:"schema_version"`
	EventType           string    `json:"event_type"`
	EventID             string    `json:"event_id"`
	EmittedAt           time.Time `json:"emitted_at"`
	Query               string    `json:"query"`
	Status              string    `json:"status"`
	ConfidenceScore     float64   `json:"confidence_score"`
	RetrievalConfidence float64   `json:"retrieval_confidence"`
	SourceCount         int       `json:"source_count"`
	DurationMs          int64     `json:"duration_ms"`
}
