// Package compliance orchestrates retrieval, scoring, and language model
// analysis into a single compliance verdict with graceful degradation.
package compliance

// Status classifies the compliance determination for a query.
type Status string

const (
	StatusCompliant          Status = "COMPLIANT"
	StatusPartiallyCompliant Status = "PARTIALLY_COMPLIANT"
	StatusNonCompliant       Status = "NON_COMPLIANT"
	StatusInsufficientInfo   Status = "INSUFFICIENT_INFORMATION"
)

// Stage names the orchestration state a check is in. FAILED is reachable
// from any stage and always resolves to a degraded verdict, never an
// error to the caller.
type Stage string

const (
	StageStarted    Stage = "STARTED"
	StageRetrieving Stage = "RETRIEVING"
	StageScoring    Stage = "SCORING"
	StageAnalyzing  Stage = "ANALYZING"
	StageParsing    Stage = "PARSING"
	StageFinalizing Stage = "FINALIZING"
	StageComplete   Stage = "COMPLETE"
	StageFailed     Stage = "FAILED"
)

// AnalysisPoint is one reasoning step in the verdict, tied to a cited
// clause where the model provided one.
type AnalysisPoint struct {
	Point           string `json:"point"`
	ClauseReference string `json:"clause_reference,omitempty"`
	DocumentName    string `json:"document_name,omitempty"`
	SectionNumber   string `json:"section_number,omitempty"`
}

// Violation describes one identified compliance breach.
type Violation struct {
	What   string `json:"what"`
	Why    string `json:"why"`
	Clause string `json:"clause"`
}

// Recommendation is a concrete remediation step.
type Recommendation struct {
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority"`
}

// SourceDocument groups the retrieved chunks that backed the verdict by
// their originating document.
type SourceDocument struct {
	DocumentID   string   `json:"document_id"`
	DocumentName string   `json:"document_name"`
	Chunks       []string `json:"chunks"`
}

// Verdict is the final result of a compliance check. It is always
// COMPLETE-shaped: failed checks carry a degraded verdict rather than an
// error.
type Verdict struct {
	Status              Status           `json:"status"`
	ConfidenceScore     float64          `json:"confidence_score"`
	Summary             string           `json:"summary"`
	Analysis            []AnalysisPoint  `json:"analysis"`
	Violations          []Violation      `json:"violations"`
	Recommendations     []Recommendation `json:"recommendations"`
	SourceDocuments     []SourceDocument `json:"source_documents"`
	RetrievalConfidence float64          `json:"retrieval_confidence"`
	ProcessingTimeMs    int64            `json:"processing_time_ms"`
}
