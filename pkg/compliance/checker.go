package compliance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/embeddings"
	"github.com/complydesk/arbiter/pkg/eventstream"
	"github.com/complydesk/arbiter/pkg/llm"
	"github.com/complydesk/arbiter/pkg/retrieval"
	"github.com/complydesk/arbiter/pkg/storage"
	"github.com/complydesk/arbiter/pkg/utils"
	"github.com/complydesk/arbiter/pkg/vector"
)

// overFetchFactor over-requests nearest neighbors so similarity
// filtering still leaves topK candidates.
const overFetchFactor = 2

// Config holds the tunables governing retrieval and the verdict gate.
type Config struct {
	// TopK is the number of ranked results fed to the model.
	TopK int

	// MinSimilarity excludes weak hits before ranking.
	MinSimilarity float64

	// ConfidenceThreshold gates the verdict: retrieval confidence below
	// it forces INSUFFICIENT_INFORMATION.
	ConfidenceThreshold float64
}

// Checker runs the compliance check state machine. Every check resolves
// to a Verdict; stage failures degrade the verdict instead of erroring.
type Checker struct {
	embedder  embeddings.Embedder
	vectors   vector.Driver
	model     llm.Client
	authority *retrieval.Authority
	store     storage.Driver
	events    eventstream.Publisher
	cfg       Config
	logger    *zap.Logger
}

// NewChecker creates a compliance checker. store and events may be nil
// when auditing or event publishing is disabled.
func NewChecker(
	embedder embeddings.Embedder,
	vectors vector.Driver,
	model llm.Client,
	authority *retrieval.Authority,
	store storage.Driver,
	events eventstream.Publisher,
	cfg Config,
	logger *zap.Logger,
) *Checker {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &Checker{
		embedder:  embedder,
		vectors:   vectors,
		model:     model,
		authority: authority,
		store:     store,
		events:    events,
		cfg:       cfg,
		logger:    logger,
	}
}

// Check runs the full pipeline for one query. The returned verdict is
// never nil; unrecoverable stage errors produce a degraded verdict with
// zero confidence.
func (c *Checker) Check(ctx context.Context, query string) *Verdict {
	started := time.Now()
	c.logger.Info("starting compliance check",
		zap.String("query_preview", utils.Truncate(query, 100)),
	)
	c.stage(StageStarted, query)

	c.stage(StageRetrieving, query)
	queryVec, err := c.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return c.fail(ctx, query, started, 0, "embedding query", err)
	}

	raw, err := c.vectors.Search(ctx, queryVec, c.cfg.TopK*overFetchFactor, vector.Filter{})
	if err != nil {
		return c.fail(ctx, query, started, 0, "searching index", err)
	}
	ranked := retrieval.Rank(raw, c.cfg.MinSimilarity, c.cfg.TopK, c.authority)

	c.stage(StageScoring, query)
	retrievalConfidence := retrieval.Confidence(ranked, c.cfg.TopK, c.authority)

	c.stage(StageAnalyzing, query)
	prompt := buildPrompt(query, ranked, retrievalConfidence, c.cfg.ConfidenceThreshold)
	rawText, err := c.model.Complete(ctx, prompt)
	if err != nil {
		return c.fail(ctx, query, started, retrievalConfidence, "analyzing", err)
	}

	c.stage(StageParsing, query)
	verdict := parseVerdict(rawText)

	c.stage(StageFinalizing, query)
	if retrievalConfidence < c.cfg.ConfidenceThreshold {
		verdict.Status = StatusInsufficientInfo
		if retrievalConfidence < verdict.ConfidenceScore {
			verdict.ConfidenceScore = retrievalConfidence
		}
		verdict.Summary = "Insufficient regulatory context found. " + verdict.Summary
	}
	verdict.RetrievalConfidence = retrievalConfidence
	verdict.SourceDocuments = groupSources(ranked)
	verdict.ProcessingTimeMs = time.Since(started).Milliseconds()

	c.record(ctx, query, verdict)
	c.stage(StageComplete, query)

	c.logger.Info("compliance check complete",
		zap.String("status", string(verdict.Status)),
		zap.Float64("confidence", verdict.ConfidenceScore),
		zap.Float64("retrieval_confidence", retrievalConfidence),
		zap.Int64("processing_time_ms", verdict.ProcessingTimeMs),
	)

	return verdict
}

// fail resolves an unrecoverable stage error to a degraded verdict.
func (c *Checker) fail(ctx context.Context, query string, started time.Time, retrievalConfidence float64, stage string, err error) *Verdict {
	c.logger.Error("compliance check failed",
		zap.String("stage", stage),
		zap.Error(err),
	)
	c.stage(StageFailed, query)

	verdict := &Verdict{
		Status:          StatusInsufficientInfo,
		ConfidenceScore: 0,
		Summary:         "Unable to complete compliance analysis due to an error. Please try again.",
		Analysis:        []AnalysisPoint{{Point: "Analysis could not be completed"}},
		Violations:      []Violation{},
		Recommendations: []Recommendation{
			{Recommendation: "Please retry the query or contact support", Priority: "high"},
		},
		SourceDocuments:     []SourceDocument{},
		RetrievalConfidence: retrievalConfidence,
		ProcessingTimeMs:    time.Since(started).Milliseconds(),
	}

	c.record(ctx, query, verdict)

	return verdict
}

// record persists the audit trail and publishes the verdict event.
// Both are best-effort and never affect the verdict.
func (c *Checker) record(ctx context.Context, query string, v *Verdict) {
	if c.store != nil {
		rec := &storage.AuditRecord{
			ID:                  uuid.NewString(),
			Query:               query,
			Status:              string(v.Status),
			ConfidenceScore:     v.ConfidenceScore,
			RetrievalConfidence: v.RetrievalConfidence,
			SourceCount:         len(v.SourceDocuments),
		}
		if err := c.store.PutAudit(ctx, rec); err != nil {
			c.logger.Warn("storing audit record", zap.Error(err))
		}
	}

	if c.events != nil {
		event := &eventstream.VerdictIssuedEvent{
			SchemaVersion:       eventstream.SchemaVersionV1,
			EventType:           eventstream.EventTypeVerdictIssued,
			EventID:             uuid.NewString(),
			EmittedAt:           time.Now().UTC(),
			Query:               query,
			Status:              string(v.Status),
			ConfidenceScore:     v.ConfidenceScore,
			RetrievalConfidence: v.RetrievalConfidence,
			SourceCount:         len(v.SourceDocuments),
			DurationMs:          v.ProcessingTimeMs,
		}
		if err := c.events.PublishVerdictIssued(ctx, event); err != nil {
			c.logger.Warn("publishing verdict event", zap.Error(err))
		}
	}
}

func (c *Checker) stage(s Stage, query string) {
	c.logger.Debug("check stage",
		zap.String("stage", string(s)),
		zap.Int("query_length", len(query)),
	)
}

// groupSources groups ranked results by document, preserving rank order
// and deduplicating repeated chunk contents within a document.
func groupSources(ranked []vector.Result) []SourceDocument {
	var order []string
	byDoc := make(map[string]*SourceDocument)

	for _, r := range ranked {
		if r.DocumentID == "" {
			continue
		}
		doc, ok := byDoc[r.DocumentID]
		if !ok {
			name := r.Meta.DocumentName
			if name == "" {
				name = "Unknown Document"
			}
			doc = &SourceDocument{DocumentID: r.DocumentID, DocumentName: name}
			byDoc[r.DocumentID] = doc
			order = append(order, r.DocumentID)
		}
		if r.Content != "" && !contains(doc.Chunks, r.Content) {
			doc.Chunks = append(doc.Chunks, r.Content)
		}
	}

	docs := make([]SourceDocument, 0, len(order))
	for _, id := range order {
		docs = append(docs, *byDoc[id])
	}
	return docs
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
