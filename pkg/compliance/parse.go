package compliance

import (
	"encoding/json"
	"strings"
)

// stripFences removes a surrounding markdown code fence from model
// output, tolerating a json language tag.
func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// modelVerdict is the JSON payload the model is instructed to return.
type modelVerdict struct {
	Status          string           `json:"status"`
	ConfidenceScore float64          `json:"confidence_score"`
	Summary         string           `json:"summary"`
	Analysis        []AnalysisPoint  `json:"analysis"`
	Violations      []Violation      `json:"violations"`
	Recommendations []Recommendation `json:"recommendations"`
}

// parseVerdict decodes the model's raw text into a verdict. Decode
// failures never propagate: they yield a deterministic fallback verdict
// with zero confidence. Missing optional fields are backfilled either way.
func parseVerdict(raw string) *Verdict {
	var mv modelVerdict
	if err := json.Unmarshal([]byte(stripFences(raw)), &mv); err != nil {
		return &Verdict{
			Status:          StatusInsufficientInfo,
			ConfidenceScore: 0,
			Summary:         "Unable to parse compliance analysis. Please rephrase your query.",
			Analysis:        []AnalysisPoint{{Point: "Analysis parsing failed"}},
			Violations:      []Violation{},
			Recommendations: []Recommendation{
				{Recommendation: "Please retry with a clearer query", Priority: "medium"},
			},
		}
	}

	v := &Verdict{
		Status:          normalizeStatus(mv.Status),
		ConfidenceScore: clamp(mv.ConfidenceScore),
		Summary:         mv.Summary,
		Analysis:        mv.Analysis,
		Violations:      mv.Violations,
		Recommendations: mv.Recommendations,
	}
	backfill(v)
	return v
}

// backfill fills required fields the model left out.
func backfill(v *Verdict) {
	if v.Summary == "" {
		v.Summary = "No summary available"
	}
	if len(v.Analysis) == 0 {
		v.Analysis = []AnalysisPoint{{Point: "No analysis available"}}
	}
	if v.Violations == nil {
		v.Violations = []Violation{}
	}
	if len(v.Recommendations) == 0 {
		v.Recommendations = []Recommendation{
			{Recommendation: "Review with compliance officer", Priority: "medium"},
		}
	}
	if v.SourceDocuments == nil {
		v.SourceDocuments = []SourceDocument{}
	}
}

// normalizeStatus maps model status spellings (spaces, hyphens) onto the
// canonical enum, defaulting to INSUFFICIENT_INFORMATION for anything
// unrecognized.
func normalizeStatus(s string) Status {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	switch Status(normalized) {
	case StatusCompliant, StatusPartiallyCompliant, StatusNonCompliant, StatusInsufficientInfo:
		return Status(normalized)
	default:
		return StatusInsufficientInfo
	}
}

func clamp(f float64) float64 {
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}
