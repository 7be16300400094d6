package compliance

import (
	"fmt"
	"strings"

	"github.com/complydesk/arbiter/pkg/vector"
)

// SystemPrompt instructs the model to act as a conservative compliance
// reviewer and to answer with the JSON shape parseVerdict expects.
const SystemPrompt = `You are an expert banking compliance officer.
Your role is to analyze queries against regulator circulars and internal policies.

CRITICAL RULES:
1. NEVER hallucinate or fabricate compliance rules
2. ONLY cite clauses that are explicitly provided in the context
3. If information is insufficient, respond with "INSUFFICIENT_INFORMATION"
4. Regulator circulars ALWAYS override internal policies when in conflict
5. Be conservative and precise - prefer refusal over hallucination

RESPONSE FORMAT (JSON):
{
    "status": "COMPLIANT" | "PARTIALLY_COMPLIANT" | "NON_COMPLIANT" | "INSUFFICIENT_INFORMATION",
    "confidence_score": 0.0-1.0,
    "summary": "2-3 lines maximum",
    "analysis": [
        {
            "point": "Analysis point text",
            "clause_reference": "Clause X.Y",
            "document_name": "Document name",
            "section_number": "Section number if available"
        }
    ],
    "violations": [
        {
            "what": "What is violated",
            "why": "Why it is a violation",
            "clause": "Which clause is violated"
        }
    ],
    "recommendations": [
        {
            "recommendation": "Concrete step to become compliant",
            "priority": "high" | "medium" | "low"
        }
    ]
}

Always include violations array (empty if none).
Always include at least one recommendation.
Be specific with clause references - use exact numbers from provided context.`

// formatContext renders ranked results as numbered references the model
// can cite.
func formatContext(results []vector.Result) string {
	if len(results) == 0 {
		return "No relevant policy documents found in the knowledge base."
	}

	parts := make([]string, len(results))
	for i, r := range results {
		var source []string
		if r.Meta.CircularNumber != "" {
			source = append(source, "Circular: "+r.Meta.CircularNumber)
		} else if r.Meta.DocumentName != "" {
			source = append(source, "Document: "+r.Meta.DocumentName)
		}
		if r.ClauseNumber != "" {
			source = append(source, "Clause "+r.ClauseNumber)
		}
		if r.SectionTitle != "" {
			source = append(source, "Section: "+r.SectionTitle)
		}
		if r.Meta.Source != "" {
			source = append(source, "Source: "+r.Meta.Source)
		}

		sourceStr := "Unknown Source"
		if len(source) > 0 {
			sourceStr = strings.Join(source, " | ")
		}

		parts[i] = fmt.Sprintf("[Reference %d] (%s)\n%s\n", i+1, sourceStr, r.Content)
	}

	return strings.Join(parts, "\n---\n")
}

// buildPrompt assembles the analysis request sent to the model.
func buildPrompt(query string, results []vector.Result, retrievalConfidence, threshold float64) string {
	divider := strings.Repeat("-", 50)

	var sb strings.Builder
	sb.WriteString("COMPLIANCE ANALYSIS REQUEST\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	sb.WriteString("USER QUERY: " + query + "\n\n")
	sb.WriteString("KNOWLEDGE BASE CONTEXT (Use ONLY these references):\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(formatContext(results) + "\n")
	sb.WriteString(divider + "\n\n")
	sb.WriteString(fmt.Sprintf("INITIAL CONFIDENCE FROM RETRIEVAL: %.2f\n\n", retrievalConfidence))
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("1. Analyze the query against the provided knowledge base context\n")
	sb.WriteString("2. Cite ONLY clauses that appear in the context above\n")
	sb.WriteString(fmt.Sprintf("3. If confidence < %.2f or context is insufficient, status MUST be 'INSUFFICIENT_INFORMATION'\n", threshold))
	sb.WriteString("4. Return response as valid JSON only, no markdown\n\n")
	sb.WriteString("Provide your compliance analysis in JSON format:")

	return sb.String()
}
