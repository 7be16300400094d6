// Package retrieval ranks vector search results and scores retrieval
// confidence for downstream compliance analysis.
package retrieval

import (
	"sort"

	"github.com/complydesk/arbiter/pkg/vector"
)

// Authority decides how strongly a document type is weighted during
// ranking. Rank 0 is authoritative, rank 1 is everything else. Lower
// ranks sort first.
type Authority struct {
	types map[string]struct{}
}

// NewAuthority builds an Authority from the configured authoritative
// document types.
func NewAuthority(documentTypes []string) *Authority {
	types := make(map[string]struct{}, len(documentTypes))
	for _, t := range documentTypes {
		types[t] = struct{}{}
	}
	return &Authority{types: types}
}

// Rank returns the authority rank for a document type.
func (a *Authority) Rank(documentType string) int {
	if _, ok := a.types[documentType]; ok {
		return 0
	}
	return 1
}

// IsAuthoritative reports whether the document type carries rank 0.
func (a *Authority) IsAuthoritative(documentType string) bool {
	return a.Rank(documentType) == 0
}

// Rank filters out results below minSimilarity, orders the rest by
// authority rank ascending then similarity descending, and truncates to
// topK. The sort is stable, so ties keep their search order.
func Rank(results []vector.Result, minSimilarity float64, topK int, authority *Authority) []vector.Result {
	ranked := make([]vector.Result, 0, len(results))
	for _, r := range results {
		if r.Similarity >= minSimilarity {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ri := authority.Rank(ranked[i].Meta.DocumentType)
		rj := authority.Rank(ranked[j].Meta.DocumentType)
		if ri != rj {
			return ri < rj
		}
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// Confidence scores how trustworthy a ranked result set is, in [0, 1].
// Zero results always score zero. Otherwise the score blends the average
// similarity, how full the result set is relative to topK, a base term,
// and the share of authoritative sources.
func Confidence(ranked []vector.Result, topK int, authority *Authority) float64 {
	if len(ranked) == 0 {
		return 0
	}

	var sumSim float64
	var authoritative int
	for _, r := range ranked {
		sumSim += r.Similarity
		if authority.IsAuthoritative(r.Meta.DocumentType) {
			authoritative++
		}
	}

	count := float64(len(ranked))
	avgSim := sumSim / count

	fullness := 1.0
	if topK > 0 && count < float64(topK) {
		fullness = count / float64(topK)
	}

	score := 0.6*avgSim + 0.3*fullness + 0.1 + 0.1*(float64(authoritative)/count)

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
