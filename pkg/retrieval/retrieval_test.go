package retrieval_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/complydesk/arbiter/pkg/retrieval"
	"github.com/complydesk/arbiter/pkg/vector"
)

func result(id string, similarity float64, documentType string) vector.Result {
	return vector.Result{
		ChunkID:    id,
		Similarity: similarity,
		Meta:       vector.DocumentMeta{DocumentType: documentType},
	}
}

var _ = Describe("Authority", func() {
	authority := retrieval.NewAuthority([]string{"SBP_CIRCULAR", "SBP_REGULATION"})

	It("ranks configured types as authoritative", func() {
		Expect(authority.Rank("SBP_CIRCULAR")).To(Equal(0))
		Expect(authority.Rank("SBP_REGULATION")).To(Equal(0))
		Expect(authority.IsAuthoritative("SBP_CIRCULAR")).To(BeTrue())
	})

	It("ranks everything else behind authoritative types", func() {
		Expect(authority.Rank("INTERNAL_POLICY")).To(Equal(1))
		Expect(authority.Rank("")).To(Equal(1))
		Expect(authority.IsAuthoritative("USER_UPLOAD")).To(BeFalse())
	})
})

var _ = Describe("Rank", func() {
	authority := retrieval.NewAuthority([]string{"SBP_CIRCULAR"})

	It("filters results below the similarity floor", func() {
		results := []vector.Result{
			result("a", 0.9, "SBP_CIRCULAR"),
			result("b", 0.2, "SBP_CIRCULAR"),
			result("c", 0.25, "SBP_CIRCULAR"),
		}

		ranked := retrieval.Rank(results, 0.25, 0, authority)

		Expect(ranked).To(HaveLen(2))
		Expect(ranked[0].ChunkID).To(Equal("a"))
		Expect(ranked[1].ChunkID).To(Equal("c"))
	})

	It("orders authoritative sources ahead of higher-similarity others", func() {
		results := []vector.Result{
			result("policy", 0.95, "INTERNAL_POLICY"),
			result("circular", 0.60, "SBP_CIRCULAR"),
		}

		ranked := retrieval.Rank(results, 0, 0, authority)

		Expect(ranked[0].ChunkID).To(Equal("circular"))
		Expect(ranked[1].ChunkID).To(Equal("policy"))
	})

	It("orders by similarity within the same authority rank", func() {
		results := []vector.Result{
			result("low", 0.4, "SBP_CIRCULAR"),
			result("high", 0.8, "SBP_CIRCULAR"),
			result("mid", 0.6, "SBP_CIRCULAR"),
		}

		ranked := retrieval.Rank(results, 0, 0, authority)

		Expect(ranked[0].ChunkID).To(Equal("high"))
		Expect(ranked[1].ChunkID).To(Equal("mid"))
		Expect(ranked[2].ChunkID).To(Equal("low"))
	})

	It("keeps search order for exact ties", func() {
		results := []vector.Result{
			result("first", 0.5, "SBP_CIRCULAR"),
			result("second", 0.5, "SBP_CIRCULAR"),
		}

		ranked := retrieval.Rank(results, 0, 0, authority)

		Expect(ranked[0].ChunkID).To(Equal("first"))
		Expect(ranked[1].ChunkID).To(Equal("second"))
	})

	It("truncates to topK after ordering", func() {
		results := []vector.Result{
			result("a", 0.9, "INTERNAL_POLICY"),
			result("b", 0.8, "SBP_CIRCULAR"),
			result("c", 0.7, "SBP_CIRCULAR"),
		}

		ranked := retrieval.Rank(results, 0, 2, authority)

		Expect(ranked).To(HaveLen(2))
		Expect(ranked[0].ChunkID).To(Equal("b"))
		Expect(ranked[1].ChunkID).To(Equal("c"))
	})

	It("returns everything when topK is zero", func() {
		results := []vector.Result{
			result("a", 0.9, "SBP_CIRCULAR"),
			result("b", 0.8, "SBP_CIRCULAR"),
		}

		Expect(retrieval.Rank(results, 0, 0, authority)).To(HaveLen(2))
	})

	It("handles an empty result set", func() {
		Expect(retrieval.Rank(nil, 0.25, 5, authority)).To(BeEmpty())
	})
})

var _ = Describe("Confidence", func() {
	authority := retrieval.NewAuthority([]string{"SBP_CIRCULAR"})

	It("returns zero for an empty result set", func() {
		Expect(retrieval.Confidence(nil, 5, authority)).To(BeZero())
	})

	It("blends similarity, fullness, base, and authority share", func() {
		// Four results averaging 0.75 similarity, topK of 5, half
		// authoritative: 0.6*0.75 + 0.3*0.8 + 0.1 + 0.1*0.5 = 0.84.
		ranked := []vector.Result{
			result("a", 0.80, "SBP_CIRCULAR"),
			result("b", 0.70, "SBP_CIRCULAR"),
			result("c", 0.80, "INTERNAL_POLICY"),
			result("d", 0.70, "INTERNAL_POLICY"),
		}

		Expect(retrieval.Confidence(ranked, 5, authority)).To(BeNumerically("~", 0.84, 1e-9))
	})

	It("treats a full result set as full even beyond topK", func() {
		ranked := []vector.Result{
			result("a", 0.5, "INTERNAL_POLICY"),
			result("b", 0.5, "INTERNAL_POLICY"),
			result("c", 0.5, "INTERNAL_POLICY"),
		}

		// 0.6*0.5 + 0.3*1.0 + 0.1 + 0 = 0.7, with count above topK.
		Expect(retrieval.Confidence(ranked, 2, authority)).To(BeNumerically("~", 0.7, 1e-9))
	})

	It("clamps the score to one", func() {
		ranked := []vector.Result{
			result("a", 1.0, "SBP_CIRCULAR"),
			result("b", 1.0, "SBP_CIRCULAR"),
		}

		// 0.6 + 0.3 + 0.1 + 0.1 exceeds one before clamping.
		Expect(retrieval.Confidence(ranked, 2, authority)).To(Equal(1.0))
	})

	It("never exceeds the unit interval", func() {
		ranked := []vector.Result{result("a", 0.01, "INTERNAL_POLICY")}

		score := retrieval.Confidence(ranked, 5, authority)
		Expect(score).To(BeNumerically(">=", 0))
		Expect(score).To(BeNumerically("<=", 1))
	})
})
