package chunk_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/chunk"
)

// repeatedSentences builds n distinct sentences that each start with a
// capital letter so the sentence splitter sees every boundary.
func repeatedSentences(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "Item %03d alpha beta gamma. ", i)
	}
	return b.String()
}

var _ = Describe("Chunker", func() {
	var chunker *chunk.Chunker

	BeforeEach(func() {
		chunker = chunk.New(chunk.Config{}, zap.NewNop())
	})

	It("returns no chunks for empty input", func() {
		Expect(chunker.Chunk("", nil)).To(BeEmpty())
	})

	It("returns no chunks for whitespace-only input", func() {
		Expect(chunker.Chunk("  \n\t\n  ", nil)).To(BeEmpty())
	})

	It("keeps a short document as a single chunk", func() {
		chunks := chunker.Chunk("The bank shall maintain adequate capital reserves.", nil)

		Expect(chunks).To(HaveLen(1))
		Expect(chunks[0].Index).To(Equal(0))
		Expect(chunks[0].Content).To(Equal("The bank shall maintain adequate capital reserves."))
		Expect(chunks[0].TokenCount).To(BeNumerically(">", 0))
	})

	It("is deterministic for identical input", func() {
		text := repeatedSentences(40)
		first := chunker.Chunk(text, nil)
		second := chunker.Chunk(text, nil)
		Expect(second).To(Equal(first))
	})

	It("assigns sequential indices across sections", func() {
		text := "Section 1: Scope\nThis circular applies to all banks.\n" +
			"Section 2: Reporting\nBanks shall report quarterly.\n"
		chunks := chunker.Chunk(text, nil)

		Expect(len(chunks)).To(BeNumerically(">=", 2))
		for i, c := range chunks {
			Expect(c.Index).To(Equal(i))
		}
	})

	It("attaches section titles and clause numbers from headers", func() {
		text := "Section 4.2: Capital Requirements\nBanks shall hold capital.\n" +
			"Section 4.3: Liquidity\nBanks shall hold liquid assets.\n"
		chunks := chunker.Chunk(text, nil)

		Expect(chunks).To(HaveLen(2))
		Expect(chunks[0].SectionTitle).To(Equal("Section 4.2: Capital Requirements"))
		Expect(chunks[0].ClauseNumber).To(Equal("4.2"))
		Expect(chunks[1].SectionTitle).To(Equal("Section 4.3: Liquidity"))
		Expect(chunks[1].ClauseNumber).To(Equal("4.3"))
	})

	It("treats a document with a single header as one section", func() {
		text := "Section 1: Scope\nThis circular applies to all banks."
		chunks := chunker.Chunk(text, nil)

		Expect(chunks).To(HaveLen(1))
		Expect(chunks[0].Content).To(ContainSubstring("Section 1: Scope"))
	})

	Context("folding oversized sections", func() {
		BeforeEach(func() {
			chunker = chunk.New(chunk.Config{
				ChunkSize:    20,
				ChunkOverlap: 7,
				MinChunkSize: 5,
			}, zap.NewNop())
		})

		It("splits into multiple chunks within the token budget", func() {
			chunks := chunker.Chunk(repeatedSentences(12), nil)

			Expect(len(chunks)).To(BeNumerically(">", 1))
			for _, c := range chunks {
				Expect(c.TokenCount).To(BeNumerically("<=", 20))
			}
		})

		It("seeds each chunk with the overlap tail of its predecessor", func() {
			chunks := chunker.Chunk(repeatedSentences(12), nil)

			Expect(len(chunks)).To(BeNumerically(">", 1))
			for i := 1; i < len(chunks); i++ {
				prev := chunks[i-1].Content
				lastSentence := prev[strings.LastIndex(prev[:len(prev)-1], ".")+2:]
				Expect(chunks[i].Content).To(HavePrefix(strings.TrimSpace(lastSentence)))
			}
		})

		It("attributes a repeated sentence to its own occurrence", func() {
			chunker = chunk.New(chunk.Config{
				ChunkSize:    14,
				ChunkOverlap: 0,
				MinChunkSize: 5,
			}, zap.NewNop())

			text := "Item 001 alpha beta gamma. Item 002 alpha beta gamma. Item 001 alpha beta gamma."
			chunks := chunker.Chunk(text, nil)

			Expect(chunks).To(HaveLen(2))
			Expect(chunks[1].Content).To(Equal("Item 001 alpha beta gamma."))
			Expect(chunks[1].StartChar).To(Equal(strings.LastIndex(text, "Item 001")))
			Expect(chunks[1].EndChar).To(Equal(len(text)))
		})

		It("drops a trailing partial below the minimum chunk size", func() {
			chunker = chunk.New(chunk.Config{
				ChunkSize:    10,
				ChunkOverlap: 0,
				MinChunkSize: 8,
			}, zap.NewNop())

			text := "Item one alpha beta gamma omega. Tail bit."
			chunks := chunker.Chunk(text, nil)

			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0].Content).NotTo(ContainSubstring("Tail bit."))
		})

		It("keeps the whole text when every fold falls below the minimum", func() {
			chunker = chunk.New(chunk.Config{
				ChunkSize:    5,
				ChunkOverlap: 0,
				MinChunkSize: 100,
			}, zap.NewNop())

			text := "One very long unbroken regulatory sentence about capital adequacy."
			chunks := chunker.Chunk(text, nil)

			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0].Content).To(Equal(text))
		})
	})

	Context("page hints", func() {
		It("stamps chunks with the page containing their start offset", func() {
			text := "Section 1: Scope\nApplies to banks.\nSection 2: Reports\nQuarterly filings.\n"
			hints := &chunk.Hints{
				Pages: []chunk.PageSpan{
					{Number: 1, StartChar: 0, EndChar: 35},
					{Number: 2, StartChar: 35, EndChar: len(text)},
				},
			}

			chunks := chunker.Chunk(text, hints)

			Expect(chunks).To(HaveLen(2))
			Expect(chunks[0].PageNumber).To(Equal(1))
			Expect(chunks[1].PageNumber).To(Equal(2))
		})

		It("defaults the page to zero without hints", func() {
			chunks := chunker.Chunk("Plain text without pages.", nil)
			Expect(chunks[0].PageNumber).To(Equal(0))
		})
	})
})

var _ = Describe("CountTokens", func() {
	It("counts short words as one token each", func() {
		Expect(chunk.CountTokens("the cat sat")).To(Equal(3))
	})

	It("adds tokens for long words", func() {
		// 12 runes: 1 + (12-1)/4 = 3.
		Expect(chunk.CountTokens("capitalbased")).To(Equal(3))
	})

	It("returns zero for empty text", func() {
		Expect(chunk.CountTokens("")).To(Equal(0))
		Expect(chunk.CountTokens("   ")).To(Equal(0))
	})
})

var _ = Describe("MatchHeader", func() {
	DescribeTable("header detection",
		func(line string, wantHeader bool, wantClause string) {
			isHeader, clause := chunk.MatchHeader(line)
			Expect(isHeader).To(Equal(wantHeader))
			Expect(clause).To(Equal(wantClause))
		},
		Entry("section with clause", "Section 4.2: Capital Requirements", true, "4.2"),
		Entry("uppercase clause", "CLAUSE 7.1.3: Reporting", true, "7.1.3"),
		Entry("article", "Article 12. Sanctions", true, "12"),
		Entry("numbered heading", "3.1 Liquidity Coverage", true, "3.1"),
		Entry("annex", "Annex B", true, ""),
		Entry("chapter", "Chapter 3", true, "3"),
		Entry("plain sentence", "Banks shall report quarterly.", false, ""),
		Entry("number inside prose", "See section 4.2 for details", false, ""),
	)
})
