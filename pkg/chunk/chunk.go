// Package chunk splits extracted document text into token-bounded, possibly
// overlapping segments aligned to the document's structure. Chunking is
// deterministic: identical text and configuration always yield an identical
// chunk sequence.
package chunk

import (
	"strings"

	"go.uber.org/zap"
)

// Chunk is a bounded, contiguous span of document text prepared for
// embedding and retrieval.
type Chunk struct {
	Content      string
	Index        int
	TokenCount   int
	SectionTitle string
	ClauseNumber string
	PageNumber   int
	StartChar    int
	EndChar      int
}

// Hints carries structural information recovered during text extraction,
// used to attach page numbers to chunks.
type Hints struct {
	Title string
	Pages []PageSpan
}

// PageSpan maps a page number to its character range in the extracted text.
type PageSpan struct {
	Number    int
	StartChar int
	EndChar   int
}

// Config holds chunking parameters, all expressed in tokens.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
}

// Chunker produces chunks from document text.
type Chunker struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a Chunker. Zero config values fall back to defaults tuned for
// regulatory text (400-token chunks, 50-token overlap, 100-token minimum).
func New(cfg Config, logger *zap.Logger) *Chunker {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 400
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.MinChunkSize <= 0 {
		cfg.MinChunkSize = 100
	}
	return &Chunker{cfg: cfg, logger: logger}
}

// section is a structurally delimited span of the document.
type section struct {
	title     string
	clause    string
	content   string
	startChar int
}

// Chunk splits text into an ordered chunk sequence. Empty or whitespace-only
// input yields an empty sequence.
func (c *Chunker) Chunk(text string, hints *Hints) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var all []Chunk
	for _, sec := range splitSections(text) {
		all = append(all, c.chunkSection(sec)...)
	}

	// Every section emits at least its fits-in-one chunk, so an empty result
	// here means the whole document fell below the minimum as a single
	// partial. Keep it as the document's only chunk.
	if len(all) == 0 {
		trimmed := strings.TrimSpace(text)
		all = []Chunk{{
			Content:    trimmed,
			TokenCount: CountTokens(trimmed),
		}}
	}

	for i := range all {
		all[i].Index = i
		all[i].PageNumber = pageFor(hints, all[i].StartChar)
	}

	c.logger.Debug("text chunked",
		zap.Int("chunks", len(all)),
		zap.Int("chunk_size", c.cfg.ChunkSize),
	)

	return all
}

// splitSections scans lines against the header rule table. When at least two
// structural sections are detected the text is segmented on them; otherwise
// the whole text is treated as a single untitled section.
func splitSections(text string) []section {
	var sections []section
	cur := section{}

	pos := 0
	for _, line := range strings.Split(text, "\n") {
		isHeader, clause := MatchHeader(strings.TrimSpace(line))

		if isHeader && strings.TrimSpace(cur.content) != "" {
			sections = append(sections, cur)
			cur = section{
				title:     strings.TrimSpace(line),
				clause:    clause,
				content:   line + "\n",
				startChar: pos,
			}
		} else {
			if isHeader && cur.title == "" {
				cur.title = strings.TrimSpace(line)
				cur.clause = clause
			}
			cur.content += line + "\n"
		}

		pos += len(line) + 1
	}

	if strings.TrimSpace(cur.content) != "" {
		sections = append(sections, cur)
	}

	if len(sections) < 2 {
		return []section{{content: text}}
	}
	return sections
}

// chunkSection splits one section into chunks. Sections within the token
// budget become a single chunk; larger sections are folded sentence by
// sentence with an overlap tail seeding each successor chunk.
func (c *Chunker) chunkSection(sec section) []Chunk {
	tokens := CountTokens(sec.content)
	trimmed := strings.TrimSpace(sec.content)

	if tokens <= c.cfg.ChunkSize {
		return []Chunk{{
			Content:      trimmed,
			TokenCount:   tokens,
			SectionTitle: sec.title,
			ClauseNumber: sec.clause,
			StartChar:    sec.startChar,
			EndChar:      sec.startChar + len(sec.content),
		}}
	}

	sentences := splitSentences(sec.content)
	return c.foldSentences(sentences, sec)
}

// foldSentences accumulates sentences greedily: a chunk closes when adding
// the next sentence would exceed the chunk size, and the next chunk is
// seeded with the longest sentence suffix that fits the overlap budget.
// A trailing partial below the minimum chunk size is dropped.
func (c *Chunker) foldSentences(sentences []string, sec section) []Chunk {
	offsets := sentenceOffsets(sec.content, sentences)

	var out []Chunk
	var cur []string
	curTokens := 0
	curStart := 0

	emit := func() {
		content := strings.Join(cur, " ")
		start := sec.startChar + offsets[curStart]
		out = append(out, Chunk{
			Content:      content,
			TokenCount:   curTokens,
			SectionTitle: sec.title,
			ClauseNumber: sec.clause,
			StartChar:    start,
			EndChar:      start + len(content),
		})
	}

	for i, sentence := range sentences {
		t := CountTokens(sentence)

		if curTokens+t > c.cfg.ChunkSize && len(cur) > 0 {
			emit()
			tail := overlapTail(cur, c.cfg.ChunkOverlap)
			cur = append(append([]string(nil), tail...), sentence)
			curStart = i - len(tail)
			curTokens = CountTokens(strings.Join(cur, " "))
			continue
		}

		cur = append(cur, sentence)
		curTokens += t
	}

	if len(cur) > 0 && curTokens >= c.cfg.MinChunkSize {
		emit()
	}

	return out
}

// sentenceOffsets locates each sentence's start within content. The search
// advances past every match, so a sentence that occurs twice resolves to
// its own occurrence rather than the first.
func sentenceOffsets(content string, sentences []string) []int {
	offsets := make([]int, len(sentences))
	from := 0
	for i, s := range sentences {
		if idx := strings.Index(content[from:], s); idx >= 0 {
			offsets[i] = from + idx
			from = offsets[i] + len(s)
		} else {
			offsets[i] = from
		}
	}
	return offsets
}

func pageFor(hints *Hints, offset int) int {
	if hints == nil {
		return 0
	}
	for _, p := range hints.Pages {
		if offset >= p.StartChar && offset < p.EndChar {
			return p.Number
		}
	}
	return 0
}
