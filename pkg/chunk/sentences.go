package chunk

import (
	"strings"
	"unicode"
)

// splitSentences splits text into sentences. A boundary is sentence-ending
// punctuation followed by whitespace and a capitalized word, which keeps
// clause references like "section 4.2 applies" inside one sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		// Scan past the whitespace run after the terminator.
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 || j >= len(runes) {
			continue
		}

		if unicode.IsUpper(runes[j]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = j
			i = j - 1
		}
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// overlapTail returns the longest suffix of sentences whose total token
// count fits within the overlap budget. With a budget smaller than the last
// sentence it returns nothing; with a budget larger than the whole chunk it
// degenerates to all available sentences.
func overlapTail(sentences []string, budget int) []string {
	if budget <= 0 || len(sentences) == 0 {
		return nil
	}

	tokens := 0
	start := len(sentences)
	for i := len(sentences) - 1; i >= 0; i-- {
		t := CountTokens(sentences[i])
		if tokens+t > budget {
			break
		}
		tokens += t
		start = i
	}

	return sentences[start:]
}
