package chunk

import (
	"strings"
	"unicode/utf8"
)

// CountTokens estimates the token count of text for chunk budgeting.
//
// The estimate is deterministic: every whitespace-separated word contributes
// at least one token, and long words contribute one extra token per four
// runes beyond the first four. This tracks subword tokenizers closely enough
// for chunk sizing without pulling a model-specific vocabulary into the
// service.
func CountTokens(text string) int {
	total := 0
	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)
		total++
		if n > 4 {
			total += (n - 1) / 4
		}
	}
	return total
}
