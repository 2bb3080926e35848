// Package tokenizer splits text into the lowercase word tokens shared by
// indexing and querying. Both sides must agree on token boundaries or terms
// would never match, so this is the only tokenizer in the system.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenize returns the maximal runs of letters, digits, and underscore in
// text, case-folded to lowercase, in order of appearance. Any other rune is a
// separator. There is no stemming and no stop-word removal; input with no
// word runes yields nil.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// Counts tokenizes text and returns per-token occurrence counts together
// with the total token count.
func Counts(text string) (map[string]int, int) {
	counts := make(map[string]int)
	total := 0
	for _, tok := range Tokenize(text) {
		counts[tok]++
		total++
	}
	return counts, total
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
