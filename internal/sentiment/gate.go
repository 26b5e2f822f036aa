package sentiment

import "strings"

// DefaultMinWords is the word threshold used when none is configured.
const DefaultMinWords = 3

// WordCount counts whitespace-separated tokens of the raw input.
func WordCount(raw string) int {
	return len(strings.Fields(raw))
}

// IsAcceptable accepts raw, pre-normalized input with at least minWords tokens.
func IsAcceptable(raw string, minWords int) bool {
	return WordCount(raw) >= minWords
}
