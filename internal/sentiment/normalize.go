package sentiment

import (
	"strings"
	"unicode"
)

// Normalize lowercases raw, keeps only ASCII letters and whitespace, and trims
// the result. It is total and idempotent.
func Normalize(raw string) string {
	lowered := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
