package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName maps free text onto catalog naming: NFKC, lower case, and
// runs of spaces or hyphens joined with a single underscore.
// "  High-Fever " becomes "high_fever".
func NormalizeName(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, normed)
	return strings.Join(strings.Fields(normed), "_")
}
