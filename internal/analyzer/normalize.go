package analyzer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks so that "Confidentialité"
// and "confidentialite" compare equal. Invalid UTF-8 is dropped rather
// than reported; Fold never fails.
func Fold(s string) string {
	s = strings.ToValidUTF8(s, "")
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// containsAny reports whether folded text contains any of the folded keywords.
func containsAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// foldAll returns a folded copy of keywords.
func foldAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = Fold(kw)
	}
	return out
}
