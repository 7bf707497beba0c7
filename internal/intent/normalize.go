package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripMarks removes combining diacritics while keeping case, so "Café" becomes "Cafe".
func StripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize strips diacritics, case-folds and collapses whitespace. Keyword
// matching always runs on normalized text.
func Normalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return CollapseSpace(cases.Fold().String(StripMarks(s)))
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate caps s at limit runes, appending marker when it cuts.
func Truncate(s string, limit int, marker string) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	keep := limit - len([]rune(marker))
	if keep < 0 {
		keep = 0
	}
	return strings.TrimSpace(string(r[:keep])) + marker
}
