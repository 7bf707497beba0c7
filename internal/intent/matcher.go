package intent

import (
	"regexp"
	"sort"
	"strings"
)

// Matcher reports whether normalized text contains any of its keywords as a
// whole word or phrase.
type Matcher struct {
	keywords []string
	re       *regexp.Regexp
}

// NewMatcher compiles keywords into one word-boundary pattern. Keywords are
// normalized first; longer phrases are tried before their prefixes.
func NewMatcher(keywords []string) *Matcher {
	seen := make(map[string]struct{}, len(keywords))
	var cleaned []string
	for _, kw := range keywords {
		kw = Normalize(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		cleaned = append(cleaned, kw)
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })

	m := &Matcher{keywords: cleaned}
	if len(cleaned) == 0 {
		return m
	}
	alts := make([]string, 0, len(cleaned))
	for _, kw := range cleaned {
		alts = append(alts, strings.ReplaceAll(regexp.QuoteMeta(kw), " ", `\s+`))
	}
	m.re = regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
	return m
}

// Match runs against text that has already been normalized.
func (m *Matcher) Match(normalized string) bool {
	if m == nil || m.re == nil || normalized == "" {
		return false
	}
	return m.re.MatchString(normalized)
}

// Find returns the distinct keywords present in normalized text, in the order
// they first appear.
func (m *Matcher) Find(normalized string) []string {
	if m == nil || m.re == nil || normalized == "" {
		return nil
	}
	var out []string
	seen := map[string]struct{}{}
	for _, hit := range m.re.FindAllString(normalized, -1) {
		hit = CollapseSpace(hit)
		if _, ok := seen[hit]; ok {
			continue
		}
		seen[hit] = struct{}{}
		out = append(out, hit)
	}
	return out
}

// Keywords returns the normalized keyword list.
func (m *Matcher) Keywords() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keywords...)
}
