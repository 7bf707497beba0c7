// Package brandctx filters brand-voice copy before it reaches an image prompt.
package brandctx

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"productshots/internal/intent"
)

const (
	// MaxRunes caps the sanitized brand context.
	MaxRunes = 600
	// TruncationMarker is appended when the text is cut.
	TruncationMarker = " …[truncated]"
)

// Result is the sanitized text plus the style tokens that were stripped.
type Result struct {
	Text    string
	Removed []string
}

// Sanitizer strips stylized-look tokens from brand text unless the user asked
// for the same token in their visual style or notes.
type Sanitizer struct {
	styles *intent.Matcher
}

// NewSanitizer builds a sanitizer for the given style tokens.
func NewSanitizer(styles []string) *Sanitizer {
	return &Sanitizer{styles: intent.NewMatcher(styles)}
}

var defaultSanitizer = NewSanitizer(intent.DefaultNoisyStyles)

// Sanitize uses the built-in style list.
func Sanitize(text, visualStyle, notes string) Result {
	return defaultSanitizer.Sanitize(text, visualStyle, notes)
}

var (
	spaceBeforePunct = regexp.MustCompile(`\s+([,.;:!?])`)
	repeatedPunct    = regexp.MustCompile(`([,;:])(\s*[,;:])+`)
	onlyPunct        = regexp.MustCompile(`^[\s\p{P}]*$`)
)

// Sanitize processes text line by line.
func (s *Sanitizer) Sanitize(text, visualStyle, notes string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{}
	}
	requested := map[string]struct{}{}
	for _, tok := range s.styles.Find(intent.Normalize(visualStyle + " \n " + notes)) {
		requested[tok] = struct{}{}
	}

	removed := map[string]struct{}{}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		var drop []string
		for _, tok := range s.styles.Find(intent.Normalize(line)) {
			if _, ok := requested[tok]; !ok {
				drop = append(drop, tok)
			}
		}
		clean := strings.TrimSpace(line)
		if len(drop) > 0 {
			for _, tok := range drop {
				clean = removeToken(clean, tok)
				removed[tok] = struct{}{}
			}
			clean = tidy(clean)
		}
		if onlyPunct.MatchString(clean) {
			continue
		}
		kept = append(kept, clean)
	}

	out := Result{Text: intent.Truncate(strings.Join(kept, "\n"), MaxRunes, TruncationMarker)}
	for tok := range removed {
		out.Removed = append(out.Removed, tok)
	}
	sort.Strings(out.Removed)
	return out
}

const wordEdge = `[^\p{L}\p{N}\p{Mn}_]`

// removeToken deletes every whole-word occurrence of a normalized token from
// line. It matches on the decomposed form, so accented spellings of the token
// go too while the rest of the line keeps its diacritics.
func removeToken(line, token string) string {
	var b strings.Builder
	b.WriteString(`(?i)(^|` + wordEdge + `)`)
	for _, r := range token {
		if unicode.IsSpace(r) {
			b.WriteString(`\s+`)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)) + `\p{Mn}*`)
	}
	b.WriteString(`(` + wordEdge + `|$)`)
	re := regexp.MustCompile(b.String())

	out := norm.NFD.String(line)
	for {
		next := re.ReplaceAllString(out, "${1}${2}")
		if next == out {
			break
		}
		out = next
	}
	return norm.NFC.String(out)
}

func tidy(line string) string {
	line = intent.CollapseSpace(line)
	line = spaceBeforePunct.ReplaceAllString(line, "$1")
	line = repeatedPunct.ReplaceAllString(line, "$1")
	line = strings.Trim(line, " ,;:")
	return line
}
