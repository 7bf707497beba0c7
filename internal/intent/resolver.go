package intent

import (
	"strings"

	"productshots/internal/domain"
)

// SummaryLimit caps RequestedSceneSummary in runes.
const SummaryLimit = 240

// Signal names a boolean rule in the table.
type Signal string

const (
	SignalOutdoor  Signal = "outdoor"
	SignalHuman    Signal = "human"
	SignalNoPeople Signal = "no_people"
	SignalRealism  Signal = "realism"
	SignalStylized Signal = "stylized"
)

// Fields are the raw free-text inputs of a request.
type Fields struct {
	BackgroundType   string
	CustomBackground string
	AdditionalNotes  string
	UsagePurpose     string
	DisplayInfo      string
	VisualStyle      string
	TargetAudience   string
}

// FieldsFromRequest copies the free-text fields of req.
func FieldsFromRequest(req domain.GenerationRequest) Fields {
	return Fields{
		BackgroundType:   string(req.BackgroundType),
		CustomBackground: req.CustomBackground,
		AdditionalNotes:  req.AdditionalNotes,
		UsagePurpose:     req.UsagePurpose,
		DisplayInfo:      req.DisplayInfo,
		VisualStyle:      req.VisualStyle,
		TargetAudience:   req.TargetAudience,
	}
}

// sceneText is what the scene signals scan. TargetAudience describes buyers,
// not the picture, so it is left out.
func (f Fields) sceneText() string {
	return Normalize(strings.Join([]string{
		f.BackgroundType, f.CustomBackground, f.AdditionalNotes,
		f.UsagePurpose, f.DisplayInfo, f.VisualStyle,
	}, " \n "))
}

// StyleText is the text in which a user can explicitly ask for a look.
func (f Fields) StyleText() string {
	return Normalize(f.VisualStyle + " \n " + f.AdditionalNotes)
}

type actionRule struct {
	action  domain.ActionType
	matcher *Matcher
}

// Resolver holds the compiled rule table. It is immutable and safe for
// concurrent use.
type Resolver struct {
	signals map[Signal]*Matcher
	actions []actionRule
}

// NewResolver compiles vocab. Actions are checked in ActionPriority order.
func NewResolver(vocab Vocabulary) *Resolver {
	r := &Resolver{
		signals: map[Signal]*Matcher{
			SignalOutdoor:  NewMatcher(vocab.Outdoor),
			SignalHuman:    NewMatcher(vocab.Human),
			SignalNoPeople: NewMatcher(vocab.NoPeople),
			SignalRealism:  NewMatcher(vocab.Realism),
			SignalStylized: NewMatcher(vocab.NoisyStyles),
		},
	}
	for _, action := range ActionPriority {
		r.actions = append(r.actions, actionRule{action: action, matcher: NewMatcher(vocab.Actions[string(action)])})
	}
	return r
}

var defaultResolver = NewResolver(DefaultVocabulary())

// Default returns the resolver compiled from the built-in vocabulary.
func Default() *Resolver {
	return defaultResolver
}

// Resolve uses the built-in vocabulary.
func Resolve(f Fields) domain.IntentSignals {
	return defaultResolver.Resolve(f)
}

// Matches reports whether the named rule fires on normalized text.
func (r *Resolver) Matches(signal Signal, normalized string) bool {
	return r.signals[signal].Match(normalized)
}

// MatchesAction reports whether normalized text names action.
func (r *Resolver) MatchesAction(action domain.ActionType, normalized string) bool {
	for _, rule := range r.actions {
		if rule.action == action {
			return rule.matcher.Match(normalized)
		}
	}
	return false
}

// StyleMatcher exposes the stylized-token rule for callers that filter text.
func (r *Resolver) StyleMatcher() *Matcher {
	return r.signals[SignalStylized]
}

// Resolve derives IntentSignals from f. It is a pure function of its input.
func (r *Resolver) Resolve(f Fields) domain.IntentSignals {
	text := f.sceneText()

	out := domain.IntentSignals{
		ActionType:            r.resolveAction(text),
		RequestedSceneSummary: SceneSummary(f),
	}
	out.WantsOutdoor = r.Matches(SignalOutdoor, text)
	out.WantsAction = out.ActionType != domain.ActionNone

	lifestyle := strings.EqualFold(strings.TrimSpace(f.BackgroundType), string(domain.BackgroundLifestyle))
	out.WantsHumanPresence = r.Matches(SignalHuman, text) || lifestyle || out.WantsAction
	if r.Matches(SignalNoPeople, text) {
		out.WantsHumanPresence = false
	}

	style := f.StyleText()
	stylized := r.Matches(SignalStylized, style)
	out.IsPhotorealPriority = !stylized || r.Matches(SignalRealism, style)
	return out
}

func (r *Resolver) resolveAction(text string) domain.ActionType {
	for _, rule := range r.actions {
		if rule.matcher.Match(text) {
			return rule.action
		}
	}
	return domain.ActionNone
}

// SceneSummary joins the scene-describing fields into one bounded line.
func SceneSummary(f Fields) string {
	var parts []string
	for _, v := range []string{f.CustomBackground, f.AdditionalNotes, f.UsagePurpose, f.DisplayInfo} {
		if v = CollapseSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return Truncate(strings.Join(parts, "; "), SummaryLimit, "…")
}
