package blueprint

import (
	"regexp"

	"productshots/internal/domain"
	"productshots/internal/intent"
)

// Rule templates. The last four are generic consistency guardrails that an
// explicit user request can switch off.
const (
	RuleIdentityLock   = "Keep the exact same product in every image: identical shape, proportions, colors, materials, textures, markings and brand elements."
	RuleNoSubstitution = "Do not substitute, redesign, recolor or resize the product, and never add a second copy of it."
	RuleNoText         = "No added text, captions, watermarks or typography beyond what is printed on the product itself."
	RulePhotoreal      = "Photorealistic photograph only: no illustration, cartoon, anime, 3D render, CGI, painting or sketch look."
	RuleNoArtifacts    = "No distorted, melted, duplicated or floating product parts."
	RuleSameScene      = "Keep background, props, lighting direction and color grading identical across all angles; only the camera framing changes."
	RuleNoPeople       = "No people, hands or body parts in the frame."
	RuleIndoorOnly     = "Indoor scene only; do not move the product outdoors."
	RuleNoTouch        = "No hands on the product: it stands untouched on its own."
	RuleNoConsume      = "No eating, drinking, cooking or serving of the product."
)

const negation = `(?:no|without|tanpa|avoid(?:ing)?|hindari)\s*:?\s+`

var (
	blocksHuman   = regexp.MustCompile(`\b(?:` + negation + `(?:people|persons?|humans?|hands?|models?|body\s+parts|orang|manusia|tangan|model|touching|holding)|product\s+only|hanya\s+produk|nobody|untouched|(?:not|never)\s+(?:be\s+|being\s+)?(?:held|touched|handled))\b`)
	blocksOutdoor = regexp.MustCompile(`\b(?:indoors?\s+(?:scene\s+)?only|studio\s+only|` + negation + `(?:outdoors?|outside|exterior|luar\s+ruangan)|(?:do\s+)?not\s+(?:move|place|shoot)\s+(?:the\s+product\s+)?outdoors?)\b`)
	blocksAction  = regexp.MustCompile(`\b(?:no\s+(?:product\s+)?interaction|untouched|(?:not|never)\s+(?:be\s+|being\s+)?(?:eaten|drunk|cooked|served|used|held|touched|consumed)|` + negation + `(?:eating|drinking|cooking|serving|using))\b`)

	// avoidLine captures what an avoid rule names.
	avoidLine = regexp.MustCompile(`^(?:avoid(?:ing)?|hindari)\b\s*:?\s*(.+)$`)
)

// Conflicts reports whether rule would block something signals marked as
// explicitly requested. Avoid lines are checked against the built-in
// vocabulary.
func Conflicts(rule string, signals domain.IntentSignals) bool {
	return conflicts(intent.Default(), rule, signals)
}

func conflicts(r *intent.Resolver, rule string, signals domain.IntentSignals) bool {
	text := intent.Normalize(rule)
	if signals.WantsHumanPresence && blocksHuman.MatchString(text) {
		return true
	}
	if signals.WantsOutdoor && blocksOutdoor.MatchString(text) {
		return true
	}
	if signals.WantsAction && blocksAction.MatchString(text) {
		return true
	}
	// An avoid line negates everything it names.
	if m := avoidLine.FindStringSubmatch(text); m != nil {
		return namesRequested(r, m[1], signals)
	}
	return false
}

func namesRequested(r *intent.Resolver, subject string, signals domain.IntentSignals) bool {
	switch {
	case signals.WantsHumanPresence && r.Matches(intent.SignalHuman, subject):
		return true
	case signals.WantsOutdoor && r.Matches(intent.SignalOutdoor, subject):
		return true
	case signals.WantsAction && r.MatchesAction(signals.ActionType, subject):
		return true
	default:
		return false
	}
}

// ReconcileRules drops every rule that conflicts with signals and removes
// case-insensitive duplicates, keeping first occurrence order.
func ReconcileRules(rules []string, signals domain.IntentSignals) []string {
	return ReconcileRulesWith(intent.Default(), rules, signals)
}

// ReconcileRulesWith is ReconcileRules with the vocabulary of r; nil uses the
// built-in table.
func ReconcileRulesWith(r *intent.Resolver, rules []string, signals domain.IntentSignals) []string {
	if r == nil {
		r = intent.Default()
	}
	seen := make(map[string]struct{}, len(rules))
	out := make([]string, 0, len(rules))
	for _, rule := range rules {
		key := intent.Normalize(rule)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		if conflicts(r, rule, signals) {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, intent.CollapseSpace(rule))
	}
	return out
}

func baseRules(signals domain.IntentSignals, avoid []string) []string {
	rules := []string{RuleIdentityLock, RuleNoSubstitution, RuleNoText}
	if signals.IsPhotorealPriority {
		rules = append(rules, RulePhotoreal)
	}
	rules = append(rules, RuleNoArtifacts, RuleSameScene, RuleNoPeople, RuleIndoorOnly, RuleNoTouch, RuleNoConsume)
	for _, item := range avoid {
		if item = intent.CollapseSpace(item); item != "" {
			rules = append(rules, "Avoid: "+item+".")
		}
	}
	return rules
}
