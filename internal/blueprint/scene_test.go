package blueprint

import (
	"strings"
	"testing"

	"productshots/internal/domain"
	"productshots/internal/intent"
)

func allSignalCombos() []domain.IntentSignals {
	var out []domain.IntentSignals
	for _, outdoor := range []bool{false, true} {
		for _, human := range []bool{false, true} {
			for _, action := range []domain.ActionType{domain.ActionNone, domain.ActionEat, domain.ActionUse} {
				for _, photoreal := range []bool{false, true} {
					out = append(out, domain.IntentSignals{
						WantsOutdoor:        outdoor,
						WantsHumanPresence:  human,
						WantsAction:         action != domain.ActionNone,
						ActionType:          action,
						IsPhotorealPriority: photoreal,
					})
				}
			}
		}
	}
	return out
}

func TestBuildSceneRulesNeverContradictSignals(t *testing.T) {
	avoid := []string{"no people in the background", "clutter", "indoor only", "product untouched", "Clutter"}
	for _, sig := range allSignalCombos() {
		bp := BuildScene(SceneInput{BackgroundType: domain.BackgroundStudio, Intent: sig, Avoid: avoid})
		for _, rule := range bp.HardNegativeRules {
			if Conflicts(rule, sig) {
				t.Fatalf("rule %q conflicts with %+v", rule, sig)
			}
		}
		if sig.WantsHumanPresence && containsRule(bp.HardNegativeRules, RuleNoPeople) {
			t.Fatalf("no-people rule kept for %+v", sig)
		}
		if sig.WantsOutdoor && containsRule(bp.HardNegativeRules, RuleIndoorOnly) {
			t.Fatalf("indoor rule kept for %+v", sig)
		}
		if sig.WantsAction && containsRule(bp.HardNegativeRules, RuleNoConsume) {
			t.Fatalf("no-consume rule kept for %+v", sig)
		}
		if sig.WantsHumanPresence && containsRule(bp.HardNegativeRules, RuleNoTouch) {
			t.Fatalf("no-touch rule kept for %+v", sig)
		}
		if !containsRule(bp.HardNegativeRules, RuleIdentityLock) {
			t.Fatalf("identity lock missing for %+v", sig)
		}
		if containsRule(bp.HardNegativeRules, RulePhotoreal) != sig.IsPhotorealPriority {
			t.Fatalf("photoreal rule presence wrong for %+v", sig)
		}
	}
}

func TestBuildSceneRulesNeverNameRequestedSubjects(t *testing.T) {
	vocab := intent.DefaultVocabulary()
	human := intent.NewMatcher(vocab.Human)
	outdoor := intent.NewMatcher(vocab.Outdoor)
	actions := make(map[domain.ActionType]*intent.Matcher)
	for name, kws := range vocab.Actions {
		actions[domain.ActionType(name)] = intent.NewMatcher(kws)
	}
	avoid := []string{"people", "hands", "outdoor scenes", "orang", "tangan", "eating", "using", "product untouched", "plastic props"}

	for _, bg := range []domain.BackgroundType{domain.BackgroundStudio, domain.BackgroundLifestyle} {
		for _, sig := range allSignalCombos() {
			bp := BuildScene(SceneInput{BackgroundType: bg, Intent: sig, Avoid: avoid})
			for _, rule := range bp.HardNegativeRules {
				text := intent.Normalize(rule)
				if sig.WantsHumanPresence && (human.Match(text) || strings.Contains(text, "untouched")) {
					t.Fatalf("%s: rule %q blocks requested people for %+v", bg, rule, sig)
				}
				if sig.WantsOutdoor && outdoor.Match(text) {
					t.Fatalf("%s: rule %q blocks requested outdoor for %+v", bg, rule, sig)
				}
				if sig.WantsAction && actions[sig.ActionType].Match(text) {
					t.Fatalf("%s: rule %q blocks requested %s for %+v", bg, rule, sig.ActionType, sig)
				}
			}
			if !containsRule(bp.HardNegativeRules, "Avoid: plastic props.") {
				t.Fatalf("%s: unrelated avoid item dropped for %+v", bg, sig)
			}
		}
	}
}

func TestBuildSceneDropsAvoidItemsNamingRequestedSubjects(t *testing.T) {
	fields := intent.Fields{BackgroundType: "studio", AdditionalNotes: "outdoor picnic, a woman holding the product"}
	sig := intent.Resolve(fields)
	if !sig.WantsOutdoor || !sig.WantsHumanPresence {
		t.Fatalf("signals = %+v", sig)
	}
	bp := BuildScene(SceneInput{
		BackgroundType:  domain.BackgroundStudio,
		AdditionalNotes: fields.AdditionalNotes,
		Intent:          sig,
		Avoid:           []string{"people", "hands", "outdoor scenes", "orang", "busy patterns"},
	})
	for _, rule := range bp.HardNegativeRules {
		switch rule {
		case "Avoid: people.", "Avoid: hands.", "Avoid: outdoor scenes.", "Avoid: orang.", RuleNoPeople, RuleIndoorOnly, RuleNoTouch:
			t.Fatalf("rule %q kept in %v", rule, bp.HardNegativeRules)
		}
	}
	if !containsRule(bp.HardNegativeRules, "Avoid: busy patterns.") {
		t.Fatalf("unrelated avoid item missing: %v", bp.HardNegativeRules)
	}
}

func TestBuildSceneHumanPresenceWithoutAction(t *testing.T) {
	for _, fields := range []intent.Fields{
		{BackgroundType: "lifestyle"},
		{BackgroundType: "studio", AdditionalNotes: "someone holding the jar"},
	} {
		sig := intent.Resolve(fields)
		if !sig.WantsHumanPresence || sig.WantsAction {
			t.Fatalf("signals = %+v for %+v", sig, fields)
		}
		bp := BuildScene(SceneInput{BackgroundType: domain.BackgroundType(fields.BackgroundType), AdditionalNotes: fields.AdditionalNotes, Intent: sig})
		if !strings.Contains(bp.Scene, "hands holding it") {
			t.Fatalf("scene = %q", bp.Scene)
		}
		for _, rule := range bp.HardNegativeRules {
			if strings.Contains(strings.ToLower(rule), "untouched") || rule == RuleNoPeople {
				t.Fatalf("rule %q contradicts the people clause for %+v", rule, fields)
			}
		}
		if !containsRule(bp.HardNegativeRules, RuleIndoorOnly) || !containsRule(bp.HardNegativeRules, RuleNoConsume) {
			t.Fatalf("unrelated guardrails dropped: %v", bp.HardNegativeRules)
		}
	}
}

func TestBuildSceneKeepsGuardrailsWithoutIntent(t *testing.T) {
	bp := BuildScene(SceneInput{BackgroundType: domain.BackgroundStudio, Intent: domain.IntentSignals{IsPhotorealPriority: true}})
	for _, want := range []string{RuleNoPeople, RuleIndoorOnly, RuleNoTouch, RuleNoConsume} {
		if !containsRule(bp.HardNegativeRules, want) {
			t.Fatalf("missing %q in %v", want, bp.HardNegativeRules)
		}
	}
}

func TestReconcileRulesDedupesCaseInsensitive(t *testing.T) {
	got := ReconcileRules([]string{"Avoid: clutter.", "avoid:   CLUTTER.", "", "No text."}, domain.IntentSignals{})
	if len(got) != 2 || got[0] != "Avoid: clutter." || got[1] != "No text." {
		t.Fatalf("ReconcileRules = %v", got)
	}
}

func TestConflictsPatterns(t *testing.T) {
	tests := []struct {
		rule string
		sig  domain.IntentSignals
		want bool
	}{
		{"Tanpa orang di foto", domain.IntentSignals{WantsHumanPresence: true}, true},
		{"Product only, clean shot", domain.IntentSignals{WantsHumanPresence: true}, true},
		{"Studio only", domain.IntentSignals{WantsOutdoor: true}, true},
		{"The dish must not be eaten", domain.IntentSignals{WantsAction: true, ActionType: domain.ActionEat}, true},
		{"No people", domain.IntentSignals{WantsOutdoor: true}, false},
		{"Avoid: people.", domain.IntentSignals{WantsHumanPresence: true}, true},
		{"Hindari orang di latar", domain.IntentSignals{WantsHumanPresence: true}, true},
		{"Avoid: outdoor scenes.", domain.IntentSignals{WantsOutdoor: true}, true},
		{"Avoid: eating.", domain.IntentSignals{WantsAction: true, ActionType: domain.ActionEat}, true},
		{"Avoid: clutter.", domain.IntentSignals{WantsHumanPresence: true, WantsOutdoor: true, WantsAction: true, ActionType: domain.ActionEat}, false},
		{RuleNoTouch, domain.IntentSignals{WantsHumanPresence: true}, true},
		{RuleNoConsume, domain.IntentSignals{WantsHumanPresence: true}, false},
		{"No text or watermark", domain.IntentSignals{WantsHumanPresence: true, WantsOutdoor: true, WantsAction: true}, false},
	}
	for _, tt := range tests {
		if got := Conflicts(tt.rule, tt.sig); got != tt.want {
			t.Fatalf("Conflicts(%q, %+v) = %v, want %v", tt.rule, tt.sig, got, tt.want)
		}
	}
}

func TestLightingDecisionTable(t *testing.T) {
	tests := []struct {
		name string
		in   SceneInput
		want string
	}{
		{"outdoor wins over kitchen", SceneInput{BackgroundType: domain.BackgroundKitchen, Intent: domain.IntentSignals{WantsOutdoor: true}}, lightingDaylight},
		{"restaurant", SceneInput{BackgroundType: domain.BackgroundRestaurant}, lightingWarm},
		{"cooking action", SceneInput{BackgroundType: domain.BackgroundStudio, Intent: domain.IntentSignals{WantsAction: true, ActionType: domain.ActionCook}}, lightingWarm},
		{"studio default", SceneInput{BackgroundType: domain.BackgroundMinimal}, lightingStudio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildScene(tt.in).Lighting
			if !strings.HasPrefix(got, tt.want) {
				t.Fatalf("Lighting = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestSceneTextClauses(t *testing.T) {
	bp := BuildScene(SceneInput{
		Attributes:       domain.ProductAttributes{ProductType: "mug", Material: "ceramic"},
		BackgroundType:   domain.BackgroundCustom,
		CustomBackground: "picnic blanket in a park.",
		DisplayInfo:      "Instagram story",
		Intent: domain.IntentSignals{
			WantsOutdoor: true, WantsHumanPresence: true, WantsAction: true, ActionType: domain.ActionDrink,
		},
		BrandContext: "Cozy and warm.",
	})

	for _, want := range []string{
		"Setting: picnic blanket in a park.",
		"Product: ceramic mug.",
		"Display context: Instagram story.",
		"Location: outdoors",
		"include a person drinking the product",
		"Brand mood (low priority",
	} {
		if !strings.Contains(bp.Scene, want) {
			t.Fatalf("Scene missing %q:\n%s", want, bp.Scene)
		}
	}
	if !strings.Contains(bp.Composition, "Instagram story") {
		t.Fatalf("Composition missing display clause: %q", bp.Composition)
	}
	if strings.Index(bp.Scene, "People:") > strings.Index(bp.Scene, "Brand mood") {
		t.Fatal("brand context should come last")
	}
}

func TestBuildSceneDeterministic(t *testing.T) {
	in := SceneInput{BackgroundType: domain.BackgroundLifestyle, AdditionalNotes: "morning light", Avoid: []string{"plastic"}}
	a, b := BuildScene(in), BuildScene(in)
	if a.Scene != b.Scene || a.Lighting != b.Lighting || strings.Join(a.HardNegativeRules, "|") != strings.Join(b.HardNegativeRules, "|") {
		t.Fatal("BuildScene is not deterministic")
	}
}

func containsRule(rules []string, want string) bool {
	for _, r := range rules {
		if r == want {
			return true
		}
	}
	return false
}
