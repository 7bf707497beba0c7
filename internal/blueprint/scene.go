// Package blueprint builds the per-session scene and identity text that every
// angle render re-states verbatim.
package blueprint

import (
	"fmt"
	"strings"

	"productshots/internal/domain"
	"productshots/internal/intent"
)

// SceneInput gathers everything the scene builder reads. Resolver supplies
// the vocabulary avoid lines are checked against; nil uses the built-in table.
type SceneInput struct {
	Attributes       domain.ProductAttributes
	BackgroundType   domain.BackgroundType
	CustomBackground string
	UsagePurpose     string
	DisplayInfo      string
	AdditionalNotes  string
	Intent           domain.IntentSignals
	BrandContext     string
	Avoid            []string
	Resolver         *intent.Resolver
}

const (
	lightingDaylight = "Natural daylight: soft directional sun with open-shade fill, realistic outdoor shadows, neutral white balance around 5500K."
	lightingWarm     = "Warm ambient interior light around 3200-3800K with a soft fill from the camera side and gentle practical highlights."
	lightingStudio   = "Studio softbox key light at 45 degrees with a large fill card and a subtle rim light, neutral 5000K white balance, soft controlled shadows."
	lightingLock     = "Keep the same light direction, intensity and color temperature in every angle."
)

type lightingRule struct {
	applies func(SceneInput) bool
	text    string
}

// lightingTable is evaluated top to bottom; the first match wins.
var lightingTable = []lightingRule{
	{applies: func(in SceneInput) bool { return in.Intent.WantsOutdoor }, text: lightingDaylight},
	{applies: func(in SceneInput) bool {
		return in.BackgroundType == domain.BackgroundKitchen ||
			in.BackgroundType == domain.BackgroundRestaurant ||
			in.Intent.ActionType == domain.ActionCook
	}, text: lightingWarm},
	{applies: func(SceneInput) bool { return true }, text: lightingStudio},
}

// BuildScene assembles the session blueprint. It is deterministic: the same
// input always yields the same text and rule order.
func BuildScene(in SceneInput) domain.SceneBlueprint {
	return domain.SceneBlueprint{
		Scene:             sceneText(in),
		Lighting:          lightingText(in),
		Composition:       compositionText(in),
		HardNegativeRules: ReconcileRulesWith(in.Resolver, baseRules(in.Intent, in.Avoid), in.Intent),
	}
}

func sceneText(in SceneInput) string {
	var lines []string
	custom := intent.CollapseSpace(in.CustomBackground)

	if in.BackgroundType == domain.BackgroundCustom && custom != "" {
		lines = append(lines, fmt.Sprintf("Setting: %s.", trimDot(custom)))
	} else {
		lines = append(lines, fmt.Sprintf("Setting: %s.", in.BackgroundType.Description()))
		if custom != "" {
			lines = append(lines, fmt.Sprintf("Scene details: %s.", trimDot(custom)))
		}
	}

	product := strings.TrimSpace(in.Attributes.Summary)
	if product == "" {
		product = in.Attributes.Describe()
	}
	lines = append(lines, fmt.Sprintf("Product: %s.", trimDot(product)))

	if v := intent.CollapseSpace(in.UsagePurpose); v != "" {
		lines = append(lines, fmt.Sprintf("Intended use: %s.", trimDot(v)))
	}
	if v := intent.CollapseSpace(in.DisplayInfo); v != "" {
		lines = append(lines, fmt.Sprintf("Display context: %s.", trimDot(v)))
	}
	if v := intent.CollapseSpace(in.AdditionalNotes); v != "" {
		lines = append(lines, fmt.Sprintf("Additional notes: %s.", trimDot(v)))
	}

	if in.Intent.WantsOutdoor {
		lines = append(lines, "Location: outdoors in natural surroundings, exactly as requested.")
	} else {
		lines = append(lines, "Location: indoors.")
	}
	lines = append(lines, humanClause(in.Intent))

	if v := strings.TrimSpace(in.BrandContext); v != "" {
		lines = append(lines, fmt.Sprintf("Brand mood (low priority, never overrides the points above): %s", intent.CollapseSpace(v)))
	}
	return strings.Join(lines, "\n")
}

func humanClause(sig domain.IntentSignals) string {
	switch {
	case sig.WantsHumanPresence && sig.WantsAction:
		return fmt.Sprintf("People: include a person %s the product naturally; the person supports the product and never hides its identifying features.", sig.ActionType.Verb())
	case sig.WantsHumanPresence:
		return "People: include natural human presence with the product, such as hands holding it, without covering its identifying features."
	case sig.WantsAction:
		return fmt.Sprintf("People: none. Suggest the %s moment through props and context only.", sig.ActionType.Verb())
	default:
		return "People: none."
	}
}

func lightingText(in SceneInput) string {
	for _, rule := range lightingTable {
		if rule.applies(in) {
			return rule.text + " " + lightingLock
		}
	}
	return lightingLock
}

func compositionText(in SceneInput) string {
	lines := []string{"The product is the hero subject: sharp, fully visible and placed with balanced negative space."}
	if v := intent.CollapseSpace(in.DisplayInfo); v != "" {
		lines = append(lines, fmt.Sprintf("Frame the product for its display context (%s), leaving room the layout needs.", trimDot(v)))
	}
	return strings.Join(lines, " ")
}

func trimDot(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".")
}
