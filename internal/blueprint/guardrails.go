package blueprint

import (
	"fmt"
	"strings"

	"productshots/internal/domain"
	"productshots/internal/intent"
)

// Injector adds domain-specific guardrails when its vocabulary shows up in the
// session context.
type Injector interface {
	Name() string
	Applies(normalizedContext string) bool
	Guardrails(signals domain.IntentSignals) []string
}

// Registry runs every registered injector in registration order.
type Registry struct {
	injectors []Injector
}

// NewRegistry returns a registry holding injectors.
func NewRegistry(injectors ...Injector) *Registry {
	return &Registry{injectors: injectors}
}

// DefaultRegistry holds the injectors shipped with the service.
func DefaultRegistry() *Registry {
	return NewRegistry(NewFoodInjector())
}

// Register appends an injector.
func (r *Registry) Register(inj Injector) {
	r.injectors = append(r.injectors, inj)
}

// Collect returns the guardrail lines of every injector that applies, minus
// anything that would contradict signals.
func (r *Registry) Collect(contextText string, signals domain.IntentSignals) (lines []string, applied []string) {
	if r == nil {
		return nil, nil
	}
	normalized := intent.Normalize(contextText)
	var all []string
	for _, inj := range r.injectors {
		if !inj.Applies(normalized) {
			continue
		}
		applied = append(applied, inj.Name())
		all = append(all, inj.Guardrails(signals)...)
	}
	return ReconcileRules(all, signals), applied
}

// GuardrailContext concatenates the text injectors inspect.
func GuardrailContext(req domain.GenerationRequest, attrs domain.ProductAttributes, brandContext string) string {
	return strings.Join([]string{
		string(req.BackgroundType), req.CustomBackground, req.AdditionalNotes,
		req.UsagePurpose, req.DisplayInfo, attrs.Text(), brandContext,
	}, "\n")
}

var foodVocabulary = []string{
	"food", "foods", "meal", "dish", "snack", "snacks", "dessert", "cake", "bread", "pastry",
	"cookie", "cookies", "coffee", "tea", "juice", "beverage", "beverages", "smoothie", "soup",
	"noodle", "noodles", "rice", "burger", "pizza", "sandwich", "salad", "sauce", "chocolate",
	"ice cream", "restaurant", "cafe", "menu", "recipe", "edible", "drink", "drinks",
	"makanan", "minuman", "kue", "roti", "kopi", "teh", "jus", "nasi", "mie", "bakso", "sate",
	"sambal", "rendang", "soto", "gorengan", "camilan", "keripik", "kuliner", "masakan",
	"hidangan", "martabak", "bolu", "kerupuk",
}

// FoodInjector covers food and beverage subjects.
type FoodInjector struct {
	matcher *intent.Matcher
}

// NewFoodInjector builds the food and beverage injector.
func NewFoodInjector() *FoodInjector {
	return &FoodInjector{matcher: intent.NewMatcher(foodVocabulary)}
}

func (f *FoodInjector) Name() string { return "food" }

func (f *FoodInjector) Applies(normalizedContext string) bool {
	return f.matcher.Match(normalizedContext)
}

func (f *FoodInjector) Guardrails(signals domain.IntentSignals) []string {
	lines := []string{
		"Food and drink must look physically real and edible: natural textures, moisture, crumbs and steam where appropriate.",
		"Keep correct real-world scale between the dish, tableware, utensils and any hands.",
		"No CGI, plastic, waxy or toy-like food, and no impossible liquids or floating ingredients.",
	}
	switch signals.ActionType {
	case domain.ActionEat, domain.ActionDrink, domain.ActionCook, domain.ActionServe:
		if signals.WantsAction {
			lines = append(lines, fmt.Sprintf("The requested %s action is allowed: show it naturally and keep the product recognizable.", signals.ActionType.Verb()))
		}
	}
	return lines
}

var _ Injector = (*FoodInjector)(nil)
