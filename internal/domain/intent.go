package domain

// ActionType is the requested human action with the product.
type ActionType string

const (
	ActionNone  ActionType = "none"
	ActionEat   ActionType = "eat"
	ActionDrink ActionType = "drink"
	ActionCook  ActionType = "cook"
	ActionServe ActionType = "serve"
	ActionUse   ActionType = "use"
)

// Verb returns the progressive form used in prompt text.
func (a ActionType) Verb() string {
	switch a {
	case ActionEat:
		return "eating"
	case ActionDrink:
		return "drinking"
	case ActionCook:
		return "cooking with"
	case ActionServe:
		return "serving"
	case ActionUse:
		return "using"
	default:
		return ""
	}
}

// IntentSignals are derived once per session from the free-text fields.
type IntentSignals struct {
	WantsOutdoor          bool       `json:"wantsOutdoor"`
	WantsHumanPresence    bool       `json:"wantsHumanPresence"`
	WantsAction           bool       `json:"wantsAction"`
	ActionType            ActionType `json:"actionType"`
	IsPhotorealPriority   bool       `json:"isPhotorealPriority"`
	RequestedSceneSummary string     `json:"requestedSceneSummary"`
}
