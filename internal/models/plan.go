package models

// Action represents the verdict for one expiring ingredient
type Action string

const (
	// Actions an expiring ingredient can be assigned
	ActionCook   Action = "COOK"
	ActionSell   Action = "SELL"
	ActionDonate Action = "DONATE"
)

// Decision is the verdict for a single ingredient, with a human-readable
// rationale naming the rule that fired
type Decision struct {
	Ingredient string `json:"ingredient"`
	Action     Action `json:"action"`
	Rationale  string `json:"rationale"`
	Target     string `json:"target,omitempty"`
}

// ActionPlan is the sole output artifact of a decision run. Decisions
// appear in batch order, one per ingredient.
type ActionPlan struct {
	Decisions  []Decision `json:"decisions"`
	ChosenDish string     `json:"chosen_dish,omitempty"`
}

// ByAction groups the plan's ingredient names by their assigned action
func (p ActionPlan) ByAction() map[Action][]string {
	grouped := make(map[Action][]string)
	for _, d := range p.Decisions {
		grouped[d.Action] = append(grouped[d.Action], d.Ingredient)
	}
	return grouped
}

// Complete reports whether every decision carries an ingredient and a
// recognized action. Dispatch refuses incomplete plans.
func (p ActionPlan) Complete() bool {
	for _, d := range p.Decisions {
		if d.Ingredient == "" {
			return false
		}
		switch d.Action {
		case ActionCook, ActionSell, ActionDonate:
		default:
			return false
		}
	}
	return true
}
