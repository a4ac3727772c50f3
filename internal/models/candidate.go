package models

// RecipeCandidate is a ranked recipe option supplied by the recipe
// retrieval collaborator. The required ingredient names are normalized.
type RecipeCandidate struct {
	DishName            string   `json:"dish_name"`
	RequiredIngredients []string `json:"required_ingredients"`
	Score               float64  `json:"score"`
	Instructions        string   `json:"instructions,omitempty"`
}

// Requires reports whether the candidate's requirement set contains the
// given ingredient name (case-normalized comparison).
func (c RecipeCandidate) Requires(name string) bool {
	key := NormalizeName(name)
	for _, req := range c.RequiredIngredients {
		if NormalizeName(req) == key {
			return true
		}
	}
	return false
}

// RestaurantCandidate is a ranked potential buyer for surplus stock.
// CapacityHint, when present, is the approximate quantity the buyer can
// absorb, in the ingredient's own unit.
type RestaurantCandidate struct {
	Name         string   `json:"name"`
	Cuisine      string   `json:"cuisine,omitempty"`
	DistanceKm   float64  `json:"distance_km"`
	CapacityHint *float64 `json:"capacity_hint,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

// DonationTarget is the single best donation center for the run, or
// absent when none is open nearby.
type DonationTarget struct {
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	DistanceKm float64 `json:"distance_km"`
	Hours      string  `json:"hours,omitempty"`
}
