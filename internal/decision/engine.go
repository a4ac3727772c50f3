// Package decision reconciles the three candidate sets into one coherent
// per-ingredient action plan.
package decision

import (
	"errors"
	"fmt"

	"foodflow/internal/config"
	"foodflow/internal/models"
)

// ErrInvalidBatch is returned when the expiring batch is structurally
// invalid. It signals an upstream contract violation, not a business
// condition, so callers treat it as fatal.
var ErrInvalidBatch = errors.New("invalid expiring batch")

// Engine assigns each expiring ingredient exactly one action. Decide is a
// pure function of its inputs: no hidden state, no re-querying of the
// collaborators.
type Engine struct {
	cfg config.DecisionConfig
}

// NewEngine creates a decision engine with the given thresholds
func NewEngine(cfg config.DecisionConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Decide produces the action plan for one run. Rules are evaluated
// top-to-bottom per ingredient, first match wins:
//
//  1. COOK when the ingredient appears in the run's chosen dish. The
//     chosen dish is computed once: the highest-scoring usable recipe that
//     covers at least one batch ingredient. Extending one dish is
//     preferred over fragmenting kitchen effort across several.
//  2. SELL when a restaurant is close enough, can absorb the quantity
//     (when it hints a capacity), and the quantity is worth selling.
//  3. DONATE as the guaranteed fallback; it never fails.
//
// An empty batch yields an empty plan.
func (e *Engine) Decide(
	batch []models.ExpiringItem,
	recipes []models.RecipeCandidate,
	restaurants []models.RestaurantCandidate,
	donation *models.DonationTarget,
) (models.ActionPlan, error) {
	for i, item := range batch {
		if item.Name == "" {
			return models.ActionPlan{}, fmt.Errorf("%w: item %d has no name", ErrInvalidBatch, i)
		}
		if item.Quantity < 0 {
			return models.ActionPlan{}, fmt.Errorf("%w: %q has negative quantity", ErrInvalidBatch, item.Name)
		}
	}

	chosen := e.chooseDish(batch, recipes)

	plan := models.ActionPlan{Decisions: make([]models.Decision, 0, len(batch))}
	if chosen != nil {
		plan.ChosenDish = chosen.DishName
	}

	for _, item := range batch {
		plan.Decisions = append(plan.Decisions, e.decideOne(item, chosen, restaurants, donation))
	}
	return plan, nil
}

// chooseDish selects the run's single dish: the highest-scoring recipe
// above the usability threshold whose requirements cover at least one
// batch ingredient. Ties break toward the earlier candidate, trusting the
// collaborator's own ranking.
func (e *Engine) chooseDish(batch []models.ExpiringItem, recipes []models.RecipeCandidate) *models.RecipeCandidate {
	var chosen *models.RecipeCandidate
	for i := range recipes {
		c := &recipes[i]
		if c.Score <= e.cfg.MinRecipeScore {
			continue
		}
		if !coversAny(*c, batch) {
			continue
		}
		if chosen == nil || c.Score > chosen.Score {
			chosen = c
		}
	}
	return chosen
}

func (e *Engine) decideOne(
	item models.ExpiringItem,
	chosen *models.RecipeCandidate,
	restaurants []models.RestaurantCandidate,
	donation *models.DonationTarget,
) models.Decision {
	if chosen != nil && chosen.Requires(item.Name) {
		return models.Decision{
			Ingredient: item.Name,
			Action:     models.ActionCook,
			Target:     chosen.DishName,
			Rationale:  fmt.Sprintf("required by chosen dish %q (score %.2f)", chosen.DishName, chosen.Score),
		}
	}

	if buyer := e.findBuyer(item, restaurants); buyer != nil {
		return models.Decision{
			Ingredient: item.Name,
			Action:     models.ActionSell,
			Target:     buyer.Name,
			Rationale:  fmt.Sprintf("sellable to %q at %.1f km", buyer.Name, buyer.DistanceKm),
		}
	}

	d := models.Decision{
		Ingredient: item.Name,
		Action:     models.ActionDonate,
		Rationale:  "no usable recipe or viable buyer; donating",
	}
	if donation != nil {
		d.Target = donation.Name
		d.Rationale = fmt.Sprintf("no usable recipe or viable buyer; donating to %q", donation.Name)
	} else {
		d.Rationale = "no candidates available; fallback donation"
	}
	return d
}

// findBuyer returns the first restaurant, in collaborator ranking order,
// that satisfies the SELL viability thresholds.
func (e *Engine) findBuyer(item models.ExpiringItem, restaurants []models.RestaurantCandidate) *models.RestaurantCandidate {
	if item.Quantity < e.cfg.MinSellQuantity {
		return nil
	}
	for i := range restaurants {
		r := &restaurants[i]
		if r.DistanceKm > e.cfg.MaxSellDistanceKm {
			continue
		}
		if r.CapacityHint != nil && *r.CapacityHint < item.Quantity {
			continue
		}
		return r
	}
	return nil
}

func coversAny(c models.RecipeCandidate, batch []models.ExpiringItem) bool {
	for _, item := range batch {
		if c.Requires(item.Name) {
			return true
		}
	}
	return false
}
