package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodflow/internal/config"
	"foodflow/internal/models"
)

func testEngine() *Engine {
	return NewEngine(config.DecisionConfig{
		MinRecipeScore:    0.75,
		MaxSellDistanceKm: 10,
		MinSellQuantity:   0.5,
	})
}

func testBatch() []models.ExpiringItem {
	return []models.ExpiringItem{
		{IngredientRecord: models.IngredientRecord{Name: "Tomato", Quantity: 4.0, Unit: "kg"}, DaysToExpire: 2},
		{IngredientRecord: models.IngredientRecord{Name: "Basil", Quantity: 1.0, Unit: "bunch"}, DaysToExpire: 1},
		{IngredientRecord: models.IngredientRecord{Name: "Cream", Quantity: 2.5, Unit: "l"}, DaysToExpire: 3},
	}
}

func capacity(v float64) *float64 { return &v }

func TestDecideEveryIngredientGetsOneDecision(t *testing.T) {
	engine := testEngine()
	batch := testBatch()

	recipes := []models.RecipeCandidate{
		{DishName: "Tomato Basil Soup", RequiredIngredients: []string{"tomato", "basil"}, Score: 0.9},
	}
	restaurants := []models.RestaurantCandidate{
		{Name: "Bistro Ruth", DistanceKm: 2.0},
	}
	donation := &models.DonationTarget{Name: "Lasova", DistanceKm: 3.1}

	plan, err := engine.Decide(batch, recipes, restaurants, donation)
	require.NoError(t, err)
	require.Len(t, plan.Decisions, len(batch))

	// Decisions come back in batch order, each with a recognized action
	// and a rationale.
	for i, d := range plan.Decisions {
		assert.Equal(t, batch[i].Name, d.Ingredient)
		assert.Contains(t, []models.Action{models.ActionCook, models.ActionSell, models.ActionDonate}, d.Action)
		assert.NotEmpty(t, d.Rationale)
	}
	assert.True(t, plan.Complete())
}

func TestDecideCookOnlyForChosenDish(t *testing.T) {
	engine := testEngine()
	batch := testBatch()

	// Two usable recipes; the higher score wins and only its ingredients
	// cook.
	recipes := []models.RecipeCandidate{
		{DishName: "Panna Cotta", RequiredIngredients: []string{"cream"}, Score: 0.8},
		{DishName: "Tomato Basil Soup", RequiredIngredients: []string{"tomato", "basil"}, Score: 0.92},
	}

	plan, err := engine.Decide(batch, recipes, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Tomato Basil Soup", plan.ChosenDish)

	grouped := plan.ByAction()
	assert.ElementsMatch(t, []string{"Tomato", "Basil"}, grouped[models.ActionCook])
	assert.NotContains(t, grouped[models.ActionCook], "Cream")

	for _, d := range plan.Decisions {
		if d.Action == models.ActionCook {
			assert.Equal(t, plan.ChosenDish, d.Target)
		}
	}
}

func TestDecideRecipeBelowThresholdNeverCooks(t *testing.T) {
	engine := testEngine()

	recipes := []models.RecipeCandidate{
		{DishName: "Tomato Basil Soup", RequiredIngredients: []string{"tomato", "basil"}, Score: 0.6},
	}

	plan, err := engine.Decide(testBatch(), recipes, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.ChosenDish)
	assert.Empty(t, plan.ByAction()[models.ActionCook])
}

func TestDecideSellViability(t *testing.T) {
	engine := testEngine()
	batch := []models.ExpiringItem{
		{IngredientRecord: models.IngredientRecord{Name: "Salmon", Quantity: 3.0, Unit: "kg"}, DaysToExpire: 1},
	}
	donation := &models.DonationTarget{Name: "Lasova"}

	tests := []struct {
		name        string
		restaurants []models.RestaurantCandidate
		wantAction  models.Action
		wantTarget  string
	}{
		{
			name:        "first viable buyer in ranking order wins",
			restaurants: []models.RestaurantCandidate{{Name: "Ouzeria", DistanceKm: 1.5}, {Name: "Taizu", DistanceKm: 0.5}},
			wantAction:  models.ActionSell,
			wantTarget:  "Ouzeria",
		},
		{
			name:        "too far away",
			restaurants: []models.RestaurantCandidate{{Name: "Ouzeria", DistanceKm: 25}},
			wantAction:  models.ActionDonate,
			wantTarget:  "Lasova",
		},
		{
			name:        "capacity hint too small",
			restaurants: []models.RestaurantCandidate{{Name: "Ouzeria", DistanceKm: 1.5, CapacityHint: capacity(1.0)}},
			wantAction:  models.ActionDonate,
			wantTarget:  "Lasova",
		},
		{
			name:        "capacity hint large enough",
			restaurants: []models.RestaurantCandidate{{Name: "Ouzeria", DistanceKm: 1.5, CapacityHint: capacity(5.0)}},
			wantAction:  models.ActionSell,
			wantTarget:  "Ouzeria",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := engine.Decide(batch, nil, tt.restaurants, donation)
			require.NoError(t, err)
			require.Len(t, plan.Decisions, 1)
			assert.Equal(t, tt.wantAction, plan.Decisions[0].Action)
			assert.Equal(t, tt.wantTarget, plan.Decisions[0].Target)
		})
	}
}

func TestDecideQuantityTooSmallToSell(t *testing.T) {
	engine := testEngine()
	batch := []models.ExpiringItem{
		{IngredientRecord: models.IngredientRecord{Name: "Chives", Quantity: 0.2, Unit: "kg"}, DaysToExpire: 1},
	}
	restaurants := []models.RestaurantCandidate{{Name: "Ouzeria", DistanceKm: 1.0}}

	plan, err := engine.Decide(batch, nil, restaurants, nil)
	require.NoError(t, err)
	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, models.ActionDonate, plan.Decisions[0].Action)
}

func TestDecideNoCandidatesFallsBackToDonate(t *testing.T) {
	engine := testEngine()

	plan, err := engine.Decide(testBatch(), nil, nil, nil)
	require.NoError(t, err)

	for _, d := range plan.Decisions {
		assert.Equal(t, models.ActionDonate, d.Action)
		assert.Empty(t, d.Target)
		assert.Equal(t, "no candidates available; fallback donation", d.Rationale)
	}
	assert.True(t, plan.Complete())
}

func TestDecideEmptyBatch(t *testing.T) {
	plan, err := testEngine().Decide(nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Decisions)
}

func TestDecideRejectsInvalidBatch(t *testing.T) {
	engine := testEngine()

	_, err := engine.Decide([]models.ExpiringItem{
		{IngredientRecord: models.IngredientRecord{Name: "", Quantity: 1}},
	}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidBatch)

	_, err = engine.Decide([]models.ExpiringItem{
		{IngredientRecord: models.IngredientRecord{Name: "Tomato", Quantity: -1}},
	}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidBatch)
}
