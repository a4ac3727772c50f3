// Package candidates collects recipe, restaurant, and donation candidates
// for an expiring batch from three independent collaborators.
package candidates

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"foodflow/internal/models"
)

// ErrCollaboratorUnavailable wraps a collaborator failure. The aggregator
// recovers it locally as an empty candidate set; it is never surfaced as a
// whole-run failure.
var ErrCollaboratorUnavailable = errors.New("candidate collaborator unavailable")

// RecipeFinder retrieves ranked recipe candidates for the batch
type RecipeFinder interface {
	FindRecipes(ctx context.Context, batch []models.ExpiringItem, current []models.IngredientRecord) ([]models.RecipeCandidate, error)
}

// RestaurantMatcher retrieves ranked potential buyers for the batch
type RestaurantMatcher interface {
	FindRestaurants(ctx context.Context, batch []models.ExpiringItem) ([]models.RestaurantCandidate, error)
}

// DonationFinder retrieves the single best donation center, or nil
type DonationFinder interface {
	FindDonationTarget(ctx context.Context) (*models.DonationTarget, error)
}

// Set is the joined result of one fan-out. Each collaborator's own
// ranking is preserved; empty members are valid inputs downstream.
type Set struct {
	Recipes     []models.RecipeCandidate
	Restaurants []models.RestaurantCandidate
	Donation    *models.DonationTarget
}

// Aggregator fans out to the three collaborators concurrently and joins
// their results. It never re-ranks and never fails the run: a collaborator
// error or timeout becomes an empty result for that category, which forces
// the DONATE fallback downstream.
type Aggregator struct {
	recipes     RecipeFinder
	restaurants RestaurantMatcher
	donations   DonationFinder
	timeout     time.Duration
}

// NewAggregator creates an aggregator. timeout bounds each collaborator
// call independently.
func NewAggregator(recipes RecipeFinder, restaurants RestaurantMatcher, donations DonationFinder, timeout time.Duration) *Aggregator {
	return &Aggregator{
		recipes:     recipes,
		restaurants: restaurants,
		donations:   donations,
		timeout:     timeout,
	}
}

// Gather collects all three candidate sets for the batch. It returns once
// every collaborator has completed or failed; this is the pipeline's join
// point before the decision engine runs.
func (a *Aggregator) Gather(ctx context.Context, batch []models.ExpiringItem, current []models.IngredientRecord) Set {
	var set Set
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		if a.recipes == nil {
			return
		}
		callCtx, cancel := a.callContext(ctx)
		defer cancel()
		recipes, err := a.recipes.FindRecipes(callCtx, batch, current)
		if err != nil {
			log.Printf("candidates: %v, proceeding without recipes: %v", ErrCollaboratorUnavailable, err)
			return
		}
		set.Recipes = recipes
	}()

	go func() {
		defer wg.Done()
		if a.restaurants == nil {
			return
		}
		callCtx, cancel := a.callContext(ctx)
		defer cancel()
		restaurants, err := a.restaurants.FindRestaurants(callCtx, batch)
		if err != nil {
			log.Printf("candidates: %v, proceeding without buyers: %v", ErrCollaboratorUnavailable, err)
			return
		}
		set.Restaurants = restaurants
	}()

	go func() {
		defer wg.Done()
		if a.donations == nil {
			return
		}
		callCtx, cancel := a.callContext(ctx)
		defer cancel()
		donation, err := a.donations.FindDonationTarget(callCtx)
		if err != nil {
			log.Printf("candidates: %v, proceeding without a center: %v", ErrCollaboratorUnavailable, err)
			return
		}
		set.Donation = donation
	}()

	wg.Wait()
	return set
}

func (a *Aggregator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
