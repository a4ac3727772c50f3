// Package sampler simulates which inventory items are about to expire for
// one daily run. It is the only component with stochastic behavior, and it
// takes its randomness source explicitly so runs can be reproduced.
package sampler

import (
	"fmt"
	"math"
	"math/rand"

	"foodflow/internal/config"
	"foodflow/internal/models"
)

// Sampler draws the expiring batch from the full inventory
type Sampler struct {
	cfg       config.SamplerConfig
	blacklist map[string]bool
}

// New creates a sampler with the given configuration. Blacklisted names
// are case-normalized once up front.
func New(cfg config.SamplerConfig) *Sampler {
	blacklist := make(map[string]bool, len(cfg.Blacklist))
	for _, name := range cfg.Blacklist {
		blacklist[models.NormalizeName(name)] = true
	}
	return &Sampler{cfg: cfg, blacklist: blacklist}
}

// Eligible reports whether an ingredient may be marked as expiring.
// Staples like salt and water are excluded: forcing a disposal decision on
// them is meaningless at restaurant scale.
func (s *Sampler) Eligible(r models.IngredientRecord) bool {
	return r.Name != "" && !s.blacklist[r.Key()]
}

// Sample splits the full inventory into a current-inventory view and an
// expiring batch for one run.
//
// For every sampled ingredient the expiring quantity plus the remaining
// current quantity equals the original quantity exactly; non-sampled items
// pass through unchanged. An empty or fully blacklisted inventory yields
// an empty batch, not an error.
func (s *Sampler) Sample(full []models.IngredientRecord, rng *rand.Rand) ([]models.IngredientRecord, []models.ExpiringItem, error) {
	for i, r := range full {
		if r.Name == "" {
			return nil, nil, fmt.Errorf("inventory record %d has no name", i)
		}
		if r.Quantity < 0 {
			return nil, nil, fmt.Errorf("inventory record %q has negative quantity", r.Name)
		}
	}

	var eligible []int
	for i, r := range full {
		if s.Eligible(r) {
			eligible = append(eligible, i)
		}
	}

	n := s.cfg.BatchSize
	if len(eligible) < n {
		n = len(eligible)
	}

	// Sample without replacement via a partial permutation of the
	// eligible index set.
	sampled := make(map[int]bool, n)
	for _, p := range rng.Perm(len(eligible))[:n] {
		sampled[eligible[p]] = true
	}

	current := make([]models.IngredientRecord, 0, len(full))
	var batch []models.ExpiringItem
	for i, r := range full {
		if !sampled[i] {
			current = append(current, r)
			continue
		}

		expiring := roundQuantity(r.Quantity * s.expireFraction(rng))
		if expiring <= 0 && r.Quantity > 0 {
			expiring = roundQuantity(r.Quantity * s.cfg.FractionMin)
		}
		// Rounding a tiny quantity can swallow the whole stock; keep a
		// fresh remainder.
		if expiring >= r.Quantity {
			expiring = roundQuantity(r.Quantity - quantityStep)
			if expiring < 0 {
				expiring = 0
			}
		}

		batch = append(batch, models.ExpiringItem{
			IngredientRecord: models.IngredientRecord{
				Name:     r.Name,
				Quantity: expiring,
				Unit:     r.Unit,
			},
			DaysToExpire: s.cfg.MinDays + rng.Intn(s.cfg.MaxDays-s.cfg.MinDays+1),
		})

		remaining := r.Quantity - expiring
		current = append(current, models.IngredientRecord{
			Name:     r.Name,
			Quantity: remaining,
			Unit:     r.Unit,
		})
	}

	return current, batch, nil
}

// expireFraction draws the share of stock about to expire, strictly
// inside (0, 1) so some stock always remains fresh.
func (s *Sampler) expireFraction(rng *rand.Rand) float64 {
	return s.cfg.FractionMin + rng.Float64()*(s.cfg.FractionMax-s.cfg.FractionMin)
}

// quantityStep is the smallest representable quantity in the inventory
// file format, which carries two decimal places.
const quantityStep = 0.01

// roundQuantity keeps quantities at two decimal places, matching the
// inventory file format.
func roundQuantity(q float64) float64 {
	return math.Round(q*100) / 100
}
