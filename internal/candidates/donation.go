package candidates

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"

	"foodflow/internal/models"
)

// soupKitchenShortlist is how many of the closest centers the random pick
// draws from.
const soupKitchenShortlist = 5

// SoupKitchenFinder selects one donation center per run: it keeps the
// closest centers from a CSV export and picks one of them at random, so
// donations spread across the nearby centers over time.
type SoupKitchenFinder struct {
	csvPath string
	rng     *rand.Rand
}

// NewSoupKitchenFinder creates a finder over the given CSV file. The
// finder owns its randomness source; see NewLLMRestaurantMatcher.
func NewSoupKitchenFinder(csvPath string, seed int64) *SoupKitchenFinder {
	return &SoupKitchenFinder{csvPath: csvPath, rng: rand.New(rand.NewSource(seed))}
}

// FindDonationTarget implements DonationFinder. It returns nil when no
// center is listed; downstream treats that as a valid empty result.
func (f *SoupKitchenFinder) FindDonationTarget(ctx context.Context) (*models.DonationTarget, error) {
	file, err := os.Open(f.csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open soup kitchens file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read soup kitchens file: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := indexColumns(rows[0])
	var kitchens []models.DonationTarget
	for _, row := range rows[1:] {
		name := field(row, col, "name")
		if name == "" {
			continue
		}
		dist := field(row, col, "distance_from_ha_salon_km")
		km := 999.0
		if dist != "" {
			km = parseFloat(dist)
		}
		kitchens = append(kitchens, models.DonationTarget{
			Name:       name,
			Address:    field(row, col, "address"),
			DistanceKm: math.Round(km*100) / 100,
			Hours:      field(row, col, "opening_hours"),
		})
	}
	if len(kitchens) == 0 {
		return nil, nil
	}

	sort.SliceStable(kitchens, func(i, j int) bool {
		return kitchens[i].DistanceKm < kitchens[j].DistanceKm
	})
	if len(kitchens) > soupKitchenShortlist {
		kitchens = kitchens[:soupKitchenShortlist]
	}

	chosen := kitchens[f.rng.Intn(len(kitchens))]
	return &chosen, nil
}
