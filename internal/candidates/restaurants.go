package candidates

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"foodflow/internal/models"
)

// How many CSV rows are sampled and how many of the closest are offered
// to the model. Both bound the token load of one ranking call.
const (
	restaurantSampleSize = 50
	restaurantShortlist  = 20
)

// LLMRestaurantMatcher ranks nearby restaurants as buyers for the
// expiring batch. Nearby restaurants come from a CSV export; the chat
// model does the actual matching.
type LLMRestaurantMatcher struct {
	chat    *Chat
	csvPath string
	rng     *rand.Rand
}

// NewLLMRestaurantMatcher creates a matcher over the given CSV file. The
// matcher owns its randomness source: collaborators run inside one
// concurrent fan-out and must never share an unsynchronized rand.
func NewLLMRestaurantMatcher(chat *Chat, csvPath string, seed int64) *LLMRestaurantMatcher {
	return &LLMRestaurantMatcher{chat: chat, csvPath: csvPath, rng: rand.New(rand.NewSource(seed))}
}

const restaurantPrompt = `You are a restaurant surplus broker. Given expiring ingredients
and nearby restaurants, pick the restaurants most likely to buy the surplus.

Reply with a JSON array, best match first. Each element:
{"name": string, "distance_km": number, "capacity_hint": number (optional, in the ingredient's unit), "reason": string}

Reply with JSON only.

Expiring ingredients:
%s

Nearby restaurants:
%s`

// FindRestaurants implements RestaurantMatcher
func (m *LLMRestaurantMatcher) FindRestaurants(ctx context.Context, batch []models.ExpiringItem) ([]models.RestaurantCandidate, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	nearby, err := m.loadNearby()
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return nil, nil
	}

	ingredients, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode expiring batch: %w", err)
	}

	var lines []string
	for _, r := range m.shortlist(nearby) {
		lines = append(lines, fmt.Sprintf("- %s: %s (distance: %.1f km)", r.Name, r.Cuisine, r.DistanceKm))
	}

	reply, err := m.chat.Send(ctx, fmt.Sprintf(restaurantPrompt, ingredients, strings.Join(lines, "\n")))
	if err != nil {
		return nil, fmt.Errorf("restaurant ranking call failed: %w", err)
	}

	raw, ok := ExtractJSON(reply)
	if !ok {
		return nil, fmt.Errorf("restaurant ranking reply contained no JSON")
	}

	var candidates []models.RestaurantCandidate
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, fmt.Errorf("failed to parse restaurant ranking: %w", err)
	}
	return candidates, nil
}

// shortlist samples up to 50 restaurants and keeps the 20 closest,
// preserving the distance order for the prompt.
func (m *LLMRestaurantMatcher) shortlist(nearby []models.RestaurantCandidate) []models.RestaurantCandidate {
	sampled := make([]models.RestaurantCandidate, len(nearby))
	copy(sampled, nearby)
	m.rng.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})
	if len(sampled) > restaurantSampleSize {
		sampled = sampled[:restaurantSampleSize]
	}

	sort.SliceStable(sampled, func(i, j int) bool {
		return sampled[i].DistanceKm < sampled[j].DistanceKm
	})
	if len(sampled) > restaurantShortlist {
		sampled = sampled[:restaurantShortlist]
	}
	return sampled
}

func (m *LLMRestaurantMatcher) loadNearby() ([]models.RestaurantCandidate, error) {
	f, err := os.Open(m.csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open restaurants file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read restaurants file: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := indexColumns(rows[0])
	var nearby []models.RestaurantCandidate
	for _, row := range rows[1:] {
		name := field(row, col, "name")
		if name == "" {
			continue
		}
		nearby = append(nearby, models.RestaurantCandidate{
			Name:       name,
			Cuisine:    field(row, col, "types"),
			DistanceKm: parseFloat(field(row, col, "distance_from_ha_salon_km")),
		})
	}
	return nearby, nil
}

func indexColumns(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return col
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
