// Package feedback periodically reviews the expiry history and asks the
// chat model for purchasing suggestions. It runs outside the core decision
// loop and only activates once enough history has accumulated.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"foodflow/internal/candidates"
	"foodflow/internal/inventory"
	"foodflow/internal/models"
)

// Harvester reviews accumulated expiry history every everyN runs
type Harvester struct {
	store      *inventory.Store
	chat       *candidates.Chat
	resultsDir string
	everyN     int
}

// NewHarvester creates a harvester that activates once everyN runs of
// history exist, and again at every subsequent multiple.
func NewHarvester(store *inventory.Store, chat *candidates.Chat, resultsDir string, everyN int) *Harvester {
	if everyN <= 0 {
		everyN = 10
	}
	return &Harvester{store: store, chat: chat, resultsDir: resultsDir, everyN: everyN}
}

const feedbackPrompt = `You are a purchasing advisor for a restaurant. Below is the history of
ingredients that went into expiry handling over the last %d runs. Identify
ingredients that expire repeatedly and suggest concrete purchasing
adjustments (smaller orders, different cadence, substitutions).

Reply with a JSON array of suggestion strings.

History:
%s`

// MaybeRun checks the history length and, when due, writes purchasing
// suggestions to the results directory. Returns true when the harvester
// actually ran.
func (h *Harvester) MaybeRun(ctx context.Context) (bool, error) {
	history, err := h.store.History()
	if err != nil {
		return false, err
	}
	if len(history) < h.everyN || len(history)%h.everyN != 0 {
		return false, nil
	}

	var flat []models.ExpiringItem
	for _, entry := range history {
		flat = append(flat, entry.Batch...)
	}

	payload, err := json.MarshalIndent(flat, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to encode expiry history: %w", err)
	}

	reply, err := h.chat.Send(ctx, fmt.Sprintf(feedbackPrompt, len(history), payload))
	if err != nil {
		return false, fmt.Errorf("feedback call failed: %w", err)
	}

	suggestions := []string{reply}
	if raw, ok := candidates.ExtractJSON(reply); ok {
		var parsed []string
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			suggestions = parsed
		}
	}

	if err := os.MkdirAll(h.resultsDir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create results directory: %w", err)
	}
	out, err := json.MarshalIndent(suggestions, "", "  ")
	if err != nil {
		return false, err
	}
	path := filepath.Join(h.resultsDir, "feedback_suggestions.json")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return false, fmt.Errorf("failed to write feedback suggestions: %w", err)
	}
	return true, nil
}
