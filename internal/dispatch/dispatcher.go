// Package dispatch turns a completed action plan into outbound artifacts:
// a kitchen recipe card for the chosen dish and drafted messages for the
// sell and donate groups. Transports beyond the filesystem are a
// collaborator's concern.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"foodflow/internal/candidates"
	"foodflow/internal/models"
)

// ErrIncompletePlan is returned when a plan fails validation. A partially
// formed plan is never dispatched.
var ErrIncompletePlan = errors.New("action plan is incomplete")

// Dispatcher writes dispatch artifacts under messagesDir. The chat client
// drafts the outbound sell and donate messages.
type Dispatcher struct {
	chat        *candidates.Chat
	messagesDir string
	restaurant  string
	city        string
}

// NewDispatcher creates a dispatcher writing under messagesDir
func NewDispatcher(chat *candidates.Chat, messagesDir, restaurant, city string) *Dispatcher {
	return &Dispatcher{chat: chat, messagesDir: messagesDir, restaurant: restaurant, city: city}
}

const messagePrompt = `Draft a short, friendly WhatsApp-style message from the restaurant
%q in %s to %q. We want to %s the following surplus ingredients today:

%s

Keep it under 80 words, no placeholders, plain text only.`

// Dispatch validates the plan and writes all artifacts for it. The plan
// must be complete: every decision named and carrying a recognized action.
func (d *Dispatcher) Dispatch(ctx context.Context, plan models.ActionPlan, batch []models.ExpiringItem, recipes []models.RecipeCandidate) error {
	if !plan.Complete() {
		return ErrIncompletePlan
	}
	if len(plan.Decisions) == 0 {
		return nil
	}

	if err := os.MkdirAll(d.messagesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create messages directory: %w", err)
	}

	if plan.ChosenDish != "" {
		if err := d.sendToKitchen(plan, recipes); err != nil {
			return err
		}
	}

	grouped := groupByTarget(plan)
	for _, g := range grouped {
		if err := d.sendOffer(ctx, g, batch); err != nil {
			return err
		}
	}
	return nil
}

// sendToKitchen writes the chosen dish's recipe card
func (d *Dispatcher) sendToKitchen(plan models.ActionPlan, recipes []models.RecipeCandidate) error {
	var recipe *models.RecipeCandidate
	for i := range recipes {
		if strings.EqualFold(recipes[i].DishName, plan.ChosenDish) {
			recipe = &recipes[i]
			break
		}
	}

	var b strings.Builder
	b.WriteString("===== KITCHEN DISPATCH =====\n")
	fmt.Fprintf(&b, "Recipe: %s\n", plan.ChosenDish)
	b.WriteString("----------------------------\n")
	b.WriteString("Use these expiring ingredients:\n")
	for _, dec := range plan.Decisions {
		if dec.Action == models.ActionCook {
			fmt.Fprintf(&b, "- %s\n", dec.Ingredient)
		}
	}
	if recipe != nil && recipe.Instructions != "" {
		b.WriteString("----------------------------\n")
		b.WriteString(recipe.Instructions)
		b.WriteString("\n")
	}

	path := filepath.Join(d.messagesDir, "kitchen_dispatch.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write kitchen dispatch: %w", err)
	}
	return nil
}

type offerGroup struct {
	action      models.Action
	target      string
	ingredients []string
}

// groupByTarget collects SELL and DONATE decisions per target, in plan
// order
func groupByTarget(plan models.ActionPlan) []offerGroup {
	var groups []offerGroup
	index := map[string]int{}
	for _, dec := range plan.Decisions {
		if dec.Action != models.ActionSell && dec.Action != models.ActionDonate {
			continue
		}
		target := dec.Target
		if target == "" {
			target = "Nearby partner"
		}
		key := string(dec.Action) + "/" + target
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, offerGroup{action: dec.Action, target: target})
		}
		groups[i].ingredients = append(groups[i].ingredients, dec.Ingredient)
	}
	return groups
}

func (d *Dispatcher) sendOffer(ctx context.Context, g offerGroup, batch []models.ExpiringItem) error {
	verb := "sell"
	if g.action == models.ActionDonate {
		verb = "donate"
	}

	var lines []string
	for _, name := range g.ingredients {
		lines = append(lines, itemLine(name, batch))
	}

	prompt := fmt.Sprintf(messagePrompt, d.restaurant, d.city, g.target, verb, strings.Join(lines, "\n"))
	text, err := d.chat.Send(ctx, prompt)
	if err != nil {
		// Message drafting is best-effort: fall back to the raw listing
		// rather than leaving the target without an offer.
		text = fmt.Sprintf("Hello %s, %s in %s would like to %s today:\n%s",
			g.target, d.restaurant, d.city, verb, strings.Join(lines, "\n"))
	}

	name := fmt.Sprintf("%s_%s.txt", strings.ToLower(string(g.action)), slug(g.target))
	if err := os.WriteFile(filepath.Join(d.messagesDir, name), []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s message: %w", verb, err)
	}
	return nil
}

// itemLine formats one surplus ingredient with its quantity and expiry
func itemLine(name string, batch []models.ExpiringItem) string {
	for _, item := range batch {
		if models.NormalizeName(item.Name) == models.NormalizeName(name) {
			return fmt.Sprintf("- %s: %.2f %s, expires in %d days", item.Name, item.Quantity, item.Unit, item.DaysToExpire)
		}
	}
	return "- " + name
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "partner"
	}
	return b.String()
}
