package candidates

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"foodflow/internal/usage"
)

// Chat is a thin wrapper over the chat model that records token usage in
// the ledger for every call.
type Chat struct {
	model       llms.Model
	ledger      *usage.Ledger
	temperature float64
}

// NewChat creates a metered chat client
func NewChat(model llms.Model, ledger *usage.Ledger, temperature float64) *Chat {
	return &Chat{model: model, ledger: ledger, temperature: temperature}
}

// Send submits a single prompt and returns the model's text reply. Prompt
// and completion tokens are recorded before and after the call.
func (c *Chat) Send(ctx context.Context, prompt string) (string, error) {
	if c.model == nil {
		return "", errors.New("chat model not configured")
	}
	c.ledger.Record(usage.KindPrompt, c.ledger.CountTokens(prompt))

	reply, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", err
	}

	c.ledger.Record(usage.KindCompletion, c.ledger.CountTokens(reply))
	return reply, nil
}

var jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractJSON pulls a JSON document out of a model reply. Fenced ```json
// blocks are preferred; otherwise the whole reply must parse as JSON.
func ExtractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)

	if m := jsonFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if json.Valid([]byte(text)) {
		return text, true
	}
	return "", false
}
