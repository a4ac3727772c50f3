// Package usage provides process-wide accounting of metered AI-service
// calls and an approximate end-of-run cost estimate.
package usage

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"foodflow/internal/config"
)

// Kind identifies a metered token category
type Kind string

const (
	// Token categories tracked by the ledger
	KindPrompt     Kind = "prompt"
	KindCompletion Kind = "completion"
	KindEmbedding  Kind = "embedding"
)

// Report is the end-of-run usage summary. EstimatedCost is a rough
// estimate, not a billing-accurate figure.
type Report struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	EmbeddingTokens  int     `json:"embedding_tokens"`
	EstimatedCost    float64 `json:"estimated_cost"`
}

// Ledger is the single writer of token counters. It is safe to update from
// the concurrent collaborator fan-out; counters only reset at process start.
type Ledger struct {
	mu      sync.Mutex
	rates   config.CostConfig
	counts  map[Kind]int
	encoder *tiktoken.Tiktoken
}

// NewLedger creates a ledger with the given cost rates. The tokenizer for
// the configured model is resolved lazily on first use.
func NewLedger(rates config.CostConfig) *Ledger {
	return &Ledger{
		rates:  rates,
		counts: map[Kind]int{},
	}
}

// Record increments the counter for the given kind. Negative counts are
// ignored so the counters stay monotonic.
func (l *Ledger) Record(kind Kind, count int) {
	if count <= 0 {
		return
	}
	l.mu.Lock()
	l.counts[kind] += count
	l.mu.Unlock()
}

// CountTokens returns the token count of text under the configured
// tokenizer model. When the tokenizer cannot be resolved (for example with
// no network access to fetch its vocabulary) a conservative
// bytes-per-token approximation is used instead.
func (l *Ledger) CountTokens(text string) int {
	l.mu.Lock()
	enc := l.encoder
	if enc == nil {
		var err error
		enc, err = tiktoken.EncodingForModel(l.rates.TokenizerModel)
		if err == nil {
			l.encoder = enc
		}
	}
	l.mu.Unlock()

	if enc == nil {
		// ~4 bytes per token is the usual rule of thumb for English text.
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// Report returns the current totals and the estimated cost. Chat volume is
// split half input-priced, half output-priced, matching the documented
// approximation; embeddings are priced per million tokens.
func (l *Ledger) Report() Report {
	l.mu.Lock()
	defer l.mu.Unlock()

	prompt := l.counts[KindPrompt]
	completion := l.counts[KindCompletion]
	embedding := l.counts[KindEmbedding]

	chat := float64(prompt + completion)
	cost := (chat / 2 / 1000) * l.rates.InputPer1K
	cost += (chat / 2 / 1000) * l.rates.OutputPer1K
	cost += (float64(embedding) / 1_000_000) * l.rates.EmbeddingPer1M

	return Report{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		EmbeddingTokens:  embedding,
		EstimatedCost:    cost,
	}
}
