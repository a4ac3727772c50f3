// Package pipeline wires the daily decision loop: sample expiring stock,
// gather candidates, decide, dispatch. One Run is one simulated day.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"foodflow/internal/candidates"
	"foodflow/internal/decision"
	"foodflow/internal/dispatch"
	"foodflow/internal/feedback"
	"foodflow/internal/inventory"
	"foodflow/internal/models"
	"foodflow/internal/monitoring"
	"foodflow/internal/sampler"
	"foodflow/internal/usage"
)

// Step identifies a pipeline phase a Confirmer may gate
type Step string

const (
	// Pipeline phases, in execution order
	StepSample   Step = "sample"
	StepGather   Step = "gather"
	StepDecide   Step = "decide"
	StepDispatch Step = "dispatch"
	StepFeedback Step = "feedback"
)

// Confirmer gates progression between pipeline phases. Interactive
// frontends pause here; the core never blocks on its own.
type Confirmer interface {
	ConfirmBefore(step Step)
}

// NopConfirmer never pauses
type NopConfirmer struct{}

// ConfirmBefore implements Confirmer
func (NopConfirmer) ConfirmBefore(Step) {}

// Result is the outcome of one run
type Result struct {
	ID          string                `json:"id"`
	StartedAt   time.Time             `json:"started_at"`
	Batch       []models.ExpiringItem `json:"batch"`
	Plan        models.ActionPlan     `json:"plan"`
	Usage       usage.Report          `json:"usage"`
	FeedbackRan bool                  `json:"feedback_ran"`
}

// Pipeline owns one configured decision loop
type Pipeline struct {
	store      *inventory.Store
	sampler    *sampler.Sampler
	aggregator *candidates.Aggregator
	engine     *decision.Engine
	dispatcher *dispatch.Dispatcher
	harvester  *feedback.Harvester
	ledger     *usage.Ledger
	metrics    *monitoring.Collector
	confirmer  Confirmer
}

// New assembles a pipeline. dispatcher, harvester, metrics and confirmer
// may be nil; the corresponding phase is skipped or unguarded.
func New(
	store *inventory.Store,
	smp *sampler.Sampler,
	aggregator *candidates.Aggregator,
	engine *decision.Engine,
	dispatcher *dispatch.Dispatcher,
	harvester *feedback.Harvester,
	ledger *usage.Ledger,
	metrics *monitoring.Collector,
	confirmer Confirmer,
) *Pipeline {
	if confirmer == nil {
		confirmer = NopConfirmer{}
	}
	return &Pipeline{
		store:      store,
		sampler:    smp,
		aggregator: aggregator,
		engine:     engine,
		dispatcher: dispatcher,
		harvester:  harvester,
		ledger:     ledger,
		metrics:    metrics,
		confirmer:  confirmer,
	}
}

// Run executes one full decision loop. Store and sampler errors abort
// before any inventory artifact is written; collaborator failures degrade
// to DONATE decisions instead of failing the run.
func (p *Pipeline) Run(ctx context.Context, rng *rand.Rand) (*Result, error) {
	started := time.Now()
	result := &Result{
		ID:        uuid.NewString(),
		StartedAt: started.UTC(),
	}

	var usageBefore usage.Report
	if p.ledger != nil {
		usageBefore = p.ledger.Report()
	}

	p.confirmer.ConfirmBefore(StepSample)

	full, err := p.store.LoadFullInventory()
	if err != nil {
		p.recordRun("failed", started, 0)
		return nil, err
	}

	current, batch, err := p.sampler.Sample(full, rng)
	if err != nil {
		p.recordRun("failed", started, 0)
		return nil, fmt.Errorf("sampling failed: %w", err)
	}
	result.Batch = batch

	// Sampling succeeded; commit the per-run artifacts.
	if err := p.store.WriteExpiringBatch(batch); err != nil {
		p.recordRun("failed", started, len(batch))
		return nil, err
	}
	if err := p.store.WriteCurrentInventory(current); err != nil {
		p.recordRun("failed", started, len(batch))
		return nil, err
	}
	if err := p.store.AppendHistory(batch); err != nil {
		p.recordRun("failed", started, len(batch))
		return nil, err
	}

	p.confirmer.ConfirmBefore(StepGather)
	set := p.aggregator.Gather(ctx, batch, current)

	p.confirmer.ConfirmBefore(StepDecide)
	plan, err := p.engine.Decide(batch, set.Recipes, set.Restaurants, set.Donation)
	if err != nil {
		p.recordRun("failed", started, len(batch))
		return nil, err
	}
	result.Plan = plan

	if p.metrics != nil {
		for _, d := range plan.Decisions {
			p.metrics.RecordDecision(string(d.Action))
		}
	}

	if p.dispatcher != nil {
		p.confirmer.ConfirmBefore(StepDispatch)
		if err := p.dispatcher.Dispatch(ctx, plan, batch, set.Recipes); err != nil {
			p.recordRun("failed", started, len(batch))
			return nil, fmt.Errorf("dispatch failed: %w", err)
		}
	}

	if p.harvester != nil {
		p.confirmer.ConfirmBefore(StepFeedback)
		ran, err := p.harvester.MaybeRun(ctx)
		if err != nil {
			// Feedback is advisory; a failure never fails the day.
			log.Printf("pipeline: feedback harvester failed: %v", err)
		}
		result.FeedbackRan = ran
	}

	if p.ledger != nil {
		result.Usage = p.ledger.Report()
		if p.metrics != nil {
			p.metrics.RecordTokens(string(usage.KindPrompt), result.Usage.PromptTokens-usageBefore.PromptTokens)
			p.metrics.RecordTokens(string(usage.KindCompletion), result.Usage.CompletionTokens-usageBefore.CompletionTokens)
			p.metrics.RecordTokens(string(usage.KindEmbedding), result.Usage.EmbeddingTokens-usageBefore.EmbeddingTokens)
		}
	}
	p.recordRun("ok", started, len(batch))
	return result, nil
}

func (p *Pipeline) recordRun(outcome string, started time.Time, batchSize int) {
	if p.metrics != nil {
		p.metrics.RecordRun(outcome, time.Since(started), batchSize)
	}
}
