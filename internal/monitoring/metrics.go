// Package monitoring exposes Prometheus metrics for the daily decision
// pipeline.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and updates the pipeline metrics
type Collector struct {
	registry *prometheus.Registry

	runsTotal   *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	tokensTotal *prometheus.CounterVec
	runDuration prometheus.Histogram
	batchSize   prometheus.Histogram
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodflow_runs_total",
				Help: "Completed decision runs by outcome",
			},
			[]string{"outcome"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodflow_decisions_total",
				Help: "Per-ingredient decisions by action",
			},
			[]string{"action"},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodflow_tokens_total",
				Help: "Metered AI tokens by kind",
			},
			[]string{"kind"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "foodflow_run_duration_seconds",
				Help:    "Wall time of one decision run",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		batchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "foodflow_expiring_batch_size",
				Help:    "Number of ingredients in the expiring batch",
				Buckets: prometheus.LinearBuckets(0, 1, 11),
			},
		),
	}

	c.registry.MustRegister(c.runsTotal, c.decisions, c.tokensTotal, c.runDuration, c.batchSize)
	return c
}

// Registry returns the collector's registry for the metrics endpoint
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRun records one completed run
func (c *Collector) RecordRun(outcome string, duration time.Duration, batchSize int) {
	c.runsTotal.WithLabelValues(outcome).Inc()
	c.runDuration.Observe(duration.Seconds())
	c.batchSize.Observe(float64(batchSize))
}

// RecordDecision records one per-ingredient verdict
func (c *Collector) RecordDecision(action string) {
	c.decisions.WithLabelValues(action).Inc()
}

// RecordTokens records metered token usage
func (c *Collector) RecordTokens(kind string, count int) {
	if count <= 0 {
		return
	}
	c.tokensTotal.WithLabelValues(kind).Add(float64(count))
}
