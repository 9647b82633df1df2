// Package telemetry records Prometheus metrics for realization and tooling
// queries.
//
// Metrics:
//   - marq_recipes_applied_total: Show rule applications by pattern and outcome
//   - marq_guard_skips_total: Recipes skipped because their selector was guarded
//   - marq_probe_runs_total: Value probes by resolution path
//   - marq_probe_values: Number of values a probe returned
//   - marq_imports_total: Module resolutions by result
//   - marq_eval_duration_seconds: Duration of top-level evaluations
//
// A nil *Metrics records nothing, so callers never need to check.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marq"

// Probe resolution paths.
const (
	ProbeLiteral   = "literal"
	ProbeField     = "field"
	ProbeDelegated = "delegated"
	ProbeEval      = "eval"
)

// Import results.
const (
	ImportResolved = "resolved"
	ImportMissing  = "missing"
	ImportFailed   = "failed"
)

// Metrics holds the registered collectors.
type Metrics struct {
	registry *prometheus.Registry

	recipesApplied *prometheus.CounterVec
	guardSkips     *prometheus.CounterVec
	probeRuns      *prometheus.CounterVec
	probeValues    prometheus.Histogram
	imports        *prometheus.CounterVec
	evalDuration   prometheus.Histogram
}

// New creates metrics registered with registry. A nil registry gets a fresh
// one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		recipesApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recipes_applied_total",
				Help:      "Total number of show rule applications",
			},
			[]string{"pattern", "outcome"},
		),
		guardSkips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_skips_total",
				Help:      "Total number of recipes skipped because their selector was guarded",
			},
			[]string{"pattern"},
		),
		probeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probe_runs_total",
				Help:      "Total number of value probes by resolution path",
			},
			[]string{"path"},
		),
		probeValues: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "probe_values",
				Help:      "Number of values returned by a probe",
				Buckets:   []float64{0, 1, 2, 4, 8, 16, 64},
			},
		),
		imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imports_total",
				Help:      "Total number of module resolutions by result",
			},
			[]string{"result"},
		),
		evalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "eval_duration_seconds",
				Help:      "Duration of top-level evaluations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to 1.6s
			},
		),
	}
	registry.MustRegister(
		m.recipesApplied,
		m.guardSkips,
		m.probeRuns,
		m.probeValues,
		m.imports,
		m.evalDuration,
	)
	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecipeApplied counts a show rule application.
func (m *Metrics) RecipeApplied(pattern, outcome string) {
	if m == nil {
		return
	}
	m.recipesApplied.WithLabelValues(pattern, outcome).Inc()
}

// GuardSkipped counts a recipe skipped by its guard.
func (m *Metrics) GuardSkipped(pattern string) {
	if m == nil {
		return
	}
	m.guardSkips.WithLabelValues(pattern).Inc()
}

// ProbeRun counts a probe and the number of values it produced.
func (m *Metrics) ProbeRun(path string, values int) {
	if m == nil {
		return
	}
	m.probeRuns.WithLabelValues(path).Inc()
	m.probeValues.Observe(float64(values))
}

// ImportResolved counts a module resolution.
func (m *Metrics) ImportResolved(result string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(result).Inc()
}

// ObserveEval records the duration of an evaluation.
func (m *Metrics) ObserveEval(d time.Duration) {
	if m == nil {
		return
	}
	m.evalDuration.Observe(d.Seconds())
}

// WriteFile writes all metrics to path in the Prometheus text format.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
