package graph

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics collects walk metrics for Prometheus.
//
// Metrics exposed (all namespaced with "graphwalker_"):
//
//  1. steps_total (counter): Completed steps. Labels: kind (vertex, edge).
//  2. step_failures_total (counter): Recoverable step failures.
//     Labels: reason (no_path, ambiguous).
//  3. step_latency_ms (histogram): Time to resolve one step.
//     Labels: status (ok, failed, fatal).
//  4. walks_total (counter): Finished walks. Labels: outcome.
//  5. walk_length (histogram): Observations per finished walk.
//  6. edge_coverage / vertex_coverage (gauge): Coverage ratio of the last
//     finished walk, in [0, 1]. Labels: run_id.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewPrometheusMetrics(registry)
//	m, _ := graph.NewMachine(ec, graph.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// Safe for concurrent use by several machines.
type PrometheusMetrics struct {
	steps        *prometheus.CounterVec
	failures     *prometheus.CounterVec
	stepLatency  *prometheus.HistogramVec
	walks        *prometheus.CounterVec
	walkLength   prometheus.Histogram
	edgeCoverage *prometheus.GaugeVec
	vertCoverage *prometheus.GaugeVec

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics creates and registers all walk metrics with registry.
// A nil registry uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	pm := &PrometheusMetrics{enabled: true}

	pm.steps = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphwalker",
		Name:      "steps_total",
		Help:      "Completed walk steps by element kind",
	}, []string{"kind"})

	pm.failures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphwalker",
		Name:      "step_failures_total",
		Help:      "Recoverable step failures by reason",
	}, []string{"reason"}) // reason: no_path, ambiguous

	pm.stepLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "graphwalker",
		Name:      "step_latency_ms",
		Help:      "Time to resolve one walk step in milliseconds",
		Buckets:   []float64{0.01, 0.1, 1, 5, 10, 50, 100, 500, 1000},
	}, []string{"status"})

	pm.walks = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphwalker",
		Name:      "walks_total",
		Help:      "Finished walks by outcome",
	}, []string{"outcome"})

	pm.walkLength = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "graphwalker",
		Name:      "walk_length",
		Help:      "Number of observed elements per finished walk",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	pm.edgeCoverage = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "graphwalker",
		Name:      "edge_coverage",
		Help:      "Fraction of model edges visited by the walk",
	}, []string{"run_id"})

	pm.vertCoverage = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "graphwalker",
		Name:      "vertex_coverage",
		Help:      "Fraction of model vertices visited by the walk",
	}, []string{"run_id"})

	return pm
}

func (pm *PrometheusMetrics) on() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}

// RecordStep counts one completed step landing on an element of kind.
func (pm *PrometheusMetrics) RecordStep(kind ElementKind) {
	if !pm.on() {
		return
	}
	pm.steps.WithLabelValues(kind.String()).Inc()
}

// RecordStepLatency observes the duration of one step attempt.
// status is "ok", "failed" or "fatal".
func (pm *PrometheusMetrics) RecordStepLatency(latency time.Duration, status string) {
	if !pm.on() {
		return
	}
	pm.stepLatency.WithLabelValues(status).Observe(millis(latency))
}

// IncrementFailures counts one recoverable failure.
func (pm *PrometheusMetrics) IncrementFailures(reason string) {
	if !pm.on() {
		return
	}
	pm.failures.WithLabelValues(reason).Inc()
}

// RecordWalk records the summary of a finished walk.
func (pm *PrometheusMetrics) RecordWalk(runID string, outcome Outcome, length int, edgeCov, vertexCov float64) {
	if !pm.on() {
		return
	}
	pm.walks.WithLabelValues(outcome.String()).Inc()
	pm.walkLength.Observe(float64(length))
	pm.edgeCoverage.WithLabelValues(runID).Set(edgeCov)
	pm.vertCoverage.WithLabelValues(runID).Set(vertexCov)
}

// Disable temporarily disables metric recording.
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables metric recording after Disable.
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}

// Reset clears the per-run coverage gauges. Counters and histograms are
// cumulative and keep their values.
func (pm *PrometheusMetrics) Reset() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.edgeCoverage.Reset()
	pm.vertCoverage.Reset()
}

func failureReason(err error) string {
	if IsRecoverable(err) {
		var amb *AmbiguousModelError
		if errors.As(err, &amb) {
			return "ambiguous"
		}
		return "no_path"
	}
	return "fatal"
}
