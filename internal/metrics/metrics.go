package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the poller.
// Methods are nil-safe so components can run without metrics in tests.
type Metrics struct {
	// Poll cycle metrics
	PollCycles       prometheus.Counter
	PollCycleErrors  *prometheus.CounterVec
	PollCycleLatency prometheus.Histogram

	// Instruction metrics
	InstructionsProcessed prometheus.Counter
	ArtifactsCreated      *prometheus.CounterVec

	// Stuck notes still carrying the processing marker
	StuckNotes prometheus.Gauge
}

var globalMetrics *Metrics

// Init initializes the Prometheus metrics on the default registry.
func Init() *Metrics {
	m := &Metrics{
		PollCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canvaspilot_poll_cycles_total",
			Help: "Total number of poll cycles run",
		}),

		PollCycleErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "canvaspilot_poll_cycle_errors_total",
			Help: "Total number of failed poll cycles by error kind",
		}, []string{"kind"}),

		PollCycleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "canvaspilot_poll_cycle_duration_seconds",
			Help:    "Poll cycle latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}, // image generation dominates slow cycles
		}),

		InstructionsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canvaspilot_instructions_processed_total",
			Help: "Total number of instructions executed to completion",
		}),

		ArtifactsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "canvaspilot_artifacts_created_total",
			Help: "Total number of response artifacts created by kind",
		}, []string{"kind"}),

		StuckNotes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "canvaspilot_stuck_notes",
			Help: "Notes still carrying the processing marker at the last report",
		}),
	}

	globalMetrics = m
	return m
}

// Get returns the global metrics instance, nil before Init.
func Get() *Metrics {
	return globalMetrics
}

// RecordCycle records a completed poll cycle and its latency.
func (m *Metrics) RecordCycle(seconds float64) {
	if m == nil {
		return
	}
	m.PollCycles.Inc()
	m.PollCycleLatency.Observe(seconds)
}

// RecordCycleError records a failed poll cycle.
func (m *Metrics) RecordCycleError(kind string) {
	if m == nil {
		return
	}
	m.PollCycleErrors.WithLabelValues(kind).Inc()
}

// RecordInstruction records an instruction executed to completion.
func (m *Metrics) RecordInstruction() {
	if m == nil {
		return
	}
	m.InstructionsProcessed.Inc()
}

// RecordArtifact records a created response artifact.
func (m *Metrics) RecordArtifact(kind string) {
	if m == nil {
		return
	}
	m.ArtifactsCreated.WithLabelValues(kind).Inc()
}

// RecordStuckNotes records the current stuck-note count.
func (m *Metrics) RecordStuckNotes(count int) {
	if m == nil {
		return
	}
	m.StuckNotes.Set(float64(count))
}
