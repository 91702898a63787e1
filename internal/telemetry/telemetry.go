package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohammad-safakhou/deepdive/config"
)

// Telemetry tracks session and phase metrics. All methods are safe on a nil
// receiver so callers can skip wiring when telemetry is disabled.
type Telemetry struct {
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsFailed    prometheus.Counter
	phasesExecuted    *prometheus.CounterVec
	phaseDuration     *prometheus.HistogramVec
	researchCycles    prometheus.Histogram
}

// New registers session metrics on the default registry. Returns nil when
// telemetry is disabled.
func New(cfg config.TelemetryConfig) *Telemetry {
	if !cfg.Enabled {
		return nil
	}
	return &Telemetry{
		sessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deepdive_sessions_started_total",
			Help: "Research sessions started.",
		}),
		sessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deepdive_sessions_completed_total",
			Help: "Research sessions completed successfully.",
		}),
		sessionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deepdive_sessions_failed_total",
			Help: "Research sessions aborted by an upstream error.",
		}),
		phasesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "deepdive_phases_executed_total",
			Help: "Phases executed, by phase.",
		}, []string{"phase"}),
		phaseDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deepdive_phase_duration_seconds",
			Help:    "Wall time per phase, by phase.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"phase"}),
		researchCycles: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "deepdive_research_cycles",
			Help:    "Research cycles per completed session.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}

// SessionStarted records a new session.
func (t *Telemetry) SessionStarted() {
	if t == nil {
		return
	}
	t.sessionsStarted.Inc()
}

// SessionCompleted records a successful session and its cycle count.
func (t *Telemetry) SessionCompleted(cycles int) {
	if t == nil {
		return
	}
	t.sessionsCompleted.Inc()
	t.researchCycles.Observe(float64(cycles))
}

// SessionFailed records an aborted session.
func (t *Telemetry) SessionFailed() {
	if t == nil {
		return
	}
	t.sessionsFailed.Inc()
}

// PhaseExecuted records one completed phase and its duration.
func (t *Telemetry) PhaseExecuted(phase string, d time.Duration) {
	if t == nil {
		return
	}
	t.phasesExecuted.WithLabelValues(phase).Inc()
	t.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}
