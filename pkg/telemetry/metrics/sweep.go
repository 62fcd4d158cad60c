package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/retain/pkg/config"
)

// SweepObservation is the metric view of one finished sweep.
type SweepObservation struct {
	// Status is the sweep outcome ("ok", "forced", "blocked", "failed").
	Status string

	Kept       int
	Discarded  int
	Unmatched  int
	Duplicates int

	Duration time.Duration

	// Blocked is set when the safety guard rejected the result.
	Blocked bool

	// FinishedAt defaults to the time of recording.
	FinishedAt time.Time
}

// SweepMetrics tracks metrics related to retention sweeps.
//
// Metrics:
//   - retain_sweep_runs_total: Total sweeps by status
//   - retain_sweep_duration_seconds: Sweep duration
//   - retain_sweep_records: Record counts of the last sweep by set
//   - retain_sweep_safety_blocks_total: Sweeps rejected by the safety guard
//   - retain_sweep_last_run_timestamp_seconds: Finish time of the last sweep
type SweepMetrics struct {
	runsTotal    *prometheus.CounterVec
	duration     prometheus.Histogram
	records      *prometheus.GaugeVec
	safetyBlocks prometheus.Counter
	lastRun      prometheus.Gauge
}

// NewSweepMetrics creates and registers sweep metrics with the provided registry.
func NewSweepMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SweepMetrics {
	sm := &SweepMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of retention sweeps",
			},
			[]string{"status"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "duration_seconds",
				Help:      "Duration of retention sweeps in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
		),

		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "records",
				Help:      "Number of records in each set after the last sweep",
			},
			[]string{"set"},
		),

		safetyBlocks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "safety_blocks_total",
				Help:      "Total number of sweeps rejected by the safety guard",
			},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last sweep finished",
			},
		),
	}

	registry.MustRegister(
		sm.runsTotal,
		sm.duration,
		sm.records,
		sm.safetyBlocks,
		sm.lastRun,
	)

	return sm
}

// Record records one sweep observation.
func (sm *SweepMetrics) Record(obs SweepObservation) {
	sm.runsTotal.WithLabelValues(obs.Status).Inc()
	sm.duration.Observe(obs.Duration.Seconds())

	sm.records.WithLabelValues("kept").Set(float64(obs.Kept))
	sm.records.WithLabelValues("discarded").Set(float64(obs.Discarded))
	sm.records.WithLabelValues("unmatched").Set(float64(obs.Unmatched))
	sm.records.WithLabelValues("duplicate").Set(float64(obs.Duplicates))

	if obs.Blocked {
		sm.safetyBlocks.Inc()
	}

	finished := obs.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	sm.lastRun.Set(float64(finished.UnixNano()) / 1e9)
}
