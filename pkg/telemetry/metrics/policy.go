package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/retention"
)

// PolicyMetrics tracks the active retention policy.
//
// Metrics:
//   - retain_sweep_policy_tiers: Number of tiers in the active policy
//   - retain_sweep_policy_horizon_seconds: Largest tier max age
//   - retain_sweep_config_reloads_total: Configuration reloads by result
type PolicyMetrics struct {
	tiers   prometheus.Gauge
	horizon prometheus.Gauge
	reloads *prometheus.CounterVec
}

// NewPolicyMetrics creates and registers policy metrics with the provided registry.
func NewPolicyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PolicyMetrics {
	pm := &PolicyMetrics{
		tiers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_tiers",
				Help:      "Number of tiers in the active retention policy",
			},
		),

		horizon: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_horizon_seconds",
				Help:      "Age beyond which every record is discarded",
			},
		),

		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "config_reloads_total",
				Help:      "Total number of configuration reloads",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		pm.tiers,
		pm.horizon,
		pm.reloads,
	)

	return pm
}

// SetPolicy publishes the tier count and horizon of p.
func (pm *PolicyMetrics) SetPolicy(p *retention.Policy) {
	pm.tiers.Set(float64(p.Len()))
	pm.horizon.Set(p.Horizon().Seconds())
}

// RecordReload counts a reload as "success" or "failure".
func (pm *PolicyMetrics) RecordReload(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	pm.reloads.WithLabelValues(result).Inc()
}
