package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/retention"
)

// Collector owns the Prometheus registry and the retain metric families.
// A disabled collector accepts every call and records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	sweepMetrics  *SweepMetrics
	policyMetrics *PolicyMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh registry
// is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "retain",
//		Subsystem: "sweep",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:        cfg,
		registry:      registry,
		sweepMetrics:  NewSweepMetrics(cfg, registry),
		policyMetrics: NewPolicyMetrics(cfg, registry),
	}
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordSweep records the outcome of one sweep.
func (c *Collector) RecordSweep(obs SweepObservation) {
	if !c.Enabled() {
		return
	}
	c.sweepMetrics.Record(obs)
}

// SetPolicy publishes the shape of the active policy.
func (c *Collector) SetPolicy(p *retention.Policy) {
	if !c.Enabled() || p == nil {
		return
	}
	c.policyMetrics.SetPolicy(p)
}

// RecordReload records a configuration reload attempt.
func (c *Collector) RecordReload(err error) {
	if !c.Enabled() {
		return
	}
	c.policyMetrics.RecordReload(err)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
