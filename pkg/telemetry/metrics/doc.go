// Package metrics provides Prometheus metrics collection for retain.
//
// # Overview
//
// The collector records the outcome of every sweep and the shape of the
// active retention policy:
//
//   - Sweep Metrics: run count by status, duration, record counts of the
//     last sweep, safety guard blocks
//   - Policy Metrics: tier count, horizon, configuration reloads
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.SetPolicy(policy)
//	collector.RecordSweep(metrics.SweepObservation{
//		Status:    "ok",
//		Kept:      40,
//		Discarded: 3,
//		Duration:  12 * time.Millisecond,
//	})
//
// # Exposition
//
// In watch mode the registry is served over HTTP by Handler. One-shot runs
// can export the same metrics for the node_exporter textfile collector:
//
//	if err := collector.WriteTextfile("/var/lib/node_exporter/retain.prom"); err != nil {
//		return err
//	}
//
//	# HELP retain_sweep_runs_total Total number of retention sweeps
//	# TYPE retain_sweep_runs_total counter
//	retain_sweep_runs_total{status="ok"} 12
package metrics
