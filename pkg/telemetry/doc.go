// Package telemetry groups the observability packages of retain.
//
//   - logging: slog based structured logging
//   - metrics: Prometheus sweep and policy metrics
//   - tracing: OpenTelemetry spans around sweeps
//   - health: liveness and readiness probes for watch mode
package telemetry
