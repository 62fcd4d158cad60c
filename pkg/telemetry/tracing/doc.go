// Package tracing provides OpenTelemetry tracing of retention sweeps.
//
// # Overview
//
// Every sweep runs inside a "retain.sweep" span with child spans for reading
// the source, computing retention and recording history. Spans are exported
// over OTLP gRPC to a collector. When tracing is disabled a noop tracer is
// used and spans cost close to nothing.
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample every sweep
//   - never: Sample no sweeps
//   - ratio: Sample a fraction of sweeps (sample_ratio)
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanSweep)
//	defer span.End()
//	tracing.SetSweepResult(span, kept, discarded, unmatched, safe)
package tracing
