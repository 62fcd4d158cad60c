package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanSweep   = "retain.sweep"
	SpanRead    = "retain.source.read"
	SpanCompute = "retain.compute"
	SpanHistory = "retain.history.save"
)

// Attribute keys use the "retain.*" namespace.
const (
	AttrSweepID        = "retain.sweep.id"
	AttrTrigger        = "retain.sweep.trigger"
	AttrSource         = "retain.source"
	AttrPolicy         = "retain.policy"
	AttrRecords        = "retain.records.total"
	AttrKept           = "retain.records.kept"
	AttrDiscarded      = "retain.records.discarded"
	AttrUnmatched      = "retain.records.unmatched"
	AttrDuplicates     = "retain.records.duplicates"
	AttrSafe           = "retain.safety.safe"
	AttrForced         = "retain.safety.forced"
	AttrHistoryBackend = "retain.history.backend"
)

// SweepStart returns the start options of a sweep span.
func SweepStart(id, trigger, source, policy string) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String(AttrSweepID, id),
		attribute.String(AttrTrigger, trigger),
		attribute.String(AttrSource, source),
		attribute.String(AttrPolicy, policy),
	)
}

// SetSweepResult records the classification counts on span.
func SetSweepResult(span trace.Span, kept, discarded, unmatched, duplicates int, safe, forced bool) {
	span.SetAttributes(
		attribute.Int(AttrKept, kept),
		attribute.Int(AttrDiscarded, discarded),
		attribute.Int(AttrUnmatched, unmatched),
		attribute.Int(AttrDuplicates, duplicates),
		attribute.Bool(AttrSafe, safe),
		attribute.Bool(AttrForced, forced),
	)
}
