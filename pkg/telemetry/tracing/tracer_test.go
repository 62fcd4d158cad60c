package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/retain/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("Enabled() = true for disabled config")
	}

	ctx, span := tracer.Start(context.Background(), SpanSweep)
	span.End()
	if TraceID(ctx) != "" {
		t.Error("noop tracer produced a valid trace ID")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) should fail")
	}
}

func TestNewWithExporter_RecordsSweepSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{Enabled: true, Sampler: SamplerAlways}, exporter, true)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.Start(context.Background(), SpanSweep, SweepStart("id-1", "manual", "stdin", "14d:1h"))
	if TraceID(ctx) == "" {
		t.Error("TraceID() is empty inside a sampled span")
	}
	_, child := tracer.Start(ctx, SpanCompute)
	child.End()
	SetSweepResult(span, 3, 7, 1, 0, false, true)
	SetStatus(span, errors.New("unsafe"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}

	sweep := spans[1]
	if sweep.Name != SpanSweep {
		t.Fatalf("spans[1].Name = %q, want %q", sweep.Name, SpanSweep)
	}
	if spans[0].Parent.SpanID() != sweep.SpanContext.SpanID() {
		t.Error("compute span is not a child of the sweep span")
	}
	if sweep.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", sweep.Status.Code)
	}

	want := map[attribute.Key]attribute.Value{
		AttrSweepID:   attribute.StringValue("id-1"),
		AttrKept:      attribute.IntValue(3),
		AttrDiscarded: attribute.IntValue(7),
		AttrForced:    attribute.BoolValue(true),
	}
	got := make(map[attribute.Key]attribute.Value)
	for _, kv := range sweep.Attributes {
		got[kv.Key] = kv.Value
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("attribute %s = %v, want %v", k, got[k].Emit(), v.Emit())
		}
	}
}

func TestNewWithExporter_NeverSampler(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{Enabled: true, Sampler: SamplerNever}, exporter, true)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), SpanSweep)
	span.End()

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("never sampler exported %d spans", n)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{strategy: SamplerAlways},
		{strategy: SamplerNever},
		{strategy: SamplerRatio, ratio: 0.5},
		{strategy: SamplerRatio, ratio: 1.5, wantErr: true},
		{strategy: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			_, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
			}
		})
	}
}
