package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/history"
	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/source"
	"mercator-hq/retain/pkg/telemetry/logging"
	"mercator-hq/retain/pkg/telemetry/metrics"
	"mercator-hq/retain/pkg/telemetry/tracing"
	"mercator-hq/retain/pkg/timestamp"
)

// Sweep triggers.
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerStart    = "start"
	TriggerReload   = "reload"
)

// Config holds the settings that may change between sweeps.
type Config struct {
	// Policy is the retention policy. Required.
	Policy *retention.Policy

	// MinKeep is the safety guard threshold. 0 disables the guard.
	MinKeep int

	// Force reports discards even when the guard rejects the result.
	Force bool

	// Reference adjusts the reference instant.
	Reference config.ReferenceConfig

	// Location is the zone whole-day reference truncation happens in. Nil
	// means UTC.
	Location *time.Location
}

// ConfigFrom builds a sweep configuration from the application config.
func ConfigFrom(cfg *config.Config) (*Config, error) {
	policy, err := cfg.Policy.Build()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Input.Location()
	if err != nil {
		return nil, fmt.Errorf("input.timezone: %w", err)
	}
	return &Config{
		Policy:    policy,
		MinKeep:   cfg.Safety.MinKeep,
		Force:     cfg.Safety.Force,
		Reference: cfg.Reference,
		Location:  loc,
	}, nil
}

// Options are the optional collaborators of a Sweeper.
type Options struct {
	// History records a report per sweep when set.
	History history.Store

	// HistoryBackend names the history backend on spans.
	HistoryBackend string

	// Metrics records sweep metrics when set and enabled.
	Metrics *metrics.Collector

	// Textfile is rewritten with the metrics after every sweep when set.
	Textfile string

	// Tracer defaults to a noop tracer.
	Tracer *tracing.Tracer

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Outcome is the full result of one sweep.
type Outcome struct {
	Report *history.Report

	// Result is the filter result over distinct instants. It is nil when
	// the sweep failed before filtering.
	Result *retention.Result

	// Keep and Discard classify every identifier, sorted by instant.
	Keep    []timestamp.Entry
	Discard []timestamp.Entry

	// Unmatched lists identifiers without a recognisable timestamp.
	Unmatched []string
}

// Blocked reports whether the safety guard rejected the result.
func (o *Outcome) Blocked() bool {
	return o.Report.Status == history.StatusBlocked
}

// KeepIDs returns the identifiers of the keep-set.
func (o *Outcome) KeepIDs() []string {
	return timestamp.IDs(o.Keep)
}

// DiscardIDs returns the identifiers of the discard-set.
func (o *Outcome) DiscardIDs() []string {
	return timestamp.IDs(o.Discard)
}

// Sweeper runs sweeps over one source. Sweeps are serialised.
type Sweeper struct {
	source source.Source

	mu     sync.Mutex
	config *Config
	last   *history.Report

	history        history.Store
	historyBackend string
	metrics        *metrics.Collector
	textfile       string
	tracer         *tracing.Tracer
	logger         *slog.Logger
	clock          func() time.Time
}

// New creates a Sweeper.
func New(src source.Source, cfg *Config, opts Options) (*Sweeper, error) {
	if src == nil {
		return nil, errors.New("sweep: source is required")
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	s := &Sweeper{
		source:         src,
		config:         cfg,
		history:        opts.History,
		historyBackend: opts.HistoryBackend,
		metrics:        opts.Metrics,
		textfile:       opts.Textfile,
		tracer:         opts.Tracer,
		logger:         opts.Logger,
		clock:          opts.Clock,
	}
	if s.tracer == nil {
		s.tracer = tracing.Noop()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "sweep")
	if s.clock == nil {
		s.clock = time.Now
	}

	s.metrics.SetPolicy(cfg.Policy)
	return s, nil
}

func checkConfig(cfg *Config) error {
	if cfg == nil || cfg.Policy == nil {
		return errors.New("sweep: policy is required")
	}
	return nil
}

// SetConfig replaces the configuration used by later sweeps. A running
// sweep finishes with the previous configuration.
func (s *Sweeper) SetConfig(cfg *Config) error {
	if err := checkConfig(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.metrics.SetPolicy(cfg.Policy)
	s.logger.Info("sweep configuration updated", "policy", cfg.Policy.String(), "min_keep", cfg.MinKeep)
	return nil
}

// Config returns the current configuration.
func (s *Sweeper) Config() *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Source returns the source the sweeper reads.
func (s *Sweeper) Source() source.Source {
	return s.source
}

// LastReport returns the report of the most recent sweep, or nil.
func (s *Sweeper) LastReport() *history.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Run performs one sweep.
//
// When the safety guard rejects the result and force is not set, Run
// returns both the outcome and an *UnsafeError; the report then carries no
// discard identifiers. Other errors mean the sweep failed and the outcome
// holds only the failed report.
func (s *Sweeper) Run(ctx context.Context, trigger string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.config
	report := history.NewReport(s.clock())
	report.Trigger = trigger
	report.Source = s.source.String()
	report.Policy = cfg.Policy.String()
	report.MinKeep = cfg.MinKeep

	ctx = logging.WithSweepID(ctx, report.ID)
	ctx = logging.WithTrigger(ctx, trigger)
	ctx = logging.WithSource(ctx, report.Source)
	logger := logging.Wrap(s.logger).WithContext(ctx)

	ctx, span := s.tracer.Start(ctx, tracing.SpanSweep,
		tracing.SweepStart(report.ID, trigger, report.Source, report.Policy))
	defer span.End()

	logger.Debug("sweep started", "policy", report.Policy)

	outcome, err := s.classify(ctx, logger, cfg, report)
	report.FinishedAt = s.clock()

	switch {
	case err == nil:
		tracing.SetStatus(span, nil)
	case errors.Is(err, ErrUnsafe):
		// The sweep itself succeeded.
		tracing.SetStatus(span, nil)
	default:
		report.Status = history.StatusFailed
		report.Error = err.Error()
		outcome = &Outcome{Report: report}
		tracing.SetStatus(span, err)
		logger.Error("sweep failed", "error", err)
	}
	tracing.SetSweepResult(span, report.Kept, report.Discarded, report.Unmatched, report.Duplicates, report.Safe, report.Forced)

	s.record(ctx, logger, report)
	s.last = report

	if err == nil {
		logger.Info("sweep completed",
			"status", report.Status,
			"kept", report.Kept,
			"discarded", report.Discarded,
			"unmatched", report.Unmatched,
			"duration", report.Duration(),
		)
	}
	return outcome, err
}

func (s *Sweeper) classify(ctx context.Context, logger *logging.Logger, cfg *Config, report *history.Report) (*Outcome, error) {
	readCtx, readSpan := s.tracer.Start(ctx, tracing.SpanRead)
	batch, err := s.source.Read(readCtx)
	tracing.SetStatus(readSpan, err)
	readSpan.End()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	for _, id := range batch.Unmatched {
		logger.Warn("skipping record without timestamp", "record", id)
	}

	index := timestamp.NewIndex()
	for _, r := range batch.Records {
		if index.Add(r.ID, r.Time) {
			owner, _ := index.Owner(r.Time)
			logger.Debug("duplicate timestamp", "record", r.ID, "owner", owner, "time", r.Time)
		}
	}

	now := cfg.Reference.Now(report.StartedAt, cfg.Location)
	report.Now = now

	_, computeSpan := s.tracer.Start(ctx, tracing.SpanCompute,
		trace.WithAttributes(attribute.Int(tracing.AttrRecords, index.Len())))
	result, err := retention.ComputeRetention(cfg.Policy, index.Instants(), now)
	tracing.SetStatus(computeSpan, err)
	computeSpan.End()
	if err != nil {
		return nil, err
	}

	for _, d := range result.Decisions {
		logger.Debug("retention decision",
			"time", d.Time,
			"age", d.Age,
			"tier", d.Tier,
			"spacing", d.Spacing,
			"gap", d.Gap,
			"kept", d.Kept,
			"reason", string(d.Reason),
		)
	}

	classes := index.Resolve(result.IsKept)
	outcome := &Outcome{
		Report:    report,
		Result:    result,
		Keep:      classes.Keep,
		Discard:   classes.Discard,
		Unmatched: batch.Unmatched,
	}

	report.Kept = len(classes.Keep)
	report.Discarded = len(classes.Discard)
	report.Unmatched = len(batch.Unmatched)
	report.Duplicates = index.Len() - index.Distinct()
	report.Safe = retention.CheckSafety(report.Kept, report.Discarded, cfg.MinKeep)

	switch {
	case report.Safe:
		report.Status = history.StatusOK
	case cfg.Force:
		report.Status = history.StatusForced
		report.Forced = true
		logger.Warn("safety guard overridden by force",
			"kept", report.Kept,
			"discarded", report.Discarded,
			"min_keep", cfg.MinKeep,
		)
	default:
		report.Status = history.StatusBlocked
		err := &UnsafeError{Kept: report.Kept, Discarded: report.Discarded, MinKeep: cfg.MinKeep}
		logger.Error("safety guard blocked sweep",
			"kept", report.Kept,
			"discarded", report.Discarded,
			"min_keep", cfg.MinKeep,
		)
		return outcome, err
	}

	report.DiscardIDs = outcome.DiscardIDs()
	return outcome, nil
}

// record publishes report to history and metrics. Failures are logged and
// do not fail the sweep.
func (s *Sweeper) record(ctx context.Context, logger *logging.Logger, report *history.Report) {
	if s.history != nil {
		histCtx, span := s.tracer.Start(ctx, tracing.SpanHistory,
			trace.WithAttributes(attribute.String(tracing.AttrHistoryBackend, s.historyBackend)))
		err := s.history.Save(histCtx, report)
		tracing.SetStatus(span, err)
		span.End()
		if err != nil {
			logger.Error("failed to save sweep report", "error", err)
		}
	}

	s.metrics.RecordSweep(metrics.SweepObservation{
		Status:     report.Status,
		Kept:       report.Kept,
		Discarded:  report.Discarded,
		Unmatched:  report.Unmatched,
		Duplicates: report.Duplicates,
		Duration:   report.Duration(),
		Blocked:    report.Status == history.StatusBlocked,
		FinishedAt: report.FinishedAt,
	})

	if s.textfile != "" && s.metrics.Enabled() {
		if err := s.metrics.WriteTextfile(s.textfile); err != nil {
			logger.Error("failed to write metrics textfile", "path", s.textfile, "error", err)
		}
	}
}
