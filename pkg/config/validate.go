package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/robfig/cron/v3"

	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/timestamp"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "policy.tiers[0].max_age").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateSafety(&cfg.Safety)...)
	errs = append(errs, validateInput(&cfg.Input)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	errs = append(errs, validateReference(&cfg.Reference)...)
	errs = append(errs, validateSchedule(&cfg.Schedule)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validatePolicy maps retention.Validate failures onto config field paths.
func validatePolicy(p *PolicyConfig) []FieldError {
	tiers := make([]retention.Tier, len(p.Tiers))
	for i, t := range p.Tiers {
		tiers[i] = t.Tier()
	}

	err := retention.Validate(tiers)
	if err == nil {
		return nil
	}

	var policyErr *retention.InvalidPolicyError
	if errors.As(err, &policyErr) && policyErr.Index >= 0 {
		return []FieldError{{
			Field:   fmt.Sprintf("policy.tiers[%d]", policyErr.Index),
			Message: policyErr.Reason,
		}}
	}
	return []FieldError{{Field: "policy.tiers", Message: err.Error()}}
}

func validateSafety(s *SafetyConfig) []FieldError {
	if s.MinKeep < 0 {
		return []FieldError{{
			Field:   "safety.min_keep",
			Message: fmt.Sprintf("must be non-negative, got %d", s.MinKeep),
		}}
	}
	return nil
}

func validateInput(in *InputConfig) []FieldError {
	var errs []FieldError

	for i, pattern := range in.Include {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("input.include[%d]", i),
				Message: fmt.Sprintf("invalid glob %q: %v", pattern, err),
			})
		}
	}
	for i, pattern := range in.Exclude {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("input.exclude[%d]", i),
				Message: fmt.Sprintf("invalid glob %q: %v", pattern, err),
			})
		}
	}

	if len(in.Patterns) > 0 {
		if _, err := timestamp.NewExtractor(in.Patterns, nil); err != nil {
			errs = append(errs, FieldError{Field: "input.patterns", Message: err.Error()})
		}
	}

	if _, err := in.Location(); err != nil {
		errs = append(errs, FieldError{
			Field:   "input.timezone",
			Message: fmt.Sprintf("unknown time zone %q", in.Timezone),
		})
	}

	return errs
}

func validateOutput(out *OutputConfig) []FieldError {
	switch out.Format {
	case "text", "json", "csv", "yaml":
		return nil
	default:
		return []FieldError{{
			Field:   "output.format",
			Message: fmt.Sprintf("must be one of text, json, csv, yaml; got %q", out.Format),
		}}
	}
}

func validateReference(r *ReferenceConfig) []FieldError {
	if r.Truncate < 0 {
		return []FieldError{{Field: "reference.truncate", Message: "must be non-negative"}}
	}
	return nil
}

func validateSchedule(s *ScheduleConfig) []FieldError {
	var errs []FieldError
	if _, err := cron.ParseStandard(s.Cron); err != nil {
		errs = append(errs, FieldError{
			Field:   "schedule.cron",
			Message: fmt.Sprintf("invalid cron expression %q: %v", s.Cron, err),
		})
	}
	if s.DebounceInterval < 0 {
		errs = append(errs, FieldError{Field: "schedule.debounce_interval", Message: "must be non-negative"})
	}
	return errs
}

func validateHistory(h *HistoryConfig) []FieldError {
	var errs []FieldError

	switch h.Backend {
	case "memory":
	case "sqlite", "sqlite3":
		if h.Enabled && h.Path == "" {
			errs = append(errs, FieldError{Field: "history.path", Message: "field is required for SQLite backends"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("must be one of memory, sqlite, sqlite3; got %q", h.Backend),
		})
	}

	if h.Retention < 0 {
		errs = append(errs, FieldError{Field: "history.retention", Message: "must be non-negative"})
	}
	if h.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "history.busy_timeout", Message: "must be non-negative"})
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(t.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", t.Logging.Level),
		})
	}

	switch strings.ToLower(t.Logging.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of json, text, console; got %q", t.Logging.Format),
		})
	}

	if t.Metrics.Enabled && t.Metrics.Path != "" && !strings.HasPrefix(t.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}

	switch t.Tracing.Sampler {
	case "always", "never":
	case "ratio":
		if t.Tracing.SampleRatio < 0 || t.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: fmt.Sprintf("must be between 0.0 and 1.0, got %v", t.Tracing.SampleRatio),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("must be one of always, never, ratio; got %q", t.Tracing.Sampler),
		})
	}
	if t.Tracing.Enabled && t.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "field is required when tracing is enabled"})
	}

	return errs
}
