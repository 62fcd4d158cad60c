package config

import (
	"fmt"
	"strings"
	"time"

	"mercator-hq/retain/pkg/retention"
)

// Config is the root configuration structure for retain.
type Config struct {
	// Policy contains the retention tiers.
	Policy PolicyConfig `yaml:"policy"`

	// Safety contains the post-filter safety guard settings.
	Safety SafetyConfig `yaml:"safety"`

	// Input describes where records come from and how their timestamps
	// are extracted.
	Input InputConfig `yaml:"input"`

	// Output controls how classification results are written.
	Output OutputConfig `yaml:"output"`

	// Reference controls the "now" instant ages are computed against.
	Reference ReferenceConfig `yaml:"reference"`

	// Schedule contains settings for periodic sweeps in watch mode.
	Schedule ScheduleConfig `yaml:"schedule"`

	// History contains settings for persisting sweep reports.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PolicyConfig contains the retention policy.
type PolicyConfig struct {
	// Tiers is the list of retention tiers. Order does not matter; tiers are
	// sorted by max_age. Two tiers may not share a max_age.
	// Default: 5d/1h, 14d/1d, 30d/1w, 365d/2w
	Tiers []TierConfig `yaml:"tiers"`
}

// TierConfig is one retention tier.
type TierConfig struct {
	// MaxAge is the absolute age boundary of the tier.
	MaxAge Duration `yaml:"max_age"`

	// MinSpacing is the minimum spacing between retained records of the tier.
	MinSpacing Duration `yaml:"min_spacing"`
}

// Tier converts the configuration into a retention.Tier.
func (t TierConfig) Tier() retention.Tier {
	return retention.Tier{
		MaxAge:     t.MaxAge.Std(),
		MinSpacing: t.MinSpacing.Std(),
	}
}

// Build returns the validated retention policy.
func (p *PolicyConfig) Build() (*retention.Policy, error) {
	tiers := make([]retention.Tier, len(p.Tiers))
	for i, t := range p.Tiers {
		tiers[i] = t.Tier()
	}
	return retention.NewPolicy(tiers...)
}

// ParseTiers parses a comma separated list of MAXAGE:SPACING pairs such as
// "14d:1h,28d:1d". It does not validate the resulting policy.
func ParseTiers(s string) ([]TierConfig, error) {
	var tiers []TierConfig
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tier, err := ParseTier(part)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no tiers in %q", s)
	}
	return tiers, nil
}

// ParseTier parses a single MAXAGE:SPACING pair.
func ParseTier(s string) (TierConfig, error) {
	maxAge, spacing, ok := strings.Cut(s, ":")
	if !ok {
		return TierConfig{}, fmt.Errorf("invalid tier %q: expected MAXAGE:SPACING", s)
	}
	a, err := ParseDuration(maxAge)
	if err != nil {
		return TierConfig{}, fmt.Errorf("invalid tier %q: max age: %w", s, err)
	}
	b, err := ParseDuration(spacing)
	if err != nil {
		return TierConfig{}, fmt.Errorf("invalid tier %q: min spacing: %w", s, err)
	}
	return TierConfig{MaxAge: Duration(a), MinSpacing: Duration(b)}, nil
}

// SafetyConfig contains the safety guard settings.
type SafetyConfig struct {
	// MinKeep is the number of records that must survive when a sweep would
	// discard more records than it keeps. 0 disables the guard.
	// Default: 10
	MinKeep int `yaml:"min_keep"`

	// Force applies results even when the guard reports them unsafe.
	// Default: false
	Force bool `yaml:"force"`
}

// InputConfig describes the record source.
type InputConfig struct {
	// Directory is scanned for records by `retain watch` and by
	// `retain filter --dir`. Each entry name is a record identifier.
	Directory string `yaml:"directory"`

	// Include lists glob patterns an entry name must match. Empty matches
	// everything.
	Include []string `yaml:"include"`

	// Exclude lists glob patterns that drop matching entry names.
	Exclude []string `yaml:"exclude"`

	// Patterns overrides the timestamp extraction regular expressions. Each
	// needs (?P<year>), (?P<month>) and (?P<day>) groups.
	// Default: timestamp.DefaultPattern
	Patterns []string `yaml:"patterns"`

	// Timezone is the IANA zone for timestamps without an offset.
	// Default: "UTC"
	Timezone string `yaml:"timezone"`
}

// Location resolves Timezone.
func (c *InputConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "UTC" {
		return time.UTC, nil
	}
	if c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// OutputConfig controls result output.
type OutputConfig struct {
	// Format is "text", "json", "csv" or "yaml".
	// Default: "text"
	Format string `yaml:"format"`

	// Separator terminates each identifier in text output. Escapes "\n",
	// "\t" and "\0" are understood.
	// Default: "\n"
	Separator string `yaml:"separator"`

	// PrintKept prints the keep-set instead of the discard-set.
	// Default: false
	PrintKept bool `yaml:"print_kept"`
}

// ReferenceConfig controls the reference instant.
type ReferenceConfig struct {
	// Truncate rounds "now" down. Whole days truncate to midnight in
	// input.timezone ("1d" gives midnight-based ages); other durations
	// truncate to a multiple since the zero time. 0 disables.
	// Default: 0
	Truncate Duration `yaml:"truncate"`
}

// Now returns t truncated per the configuration. Day truncation happens in
// loc; nil means UTC.
func (c *ReferenceConfig) Now(t time.Time, loc *time.Location) time.Time {
	d := c.Truncate.Std()
	if d <= 0 {
		return t
	}
	if d%day != 0 {
		return t.Truncate(d)
	}
	if loc == nil {
		loc = time.UTC
	}

	y, m, dd := t.In(loc).Date()
	midnight := time.Date(y, m, dd, 0, 0, 0, 0, loc)
	n := int64(d / day)
	if n == 1 {
		return midnight
	}
	// Count civil days so multi-day steps line up across zones.
	civil := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC).Unix() / int64(day/time.Second)
	offset := civil % n
	if offset < 0 {
		offset += n
	}
	return midnight.AddDate(0, 0, -int(offset))
}

// ScheduleConfig contains settings for `retain watch`.
type ScheduleConfig struct {
	// Cron is a standard five field cron expression.
	// Default: "0 * * * *" (hourly)
	Cron string `yaml:"cron"`

	// RunOnStart runs a sweep immediately when watch mode starts.
	// Default: true
	RunOnStart bool `yaml:"run_on_start"`

	// WatchConfig reloads the configuration file when it changes.
	// Default: true
	WatchConfig bool `yaml:"watch_config"`

	// DebounceInterval is the quiet period before a changed configuration
	// file is reloaded.
	// Default: 250ms
	DebounceInterval Duration `yaml:"debounce_interval"`
}

// HistoryConfig contains settings for the sweep history store.
type HistoryConfig struct {
	// Enabled turns on recording of sweep reports.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend is "memory", "sqlite" (pure Go driver) or "sqlite3" (cgo driver).
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the database file for the SQLite backends.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// Retention is how long reports are kept by `retain history prune` and
	// after each scheduled sweep. 0 keeps reports forever.
	// Default: 90d
	Retention Duration `yaml:"retention"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures OpenTelemetry tracing of sweeps.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json", "text" or "console".
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metrics collection on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "retain"
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name component.
	// Default: "sweep"
	Subsystem string `yaml:"subsystem"`

	// ListenAddress serves the metrics endpoint in watch mode. Empty
	// disables the HTTP endpoint.
	// Default: "127.0.0.1:9273"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Textfile writes metrics after every sweep in the node_exporter textfile
	// format. Empty disables it.
	Textfile string `yaml:"textfile"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns on span export.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is "always", "never" or "ratio".
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of sweeps traced by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout Duration `yaml:"timeout"`

	// ServiceName is the service.name resource attribute.
	// Default: "retain"
	ServiceName string `yaml:"service_name"`
}
