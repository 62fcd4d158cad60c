package config

import "time"

// Default values for configuration fields.
const (
	// Safety defaults
	DefaultSafetyMinKeep = 10
	DefaultSafetyForce   = false

	// Input defaults
	DefaultInputTimezone = "UTC"

	// Output defaults
	DefaultOutputFormat    = "text"
	DefaultOutputSeparator = "\n"

	// Schedule defaults
	DefaultScheduleCron             = "0 * * * *"
	DefaultScheduleRunOnStart       = true
	DefaultScheduleWatchConfig      = true
	DefaultScheduleDebounceInterval = 250 * time.Millisecond

	// History defaults
	DefaultHistoryEnabled     = false
	DefaultHistoryBackend     = "sqlite"
	DefaultHistoryPath        = "data/history.db"
	DefaultHistoryRetention   = 90 * day
	DefaultHistoryBusyTimeout = 5 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "text"
	DefaultMetricsEnabled       = false
	DefaultMetricsNamespace     = "retain"
	DefaultMetricsSubsystem     = "sweep"
	DefaultMetricsListenAddress = "127.0.0.1:9273"
	DefaultMetricsPath          = "/metrics"
	DefaultTracingEnabled       = false
	DefaultTracingSampler       = "always"
	DefaultTracingSampleRatio   = 1.0
	DefaultTracingEndpoint      = "localhost:4317"
	DefaultTracingInsecure      = true
	DefaultTracingTimeout       = 10 * time.Second
	DefaultTracingServiceName   = "retain"
)

// DefaultTiers returns the default policy: hourly for 5 days, daily up to
// 14 days, weekly up to 30 days and fortnightly up to a year.
func DefaultTiers() []TierConfig {
	return []TierConfig{
		{MaxAge: Duration(5 * day), MinSpacing: Duration(time.Hour)},
		{MaxAge: Duration(14 * day), MinSpacing: Duration(day)},
		{MaxAge: Duration(30 * day), MinSpacing: Duration(week)},
		{MaxAge: Duration(365 * day), MinSpacing: Duration(2 * week)},
	}
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Policy: PolicyConfig{Tiers: DefaultTiers()},
		Safety: SafetyConfig{
			MinKeep: DefaultSafetyMinKeep,
			Force:   DefaultSafetyForce,
		},
		Input: InputConfig{
			Timezone: DefaultInputTimezone,
		},
		Output: OutputConfig{
			Format:    DefaultOutputFormat,
			Separator: DefaultOutputSeparator,
		},
		Schedule: ScheduleConfig{
			Cron:             DefaultScheduleCron,
			RunOnStart:       DefaultScheduleRunOnStart,
			WatchConfig:      DefaultScheduleWatchConfig,
			DebounceInterval: Duration(DefaultScheduleDebounceInterval),
		},
		History: HistoryConfig{
			Enabled:     DefaultHistoryEnabled,
			Backend:     DefaultHistoryBackend,
			Path:        DefaultHistoryPath,
			Retention:   Duration(DefaultHistoryRetention),
			BusyTimeout: Duration(DefaultHistoryBusyTimeout),
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLoggingLevel,
				Format: DefaultLoggingFormat,
			},
			Metrics: MetricsConfig{
				Enabled:       DefaultMetricsEnabled,
				Namespace:     DefaultMetricsNamespace,
				Subsystem:     DefaultMetricsSubsystem,
				ListenAddress: DefaultMetricsListenAddress,
				Path:          DefaultMetricsPath,
			},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				Sampler:     DefaultTracingSampler,
				SampleRatio: DefaultTracingSampleRatio,
				Endpoint:    DefaultTracingEndpoint,
				Insecure:    DefaultTracingInsecure,
				Timeout:     Duration(DefaultTracingTimeout),
				ServiceName: DefaultTracingServiceName,
			},
		},
	}
}

// ApplyDefaults fills fields whose zero value is never meaningful. Numeric
// and boolean fields where zero is a valid choice (safety.min_keep,
// history.retention, schedule.run_on_start) are left alone; LoadConfig
// decodes over Default() so those keep their defaults unless set.
func ApplyDefaults(cfg *Config) {
	if len(cfg.Policy.Tiers) == 0 {
		cfg.Policy.Tiers = DefaultTiers()
	}

	if cfg.Input.Timezone == "" {
		cfg.Input.Timezone = DefaultInputTimezone
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if cfg.Output.Separator == "" {
		cfg.Output.Separator = DefaultOutputSeparator
	}

	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = DefaultScheduleCron
	}
	if cfg.Schedule.DebounceInterval == 0 {
		cfg.Schedule.DebounceInterval = Duration(DefaultScheduleDebounceInterval)
	}

	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.BusyTimeout == 0 {
		cfg.History.BusyTimeout = Duration(DefaultHistoryBusyTimeout)
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = Duration(DefaultTracingTimeout)
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
