package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// Values not present in the file keep their defaults. The result is
// validated. An empty path returns the validated defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention RETAIN_SECTION_FIELD and always take precedence.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode YAML from file
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed numeric and boolean values are ignored like the rest of the
// variables; a malformed tier list is an error because silently keeping the
// file policy would change what gets discarded.
func applyEnvOverrides(cfg *Config) error {
	// Policy overrides
	if val := os.Getenv("RETAIN_POLICY_TIERS"); val != "" {
		tiers, err := ParseTiers(val)
		if err != nil {
			return fmt.Errorf("RETAIN_POLICY_TIERS: %w", err)
		}
		cfg.Policy.Tiers = tiers
	}

	// Safety overrides
	if val := os.Getenv("RETAIN_SAFETY_MIN_KEEP"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Safety.MinKeep = i
		}
	}
	if val := os.Getenv("RETAIN_SAFETY_FORCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Safety.Force = b
		}
	}

	// Input overrides
	if val := os.Getenv("RETAIN_INPUT_DIRECTORY"); val != "" {
		cfg.Input.Directory = val
	}
	if val := os.Getenv("RETAIN_INPUT_TIMEZONE"); val != "" {
		cfg.Input.Timezone = val
	}

	// Output overrides
	if val := os.Getenv("RETAIN_OUTPUT_FORMAT"); val != "" {
		cfg.Output.Format = val
	}
	if val := os.Getenv("RETAIN_OUTPUT_SEPARATOR"); val != "" {
		cfg.Output.Separator = val
	}

	// Reference overrides
	if val := os.Getenv("RETAIN_REFERENCE_TRUNCATE"); val != "" {
		if d, err := ParseDuration(val); err == nil {
			cfg.Reference.Truncate = Duration(d)
		}
	}

	// Schedule overrides
	if val := os.Getenv("RETAIN_SCHEDULE_CRON"); val != "" {
		cfg.Schedule.Cron = val
	}

	// History overrides
	if val := os.Getenv("RETAIN_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("RETAIN_HISTORY_BACKEND"); val != "" {
		cfg.History.Backend = val
	}
	if val := os.Getenv("RETAIN_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}
	if val := os.Getenv("RETAIN_HISTORY_RETENTION"); val != "" {
		if d, err := ParseDuration(val); err == nil {
			cfg.History.Retention = Duration(d)
		}
	}

	// Telemetry overrides
	if val := os.Getenv("RETAIN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("RETAIN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("RETAIN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("RETAIN_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("RETAIN_TELEMETRY_METRICS_TEXTFILE"); val != "" {
		cfg.Telemetry.Metrics.Textfile = val
	}
	if val := os.Getenv("RETAIN_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("RETAIN_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}

	return nil
}
