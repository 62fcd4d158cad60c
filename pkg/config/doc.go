// Package config provides configuration management for retain.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("retain.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("retain.yaml")
//
// An empty path yields the defaults (plus environment overrides), so the
// command line tool works without any configuration file.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RETAIN_SECTION_FIELD:
//
//   - RETAIN_POLICY_TIERS overrides policy.tiers ("14d:1h,28d:1d,90d:1w")
//   - RETAIN_SAFETY_MIN_KEEP overrides safety.min_keep
//   - RETAIN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Durations
//
// Duration fields accept Go duration syntax plus the units d (24h) and
// w (7d), e.g. "14d", "2w", "1d12h".
//
// # Example Configuration
//
//	policy:
//	  tiers:
//	    - max_age: 5d
//	      min_spacing: 1h
//	    - max_age: 14d
//	      min_spacing: 1d
//	    - max_age: 30d
//	      min_spacing: 1w
//	    - max_age: 365d
//	      min_spacing: 2w
//
//	safety:
//	  min_keep: 10
//
//	input:
//	  directory: /var/backups/db
//	  include: ["*.sql.gz"]
//
//	schedule:
//	  cron: "0 3 * * *"
//
// # Thread Safety
//
// The singleton accessors use a read-write lock, so GetConfig may be called
// concurrently with ReloadConfig.
package config
