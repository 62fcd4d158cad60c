package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name: "empty policy",
			modify: func(c *Config) {
				c.Policy.Tiers = nil
			},
			wantField: "policy.tiers",
		},
		{
			name: "zero spacing",
			modify: func(c *Config) {
				c.Policy.Tiers[2].MinSpacing = 0
			},
			wantField: "policy.tiers[2]",
		},
		{
			name: "negative min keep",
			modify: func(c *Config) {
				c.Safety.MinKeep = -1
			},
			wantField: "safety.min_keep",
		},
		{
			name: "bad include glob",
			modify: func(c *Config) {
				c.Input.Include = []string{"*.tar", "[unclosed"}
			},
			wantField: "input.include[1]",
		},
		{
			name: "pattern without date groups",
			modify: func(c *Config) {
				c.Input.Patterns = []string{`(?P<year>\d{4})`}
			},
			wantField: "input.patterns",
		},
		{
			name: "unknown timezone",
			modify: func(c *Config) {
				c.Input.Timezone = "Mars/Olympus_Mons"
			},
			wantField: "input.timezone",
		},
		{
			name: "unknown output format",
			modify: func(c *Config) {
				c.Output.Format = "xml"
			},
			wantField: "output.format",
		},
		{
			name: "negative truncate",
			modify: func(c *Config) {
				c.Reference.Truncate = -1
			},
			wantField: "reference.truncate",
		},
		{
			name: "bad cron",
			modify: func(c *Config) {
				c.Schedule.Cron = "every hour"
			},
			wantField: "schedule.cron",
		},
		{
			name: "unknown history backend",
			modify: func(c *Config) {
				c.History.Backend = "postgres"
			},
			wantField: "history.backend",
		},
		{
			name: "enabled sqlite history without path",
			modify: func(c *Config) {
				c.History.Enabled = true
				c.History.Path = ""
			},
			wantField: "history.path",
		},
		{
			name: "bad log level",
			modify: func(c *Config) {
				c.Telemetry.Logging.Level = "verbose"
			},
			wantField: "telemetry.logging.level",
		},
		{
			name: "metrics path without slash",
			modify: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.Path = "metrics"
			},
			wantField: "telemetry.metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want field %s", verr.Errors, tt.wantField)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = "xml"
	cfg.Schedule.Cron = "bad"
	cfg.History.Backend = "postgres"

	err := Validate(cfg)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("Validate() returned %d errors, want 3: %v", len(verr.Errors), verr.Errors)
	}
	if !strings.Contains(err.Error(), "with 3 errors") {
		t.Errorf("Error() = %q, want a multi-error summary", err.Error())
	}
}

func TestValidationError_Single(t *testing.T) {
	err := ValidationError{Errors: []FieldError{{Field: "output.format", Message: "bad"}}}
	want := "configuration validation failed: output.format: bad"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
