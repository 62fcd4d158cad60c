package main

import (
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/retain/pkg/cli"
)

func TestPolicyShow_Defaults(t *testing.T) {
	stdout, stderr, code := execute(t, "", "policy", "show")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	for _, want := range []string{"TIER", "0s - 5d", "1h", "4w2d - 52w1d", "2w", "52w1d or more"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestPolicyShow_JSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "retain.yaml", `
policy:
  tiers:
    - max_age: 90d
      min_spacing: 1w
    - max_age: 14d
      min_spacing: 1h
`)

	stdout, _, code := execute(t, "", "policy", "show", "--config", cfgPath, "--format", "json")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var view cli.PolicyView
	if err := json.Unmarshal([]byte(stdout), &view); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(view.Tiers) != 2 || view.Tiers[0].MaxAge != "2w" || view.Tiers[1].MinSpacing != "1w" || view.Horizon != "12w6d" {
		t.Errorf("view = %+v", view)
	}
}

func TestPolicyValidate(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "valid.yaml", `
policy:
  tiers:
    - max_age: 14d
      min_spacing: 1h
`)
	invalid := writeFile(t, dir, "invalid.yaml", `
policy:
  tiers:
    - max_age: 14d
      min_spacing: 1h
    - max_age: 2w
      min_spacing: 1d
output:
  format: xml
`)

	stdout, _, code := execute(t, "", "policy", "validate", "--config", valid)
	if code != 0 || !strings.Contains(stdout, "Configuration valid") {
		t.Errorf("valid config: exit code = %d, stdout = %q", code, stdout)
	}

	stdout, _, code = execute(t, "", "policy", "validate", "--config", invalid)
	if code != cli.ExitFailure {
		t.Errorf("invalid config exit code = %d, want %d", code, cli.ExitFailure)
	}
	for _, want := range []string{"policy.tiers[1]", "output.format"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	if _, _, code := execute(t, "", "policy", "validate", "--config", dir+"/missing.yaml"); code != cli.ExitFailure {
		t.Errorf("missing config exit code = %d, want %d", code, cli.ExitFailure)
	}
}
