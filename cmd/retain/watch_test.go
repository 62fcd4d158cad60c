package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/sweep"
	"mercator-hq/retain/pkg/telemetry/logging"
)

func testWatchConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	writeDir(t, backups, backupName(3*time.Hour), backupName(6*time.Hour))

	cfg := config.Default()
	cfg.Input.Directory = backups
	cfg.History.Enabled = true
	cfg.History.Backend = "memory"
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Schedule.RunOnStart = false
	return cfg
}

// backupName returns an entry name stamped age before the current time.
func backupName(age time.Duration) string {
	return "backup-" + time.Now().UTC().Add(-age).Format("2006-01-02_15-04-05") + ".tar"
}

func writeDir(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	for _, name := range names {
		writeFile(t, dir, name, "")
	}
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(logging.Config{Level: "debug", Writer: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}
	return logger
}

func TestNewWatchService_RequiresDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Directory = ""
	if _, err := newWatchService(cfg, testLogger(t)); err == nil {
		t.Error("newWatchService() without directory should fail")
	}
}

func TestWatchService_Endpoints(t *testing.T) {
	svc, err := newWatchService(testWatchConfig(t), testLogger(t))
	if err != nil {
		t.Fatalf("newWatchService() error = %v", err)
	}
	defer svc.close()

	svc.scheduler.RunNow(context.Background(), sweep.TriggerManual)

	server := httptest.NewServer(svc.handler())
	defer server.Close()

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{path: "/healthz", wantCode: http.StatusOK, wantBody: `"status"`},
		{path: "/readyz", wantCode: http.StatusOK, wantBody: "last_sweep"},
		{path: "/version", wantCode: http.StatusOK, wantBody: Version},
		{path: "/metrics", wantCode: http.StatusOK, wantBody: `retain_sweep_runs_total{status="ok"} 1`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s error = %v", tt.path, err)
			}
			defer resp.Body.Close()

			var body bytes.Buffer
			body.ReadFrom(resp.Body)
			if resp.StatusCode != tt.wantCode {
				t.Errorf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.wantCode)
			}
			if !strings.Contains(body.String(), tt.wantBody) {
				t.Errorf("GET %s body missing %q:\n%s", tt.path, tt.wantBody, body.String())
			}
		})
	}
}

func TestWatchService_Reload(t *testing.T) {
	cfg := testWatchConfig(t)
	svc, err := newWatchService(cfg, testLogger(t))
	if err != nil {
		t.Fatalf("newWatchService() error = %v", err)
	}
	defer svc.close()

	next := config.Default()
	next.Policy.Tiers = []config.TierConfig{{
		MaxAge:     config.Duration(7 * 24 * time.Hour),
		MinSpacing: config.Duration(6 * time.Hour),
	}}
	svc.reload(next)
	if got := svc.sweeper.Config().Policy.String(); got != "168h0m0s:6h0m0s" {
		t.Errorf("policy after reload = %s", got)
	}

	broken := config.Default()
	broken.Policy.Tiers = nil
	svc.reload(broken)
	if got := svc.sweeper.Config().Policy.String(); got != "168h0m0s:6h0m0s" {
		t.Errorf("invalid reload replaced the policy: %s", got)
	}
}

func TestWatch_Once(t *testing.T) {
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	writeDir(t, backups, backupName(time.Hour))

	_, stderr, code := execute(t, "", "watch", "--once", "--dir", backups)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stderr, "sweep completed") {
		t.Errorf("stderr missing sweep log: %s", stderr)
	}
}

func TestWatch_NoDirectory(t *testing.T) {
	if _, _, code := execute(t, "", "watch", "--once"); code != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", code, cli.ExitFailure)
	}
}
