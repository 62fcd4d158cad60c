package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/retention"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "sweep",
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if !collector.Enabled() {
		t.Error("Enabled() = false, want true")
	}
}

func TestCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != "retain" || cfg.Subsystem != "sweep" {
		t.Errorf("defaults = %s/%s, want retain/sweep", cfg.Namespace, cfg.Subsystem)
	}
}

func TestCollector_RecordSweep(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordSweep(SweepObservation{
		Status:     "ok",
		Kept:       10,
		Discarded:  4,
		Unmatched:  1,
		Duration:   5 * time.Millisecond,
		FinishedAt: time.Unix(1718409600, 0),
	})
	collector.RecordSweep(SweepObservation{
		Status:    "blocked",
		Kept:      2,
		Discarded: 30,
		Blocked:   true,
	})

	sm := collector.sweepMetrics
	if got := testutil.ToFloat64(sm.runsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("runs_total{status=ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.runsTotal.WithLabelValues("blocked")); got != 1 {
		t.Errorf("runs_total{status=blocked} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.records.WithLabelValues("discarded")); got != 30 {
		t.Errorf("records{set=discarded} = %v, want 30 from the last sweep", got)
	}
	if got := testutil.ToFloat64(sm.safetyBlocks); got != 1 {
		t.Errorf("safety_blocks_total = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(sm.duration); got != 1 {
		t.Errorf("duration histogram series = %d, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordSweep(SweepObservation{Status: "ok", Kept: 1})
	collector.RecordReload(nil)

	if got := testutil.CollectAndCount(collector.sweepMetrics.runsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d run series", got)
	}

	var nilCollector *Collector
	if nilCollector.Enabled() {
		t.Error("nil collector should report disabled")
	}
	nilCollector.RecordSweep(SweepObservation{})
}

func TestCollector_PolicyMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.SetPolicy(retention.MustPolicy(
		retention.Tier{MaxAge: 14 * retention.Day, MinSpacing: time.Hour},
		retention.Tier{MaxAge: 28 * retention.Day, MinSpacing: retention.Day},
	))
	collector.RecordReload(nil)
	collector.RecordReload(errors.New("bad file"))

	pm := collector.policyMetrics
	if got := testutil.ToFloat64(pm.tiers); got != 2 {
		t.Errorf("policy_tiers = %v, want 2", got)
	}
	if got := testutil.ToFloat64(pm.horizon); got != (28 * retention.Day).Seconds() {
		t.Errorf("policy_horizon_seconds = %v, want %v", got, (28 * retention.Day).Seconds())
	}
	if got := testutil.ToFloat64(pm.reloads.WithLabelValues("failure")); got != 1 {
		t.Errorf("config_reloads_total{result=failure} = %v, want 1", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordSweep(SweepObservation{Status: "ok", Kept: 3})

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `test_sweep_runs_total{status="ok"} 1`) {
		t.Errorf("metrics output missing runs_total:\n%s", body)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordSweep(SweepObservation{Status: "forced", Kept: 1, Discarded: 9})

	path := filepath.Join(t.TempDir(), "retain.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	if !strings.Contains(string(data), `test_sweep_records{set="discarded"} 9`) {
		t.Errorf("textfile missing records gauge:\n%s", data)
	}
}

func TestCollector_WriteTextfileBadPath(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	err := collector.WriteTextfile(filepath.Join(t.TempDir(), "missing", "retain.prom"))
	if err == nil {
		t.Fatal("WriteTextfile() into a missing directory should fail")
	}
}
