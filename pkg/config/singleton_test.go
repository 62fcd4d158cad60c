package config

import (
	"sync"
	"testing"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	reset := func() {
		current.mu.Lock()
		current.cfg, current.path = nil, ""
		current.once = sync.Once{}
		current.mu.Unlock()
	}
	reset()
	t.Cleanup(reset)
}

func TestInitialize(t *testing.T) {
	resetGlobal(t)

	path := writeConfig(t, "safety:\n  min_keep: 4\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("GetConfig() = nil after Initialize")
	}
	if cfg.Safety.MinKeep != 4 {
		t.Errorf("safety.min_keep = %d, want 4", cfg.Safety.MinKeep)
	}
	if Path() != path {
		t.Errorf("Path() = %q, want %q", Path(), path)
	}

	// A second call is ignored.
	other := writeConfig(t, "safety:\n  min_keep: 9\n")
	if err := Initialize(other); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if GetConfig().Safety.MinKeep != 4 {
		t.Error("second Initialize() replaced the configuration")
	}
}

func TestReloadConfig_KeepsPreviousOnError(t *testing.T) {
	resetGlobal(t)

	SetConfig(Default())
	before := GetConfig()

	bad := writeConfig(t, "output:\n  format: xml\n")
	if _, err := ReloadConfig(bad); err == nil {
		t.Fatal("ReloadConfig() with invalid file should fail")
	}
	if GetConfig() != before {
		t.Error("failed reload replaced the configuration")
	}

	good := writeConfig(t, "output:\n  format: json\n")
	cfg, err := ReloadConfig(good)
	if err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if GetConfig() != cfg || cfg.Output.Format != "json" {
		t.Error("successful reload did not replace the configuration")
	}

	// An empty path reloads the last file.
	again, err := ReloadConfig("")
	if err != nil {
		t.Fatalf("ReloadConfig(\"\") error = %v", err)
	}
	if again == cfg || again.Output.Format != "json" {
		t.Error("ReloadConfig(\"\") did not reload the last file")
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	resetGlobal(t)

	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig() did not panic without configuration")
		}
	}()
	MustGetConfig()
}
