package config

import (
	"fmt"
	"sync"
)

// current is the process-wide configuration shared by the commands and by
// watch mode reloads.
var current struct {
	mu   sync.RWMutex
	once sync.Once
	cfg  *Config
	path string
}

// Initialize loads path with environment overrides into the process-wide
// configuration. Only the first call has an effect. An empty path means
// defaults plus environment.
func Initialize(path string) error {
	var err error
	current.once.Do(func() {
		var cfg *Config
		cfg, err = LoadConfigWithEnvOverrides(path)
		if err != nil {
			return
		}
		current.mu.Lock()
		current.cfg, current.path = cfg, path
		current.mu.Unlock()
	})
	return err
}

// GetConfig returns the process-wide configuration, or nil before
// Initialize or SetConfig.
func GetConfig() *Config {
	current.mu.RLock()
	defer current.mu.RUnlock()
	return current.cfg
}

// SetConfig replaces the process-wide configuration.
func SetConfig(cfg *Config) {
	current.mu.Lock()
	current.cfg = cfg
	current.mu.Unlock()
}

// Path returns the file the configuration was initialized or last reloaded
// from.
func Path() string {
	current.mu.RLock()
	defer current.mu.RUnlock()
	return current.path
}

// ReloadConfig loads path again and swaps it in. An empty path reuses Path().
// On error the running configuration is left untouched.
func ReloadConfig(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}

	current.mu.Lock()
	current.cfg, current.path = cfg, path
	current.mu.Unlock()
	return cfg, nil
}

// MustGetConfig is GetConfig for callers that cannot run unconfigured.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
