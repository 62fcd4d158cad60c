package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/history"
	"mercator-hq/retain/pkg/source"
	"mercator-hq/retain/pkg/timestamp"
)

func newExtractor(cfg *config.InputConfig) (*timestamp.Extractor, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("input.timezone: %w", err)
	}
	return timestamp.NewExtractor(cfg.Patterns, loc)
}

// newSource picks the record source: a directory when dir is set, the named
// files, or stdin.
func newSource(cfg *config.InputConfig, dir string, files []string, stdin io.Reader) (source.Source, error) {
	x, err := newExtractor(cfg)
	if err != nil {
		return nil, err
	}

	switch {
	case dir != "":
		m, err := source.NewMatcher(cfg.Include, cfg.Exclude)
		if err != nil {
			return nil, err
		}
		return source.NewDirectory(dir, m, x), nil
	case len(files) > 0:
		return source.Files(x, files...), nil
	default:
		return source.NewLines(x, source.Input{Name: "stdin", Reader: stdin}), nil
	}
}

// openHistory opens the history store when enabled. The returned store is
// nil otherwise.
func openHistory(cfg *config.HistoryConfig, logger *slog.Logger) (history.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return store, nil
}

// openHistoryAlways opens the history store regardless of history.enabled,
// for commands that inspect it.
func openHistoryAlways(cfg *config.HistoryConfig, logger *slog.Logger) (history.Store, error) {
	c := *cfg
	c.Enabled = true
	return openHistory(&c, logger)
}

// parseNow parses the --now flag. Empty means the wall clock.
func parseNow(s string) (func() time.Time, error) {
	if s == "" {
		return time.Now, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid --now %q: want RFC 3339 such as 2024-06-15T00:00:00Z", s)
	}
	return func() time.Time { return t }, nil
}
