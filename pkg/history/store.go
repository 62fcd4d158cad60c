package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/retain/pkg/config"
)

// Query filters reports. Zero fields do not filter.
type Query struct {
	// Since and Until bound StartedAt (inclusive, exclusive).
	Since time.Time
	Until time.Time

	// Status filters by sweep status.
	Status string

	// Limit caps the number of reports returned, newest first.
	Limit int
}

// Store persists sweep reports.
type Store interface {
	// Save inserts or replaces a report.
	Save(ctx context.Context, r *Report) error

	// Get returns a report by ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Report, error)

	// List returns reports matching q, newest first.
	List(ctx context.Context, q Query) ([]*Report, error)

	// Prune deletes reports that started before before and returns how
	// many were deleted.
	Prune(ctx context.Context, before time.Time) (int64, error)

	// Ping checks that the store is usable.
	Ping(ctx context.Context) error

	// Close releases the store.
	Close() error
}

// Open creates the store selected by cfg.
func Open(cfg *config.HistoryConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case DriverModernc, DriverMattn:
		s, err := NewSQLiteStore(&SQLiteConfig{
			Path:        cfg.Path,
			Driver:      cfg.Backend,
			WALMode:     true,
			BusyTimeout: cfg.BusyTimeout.Std(),
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// PruneOlderThan deletes reports older than retention relative to now.
// A zero retention keeps everything.
func PruneOlderThan(ctx context.Context, s Store, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.Prune(ctx, now.Add(-retention))
}
