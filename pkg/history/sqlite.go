package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"
)

// SQLite driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// SQLiteConfig contains SQLite store settings.
type SQLiteConfig struct {
	// Path is the database file. ":memory:" opens a private database.
	Path string

	// Driver is DriverModernc or DriverMattn.
	Driver string

	// WALMode enables write-ahead logging.
	WALMode bool

	// BusyTimeout is how long to wait on a locked database.
	BusyTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultSQLiteConfig returns the default configuration for path.
func DefaultSQLiteConfig(path string) *SQLiteConfig {
	return &SQLiteConfig{
		Path:        path,
		Driver:      DriverModernc,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (and if needed creates) the database described by
// config.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	driver := config.Driver
	if driver == "" {
		driver = DriverModernc
	}
	if driver != DriverModernc && driver != DriverMattn {
		return nil, NewStorageError(driver, "open", fmt.Errorf("unsupported driver %q", driver))
	}

	if config.Path != ":memory:" {
		if dir := filepath.Dir(config.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, NewStorageError(driver, "open", err)
			}
		}
	}

	db, err := sql.Open(driver, config.Path)
	if err != nil {
		return nil, NewStorageError(driver, "open", err)
	}
	// One connection keeps pragmas and ":memory:" databases consistent.
	db.SetMaxOpenConns(1)

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger.With("component", "history.sqlite", "driver", driver),
	}
	s.config.Driver = driver

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("history store opened", "path", config.Path, "wal_mode", config.WALMode)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError(s.config.Driver, "initialize", fmt.Errorf("failed to enable WAL mode: %w", err))
		}
	}

	if s.config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(pragma); err != nil {
			return NewStorageError(s.config.Driver, "initialize", fmt.Errorf("failed to set busy timeout: %w", err))
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError(s.config.Driver, "initialize", fmt.Errorf("failed to create schema: %w", err))
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return NewStorageError(s.config.Driver, "initialize", fmt.Errorf("failed to insert schema version: %w", err))
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return NewStorageError(s.config.Driver, "initialize", fmt.Errorf("failed to read schema version: %w", err))
	}
	if version != SchemaVersion {
		return NewStorageError(s.config.Driver, "initialize",
			fmt.Errorf("schema version mismatch: expected %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, r *Report) error {
	ids, err := json.Marshal(nonNil(r.DiscardIDs))
	if err != nil {
		return NewStorageError(s.config.Driver, "save", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO sweep_reports (
    id, started_at, finished_at, reference_now, trigger, source, policy,
    status, min_keep, safe, forced, kept, discarded, unmatched, duplicates,
    discard_ids, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, unixNano(r.StartedAt), unixNano(r.FinishedAt), unixNano(r.Now),
		r.Trigger, r.Source, r.Policy, r.Status, r.MinKeep,
		boolInt(r.Safe), boolInt(r.Forced),
		r.Kept, r.Discarded, r.Unmatched, r.Duplicates,
		string(ids), r.Error,
	)
	if err != nil {
		return NewStorageError(s.config.Driver, "save", err)
	}

	s.logger.Debug("report saved", "report_id", r.ID, "status", r.Status)
	return nil
}

const selectColumns = `
SELECT id, started_at, finished_at, reference_now, trigger, source, policy,
       status, min_keep, safe, forced, kept, discarded, unmatched, duplicates,
       discard_ids, error
FROM sweep_reports`

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Report, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "get", err)
	}
	return r, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, q Query) ([]*Report, error) {
	var (
		where []string
		args  []any
	)
	if !q.Since.IsZero() {
		where = append(where, "started_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		where = append(where, "started_at < ?")
		args = append(args, q.Until.UnixNano())
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "list", err)
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, NewStorageError(s.config.Driver, "list", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.config.Driver, "list", err)
	}
	return out, nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sweep_reports WHERE started_at < ?", before.UnixNano())
	if err != nil {
		return 0, NewStorageError(s.config.Driver, "prune", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError(s.config.Driver, "prune", err)
	}
	if n > 0 {
		s.logger.Info("pruned history", "deleted", n, "before", before)
	}
	return n, nil
}

// Ping implements Store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStorageError(s.config.Driver, "ping", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError(s.config.Driver, "close", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*Report, error) {
	var (
		r                         Report
		started, finished, refNow int64
		safe, forced              int
		ids                       string
	)
	err := sc.Scan(
		&r.ID, &started, &finished, &refNow, &r.Trigger, &r.Source, &r.Policy,
		&r.Status, &r.MinKeep, &safe, &forced,
		&r.Kept, &r.Discarded, &r.Unmatched, &r.Duplicates,
		&ids, &r.Error,
	)
	if err != nil {
		return nil, err
	}
	r.StartedAt = fromUnixNano(started)
	r.FinishedAt = fromUnixNano(finished)
	r.Now = fromUnixNano(refNow)
	r.Safe = safe != 0
	r.Forced = forced != 0
	if err := json.Unmarshal([]byte(ids), &r.DiscardIDs); err != nil {
		return nil, fmt.Errorf("decode discard ids: %w", err)
	}
	if len(r.DiscardIDs) == 0 {
		r.DiscardIDs = nil
	}
	return &r, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
