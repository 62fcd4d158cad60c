package history

// SchemaVersion is the current history schema version.
const SchemaVersion = 1

// Schema creates the history tables. Times are stored as Unix nanoseconds so
// both SQLite drivers read them back identically.
const Schema = `
CREATE TABLE IF NOT EXISTS sweep_reports (
    id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    reference_now INTEGER NOT NULL,
    trigger TEXT NOT NULL,
    source TEXT NOT NULL,
    policy TEXT NOT NULL,
    status TEXT NOT NULL,
    min_keep INTEGER NOT NULL,
    safe INTEGER NOT NULL,
    forced INTEGER NOT NULL,
    kept INTEGER NOT NULL,
    discarded INTEGER NOT NULL,
    unmatched INTEGER NOT NULL,
    duplicates INTEGER NOT NULL,
    discard_ids TEXT NOT NULL DEFAULT '[]',
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sweep_reports_started_at ON sweep_reports(started_at);
CREATE INDEX IF NOT EXISTS idx_sweep_reports_status ON sweep_reports(status);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?);
`

// GetSchemaVersion returns the newest applied schema version.
const GetSchemaVersion = `
SELECT COALESCE(MAX(version), 0) FROM schema_version;
`
