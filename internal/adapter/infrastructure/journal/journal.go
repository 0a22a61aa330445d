// Package journal provides a Journal adapter storing reconciliation runs in SQLite.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"golang-netstate/internal/pkg/logging"
	"golang-netstate/internal/port"
	"golang-netstate/internal/types"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS runs(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	operation TEXT NOT NULL,
	interfaces TEXT NOT NULL,
	check_mode INTEGER NOT NULL,
	changed INTEGER NOT NULL,
	error TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts);`

// SQLiteJournal is an adapter that implements the Journal port using modernc.org/sqlite.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// Ensure SQLiteJournal implements the Journal port
var _ port.Journal = (*SQLiteJournal)(nil)

// Open opens or creates the journal database at path. Missing parent directories are created
// through fileMgr.
func Open(ctx context.Context, fileMgr port.FileManager, path string) (*SQLiteJournal, error) {
	if err := fileMgr.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	logging.WithComponent("journal").WithField("path", path).Debug("Opened journal")
	return &SQLiteJournal{db: db, path: path}, nil
}

// Record stores one run.
func (j *SQLiteJournal) Record(ctx context.Context, entry types.JournalEntry) error {
	interfaces, err := json.Marshal(entry.Interfaces)
	if err != nil {
		return fmt.Errorf("failed to encode interfaces: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO runs(ts, operation, interfaces, check_mode, changed, error) VALUES(?,?,?,?,?,?)`,
		entry.Time.UnixNano(), entry.Operation, string(interfaces), entry.CheckMode, entry.Changed, entry.Error)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List returns up to limit runs, newest first. A limit of zero or less returns every run.
func (j *SQLiteJournal) List(ctx context.Context, limit int) ([]types.JournalEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, ts, operation, interfaces, check_mode, changed, error FROM runs ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var entries []types.JournalEntry
	for rows.Next() {
		var (
			entry      types.JournalEntry
			ts         int64
			interfaces string
		)
		if err := rows.Scan(&entry.ID, &ts, &entry.Operation, &interfaces, &entry.CheckMode, &entry.Changed, &entry.Error); err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		if err := json.Unmarshal([]byte(interfaces), &entry.Interfaces); err != nil {
			return nil, fmt.Errorf("failed to decode interfaces of run %d: %w", entry.ID, err)
		}
		entry.Time = time.Unix(0, ts)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return entries, nil
}

// Close closes the database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
