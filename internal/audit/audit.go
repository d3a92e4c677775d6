// ABOUTME: Append-only audit log of gateway mutations using modernc.org/sqlite
// ABOUTME: Records session lifecycle and variable writes for debugging

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Action represents an auditable gateway action.
type Action string

const (
	ActionCreateSession  Action = "create_session"
	ActionDestroySession Action = "destroy_session"
	ActionSetVariable    Action = "set_variable"
)

// Entry is a single audit log entry.
type Entry struct {
	ID        string    // UUID v4
	Action    Action    // what happened
	SessionID string    // gateway session handle
	Subject   string    // authenticated caller, empty when auth is off
	Target    string    // variable name or store path
	Timestamp time.Time // when it happened
}

// Log is an append-only SQLite-backed audit log.
type Log struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the audit log at the given path. The schema is created
// if it does not exist; parent directories are created if needed.
func Open(path string) (*Log, error) {
	logger := slog.Default().With("component", "audit")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	// WAL keeps readers from blocking the writer
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	l := &Log{db: db, logger: logger}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("audit log initialized", "path", path)
	return l, nil
}

// createSchema creates the audit table if it doesn't exist
func (l *Log) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS audit_log (
			id         TEXT PRIMARY KEY,
			action     TEXT NOT NULL,
			session_id TEXT NOT NULL,
			subject    TEXT NOT NULL DEFAULT '',
			target     TEXT NOT NULL DEFAULT '',
			ts         DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_log(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_log(session_id);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record appends one entry. The ID and timestamp are filled in when
// empty. Recording failures are returned, never fatal; the gateway
// logs and continues.
func (l *Log) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, session_id, subject, target, ts)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Action), e.SessionID, e.Subject, e.Target, e.Timestamp)
	if err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, action, session_id, subject, target, ts
		FROM audit_log ORDER BY ts DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var action string
		if err := rows.Scan(&e.ID, &action, &e.SessionID, &e.Subject, &e.Target, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Action = Action(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database handle.
func (l *Log) Close() error {
	return l.db.Close()
}
