// Package history keeps a local SQLite log of workflow notifications so that
// transitions seen by a watch session can be reviewed later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/sdd-engine/sdd/internal/workflow"
)

// schema is executed on every open; IF NOT EXISTS keeps it idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS notifications (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    kind          TEXT NOT NULL,
    workflow_id   TEXT NOT NULL,
    item_title    TEXT NOT NULL DEFAULT '',
    item_location TEXT NOT NULL DEFAULT '',
    message       TEXT NOT NULL,
    recorded_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_workflow ON notifications(workflow_id);
`

// Entry is a recorded notification.
type Entry struct {
	ID           int64
	Notification workflow.Notification
	Message      string
	RecordedAt   time.Time
}

// Filter narrows List results. Zero values mean no restriction.
type Filter struct {
	WorkflowID string
	Kind       workflow.NotificationKind
	Limit      int
}

// Store is a notification log backed by SQLite in WAL mode.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema. The
// parent directory must already exist; Open never creates directories, so a
// history database inside .sdd/ cannot bring a project into being.
func Open(ctx context.Context, path string) (*Store, error) {
	if info, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("history: %s is not a directory", filepath.Dir(path))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// SQLite has a single writer; one pooled connection keeps the PRAGMAs
	// below in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends notifications in a single transaction, all stamped with at.
func (s *Store) Record(ctx context.Context, notes []workflow.Notification, at time.Time) error {
	if len(notes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const q = `
		INSERT INTO notifications (kind, workflow_id, item_title, item_location, message, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("history: prepare insert: %w", err)
	}
	defer stmt.Close()

	ts := at.UTC().Format(time.RFC3339Nano)
	for _, n := range notes {
		if _, err := stmt.ExecContext(ctx, string(n.Kind), n.WorkflowID, n.ItemTitle, n.ItemLocation, n.Message(), ts); err != nil {
			return fmt.Errorf("history: record %s for %q: %w", n.Kind, n.WorkflowID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// List returns recorded notifications, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.WorkflowID != "" {
		where = append(where, "workflow_id = ?")
		args = append(args, f.WorkflowID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}

	q := `SELECT id, kind, workflow_id, item_title, item_location, message, recorded_at FROM notifications`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
			ts   string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Notification.WorkflowID, &e.Notification.ItemTitle,
			&e.Notification.ItemLocation, &e.Message, &ts); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.Notification.Kind = workflow.NotificationKind(kind)
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("history: parse timestamp %q: %w", ts, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate: %w", err)
	}
	return out, nil
}
