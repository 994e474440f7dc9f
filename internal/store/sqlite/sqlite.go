package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ibaimoya/sockchat/internal/store"
)

const defaultListLimit = 100

// SQLiteStore implements store.AuditStore for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT    NOT NULL,
	session_id INTEGER NOT NULL DEFAULT 0,
	username   TEXT    NOT NULL,
	target     TEXT    NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_events_username
	ON audit_events(username, created_at DESC);
`

// New creates a SQLite audit store at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordEvent appends one audit event.
func (s *SQLiteStore) RecordEvent(ctx context.Context, ev *store.Event) error {
	query := `
		INSERT INTO audit_events (kind, session_id, username, target)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, string(ev.Kind), ev.SessionID, ev.Username, ev.Target)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	ev.ID = id
	return nil
}

// ListEvents returns recent events, newest first, optionally filtered by username.
func (s *SQLiteStore) ListEvents(ctx context.Context, username string, limit int) ([]*store.Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, kind, session_id, username, target, created_at
		FROM audit_events
		WHERE (? = '' OR username = ?)
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, username, username, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []*store.Event
	for rows.Next() {
		var ev store.Event
		var kind string
		if err := rows.Scan(&ev.ID, &kind, &ev.SessionID, &ev.Username, &ev.Target, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Kind = store.EventKind(kind)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
