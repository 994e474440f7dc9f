package store

import (
	"context"
	"time"
)

// EventKind classifies one audited server event.
type EventKind string

const (
	EventJoin       EventKind = "join"
	EventLogout     EventKind = "logout"
	EventDisconnect EventKind = "disconnect"
	EventBan        EventKind = "ban"
	EventUnban      EventKind = "unban"
	EventRejected   EventKind = "rejected"
	EventShutdown   EventKind = "shutdown"
)

// Event is one session-lifecycle or moderation record. Chat bodies are
// never stored here; this is operational audit data only.
type Event struct {
	ID        int64
	Kind      EventKind
	SessionID int64
	Username  string
	// Target is the other username involved, e.g. who got banned.
	Target    string
	CreatedAt time.Time
}

// AuditStore persists server events.
type AuditStore interface {
	// RecordEvent appends one event.
	RecordEvent(ctx context.Context, ev *Event) error

	// ListEvents returns the most recent events, newest first, optionally
	// filtered by username. A non-positive limit means a default page.
	ListEvents(ctx context.Context, username string, limit int) ([]*Event, error)

	// Close closes the underlying database connection.
	Close() error
}

// Nop returns an AuditStore that discards writes and lists nothing,
// used when auditing is disabled.
func Nop() AuditStore { return nopStore{} }

type nopStore struct{}

func (nopStore) RecordEvent(context.Context, *Event) error { return nil }

func (nopStore) ListEvents(context.Context, string, int) ([]*Event, error) { return nil, nil }

func (nopStore) Close() error { return nil }
