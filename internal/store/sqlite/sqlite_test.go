package sqlite

import (
	"context"
	"testing"

	"github.com/ibaimoya/sockchat/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []*store.Event{
		{Kind: store.EventJoin, SessionID: 1, Username: "alice"},
		{Kind: store.EventJoin, SessionID: 2, Username: "bob"},
		{Kind: store.EventBan, SessionID: 1, Username: "alice", Target: "bob"},
		{Kind: store.EventLogout, SessionID: 2, Username: "bob"},
	}
	for _, ev := range seed {
		if err := s.RecordEvent(ctx, ev); err != nil {
			t.Fatalf("record %s: %v", ev.Kind, err)
		}
		if ev.ID == 0 {
			t.Fatalf("event %s did not get an id", ev.Kind)
		}
	}

	all, err := s.ListEvents(ctx, "", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != len(seed) {
		t.Fatalf("listed %d events, want %d", len(all), len(seed))
	}
	// Newest first.
	if all[0].Kind != store.EventLogout || all[0].Username != "bob" {
		t.Fatalf("first event = %+v, want bob's logout", all[0])
	}
	if all[0].CreatedAt.IsZero() {
		t.Fatal("created_at not populated")
	}

	tests := []struct {
		name     string
		username string
		limit    int
		want     int
	}{
		{"filter alice", "alice", 0, 2},
		{"filter bob", "bob", 0, 2},
		{"filter unknown", "ghost", 0, 0},
		{"limit applies", "", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := s.ListEvents(ctx, tt.username, tt.limit)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(events) != tt.want {
				t.Fatalf("listed %d events, want %d", len(events), tt.want)
			}
			for _, ev := range events {
				if tt.username != "" && ev.Username != tt.username {
					t.Fatalf("event %+v leaked into filter %q", ev, tt.username)
				}
			}
		})
	}
}

func TestBanEventCarriesTarget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := &store.Event{Kind: store.EventBan, SessionID: 7, Username: "alice", Target: "bob"}
	if err := s.RecordEvent(ctx, ev); err != nil {
		t.Fatalf("record: %v", err)
	}

	events, err := s.ListEvents(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("listed %d events, want 1", len(events))
	}
	got := events[0]
	if got.Kind != store.EventBan || got.Target != "bob" || got.SessionID != 7 {
		t.Fatalf("event = %+v", got)
	}
}
