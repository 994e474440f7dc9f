package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/ibaimoya/sockchat/internal/transport"
)

// Session is the server-side record of one connected client. The id is
// assigned at accept time and never reused; the username is the unique
// registry key while the session is live.
type Session struct {
	ID          int64
	Username    string
	ConnectedAt time.Time

	conn *transport.Conn

	mu     sync.Mutex
	banned map[string]struct{}
}

func newSession(id int64, username string, conn *transport.Conn) *Session {
	return &Session{
		ID:          id,
		Username:    username,
		ConnectedAt: time.Now(),
		conn:        conn,
		banned:      make(map[string]struct{}),
	}
}

// Ban mutes target for this session. Banning yourself is rejected.
// Banning an absent or already banned username is not an error; the ban
// simply applies (or keeps applying) whenever that username is connected.
func (s *Session) Ban(target string) error {
	if target == s.Username {
		return chatError(ErrCodeSelfBan, "you cannot ban yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.banned[target] = struct{}{}
	return nil
}

// Unban lifts a mute previously set with Ban.
func (s *Session) Unban(target string) error {
	if target == s.Username {
		return chatError(ErrCodeSelfBan, "you cannot unban yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banned[target]; !ok {
		return chatError(ErrCodeNotBanned, fmt.Sprintf("%s is not banned", target))
	}
	delete(s.banned, target)
	return nil
}

// HasBanned reports whether this session muted the given username.
func (s *Session) HasBanned(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.banned[username]
	return ok
}

// BanCount reports the size of the session's ban set.
func (s *Session) BanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.banned)
}

// Send writes one display line to the client.
func (s *Session) Send(line string) error {
	return s.conn.WriteLine(line)
}

// Close tears the underlying connection down, unblocking the session's
// handler from its read. Idempotent.
func (s *Session) Close() error {
	return s.conn.Close()
}
