package chat

import (
	"sync"

	"github.com/ibaimoya/sockchat/internal/transport"
)

// Registry is the single source of truth for who is currently connected.
// All mutation and iteration is serialized behind one lock; id allocation
// happens inside Add so a username can never map to two live sessions.
type Registry struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]*Session
}

// NewRegistry builds an empty registry. Ids start at 1.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Session)}
}

// Add allocates the next id and inserts a fresh session, or fails with
// ErrDuplicateUsername when the name is already live. Ids are monotonic
// and never reused, even after the owning session is removed.
func (r *Registry) Add(username string, conn *transport.Conn) (*Session, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[username]; exists {
		return nil, ErrDuplicateUsername
	}

	r.nextID++
	sess := newSession(r.nextID, username, conn)
	r.byName[username] = sess
	return sess, nil
}

// Remove deletes the session registered under username. Returns the removed
// session and true, or nil and false if no such session was live.
func (r *Registry) Remove(username string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.byName[username]
	if !ok {
		return nil, false
	}
	delete(r.byName, username)
	return sess, true
}

// ByName looks a live session up by its username.
func (r *Registry) ByName(username string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byName[username]
	return sess, ok
}

// ByID looks a live session up by its numeric id.
func (r *Registry) ByID(id int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sess := range r.byName {
		if sess.ID == id {
			return sess, true
		}
	}
	return nil, false
}

// Snapshot copies the current session list so fan-out can iterate without
// holding the lock while writing to sockets.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.byName))
	for _, sess := range r.byName {
		out = append(out, sess)
	}
	return out
}

// Usernames lists connected usernames; order is not specified.
func (r *Registry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	return out
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
