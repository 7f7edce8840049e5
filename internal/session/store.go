// Package session provides the in-memory session store. Sessions expire a
// fixed TTL after their last write; a scheduler calls Sweep periodically.
// Cross-restart persistence is intentionally not provided.
package session

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/coanalystai/coanalyst/internal/analyst/core"
)

type entry struct {
	session *core.Session
	expires time.Time
}

// Store implements core.SessionStore.
type Store struct {
	logger *log.Logger
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewStore creates a store whose sessions live ttl past their last write.
// A non-positive ttl disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		logger:   log.New(log.Writer(), "[SESSIONS] ", log.LstdFlags),
		ttl:      ttl,
		sessions: map[string]*entry{},
	}
}

// Put stores a copy of the session and refreshes its expiry.
func (st *Store) Put(s *core.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session id required")
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	e := &entry{session: clone(s)}
	if st.ttl > 0 {
		e.expires = time.Now().Add(st.ttl)
	}
	st.sessions[s.ID] = e
	return nil
}

// Get returns a copy of a live session.
func (st *Store) Get(id string) (*core.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		return nil, false
	}
	return clone(e.session), true
}

// Delete removes a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// List returns copies of all live sessions.
func (st *Store) List() []*core.Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	now := time.Now()
	var out []*core.Session
	for _, e := range st.sessions {
		if !e.expires.IsZero() && now.After(e.expires) {
			continue
		}
		out = append(out, clone(e.session))
	}
	return out
}

// Sweep removes expired sessions and returns how many were dropped.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, e := range st.sessions {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		st.logger.Printf("swept %d expired sessions", removed)
	}
	return removed
}

// Len reports the number of stored sessions, expired or not.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// clone copies the session so callers never share slices or maps with the
// stored copy.
func clone(s *core.Session) *core.Session {
	c := *s
	c.Plan = append([]core.Step(nil), s.Plan...)
	c.Results = append([]core.StepResult(nil), s.Results...)
	c.Context = map[string]interface{}{}
	for k, v := range s.Context {
		c.Context[k] = v
	}
	return &c
}
