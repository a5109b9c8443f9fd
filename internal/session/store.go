package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown or expired session ID.
var ErrNotFound = errors.New("session not found")

// Session is a point-in-time copy of a stored session.
type Session struct {
	ID        string
	Symptoms  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type entry struct {
	selection Selection
	created   time.Time
	updated   time.Time
}

// Store holds sessions in memory. It is safe for concurrent use.
type Store struct {
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// A ttl of zero keeps sessions until they are deleted.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts an empty session.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := uuid.NewString()
	e := &entry{created: now, updated: now}
	s.sessions[id] = e
	return e.snapshot(id)
}

// Get returns the session with id.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return e.snapshot(id), nil
}

// Update runs fn on the session's selection under the store lock. The
// session's activity time is refreshed even if fn returns an error.
func (s *Store) Update(id string, fn func(sel *Selection) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	e.updated = s.now()
	err := fn(&e.selection)
	return e.snapshot(id), err
}

// Delete removes the session with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.updated) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// TTL returns the idle timeout.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (e *entry) snapshot(id string) Session {
	return Session{
		ID:        id,
		Symptoms:  e.selection.Names(),
		CreatedAt: e.created,
		UpdatedAt: e.updated,
	}
}
