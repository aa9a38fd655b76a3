// Package session holds the user server's in-memory session directory.
package session

import (
	"sync"
	"time"

	"github.com/statushub/statushub/internal/model"
)

// Store is a lock-protected in-memory session directory. One map-wide
// RWMutex is enough at the expected contention; lookups for different users
// proceed in parallel under the read lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	now      func() time.Time
}

var _ model.SessionStore = (*Store)(nil)

// NewStore creates an empty session directory.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]model.Session),
		now:      time.Now,
	}
}

// Get returns the session for userID. A session whose token has expired is
// evicted and reported as absent, so a session never outlives its token.
func (s *Store) Get(userID string) (model.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return model.Session{}, false
	}

	if !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		s.mu.Lock()
		// re-check under the write lock: the user may have re-signed on
		if cur, ok := s.sessions[userID]; ok && cur.ExpiresAt.Equal(sess.ExpiresAt) {
			delete(s.sessions, userID)
		}
		s.mu.Unlock()
		return model.Session{}, false
	}

	return sess, true
}

// Put inserts or replaces the session keyed by its user id.
func (s *Store) Put(sess model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
}

// Delete removes the session for userID, reporting whether one existed.
func (s *Store) Delete(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}

// Len returns the number of live entries. Expired but not yet evicted
// entries are counted; only Get performs eviction.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
