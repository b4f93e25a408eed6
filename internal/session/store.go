// Package session holds per-operator conversation state in memory.
// Sessions exist only while an operator is mid-flow; there is no persistence.
package session

import (
	"sync"

	"github.com/ad/go-telegram-broadcast/internal/models"
)

// Session tracks one operator's progress through broadcast composition.
type Session struct {
	UserID int64
	State  string
	Draft  models.Draft
}

// Store is a concurrency-safe map of operator ID to session. Values are
// copied on the way in and out so callers never share mutable drafts.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]Session),
	}
}

// Get returns a copy of the session for a user, if one exists.
func (s *Store) Get(userID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

func (s *Store) Save(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
}

// Clear removes a user's session. Clearing an absent session is a no-op.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// InProgress reports whether the user currently has an active session.
func (s *Store) InProgress(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[userID]
	return ok
}
