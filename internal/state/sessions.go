package state

import (
	"sync"
	"time"

	"skillboard/internal/models"

	"github.com/google/uuid"
)

// Session is the per-client application state
type Session struct {
	Page      models.Page
	UpdatedAt time.Time
}

// Sessions tracks the current page of every browser session
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessions creates an empty session store
func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// NewSessionID returns a fresh random session id
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id looks like an id issued by NewSessionID
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Current returns the page of the session, DefaultPage for unknown sessions
func (s *Sessions) Current(id string) models.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[id]; ok {
		return sess.Page
	}
	return models.DefaultPage
}

// Navigate sets the current page of the session
func (s *Sessions) Navigate(id string, page models.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{}
		s.sessions[id] = sess
	}
	sess.Page = page
	sess.UpdatedAt = s.now()
}

// Prune drops sessions idle for longer than maxIdle and returns how many were removed
func (s *Sessions) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sessions
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
