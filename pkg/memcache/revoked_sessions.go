package mem

import (
	"sync"
	"time"
)

// SessionStore remembers signed-out session ids until their tokens would
// have expired anyway.
type SessionStore interface {
	Revoke(sessionID string, until time.Time)
	IsRevoked(sessionID string) bool
}

type RevokedSessions struct {
	mu   sync.RWMutex
	data map[string]time.Time
	now  func() time.Time
}

func NewRevokedSessions() *RevokedSessions {
	return &RevokedSessions{
		data: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (s *RevokedSessions) Revoke(sessionID string, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked()
	s.data[sessionID] = until
}

func (s *RevokedSessions) IsRevoked(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	until, ok := s.data[sessionID]
	return ok && s.now().Before(until)
}

func (s *RevokedSessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// purgeLocked drops entries whose tokens have expired. Callers hold mu.
func (s *RevokedSessions) purgeLocked() {
	now := s.now()
	for id, until := range s.data {
		if !now.Before(until) {
			delete(s.data, id)
		}
	}
}
