package session

import (
	"context"
	"sync"
	"time"

	"car-passion/cmd/api/httpclient"
	"car-passion/logger"

	"github.com/google/uuid"
)

// ClientFactory builds a Remote Data Client with a fresh cookie jar.
type ClientFactory func() *httpclient.BaseClient

// Store keeps visitor sessions in memory, expiring them after ttl without activity.
type Store struct {
	ttl       time.Duration
	newClient ClientFactory
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore(ttl time.Duration, newClient ClientFactory) *Store {
	return &Store{
		ttl:       ttl,
		newClient: newClient,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Get returns a live session and refreshes its last-seen time.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(sess, now) {
		s.Delete(id)
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// Create registers a new anonymous-unknown session under a random id.
func (s *Store) Create() *Session {
	sess := New(uuid.NewString(), s.newClient())
	sess.touch(s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// GetOrCreate returns the session for id, creating one when it is missing
// or expired. created reports whether the caller must set a new cookie.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if sess, ok := s.Get(id); ok {
		return sess, false
	}
	return s.Create(), true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.seenAt()) > s.ttl
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.DebugWithFields("expired visitor sessions removed", logger.Fields{
					"removed":   n,
					"remaining": s.Len(),
				})
			}
		}
	}
}
