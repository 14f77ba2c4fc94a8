// Package memory holds in-process adapters for single-instance and dev runs.
package memory

import (
	"context"
	"sync"
	"time"

	"stay_offers/internal/domain"
)

type entry struct {
	in      domain.Intent
	expires time.Time
}

// SessionStore is a TTL map of call id to Intent. Expired entries are dropped
// lazily on read.
type SessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	clock domain.Clock
	items map[string]entry
}

func NewSessionStore(ttl time.Duration, clock domain.Clock) *SessionStore {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &SessionStore{ttl: ttl, clock: clock, items: map[string]entry{}}
}

func (s *SessionStore) Get(_ context.Context, callID string) (domain.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[callID]
	if !ok {
		return domain.Intent{}, domain.ErrSessionNotFound
	}
	if s.ttl > 0 && !s.clock.Now().Before(e.expires) {
		delete(s.items, callID)
		return domain.Intent{}, domain.ErrSessionNotFound
	}
	return e.in.Clone(), nil
}

func (s *SessionStore) Put(_ context.Context, callID string, in domain.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[callID] = entry{in: in.Clone(), expires: s.clock.Now().Add(s.ttl)}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, callID)
	return nil
}
