package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stay_offers/internal/domain"
)

// SessionStore keeps one Intent per call id, refreshing the TTL on every write.
type SessionStore struct {
	c   *redis.Client
	ttl time.Duration
}

func NewSessionStore(c *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{c: c, ttl: ttl}
}

func sessionKey(callID string) string { return "session:" + callID }

func (s *SessionStore) Get(ctx context.Context, callID string) (domain.Intent, error) {
	b, err := s.c.Get(ctx, sessionKey(callID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Intent{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Intent{}, fmt.Errorf("get session %s: %w", callID, err)
	}
	var in domain.Intent
	if err := json.Unmarshal(b, &in); err != nil {
		return domain.Intent{}, fmt.Errorf("decode session %s: %w", callID, err)
	}
	return in, nil
}

func (s *SessionStore) Put(ctx context.Context, callID string, in domain.Intent) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", callID, err)
	}
	return s.c.Set(ctx, sessionKey(callID), b, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, callID string) error {
	return s.c.Del(ctx, sessionKey(callID)).Err()
}
