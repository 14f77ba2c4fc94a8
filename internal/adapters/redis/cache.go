package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stay_offers/internal/adapters/observability"
)

func Connect(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// Cache stores JSON values under a key prefix.
type Cache struct {
	c      *redis.Client
	prefix string
}

func NewCache(c *redis.Client, prefix string) *Cache {
	return &Cache{c: c, prefix: prefix}
}

func (r *Cache) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	if err := json.Unmarshal(v, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, r.key(key), b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, r.key(key)).Err()
}
