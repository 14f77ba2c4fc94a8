package domain

import (
	"context"
	"time"
)

type InventoryProvider interface {
	Snapshot(ctx context.Context, q AvailabilityQuery) (InventorySnapshot, error)
}

type PropertyContextProvider interface {
	GetPropertyContext(ctx context.Context, propertyID string) (PropertyContext, error)
}

// SessionStore holds one Intent per call id.
type SessionStore interface {
	Get(ctx context.Context, callID string) (Intent, error) // ErrSessionNotFound when absent
	Put(ctx context.Context, callID string, in Intent) error
	Delete(ctx context.Context, callID string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock; only mains should construct it.
var SystemClock Clock = ClockFunc(time.Now)
