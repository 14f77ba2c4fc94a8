package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"stay_offers/internal/adapters/memory"
	"stay_offers/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestSessionStore_ExpiresAndIsolates(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 20, 15, 0, 0, 0, time.UTC)}
	s := memory.NewSessionStore(10*time.Minute, clk)
	ctx := context.Background()

	adults := 2
	if err := s.Put(ctx, "c1", domain.Intent{Adults: &adults}); err != nil {
		t.Fatalf("put: %v", err)
	}
	adults = 5 // caller's pointer must not leak into the store

	got, err := s.Get(ctx, "c1")
	if err != nil || got.Adults == nil || *got.Adults != 2 {
		t.Fatalf("get: %+v %v", got, err)
	}
	*got.Adults = 9
	again, _ := s.Get(ctx, "c1")
	if *again.Adults != 2 {
		t.Fatalf("stored intent mutated through a returned copy: %d", *again.Adults)
	}

	clk.t = clk.t.Add(10 * time.Minute)
	if _, err := s.Get(ctx, "c1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("want expiry, got %v", err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	s := memory.NewSessionStore(time.Hour, nil)
	ctx := context.Background()
	_ = s.Put(ctx, "c1", domain.Intent{})
	_ = s.Delete(ctx, "c1")
	if _, err := s.Get(ctx, "c1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("got %v", err)
	}
}
