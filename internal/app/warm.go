package app

import (
	"context"
	"fmt"
	"time"

	"stay_offers/internal/dates"
	"stay_offers/internal/domain"
)

// WarmService pre-fetches property context and one-night snapshots into the
// cache so the first caller of the day does not pay the provider latency.
type WarmService struct {
	offers *OfferService
	clock  domain.Clock
}

func NewWarmService(o *OfferService, clock domain.Clock) *WarmService {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &WarmService{offers: o, clock: clock}
}

// Windows lists the one-night stays starting today through daysAhead-1 days
// out, in loc.
func (w *WarmService) Windows(daysAhead int, loc *time.Location) [][2]string {
	if loc == nil {
		loc = time.UTC
	}
	today := w.clock.Now().In(loc).Format(dates.ISOLayout)
	out := make([][2]string, 0, max(daysAhead, 0))
	for i := 0; i < daysAhead; i++ {
		in, err := dates.AddDays(today, i)
		if err != nil {
			continue
		}
		next, err := dates.AddDays(today, i+1)
		if err != nil {
			continue
		}
		out = append(out, [2]string{in, next})
	}
	return out
}

// WarmProperty refreshes the property's cached context.
func (w *WarmService) WarmProperty(ctx context.Context, propertyID string) error {
	if w.offers.cache != nil {
		_ = w.offers.cache.Del(ctx, propertyKey(propertyID))
	}
	if _, err := w.offers.propertyContext(ctx, propertyID); err != nil {
		return fmt.Errorf("warm property %s: %w", propertyID, err)
	}
	return nil
}

// WarmSnapshot refreshes the cached snapshot for a two-adult, one-room stay.
func (w *WarmService) WarmSnapshot(ctx context.Context, propertyID, checkIn, checkOut string) error {
	q := domain.AvailabilityQuery{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Adults:     2,
		Rooms:      1,
	}
	if _, err := w.offers.snapshot(ctx, q, true); err != nil {
		return fmt.Errorf("warm snapshot %s %s: %w", propertyID, checkIn, err)
	}
	return nil
}
