package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"stay_offers/internal/adapters/observability"
	"stay_offers/internal/domain"
	"stay_offers/internal/offers"
)

const (
	providerInventory = "inventory"
	providerProperty  = "property_context"
)

type OfferDeps struct {
	Inventory  domain.InventoryProvider
	Properties domain.PropertyContextProvider
	Sessions   domain.SessionStore
	Cache      domain.Cache // optional
	Engine     *offers.Engine
	Clock      domain.Clock
}

type OfferOptions struct {
	SnapshotTTL time.Duration
	ContextTTL  time.Duration
	// Timeout bounds the external lookups of one resolution.
	Timeout time.Duration
	// Defaults stands in for a property whose context cannot be loaded.
	Defaults domain.PropertyContext
}

// DefaultProperty builds the fallback property context: balanced strategy,
// no channel capabilities, front desk always open.
func DefaultProperty(timezone, currency, strategy string) domain.PropertyContext {
	return domain.PropertyContext{
		Timezone:        timezone,
		DefaultCurrency: strings.ToUpper(currency),
		Commerce:        domain.CommerceConfig{StrategyMode: strategy},
	}
}

type OfferService struct {
	inventory  domain.InventoryProvider
	properties domain.PropertyContextProvider
	sessions   domain.SessionStore
	cache      domain.Cache
	engine     *offers.Engine
	clock      domain.Clock
	opts       OfferOptions
}

func NewOfferService(d OfferDeps, o OfferOptions) *OfferService {
	if d.Clock == nil {
		d.Clock = domain.SystemClock
	}
	if o.Timeout <= 0 {
		o.Timeout = 8 * time.Second
	}
	return &OfferService{
		inventory:  d.Inventory,
		properties: d.Properties,
		sessions:   d.Sessions,
		cache:      d.Cache,
		engine:     d.Engine,
		clock:      d.Clock,
		opts:       o,
	}
}

// Generate validates req, loads its property and inventory concurrently and
// runs the offer pipeline. Only validation problems are returned as errors;
// provider failures degrade to defaults.
func (s *OfferService) Generate(ctx context.Context, req offers.StayRequest) (offers.Response, error) {
	start := time.Now()
	now := s.clock.Now()
	if _, err := offers.NormalizeRequest(req, s.opts.Defaults.DefaultCurrency, now); err != nil {
		return offers.Response{}, err
	}

	lctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	q := domain.AvailabilityQuery{
		PropertyID: req.PropertyID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Adults:     req.Adults,
		Children:   req.Children,
		Rooms:      max(req.Rooms, 1),
		Currency:   strings.ToUpper(strings.TrimSpace(req.Currency)),
	}
	var (
		prop     domain.PropertyContext
		snap     domain.InventorySnapshot
		propErr  error
		snapErr  error
		degraded []string
	)
	var g errgroup.Group
	g.Go(func() error {
		prop, propErr = s.propertyContext(lctx, req.PropertyID)
		return nil
	})
	g.Go(func() error {
		snap, snapErr = s.snapshot(lctx, q, false)
		return nil
	})
	_ = g.Wait()

	if propErr != nil {
		degraded = append(degraded, providerProperty)
		observability.ObserveDegraded(providerProperty)
		log.Warn().Err(propErr).Str("property", req.PropertyID).Msg("property context unavailable, using defaults")
		prop = s.opts.Defaults
		prop.PropertyID = req.PropertyID
	}
	if snapErr != nil {
		degraded = append(degraded, providerInventory)
		observability.ObserveDegraded(providerInventory)
		log.Warn().Err(snapErr).Str("property", req.PropertyID).Msg("inventory unavailable, continuing with an empty snapshot")
		snap = domain.InventorySnapshot{PropertyID: req.PropertyID, StartDate: req.CheckIn, EndDate: req.CheckOut}
	}

	norm, err := offers.NormalizeRequest(req, prop.DefaultCurrency, now)
	if err != nil {
		return offers.Response{}, err
	}
	resp := s.engine.Generate(offers.Input{
		Request:   norm,
		Snapshot:  snap,
		Property:  prop,
		Now:       now,
		RequestID: uuid.NewString(),
		Degraded:  degraded,
	})

	observability.ObserveOffers(string(resp.Status), len(resp.Offers), string(norm.Channel), string(resp.Fallback), time.Since(start))
	log.Info().
		Str("request_id", resp.Trace.RequestID).
		Str("property", norm.PropertyID).
		Str("status", string(resp.Status)).
		Int("offers", len(resp.Offers)).
		Str("fallback", string(resp.Fallback)).
		Str("basis", string(resp.Trace.Basis)).
		Dur("duration", time.Since(start)).
		Msg("offers generated")
	return resp, nil
}

// GenerateForCall prices the confirmed intent stored for callID.
func (s *OfferService) GenerateForCall(ctx context.Context, callID, propertyID string, channel offers.Channel) (offers.Response, error) {
	in, err := s.sessions.Get(ctx, callID)
	if err != nil {
		return offers.Response{}, err
	}
	req, err := offers.FromIntent(in, propertyID, channel)
	if err != nil {
		return offers.Response{}, err
	}
	return s.Generate(ctx, req)
}

func propertyKey(id string) string { return "property:" + id }

func snapshotKey(q domain.AvailabilityQuery) string {
	return fmt.Sprintf("snapshot:%s:%s:%s:%d:%d:%d:%s",
		q.PropertyID, q.CheckIn, q.CheckOut, q.Adults, q.Children, q.Rooms, q.Currency)
}

func (s *OfferService) propertyContext(ctx context.Context, id string) (domain.PropertyContext, error) {
	key := propertyKey(id)
	var pc domain.PropertyContext
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &pc); ok {
			return pc, nil
		}
	}
	pc, err := s.properties.GetPropertyContext(ctx, id)
	if err != nil {
		return domain.PropertyContext{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, pc, int(s.opts.ContextTTL.Seconds()))
	}
	return pc, nil
}

// snapshot reads through the cache; refresh skips the read.
func (s *OfferService) snapshot(ctx context.Context, q domain.AvailabilityQuery, refresh bool) (domain.InventorySnapshot, error) {
	key := snapshotKey(q)
	var snap domain.InventorySnapshot
	if s.cache != nil && !refresh {
		if ok, _ := s.cache.Get(ctx, key, &snap); ok {
			return snap, nil
		}
	}
	snap, err := s.inventory.Snapshot(ctx, q)
	if err != nil {
		return domain.InventorySnapshot{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, snap, int(s.opts.SnapshotTTL.Seconds())); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("snapshot cache set failed")
		}
	}
	return snap, nil
}

