// Package fixtures holds the demo property, its inventory, and the named
// scenario overrides used by demos and end-to-end tests.
package fixtures

import (
	"context"
	"fmt"
	"math"

	"stay_offers/internal/dates"
	"stay_offers/internal/domain"
	"stay_offers/internal/offers"
)

const (
	PropertyID = "demo-hotel"
	taxRate    = 0.05
)

func DefaultProperty() domain.PropertyContext {
	return domain.PropertyContext{
		PropertyID:      PropertyID,
		Name:            "Harborview Demo Hotel",
		Timezone:        "America/New_York",
		DefaultCurrency: "USD",
		Stay: domain.StayPolicy{
			CheckInTime:    "15:00",
			CheckOutTime:   "11:00",
			PetFeePerNight: 25,
			FrontDeskOpen:  "07:00",
			FrontDeskClose: "23:00",
		},
		Cancellation: []domain.CancellationRule{
			{
				ID:                   "standard",
				Priority:             0,
				FreeCancelDaysBefore: 2,
				CutoffTime:           "18:00",
				Summary:              "Free cancellation until {deadline}.",
			},
			{
				ID:                   "suites",
				RoomTypeIDs:          []string{"KSTE"},
				Priority:             10,
				FreeCancelDaysBefore: 7,
				CutoffTime:           "18:00",
				Summary:              "Free cancellation until {deadline}. Suites need a week's notice.",
				PassedSummary:        "The suite cancellation window has passed, so this stay is now non-refundable.",
			},
			{
				ID:                   "holidays",
				StartDate:            "2026-12-20",
				EndDate:              "2027-01-02",
				Priority:             5,
				FreeCancelDaysBefore: 14,
				CutoffTime:           "12:00",
				Summary:              "Holiday stays can be cancelled free of charge until {deadline}.",
			},
		},
		Commerce: domain.CommerceConfig{
			StrategyMode:   "balanced",
			UrgencyEnabled: true,
			UrgencyTypes:   []string{"scarcity_rooms"},
			Capabilities: domain.ChannelCapability{
				CanTextLink:          true,
				CanTransferFrontDesk: true,
				CanCollectWaitlist:   true,
				WebBookingURL:        "https://demo-hotel.example/book",
			},
			BreakfastPrice:  18,
			LateCheckoutFee: 30,
		},
	}
}

type planSpec struct {
	id, name string
	nightly  float64
	refund   domain.Refundability
	payment  domain.PaymentTiming
}

type roomSpec struct {
	id, name, description string
	features              []string
	maxOccupancy, rooms   int
	occupancy             float64
	plans                 []planSpec
}

func flexAndSave(flex, save float64) []planSpec {
	return []planSpec{
		{id: "FLEX", name: "Flexible Rate", nightly: flex, refund: domain.Refundable, payment: domain.PayAtProperty},
		{id: "SAVE", name: "Advance Purchase", nightly: save, refund: domain.NonRefundable, payment: domain.PayNow},
	}
}

var defaultRooms = []roomSpec{
	{
		id: "KNG", name: "King Room", description: "One king bed, city view.",
		features: []string{"king bed", "wifi"}, maxOccupancy: 2, rooms: 8, occupancy: 0.6,
		plans: flexAndSave(200, 180),
	},
	{
		id: "QQ", name: "Double Queen Room", description: "Two queen beds, ideal for families.",
		features: []string{"two queen beds", "wifi", "sofa"}, maxOccupancy: 4, rooms: 5, occupancy: 0.7,
		plans: flexAndSave(220, 198),
	},
	{
		id: "KSTE", name: "King Suite", description: "Separate living room and harbor view.",
		features: []string{"king bed", "living room", "harbor view"}, maxOccupancy: 3, rooms: 3, occupancy: 0.8,
		plans: flexAndSave(260, 234),
	},
}

// DefaultSnapshot prices the demo inventory for the queried window. Totals are
// nightly rate x nights x rooms plus 5% tax.
func DefaultSnapshot(q domain.AvailabilityQuery) domain.InventorySnapshot {
	nights, err := dates.NightsBetween(q.CheckIn, q.CheckOut)
	if err != nil || nights < 1 {
		nights = 1
	}
	rooms := max(q.Rooms, 1)
	snap := domain.InventorySnapshot{
		PropertyID: PropertyID,
		Version:    "fixture-v1",
		Currency:   "USD",
		StartDate:  q.CheckIn,
		EndDate:    q.CheckOut,
	}
	for _, rs := range defaultRooms {
		rt := domain.RoomTypeInventory{
			ID:             rs.id,
			Name:           rs.name,
			Description:    rs.description,
			Features:       rs.features,
			MaxOccupancy:   rs.maxOccupancy,
			RoomsAvailable: ptr(rs.rooms),
			Occupancy:      ptr(rs.occupancy),
		}
		for _, ps := range rs.plans {
			rt.RatePlans = append(rt.RatePlans, pricedPlan(ps, q.CheckIn, nights, rooms))
		}
		snap.RoomTypes = append(snap.RoomTypes, rt)
	}
	return snap
}

func pricedPlan(ps planSpec, checkIn string, nights, rooms int) domain.RatePlan {
	rp := domain.RatePlan{
		ID:            ps.id,
		Name:          ps.name,
		Currency:      "USD",
		Refundability: ps.refund,
		PaymentTiming: ps.payment,
	}
	for i := 0; i < nights; i++ {
		day, err := dates.AddDays(checkIn, i)
		if err != nil {
			break
		}
		rp.NightlyRates = append(rp.NightlyRates, domain.NightlyRate{Date: day, Amount: ps.nightly})
	}
	before := money(ps.nightly * float64(nights*rooms))
	taxes := money(before * taxRate)
	after := money(before + taxes)
	rp.TotalBeforeTax, rp.TaxesAndFees, rp.TotalAfterTax = &before, &taxes, &after
	return rp
}

// CompressedWeekend is a single nearly sold-out room type whose flexible rate
// costs two thirds more than the advance purchase rate.
func CompressedWeekend(q domain.AvailabilityQuery) domain.InventorySnapshot {
	flex, save := 1000.0, 600.0
	return domain.InventorySnapshot{
		PropertyID: PropertyID,
		Version:    "fixture-compressed-v1",
		Currency:   "USD",
		StartDate:  q.CheckIn,
		EndDate:    q.CheckOut,
		RoomTypes: []domain.RoomTypeInventory{{
			ID:             "KNG",
			Name:           "King Room",
			MaxOccupancy:   2,
			RoomsAvailable: ptr(1),
			Occupancy:      ptr(0.97),
			RatePlans: []domain.RatePlan{
				{ID: "FLEX", Name: "Flexible Rate", Currency: "USD", TotalAfterTax: &flex,
					Refundability: domain.Refundable, PaymentTiming: domain.PayAtProperty},
				{ID: "SAVE", Name: "Advance Purchase", Currency: "USD", TotalAfterTax: &save,
					Refundability: domain.NonRefundable, PaymentTiming: domain.PayNow},
			},
		}},
	}
}

// Scenarios are the named overrides selectable through a request's scenario tag.
func Scenarios() map[string]offers.ScenarioOverride {
	return map[string]offers.ScenarioOverride{
		"business_late_arrival": offers.ScenarioFunc(businessLateArrival),
		"compressed_weekend":    offers.ScenarioFunc(compressedWeekend),
	}
}

// businessLateArrival swaps the king room's rates for corporate ones and flags
// a late arrival.
func businessLateArrival(req offers.NormalizedRequest, snap domain.InventorySnapshot) (offers.NormalizedRequest, domain.InventorySnapshot) {
	req.Preferences.LateArrival = true
	nights := max(req.Nights, 1)
	rooms := max(req.Rooms, 1)
	out := snap
	out.RoomTypes = make([]domain.RoomTypeInventory, len(snap.RoomTypes))
	for i, rt := range snap.RoomTypes {
		if rt.ID == "KNG" {
			rt.RatePlans = []domain.RatePlan{
				pricedPlan(planSpec{id: "CORP_FLEX", name: "Corporate Flexible", nightly: 190,
					refund: domain.Refundable, payment: domain.PayAtProperty}, req.CheckIn, nights, rooms),
				pricedPlan(planSpec{id: "CORP_SAVE", name: "Corporate Prepaid", nightly: 171,
					refund: domain.NonRefundable, payment: domain.PayNow}, req.CheckIn, nights, rooms),
			}
		}
		out.RoomTypes[i] = rt
	}
	out.Version = snap.Version + "+business_late_arrival"
	return req, out
}

func compressedWeekend(req offers.NormalizedRequest, _ domain.InventorySnapshot) (offers.NormalizedRequest, domain.InventorySnapshot) {
	return req, CompressedWeekend(domain.AvailabilityQuery{
		PropertyID: req.PropertyID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Rooms:      req.Rooms,
	})
}

// Provider serves the demo property as both inventory and property context.
type Provider struct{}

func (Provider) Snapshot(_ context.Context, q domain.AvailabilityQuery) (domain.InventorySnapshot, error) {
	if q.PropertyID != PropertyID {
		return domain.InventorySnapshot{}, fmt.Errorf("fixture inventory %q: %w", q.PropertyID, domain.ErrNotFound)
	}
	return DefaultSnapshot(q), nil
}

func (Provider) GetPropertyContext(_ context.Context, id string) (domain.PropertyContext, error) {
	if id != PropertyID {
		return domain.PropertyContext{}, fmt.Errorf("fixture property %q: %w", id, domain.ErrNotFound)
	}
	return DefaultProperty(), nil
}

func ptr[T any](v T) *T { return &v }

func money(v float64) float64 { return math.Round(v*100) / 100 }
