package offers

import (
	"fmt"
	"math"
	"slices"
	"time"

	"stay_offers/internal/domain"
)

const (
	maxEnhancements = 3
	scarcityRooms   = "scarcity_rooms"
	taxesExcluded   = "Taxes and fees are not included in this total and will be added at booking."
)

// Present turns the selection into presentation-ready offers, primary first.
func Present(sel Selection, req NormalizedRequest, prop domain.PropertyContext, now time.Time) ([]Offer, []ReasonCode) {
	if sel.Primary == nil {
		return []Offer{}, nil
	}
	loc, err := time.LoadLocation(prop.Timezone)
	if err != nil {
		loc = time.UTC
	}
	var codes codeSet

	primary := presentOne(*sel.Primary, req, prop, loc, now, &codes)
	primary.Recommended = true
	primary.Enhancements = enhancements(req, prop)
	if len(primary.Enhancements) > 0 {
		codes.add(EnhancementAttached)
	}
	if u := urgency(*sel.Primary, prop.Commerce); u != nil {
		primary.Urgency = u
		codes.add(UrgencyAttached)
	}
	out := []Offer{primary}

	if sel.Secondary != nil {
		second := presentOne(*sel.Secondary, req, prop, loc, now, &codes)
		second.LowSavings = sel.LowSavings
		out = append(out, second)
	}
	return out, codes.codes
}

func presentOne(c ScoredCandidate, req NormalizedRequest, prop domain.PropertyContext, loc *time.Location, now time.Time, codes *codeSet) Offer {
	o := Offer{
		OfferID:      c.ID,
		RoomTypeID:   c.RoomTypeID,
		RatePlanID:   c.RatePlanID,
		RoomName:     c.RoomName,
		RatePlanName: c.RatePlanName,
		Archetype:    c.Archetype,
		Policy: OfferPolicy{
			Refundability:       c.Refundability,
			PaymentTiming:       c.PaymentTiming,
			CancellationSummary: CancellationSummary(c.Candidate, prop.Cancellation, req.CheckIn, loc, now),
		},
		Pricing: OfferPricing{
			Currency: c.Currency,
			Basis:    c.Price.Basis,
			Total:    round2(c.Price.Amount),
		},
	}
	switch c.Price.Basis {
	case BasisAfterTax, BasisBeforeTaxPlusTaxes:
		t := round2(c.Price.Amount)
		o.Pricing.TotalAfterTax = &t
	case BasisBeforeTax:
		o.Disclosures = append(o.Disclosures, taxesExcluded)
		codes.add(DisclosureTaxesExcluded)
	}
	for _, f := range c.Price.IncludedFees {
		o.Disclosures = append(o.Disclosures, fmt.Sprintf("Includes a %s of %s %.2f per night.", f.Name, c.Currency, f.PerNight))
	}
	return o
}

func enhancements(req NormalizedRequest, prop domain.PropertyContext) []Enhancement {
	var out []Enhancement
	if req.Profile.TripType == TripFamily || req.Preferences.TwoBeds {
		out = append(out, Enhancement{Code: "BREAKFAST", Label: "Add daily breakfast", PricePerNight: positive(prop.Commerce.BreakfastPrice)})
	}
	if req.Preferences.LateArrival || req.Profile.Posture == PostureUrgent {
		out = append(out, Enhancement{Code: "LATE_CHECKOUT", Label: "Add late checkout", PricePerNight: positive(prop.Commerce.LateCheckoutFee)})
	}
	if fee := prop.Stay.PetFeePerNight; fee > 0 {
		out = append(out, Enhancement{Code: "PET_FEE", Label: "Pet fee applies per night", PricePerNight: positive(fee)})
	}
	if len(out) > maxEnhancements {
		out = out[:maxEnhancements]
	}
	return out
}

func urgency(c ScoredCandidate, cfg domain.CommerceConfig) *Urgency {
	if c.Archetype != ArchetypeSaver || !c.lowInventory() {
		return nil
	}
	if !cfg.UrgencyEnabled || !slices.Contains(cfg.UrgencyTypes, scarcityRooms) {
		return nil
	}
	msg := fmt.Sprintf("Only %d rooms left at this rate.", *c.RoomsAvailable)
	if *c.RoomsAvailable == 1 {
		msg = "Only 1 room left at this rate."
	}
	return &Urgency{Type: scarcityRooms, Message: msg}
}

func positive(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
