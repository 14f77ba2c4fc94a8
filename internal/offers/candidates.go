package offers

import (
	"math"
	"strings"

	"stay_offers/internal/domain"
)

var tierKeywords = []struct {
	tier  Tier
	words []string
}{
	{TierSuite, []string{"suite", "studio", "penthouse"}},
	{TierDeluxe, []string{"deluxe", "premium", "executive", "luxury", "superior"}},
}

// InferTier maps a room type name to a coarse tier by keyword.
func InferTier(name string) Tier {
	low := strings.ToLower(name)
	for _, tk := range tierKeywords {
		for _, w := range tk.words {
			if strings.Contains(low, w) {
				return tk.tier
			}
		}
	}
	return TierStandard
}

// GenerateCandidates flattens every room type x rate plan into a Candidate.
// Plans without a usable total are kept with a NaN amount; dropping them is
// the filter's job. tiers overrides the inferred tier per room type id.
func GenerateCandidates(snap domain.InventorySnapshot, tiers map[string]string) []Candidate {
	var out []Candidate
	for _, rt := range snap.RoomTypes {
		tier := InferTier(rt.Name)
		if t, ok := tiers[rt.ID]; ok {
			switch Tier(strings.ToLower(t)) {
			case TierStandard, TierDeluxe, TierSuite:
				tier = Tier(strings.ToLower(t))
			}
		}
		for _, rp := range rt.RatePlans {
			currency := rp.Currency
			if currency == "" {
				currency = snap.Currency
			}
			out = append(out, Candidate{
				ID:             rt.ID + ":" + rp.ID,
				RoomTypeID:     rt.ID,
				RatePlanID:     rp.ID,
				RoomName:       rt.Name,
				RatePlanName:   rp.Name,
				Description:    rt.Description,
				Features:       rt.Features,
				Accessible:     rt.Accessible,
				RoomsAvailable: rt.RoomsAvailable,
				Occupancy:      rt.Occupancy,
				MaxOccupancy:   rt.MaxOccupancy,
				Tier:           tier,
				Currency:       strings.ToUpper(currency),
				Price:          resolvePrice(rp),
				Refundability:  orUnknownRefund(rp.Refundability),
				PaymentTiming:  orUnknownPayment(rp.PaymentTiming),
				Restrictions:   rp.Restrictions,
			})
		}
	}
	return out
}

func resolvePrice(rp domain.RatePlan) Price {
	p := Price{Amount: math.NaN(), IncludedFees: rp.IncludedFees}
	for _, n := range rp.NightlyRates {
		p.Nightly = append(p.Nightly, n.Amount)
	}
	after, hasAfter := finite(rp.TotalAfterTax)
	before, hasBefore := finite(rp.TotalBeforeTax)
	taxes, hasTaxes := finite(rp.TaxesAndFees)

	switch {
	case hasAfter:
		p.Amount, p.Basis = after, BasisAfterTax
		switch {
		case hasBefore && hasTaxes:
			p.Subtotal, p.Taxes = &before, &taxes
		case hasBefore:
			t := after - before
			p.Subtotal, p.Taxes = &before, &t
		case hasTaxes:
			s := after - taxes
			p.Subtotal, p.Taxes = &s, &taxes
		}
	case hasBefore && hasTaxes:
		p.Amount, p.Basis = before+taxes, BasisBeforeTaxPlusTaxes
		p.Subtotal, p.Taxes = &before, &taxes
	case hasBefore:
		p.Amount, p.Basis = before, BasisBeforeTax
		p.Subtotal = &before
	}
	return p
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func orUnknownRefund(r domain.Refundability) domain.Refundability {
	switch r {
	case domain.Refundable, domain.NonRefundable:
		return r
	}
	return domain.RefundabilityUnknown
}

func orUnknownPayment(p domain.PaymentTiming) domain.PaymentTiming {
	switch p {
	case domain.PayNow, domain.PayAtProperty:
		return p
	}
	return domain.PaymentTimingUnknown
}
