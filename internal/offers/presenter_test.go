package offers_test

import (
	"strings"
	"testing"
	"time"

	"stay_offers/internal/domain"
	"stay_offers/internal/fixtures"
	"stay_offers/internal/offers"
)

func TestMatchRule_HighestPriorityWins(t *testing.T) {
	rules := fixtures.DefaultProperty().Cancellation
	tests := []struct {
		room, checkIn, want string
	}{
		{"KSTE", "2026-12-24", "suites"},
		{"KNG", "2026-12-24", "holidays"},
		{"KNG", "2026-02-10", "standard"},
		{"KNG", "2027-01-03", "standard"},
	}
	for _, tc := range tests {
		r, ok := offers.MatchRule(rules, tc.room, tc.checkIn)
		if !ok || r.ID != tc.want {
			t.Errorf("%s on %s: got %q want %q", tc.room, tc.checkIn, r.ID, tc.want)
		}
	}
	if _, ok := offers.MatchRule(nil, "KNG", "2026-02-10"); ok {
		t.Error("no rules should not match")
	}
}

func TestCancellationSummary(t *testing.T) {
	rules := fixtures.DefaultProperty().Cancellation
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	suite := cand("KSTE:FLEX", 500, offers.BasisAfterTax)
	suite.RoomTypeID = "KSTE"
	king := cand("KNG:FLEX", 400, offers.BasisAfterTax)
	king.RoomTypeID = "KNG"

	tests := []struct {
		name string
		c    offers.Candidate
		now  time.Time
		want string
	}{
		{"suite before deadline", suite, now, "Free cancellation until 6:00 PM on Tuesday, February 3. Suites need a week's notice."},
		{"suite after deadline", suite, time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC), "The suite cancellation window has passed, so this stay is now non-refundable."},
		{"standard one hour before", king, time.Date(2026, 2, 8, 22, 0, 0, 0, time.UTC), "Free cancellation until 6:00 PM on Sunday, February 8."},
		{"standard one hour after", king, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), "The free cancellation window for this stay has already passed."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := offers.CancellationSummary(tc.c, rules, "2026-02-10", ny, tc.now); got != tc.want {
				t.Fatalf("got %q", got)
			}
		})
	}

	saver := suite
	saver.Refundability = domain.NonRefundable
	if got := offers.CancellationSummary(saver, rules, "2026-02-10", ny, now); !strings.Contains(got, "non-refundable") {
		t.Fatalf("non-refundable text: %q", got)
	}
}

func presentSelection(primary, secondary offers.ScoredCandidate) offers.Selection {
	return offers.Selection{Primary: &primary, Secondary: &secondary}
}

func TestPresent_EnhancementsOnlyOnRecommended(t *testing.T) {
	prop := fixtures.DefaultProperty()
	req := offers.NormalizedRequest{
		CheckIn:     "2026-02-10",
		CheckOut:    "2026-02-12",
		Profile:     offers.CommerceProfile{TripType: offers.TripFamily, Posture: offers.PostureCertainty},
		Preferences: offers.Preferences{LateArrival: true},
	}
	sel := presentSelection(scored("a", offers.ArchetypeSafe, 500, ptr(5)), scored("b", offers.ArchetypeSaver, 450, ptr(5)))
	out, codes := offers.Present(sel, req, prop, now)
	if len(out) != 2 || !out[0].Recommended || out[1].Recommended {
		t.Fatalf("offers: %+v", out)
	}
	var got []string
	for _, e := range out[0].Enhancements {
		got = append(got, e.Code)
	}
	if strings.Join(got, ",") != "BREAKFAST,LATE_CHECKOUT,PET_FEE" {
		t.Fatalf("enhancements: %v", got)
	}
	if *out[0].Enhancements[0].PricePerNight != 18 {
		t.Fatalf("breakfast price: %v", *out[0].Enhancements[0].PricePerNight)
	}
	if len(out[1].Enhancements) != 0 {
		t.Fatalf("secondary enhancements: %+v", out[1].Enhancements)
	}
	if !hasCode(codes, offers.EnhancementAttached) {
		t.Fatalf("codes: %v", codes)
	}
	if out[0].Pricing.TotalAfterTax == nil || *out[0].Pricing.TotalAfterTax != 500 {
		t.Fatalf("after-tax total: %+v", out[0].Pricing)
	}
}

func TestPresent_Urgency(t *testing.T) {
	prop := fixtures.DefaultProperty()
	req := offers.NormalizedRequest{CheckIn: "2026-02-10", CheckOut: "2026-02-12"}
	saver := scored("s", offers.ArchetypeSaver, 600, ptr(1))
	safe := scored("f", offers.ArchetypeSafe, 700, ptr(1))

	out, codes := offers.Present(presentSelection(saver, safe), req, prop, now)
	if out[0].Urgency == nil || out[0].Urgency.Type != "scarcity_rooms" || !hasCode(codes, offers.UrgencyAttached) {
		t.Fatalf("urgency: %+v %v", out[0].Urgency, codes)
	}
	if out[1].Urgency != nil {
		t.Fatal("urgency on secondary")
	}

	prop.Commerce.UrgencyTypes = []string{"scarcity_time"}
	out, _ = offers.Present(presentSelection(saver, safe), req, prop, now)
	if out[0].Urgency != nil {
		t.Fatal("urgency without scarcity_rooms enabled")
	}

	prop = fixtures.DefaultProperty()
	out, _ = offers.Present(presentSelection(safe, saver), req, prop, now)
	if out[0].Urgency != nil {
		t.Fatal("urgency on a SAFE primary")
	}
}

func TestPresent_BeforeTaxDisclosure(t *testing.T) {
	a := scored("a", offers.ArchetypeSafe, 500, ptr(5))
	a.Price.Basis = offers.BasisBeforeTax
	sel := offers.Selection{Primary: &a}
	out, codes := offers.Present(sel, offers.NormalizedRequest{CheckIn: "2026-02-10"}, domain.PropertyContext{}, now)
	if len(out) != 1 || out[0].Pricing.TotalAfterTax != nil || len(out[0].Disclosures) != 1 {
		t.Fatalf("offer: %+v", out)
	}
	if !hasCode(codes, offers.DisclosureTaxesExcluded) {
		t.Fatalf("codes: %v", codes)
	}
}
