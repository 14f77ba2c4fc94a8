package offers

import (
	"time"

	"stay_offers/internal/domain"
)

// ScenarioOverride rewrites the request and snapshot for a named demo or test
// scenario before the pipeline runs.
type ScenarioOverride interface {
	Apply(req NormalizedRequest, snap domain.InventorySnapshot) (NormalizedRequest, domain.InventorySnapshot)
}

type ScenarioFunc func(NormalizedRequest, domain.InventorySnapshot) (NormalizedRequest, domain.InventorySnapshot)

func (f ScenarioFunc) Apply(req NormalizedRequest, snap domain.InventorySnapshot) (NormalizedRequest, domain.InventorySnapshot) {
	return f(req, snap)
}

type Input struct {
	Request   NormalizedRequest
	Snapshot  domain.InventorySnapshot
	Property  domain.PropertyContext
	Now       time.Time
	RequestID string
	// Degraded names the providers that failed and were replaced by defaults.
	Degraded []string
}

// Engine runs generate-offers. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	scenarios map[string]ScenarioOverride
}

func NewEngine(scenarios map[string]ScenarioOverride) *Engine {
	return &Engine{scenarios: scenarios}
}

var fallbackMessages = map[FallbackAction]string{
	FallbackAlternateDates: "I couldn't find two comparable options for those dates. Would you like to try different dates?",
	FallbackTextLink:       "I can text you a booking link with more options.",
	FallbackTransfer:       "I can connect you with the front desk to look at more options.",
	FallbackContact:        "Please contact the property directly to see more options.",
	FallbackWaitlist:       "I can add you to the waitlist and let you know if something opens up.",
}

const noViablePrefix = "I wasn't able to price a room for that stay. "

func (e *Engine) Generate(in Input) Response {
	req, snap := in.Request, in.Snapshot
	var codes codeSet
	trace := Trace{
		RequestID:       in.RequestID,
		PropertyID:      req.PropertyID,
		SnapshotVersion: snap.Version,
		Degraded:        in.Degraded,
	}
	if req.Scenario != "" {
		if o, ok := e.scenarios[req.Scenario]; ok {
			req, snap = o.Apply(req, snap)
			trace.Scenario = req.Scenario
			codes.add(ScenarioOverrideApplied)
		}
	}

	mode := ParseStrategy(in.Property.Commerce.StrategyMode)
	trace.Strategy = mode
	openNow := OpenAt(in.Property.Stay, in.Property.Timezone, in.Now)
	trace.OpenNow = openNow
	caps := in.Property.Commerce.Capabilities

	cands := GenerateCandidates(snap, in.Property.Commerce.RoomTiers)
	trace.CandidateCount = len(cands)
	fr := FilterCandidates(cands, req)
	for _, r := range fr.Rejections {
		codes.add(r.Codes...)
	}
	if fr.Discarded > 0 {
		codes.add(FilterBasisDiscarded)
	}
	if fr.Basis == BasisBeforeTax {
		codes.add(PriceBasisDegraded)
	}
	trace.Rejections = fr.Rejections
	trace.Basis = fr.Basis
	trace.EligibleCount = len(fr.Eligible)
	trace.Profile = req.Profile

	w := WeightsFor(req.Profile.TripType, req.Profile.Posture, mode)
	trace.Weights = w
	scored, err := Score(fr.Eligible, w)
	if err != nil {
		fb := ChooseFallback(req.Channel, caps, openNow, 0)
		codes.add(NoEligibleCandidates, FallbackSelected)
		return Response{
			Status:      StatusNeedsClarification,
			Offers:      []Offer{},
			Fallback:    fb,
			Message:     noViablePrefix + fallbackMessages[fb],
			ReasonCodes: codes.list(),
			Trace:       trace,
		}
	}
	for _, s := range scored {
		trace.Scores = append(trace.Scores, ScoreLine{
			CandidateID: s.ID,
			Archetype:   s.Archetype,
			Total:       s.Total,
			Price:       s.Price.Amount,
			Scores:      s.Scores,
		})
	}

	sel := SelectOffers(scored, mode)
	codes.add(sel.Reasons...)
	req.Profile = req.Profile.WithInventory(sel.Primary.RoomsAvailable)
	trace.Profile = req.Profile
	trace.PrimaryID = sel.Primary.ID
	if sel.Secondary != nil {
		trace.SecondaryID = sel.Secondary.ID
	}

	offers, presented := Present(sel, req, in.Property, in.Now)
	codes.add(presented...)

	resp := Response{Status: StatusOK, Offers: offers, Trace: trace}
	if fb := ChooseFallback(req.Channel, caps, openNow, len(offers)); fb != FallbackNone {
		resp.Fallback = fb
		resp.Message = fallbackMessages[fb]
		codes.add(FallbackSelected)
	}
	resp.ReasonCodes = codes.list()
	return resp
}
