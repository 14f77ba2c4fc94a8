package offers

import (
	"errors"
	"math"
	"sort"

	"stay_offers/internal/domain"
)

var ErrNoCandidates = errors.New("offers: nothing to score")

var tierExperience = map[Tier]float64{
	TierSuite:    80,
	TierDeluxe:   50,
	TierStandard: 20,
}

// Score rates every candidate against the pool and returns them best first.
func Score(cands []Candidate, w Weights) ([]ScoredCandidate, error) {
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range cands {
		lo = math.Min(lo, c.Price.Amount)
		hi = math.Max(hi, c.Price.Amount)
	}

	out := make([]ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		value, margin := 50.0, 50.0
		if hi > lo {
			value = (hi - c.Price.Amount) / (hi - lo) * 100
			margin = 100 - value
		}
		s := ComponentScores{
			Value:       value,
			Conversion:  conversionScore(c),
			Experience:  tierExperience[c.Tier],
			Risk:        riskScore(c),
			MarginProxy: margin,
		}
		total := s.Value*w.Value + s.Conversion*w.Conversion + s.Experience*w.Experience +
			s.MarginProxy*w.Margin - s.Risk*w.Risk
		out = append(out, ScoredCandidate{
			Candidate: c,
			Scores:    s,
			Total:     clamp(total, -10000, 10000),
			Archetype: ArchetypeOf(c),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out, nil
}

// ArchetypeOf classifies by refundability first, then payment timing.
func ArchetypeOf(c Candidate) Archetype {
	switch c.Refundability {
	case domain.Refundable:
		return ArchetypeSafe
	case domain.NonRefundable:
		return ArchetypeSaver
	}
	switch c.PaymentTiming {
	case domain.PayAtProperty:
		return ArchetypeSafe
	case domain.PayNow:
		return ArchetypeSaver
	}
	return ArchetypeOther
}

func conversionScore(c Candidate) float64 {
	s := 50.0
	switch c.Refundability {
	case domain.Refundable:
		s += 25
	case domain.NonRefundable:
		s -= 20
	}
	switch c.PaymentTiming {
	case domain.PayAtProperty:
		s += 10
	case domain.PayNow:
		s -= 5
	}
	return clamp(s, 0, 100)
}

func riskScore(c Candidate) float64 {
	var s float64
	if c.Refundability == domain.NonRefundable {
		s += 35
	}
	if c.PaymentTiming == domain.PayNow {
		s += 10
	}
	if c.lowInventory() {
		s += 15
	}
	return clamp(s, 0, 100)
}

func better(a, b ScoredCandidate) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.Scores.Conversion != b.Scores.Conversion {
		return a.Scores.Conversion > b.Scores.Conversion
	}
	if a.Price.Amount != b.Price.Amount {
		return a.Price.Amount < b.Price.Amount
	}
	if ra, rb := refundRank(a.Refundability), refundRank(b.Refundability); ra != rb {
		return ra < rb
	}
	return a.ID < b.ID
}

func refundRank(r domain.Refundability) int {
	switch r {
	case domain.Refundable:
		return 0
	case domain.NonRefundable:
		return 2
	}
	return 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
