package offers

import (
	"math"
	"strings"
)

type FilterResult struct {
	Eligible   []Candidate
	Basis      Basis // empty when nothing survived
	Rejections []Rejection
	// Discarded counts valid candidates dropped because another basis won.
	Discarded int
}

// FilterCandidates applies the hard constraints, then keeps only the pool
// priced on the best available basis so a response never mixes bases.
func FilterCandidates(cands []Candidate, req NormalizedRequest) FilterResult {
	var res FilterResult
	party := maxGuestsPerRoom(req.Occupancy)
	pools := map[Basis][]Candidate{}

	for _, c := range cands {
		var codes []ReasonCode
		if c.MaxOccupancy > 0 && party > c.MaxOccupancy {
			codes = append(codes, FilterOccupancy)
		}
		if c.Restrictions.ClosedToArrival {
			codes = append(codes, FilterClosedToArrival)
		}
		if c.Restrictions.ClosedToDeparture {
			codes = append(codes, FilterClosedToDeparture)
		}
		if r := c.Restrictions; (r.MinLengthOfStay > 0 && req.Nights < r.MinLengthOfStay) ||
			(r.MaxLengthOfStay > 0 && req.Nights > r.MaxLengthOfStay) {
			codes = append(codes, FilterLengthOfStay)
		}
		if !strings.EqualFold(c.Currency, req.Currency) {
			codes = append(codes, FilterCurrencyMismatch)
		}
		if math.IsNaN(c.Price.Amount) || math.IsInf(c.Price.Amount, 0) {
			codes = append(codes, FilterPriceUnresolved)
		}
		if c.RoomsAvailable != nil && *c.RoomsAvailable < req.Rooms {
			codes = append(codes, FilterInsufficientInventory)
		}
		if len(codes) > 0 {
			res.Rejections = append(res.Rejections, Rejection{CandidateID: c.ID, Codes: codes})
			continue
		}
		pools[c.Price.Basis] = append(pools[c.Price.Basis], c)
	}

	for _, b := range basisPriority {
		if len(pools[b]) == 0 {
			continue
		}
		if res.Basis == "" {
			res.Basis = b
			res.Eligible = pools[b]
			continue
		}
		res.Discarded += len(pools[b])
	}
	return res
}
