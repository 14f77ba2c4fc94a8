package offers

import (
	"math"
	"strings"
)

// Guardrail caps how far apart the two presented prices may be. Both caps
// must hold.
type Guardrail struct {
	MaxPct float64 `json:"max_pct"`
	MaxAbs float64 `json:"max_abs"`
}

var guardrails = map[StrategyMode]Guardrail{
	StrategyBalanced:   {MaxPct: 0.35, MaxAbs: 150},
	StrategyConversion: {MaxPct: 0.25, MaxAbs: 100},
	StrategyRevenue:    {MaxPct: 0.50, MaxAbs: 250},
}

func GuardrailFor(mode StrategyMode) Guardrail {
	if g, ok := guardrails[mode]; ok {
		return g
	}
	return guardrails[StrategyBalanced]
}

const (
	saverExceptionDelta     = 0.30
	saverExceptionOccupancy = 0.92
	lowSavingsAbs           = 20.0
	lowSavingsPct           = 0.03
	epsilon                 = 1e-9
)

type Selection struct {
	Primary    *ScoredCandidate
	Secondary  *ScoredCandidate
	LowSavings bool
	Reasons    []ReasonCode
}

// SelectOffers picks the primary and secondary offers from a pool already
// sorted best first.
func SelectOffers(pool []ScoredCandidate, mode StrategyMode) Selection {
	var sel Selection
	if len(pool) == 0 {
		return sel
	}
	var safe, saver []ScoredCandidate
	for _, c := range pool {
		switch c.Archetype {
		case ArchetypeSafe:
			safe = append(safe, c)
		case ArchetypeSaver:
			saver = append(saver, c)
		}
	}

	switch {
	case len(safe) > 0 && len(saver) > 0 && saverException(safe[0], saver[0]):
		sel.Primary = &saver[0]
		sel.Reasons = append(sel.Reasons, SelectPrimarySaverException)
	case len(safe) > 0:
		sel.Primary = &safe[0]
		sel.Reasons = append(sel.Reasons, SelectPrimarySafe)
	default:
		p := pool[0]
		sel.Primary = &p
		sel.Reasons = append(sel.Reasons, SelectPrimaryBestAvailable)
	}

	primary := *sel.Primary
	g := GuardrailFor(mode)
	var opposite, same []ScoredCandidate
	switch primary.Archetype {
	case ArchetypeSafe:
		opposite, same = saver, safe
	case ArchetypeSaver:
		opposite, same = safe, saver
	default:
		// An OTHER primary only happens without any SAFE; pair it with a SAVER
		// first, then with anything else in the pool.
		opposite, same = saver, pool
	}

	if len(opposite) > 0 {
		if c := firstWithin(opposite, primary, g); c != nil {
			sel.Secondary = c
			sel.Reasons = append(sel.Reasons, SecondaryOppositeArchetype)
		}
	} else if c := firstWithin(same, primary, g); c != nil {
		sel.Secondary = c
		sel.Reasons = append(sel.Reasons, SecondarySameArchetypeFallback)
	}

	if sel.Secondary == nil {
		sel.Reasons = append(sel.Reasons, SecondaryNoComparable)
		return sel
	}
	if sel.Secondary.Archetype == ArchetypeSaver {
		saving := primary.Price.Amount - sel.Secondary.Price.Amount
		if saving < lowSavingsAbs && saving < lowSavingsPct*primary.Price.Amount {
			sel.LowSavings = true
			sel.Reasons = append(sel.Reasons, SecondaryLowSavings)
		}
	}
	return sel
}

// saverException lets a SAVER lead when inventory is compressed and the SAFE
// price is at least 30% above it.
func saverException(safe, saver ScoredCandidate) bool {
	if !strings.EqualFold(safe.Currency, saver.Currency) || safe.Price.Basis != saver.Price.Basis {
		return false
	}
	compressed := safe.lowInventory() || saver.lowInventory() ||
		occupancyAtLeast(safe, saverExceptionOccupancy) || occupancyAtLeast(saver, saverExceptionOccupancy)
	if !compressed || saver.Price.Amount <= 0 {
		return false
	}
	delta := (safe.Price.Amount - saver.Price.Amount) / saver.Price.Amount
	return delta >= saverExceptionDelta-epsilon
}

func occupancyAtLeast(c ScoredCandidate, threshold float64) bool {
	return c.Occupancy != nil && *c.Occupancy >= threshold-epsilon
}

func firstWithin(pool []ScoredCandidate, primary ScoredCandidate, g Guardrail) *ScoredCandidate {
	for i := range pool {
		c := pool[i]
		if c.ID == primary.ID {
			continue
		}
		if withinGuardrail(primary, c, g) {
			return &c
		}
	}
	return nil
}

func withinGuardrail(primary, c ScoredCandidate, g Guardrail) bool {
	if !strings.EqualFold(primary.Currency, c.Currency) || primary.Price.Basis != c.Price.Basis {
		return false
	}
	if primary.Price.Amount <= 0 {
		return false
	}
	diff := math.Abs(primary.Price.Amount - c.Price.Amount)
	return diff <= g.MaxAbs+epsilon && diff/primary.Price.Amount <= g.MaxPct+epsilon
}
