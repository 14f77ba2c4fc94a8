package offers

// ReasonCode is the fixed vocabulary the presentation layer keys off.
type ReasonCode string

const (
	FilterOccupancy             ReasonCode = "FILTER_OCCUPANCY"
	FilterClosedToArrival       ReasonCode = "FILTER_CLOSED_TO_ARRIVAL"
	FilterClosedToDeparture     ReasonCode = "FILTER_CLOSED_TO_DEPARTURE"
	FilterLengthOfStay          ReasonCode = "FILTER_LENGTH_OF_STAY"
	FilterCurrencyMismatch      ReasonCode = "FILTER_CURRENCY_MISMATCH"
	FilterPriceUnresolved       ReasonCode = "FILTER_PRICE_UNRESOLVED"
	FilterInsufficientInventory ReasonCode = "FILTER_INSUFFICIENT_INVENTORY"
	FilterBasisDiscarded        ReasonCode = "FILTER_BASIS_DISCARDED"

	PriceBasisDegraded   ReasonCode = "PRICE_BASIS_DEGRADED"
	NoEligibleCandidates ReasonCode = "NO_ELIGIBLE_CANDIDATES"

	SelectPrimarySafe           ReasonCode = "SELECT_PRIMARY_SAFE"
	SelectPrimaryBestAvailable  ReasonCode = "SELECT_PRIMARY_BEST_AVAILABLE"
	SelectPrimarySaverException ReasonCode = "SELECT_PRIMARY_SAVER_EXCEPTION_LOW_INVENTORY"

	SecondaryOppositeArchetype     ReasonCode = "SECONDARY_OPPOSITE_ARCHETYPE"
	SecondarySameArchetypeFallback ReasonCode = "SECONDARY_SAME_ARCHETYPE_FALLBACK"
	SecondaryNoComparable          ReasonCode = "SECONDARY_NO_COMPARABLE"
	SecondaryLowSavings            ReasonCode = "SECONDARY_LOW_SAVINGS"

	FallbackSelected        ReasonCode = "FALLBACK_SELECTED"
	EnhancementAttached     ReasonCode = "ENHANCEMENT_ATTACHED"
	UrgencyAttached         ReasonCode = "URGENCY_ATTACHED"
	DisclosureTaxesExcluded ReasonCode = "DISCLOSURE_TAXES_EXCLUDED"
	ScenarioOverrideApplied ReasonCode = "SCENARIO_OVERRIDE_APPLIED"
)

// codeSet keeps first-seen order and drops repeats.
type codeSet struct {
	seen  map[ReasonCode]bool
	codes []ReasonCode
}

func (s *codeSet) add(codes ...ReasonCode) {
	if s.seen == nil {
		s.seen = map[ReasonCode]bool{}
	}
	for _, c := range codes {
		if !s.seen[c] {
			s.seen[c] = true
			s.codes = append(s.codes, c)
		}
	}
}

func (s *codeSet) list() []ReasonCode {
	if s.codes == nil {
		return []ReasonCode{}
	}
	return s.codes
}
