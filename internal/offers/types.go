package offers

import (
	"stay_offers/internal/domain"
)

type Tier string

const (
	TierStandard Tier = "standard"
	TierDeluxe   Tier = "deluxe"
	TierSuite    Tier = "suite"
)

// Basis records which provider totals produced a price, best first.
type Basis string

const (
	BasisAfterTax           Basis = "afterTax"
	BasisBeforeTaxPlusTaxes Basis = "beforeTaxPlusTaxes"
	BasisBeforeTax          Basis = "beforeTax"
)

var basisPriority = []Basis{BasisAfterTax, BasisBeforeTaxPlusTaxes, BasisBeforeTax}

type Archetype string

const (
	ArchetypeSafe  Archetype = "SAFE"
	ArchetypeSaver Archetype = "SAVER"
	ArchetypeOther Archetype = "OTHER"
)

// Price is a candidate's resolved stay total. Amount is NaN when the plan
// carried no usable totals.
type Price struct {
	Amount       float64      `json:"amount"`
	Basis        Basis        `json:"basis,omitempty"`
	Subtotal     *float64     `json:"subtotal,omitempty"`
	Taxes        *float64     `json:"taxes,omitempty"`
	Nightly      []float64    `json:"nightly,omitempty"`
	IncludedFees []domain.Fee `json:"included_fees,omitempty"`
}

// Candidate is one room type x rate plan pairing.
type Candidate struct {
	ID             string               `json:"id"`
	RoomTypeID     string               `json:"room_type_id"`
	RatePlanID     string               `json:"rate_plan_id"`
	RoomName       string               `json:"room_name"`
	RatePlanName   string               `json:"rate_plan_name"`
	Description    string               `json:"description,omitempty"`
	Features       []string             `json:"features,omitempty"`
	Accessible     bool                 `json:"accessible,omitempty"`
	RoomsAvailable *int                 `json:"rooms_available,omitempty"`
	Occupancy      *float64             `json:"occupancy,omitempty"`
	MaxOccupancy   int                  `json:"max_occupancy"`
	Tier           Tier                 `json:"tier"`
	Currency       string               `json:"currency"`
	Price          Price                `json:"price"`
	Refundability  domain.Refundability `json:"refundability"`
	PaymentTiming  domain.PaymentTiming `json:"payment_timing"`
	Restrictions   domain.Restrictions  `json:"restrictions"`
}

func (c Candidate) lowInventory() bool {
	return c.RoomsAvailable != nil && *c.RoomsAvailable <= 2
}

type ComponentScores struct {
	Value       float64 `json:"value"`
	Conversion  float64 `json:"conversion"`
	Experience  float64 `json:"experience"`
	Risk        float64 `json:"risk"`
	MarginProxy float64 `json:"margin_proxy"`
}

type ScoredCandidate struct {
	Candidate
	Scores    ComponentScores `json:"scores"`
	Total     float64         `json:"score_total"`
	Archetype Archetype       `json:"archetype"`
}

type Offer struct {
	OfferID      string        `json:"offer_id"`
	RoomTypeID   string        `json:"room_type_id"`
	RatePlanID   string        `json:"rate_plan_id"`
	RoomName     string        `json:"room_name"`
	RatePlanName string        `json:"rate_plan_name"`
	Recommended  bool          `json:"recommended"`
	Archetype    Archetype     `json:"archetype"`
	Policy       OfferPolicy   `json:"policy"`
	Pricing      OfferPricing  `json:"pricing"`
	LowSavings   bool          `json:"low_savings,omitempty"`
	Urgency      *Urgency      `json:"urgency,omitempty"`
	Enhancements []Enhancement `json:"enhancements,omitempty"`
	Disclosures  []string      `json:"disclosures,omitempty"`
}

type OfferPolicy struct {
	Refundability       domain.Refundability `json:"refundability"`
	PaymentTiming       domain.PaymentTiming `json:"payment_timing"`
	CancellationSummary string               `json:"cancellation_summary"`
}

type OfferPricing struct {
	Currency      string   `json:"currency"`
	Basis         Basis    `json:"basis"`
	Total         float64  `json:"total"`
	TotalAfterTax *float64 `json:"total_after_tax,omitempty"`
}

type Urgency struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Enhancement struct {
	Code          string   `json:"code"`
	Label         string   `json:"label"`
	PricePerNight *float64 `json:"price_per_night,omitempty"`
}

type Status string

const (
	StatusOK                 Status = "OK"
	StatusNeedsClarification Status = "NEEDS_CLARIFICATION"
)

// Response is the generate-offers result. Offers holds at most two entries;
// Fallback is empty when two offers were produced.
type Response struct {
	Status      Status         `json:"status"`
	Offers      []Offer        `json:"offers"`
	Fallback    FallbackAction `json:"fallback,omitempty"`
	Message     string         `json:"message,omitempty"`
	ReasonCodes []ReasonCode   `json:"reason_codes"`
	Trace       Trace          `json:"debug"`
}

type Rejection struct {
	CandidateID string       `json:"candidate_id"`
	Codes       []ReasonCode `json:"codes"`
}

type ScoreLine struct {
	CandidateID string          `json:"candidate_id"`
	Archetype   Archetype       `json:"archetype"`
	Total       float64         `json:"total"`
	Price       float64         `json:"price"`
	Scores      ComponentScores `json:"scores"`
}

// Trace is the decision record attached to every response.
type Trace struct {
	RequestID       string          `json:"request_id,omitempty"`
	PropertyID      string          `json:"property_id"`
	SnapshotVersion string          `json:"snapshot_version,omitempty"`
	Scenario        string          `json:"scenario,omitempty"`
	Profile         CommerceProfile `json:"profile"`
	Strategy        StrategyMode    `json:"strategy"`
	Weights         Weights         `json:"weights"`
	Basis           Basis           `json:"basis,omitempty"`
	CandidateCount  int             `json:"candidate_count"`
	EligibleCount   int             `json:"eligible_count"`
	Rejections      []Rejection     `json:"rejections,omitempty"`
	Scores          []ScoreLine     `json:"scores,omitempty"`
	PrimaryID       string          `json:"primary_id,omitempty"`
	SecondaryID     string          `json:"secondary_id,omitempty"`
	OpenNow         bool            `json:"open_now"`
	Degraded        []string        `json:"degraded,omitempty"`
}
