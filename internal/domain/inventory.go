package domain

type Refundability string

const (
	Refundable           Refundability = "refundable"
	NonRefundable        Refundability = "non_refundable"
	RefundabilityUnknown Refundability = "unknown"
)

type PaymentTiming string

const (
	PayNow               PaymentTiming = "pay_now"
	PayAtProperty        PaymentTiming = "pay_at_property"
	PaymentTimingUnknown PaymentTiming = "unknown"
)

// InventorySnapshot is the versioned, read-only rate/availability view returned
// by the inventory provider for one stay window.
type InventorySnapshot struct {
	PropertyID string              `json:"property_id"`
	Version    string              `json:"version,omitempty"`
	Currency   string              `json:"currency"`
	StartDate  string              `json:"start_date"`
	EndDate    string              `json:"end_date"`
	RoomTypes  []RoomTypeInventory `json:"room_types"`
}

type RoomTypeInventory struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Features     []string `json:"features,omitempty"`
	Accessible   bool     `json:"accessible,omitempty"`
	MaxOccupancy int      `json:"max_occupancy"`
	// RoomsAvailable is nil when the provider does not report availability.
	RoomsAvailable *int `json:"rooms_available,omitempty"`
	// Occupancy is the estimated fraction of the room type already sold (0..1).
	Occupancy *float64   `json:"occupancy,omitempty"`
	RatePlans []RatePlan `json:"rate_plans"`
}

type RatePlan struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Currency       string        `json:"currency,omitempty"`
	NightlyRates   []NightlyRate `json:"nightly_rates,omitempty"`
	TotalAfterTax  *float64      `json:"total_after_tax,omitempty"`
	TotalBeforeTax *float64      `json:"total_before_tax,omitempty"`
	TaxesAndFees   *float64      `json:"taxes_and_fees,omitempty"`
	IncludedFees   []Fee         `json:"included_fees,omitempty"`
	Refundability  Refundability `json:"refundability"`
	PaymentTiming  PaymentTiming `json:"payment_timing"`
	Restrictions   Restrictions  `json:"restrictions"`
}

type NightlyRate struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type Fee struct {
	Name     string  `json:"name"`
	PerNight float64 `json:"per_night"`
}

// Restrictions are already resolved against the requested stay by the provider.
type Restrictions struct {
	ClosedToArrival   bool `json:"closed_to_arrival,omitempty"`
	ClosedToDeparture bool `json:"closed_to_departure,omitempty"`
	MinLengthOfStay   int  `json:"min_los,omitempty"`
	MaxLengthOfStay   int  `json:"max_los,omitempty"`
}

// AvailabilityQuery identifies the stay window a snapshot is requested for.
type AvailabilityQuery struct {
	PropertyID string
	CheckIn    string
	CheckOut   string
	Adults     int
	Children   int
	Rooms      int
	Currency   string
}
