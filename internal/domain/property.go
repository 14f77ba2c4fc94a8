package domain

// PropertyContext is the read-only configuration a property exposes to the engine.
type PropertyContext struct {
	PropertyID      string             `json:"property_id"`
	Name            string             `json:"name"`
	Timezone        string             `json:"timezone"`
	DefaultCurrency string             `json:"default_currency"`
	Stay            StayPolicy         `json:"stay"`
	Cancellation    []CancellationRule `json:"cancellation"`
	Commerce        CommerceConfig     `json:"commerce"`
}

type StayPolicy struct {
	CheckInTime    string  `json:"check_in_time"`
	CheckOutTime   string  `json:"check_out_time"`
	PetFeePerNight float64 `json:"pet_fee_per_night,omitempty"`
	// FrontDeskOpen/Close are "HH:MM" local times; both empty means 24h.
	FrontDeskOpen  string `json:"front_desk_open,omitempty"`
	FrontDeskClose string `json:"front_desk_close,omitempty"`
}

// CancellationRule is one row of the property's cancellation policy table.
// Empty RoomTypeIDs matches every room type; empty dates match every stay.
type CancellationRule struct {
	ID                   string   `json:"id"`
	RoomTypeIDs          []string `json:"room_type_ids,omitempty"`
	StartDate            string   `json:"start_date,omitempty"`
	EndDate              string   `json:"end_date,omitempty"`
	Priority             int      `json:"priority"`
	FreeCancelDaysBefore int      `json:"free_cancel_days_before"`
	CutoffTime           string   `json:"cutoff_time"`
	// Summary may contain {deadline}; PassedSummary is used once the deadline is gone.
	Summary       string `json:"summary"`
	PassedSummary string `json:"passed_summary,omitempty"`
}

type CommerceConfig struct {
	StrategyMode    string            `json:"strategy_mode"`
	UrgencyEnabled  bool              `json:"urgency_enabled"`
	UrgencyTypes    []string          `json:"urgency_types,omitempty"`
	Capabilities    ChannelCapability `json:"capabilities"`
	BreakfastPrice  float64           `json:"breakfast_price,omitempty"`
	LateCheckoutFee float64           `json:"late_checkout_fee,omitempty"`
	RoomTiers       map[string]string `json:"room_tiers,omitempty"`
}

type ChannelCapability struct {
	CanTextLink          bool   `json:"can_text_link"`
	CanTransferFrontDesk bool   `json:"can_transfer_front_desk"`
	CanCollectWaitlist   bool   `json:"can_collect_waitlist"`
	WebBookingURL        string `json:"web_booking_url,omitempty"`
}
