package domain

// Intent is the per-conversation slot state. It is replaced wholesale on every
// resolution; nil fields are "not provided yet".
type Intent struct {
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
	Nights   *int    `json:"nights,omitempty"`
	Adults   *int    `json:"adults,omitempty"`
	Rooms    *int    `json:"rooms,omitempty"`
	Children *int    `json:"children,omitempty"`

	PetFriendly *bool `json:"pet_friendly,omitempty"`
	Accessible  *bool `json:"accessible,omitempty"`
	TwoBeds     *bool `json:"two_beds,omitempty"`
	Parking     *bool `json:"parking,omitempty"`
	LateArrival *bool `json:"late_arrival,omitempty"`

	BudgetCap *float64 `json:"budget_cap,omitempty"`
	Scenario  *string  `json:"scenario,omitempty"`
	Timezone  *string  `json:"timezone,omitempty"`

	ConfirmationPending bool `json:"confirmation_pending"`
	// Ready is set once the recapped values were confirmed with no further edits.
	Ready bool `json:"ready"`
	// RecapKey fingerprints the exact values last read back to the caller.
	RecapKey string `json:"recap_key,omitempty"`
}

// Clone returns a deep copy so callers never share pointers across turns.
func (in Intent) Clone() Intent {
	out := in
	out.CheckIn = clonePtr(in.CheckIn)
	out.CheckOut = clonePtr(in.CheckOut)
	out.Nights = clonePtr(in.Nights)
	out.Adults = clonePtr(in.Adults)
	out.Rooms = clonePtr(in.Rooms)
	out.Children = clonePtr(in.Children)
	out.PetFriendly = clonePtr(in.PetFriendly)
	out.Accessible = clonePtr(in.Accessible)
	out.TwoBeds = clonePtr(in.TwoBeds)
	out.Parking = clonePtr(in.Parking)
	out.LateArrival = clonePtr(in.LateArrival)
	out.BudgetCap = clonePtr(in.BudgetCap)
	out.Scenario = clonePtr(in.Scenario)
	out.Timezone = clonePtr(in.Timezone)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
