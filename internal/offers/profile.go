package offers

import "time"

type TripType string

const (
	TripFamily    TripType = "family"
	TripBusiness  TripType = "business"
	TripCouple    TripType = "couple"
	TripSolo      TripType = "solo"
	TripGroupLite TripType = "group_lite"
)

type Posture string

const (
	PostureCertainty  Posture = "certainty"
	PosturePrice      Posture = "price"
	PostureExperience Posture = "experience"
	PostureUrgent     Posture = "urgent"
)

type InventoryState string

const (
	InventoryLow     InventoryState = "low"
	InventoryNormal  InventoryState = "normal"
	InventoryUnknown InventoryState = "unknown"
)

type CommerceProfile struct {
	TripType       TripType       `json:"trip_type"`
	Posture        Posture        `json:"decision_posture"`
	InventoryState InventoryState `json:"inventory_state"`
	LeadTimeDays   int            `json:"lead_time_days"`
	Nights         int            `json:"nights"`
}

// BuildProfile derives trip type from the party and arrival weekday, then the
// decision posture from lead time, length of stay and trip type, in that order.
func BuildProfile(adults, children, rooms int, arrival time.Weekday, leadDays, nights int) CommerceProfile {
	trip := tripType(adults, children, rooms, arrival)
	return CommerceProfile{
		TripType:       trip,
		Posture:        posture(trip, leadDays, nights),
		InventoryState: InventoryUnknown,
		LeadTimeDays:   leadDays,
		Nights:         nights,
	}
}

// WithInventory settles the inventory state once the primary offer's room
// availability is known.
func (p CommerceProfile) WithInventory(roomsAvailable *int) CommerceProfile {
	switch {
	case roomsAvailable == nil:
		p.InventoryState = InventoryUnknown
	case *roomsAvailable <= 2:
		p.InventoryState = InventoryLow
	default:
		p.InventoryState = InventoryNormal
	}
	return p
}

func tripType(adults, children, rooms int, arrival time.Weekday) TripType {
	switch {
	case children > 0:
		return TripFamily
	case adults >= 3 || rooms >= 2:
		return TripGroupLite
	case adults == 2:
		return TripCouple
	case arrival >= time.Monday && arrival <= time.Thursday:
		return TripBusiness
	}
	return TripSolo
}

func posture(trip TripType, leadDays, nights int) Posture {
	switch {
	case leadDays <= 2:
		return PostureUrgent
	case leadDays <= 7:
		return PostureCertainty
	case nights >= 4:
		return PosturePrice
	}
	switch trip {
	case TripFamily, TripBusiness:
		return PostureCertainty
	case TripCouple:
		return PostureExperience
	}
	return PosturePrice
}
