package intent

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"stay_offers/internal/domain"
)

// slotAliases lists the payload keys accepted for each slot, first match wins.
var slotAliases = map[string][]string{
	"check_in":     {"check_in", "checkIn", "checkin", "check_in_date", "arrival", "arrival_date"},
	"check_out":    {"check_out", "checkOut", "checkout", "check_out_date", "departure", "departure_date"},
	"nights":       {"nights", "num_nights", "length_of_stay", "los"},
	"adults":       {"adults", "num_adults", "adult_count"},
	"rooms":        {"rooms", "num_rooms", "room_count"},
	"children":     {"children", "kids", "num_children", "child_count"},
	"pet_friendly": {"pet_friendly", "petFriendly", "pets"},
	"accessible":   {"accessible", "accessibility", "ada"},
	"two_beds":     {"two_beds", "twoBeds", "needs_two_beds"},
	"parking":      {"parking", "needs_parking"},
	"late_arrival": {"late_arrival", "lateArrival"},
	"budget_cap":   {"budget_cap", "budgetCap", "budget", "max_price"},
	"scenario":     {"scenario", "scenario_tag"},
	"timezone":     {"timezone", "tz", "time_zone"},
}

// coerce keeps only well-typed values; anything else is treated as absent.
func coerce(payload map[string]any) domain.Intent {
	var u domain.Intent
	if payload == nil {
		return u
	}
	u.CheckIn = str(payload, "check_in")
	u.CheckOut = str(payload, "check_out")
	u.Nights = count(payload, "nights", 1)
	u.Adults = count(payload, "adults", 1)
	u.Rooms = count(payload, "rooms", 1)
	u.Children = count(payload, "children", 0)
	u.PetFriendly = boolean(payload, "pet_friendly")
	u.Accessible = boolean(payload, "accessible")
	u.TwoBeds = boolean(payload, "two_beds")
	u.Parking = boolean(payload, "parking")
	u.LateArrival = boolean(payload, "late_arrival")
	if f := number(payload, "budget_cap"); f != nil && *f > 0 {
		u.BudgetCap = f
	}
	u.Scenario = str(payload, "scenario")
	if tz := str(payload, "timezone"); tz != nil {
		if _, err := time.LoadLocation(*tz); err == nil {
			u.Timezone = tz
		}
	}
	return u
}

func lookup(m map[string]any, key string) (any, bool) {
	for _, k := range slotAliases[key] {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func str(m map[string]any, key string) *string {
	v, ok := lookup(m, key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func boolean(m map[string]any, key string) *bool {
	v, ok := lookup(m, key)
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

// number accepts JSON numbers and numeric strings ("2", "2.0").
func number(m map[string]any, key string) *float64 {
	v, ok := lookup(m, key)
	if !ok {
		return nil
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		p, err := n.Float64()
		if err != nil {
			return nil
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// count returns a whole number >= min, or nil.
func count(m map[string]any, key string, min int) *int {
	f := number(m, key)
	if f == nil || *f != math.Trunc(*f) || *f < float64(min) || *f > 1e6 {
		return nil
	}
	n := int(*f)
	return &n
}
