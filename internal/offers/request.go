package offers

import (
	"fmt"
	"strings"
	"time"

	"stay_offers/internal/dates"
	"stay_offers/internal/domain"
)

type Channel string

const (
	ChannelVoice Channel = "voice"
	ChannelWeb   Channel = "web"
)

type RoomOccupancy struct {
	Adults    int   `json:"adults"`
	Children  int   `json:"children"`
	ChildAges []int `json:"child_ages,omitempty"`
}

func (o RoomOccupancy) guests() int { return o.Adults + o.Children }

type Preferences struct {
	PetFriendly bool `json:"pet_friendly,omitempty"`
	Accessible  bool `json:"accessible,omitempty"`
	TwoBeds     bool `json:"two_beds,omitempty"`
	Parking     bool `json:"parking,omitempty"`
	LateArrival bool `json:"late_arrival,omitempty"`
}

// StayRequest is the structured request accepted by generate-offers, either
// built from a confirmed Intent or supplied directly by a caller.
type StayRequest struct {
	PropertyID    string          `json:"property_id"`
	Channel       Channel         `json:"channel"`
	CheckIn       string          `json:"check_in"`
	CheckOut      string          `json:"check_out"`
	Adults        int             `json:"adults"`
	Children      int             `json:"children"`
	Rooms         int             `json:"rooms"`
	RoomOccupancy []RoomOccupancy `json:"room_occupancy,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	Preferences   Preferences     `json:"preferences"`
	BudgetCap     *float64        `json:"budget_cap,omitempty"`
	Scenario      string          `json:"scenario,omitempty"`
}

// NormalizedRequest is derived once per resolution and never modified.
type NormalizedRequest struct {
	PropertyID   string          `json:"property_id"`
	Channel      Channel         `json:"channel"`
	CheckIn      string          `json:"check_in"`
	CheckOut     string          `json:"check_out"`
	Nights       int             `json:"nights"`
	Adults       int             `json:"adults"`
	Children     int             `json:"children"`
	Rooms        int             `json:"rooms"`
	Occupancy    []RoomOccupancy `json:"occupancy"`
	Currency     string          `json:"currency"`
	LeadTimeDays int             `json:"lead_time_days"`
	Profile      CommerceProfile `json:"profile"`
	Preferences  Preferences     `json:"preferences"`
	BudgetCap    *float64        `json:"budget_cap,omitempty"`
	Scenario     string          `json:"scenario,omitempty"`
}

// ValidationError is a client-facing structural problem with a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidRequest }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// FromIntent builds a StayRequest from a confirmed intent.
func FromIntent(in domain.Intent, propertyID string, channel Channel) (StayRequest, error) {
	if !in.Ready || in.CheckIn == nil || in.CheckOut == nil || in.Adults == nil {
		return StayRequest{}, domain.ErrIntentNotReady
	}
	req := StayRequest{
		PropertyID: propertyID,
		Channel:    channel,
		CheckIn:    *in.CheckIn,
		CheckOut:   *in.CheckOut,
		Adults:     *in.Adults,
		Rooms:      1,
		BudgetCap:  in.BudgetCap,
	}
	if in.Rooms != nil {
		req.Rooms = *in.Rooms
	}
	if in.Children != nil {
		req.Children = *in.Children
	}
	if in.Scenario != nil {
		req.Scenario = *in.Scenario
	}
	req.Preferences = Preferences{
		PetFriendly: isTrue(in.PetFriendly),
		Accessible:  isTrue(in.Accessible),
		TwoBeds:     isTrue(in.TwoBeds),
		Parking:     isTrue(in.Parking),
		LateArrival: isTrue(in.LateArrival),
	}
	return req, nil
}

// NormalizeRequest validates req and expands it into a NormalizedRequest.
// defaultCurrency is the property's currency; "USD" is used when both are empty.
func NormalizeRequest(req StayRequest, defaultCurrency string, now time.Time) (NormalizedRequest, error) {
	if strings.TrimSpace(req.PropertyID) == "" {
		return NormalizedRequest{}, invalid("property_id", "property_id is required")
	}
	channel := req.Channel
	if channel == "" {
		channel = ChannelVoice
	}
	if channel != ChannelVoice && channel != ChannelWeb {
		return NormalizedRequest{}, invalid("channel", "unsupported channel %q", req.Channel)
	}

	in, err := time.Parse(dates.ISOLayout, req.CheckIn)
	if err != nil {
		return NormalizedRequest{}, invalid("check_in", "check_in must be YYYY-MM-DD")
	}
	out, err := time.Parse(dates.ISOLayout, req.CheckOut)
	if err != nil {
		return NormalizedRequest{}, invalid("check_out", "check_out must be YYYY-MM-DD")
	}
	if !out.After(in) {
		return NormalizedRequest{}, invalid("check_out", "check_out must be after check_in")
	}
	nights := int(out.Sub(in).Hours() / 24)

	if req.Adults < 1 {
		return NormalizedRequest{}, invalid("adults", "at least one adult is required")
	}
	if req.Children < 0 {
		return NormalizedRequest{}, invalid("children", "children cannot be negative")
	}
	rooms := req.Rooms
	if rooms == 0 {
		rooms = 1
	}
	if rooms < 0 {
		return NormalizedRequest{}, invalid("rooms", "rooms must be positive")
	}
	if rooms > req.Adults+req.Children {
		return NormalizedRequest{}, invalid("rooms", "rooms cannot exceed total guests")
	}

	var occ []RoomOccupancy
	if len(req.RoomOccupancy) > 0 {
		occ, err = checkOccupancy(req.RoomOccupancy, req.Adults, req.Children, rooms)
		if err != nil {
			return NormalizedRequest{}, err
		}
	} else {
		occ = distribute(req.Adults, req.Children, rooms)
	}
	for i, r := range occ {
		if r.guests() == 0 {
			return NormalizedRequest{}, invalid("room_occupancy", "room %d has no guests", i+1)
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = strings.ToUpper(strings.TrimSpace(defaultCurrency))
	}
	if currency == "" {
		currency = "USD"
	}

	lead := leadTimeDays(in, now)
	return NormalizedRequest{
		PropertyID:   req.PropertyID,
		Channel:      channel,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		Nights:       nights,
		Adults:       req.Adults,
		Children:     req.Children,
		Rooms:        rooms,
		Occupancy:    occ,
		Currency:     currency,
		LeadTimeDays: lead,
		Profile:      BuildProfile(req.Adults, req.Children, rooms, in.Weekday(), lead, nights),
		Preferences:  req.Preferences,
		BudgetCap:    req.BudgetCap,
		Scenario:     req.Scenario,
	}, nil
}

func checkOccupancy(rooms []RoomOccupancy, adults, children, want int) ([]RoomOccupancy, error) {
	if len(rooms) != want {
		return nil, invalid("room_occupancy", "room_occupancy lists %d rooms but %d were requested", len(rooms), want)
	}
	var a, c int
	out := make([]RoomOccupancy, len(rooms))
	for i, r := range rooms {
		if len(r.ChildAges) > 0 {
			return nil, invalid("room_occupancy", "per-room child ages are not supported")
		}
		if r.Adults < 0 || r.Children < 0 {
			return nil, invalid("room_occupancy", "room %d has a negative guest count", i+1)
		}
		a += r.Adults
		c += r.Children
		out[i] = RoomOccupancy{Adults: r.Adults, Children: r.Children}
	}
	if a != adults || c != children {
		return nil, invalid("room_occupancy", "room_occupancy totals (%d adults, %d children) do not match the request (%d adults, %d children)", a, c, adults, children)
	}
	return out, nil
}

// distribute seats one adult per room first, then deals the remaining adults
// and then the children round-robin, continuing from where the last guest went.
func distribute(adults, children, rooms int) []RoomOccupancy {
	occ := make([]RoomOccupancy, rooms)
	next := 0
	for i := 0; i < rooms && adults > 0; i++ {
		occ[i].Adults++
		adults--
		next = (i + 1) % rooms
	}
	for ; adults > 0; adults-- {
		occ[next].Adults++
		next = (next + 1) % rooms
	}
	for ; children > 0; children-- {
		occ[next].Children++
		next = (next + 1) % rooms
	}
	return occ
}

func leadTimeDays(checkIn, now time.Time) int {
	u := now.UTC()
	today := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	d := int(checkIn.Sub(today).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

func maxGuestsPerRoom(occ []RoomOccupancy) int {
	m := 0
	for _, r := range occ {
		if g := r.guests(); g > m {
			m = g
		}
	}
	return m
}

func isTrue(b *bool) bool { return b != nil && *b }
