package offers_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"stay_offers/internal/domain"
	"stay_offers/internal/offers"
)

var now = time.Date(2026, 1, 20, 15, 0, 0, 0, time.UTC)

func baseRequest() offers.StayRequest {
	return offers.StayRequest{
		PropertyID: "demo-hotel",
		CheckIn:    "2026-02-10",
		CheckOut:   "2026-02-12",
		Adults:     2,
		Rooms:      1,
	}
}

func TestNormalizeRequest_Defaults(t *testing.T) {
	got, err := offers.NormalizeRequest(baseRequest(), "", now)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.Channel != offers.ChannelVoice || got.Currency != "USD" || got.Nights != 2 || got.LeadTimeDays != 21 {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(got.Occupancy) != 1 || got.Occupancy[0].Adults != 2 {
		t.Fatalf("occupancy: %+v", got.Occupancy)
	}
	if got.Profile.TripType != offers.TripCouple || got.Profile.Posture != offers.PostureExperience {
		t.Fatalf("profile: %+v", got.Profile)
	}
	if got.Profile.InventoryState != offers.InventoryUnknown {
		t.Fatalf("inventory state before selection: %s", got.Profile.InventoryState)
	}
}

func TestNormalizeRequest_Currency(t *testing.T) {
	req := baseRequest()
	got, _ := offers.NormalizeRequest(req, "eur", now)
	if got.Currency != "EUR" {
		t.Fatalf("property default: got %s", got.Currency)
	}
	req.Currency = "gbp"
	got, _ = offers.NormalizeRequest(req, "eur", now)
	if got.Currency != "GBP" {
		t.Fatalf("request currency: got %s", got.Currency)
	}
}

func TestNormalizeRequest_LeadTimeNeverNegative(t *testing.T) {
	req := baseRequest()
	req.CheckIn, req.CheckOut = "2026-01-10", "2026-01-12"
	got, err := offers.NormalizeRequest(req, "USD", now)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.LeadTimeDays != 0 || got.Profile.Posture != offers.PostureUrgent {
		t.Fatalf("lead %d posture %s", got.LeadTimeDays, got.Profile.Posture)
	}
}

func TestNormalizeRequest_DistributesOccupancy(t *testing.T) {
	req := baseRequest()
	req.Adults, req.Children, req.Rooms = 3, 2, 2
	got, err := offers.NormalizeRequest(req, "USD", now)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []offers.RoomOccupancy{{Adults: 2, Children: 1}, {Adults: 1, Children: 1}}
	if !reflect.DeepEqual(got.Occupancy, want) {
		t.Fatalf("occupancy: got %+v want %+v", got.Occupancy, want)
	}
	if got.Profile.TripType != offers.TripFamily {
		t.Fatalf("trip type: %s", got.Profile.TripType)
	}
}

func TestNormalizeRequest_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*offers.StayRequest)
		field string
		msg   string
	}{
		{"rooms exceed guests", func(r *offers.StayRequest) { r.Rooms = 99 }, "rooms", "rooms cannot exceed total guests"},
		{"no adults", func(r *offers.StayRequest) { r.Adults = 0 }, "adults", ""},
		{"missing property", func(r *offers.StayRequest) { r.PropertyID = " " }, "property_id", ""},
		{"bad channel", func(r *offers.StayRequest) { r.Channel = "fax" }, "channel", ""},
		{"dates out of order", func(r *offers.StayRequest) { r.CheckOut = "2026-02-10" }, "check_out", ""},
		{"not iso", func(r *offers.StayRequest) { r.CheckIn = "next friday" }, "check_in", ""},
		{"occupancy count", func(r *offers.StayRequest) {
			r.RoomOccupancy = []offers.RoomOccupancy{{Adults: 1}, {Adults: 1}}
		}, "room_occupancy", ""},
		{"occupancy totals", func(r *offers.StayRequest) {
			r.RoomOccupancy = []offers.RoomOccupancy{{Adults: 3}}
		}, "room_occupancy", ""},
		{"child ages", func(r *offers.StayRequest) {
			r.Children = 1
			r.RoomOccupancy = []offers.RoomOccupancy{{Adults: 2, Children: 1, ChildAges: []int{7}}}
		}, "room_occupancy", "per-room child ages are not supported"},
		{"empty room", func(r *offers.StayRequest) {
			r.Rooms = 2
			r.RoomOccupancy = []offers.RoomOccupancy{{Adults: 2}, {}}
		}, "room_occupancy", "room 2 has no guests"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			tc.edit(&req)
			_, err := offers.NormalizeRequest(req, "USD", now)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("want ErrInvalidRequest, got %v", err)
			}
			var ve *offers.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("want field %s, got %v", tc.field, err)
			}
			if tc.msg != "" && ve.Message != tc.msg {
				t.Fatalf("message: got %q want %q", ve.Message, tc.msg)
			}
		})
	}
}

func TestFromIntent(t *testing.T) {
	in := domain.Intent{CheckIn: ptr("2026-02-10"), CheckOut: ptr("2026-02-12"), Adults: ptr(2)}
	if _, err := offers.FromIntent(in, "demo-hotel", offers.ChannelVoice); !errors.Is(err, domain.ErrIntentNotReady) {
		t.Fatalf("unconfirmed intent: got %v", err)
	}
	in.Ready = true
	in.LateArrival = ptr(true)
	req, err := offers.FromIntent(in, "demo-hotel", offers.ChannelWeb)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if req.Rooms != 1 || req.Adults != 2 || !req.Preferences.LateArrival || req.Channel != offers.ChannelWeb {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestBuildProfile(t *testing.T) {
	tests := []struct {
		name                    string
		adults, children, rooms int
		arrival                 time.Weekday
		lead, nights            int
		trip                    offers.TripType
		posture                 offers.Posture
	}{
		{"family defaults to certainty", 2, 1, 1, time.Saturday, 30, 2, offers.TripFamily, offers.PostureCertainty},
		{"weekday solo is business", 1, 0, 1, time.Tuesday, 30, 2, offers.TripBusiness, offers.PostureCertainty},
		{"weekend solo", 1, 0, 1, time.Saturday, 30, 2, offers.TripSolo, offers.PosturePrice},
		{"three adults", 3, 0, 1, time.Friday, 30, 2, offers.TripGroupLite, offers.PosturePrice},
		{"two rooms", 2, 0, 2, time.Friday, 30, 2, offers.TripGroupLite, offers.PosturePrice},
		{"couple", 2, 0, 1, time.Friday, 30, 2, offers.TripCouple, offers.PostureExperience},
		{"lead time first", 2, 0, 1, time.Friday, 2, 6, offers.TripCouple, offers.PostureUrgent},
		{"within a week", 2, 0, 1, time.Friday, 7, 6, offers.TripCouple, offers.PostureCertainty},
		{"long stay", 2, 0, 1, time.Friday, 8, 4, offers.TripCouple, offers.PosturePrice},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := offers.BuildProfile(tc.adults, tc.children, tc.rooms, tc.arrival, tc.lead, tc.nights)
			if p.TripType != tc.trip || p.Posture != tc.posture {
				t.Fatalf("got %s/%s want %s/%s", p.TripType, p.Posture, tc.trip, tc.posture)
			}
		})
	}
}

func TestProfile_WithInventory(t *testing.T) {
	p := offers.CommerceProfile{}
	if got := p.WithInventory(nil).InventoryState; got != offers.InventoryUnknown {
		t.Fatalf("nil: %s", got)
	}
	if got := p.WithInventory(ptr(2)).InventoryState; got != offers.InventoryLow {
		t.Fatalf("2 rooms: %s", got)
	}
	if got := p.WithInventory(ptr(3)).InventoryState; got != offers.InventoryNormal {
		t.Fatalf("3 rooms: %s", got)
	}
}

func ptr[T any](v T) *T { return &v }
