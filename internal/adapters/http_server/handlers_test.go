package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	httpserver "stay_offers/internal/adapters/http_server"
	"stay_offers/internal/adapters/memory"
	"stay_offers/internal/app"
	"stay_offers/internal/domain"
	"stay_offers/internal/fixtures"
	"stay_offers/internal/intent"
	"stay_offers/internal/offers"
)

var now = time.Date(2026, 1, 20, 15, 0, 0, 0, time.UTC)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	clock := domain.ClockFunc(func() time.Time { return now })
	sessions := memory.NewSessionStore(time.Hour, clock)
	conv := app.NewConversationService(sessions, intent.NewResolver(loc), clock)
	offerSvc := app.NewOfferService(app.OfferDeps{
		Inventory:  fixtures.Provider{},
		Properties: fixtures.Provider{},
		Sessions:   sessions,
		Engine:     offers.NewEngine(fixtures.Scenarios()),
		Clock:      clock,
	}, app.OfferOptions{Defaults: app.DefaultProperty("UTC", "USD", "balanced")})

	srv := httpserver.New(5 * time.Second)
	srv.MountHandlers(&httpserver.Handlers{Conv: conv, Offers: offerSvc})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Field  string `json:"field"`
}

func TestHealthz(t *testing.T) {
	ts := newServer(t)
	if resp := do(t, http.MethodGet, ts.URL+"/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestCallFlow(t *testing.T) {
	ts := newServer(t)
	base := ts.URL + "/v1/calls/call-42"

	// offers before any turn
	resp := do(t, http.MethodPost, base+"/offers", `{"property_id":"demo-hotel"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("offers for unknown call: %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, base+"/turns", `{"checkIn":"2026-02-10","checkOut":"2026-02-12","adults":"2"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("turn 1: %d", resp.StatusCode)
	}
	turn := decode[app.TurnResult](t, resp)
	if turn.Status != app.TurnNeedsClarification || turn.Reason != intent.ReasonConfirm || turn.CallID != "call-42" {
		t.Fatalf("turn 1: %+v", turn)
	}

	resp = do(t, http.MethodPost, base+"/offers", `{"property_id":"demo-hotel"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("offers before confirmation: %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, base+"/turns", "")
	if turn = decode[app.TurnResult](t, resp); turn.Status != app.TurnOK {
		t.Fatalf("turn 2: %+v", turn)
	}

	resp = do(t, http.MethodGet, base, "")
	call := decode[struct {
		Slots domain.Intent `json:"slots"`
	}](t, resp)
	if call.Slots.Adults == nil || *call.Slots.Adults != 2 || !call.Slots.Ready {
		t.Fatalf("stored slots: %+v", call.Slots)
	}

	resp = do(t, http.MethodPost, base+"/offers", `{"property_id":"demo-hotel","channel":"voice"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("offers: %d", resp.StatusCode)
	}
	out := decode[offers.Response](t, resp)
	if out.Status != offers.StatusOK || len(out.Offers) != 2 || out.Offers[0].Archetype != offers.ArchetypeSafe {
		t.Fatalf("offers: %+v", out)
	}

	if resp = do(t, http.MethodDelete, base, ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("end call: %d", resp.StatusCode)
	}
	if resp = do(t, http.MethodDelete, base, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("end call twice: %d", resp.StatusCode)
	}
}

func TestGenerateOffers(t *testing.T) {
	ts := newServer(t)
	cases := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, resp *http.Response)
	}{
		{
			name:   "default stay",
			body:   `{"property_id":"demo-hotel","check_in":"2026-02-10","check_out":"2026-02-12","adults":2,"rooms":1}`,
			status: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				out := decode[offers.Response](t, resp)
				if len(out.Offers) != 2 || out.Fallback != offers.FallbackNone || out.Trace.RequestID == "" {
					t.Fatalf("response: %+v", out)
				}
			},
		},
		{
			name:   "compressed weekend scenario",
			body:   `{"property_id":"demo-hotel","check_in":"2026-02-10","check_out":"2026-02-12","adults":2,"scenario":"compressed_weekend"}`,
			status: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				out := decode[offers.Response](t, resp)
				if len(out.Offers) != 1 || out.Offers[0].Archetype != offers.ArchetypeSaver {
					t.Fatalf("response: %+v", out)
				}
			},
		},
		{
			name:   "rooms exceed guests",
			body:   `{"property_id":"demo-hotel","check_in":"2026-02-10","check_out":"2026-02-12","adults":2,"rooms":99}`,
			status: http.StatusBadRequest,
			check: func(t *testing.T, resp *http.Response) {
				p := decode[problem](t, resp)
				if p.Detail != "rooms cannot exceed total guests" || p.Field != "rooms" {
					t.Fatalf("problem: %+v", p)
				}
				if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
					t.Fatalf("content type %q", ct)
				}
			},
		},
		{
			name:   "malformed json",
			body:   `{"property_id":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown property degrades",
			body:   `{"property_id":"elsewhere","check_in":"2026-02-10","check_out":"2026-02-12","adults":2}`,
			status: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				out := decode[offers.Response](t, resp)
				if out.Status != offers.StatusNeedsClarification || len(out.Trace.Degraded) != 2 {
					t.Fatalf("response: %+v", out)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/v1/offers", tc.body)
			if resp.StatusCode != tc.status {
				t.Fatalf("status %d, want %d", resp.StatusCode, tc.status)
			}
			if tc.check != nil {
				tc.check(t, resp)
			}
		})
	}
}
