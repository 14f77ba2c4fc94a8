package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	httpserver "stay_offers/internal/adapters/http_server"
)

func TestLogger_RecordsRouteAndCall(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(httpserver.Logger(zerolog.New(&buf)))
	r.Get("/v1/calls/{callID}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})

	cases := []struct {
		path   string
		route  string
		callID string
		status int
	}{
		{path: "/v1/calls/abc", route: "/v1/calls/{callID}", callID: "abc", status: 200},
		{path: "/nowhere/123", route: "unmatched", status: 404},
	}
	for _, tc := range cases {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))

		var line struct {
			Route  string `json:"route"`
			CallID string `json:"call_id"`
			Status int    `json:"status"`
			Msg    string `json:"message"`
		}
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("%s: decode log line %q: %v", tc.path, buf.String(), err)
		}
		if line.Route != tc.route || line.CallID != tc.callID || line.Status != tc.status || line.Msg != "http_request" {
			t.Fatalf("%s: log line %+v", tc.path, line)
		}
	}
}

func TestTimeout_WritesProblemBody(t *testing.T) {
	h := httpserver.Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/offers", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rr.Code)
	}
	var p problem
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil || p.Status != 503 {
		t.Fatalf("body %q: %v", rr.Body.String(), err)
	}
}
