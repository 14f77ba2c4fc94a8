//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "stay_offers/internal/adapters/http_server"
	"stay_offers/internal/adapters/inventory"
	"stay_offers/internal/adapters/observability"
	redisad "stay_offers/internal/adapters/redis"
	"stay_offers/internal/app"
	"stay_offers/internal/domain"
	"stay_offers/internal/fixtures"
	"stay_offers/internal/intent"
	"stay_offers/internal/offers"
	mysqlrepo "stay_offers/internal/storage/mysql"
)

// ---------- helpers ----------
func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sqlx.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// inventoryStub serves the demo snapshot in the provider's camelCase dialect.
func inventoryStub(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasPrefix(r.URL.Path, "/properties/"+fixtures.PropertyID+"/") {
			http.NotFound(w, r)
			return
		}
		qs := r.URL.Query()
		rooms, _ := strconv.Atoi(qs.Get("rooms"))
		snap := fixtures.DefaultSnapshot(domain.AvailabilityQuery{
			PropertyID: fixtures.PropertyID,
			CheckIn:    qs.Get("check_in"),
			CheckOut:   qs.Get("check_out"),
			Rooms:      rooms,
		})
		var roomTypes []map[string]any
		for _, rt := range snap.RoomTypes {
			var plans []map[string]any
			for _, rp := range rt.RatePlans {
				plans = append(plans, map[string]any{
					"ratePlanId":     rp.ID,
					"ratePlanName":   rp.Name,
					"totalAfterTax":  *rp.TotalAfterTax,
					"totalBeforeTax": *rp.TotalBeforeTax,
					"taxesAndFees":   *rp.TaxesAndFees,
					"refundable":     rp.Refundability == domain.Refundable,
					"paymentTiming":  string(rp.PaymentTiming),
				})
			}
			roomTypes = append(roomTypes, map[string]any{
				"roomTypeId":     rt.ID,
				"roomName":       rt.Name,
				"maxOccupancy":   rt.MaxOccupancy,
				"roomsAvailable": *rt.RoomsAvailable,
				"occupancyRate":  *rt.Occupancy * 100,
				"ratePlans":      plans,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"propertyId":   snap.PropertyID,
			"currencyCode": snap.Currency,
			"etag":         "e2e-1",
			"roomTypes":    roomTypes,
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

// ---------- the test ----------
func TestHTTP_EndToEnd_CallToOffers(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=stay_offers",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/stay_offers?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sqlx.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sqlx.Connect("mysql", dsn)
		return e
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	if err := repo.UpsertPropertyContext(context.Background(), fixtures.DefaultProperty()); err != nil {
		t.Fatalf("seed property: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redisad.Connect(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })

	var hits atomic.Int32
	inv, err := inventory.New(inventoryStub(t, &hits).URL, "e2e-key", 50)
	if err != nil {
		t.Fatalf("inventory client: %v", err)
	}

	now := time.Date(2026, 1, 20, 15, 0, 0, 0, time.UTC)
	clock := domain.ClockFunc(func() time.Time { return now })
	loc, _ := time.LoadLocation("America/New_York")
	sessions := redisad.NewSessionStore(rdb, 30*time.Minute)
	conv := app.NewConversationService(sessions, intent.NewResolver(loc), clock)
	offerSvc := app.NewOfferService(app.OfferDeps{
		Inventory:  inv,
		Properties: repo,
		Sessions:   sessions,
		Cache:      redisad.NewCache(rdb, "e2e"),
		Engine:     offers.NewEngine(fixtures.Scenarios()),
		Clock:      clock,
	}, app.OfferOptions{
		SnapshotTTL: time.Minute,
		ContextTTL:  time.Minute,
		Defaults:    app.DefaultProperty("UTC", "USD", "balanced"),
	})

	srv := server.New(10 * time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
	srv.MountHandlers(&server.Handlers{Conv: conv, Offers: offerSvc})
	api := httptest.NewServer(srv.Mux())
	t.Cleanup(api.Close)

	post := func(path, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(api.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	// 1) two turns: read back, then confirm
	for i, body := range []string{`{"check_in":"2026-02-10","nights":2,"adults":2}`, `{}`} {
		resp := post("/v1/calls/e2e-call/turns", body)
		var turn app.TurnResult
		if err := json.NewDecoder(resp.Body).Decode(&turn); err != nil {
			t.Fatalf("turn %d decode: %v", i+1, err)
		}
		wantStatus := app.TurnNeedsClarification
		if i == 1 {
			wantStatus = app.TurnOK
		}
		if turn.Status != wantStatus {
			t.Fatalf("turn %d: %+v", i+1, turn)
		}
	}
	if _, err := sessions.Get(context.Background(), "e2e-call"); err != nil {
		t.Fatalf("session not persisted in redis: %v", err)
	}

	// 2) offers from the confirmed call, twice; the second read hits the cache
	var first offers.Response
	for i := 0; i < 2; i++ {
		resp := post("/v1/calls/e2e-call/offers", `{"property_id":"demo-hotel","channel":"voice"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("offers status %d", resp.StatusCode)
		}
		var out offers.Response
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("offers decode: %v", err)
		}
		if i == 0 {
			first = out
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("inventory provider hit %d times, want 1", n)
	}
	if first.Status != offers.StatusOK || len(first.Offers) != 2 {
		t.Fatalf("offers: %+v", first)
	}
	if first.Offers[0].OfferID != "KSTE:FLEX" || first.Offers[1].OfferID != "KSTE:SAVE" {
		t.Fatalf("offers: %s, %s", first.Offers[0].OfferID, first.Offers[1].OfferID)
	}
	// suite rule loaded from MySQL: seven days before check-in
	if !strings.Contains(first.Offers[0].Policy.CancellationSummary, "February 3") {
		t.Fatalf("cancellation summary: %q", first.Offers[0].Policy.CancellationSummary)
	}
	if first.Trace.SnapshotVersion != "e2e-1" || len(first.Trace.Degraded) != 0 {
		t.Fatalf("trace: %+v", first.Trace)
	}

	// 3) metrics are exposed on the same router
	resp, err := http.Get(api.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %d", resp.StatusCode)
	}
}
