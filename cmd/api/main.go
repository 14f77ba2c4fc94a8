package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "stay_offers/internal/adapters/http_server"
	"stay_offers/internal/adapters/inventory"
	"stay_offers/internal/adapters/memory"
	"stay_offers/internal/adapters/observability"
	redisad "stay_offers/internal/adapters/redis"
	"stay_offers/internal/app"
	"stay_offers/internal/domain"
	"stay_offers/internal/fixtures"
	"stay_offers/internal/intent"
	"stay_offers/internal/offers"
	"stay_offers/internal/shared"
	mysqlrepo "stay_offers/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.DefaultTimezone).Msg("bad DEFAULT_TIMEZONE")
	}

	// providers
	var (
		inv   domain.InventoryProvider
		props domain.PropertyContextProvider
	)
	if cfg.UseFixtures {
		inv, props = fixtures.Provider{}, fixtures.Provider{}
		log.Warn().Msg("serving fixture inventory and property context")
	} else {
		client, err := inventory.New(cfg.InventoryBase, cfg.InventoryKey, cfg.InventoryRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize inventory client")
		}
		repo, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect failed")
		}
		defer repo.Close()
		log.Info().Msg("database connection ok")
		inv, props = client, repo
	}

	// sessions and cache
	var (
		sessions domain.SessionStore
		cache    domain.Cache
	)
	if cfg.SessionStore == "memory" {
		sessions = memory.NewSessionStore(cfg.SessionTTL, domain.SystemClock)
	} else {
		rdb := redisad.Connect(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rdb.Close()
		sessions = redisad.NewSessionStore(rdb, cfg.SessionTTL)
		cache = redisad.NewCache(rdb, "offers")
	}
	log.Info().Str("sessions", cfg.SessionStore).Bool("cache", cache != nil).Msg("state stores ready")

	conv := app.NewConversationService(sessions, intent.NewResolver(loc), domain.SystemClock)
	offerSvc := app.NewOfferService(app.OfferDeps{
		Inventory:  inv,
		Properties: props,
		Sessions:   sessions,
		Cache:      cache,
		Engine:     offers.NewEngine(fixtures.Scenarios()),
		Clock:      domain.SystemClock,
	}, app.OfferOptions{
		SnapshotTTL: cfg.SnapshotTTL,
		ContextTTL:  cfg.ContextTTL,
		Timeout:     cfg.ResolveTimeout,
		Defaults:    app.DefaultProperty(cfg.DefaultTimezone, cfg.DefaultCurrency, cfg.DefaultStrategy),
	})

	// http
	srv := server.New(cfg.ResolveTimeout + 5*time.Second)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Conv: conv, Offers: offerSvc})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
