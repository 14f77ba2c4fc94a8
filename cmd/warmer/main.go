package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	_ "time/tzdata"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stay_offers/internal/adapters/inventory"
	"stay_offers/internal/adapters/observability"
	redisad "stay_offers/internal/adapters/redis"
	"stay_offers/internal/app"
	"stay_offers/internal/domain"
	"stay_offers/internal/fixtures"
	"stay_offers/internal/offers"
	"stay_offers/internal/shared"
	mysqlrepo "stay_offers/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "warmer")
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	if len(cfg.WarmPropertyIDs) == 0 {
		log.Warn().Msg("WARM_PROPERTY_IDS is empty; nothing to warm")
		return
	}
	log.Info().
		Strs("properties", cfg.WarmPropertyIDs).
		Int("days", cfg.WarmDaysAhead).
		Int("workers", cfg.WarmWorkers).
		Msg("warmer starting")

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.DefaultTimezone).Msg("bad DEFAULT_TIMEZONE")
	}

	var (
		inv   domain.InventoryProvider
		props domain.PropertyContextProvider
	)
	if cfg.UseFixtures {
		inv, props = fixtures.Provider{}, fixtures.Provider{}
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
		inv, props = client, repo
	}

	rdb := redisad.Connect(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()

	offerSvc := app.NewOfferService(app.OfferDeps{
		Inventory:  inv,
		Properties: props,
		Cache:      redisad.NewCache(rdb, "offers"),
		Engine:     offers.NewEngine(nil),
	}, app.OfferOptions{
		SnapshotTTL: cfg.SnapshotTTL,
		ContextTTL:  cfg.ContextTTL,
		Timeout:     cfg.ResolveTimeout,
	})
	warm := app.NewWarmService(offerSvc, domain.SystemClock)
	windows := warm.Windows(cfg.WarmDaysAhead, loc)

	sem := semaphore.NewWeighted(int64(max(cfg.WarmWorkers, 1)))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, id := range cfg.WarmPropertyIDs {
		if err := warm.WarmProperty(ctx, id); err != nil {
			log.Warn().Str("property", id).Err(err).Msg("property warm failed")
			failed.Add(1)
			continue
		}
		for _, win := range windows {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(propertyID, checkIn, checkOut string) {
				defer wg.Done()
				defer sem.Release(1)

				if err := warm.WarmSnapshot(ctx, propertyID, checkIn, checkOut); err != nil {
					log.Warn().Str("property", propertyID).Str("check_in", checkIn).Err(err).Msg("snapshot warm failed")
					failed.Add(1)
					return
				}
				log.Debug().Str("property", propertyID).Str("check_in", checkIn).Msg("snapshot warm ok")
			}(id, win[0], win[1])
		}
	}

	wg.Wait()
	log.Info().Int64("failed", failed.Load()).Msg("warming completed")
}
