package main

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"stay_offers/internal/adapters/observability"
	"stay_offers/internal/fixtures"
	"stay_offers/internal/shared"
	mysqlrepo "stay_offers/internal/storage/mysql"
)

// seed loads the demo property context into MySQL.
func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, "seed")

	repo, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	defer repo.Close()

	pc := fixtures.DefaultProperty()
	if err := repo.UpsertPropertyContext(context.Background(), pc); err != nil {
		log.Error().Err(err).Str("property", pc.PropertyID).Msg("seed failed")
		return
	}
	log.Info().Str("property", pc.PropertyID).Int("rules", len(pc.Cancellation)).Msg("seed ok")
}
