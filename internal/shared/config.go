package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	InventoryBase string
	InventoryKey  string
	InventoryRPS  int
	UseFixtures   bool

	SessionStore   string // redis|memory
	SessionTTL     time.Duration
	SnapshotTTL    time.Duration
	ContextTTL     time.Duration
	ResolveTimeout time.Duration

	DefaultTimezone string
	DefaultCurrency string
	DefaultStrategy string

	WarmPropertyIDs []string
	WarmDaysAhead   int
	WarmWorkers     int
}

// Load reads the environment, after merging an optional .env file.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	secs := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Second
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/stay_offers?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		InventoryBase: env("INVENTORY_BASE_URL", ""),
		InventoryKey:  env("INVENTORY_API_KEY", ""),
		InventoryRPS:  atoi("INVENTORY_RPS", 5),
		UseFixtures:   envBool("USE_FIXTURES", false),

		SessionStore:   strings.ToLower(env("SESSION_STORE", "redis")),
		SessionTTL:     secs("SESSION_TTL_SECONDS", 1800),
		SnapshotTTL:    secs("SNAPSHOT_TTL_SECONDS", 120),
		ContextTTL:     secs("CONTEXT_TTL_SECONDS", 900),
		ResolveTimeout: secs("RESOLVE_TIMEOUT_SECONDS", 8),

		DefaultTimezone: env("DEFAULT_TIMEZONE", "UTC"),
		DefaultCurrency: env("DEFAULT_CURRENCY", "USD"),
		DefaultStrategy: env("DEFAULT_STRATEGY", "balanced"),

		WarmPropertyIDs: splitList(env("WARM_PROPERTY_IDS", "")),
		WarmDaysAhead:   atoi("WARM_DAYS_AHEAD", 14),
		WarmWorkers:     atoi("WARM_WORKERS", 4),
	}
	if !c.UseFixtures && c.InventoryBase == "" {
		log.Warn().Msg("INVENTORY_BASE_URL is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
