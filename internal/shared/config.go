package shared

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	MySQLDSN       string
	DBMaxOpenConns int
	DBMaxIdleConns int
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	SyncFlagKey    string

	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration

	WarmWorkers int
	WarmLimit   int
}

func Load() Config {
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/cruise?parseTime=true&charset=utf8mb4&loc=UTC"),
		DBMaxOpenConns: atoi("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns: atoi("DB_MAX_IDLE_CONNS", 10),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SyncFlagKey:    env("SYNC_FLAG_KEY", "import:sync_in_progress"),

		RateLimitRPS:   atof("RATE_LIMIT_RPS", 50),
		RateLimitBurst: atoi("RATE_LIMIT_BURST", 100),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,

		WarmWorkers: atoi("WARM_WORKERS", 8),
		WarmLimit:   atoi("WARM_LIMIT", 500),
	}
	if c.WarmWorkers < 1 {
		log.Warn().Int("workers", c.WarmWorkers).Msg("WARM_WORKERS below 1, using 1")
		c.WarmWorkers = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("invalid integer, using default")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("invalid number, using default")
	}
	return def
}
