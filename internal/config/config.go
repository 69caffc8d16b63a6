package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Cfg is the global configuration loaded at startup.
var Cfg Config

// Config holds all application configuration.
type Config struct {
	// Server
	Port    string
	BaseURL string

	// Sentry
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string

	// Rate limiter
	RateLimitRPS   int
	RateLimitBurst int

	// Tariff feed
	TariffFeedEnabled  bool
	TariffFeedURL      string
	TariffFeedInterval time.Duration

	// Quote store
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QuoteTTL      time.Duration

	// Contract parsing
	ContractMaxBytes int64

	// HTTP
	UserAgent string

	// Gzip
	GzipEnabled bool

	// Guides
	GuidesDir string
}

// Load reads .env (if present) and populates Cfg from environment variables.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables")
	}

	Cfg = Config{
		Port:    envOr("PORT", "8080"),
		BaseURL: envOr("BASE_URL", "https://coutloa.fr"),

		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: envOr("SENTRY_ENVIRONMENT", "production"),
		SentryRelease:     envOr("SENTRY_RELEASE", "coutloa@1.0.0"),

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 30),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 60),

		TariffFeedEnabled:  envBool("TARIFF_FEED_ENABLED", false),
		TariffFeedURL:      envOr("TARIFF_FEED_URL", ""),
		TariffFeedInterval: envDuration("TARIFF_FEED_INTERVAL", 24*time.Hour),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		QuoteTTL:      envDuration("QUOTE_TTL", 30*24*time.Hour),

		ContractMaxBytes: int64(envInt("CONTRACT_MAX_BYTES", 5<<20)),

		UserAgent: envOr("USER_AGENT", "Mozilla/5.0 (compatible; CoutLOABot/1.0; +https://coutloa.fr)"),

		GzipEnabled: envBool("GZIP_ENABLED", true),

		GuidesDir: envOr("GUIDES_DIR", "content/guides"),
	}

	log.Printf("config: loaded (port=%s, tariff_feed=%v, redis=%v, gzip=%v)",
		Cfg.Port, Cfg.TariffFeedEnabled, Cfg.RedisAddr != "", Cfg.GzipEnabled)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
