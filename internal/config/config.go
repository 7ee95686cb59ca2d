package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	AQICNToken        string
	DeepSeekAPIKey    string

	// DatabaseURL enables the durable Postgres cache; empty means the
	// in-memory row store is used instead.
	DatabaseURL string

	// RefreshInterval controls how often the monitoring cycle runs.
	RefreshInterval time.Duration

	// NarrationInterval controls how often model insights are regenerated.
	NarrationInterval time.Duration

	// CacheTTL is the freshness window of the in-process cache.
	CacheTTL time.Duration

	// CityLimit caps how many roster cities each cycle fetches.
	CityLimit int

	HTTPTimeout time.Duration
	Port        string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.AQICNToken = getenvDefault("AQICN_API_TOKEN", "demo")
	cfg.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	refresh, err := getenvDuration("REFRESH_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = refresh

	narration, err := getenvDuration("NARRATION_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	cfg.NarrationInterval = narration

	ttl, err := getenvDuration("CACHE_TTL", "30m")
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = ttl

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.CityLimit = getenvInt("CITY_LIMIT", 15)
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
