package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Runtime configuration resolved from the environment. Collaborator
// endpoints are required; cache and database wiring is optional.
type Config struct {
	Port string

	OTPURL     string
	TaxiAPIURL string
	TaxiAPIKey string

	FareRulesPath string
	ZoneDir       string

	RedisAddr   string // optional, enables the segment plan cache
	DatabaseURL string // optional, enables the Postgres zone source

	Location *time.Location
}

// Load resolves configuration from environment variables. The timezone is
// an explicit parameter of all departure-time arithmetic, never the process
// default.
func Load() (Config, error) {
	cfg := Config{
		Port:          Get("PORT", "3000"),
		OTPURL:        os.Getenv("OTP_URL"),
		TaxiAPIURL:    Get("TAXI_API_URL", "https://taximtl.ville.montreal.qc.ca"),
		TaxiAPIKey:    os.Getenv("TAXI_API_KEY"),
		FareRulesPath: Get("FARE_RULES_PATH", "config/fares.yml"),
		ZoneDir:       Get("ZONE_DIR", "data/zones"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
	}

	if strings.TrimSpace(cfg.OTPURL) == "" {
		return Config{}, fmt.Errorf("load config: OTP_URL is required")
	}

	tz := Get("TIMEZONE", "America/Montreal")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("load config: timezone %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
