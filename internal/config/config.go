package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the port the reference inference service listens on
// locally.
const DefaultAPIURL = "http://localhost:10000"

type Config struct {
	Port           string
	GinMode        string
	APIURL         string
	APIURLFromEnv  bool
	PredictTimeout time.Duration
	WakeTimeout    time.Duration
	SessionTTL     time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	SecureCookie   bool
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "release"),

		SecureCookie: strings.EqualFold(getEnv("COOKIE_SECURE", "false"), "true"),
	}

	cfg.APIURL = os.Getenv("PREDICT_API_URL")
	if cfg.APIURL == "" {
		cfg.APIURL = os.Getenv("API_URL")
	}
	cfg.APIURLFromEnv = cfg.APIURL != ""
	if !cfg.APIURLFromEnv {
		cfg.APIURL = DefaultAPIURL
	}

	var err error
	if cfg.PredictTimeout, err = durationEnv("PREDICT_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.WakeTimeout, err = durationEnv("WAKE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a positive number")
	}
	cfg.RateLimitRPS = rps

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	if err != nil || burst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer")
	}
	cfg.RateLimitBurst = burst

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}
