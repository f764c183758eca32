package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PlacesAPIKey string

	GeoIPURL      string
	PlacesBaseURL string

	DefaultRadiusMeters int
	DefaultMaxResults   int

	GeoIPTimeout         time.Duration
	PlacesTimeout        time.Duration
	PlacesMaxRetries     int
	PlacesRetryBaseDelay time.Duration
	PlacesRequestsPerSec int
	EmergencyNumber      string
	EmergencyLabel       string

	Port        string
	PostgresURL string
	JWTSecret   string
	LogLevel    string
	AppEnv      string
}

// Warnings lists settings that were present but unusable.
type Warnings []error

func Default() Config {
	return Config{
		GeoIPURL:             "https://ipinfo.io",
		PlacesBaseURL:        "https://maps.googleapis.com/maps/api/place",
		DefaultRadiusMeters:  5000,
		DefaultMaxResults:    10,
		GeoIPTimeout:         10 * time.Second,
		PlacesTimeout:        10 * time.Second,
		PlacesMaxRetries:     2,
		PlacesRetryBaseDelay: 200 * time.Millisecond,
		PlacesRequestsPerSec: 10,
		EmergencyNumber:      "108",
		EmergencyLabel:       "India Emergency Number",
		Port:                 "8080",
		LogLevel:             "info",
		AppEnv:               "production",
	}
}

// Load reads an optional .env file and then the process environment. Values
// that fail to parse keep their defaults and are reported in the returned
// warnings; Load itself never fails on them.
func Load() (Config, Warnings) {
	_ = godotenv.Load()

	cfg := Default()
	var warnings Warnings

	cfg.PlacesAPIKey = os.Getenv("GOOGLE_PLACES_API_KEY")
	cfg.GeoIPURL = getEnvWithDefault("GEOIP_URL", cfg.GeoIPURL)
	cfg.PlacesBaseURL = getEnvWithDefault("PLACES_BASE_URL", cfg.PlacesBaseURL)
	cfg.EmergencyNumber = getEnvWithDefault("EMERGENCY_NUMBER", cfg.EmergencyNumber)
	cfg.EmergencyLabel = getEnvWithDefault("EMERGENCY_LABEL", cfg.EmergencyLabel)
	cfg.Port = getEnvWithDefault("PORT", cfg.Port)
	cfg.PostgresURL = os.Getenv("POSTGRES_URL")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.AppEnv = getEnvWithDefault("APP_ENV", cfg.AppEnv)

	intVars := []struct {
		key string
		dst *int
	}{
		{"DEFAULT_SEARCH_RADIUS", &cfg.DefaultRadiusMeters},
		{"DEFAULT_MAX_RESULTS", &cfg.DefaultMaxResults},
		{"PLACES_REQUESTS_PER_SECOND", &cfg.PlacesRequestsPerSec},
	}
	for _, v := range intVars {
		if err := readPositiveInt(v.key, v.dst); err != nil {
			warnings = append(warnings, err)
		}
	}

	// zero retries is a valid setting
	if raw := os.Getenv("PLACES_MAX_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			warnings = append(warnings, fmt.Errorf("PLACES_MAX_RETRIES=%q is not a non-negative integer, using %d", raw, cfg.PlacesMaxRetries))
		} else {
			cfg.PlacesMaxRetries = n
		}
	}

	durationVars := []struct {
		key string
		dst *time.Duration
	}{
		{"GEOIP_TIMEOUT", &cfg.GeoIPTimeout},
		{"PLACES_TIMEOUT", &cfg.PlacesTimeout},
		{"PLACES_RETRY_BASE_DELAY", &cfg.PlacesRetryBaseDelay},
	}
	for _, v := range durationVars {
		if err := readDuration(v.key, v.dst); err != nil {
			warnings = append(warnings, err)
		}
	}

	return cfg, warnings
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func readPositiveInt(key string, dst *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fmt.Errorf("%s=%q is not a positive integer, using %d", key, raw, *dst)
	}
	*dst = n
	return nil
}

func readDuration(key string, dst *time.Duration) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fmt.Errorf("%s=%q is not a positive duration, using %s", key, raw, *dst)
	}
	*dst = d
	return nil
}
