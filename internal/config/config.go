package config

import (
	"os"
	"strconv"
	"time"

	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/services"
)

// Config is the environment-backed process configuration, loaded once at
// startup and read-only afterwards.
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	AuthSecret  string

	// GeoProvider selects the geocoding/time-matrix backend: "ors" (the
	// default when GEO_PROVIDER is unset) or "google". Any other value, or a
	// selected provider without its API key, disables external providers; the
	// planner then runs on great-circle estimates and geocodeAddress reports a
	// port failure.
	GeoProvider      string
	ORSAPIKey        string
	GoogleMapsAPIKey string

	Depot             domain.Coordinates
	CapacityHeuristic int

	GeocodeCacheTTL time.Duration
	PlanTimeout     time.Duration
}

func Load() Config {
	var cfg Config
	cfg.Port = envOrDefault("PORT", "8080")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.AuthSecret = envOrDefault("AUTH_SECRET", "dev-secret-change-me")

	cfg.GeoProvider = envOrDefault("GEO_PROVIDER", "ors")
	cfg.ORSAPIKey = os.Getenv("ORS_API_KEY")
	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	// Depot defaults to the facility's location.
	cfg.Depot = domain.Coordinates{
		Lat: envOrDefaultFloat("DEPOT_LAT", 47.6062),
		Lon: envOrDefaultFloat("DEPOT_LON", -122.3321),
	}
	cfg.CapacityHeuristic = envOrDefaultInt("CAPACITY_HEURISTIC", services.DefaultCapacityHeuristic)

	cfg.GeocodeCacheTTL = envOrDefaultDuration("GEOCODE_CACHE_TTL", 30*24*time.Hour)
	cfg.PlanTimeout = envOrDefaultDuration("PLAN_TIMEOUT", 2*time.Minute)

	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
