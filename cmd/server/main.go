package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"childcare-route-service/internal/adapters/cache"
	"childcare-route-service/internal/adapters/geo"
	"childcare-route-service/internal/adapters/repositories"
	"childcare-route-service/internal/api"
	"childcare-route-service/internal/config"
	"childcare-route-service/internal/platform/db"
	"childcare-route-service/internal/ports"
	"childcare-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, ORS/Google) behind ports and
// starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found (using environment variables)")
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		logrus.Fatal(err)
	}

	geocoder, matrixProvider := buildGeoProviders(cfg)

	planner := services.NewPlanner(store, matrixProvider, cfg.Depot, cfg.CapacityHeuristic)
	editor := services.NewEditor(store)

	router, err := api.NewRouter(&api.Resolver{
		Store:       store,
		Planner:     planner,
		Editor:      editor,
		Geocoder:    geocoder,
		Clock:       systemClock{},
		PlanTimeout: cfg.PlanTimeout,
	}, cfg.AuthSecret)
	if err != nil {
		logrus.Fatal(err)
	}

	// Write timeout is tuned for cold planning runs (external matrix latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logrus.WithField("addr", srv.Addr).Info("server listening")
	logrus.Fatal(srv.ListenAndServe())
}

func openStore(cfg config.Config) (ports.Store, error) {
	if cfg.DatabaseURL == "" {
		logrus.Warn("DATABASE_URL not set, using in-memory store")
		return repositories.NewMemory(), nil
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSchema(pool); err != nil {
		return nil, err
	}

	return repositories.NewPostgresStore(pool), nil
}

// buildGeoProviders selects the geocoder and time-matrix backend. Either may
// come back nil; the planner falls back to great-circle estimates and
// geocodeAddress reports the missing port.
func buildGeoProviders(cfg config.Config) (ports.Geocoder, ports.TimeMatrixProvider) {
	var geocoder ports.Geocoder
	var matrix ports.TimeMatrixProvider

	switch cfg.GeoProvider {
	case "google":
		if cfg.GoogleMapsAPIKey == "" {
			logrus.Warn("GOOGLE_MAPS_API_KEY not set, geo providers disabled")
			break
		}
		p, err := geo.NewGoogleProvider(cfg.GoogleMapsAPIKey)
		if err != nil {
			logrus.WithError(err).Warn("google maps init failed, geo providers disabled")
			break
		}
		geocoder, matrix = p, p
	case "ors":
		if cfg.ORSAPIKey == "" {
			logrus.Warn("ORS_API_KEY not set, geo providers disabled")
			break
		}
		p, err := geo.NewORSProvider(cfg.ORSAPIKey)
		if err != nil {
			logrus.WithError(err).Warn("ORS init failed, geo providers disabled")
			break
		}
		geocoder, matrix = p, p
	default:
		logrus.WithField("provider", cfg.GeoProvider).Warn("unknown GEO_PROVIDER, geo providers disabled")
	}

	// Geocode lookups are slow and stable; cache them in Redis when available.
	if geocoder != nil && cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		geocoder = cache.NewRedisGeocodeCache(client, geocoder, cfg.GeocodeCacheTTL)
	}

	return geocoder, matrix
}

type systemClock struct{}

func (systemClock) Today() string { return time.Now().Format("2006-01-02") }
