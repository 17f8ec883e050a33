package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"trip-fusion-service/internal/adapters/cache"
	"trip-fusion-service/internal/adapters/otp"
	"trip-fusion-service/internal/adapters/taxi"
	"trip-fusion-service/internal/adapters/zonestore"
	"trip-fusion-service/internal/api"
	"trip-fusion-service/internal/api/handlers"
	"trip-fusion-service/internal/config"
	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/platform/db"
	"trip-fusion-service/internal/ports"
	"trip-fusion-service/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (OTP, taxi registry, zone sources, Redis) behind ports and starts the
// HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.TaxiAPIKey == "" {
		log.Fatal("TAXI_API_KEY is required")
	}

	rules, err := config.LoadFareRules(cfg.FareRulesPath)
	if err != nil {
		log.Fatal(err)
	}

	zones, err := loadZones(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Loaded %d fare zones", len(zones))

	classifier, err := services.NewFareClassifier(rules, zones)
	if err != nil {
		log.Fatal(err)
	}

	trips, err := otp.NewPlanner(cfg.OTPURL, cfg.Location)
	if err != nil {
		log.Fatal(err)
	}

	quotes, err := taxi.NewQuoter(cfg.TaxiAPIURL, cfg.TaxiAPIKey)
	if err != nil {
		log.Fatal(err)
	}

	planners := handlers.PlannerSet{
		Transit: &services.TransitSegmentPlanner{Trips: trips, Fares: classifier},
		Taxi:    &services.TaxiSegmentPlanner{Trips: trips, Quotes: quotes},
		Car:     &services.CarSegmentPlanner{Trips: trips, Costs: rules.DrivingCosts},
	}

	// A Redis plan cache shares identical per-segment calls across selector
	// slots. Without Redis the planners just call upstream every time.
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		planCache, err := cache.NewRedisPlanCache(client, 2*time.Minute)
		if err != nil {
			log.Fatal(err)
		}
		planners.Transit = &services.CachedSegmentPlanner{Inner: planners.Transit, Cache: planCache}
		planners.Taxi = &services.CachedSegmentPlanner{Inner: planners.Taxi, Cache: planCache}
		planners.Car = &services.CachedSegmentPlanner{Inner: planners.Car, Cache: planCache}
		log.Printf("Segment plan cache enabled addr=%s", cfg.RedisAddr)
	}

	selectors := services.DefaultSelectors()
	router := api.NewRouter(planners, selectors, cfg.Location)

	// Timeouts are tuned for multi-stop planning (several chained external
	// calls per request).
	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// loadZones picks the zone source: Postgres when DATABASE_URL is set,
// otherwise the GeoJSON files shipped with the service.
func loadZones(cfg config.Config) (map[string]domain.FareZone, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var source ports.ZoneSource
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		source = zonestore.NewPostgresZoneSource(pool)
	} else {
		source = zonestore.NewFileZoneSource(cfg.ZoneDir, nil)
	}

	return source.LoadZones(ctx)
}
