package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"trip-fusion-service/internal/adapters/zonestore"
	"trip-fusion-service/internal/config"
	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/platform/db"
)

// zonetool maintains the fare-zone polygon data:
//
//	zonetool check            validate the GeoJSON zone files
//	zonetool check LAT LON    additionally report which zones contain a point
//	zonetool import           load the zone files into Postgres
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if len(os.Args) < 2 {
		log.Fatal("usage: zonetool <check|import> [lat lon]")
	}

	zoneDir := config.Get("ZONE_DIR", "data/zones")
	zones, err := zonestore.NewFileZoneSource(zoneDir, nil).LoadZones(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	switch os.Args[1] {
	case "check":
		check(zones, os.Args[2:])
	case "import":
		if err := importZones(zones); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown command %q (want check or import)", os.Args[1])
	}
}

func check(zones map[string]domain.FareZone, args []string) {
	for _, name := range zonestore.DefaultZoneNames {
		zone := zones[name]
		vertices := 0
		for _, poly := range zone.Polygons {
			vertices += len(poly.Outer)
		}
		fmt.Printf("zone %s: %d polygons, %d vertices\n", name, len(zone.Polygons), vertices)
	}

	if len(args) < 2 {
		return
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		log.Fatalf("invalid latitude %q", args[0])
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		log.Fatalf("invalid longitude %q", args[1])
	}

	probe := domain.Place{Lat: lat, Lon: lon}
	hits := make([]string, 0, len(zones))
	for _, name := range zonestore.DefaultZoneNames {
		if zones[name].Contains(probe) {
			hits = append(hits, name)
		}
	}
	fmt.Printf("point (%.5f, %.5f) is in zones %v\n", lat, lon, hits)
}

func importZones(zones map[string]domain.FareZone) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for import")
	}

	pool, err := db.Open(databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx := context.Background()
	log.Println("Initializing zone schema...")
	if err := zonestore.InitSchema(ctx, pool); err != nil {
		return err
	}

	log.Println("Importing zone polygons...")
	if err := zonestore.ImportZones(ctx, pool, zones); err != nil {
		return err
	}
	log.Printf("Imported %d zones.", len(zones))

	return nil
}
