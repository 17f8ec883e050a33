package zonestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/geo"
)

// PostgresZoneSource loads fare zones from a fare_zone_polygons table where
// each row carries one polygon's outer ring as a JSON [lon, lat] array.
// Rows are written by "zonetool import".
type PostgresZoneSource struct {
	DB *sql.DB
}

func NewPostgresZoneSource(db *sql.DB) *PostgresZoneSource {
	return &PostgresZoneSource{DB: db}
}

func (s *PostgresZoneSource) LoadZones(ctx context.Context) (map[string]domain.FareZone, error) {
	if s.DB == nil {
		return nil, errors.New("zone source: db is nil")
	}

	q := `
	SELECT zone_name, outer_ring
	FROM fare_zone_polygons
	ORDER BY zone_name, polygon_idx;
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load zones: query fare_zone_polygons: %w", err)
	}
	defer rows.Close()

	zones := make(map[string]domain.FareZone)
	for rows.Next() {
		var name string
		var ringJSON []byte
		if err := rows.Scan(&name, &ringJSON); err != nil {
			return nil, fmt.Errorf("load zones: scan rows: %w", err)
		}

		var coords [][2]float64
		if err := json.Unmarshal(ringJSON, &coords); err != nil {
			return nil, fmt.Errorf("load zones: zone %s: decode ring: %w", name, err)
		}
		if len(coords) < 3 {
			return nil, fmt.Errorf("load zones: zone %s: ring has %d vertices, want >= 3", name, len(coords))
		}

		ring := make(geo.Ring, 0, len(coords))
		for _, c := range coords {
			ring = append(ring, geo.Point{Lon: c[0], Lat: c[1]})
		}

		zone := zones[name]
		zone.Name = name
		zone.Polygons = append(zone.Polygons, geo.Polygon{Outer: ring})
		zones[name] = zone
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load zones: row iteration: %w", err)
	}

	if len(zones) == 0 {
		return nil, errors.New("load zones: fare_zone_polygons table is empty")
	}

	return zones, nil
}

// InitSchema creates the zone polygon table when missing.
func InitSchema(ctx context.Context, db *sql.DB) error {
	q := `
	CREATE TABLE IF NOT EXISTS fare_zone_polygons (
		zone_name   TEXT NOT NULL,
		polygon_idx INT  NOT NULL,
		outer_ring  JSONB NOT NULL,
		PRIMARY KEY (zone_name, polygon_idx)
	);
	`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init zone schema: %w", err)
	}
	return nil
}

// ImportZones replaces the stored polygons with the given zone set.
func ImportZones(ctx context.Context, db *sql.DB, zones map[string]domain.FareZone) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import zones: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fare_zone_polygons;`); err != nil {
		return fmt.Errorf("import zones: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO fare_zone_polygons (zone_name, polygon_idx, outer_ring)
	VALUES ($1, $2, $3);
	`)
	if err != nil {
		return fmt.Errorf("import zones: db prepare: %w", err)
	}
	defer stmt.Close()

	for name, zone := range zones {
		for i, poly := range zone.Polygons {
			coords := make([][2]float64, 0, len(poly.Outer))
			for _, p := range poly.Outer {
				coords = append(coords, [2]float64{p.Lon, p.Lat})
			}
			ringJSON, err := json.Marshal(coords)
			if err != nil {
				return fmt.Errorf("import zones: zone %s polygon %d: encode ring: %w", name, i, err)
			}
			if _, err := stmt.ExecContext(ctx, name, i, ringJSON); err != nil {
				return fmt.Errorf("import zones: zone %s polygon %d: %w", name, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import zones: commit: %w", err)
	}

	return nil
}
