// Package zonestore loads fare-zone polygon sets from their sources.
package zonestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/geo"
)

// DefaultZoneNames is the fixed zone alphabet of the fare network.
var DefaultZoneNames = []string{"A", "B", "C", "D"}

// FileZoneSource reads one GeoJSON FeatureCollection per zone from a
// directory, following the "zone_<name>.geojson" naming of the source data.
type FileZoneSource struct {
	Dir   string
	Names []string
}

func NewFileZoneSource(dir string, names []string) *FileZoneSource {
	if len(names) == 0 {
		names = DefaultZoneNames
	}
	return &FileZoneSource{Dir: dir, Names: names}
}

// LoadZones parses every configured zone file. Called once at startup; the
// returned map is read-only afterwards.
func (s *FileZoneSource) LoadZones(ctx context.Context) (map[string]domain.FareZone, error) {
	zones := make(map[string]domain.FareZone, len(s.Names))

	for _, name := range s.Names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(s.Dir, fmt.Sprintf("zone_%s.geojson", strings.ToLower(name)))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load zones: zone %s: %w", name, err)
		}

		polygons, err := geo.ParseFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("load zones: zone %s: %w", name, err)
		}
		if len(polygons) == 0 {
			return nil, fmt.Errorf("load zones: zone %s: file %q contains no polygons", name, path)
		}

		zones[name] = domain.FareZone{Name: name, Polygons: polygons}
	}

	return zones, nil
}
