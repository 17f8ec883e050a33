package geo

import (
	"encoding/json"
	"fmt"
)

// GeoJSON wire types, trimmed to what zone files contain: a
// FeatureCollection of Polygon and MultiPolygon features.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type     string   `json:"type"`
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseFeatureCollection extracts the polygons of a GeoJSON
// FeatureCollection. Interior rings (holes) are dropped; see Polygon.
func ParseFeatureCollection(data []byte) ([]Polygon, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("parse feature collection: unexpected type %q", fc.Type)
	}

	polygons := make([]Polygon, 0, len(fc.Features))
	for i, f := range fc.Features {
		switch f.Geometry.Type {
		case "Polygon":
			var rings [][][2]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil {
				return nil, fmt.Errorf("parse feature %d: polygon coordinates: %w", i, err)
			}
			poly, err := polygonFromRings(rings)
			if err != nil {
				return nil, fmt.Errorf("parse feature %d: %w", i, err)
			}
			polygons = append(polygons, poly)

		case "MultiPolygon":
			var multi [][][][2]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &multi); err != nil {
				return nil, fmt.Errorf("parse feature %d: multipolygon coordinates: %w", i, err)
			}
			for j, rings := range multi {
				poly, err := polygonFromRings(rings)
				if err != nil {
					return nil, fmt.Errorf("parse feature %d polygon %d: %w", i, j, err)
				}
				polygons = append(polygons, poly)
			}

		default:
			return nil, fmt.Errorf("parse feature %d: unsupported geometry %q", i, f.Geometry.Type)
		}
	}

	return polygons, nil
}

func polygonFromRings(rings [][][2]float64) (Polygon, error) {
	if len(rings) == 0 {
		return Polygon{}, fmt.Errorf("polygon has no rings")
	}

	outer := make(Ring, 0, len(rings[0]))
	for _, c := range rings[0] {
		outer = append(outer, Point{Lon: c[0], Lat: c[1]})
	}
	if len(outer) < 3 {
		return Polygon{}, fmt.Errorf("outer ring has %d vertices, want >= 3", len(outer))
	}

	return Polygon{Outer: outer}, nil
}
