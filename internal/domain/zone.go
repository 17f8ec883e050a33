package domain

import "trip-fusion-service/internal/geo"

// A named fare-zone region: one of a small fixed alphabet (A, B, C, D),
// represented as a set of simple polygons with union semantics. Zones are
// loaded once at process start and never mutated, so they are safe for
// concurrent reads.
type FareZone struct {
	Name     string
	Polygons []geo.Polygon
}

// Contains reports whether the point lies inside any polygon of the zone.
func (z FareZone) Contains(p Place) bool {
	pt := geo.Point{Lon: p.Lon, Lat: p.Lat}
	for _, poly := range z.Polygons {
		if poly.Contains(pt) {
			return true
		}
	}
	return false
}
