// Package geo answers point-in-region queries for fare-zone polygons.
//
// Zone data is small (a handful of polygons, hundreds of vertices) and
// queries are bounded by leg count, so containment is a plain O(vertices)
// ray cast per call with no spatial index.
package geo

// A geographic point as (lon, lat), matching GeoJSON coordinate order.
type Point struct {
	Lon float64
	Lat float64
}

// A closed ring of vertices. The closing vertex may be repeated or omitted;
// both forms are handled.
type Ring []Point

// A simple polygon. Holes are not modeled: zone source data nests no
// exclusions, so only the outer ring is kept when polygons are parsed.
type Polygon struct {
	Outer Ring
}

// Contains reports whether p lies inside the polygon.
//
// Boundary policy: a point exactly on an edge or vertex is INSIDE. Zone
// geodata places transfer points directly on zone seams, and classifying
// seam points as members of both adjacent zones keeps fare classification
// deterministic regardless of floating-point edge direction.
func (poly Polygon) Contains(p Point) bool {
	return poly.Outer.contains(p)
}

func (r Ring) contains(p Point) bool {
	n := len(r)
	if n < 3 {
		return false
	}

	// Explicit boundary check first so the crossing count never decides
	// an on-edge point.
	for i := 0; i < n; i++ {
		if onSegment(r[i], r[(i+1)%n], p) {
			return true
		}
	}

	// Standard even-odd ray cast toward +lon.
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			crossLon := a.Lon + (p.Lat-a.Lat)/(b.Lat-a.Lat)*(b.Lon-a.Lon)
			if p.Lon < crossLon {
				inside = !inside
			}
		}
	}
	return inside
}

// onSegment reports whether p lies on the closed segment [a, b].
func onSegment(a, b, p Point) bool {
	cross := (b.Lon-a.Lon)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lon-a.Lon)
	if cross != 0 {
		return false
	}
	if p.Lon < min(a.Lon, b.Lon) || p.Lon > max(a.Lon, b.Lon) {
		return false
	}
	if p.Lat < min(a.Lat, b.Lat) || p.Lat > max(a.Lat, b.Lat) {
		return false
	}
	return true
}
