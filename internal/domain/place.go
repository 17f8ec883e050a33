package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// A named geographic point. Immutable once resolved from caller input.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// SamePosition reports whether two places share coordinates, ignoring names.
// Upstream planners frequently relabel the same stop between responses.
func (p Place) SamePosition(o Place) bool {
	return p.Lat == o.Lat && p.Lon == o.Lon
}

// EncodePlace renders a place in the trip planner's wire form
// "Name::lat,lon" (e.g. "Savoir-faire Linux, Montreal::45.5342,-73.6205").
func EncodePlace(p Place) string {
	return fmt.Sprintf("%s::%s,%s",
		p.Name,
		strconv.FormatFloat(p.Lat, 'f', -1, 64),
		strconv.FormatFloat(p.Lon, 'f', -1, 64),
	)
}

// ParsePlace decodes the "Name::lat,lon" wire form. The name part may itself
// contain commas; only the part after the last "::" is positional.
func ParsePlace(s string) (Place, error) {
	idx := strings.LastIndex(s, "::")
	if idx < 0 {
		return Place{}, fmt.Errorf("parse place %q: missing \"::\" separator", s)
	}

	name := s[:idx]
	coords := strings.Split(s[idx+2:], ",")
	if len(coords) != 2 {
		return Place{}, fmt.Errorf("parse place %q: want \"lat,lon\" after separator", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse place %q: latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse place %q: longitude: %w", s, err)
	}

	return Place{Name: name, Lat: lat, Lon: lon}, nil
}
