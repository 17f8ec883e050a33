package domain

import (
	"fmt"
	"strings"
)

// One coherent multimodal trip: an ordered sequence of legs plus aggregate
// fields. Aggregates that upstream planners may omit are pointers; nil means
// "not reported" and is distinct from zero when itineraries are fused.
//
// Invariants: legs[i].To and legs[i+1].From coincide in space (a synthesized
// stopover leg fills any gap), StartTime == legs[0].StartTime,
// EndTime == legs[last].EndTime, Duration == (EndTime-StartTime)/1000.
type Itinerary struct {
	StartTime int64   `json:"startTime"`
	EndTime   int64   `json:"endTime"`
	Duration  float64 `json:"duration"`
	Legs      []Leg   `json:"legs"`

	Transfers *int `json:"transfers,omitempty"`

	WalkTime     *float64 `json:"walkTime,omitempty"`
	TransitTime  *float64 `json:"transitTime,omitempty"`
	WaitingTime  *float64 `json:"waitingTime,omitempty"`
	WalkDistance *float64 `json:"walkDistance,omitempty"`

	ElevationGained *float64 `json:"elevationGained,omitempty"`
	ElevationLost   *float64 `json:"elevationLost,omitempty"`

	CO2           *float64 `json:"co2,omitempty"`
	CO2VsBaseline *float64 `json:"co2VsBaseline,omitempty"`

	TooSloped         *bool `json:"tooSloped,omitempty"`
	WalkLimitExceeded *bool `json:"walkLimitExceeded,omitempty"`

	// Cost annotations. Each is set by exactly one mode handler and stays
	// nil for the others.
	TaxiPricing *TaxiOption `json:"taxiPricing,omitempty"`
	DrivingCost *float64    `json:"drivingCosts,omitempty"`
	TransitFare *float64    `json:"transitFare,omitempty"`
}

// TotalDistance sums leg distances in meters.
func (it *Itinerary) TotalDistance() float64 {
	var total float64
	for _, leg := range it.Legs {
		total += leg.Distance
	}
	return total
}

// LastPlace returns the arrival place of the final leg.
func (it *Itinerary) LastPlace() (Place, bool) {
	if len(it.Legs) == 0 {
		return Place{}, false
	}
	return it.Legs[len(it.Legs)-1].To, true
}

// StructuralKey identifies an itinerary by its content rather than by
// reference: leg modes, endpoints and timestamps. Selectors use it to
// deduplicate candidates that resolve to the same underlying trip.
func (it *Itinerary) StructuralKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d", it.StartTime, it.EndTime)
	for _, leg := range it.Legs {
		fmt.Fprintf(&b, ";%s:%d-%d:%f,%f>%f,%f",
			leg.Mode, leg.StartTime, leg.EndTime,
			leg.From.Lat, leg.From.Lon, leg.To.Lat, leg.To.Lon,
		)
	}
	return b.String()
}

// A routing failure reported by the trip planner for one segment, surfaced
// to the caller alongside any itineraries that were produced.
type RoutingError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	InputField  string `json:"inputField,omitempty"`
}
