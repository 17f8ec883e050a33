package ports

import (
	"context"
	"encoding/json"
	"time"

	"trip-fusion-service/internal/domain"
)

// One origin/destination/time routing question for the external trip
// planner. Wheelchair and banned-route constraints pass through verbatim.
type TripQuery struct {
	From     domain.Place
	To       domain.Place
	DepartAt time.Time

	Modes          []domain.Mode
	NumItineraries int
	Wheelchair     bool
	Banned         json.RawMessage
}

// Candidate itineraries computed for one trip query, ranked by the planner,
// plus any routing failures it reported.
type TripPlan struct {
	Itineraries   []domain.Itinerary    `json:"itineraries"`
	RoutingErrors []domain.RoutingError `json:"routingErrors"`
}

// Contract for the external trip-computation collaborator.
type TripPlanner interface {
	// Compute candidate itineraries for a single origin->destination hop.
	ComputeTrip(ctx context.Context, q TripQuery) (*TripPlan, error)
}
