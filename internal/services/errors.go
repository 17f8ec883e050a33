package services

import (
	"errors"
	"fmt"

	"trip-fusion-service/internal/domain"
)

var (
	// ErrInvalidRequest marks input errors caught before any upstream call.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoItineraries marks a segment for which the trip planner returned
	// an empty candidate set.
	ErrNoItineraries = errors.New("no itineraries returned")
)

// NoRouteError is the all-or-nothing failure of a multi-stop plan: one
// segment could not be routed or priced, so no partial trip is returned.
// Routing errors accumulated before the failure ride along for the caller.
type NoRouteError struct {
	Segment       int
	RoutingErrors []domain.RoutingError
	Err           error
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("segment %d: no route: %v", e.Segment, e.Err)
}

func (e *NoRouteError) Unwrap() error { return e.Err }
