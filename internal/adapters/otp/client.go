// Package otp talks to the external OpenTripPlanner GraphQL endpoint.
package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/platform/obs"
	"trip-fusion-service/internal/ports"
)

// planQuery requests exactly the itinerary fields the fusion and fare
// engines consume.
const planQuery = `query Plan($fromPlace: String!, $toPlace: String!, $date: String!, $time: String!, $arriveBy: Boolean, $modes: [TransportMode], $numItineraries: Int, $wheelchair: Boolean, $banned: InputBanned) {
  plan(fromPlace: $fromPlace, toPlace: $toPlace, date: $date, time: $time, arriveBy: $arriveBy, transportModes: $modes, numItineraries: $numItineraries, wheelchair: $wheelchair, banned: $banned) {
    itineraries {
      startTime endTime duration transfers
      walkTime transitTime waitingTime walkDistance
      elevationGained elevationLost walkLimitExceeded
      legs {
        mode startTime endTime distance duration transitLeg headsign
        from { name lat lon }
        to { name lat lon }
        legGeometry { points length }
        agency { gtfsId name url }
        route { shortName longName }
        intermediateStops { name lat lon }
      }
    }
    routingErrors { code description inputField }
  }
}`

// Planner implements ports.TripPlanner against an OpenTripPlanner GraphQL
// endpoint. The civil timezone used to format departure date/time variables
// is an explicit dependency, never the process default. Safe for concurrent
// use.
type Planner struct {
	session  *http.Client
	endpoint string
	loc      *time.Location
}

func NewPlanner(baseURL string, loc *time.Location) (*Planner, error) {
	if baseURL == "" {
		return nil, errors.New("otp planner: base URL is empty")
	}
	if loc == nil {
		return nil, errors.New("otp planner: timezone location is nil")
	}

	return &Planner{
		session:  &http.Client{Timeout: 15 * time.Second},
		endpoint: baseURL + "/otp/routers/default/index/graphql",
		loc:      loc,
	}, nil
}

// ComputeTrip runs one plan query for a single origin->destination hop.
func (p *Planner) ComputeTrip(ctx context.Context, q ports.TripQuery) (_ *ports.TripPlan, err error) {
	defer obs.Time(ctx, "otp.ComputeTrip")(&err)

	modes := make([]transportMode, 0, len(q.Modes))
	for _, m := range q.Modes {
		modes = append(modes, transportMode{Mode: string(m)})
	}

	departAt := q.DepartAt.In(p.loc)
	body := graphQLRequest{
		Query: planQuery,
		Variables: planVariables{
			FromPlace:      domain.EncodePlace(q.From),
			ToPlace:        domain.EncodePlace(q.To),
			Date:           departAt.Format("2006-01-02"),
			Time:           departAt.Format("15:04"),
			Modes:          modes,
			NumItineraries: q.NumItineraries,
			Wheelchair:     q.Wheelchair,
			Banned:         q.Banned,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("otp: marshal plan query: %w", err)
	}

	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("otp: plan query failed: %w", err)
	}
	defer resp.Body.Close()

	var wire planResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("otp: decode plan response: %w", err)
	}

	plan := &ports.TripPlan{
		Itineraries:   make([]domain.Itinerary, 0, len(wire.Data.Plan.Itineraries)),
		RoutingErrors: make([]domain.RoutingError, 0, len(wire.Data.Plan.RoutingErrors)),
	}
	for _, it := range wire.Data.Plan.Itineraries {
		plan.Itineraries = append(plan.Itineraries, it.toDomain())
	}
	for _, re := range wire.Data.Plan.RoutingErrors {
		plan.RoutingErrors = append(plan.RoutingErrors, re.toDomain())
	}

	return plan, nil
}
