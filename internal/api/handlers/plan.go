package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"trip-fusion-service/internal/api/dto"
	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/ports"
	"trip-fusion-service/internal/services"
)

// One segment planner per priced mode family. The handler picks the
// planner from the request's mode set; each planner owns its upstream
// collaborators and cost annotation.
type PlannerSet struct {
	Transit services.SegmentPlanner
	Taxi    services.SegmentPlanner
	Car     services.SegmentPlanner
}

type PlanHandler struct {
	Planners  PlannerSet
	Selectors []services.Selector
	Location  *time.Location
}

// Plan answers one multi-stop routing request: it validates and decodes
// the stop list, drives the per-segment planning and fusion, and returns
// the fused itineraries. Input errors reject the request before any
// upstream call; a segment that cannot be routed yields a "no route"
// response rather than a partial trip.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.Stops) < 2 {
		writeError(w, r, http.StatusBadRequest, "at least two stops are required")
		return
	}

	stops := make([]domain.Place, 0, len(req.Stops))
	for _, s := range req.Stops {
		place, err := domain.ParsePlace(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		stops = append(stops, place)
	}

	departAt, err := h.parseDeparture(req.Date, req.Time)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	modes := make([]domain.Mode, 0, len(req.Modes))
	for _, m := range req.Modes {
		modes = append(modes, domain.Mode(m))
	}
	if len(modes) == 0 {
		modes = []domain.Mode{domain.ModeTransit, domain.ModeWalk}
	}

	planRequest := services.MultiStopRequest{
		Stops:     stops,
		StopWaits: req.WaitTimes,
		DepartAt:  departAt,
		Options: services.SegmentOptions{
			Modes:          modes,
			NumItineraries: req.NumItineraries,
			Wheelchair:     req.Wheelchair,
			Banned:         req.Banned,
			Taxi: services.TaxiTiers{
				Standard:    req.TaxiStandard,
				Minivan:     req.TaxiMinivan,
				SpecialNeed: req.TaxiSpecial,
			},
			VehicleType: req.VehicleType,
			KmPerYear:   req.KmPerYear,
		},
	}

	planner := services.NewMultiStopPlanner(h.Planners.plannerFor(modes), h.Selectors, h.Location)

	plan, err := planner.Plan(r.Context(), planRequest)
	if err != nil {
		var noRoute *services.NoRouteError
		switch {
		case errors.Is(err, services.ErrInvalidRequest):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.As(err, &noRoute):
			// Routing failures travel in-band, the way the upstream
			// planner reports them; no partial trip is ever returned.
			writeJSON(w, r, http.StatusOK, dto.NewPlanResponse(noRoutePlan(noRoute)))
		default:
			log.Printf("plan failed: %v", err)
			writeError(w, r, http.StatusBadGateway, "upstream planning failed")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewPlanResponse(plan))
}

func (h *PlanHandler) parseDeparture(date, clock string) (time.Time, error) {
	if date == "" && clock == "" {
		return time.Now().In(h.Location), nil
	}
	if clock == "" {
		clock = "00:00"
	}
	departAt, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, h.Location)
	if err != nil {
		return time.Time{}, errors.New("invalid date/time: want date=YYYY-MM-DD time=HH:MM")
	}
	return departAt, nil
}

// plannerFor dispatches on the requested mode set. Taxi wins over car so
// a TAXI+WALK request prices the taxi rather than the private car.
func (h *PlannerSet) plannerFor(modes []domain.Mode) services.SegmentPlanner {
	hasTaxi := false
	hasCar := false
	for _, m := range modes {
		switch m {
		case domain.ModeTaxi:
			hasTaxi = true
		case domain.ModeCar:
			hasCar = true
		}
	}

	switch {
	case hasTaxi:
		return h.Taxi
	case hasCar:
		return h.Car
	default:
		return h.Transit
	}
}

// noRoutePlan shapes an all-or-nothing failure as an empty plan carrying
// the accumulated routing errors plus one entry naming the failed segment.
func noRoutePlan(noRoute *services.NoRouteError) *ports.TripPlan {
	routingErrors := append([]domain.RoutingError(nil), noRoute.RoutingErrors...)
	routingErrors = append(routingErrors, domain.RoutingError{
		Code:        "NO_ROUTE",
		Description: noRoute.Error(),
		InputField:  fmt.Sprintf("segment %d", noRoute.Segment),
	})
	return &ports.TripPlan{RoutingErrors: routingErrors}
}
