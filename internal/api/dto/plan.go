package dto

import (
	"encoding/json"

	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/ports"
)

// PlanRequest is the caller's multi-stop routing question. Stops use the
// planner's "Name::lat,lon" wire encoding; waitTimes are hours at each
// intermediate stop.
type PlanRequest struct {
	Stops     []string  `json:"stops"`
	WaitTimes []float64 `json:"waitTimes"`

	Date string `json:"date"`
	Time string `json:"time"`

	Modes          []string        `json:"modes"`
	NumItineraries int             `json:"numItineraries"`
	Wheelchair     bool            `json:"wheelchair"`
	Banned         json.RawMessage `json:"banned,omitempty"`

	TaxiStandard bool `json:"taxiStandard"`
	TaxiMinivan  bool `json:"taxiMinivan"`
	TaxiSpecial  bool `json:"taxiSpecial"`

	VehicleType string `json:"vehicleType"`
	KmPerYear   int    `json:"kmPerYear"`
}

// PlanResponse mirrors the trip planner's plan envelope so existing
// clients keep working against the fused result.
type PlanResponse struct {
	Data struct {
		Plan PlanBody `json:"plan"`
	} `json:"data"`
}

type PlanBody struct {
	Itineraries   []domain.Itinerary    `json:"itineraries"`
	RoutingErrors []domain.RoutingError `json:"routingErrors"`
}

// NewPlanResponse wraps a fused plan in the response envelope.
func NewPlanResponse(plan *ports.TripPlan) PlanResponse {
	var res PlanResponse
	res.Data.Plan = PlanBody{
		Itineraries:   plan.Itineraries,
		RoutingErrors: plan.RoutingErrors,
	}
	if res.Data.Plan.Itineraries == nil {
		res.Data.Plan.Itineraries = []domain.Itinerary{}
	}
	if res.Data.Plan.RoutingErrors == nil {
		res.Data.Plan.RoutingErrors = []domain.RoutingError{}
	}
	return res
}
