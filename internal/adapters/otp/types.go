package otp

import (
	"encoding/json"

	"trip-fusion-service/internal/domain"
)

// GraphQL envelope for the plan query.
type graphQLRequest struct {
	Query     string        `json:"query"`
	Variables planVariables `json:"variables"`
}

type planVariables struct {
	FromPlace      string          `json:"fromPlace"`
	ToPlace        string          `json:"toPlace"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	ArriveBy       bool            `json:"arriveBy"`
	Modes          []transportMode `json:"modes"`
	NumItineraries int             `json:"numItineraries,omitempty"`
	Wheelchair     bool            `json:"wheelchair,omitempty"`
	Banned         json.RawMessage `json:"banned,omitempty"`
}

type transportMode struct {
	Mode string `json:"mode"`
}

// Wire shapes of the plan response, trimmed to the fields the fusion and
// fare engines consume.
type planResponse struct {
	Data struct {
		Plan wirePlan `json:"plan"`
	} `json:"data"`
}

type wirePlan struct {
	Itineraries   []wireItinerary    `json:"itineraries"`
	RoutingErrors []wireRoutingError `json:"routingErrors"`
}

type wireRoutingError struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	InputField  json.RawMessage `json:"inputField"`
}

type wirePlace struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type wireGeometry struct {
	Points string `json:"points"`
	Length int    `json:"length"`
}

type wireAgency struct {
	GtfsID string `json:"gtfsId"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

type wireRoute struct {
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
}

type wireLeg struct {
	Mode              string       `json:"mode"`
	From              wirePlace    `json:"from"`
	To                wirePlace    `json:"to"`
	StartTime         int64        `json:"startTime"`
	EndTime           int64        `json:"endTime"`
	Distance          float64      `json:"distance"`
	Duration          float64      `json:"duration"`
	LegGeometry       wireGeometry `json:"legGeometry"`
	TransitLeg        bool         `json:"transitLeg"`
	Headsign          string       `json:"headsign"`
	Agency            *wireAgency  `json:"agency"`
	Route             *wireRoute   `json:"route"`
	IntermediateStops []wirePlace  `json:"intermediateStops"`
}

type wireItinerary struct {
	StartTime         int64     `json:"startTime"`
	EndTime           int64     `json:"endTime"`
	Duration          float64   `json:"duration"`
	Legs              []wireLeg `json:"legs"`
	Transfers         *int      `json:"transfers"`
	WalkTime          *float64  `json:"walkTime"`
	TransitTime       *float64  `json:"transitTime"`
	WaitingTime       *float64  `json:"waitingTime"`
	WalkDistance      *float64  `json:"walkDistance"`
	ElevationGained   *float64  `json:"elevationGained"`
	ElevationLost     *float64  `json:"elevationLost"`
	CO2               *float64  `json:"co2"`
	TooSloped         *bool     `json:"tooSloped"`
	WalkLimitExceeded *bool     `json:"walkLimitExceeded"`
}

func (p wirePlace) toDomain() domain.Place {
	return domain.Place{Name: p.Name, Lat: p.Lat, Lon: p.Lon}
}

func (l wireLeg) toDomain() domain.Leg {
	leg := domain.Leg{
		Mode:       domain.Mode(l.Mode),
		From:       l.From.toDomain(),
		To:         l.To.toDomain(),
		StartTime:  l.StartTime,
		EndTime:    l.EndTime,
		Distance:   l.Distance,
		Duration:   l.Duration,
		Geometry:   domain.Geometry{Points: l.LegGeometry.Points, Length: l.LegGeometry.Length},
		TransitLeg: l.TransitLeg,
	}

	if l.Agency != nil {
		leg.Agency = &domain.Agency{ID: l.Agency.GtfsID, Name: l.Agency.Name, URL: l.Agency.URL}
	}
	if l.Route != nil || l.Headsign != "" {
		route := &domain.RouteInfo{Headsign: l.Headsign}
		if l.Route != nil {
			route.ShortName = l.Route.ShortName
			route.LongName = l.Route.LongName
		}
		leg.Route = route
	}
	for _, s := range l.IntermediateStops {
		leg.IntermediateStops = append(leg.IntermediateStops, s.toDomain())
	}

	return leg
}

func (w wireItinerary) toDomain() domain.Itinerary {
	it := domain.Itinerary{
		StartTime:         w.StartTime,
		EndTime:           w.EndTime,
		Duration:          w.Duration,
		Transfers:         w.Transfers,
		WalkTime:          w.WalkTime,
		TransitTime:       w.TransitTime,
		WaitingTime:       w.WaitingTime,
		WalkDistance:      w.WalkDistance,
		ElevationGained:   w.ElevationGained,
		ElevationLost:     w.ElevationLost,
		CO2:               w.CO2,
		TooSloped:         w.TooSloped,
		WalkLimitExceeded: w.WalkLimitExceeded,
	}
	for _, l := range w.Legs {
		it.Legs = append(it.Legs, l.toDomain())
	}
	return it
}

func (e wireRoutingError) toDomain() domain.RoutingError {
	// inputField is usually a plain enum string, but the schema allows null.
	var field string
	if len(e.InputField) > 0 {
		if err := json.Unmarshal(e.InputField, &field); err != nil {
			field = string(e.InputField)
		}
	}
	return domain.RoutingError{
		Code:        e.Code,
		Description: e.Description,
		InputField:  field,
	}
}
