package domain

// Mode tags one continuous movement segment. The planner's transit modes
// (BUS, RAIL, ...) pass through verbatim; STOPOVER is synthesized locally
// when two fused segments do not abut.
type Mode string

const (
	ModeWalk     Mode = "WALK"
	ModeCar      Mode = "CAR"
	ModeTaxi     Mode = "TAXI"
	ModeTransit  Mode = "TRANSIT"
	ModeBus      Mode = "BUS"
	ModeRail     Mode = "RAIL"
	ModeSubway   Mode = "SUBWAY"
	ModeTram     Mode = "TRAM"
	ModeStopover Mode = "STOPOVER"
)

// Encoded polyline shape of a leg.
type Geometry struct {
	Points string `json:"points"`
	Length int    `json:"length"`
}

// Operating agency of a transit or taxi leg, as supplied upstream.
type Agency struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Route served by a transit leg. Headsign identifies the direction and is
// matched by special-route fare rules.
type RouteInfo struct {
	ShortName string `json:"shortName,omitempty"`
	LongName  string `json:"longName,omitempty"`
	Headsign  string `json:"headsign,omitempty"`
}

// Contact details for booking a priced leg (taxi).
type BookingInfo struct {
	PhoneNumber string `json:"phoneNumber,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
}

// One continuous movement segment of a single mode within an itinerary.
// Legs are produced by upstream providers or synthesized (stopover, taxi)
// and are immutable once created. Timestamps are epoch milliseconds,
// distance is meters, duration is seconds.
type Leg struct {
	Mode       Mode     `json:"mode"`
	From       Place    `json:"from"`
	To         Place    `json:"to"`
	StartTime  int64    `json:"startTime"`
	EndTime    int64    `json:"endTime"`
	Distance   float64  `json:"distance"`
	Duration   float64  `json:"duration"`
	Geometry   Geometry `json:"legGeometry"`
	TransitLeg bool     `json:"transitLeg"`

	Agency  *Agency      `json:"agency,omitempty"`
	Route   *RouteInfo   `json:"route,omitempty"`
	Booking *BookingInfo `json:"booking,omitempty"`

	IntermediateStops []Place `json:"intermediateStops,omitempty"`
}
