package services

import (
	"errors"

	"trip-fusion-service/internal/domain"
)

// How one aggregate field combines when consecutive segment itineraries are
// concatenated. Unreported (nil) values never poison a merge: the reported
// side passes through.
//
//   - additive fields sum
//   - boolean fields AND (true only if true in every segment)
//   - override fields take the last segment's value
//   - domain fields use their own merge (taxi pricing concatenation)
//
// StartTime, EndTime and Duration are not in the table: they are recomputed
// from the first and last actual timestamps so stopover gaps never compound
// into the total.
type fieldPolicy struct {
	field string
	apply func(acc, next *domain.Itinerary)
}

var mergePolicies = []fieldPolicy{
	{"transfers", func(a, n *domain.Itinerary) { a.Transfers = addInt(a.Transfers, n.Transfers) }},
	{"walkTime", func(a, n *domain.Itinerary) { a.WalkTime = addFloat(a.WalkTime, n.WalkTime) }},
	{"transitTime", func(a, n *domain.Itinerary) { a.TransitTime = addFloat(a.TransitTime, n.TransitTime) }},
	{"waitingTime", func(a, n *domain.Itinerary) { a.WaitingTime = addFloat(a.WaitingTime, n.WaitingTime) }},
	{"walkDistance", func(a, n *domain.Itinerary) { a.WalkDistance = addFloat(a.WalkDistance, n.WalkDistance) }},
	{"elevationGained", func(a, n *domain.Itinerary) { a.ElevationGained = addFloat(a.ElevationGained, n.ElevationGained) }},
	{"elevationLost", func(a, n *domain.Itinerary) { a.ElevationLost = addFloat(a.ElevationLost, n.ElevationLost) }},
	{"co2", func(a, n *domain.Itinerary) { a.CO2 = addFloat(a.CO2, n.CO2) }},
	{"co2VsBaseline", func(a, n *domain.Itinerary) { a.CO2VsBaseline = addFloat(a.CO2VsBaseline, n.CO2VsBaseline) }},
	{"tooSloped", func(a, n *domain.Itinerary) { a.TooSloped = andBool(a.TooSloped, n.TooSloped) }},
	{"walkLimitExceeded", func(a, n *domain.Itinerary) { a.WalkLimitExceeded = andBool(a.WalkLimitExceeded, n.WalkLimitExceeded) }},
	{"taxiPricing", func(a, n *domain.Itinerary) { a.TaxiPricing = domain.ConcatTaxiOptions(a.TaxiPricing, n.TaxiPricing) }},
	{"drivingCosts", func(a, n *domain.Itinerary) { a.DrivingCost = addFloat(a.DrivingCost, n.DrivingCost) }},
	{"transitFare", func(a, n *domain.Itinerary) { a.TransitFare = addFloat(a.TransitFare, n.TransitFare) }},
}

// FuseItineraries concatenates one itinerary per segment, in stop order,
// into a single continuous itinerary. A synthesized stopover leg bridges
// consecutive segments whenever they do not abut in time and space. Fusing
// a single segment is the identity. Input itineraries are never mutated.
func FuseItineraries(segments []domain.Itinerary) (domain.Itinerary, error) {
	if len(segments) == 0 {
		return domain.Itinerary{}, errors.New("fuse itineraries: no segments")
	}

	acc := segments[0]
	acc.Legs = append([]domain.Leg(nil), segments[0].Legs...)

	for i := 1; i < len(segments); i++ {
		next := segments[i]
		if len(acc.Legs) == 0 || len(next.Legs) == 0 {
			return domain.Itinerary{}, errors.New("fuse itineraries: segment itinerary has no legs")
		}

		prevLast := acc.Legs[len(acc.Legs)-1]
		nextFirst := next.Legs[0]
		if stopover, ok := buildStopoverLeg(prevLast, nextFirst); ok {
			acc.Legs = append(acc.Legs, stopover)
		}
		acc.Legs = append(acc.Legs, next.Legs...)

		for _, p := range mergePolicies {
			p.apply(&acc, &next)
		}

		acc.EndTime = next.EndTime
		acc.Duration = float64(acc.EndTime-acc.StartTime) / 1000
	}

	return acc, nil
}

// buildStopoverLeg synthesizes the zero-distance leg bridging two fused
// segments. It spans from the previous segment's arrival to the next
// segment's departure; no leg is produced when the segments already abut.
func buildStopoverLeg(prevLast, nextFirst domain.Leg) (domain.Leg, bool) {
	abuts := prevLast.EndTime == nextFirst.StartTime && prevLast.To.SamePosition(nextFirst.From)
	if abuts {
		return domain.Leg{}, false
	}

	return domain.Leg{
		Mode:      domain.ModeStopover,
		From:      prevLast.To,
		To:        nextFirst.From,
		StartTime: prevLast.EndTime,
		EndTime:   nextFirst.StartTime,
		Distance:  0,
		Duration:  float64(nextFirst.StartTime-prevLast.EndTime) / 1000,
		Geometry:  domain.Geometry{Points: "", Length: 0},
	}, true
}

func addFloat(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	sum := *a + *b
	return &sum
}

func addInt(a, b *int) *int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	sum := *a + *b
	return &sum
}

func andBool(a, b *bool) *bool {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	both := *a && *b
	return &both
}
