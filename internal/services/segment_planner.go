package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/twpayne/go-polyline"
	"golang.org/x/sync/errgroup"

	"trip-fusion-service/internal/config"
	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/ports"
)

// Taxi vehicle-class flags requested by the caller.
type TaxiTiers struct {
	Standard    bool
	Minivan     bool
	SpecialNeed bool
}

// Any reports whether at least one tier is selected.
func (t TaxiTiers) Any() bool { return t.Standard || t.Minivan || t.SpecialNeed }

// Caller options that apply to every segment of a multi-stop request.
type SegmentOptions struct {
	Modes          []domain.Mode
	NumItineraries int
	Wheelchair     bool
	Banned         json.RawMessage

	Taxi        TaxiTiers
	VehicleType string
	KmPerYear   int
}

// One origin/destination/time tuple derived from consecutive stops.
// Ephemeral: created per segment, never persisted.
type SegmentRequest struct {
	From     domain.Place
	To       domain.Place
	DepartAt time.Time
	Options  SegmentOptions
}

// SegmentPlanner wraps the external calls needed to plan one single-hop
// segment, returning the candidate itineraries for it.
type SegmentPlanner interface {
	PlanSegment(ctx context.Context, req SegmentRequest) (*ports.TripPlan, error)
}

func (r SegmentRequest) tripQuery() ports.TripQuery {
	return ports.TripQuery{
		From:           r.From,
		To:             r.To,
		DepartAt:       r.DepartAt,
		Modes:          r.Options.Modes,
		NumItineraries: r.Options.NumItineraries,
		Wheelchair:     r.Options.Wheelchair,
		Banned:         r.Options.Banned,
	}
}

// TransitSegmentPlanner computes a transit trip and classifies a fare for
// every candidate. A classification gap leaves the fare unset and is never
// an error.
type TransitSegmentPlanner struct {
	Trips ports.TripPlanner
	Fares *FareClassifier
}

func (p *TransitSegmentPlanner) PlanSegment(ctx context.Context, req SegmentRequest) (*ports.TripPlan, error) {
	plan, err := p.Trips.ComputeTrip(ctx, req.tripQuery())
	if err != nil {
		return nil, fmt.Errorf("plan transit segment: %w", err)
	}

	if p.Fares != nil {
		for i := range plan.Itineraries {
			p.Fares.ClassifyFare(&plan.Itineraries[i])
		}
	}

	return plan, nil
}

// CarSegmentPlanner computes a car trip and annotates each candidate with
// an estimated driving cost from the configured per-km rates.
type CarSegmentPlanner struct {
	Trips ports.TripPlanner
	Costs config.DrivingCosts
}

func (p *CarSegmentPlanner) PlanSegment(ctx context.Context, req SegmentRequest) (*ports.TripPlan, error) {
	plan, err := p.Trips.ComputeTrip(ctx, req.tripQuery())
	if err != nil {
		return nil, fmt.Errorf("plan car segment: %w", err)
	}

	perKm, ok := p.Costs.PerKm[req.Options.VehicleType]
	if !ok || req.Options.VehicleType == "" {
		return plan, nil
	}

	// Fixed annual ownership costs spread over the declared mileage.
	if req.Options.KmPerYear > 0 {
		perKm += p.Costs.FixedAnnual[req.Options.VehicleType] / float64(req.Options.KmPerYear)
	}

	for i := range plan.Itineraries {
		cost := perKm * plan.Itineraries[i].TotalDistance() / 1000
		plan.Itineraries[i].DrivingCost = &cost
	}

	return plan, nil
}

// TaxiSegmentPlanner joins the trip planner and the taxi pricing service
// for one segment. The two upstream calls run concurrently; the segment
// fails when either fails, and also when the trip response carries zero
// itineraries, because the pricing options then have no trip to template
// from. No "priced but unrouted" partial result ever surfaces.
type TaxiSegmentPlanner struct {
	Trips  ports.TripPlanner
	Quotes ports.PriceQuoter
}

func (p *TaxiSegmentPlanner) PlanSegment(ctx context.Context, req SegmentRequest) (*ports.TripPlan, error) {
	// The trip planner has no TAXI mode; route it as a car trip and keep
	// the taxi semantics local.
	query := req.tripQuery()
	modes := make([]domain.Mode, len(query.Modes))
	for i, m := range query.Modes {
		if m == domain.ModeTaxi {
			m = domain.ModeCar
		}
		modes[i] = m
	}
	query.Modes = modes

	var (
		plan    *ports.TripPlan
		options []domain.TaxiOption
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plan, err = p.Trips.ComputeTrip(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		options, err = p.Quotes.QuotePrice(gctx, ports.PriceQuery{
			From:        req.From,
			To:          req.To,
			Standard:    req.Options.Taxi.Standard,
			Minivan:     req.Options.Taxi.Minivan,
			SpecialNeed: req.Options.Taxi.SpecialNeed,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("plan taxi segment: %w", err)
	}

	if len(plan.Itineraries) == 0 {
		return nil, fmt.Errorf("plan taxi segment: %w", ErrNoItineraries)
	}

	taxed := buildTaxiItineraries(plan, options, req.DepartAt.UnixMilli())
	return &ports.TripPlan{
		Itineraries:   taxed,
		RoutingErrors: plan.RoutingErrors,
	}, nil
}

// buildTaxiItineraries synthesizes one candidate itinerary per pricing
// option. The routed car trip is the template for fields the pricing
// service cannot supply (geometry, elevation); time and cost come from the
// option itself. The option's departure is clamped to the requested start
// so a quote computed "from now" cannot begin in the past of the trip.
func buildTaxiItineraries(plan *ports.TripPlan, options []domain.TaxiOption, requestedStart int64) []domain.Itinerary {
	var carLeg *domain.Leg
	base := &plan.Itineraries[0]
	for i := range plan.Itineraries {
		for j := range plan.Itineraries[i].Legs {
			if plan.Itineraries[i].Legs[j].Mode == domain.ModeCar {
				base = &plan.Itineraries[i]
				carLeg = &plan.Itineraries[i].Legs[j]
				break
			}
		}
		if carLeg != nil {
			break
		}
	}

	from := plan.Itineraries[0].Legs[0].From
	lastItinerary := plan.Itineraries[len(plan.Itineraries)-1]
	to := lastItinerary.Legs[len(lastItinerary.Legs)-1].To

	var geometry domain.Geometry
	var distance float64
	if carLeg != nil {
		geometry = carLeg.Geometry
		distance = carLeg.Distance
	} else {
		points := polyline.EncodeCoords([][]float64{{from.Lat, from.Lon}, {to.Lat, to.Lon}})
		geometry = domain.Geometry{Points: string(points), Length: 2}
	}

	itineraries := make([]domain.Itinerary, 0, len(options))
	for _, option := range options {
		option := option
		offset := option.ArrivalTime - option.DepartureTime
		startTime := option.DepartureTime
		if requestedStart > startTime {
			startTime = requestedStart
		}
		endTime := startTime + offset

		var duration float64
		if option.EstimatedTravelTime != nil {
			duration = *option.EstimatedTravelTime
		} else {
			duration = float64(offset) / 1000
		}

		waiting := option.EstimatedWaitTime
		zero := 0.0
		zeroInt := 0
		flagFalse := false

		itineraries = append(itineraries, domain.Itinerary{
			StartTime: startTime,
			EndTime:   endTime,
			Duration:  duration,
			Legs: []domain.Leg{{
				Mode:      domain.ModeTaxi,
				From:      from,
				To:        to,
				StartTime: startTime,
				EndTime:   endTime,
				Distance:  distance,
				Duration:  duration,
				Geometry:  geometry,
				Agency: &domain.Agency{
					ID:   option.Booking.AgencyID,
					Name: option.Booking.AgencyName,
					URL:  option.Booking.WebURL,
				},
				Booking: &domain.BookingInfo{
					PhoneNumber: option.Booking.PhoneNumber,
					WebURL:      option.Booking.WebURL,
				},
			}},
			Transfers:         &zeroInt,
			WalkTime:          &zero,
			TransitTime:       &zero,
			WaitingTime:       &waiting,
			WalkDistance:      &zero,
			ElevationGained:   base.ElevationGained,
			ElevationLost:     base.ElevationLost,
			WalkLimitExceeded: &flagFalse,
			TaxiPricing:       &option,
		})
	}

	return itineraries
}

// CachedSegmentPlanner shares identical upstream calls between selector
// slots through a PlanCache. Cache failures degrade to a direct call: the
// cache is an optimization, never a dependency.
type CachedSegmentPlanner struct {
	Inner SegmentPlanner
	Cache ports.PlanCache
}

func (p *CachedSegmentPlanner) PlanSegment(ctx context.Context, req SegmentRequest) (*ports.TripPlan, error) {
	key := segmentKey(req)

	plan, ok, err := p.Cache.Get(ctx, key)
	if err != nil {
		log.Printf("plan cache read failed: %v", err)
	} else if ok {
		return plan, nil
	}

	plan, err = p.Inner.PlanSegment(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := p.Cache.Put(ctx, key, plan); err != nil {
		log.Printf("plan cache write failed: %v", err)
	}

	return plan, nil
}

// segmentKey derives a stable cache key from everything that shapes a
// segment's upstream calls.
func segmentKey(req SegmentRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%v|%d|%t|%s|%v|%s|%d",
		domain.EncodePlace(req.From),
		domain.EncodePlace(req.To),
		req.DepartAt.UnixMilli(),
		req.Options.Modes,
		req.Options.NumItineraries,
		req.Options.Wheelchair,
		req.Options.Banned,
		req.Options.Taxi,
		req.Options.VehicleType,
		req.Options.KmPerYear,
	)
	return hex.EncodeToString(h.Sum(nil))
}
