package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trip-fusion-service/internal/adapters/otp"
	"trip-fusion-service/internal/adapters/taxi"
	"trip-fusion-service/internal/config"
	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/ports"
)

func carTrip(from, to string, start, end int64) *ports.TripPlan {
	return &ports.TripPlan{
		Itineraries: []domain.Itinerary{{
			StartTime: start,
			EndTime:   end,
			Duration:  float64(end-start) / 1000,
			Legs: []domain.Leg{{
				Mode:      domain.ModeCar,
				From:      domain.Place{Name: from, Lat: 45.50, Lon: -73.55},
				To:        domain.Place{Name: to, Lat: 45.52, Lon: -73.57},
				StartTime: start,
				EndTime:   end,
				Distance:  5000,
				Geometry:  domain.Geometry{Points: "abc123", Length: 12},
			}},
		}},
	}
}

func taxiOption(depart, arrive int64, amount float64, estimated bool) domain.TaxiOption {
	return domain.TaxiOption{
		DepartureTime:     depart,
		ArrivalTime:       arrive,
		EstimatedWaitTime: 180,
		Pricing: domain.Price{
			Estimated: estimated,
			Parts:     []domain.PricePart{{Amount: amount, Currency: "CAD"}},
		},
		Booking: domain.TaxiBooking{
			AgencyID:    "taxi-coop",
			AgencyName:  "Taxi Coop",
			PhoneNumber: "+15145550199",
		},
	}
}

func taxiRequest(depart time.Time) SegmentRequest {
	return SegmentRequest{
		From:     domain.Place{Name: "A", Lat: 45.50, Lon: -73.55},
		To:       domain.Place{Name: "B", Lat: 45.52, Lon: -73.57},
		DepartAt: depart,
		Options: SegmentOptions{
			Modes: []domain.Mode{domain.ModeTaxi, domain.ModeWalk},
			Taxi:  TaxiTiers{Standard: true},
		},
	}
}

func TestTaxiSegmentPlannerBuildsOptionItineraries(t *testing.T) {
	depart := time.UnixMilli(1_000_000)
	trips := otp.NewMockPlanner([]otp.MockTrip{
		{From: "A", To: "B", Plan: carTrip("A", "B", 1_000_000, 1_600_000)},
	})
	quotes := &taxi.MockQuoter{Options: []domain.TaxiOption{
		taxiOption(1_000_000, 1_700_000, 22.50, true),
		taxiOption(1_100_000, 1_800_000, 19.00, false),
	}}

	planner := &TaxiSegmentPlanner{Trips: trips, Quotes: quotes}
	plan, err := planner.PlanSegment(context.Background(), taxiRequest(depart))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Itineraries) != 2 {
		t.Fatalf("expected 2 itineraries (one per option), got %d", len(plan.Itineraries))
	}

	it := plan.Itineraries[0]
	if len(it.Legs) != 1 || it.Legs[0].Mode != domain.ModeTaxi {
		t.Fatalf("expected a single TAXI leg, got %+v", it.Legs)
	}
	// Geometry and distance come from the routed car leg.
	if it.Legs[0].Geometry.Points != "abc123" || it.Legs[0].Distance != 5000 {
		t.Fatalf("leg did not template from the car trip: %+v", it.Legs[0])
	}
	if it.TaxiPricing == nil || it.TaxiPricing.Pricing.Parts[0].Amount != 22.50 {
		t.Fatalf("pricing not attached: %+v", it.TaxiPricing)
	}
	if it.Legs[0].Agency == nil || it.Legs[0].Agency.Name != "Taxi Coop" {
		t.Fatalf("agency not attached: %+v", it.Legs[0].Agency)
	}

	// The trip planner must have been asked for a CAR trip, not TAXI.
	query := trips.Queries[0]
	for _, m := range query.Modes {
		if m == domain.ModeTaxi {
			t.Fatalf("TAXI mode leaked to the trip planner: %v", query.Modes)
		}
	}
	if query.Modes[0] != domain.ModeCar {
		t.Fatalf("modes = %v, want CAR first", query.Modes)
	}
}

func TestTaxiSegmentPlannerClampsDeparture(t *testing.T) {
	// The quote starts before the requested departure; the itinerary shifts
	// forward while keeping the quoted travel span.
	depart := time.UnixMilli(2_000_000)
	trips := otp.NewMockPlanner([]otp.MockTrip{
		{From: "A", To: "B", Plan: carTrip("A", "B", 1_000_000, 1_600_000)},
	})
	quotes := &taxi.MockQuoter{Options: []domain.TaxiOption{
		taxiOption(1_000_000, 1_700_000, 22.50, true),
	}}

	planner := &TaxiSegmentPlanner{Trips: trips, Quotes: quotes}
	plan, err := planner.PlanSegment(context.Background(), taxiRequest(depart))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	it := plan.Itineraries[0]
	if it.StartTime != 2_000_000 {
		t.Fatalf("start = %d, want clamped to 2000000", it.StartTime)
	}
	if it.EndTime != 2_700_000 {
		t.Fatalf("end = %d, want 2700000 (700s span preserved)", it.EndTime)
	}
}

func TestTaxiSegmentPlannerFailsWhenQuoteFails(t *testing.T) {
	trips := otp.NewMockPlanner([]otp.MockTrip{
		{From: "A", To: "B", Plan: carTrip("A", "B", 1_000_000, 1_600_000)},
	})
	quotes := &taxi.MockQuoter{Err: errors.New("registry unavailable")}

	planner := &TaxiSegmentPlanner{Trips: trips, Quotes: quotes}
	if _, err := planner.PlanSegment(context.Background(), taxiRequest(time.UnixMilli(1_000_000))); err == nil {
		t.Fatal("expected error when the pricing call fails")
	}
}

func TestTaxiSegmentPlannerFailsWithoutTripItineraries(t *testing.T) {
	trips := otp.NewMockPlanner([]otp.MockTrip{
		{From: "A", To: "B", Plan: &ports.TripPlan{}},
	})
	quotes := &taxi.MockQuoter{Options: []domain.TaxiOption{
		taxiOption(1_000_000, 1_700_000, 22.50, true),
	}}

	planner := &TaxiSegmentPlanner{Trips: trips, Quotes: quotes}
	_, err := planner.PlanSegment(context.Background(), taxiRequest(time.UnixMilli(1_000_000)))
	if !errors.Is(err, ErrNoItineraries) {
		t.Fatalf("err = %v, want ErrNoItineraries", err)
	}
}

func TestCarSegmentPlannerAnnotatesDrivingCost(t *testing.T) {
	trips := otp.NewMockPlanner([]otp.MockTrip{
		{From: "A", To: "B", Plan: carTrip("A", "B", 1_000_000, 1_600_000)},
	})

	planner := &CarSegmentPlanner{
		Trips: trips,
		Costs: config.DrivingCosts{PerKm: map[string]float64{"compact": 0.50}},
	}

	plan, err := planner.PlanSegment(context.Background(), SegmentRequest{
		From:     domain.Place{Name: "A", Lat: 45.50, Lon: -73.55},
		To:       domain.Place{Name: "B", Lat: 45.52, Lon: -73.57},
		DepartAt: time.UnixMilli(1_000_000),
		Options: SegmentOptions{
			Modes:       []domain.Mode{domain.ModeCar},
			VehicleType: "compact",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cost := plan.Itineraries[0].DrivingCost
	// 5 km at 0.50/km.
	if cost == nil || *cost != 2.5 {
		t.Fatalf("driving cost = %v, want 2.5", cost)
	}
}

func TestCarSegmentPlannerAmortizesFixedCosts(t *testing.T) {
	trips := otp.NewMockPlanner([]otp.MockTrip{
		{From: "A", To: "B", Plan: carTrip("A", "B", 1_000_000, 1_600_000)},
	})

	planner := &CarSegmentPlanner{
		Trips: trips,
		Costs: config.DrivingCosts{
			PerKm:       map[string]float64{"compact": 0.50},
			FixedAnnual: map[string]float64{"compact": 5000},
		},
	}

	plan, err := planner.PlanSegment(context.Background(), SegmentRequest{
		From:     domain.Place{Name: "A", Lat: 45.50, Lon: -73.55},
		To:       domain.Place{Name: "B", Lat: 45.52, Lon: -73.57},
		DepartAt: time.UnixMilli(1_000_000),
		Options: SegmentOptions{
			Modes:       []domain.Mode{domain.ModeCar},
			VehicleType: "compact",
			KmPerYear:   20000,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 5 km at (0.50 + 5000/20000) per km.
	cost := plan.Itineraries[0].DrivingCost
	if cost == nil || *cost != 3.75 {
		t.Fatalf("driving cost = %v, want 3.75", cost)
	}
}

func TestCarSegmentPlannerSkipsUnknownVehicleType(t *testing.T) {
	trips := otp.NewMockPlanner([]otp.MockTrip{
		{From: "A", To: "B", Plan: carTrip("A", "B", 1_000_000, 1_600_000)},
	})

	planner := &CarSegmentPlanner{Trips: trips, Costs: config.DrivingCosts{}}
	plan, err := planner.PlanSegment(context.Background(), SegmentRequest{
		From:    domain.Place{Name: "A", Lat: 45.50, Lon: -73.55},
		To:      domain.Place{Name: "B", Lat: 45.52, Lon: -73.57},
		Options: SegmentOptions{Modes: []domain.Mode{domain.ModeCar}, VehicleType: "hovercraft"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Itineraries[0].DrivingCost != nil {
		t.Fatalf("driving cost = %v, want unset", *plan.Itineraries[0].DrivingCost)
	}
}

func TestTransitSegmentPlannerClassifiesFares(t *testing.T) {
	start, end := int64(1_000_000), int64(1_600_000)
	plan := &ports.TripPlan{
		Itineraries: []domain.Itinerary{{
			StartTime: start,
			EndTime:   end,
			Legs: []domain.Leg{{
				Mode: domain.ModeBus,
				From: domain.Place{Name: "A", Lat: 45.45, Lon: -73.50},
				To:   domain.Place{Name: "B", Lat: 45.46, Lon: -73.60},
			}},
		}},
	}
	trips := otp.NewMockPlanner([]otp.MockTrip{{From: "A", To: "B", Plan: plan}})

	classifier, err := NewFareClassifier(testFareRules(), testZones())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	planner := &TransitSegmentPlanner{Trips: trips, Fares: classifier}
	got, err := planner.PlanSegment(context.Background(), SegmentRequest{
		From:    domain.Place{Name: "A", Lat: 45.45, Lon: -73.50},
		To:      domain.Place{Name: "B", Lat: 45.46, Lon: -73.60},
		Options: SegmentOptions{Modes: []domain.Mode{domain.ModeTransit, domain.ModeWalk}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fare := got.Itineraries[0].TransitFare
	if fare == nil || *fare != 3.75 {
		t.Fatalf("fare = %v, want 3.75", fare)
	}
}

// memoryPlanCache is a map-backed PlanCache for exercising the caching
// wrapper without Redis.
type memoryPlanCache struct {
	mu sync.Mutex
	m  map[string]*ports.TripPlan
}

func (c *memoryPlanCache) Get(ctx context.Context, key string) (*ports.TripPlan, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	plan, ok := c.m[key]
	return plan, ok, nil
}

func (c *memoryPlanCache) Put(ctx context.Context, key string, plan *ports.TripPlan) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = plan
	return nil
}

func TestCachedSegmentPlannerSharesCalls(t *testing.T) {
	trips := otp.NewMockPlanner([]otp.MockTrip{
		{From: "A", To: "B", Plan: carTrip("A", "B", 1_000_000, 1_600_000)},
	})
	inner := &CarSegmentPlanner{Trips: trips}
	planner := &CachedSegmentPlanner{
		Inner: inner,
		Cache: &memoryPlanCache{m: make(map[string]*ports.TripPlan)},
	}

	req := SegmentRequest{
		From:     domain.Place{Name: "A", Lat: 45.50, Lon: -73.55},
		To:       domain.Place{Name: "B", Lat: 45.52, Lon: -73.57},
		DepartAt: time.UnixMilli(1_000_000),
		Options:  SegmentOptions{Modes: []domain.Mode{domain.ModeCar}},
	}

	for i := 0; i < 3; i++ {
		if _, err := planner.PlanSegment(context.Background(), req); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}

	if len(trips.Queries) != 1 {
		t.Fatalf("upstream called %d times, want 1", len(trips.Queries))
	}
}

func TestCachedSegmentPlannerDistinguishesRequests(t *testing.T) {
	trips := otp.NewMockPlanner([]otp.MockTrip{
		{From: "A", To: "B", Plan: carTrip("A", "B", 1_000_000, 1_600_000)},
	})
	planner := &CachedSegmentPlanner{
		Inner: &CarSegmentPlanner{Trips: trips},
		Cache: &memoryPlanCache{m: make(map[string]*ports.TripPlan)},
	}

	base := SegmentRequest{
		From:     domain.Place{Name: "A", Lat: 45.50, Lon: -73.55},
		To:       domain.Place{Name: "B", Lat: 45.52, Lon: -73.57},
		DepartAt: time.UnixMilli(1_000_000),
		Options:  SegmentOptions{Modes: []domain.Mode{domain.ModeCar}},
	}
	later := base
	later.DepartAt = time.UnixMilli(2_000_000)

	if _, err := planner.PlanSegment(context.Background(), base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := planner.PlanSegment(context.Background(), later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trips.Queries) != 2 {
		t.Fatalf("upstream called %d times, want 2 (different departures)", len(trips.Queries))
	}
}
