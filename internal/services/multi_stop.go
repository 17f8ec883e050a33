package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/ports"
)

// A trip through an ordered stop list: origin, any intermediate stops, and
// the destination, with a wait (in hours) at each intermediate stop.
type MultiStopRequest struct {
	Stops     []domain.Place
	StopWaits []float64
	DepartAt  time.Time
	Options   SegmentOptions
}

// MultiStopPlanner drives the stop sequence: it plans one segment per
// consecutive stop pair, chaining each departure from the previous
// segment's arrival plus the caller's wait, then fuses each selector
// slot's chosen sequence into one continuous itinerary.
//
// Failure is all-or-nothing: if any segment cannot be routed, the whole
// plan fails and earlier partial itineraries are discarded. A multi-stop
// trip is meaningless if one leg cannot be routed or priced.
type MultiStopPlanner struct {
	Segments  SegmentPlanner
	Selectors []Selector

	// Civil timezone for departure-time arithmetic; threaded explicitly
	// rather than read from process-wide state.
	Location *time.Location
}

func NewMultiStopPlanner(segments SegmentPlanner, selectors []Selector, loc *time.Location) *MultiStopPlanner {
	if len(selectors) == 0 {
		selectors = DefaultSelectors()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &MultiStopPlanner{Segments: segments, Selectors: selectors, Location: loc}
}

// Plan computes and fuses the whole stop sequence. The returned plan holds
// one fused itinerary per distinct selector slot plus every routing error
// reported along the way.
func (p *MultiStopPlanner) Plan(ctx context.Context, req MultiStopRequest) (*ports.TripPlan, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	waits := req.StopWaits
	if waits == nil {
		waits = make([]float64, len(req.Stops)-2)
	}

	// The base segment is shared by every selector slot: its input is
	// identical for all of them.
	base, err := p.Segments.PlanSegment(ctx, SegmentRequest{
		From:     req.Stops[0],
		To:       req.Stops[1],
		DepartAt: req.DepartAt,
		Options:  req.Options,
	})
	if err != nil {
		// Exhausted routing is a trip property and travels in-band; a
		// failing upstream is not and stays an ordinary error.
		if errors.Is(err, ErrNoItineraries) {
			return nil, &NoRouteError{Segment: 0, Err: err}
		}
		return nil, fmt.Errorf("plan segment 0: %w", err)
	}
	if len(base.Itineraries) == 0 {
		return nil, &NoRouteError{Segment: 0, RoutingErrors: base.RoutingErrors, Err: ErrNoItineraries}
	}

	slots := assignSlots(base.Itineraries, p.Selectors)

	var mu sync.Mutex
	routingErrors := append([]domain.RoutingError(nil), base.RoutingErrors...)
	fused := make([]*domain.Itinerary, len(slots))

	// Slots are independent sequential chains once the base response
	// exists, so they may run concurrently with each other. Segments
	// within one slot stay strictly ordered: each departure depends on the
	// previous arrival.
	g, gctx := errgroup.WithContext(ctx)
	for si, s := range slots {
		si, s := si, s
		g.Go(func() error {
			chain := []domain.Itinerary{s.base}

			for seg := 1; seg < len(req.Stops)-1; seg++ {
				prev := chain[len(chain)-1]
				from, ok := prev.LastPlace()
				if !ok {
					return &NoRouteError{Segment: seg, Err: fmt.Errorf("previous segment itinerary has no legs")}
				}

				result, err := p.Segments.PlanSegment(gctx, SegmentRequest{
					From:     from,
					To:       req.Stops[seg+1],
					DepartAt: p.nextDeparture(prev, waits[seg-1]),
					Options:  req.Options,
				})
				if err != nil {
					if errors.Is(err, ErrNoItineraries) {
						return &NoRouteError{Segment: seg, Err: err}
					}
					return fmt.Errorf("plan segment %d: %w", seg, err)
				}

				mu.Lock()
				routingErrors = append(routingErrors, result.RoutingErrors...)
				mu.Unlock()

				if len(result.Itineraries) == 0 {
					return &NoRouteError{Segment: seg, Err: ErrNoItineraries}
				}

				choice := s.selector(result.Itineraries)
				if choice == nil {
					return &NoRouteError{Segment: seg, Err: fmt.Errorf("selector yielded no candidate")}
				}
				chain = append(chain, *choice)
			}

			merged, err := FuseItineraries(chain)
			if err != nil {
				return fmt.Errorf("fuse slot itineraries: %w", err)
			}

			mu.Lock()
			fused[si] = &merged
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var noRoute *NoRouteError
		if errors.As(err, &noRoute) {
			noRoute.RoutingErrors = append(noRoute.RoutingErrors, routingErrors...)
		}
		return nil, err
	}

	plan := &ports.TripPlan{
		Itineraries:   make([]domain.Itinerary, 0, len(fused)),
		RoutingErrors: routingErrors,
	}
	for _, it := range fused {
		if it != nil {
			plan.Itineraries = append(plan.Itineraries, *it)
		}
	}

	return plan, nil
}

// nextDeparture chains a segment's departure from the previous segment's
// arrival plus the stop's wait.
func (p *MultiStopPlanner) nextDeparture(prev domain.Itinerary, waitHours float64) time.Time {
	waitMs := int64(waitHours * float64(time.Hour/time.Millisecond))
	return time.UnixMilli(prev.EndTime + waitMs).In(p.Location)
}

func validateRequest(req MultiStopRequest) error {
	if len(req.Stops) < 2 {
		return fmt.Errorf("%w: need at least origin and destination, got %d stops", ErrInvalidRequest, len(req.Stops))
	}

	intermediates := len(req.Stops) - 2
	if req.StopWaits != nil && len(req.StopWaits) != intermediates {
		return fmt.Errorf("%w: %d wait times for %d intermediate stops", ErrInvalidRequest, len(req.StopWaits), intermediates)
	}
	for i, w := range req.StopWaits {
		if w < 0 {
			return fmt.Errorf("%w: wait time %d is negative", ErrInvalidRequest, i)
		}
	}

	for i, stop := range req.Stops {
		if stop.Lat < -90 || stop.Lat > 90 || stop.Lon < -180 || stop.Lon > 180 {
			return fmt.Errorf("%w: stop %d has out-of-range coordinates", ErrInvalidRequest, i)
		}
	}

	return nil
}
