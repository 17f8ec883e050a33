package otp

import (
	"context"
	"fmt"
	"sync"

	"trip-fusion-service/internal/ports"
)

// A scripted response for one origin->destination pair, keyed by place name.
type MockTrip struct {
	From, To string
	Plan     *ports.TripPlan
	Err      error
}

// MockPlanner serves scripted plans in tests and records the queries it
// receives so departure-time chaining can be asserted. Safe for concurrent
// use.
type MockPlanner struct {
	mu      sync.Mutex
	m       map[string]MockTrip
	Queries []ports.TripQuery
}

func NewMockPlanner(trips []MockTrip) *MockPlanner {
	m := make(map[string]MockTrip, len(trips))
	for _, t := range trips {
		m[t.From+"|"+t.To] = t
	}
	return &MockPlanner{m: m}
}

func (p *MockPlanner) ComputeTrip(ctx context.Context, q ports.TripQuery) (*ports.TripPlan, error) {
	p.mu.Lock()
	p.Queries = append(p.Queries, q)
	p.mu.Unlock()

	t, ok := p.m[q.From.Name+"|"+q.To.Name]
	if !ok {
		return nil, fmt.Errorf("missing scripted trip %q -> %q", q.From.Name, q.To.Name)
	}
	if t.Err != nil {
		return nil, t.Err
	}
	return t.Plan, nil
}
