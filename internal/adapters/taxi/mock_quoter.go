package taxi

import (
	"context"
	"sync"

	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/ports"
)

// MockQuoter serves scripted options in tests. Safe for concurrent use.
type MockQuoter struct {
	mu      sync.Mutex
	Options []domain.TaxiOption
	Err     error
	Queries []ports.PriceQuery
}

func (m *MockQuoter) QuotePrice(ctx context.Context, q ports.PriceQuery) ([]domain.TaxiOption, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, q)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Options, nil
}
