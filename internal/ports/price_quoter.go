package ports

import (
	"context"

	"trip-fusion-service/internal/domain"
)

// Vehicle-class selection for a price quote. At least one tier must be set.
type PriceQuery struct {
	From domain.Place
	To   domain.Place

	Standard    bool
	Minivan     bool
	SpecialNeed bool
}

// Contract for the external taxi-pricing collaborator.
type PriceQuoter interface {
	// Return ranked price/time options for a single origin->destination hop.
	QuotePrice(ctx context.Context, q PriceQuery) ([]domain.TaxiOption, error)
}
