package ports

import "context"

// Short-lived cache of per-segment trip plans. Selector slots chasing the
// same stop sequence issue identical upstream calls; the cache is the
// race-free sharing point between them. Misses are never errors.
type PlanCache interface {
	Get(ctx context.Context, key string) (*TripPlan, bool, error)
	Put(ctx context.Context, key string, plan *TripPlan) error
}
