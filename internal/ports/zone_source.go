package ports

import (
	"context"

	"trip-fusion-service/internal/domain"
)

// Port: a boundary for loading fare-zone polygon sets at startup. Zones are
// keyed by name (A, B, C, D) and read-only for the process lifetime.
type ZoneSource interface {
	LoadZones(ctx context.Context) (map[string]domain.FareZone, error)
}
