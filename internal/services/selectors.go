package services

import "trip-fusion-service/internal/domain"

// Selector is a deterministic, pure rule picking one itinerary out of a
// ranked candidate list, or nil when the list cannot satisfy it. One
// selector drives one output slot of a multi-stop plan, so the same
// criterion is applied consistently across every segment of that slot.
type Selector func(candidates []domain.Itinerary) *domain.Itinerary

// SelectRank picks the candidate at the given rank, relying on the
// planner's own ordering.
func SelectRank(rank int) Selector {
	return func(candidates []domain.Itinerary) *domain.Itinerary {
		if rank < 0 || rank >= len(candidates) {
			return nil
		}
		return &candidates[rank]
	}
}

// SelectFastest picks the candidate with the smallest duration. Ties go to
// the earlier rank.
func SelectFastest() Selector {
	return func(candidates []domain.Itinerary) *domain.Itinerary {
		var best *domain.Itinerary
		for i := range candidates {
			if best == nil || candidates[i].Duration < best.Duration {
				best = &candidates[i]
			}
		}
		return best
	}
}

// DefaultSelectors produce a single slot holding the planner's top-ranked
// candidate.
func DefaultSelectors() []Selector {
	return []Selector{SelectRank(0)}
}

type slot struct {
	selector Selector
	base     domain.Itinerary
}

// assignSlots applies each selector to the base segment's candidates and
// keeps one slot per distinct choice. Deduplication is structural (same
// legs and times), not by reference, because selectors with different
// criteria often resolve to the same underlying candidate. The slot count
// is bounded by both the selector count and the candidate count.
func assignSlots(candidates []domain.Itinerary, selectors []Selector) []slot {
	limit := len(selectors)
	if len(candidates) < limit {
		limit = len(candidates)
	}

	slots := make([]slot, 0, limit)
	seen := make(map[string]struct{}, limit)

	for _, sel := range selectors[:limit] {
		choice := sel(candidates)
		if choice == nil {
			continue
		}
		key := choice.StructuralKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		slots = append(slots, slot{selector: sel, base: *choice})
	}

	return slots
}
