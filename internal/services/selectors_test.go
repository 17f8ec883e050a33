package services

import (
	"testing"

	"trip-fusion-service/internal/domain"
)

func TestSelectRankOutOfRange(t *testing.T) {
	candidates := []domain.Itinerary{
		makeItinerary("A", "B", 1_000_000, 1_600_000, domain.ModeBus),
	}

	if got := SelectRank(1)(candidates); got != nil {
		t.Fatalf("rank 1 of 1 candidate = %+v, want nil", got)
	}
	if got := SelectRank(-1)(candidates); got != nil {
		t.Fatalf("negative rank = %+v, want nil", got)
	}
	if got := SelectRank(0)(candidates); got == nil {
		t.Fatal("rank 0 of 1 candidate = nil, want the candidate")
	}
}

func TestSelectFastest(t *testing.T) {
	candidates := []domain.Itinerary{
		makeItinerary("A", "B", 1_000_000, 1_900_000, domain.ModeBus),
		makeItinerary("A", "B", 1_000_000, 1_500_000, domain.ModeRail),
		makeItinerary("A", "B", 1_000_000, 1_500_000, domain.ModeBus),
	}

	got := SelectFastest()(candidates)
	if got == nil {
		t.Fatal("no candidate selected")
	}
	// Ties go to the earlier rank.
	if got.Legs[0].Mode != domain.ModeRail {
		t.Fatalf("selected mode = %s, want RAIL", got.Legs[0].Mode)
	}
}

func TestAssignSlotsDeduplicates(t *testing.T) {
	// Rank 0 is also the fastest, so both selectors resolve to the same
	// candidate and only one slot survives.
	candidates := []domain.Itinerary{
		makeItinerary("A", "B", 1_000_000, 1_500_000, domain.ModeRail),
		makeItinerary("A", "B", 1_000_000, 1_900_000, domain.ModeBus),
	}

	slots := assignSlots(candidates, []Selector{SelectRank(0), SelectFastest()})
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot after dedup, got %d", len(slots))
	}
	if slots[0].base.EndTime != 1_500_000 {
		t.Fatalf("slot base end = %d, want 1500000", slots[0].base.EndTime)
	}
}

func TestAssignSlotsBoundedByCandidates(t *testing.T) {
	candidates := []domain.Itinerary{
		makeItinerary("A", "B", 1_000_000, 1_500_000, domain.ModeRail),
	}

	slots := assignSlots(candidates, []Selector{SelectRank(0), SelectRank(1), SelectRank(2)})
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot for 1 candidate, got %d", len(slots))
	}
}
