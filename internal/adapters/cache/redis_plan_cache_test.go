package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trip-fusion-service/internal/domain"
	"trip-fusion-service/internal/ports"
)

func testCache(t *testing.T, ttl time.Duration) (*RedisPlanCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c, err := NewRedisPlanCache(client, ttl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c, mr
}

func testPlan() *ports.TripPlan {
	transfers := 1
	return &ports.TripPlan{
		Itineraries: []domain.Itinerary{{
			StartTime: 1_000_000,
			EndTime:   1_600_000,
			Duration:  600,
			Transfers: &transfers,
			Legs: []domain.Leg{{
				Mode: domain.ModeBus,
				From: domain.Place{Name: "A", Lat: 45.50, Lon: -73.55},
				To:   domain.Place{Name: "B", Lat: 45.52, Lon: -73.57},
			}},
		}},
		RoutingErrors: []domain.RoutingError{{Code: "WALKING_BETTER_THAN_TRANSIT"}},
	}
}

func TestRedisPlanCacheRoundTrip(t *testing.T) {
	c, _ := testCache(t, time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "k1"); err != nil || ok {
		t.Fatalf("empty cache: ok=%t err=%v, want miss without error", ok, err)
	}

	if err := c.Put(ctx, "k1", testPlan()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := c.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("ok=%t err=%v, want hit", ok, err)
	}
	if len(got.Itineraries) != 1 || *got.Itineraries[0].Transfers != 1 {
		t.Fatalf("plan did not survive the round trip: %+v", got)
	}
	if len(got.RoutingErrors) != 1 {
		t.Fatalf("routing errors dropped: %+v", got.RoutingErrors)
	}
}

func TestRedisPlanCacheEntriesExpire(t *testing.T) {
	c, mr := testCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "k1", testPlan()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := c.Get(ctx, "k1"); err != nil || ok {
		t.Fatalf("ok=%t err=%v, want miss after TTL", ok, err)
	}
}

func TestRedisPlanCacheKeysAreIndependent(t *testing.T) {
	c, _ := testCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "k1", testPlan()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k2"); ok {
		t.Fatal("unexpected hit for a different key")
	}
}

func TestRedisPlanCacheRejectsNilPlan(t *testing.T) {
	c, _ := testCache(t, time.Minute)
	if err := c.Put(context.Background(), "k1", nil); err == nil {
		t.Fatal("expected error for nil plan")
	}
}
