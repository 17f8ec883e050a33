// Package cache holds the short-lived segment plan cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trip-fusion-service/internal/platform/obs"
	"trip-fusion-service/internal/ports"
)

// RedisPlanCache is a Redis-backed ports.PlanCache. Entries carry a short
// TTL: cached plans only need to survive the selector slots of a single
// multi-stop request, and departure times embedded in the key make stale
// reuse across requests harmless.
type RedisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPlanCache(client *redis.Client, ttl time.Duration) (*RedisPlanCache, error) {
	if client == nil {
		return nil, errors.New("plan cache: redis client is nil")
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisPlanCache{client: client, ttl: ttl}, nil
}

func (c *RedisPlanCache) Get(ctx context.Context, key string) (_ *ports.TripPlan, _ bool, err error) {
	defer obs.Time(ctx, "plan.cache.Get")(&err)

	data, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("plan cache get: %w", err)
	}

	var plan ports.TripPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, false, fmt.Errorf("plan cache get: decode entry: %w", err)
	}

	return &plan, true, nil
}

func (c *RedisPlanCache) Put(ctx context.Context, key string, plan *ports.TripPlan) error {
	if plan == nil {
		return errors.New("plan cache put: plan is nil")
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("plan cache put: encode entry: %w", err)
	}

	if err := c.client.Set(ctx, c.redisKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("plan cache put: %w", err)
	}

	return nil
}

func (c *RedisPlanCache) redisKey(key string) string {
	return "segplan:" + key
}
