package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsCache stores a user's computed stats as JSON for a short time.
// Every method fails open: a Redis outage only costs a recompute.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func statsKey(userID string) string {
	return fmt.Sprintf("stats:%s", userID)
}

// Get decodes the cached value for userID into dst. It reports false on a miss.
func (c *StatsCache) Get(ctx context.Context, userID string, dst interface{}) bool {
	raw, err := c.rdb.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *StatsCache) Set(ctx context.Context, userID string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	return c.rdb.Set(ctx, statsKey(userID), raw, c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, statsKey(userID)).Err()
}
