// Package cache holds the Redis-backed pieces: the stats cache and the revoked token list.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/habit_tracker/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}
