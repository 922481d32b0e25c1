package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevocations remembers signed-out token ids until they would have expired anyway.
type TokenRevocations struct {
	rdb *redis.Client
}

func NewTokenRevocations(rdb *redis.Client) *TokenRevocations {
	return &TokenRevocations{rdb: rdb}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("revoked:%s", tokenID)
}

// Revoke marks tokenID as signed out until expiresAt.
func (t *TokenRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return t.rdb.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

// IsRevoked reports whether tokenID was signed out. A Redis error is returned to the
// caller, which decides whether to fail open.
func (t *TokenRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := t.rdb.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
