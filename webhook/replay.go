package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ReplayGuard claims a delivery key once within a TTL.
type ReplayGuard interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisReplayGuard implements ReplayGuard with SETNX.
type RedisReplayGuard struct {
	Client *redis.Client
	Prefix string
}

// Claim returns false when key was already claimed and has not expired.
func (g RedisReplayGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if g.Client == nil {
		return true, nil
	}
	return g.Client.SetNX(ctx, g.Prefix+key, "1", ttl).Result()
}

// Release forgets key so the delivery can be accepted again.
func (g RedisReplayGuard) Release(ctx context.Context, key string) error {
	if g.Client == nil {
		return nil
	}
	return g.Client.Del(ctx, g.Prefix+key).Err()
}

// ReplayKey derives the dedup key for a delivery body.
func ReplayKey(body []byte) string {
	sum := sha256.Sum256(body)
	return "wh:" + hex.EncodeToString(sum[:])
}
