package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGuardTTL = 10 * time.Minute

// MintGuard serializes mint submissions per request across the approval
// path and the reconciliation sweep. Acquire is a SET NX with TTL: only one
// holder at a time, and a crashed worker's claim expires on its own.
type MintGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMintGuard(client *redis.Client, ttl time.Duration) *MintGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &MintGuard{client: client, ttl: ttl}
}

// Acquire claims the mint slot for a request. It returns false when another
// worker already holds it.
func (g *MintGuard) Acquire(ctx context.Context, requestID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(requestID), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mint guard acquire: %w", err)
	}
	return ok, nil
}

// Release frees the slot after a definite outcome. After a timeout the
// caller deliberately leaves the claim to expire: the outcome is unknown
// and an immediate resubmission could double-mint.
func (g *MintGuard) Release(ctx context.Context, requestID string) error {
	if err := g.client.Del(ctx, g.key(requestID)).Err(); err != nil {
		return fmt.Errorf("mint guard release: %w", err)
	}
	return nil
}

func (g *MintGuard) key(requestID string) string {
	return "mint:inflight:" + requestID
}
