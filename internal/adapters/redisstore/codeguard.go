package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ewilliams-labs/moodshift/internal/core/ports"
)

// CodeGuard claims authorization codes with SET NX and a cooldown TTL.
type CodeGuard struct {
	rdb      redis.Cmdable
	cooldown time.Duration
}

// compile-time interface assertion
var _ ports.CodeGuard = (*CodeGuard)(nil)

// NewCodeGuard constructs a CodeGuard.
func NewCodeGuard(rdb redis.Cmdable, cooldown time.Duration) *CodeGuard {
	return &CodeGuard{rdb: rdb, cooldown: cooldown}
}

// Claim reports whether this call was the first to see code within the cooldown.
func (g *CodeGuard) Claim(ctx context.Context, code string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, keyPrefix+"code:"+code, 1, g.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("redis store: claim code: %w", err)
	}
	return ok, nil
}
