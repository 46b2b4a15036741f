// Package ratelimit implements the per-user alert suppression window, backed
// by Redis when available and by an in-process TTL cache otherwise.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/ueba/internal/domain/service"
	"github.com/turtacn/ueba/internal/infrastructure/persistence/redis"
)

// RedisThrottle coordinates alert suppression across scoring instances with
// a SET NX key per user.
type RedisThrottle struct {
	conn *redis.Connection
}

var _ service.AlertThrottle = (*RedisThrottle)(nil)

// NewRedisThrottle creates a throttle over the given connection.
func NewRedisThrottle(conn *redis.Connection) *RedisThrottle {
	return &RedisThrottle{conn: conn}
}

// Allow reports whether an alert may be published for the user, and starts
// the suppression window when it may.
func (t *RedisThrottle) Allow(ctx context.Context, userID string, window time.Duration) (bool, error) {
	key := fmt.Sprintf("alert:suppress:%s", userID)
	ok, err := t.conn.Client.SetNX(ctx, key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("redis throttle: %w", err)
	}
	return ok, nil
}
