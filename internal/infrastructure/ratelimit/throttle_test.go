package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ueba/internal/infrastructure/persistence/redis"
)

func TestMemoryThrottle(t *testing.T) {
	ctx := context.Background()
	throttle := NewMemoryThrottle()

	t.Run("should allow the first alert and suppress the second", func(t *testing.T) {
		allowed, err := throttle.Allow(ctx, "alice", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = throttle.Allow(ctx, "alice", time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("should track users independently", func(t *testing.T) {
		allowed, err := throttle.Allow(ctx, "bob", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("should allow again after the window expires", func(t *testing.T) {
		allowed, err := throttle.Allow(ctx, "carol", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)

		time.Sleep(30 * time.Millisecond)

		allowed, err = throttle.Allow(ctx, "carol", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestRedisThrottle(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	conn := &redis.Connection{Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()})}
	throttle := NewRedisThrottle(conn)

	t.Run("should allow the first alert and suppress the second", func(t *testing.T) {
		allowed, err := throttle.Allow(ctx, "alice", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = throttle.Allow(ctx, "alice", time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("should allow again after the window expires", func(t *testing.T) {
		allowed, err := throttle.Allow(ctx, "bob", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		mr.FastForward(2 * time.Minute)

		allowed, err = throttle.Allow(ctx, "bob", time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("should surface backend errors", func(t *testing.T) {
		mr.Close()
		_, err := throttle.Allow(ctx, "carol", time.Minute)
		assert.Error(t, err)
	})
}
