package ratelimit

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/ueba/internal/domain/service"
)

// MemoryThrottle is the single-instance fallback when Redis is disabled. The
// suppression window is only as wide as this process's memory.
type MemoryThrottle struct {
	cache *gocache.Cache
}

var _ service.AlertThrottle = (*MemoryThrottle)(nil)

// NewMemoryThrottle creates an in-process throttle.
func NewMemoryThrottle() *MemoryThrottle {
	return &MemoryThrottle{
		cache: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// Allow reports whether an alert may be published for the user, and starts
// the suppression window when it may.
func (t *MemoryThrottle) Allow(ctx context.Context, userID string, window time.Duration) (bool, error) {
	if err := t.cache.Add(userID, struct{}{}, window); err != nil {
		// Key already present: still inside the window.
		return false, nil
	}
	return true, nil
}
