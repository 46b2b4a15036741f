// Package redis manages the Redis client used for cross-instance alert
// suppression state.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/ueba/internal/config"
	"github.com/turtacn/ueba/pkg/logger"
)

// Connection wraps the Redis client lifecycle.
type Connection struct {
	Client *redis.Client
	log    logger.Logger
}

// NewConnection opens and verifies a Redis connection.
func NewConnection(cfg *config.RedisConfig, log logger.Logger) (*Connection, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}

	log.Info(ctx, "connected to redis", logger.String("addr", cfg.Addr))
	return &Connection{Client: client, log: log}, nil
}

// Ping verifies the connection is still healthy.
func (c *Connection) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Close releases the client.
func (c *Connection) Close() error {
	return c.Client.Close()
}
