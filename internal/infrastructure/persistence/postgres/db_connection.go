// Package postgres provides PostgreSQL-backed implementations of the
// repository interfaces, for deployments where the training pipeline writes
// its tables to the warehouse instead of shipping CSV artifacts.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/ueba/internal/config"
	"github.com/turtacn/ueba/pkg/logger"
)

// DBConnection bundles the pgx pool used for health pings with the gorm
// handle the repositories read through.
type DBConnection struct {
	Pool *pgxpool.Pool
	Gorm *gorm.DB
	log  logger.Logger
}

// NewDBConnection opens and verifies the database connection.
func NewDBConnection(cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: open gorm: %w", err)
	}

	log.Info(ctx, "connected to postgres",
		logger.String("host", cfg.Host), logger.String("database", cfg.Database))
	return &DBConnection{Pool: pool, Gorm: gormDB, log: log}, nil
}

// Ping verifies the connection is still healthy.
func (c *DBConnection) Ping(ctx context.Context) error {
	return c.Pool.Ping(ctx)
}

// Close releases the connection pool.
func (c *DBConnection) Close() {
	c.Pool.Close()
}
