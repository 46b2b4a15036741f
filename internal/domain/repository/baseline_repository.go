// Package repository defines the persistence interfaces consumed by the
// application layer. Implementations live under internal/infrastructure.
package repository

import (
	"context"

	"github.com/turtacn/ueba/internal/domain/models"
)

// BaselineRepository reads the per-user baseline table. The whole table is
// loaded once at startup and held immutable for the lifetime of the process.
type BaselineRepository interface {
	// LoadAll returns every baseline row keyed by user ID.
	LoadAll(ctx context.Context) (map[string]*models.UserBaseline, error)
}
