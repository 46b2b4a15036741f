package repository

import (
	"context"

	"github.com/turtacn/ueba/internal/domain/models"
)

// PersonalityRepository reads the per-user psychometric table. Loaded once at
// startup, immutable afterwards.
type PersonalityRepository interface {
	// LoadAll returns every personality profile keyed by user ID.
	LoadAll(ctx context.Context) (map[string]*models.PersonalityVector, error)
}
