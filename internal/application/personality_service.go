package application

import (
	"context"

	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/pkg/errors"
)

// PersonalityService serves read-only psychometric profiles for analyst
// context.
type PersonalityService interface {
	// GetProfile returns a user's OCEAN vector, or a not-found error when the
	// user has no profile row. Not-found is an expected outcome, distinct
	// from a scoring failure.
	GetProfile(ctx context.Context, userID string) (*models.PersonalityVector, error)
}

type personalityService struct {
	profiles map[string]*models.PersonalityVector
}

// NewPersonalityService wraps the profile table loaded at startup.
func NewPersonalityService(profiles map[string]*models.PersonalityVector) PersonalityService {
	return &personalityService{profiles: profiles}
}

func (s *personalityService) GetProfile(ctx context.Context, userID string) (*models.PersonalityVector, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, errors.ErrNotFound("user", userID)
	}
	return profile, nil
}
