package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/pkg/errors"
)

func TestGetProfile(t *testing.T) {
	profile := &models.PersonalityVector{Openness: 0.8}
	svc := NewPersonalityService(map[string]*models.PersonalityVector{"alice": profile})

	t.Run("should return the stored profile", func(t *testing.T) {
		got, err := svc.GetProfile(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, profile, got)
	})

	t.Run("should report not-found for unknown users", func(t *testing.T) {
		_, err := svc.GetProfile(context.Background(), "mallory")
		assert.True(t, errors.IsNotFound(err))
	})
}
