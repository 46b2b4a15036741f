package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ueba/internal/application"
	"github.com/turtacn/ueba/pkg/errors"
)

// PersonalityHandler serves the read-only OCEAN profile endpoint.
type PersonalityHandler struct {
	personalities application.PersonalityService
}

// NewPersonalityHandler creates the profile handler.
func NewPersonalityHandler(personalities application.PersonalityService) *PersonalityHandler {
	return &PersonalityHandler{personalities: personalities}
}

// GetProfile handles GET /api/v1/users/:user_id/ocean.
func (h *PersonalityHandler) GetProfile(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		SendError(c, errors.ErrMissingField("user_id"))
		return
	}

	profile, err := h.personalities.GetProfile(c.Request.Context(), userID)
	if err != nil {
		SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"ocean_vector": profile,
	})
}
