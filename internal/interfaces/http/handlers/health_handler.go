package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ueba/internal/infrastructure/modelstore"
)

// DependencyCheck pings one external dependency for the readiness probe.
type DependencyCheck func(ctx context.Context) error

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	store  *modelstore.Store
	checks map[string]DependencyCheck
}

// NewHealthHandler creates the probe handler. Readiness requires the model
// store plus every registered dependency check to pass.
func NewHealthHandler(store *modelstore.Store) *HealthHandler {
	return &HealthHandler{
		store:  store,
		checks: make(map[string]DependencyCheck),
	}
}

// RegisterCheck adds a named dependency to the readiness probe.
func (h *HealthHandler) RegisterCheck(name string, check DependencyCheck) {
	h.checks[name] = check
}

// Liveness handles GET /health/live. It only proves the process is serving.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness handles GET /health/ready. Models are loaded before the listener
// starts, so the model check guards against a half-initialized process.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	details := gin.H{}
	ready := true

	if h.store == nil || h.store.Forest == nil || !h.store.Forest.Trained() {
		details["models"] = "not loaded"
		ready = false
	} else {
		details["models"] = "ok"
	}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			details[name] = err.Error()
			ready = false
		} else {
			details[name] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"details":   details,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
