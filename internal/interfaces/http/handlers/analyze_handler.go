// Package handlers contains the Gin HTTP handlers for the scoring API.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ueba/internal/application"
	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/internal/infrastructure/monitoring"
	"github.com/turtacn/ueba/pkg/errors"
	"github.com/turtacn/ueba/pkg/logger"
)

// AnalyzeHandler serves the event scoring endpoint.
type AnalyzeHandler struct {
	scoring    application.ScoringService
	dispatcher *application.AlertDispatcher
	metrics    *monitoring.Metrics
	log        logger.Logger
}

// NewAnalyzeHandler creates the scoring handler.
func NewAnalyzeHandler(
	scoring application.ScoringService,
	dispatcher *application.AlertDispatcher,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		scoring:    scoring,
		dispatcher: dispatcher,
		metrics:    metrics,
		log:        log.WithComponent("AnalyzeHandler"),
	}
}

// Analyze handles POST /api/v1/analyze. It scores one telemetry event and
// returns the fused result.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	var evt models.Event
	if err := c.ShouldBindJSON(&evt); err != nil {
		SendError(c, errors.ErrValidation("request body is not a valid event").WithCause(err))
		return
	}

	start := time.Now()
	result, err := h.scoring.ScoreEvent(ctx, &evt)
	if err != nil {
		if !errors.IsValidation(err) {
			h.log.Error(ctx, "scoring failed", err, logger.String("user", evt.User))
			if h.metrics != nil {
				h.metrics.ObserveScoringError()
			}
		}
		SendError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveScoring(result, time.Since(start))
	}

	h.dispatcher.MaybeDispatch(ctx, evt.User, result)

	c.JSON(http.StatusOK, result)
}
