package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/internal/domain/service"
	"github.com/turtacn/ueba/pkg/constants"
	"github.com/turtacn/ueba/pkg/logger"
)

// AlertObserver counts dispatch outcomes: published, suppressed or failed.
type AlertObserver interface {
	ObserveAlert(outcome string)
}

// AlertDispatcher publishes high severity score results, suppressing repeats
// for the same user inside the configured window. Alerting failures are
// logged and never fail the scoring call.
type AlertDispatcher struct {
	alerts   service.AlertService
	throttle service.AlertThrottle
	window   time.Duration
	observer AlertObserver
	log      logger.Logger
}

// NewAlertDispatcher creates a dispatcher. A nil alerts service disables
// dispatching entirely; a nil observer disables outcome counting.
func NewAlertDispatcher(alerts service.AlertService, throttle service.AlertThrottle, window time.Duration, observer AlertObserver, log logger.Logger) *AlertDispatcher {
	return &AlertDispatcher{
		alerts:   alerts,
		throttle: throttle,
		window:   window,
		observer: observer,
		log:      log.WithComponent("AlertDispatcher"),
	}
}

func (d *AlertDispatcher) observe(outcome string) {
	if d.observer != nil {
		d.observer.ObserveAlert(outcome)
	}
}

// MaybeDispatch publishes an alert when the result is high severity and the
// user is not inside a suppression window.
func (d *AlertDispatcher) MaybeDispatch(ctx context.Context, userID string, result *models.ScoreResult) {
	if d == nil || d.alerts == nil || result.Severity != constants.SeverityHigh {
		return
	}

	if d.throttle != nil {
		allowed, err := d.throttle.Allow(ctx, userID, d.window)
		if err != nil {
			d.log.Warn(ctx, "alert throttle unavailable, publishing anyway",
				logger.String("user", userID), logger.Error(err))
		} else if !allowed {
			d.log.Debug(ctx, "alert suppressed inside window", logger.String("user", userID))
			d.observe("suppressed")
			return
		}
	}

	alert := models.Alert{
		ID:          uuid.NewString(),
		UserID:      userID,
		RiskScore:   result.RiskScore,
		Severity:    result.Severity,
		AnomalyType: result.AnomalyType,
		Explanation: result.Explanation,
		CreatedAt:   time.Now().UTC(),
	}
	if err := d.alerts.Publish(ctx, alert); err != nil {
		d.log.Error(ctx, "failed to publish alert", err,
			logger.String("user", userID), logger.String("alert_id", alert.ID))
		d.observe("failed")
		return
	}
	d.observe("published")
}
