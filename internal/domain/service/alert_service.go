// Package service defines domain service interfaces implemented by the
// infrastructure layer.
package service

import (
	"context"
	"time"

	"github.com/turtacn/ueba/internal/domain/models"
)

// AlertService publishes high severity score results for downstream
// consumers. Implementations must be safe for concurrent use.
type AlertService interface {
	// Publish sends one alert. Errors are logged by the implementation and
	// never fail the scoring call that produced the alert.
	Publish(ctx context.Context, alert models.Alert) error

	// Close releases the underlying transport.
	Close() error
}

// AlertThrottle suppresses repeated alerts for the same user inside a
// configured window.
type AlertThrottle interface {
	// Allow reports whether an alert for the user may be published now and,
	// when it may, starts the suppression window.
	Allow(ctx context.Context, userID string, window time.Duration) (bool, error)
}
