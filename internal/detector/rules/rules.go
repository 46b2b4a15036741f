// Package rules implements the deterministic heuristic checks of the scoring
// ensemble. Every check is stateless and fully reproducible from the event.
package rules

import (
	"github.com/turtacn/ueba/internal/config"
	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/pkg/constants"
)

// Engine evaluates the rule set against raw events.
type Engine struct {
	cfg config.RulesConfig
}

// NewEngine creates an Engine with the given weights and thresholds.
func NewEngine(cfg config.RulesConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate runs every rule and returns the clamped weight sum together with
// the set of triggered rule names. The rule names feed both the anomaly-type
// classification and the explanation text.
func (e *Engine) Evaluate(evt *models.Event) (float64, map[string]bool) {
	triggered := make(map[string]bool)
	var score float64

	if e.isNewDevice(evt) {
		score += e.cfg.NewDeviceWeight
		triggered[constants.RuleNewDevice] = true
	}

	if failed, ok := evt.Numeric("failed_login_count"); ok && int(failed) >= e.cfg.FailedLoginThreshold {
		score += e.cfg.FailedLoginWeight
		triggered[constants.RuleTooManyFailedLogins] = true
	}

	if uploads, ok := evt.Numeric("large_upload_count"); ok && int(uploads) >= e.cfg.LargeUploadThreshold {
		score += e.cfg.LargeUploadWeight
		triggered[constants.RuleLargeUpload] = true
	}

	if score > 1 {
		score = 1
	}
	return score, triggered
}

// isNewDevice fires on an explicit is_new_device flag, or on a device that is
// absent from the event's known device set.
func (e *Engine) isNewDevice(evt *models.Event) bool {
	if flag, ok := evt.Numeric("is_new_device"); ok && flag != 0 {
		return true
	}
	if evt.Device == "" {
		return false
	}
	if evt.KnownDevices == nil {
		return true
	}
	for _, d := range evt.KnownDevices {
		if d == evt.Device {
			return false
		}
	}
	return true
}
