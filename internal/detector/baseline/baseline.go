// Package baseline scores how far an event deviates from the subject user's
// own historical statistical profile.
package baseline

import (
	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/pkg/constants"
)

// Detector compares events against per-user baselines for a fixed subset of
// features. The baseline table is loaded once at startup and never mutated
// by scoring.
type Detector struct {
	baselines map[string]*models.UserBaseline
	features  []string
}

// NewDetector creates a Detector over the given baseline table and
// comparison feature subset.
func NewDetector(baselines map[string]*models.UserBaseline, features []string) *Detector {
	return &Detector{baselines: baselines, features: features}
}

// Score returns the mean three-sigma-clamped z-score across the comparison
// features, in [0,1]. Users without a baseline row score 0: a neutral
// default, not evidence of normality.
func (d *Detector) Score(userID string, e *models.Event) float64 {
	base, ok := d.baselines[userID]
	if !ok || len(d.features) == 0 {
		return 0
	}

	var sum float64
	for _, name := range d.features {
		stats, ok := base.Features[name]
		if !ok {
			continue
		}
		cur, _ := e.Numeric(name)
		z := abs(cur-stats.Mean) / (stats.Std + constants.BaselineEpsilon)
		normalized := z / 3
		if normalized > 1 {
			normalized = 1
		}
		sum += normalized
	}
	return sum / float64(len(d.features))
}

// Known reports whether a baseline row exists for the user.
func (d *Detector) Known(userID string) bool {
	_, ok := d.baselines[userID]
	return ok
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
