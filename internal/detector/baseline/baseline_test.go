package baseline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/ueba/internal/domain/models"
)

func testBaselines() map[string]*models.UserBaseline {
	return map[string]*models.UserBaseline{
		"alice": {
			UserID: "alice",
			Features: map[string]models.FeatureBaseline{
				"logon_count":       {Mean: 10, Std: 2},
				"file_access_count": {Mean: 50, Std: 10},
				"total_bytes_out":   {Mean: 1e6, Std: 2e5},
			},
		},
	}
}

func eventWith(extra map[string]interface{}) *models.Event {
	return &models.Event{User: "alice", Extra: extra}
}

func TestDetectorScore(t *testing.T) {
	features := []string{"logon_count", "file_access_count", "total_bytes_out"}
	d := NewDetector(testBaselines(), features)

	t.Run("should score unknown users as zero", func(t *testing.T) {
		evt := &models.Event{User: "mallory", Extra: map[string]interface{}{"logon_count": 100.0}}
		assert.Equal(t, 0.0, d.Score("mallory", evt))
	})

	t.Run("should score an exactly-average event as zero", func(t *testing.T) {
		evt := eventWith(map[string]interface{}{
			"logon_count":       10.0,
			"file_access_count": 50.0,
			"total_bytes_out":   1e6,
		})
		assert.InDelta(t, 0.0, d.Score("alice", evt), 1e-9)
	})

	t.Run("should saturate a feature at three standard deviations", func(t *testing.T) {
		// logon_count at mean+3*std contributes 1.0; the other two features
		// sit at their means and contribute 0.
		evt := eventWith(map[string]interface{}{
			"logon_count":       16.0,
			"file_access_count": 50.0,
			"total_bytes_out":   1e6,
		})
		assert.InDelta(t, 1.0/3.0, d.Score("alice", evt), 1e-6)
	})

	t.Run("should clamp each feature contribution at one", func(t *testing.T) {
		evt := eventWith(map[string]interface{}{
			"logon_count":       1000.0,
			"file_access_count": 5000.0,
			"total_bytes_out":   1e9,
		})
		assert.InDelta(t, 1.0, d.Score("alice", evt), 1e-6)
	})

	t.Run("should treat missing event fields as zero-valued", func(t *testing.T) {
		// All three features absent: each deviates from its mean by the full
		// mean value.
		evt := eventWith(nil)
		score := d.Score("alice", evt)
		assert.Greater(t, score, 0.9)
		assert.LessOrEqual(t, score, 1.0)
	})
}

func TestDetectorKnown(t *testing.T) {
	d := NewDetector(testBaselines(), []string{"logon_count"})
	assert.True(t, d.Known("alice"))
	assert.False(t, d.Known("bob"))
}
