package models

import (
	"math"
	"time"

	"github.com/turtacn/ueba/pkg/constants"
)

// ComponentScores carries the individual detector outputs that fed the fusion.
type ComponentScores struct {
	Baseline        float64         `json:"baseline"`
	Markov          float64         `json:"markov"`
	IsolationForest float64         `json:"isolation_forest"`
	Rules           map[string]bool `json:"rules"`
}

// ScoreResult is the outcome of scoring one event. It is produced per call
// and not persisted by this service.
type ScoreResult struct {
	RiskScore   float64               `json:"risk_score"`
	Severity    constants.Severity    `json:"severity"`
	Explanation string                `json:"explanation"`
	Scores      ComponentScores       `json:"scores"`
	AnomalyType constants.AnomalyType `json:"anomaly_type"`
	OceanVector *PersonalityVector    `json:"ocean_vector"`
}

// SeverityFor buckets a risk score into its triage tier.
func SeverityFor(score float64) constants.Severity {
	switch {
	case score >= constants.SeverityHighThreshold:
		return constants.SeverityHigh
	case score >= constants.SeverityMediumThreshold:
		return constants.SeverityMedium
	default:
		return constants.SeverityLow
	}
}

// Clamp01 limits a score to [0,1]. Weighted sums can drift outside the range
// through floating point error.
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Round4 rounds a score to four decimals for serialization.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Alert is the record published for high severity results.
type Alert struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	RiskScore   float64               `json:"risk_score"`
	Severity    constants.Severity    `json:"severity"`
	AnomalyType constants.AnomalyType `json:"anomaly_type"`
	Explanation string                `json:"explanation"`
	CreatedAt   time.Time             `json:"created_at"`
}
