// Package application wires the detectors into the scoring ensemble and
// exposes the use cases the transport layer calls.
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ueba/internal/config"
	"github.com/turtacn/ueba/internal/detector/baseline"
	"github.com/turtacn/ueba/internal/detector/feature"
	"github.com/turtacn/ueba/internal/detector/iforest"
	"github.com/turtacn/ueba/internal/detector/markov"
	"github.com/turtacn/ueba/internal/detector/rules"
	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/pkg/constants"
	"github.com/turtacn/ueba/pkg/errors"
	"github.com/turtacn/ueba/pkg/logger"
)

// Explanation fragments contributed by detectors that cross their reporting
// thresholds.
const (
	explainMarkov   = "rare action sequence"
	explainIforest  = "numeric anomaly (isolation-forest)"
	explainBaseline = "deviation from baseline"
	explainFallback = "anomaly detected by ensemble"
)

// Reporting thresholds for explanation fragments. These gate text only, not
// the numeric fusion.
const (
	markovExplainThreshold   = 0.5
	iforestExplainThreshold  = 0.6
	baselineExplainThreshold = 0.5
)

// ScoringService scores telemetry events for behavioral anomalies.
type ScoringService interface {
	// ScoreEvent fuses the four detector signals into one result. Validation
	// failures surface as AppErrors safe to describe to the caller.
	ScoreEvent(ctx context.Context, evt *models.Event) (*models.ScoreResult, error)
}

type scoringService struct {
	forest        *iforest.Forest
	markov        *markov.Model
	baseline      *baseline.Detector
	rules         *rules.Engine
	personalities map[string]*models.PersonalityVector
	weights       config.EnsembleConfig
	log           logger.Logger
}

// NewScoringService builds the ensemble over trained, immutable models. All
// model state is shared and read-only; concurrent calls need no locking.
func NewScoringService(
	forest *iforest.Forest,
	markovModel *markov.Model,
	baselineDetector *baseline.Detector,
	ruleEngine *rules.Engine,
	personalities map[string]*models.PersonalityVector,
	weights config.EnsembleConfig,
	log logger.Logger,
) (ScoringService, error) {
	if forest == nil || !forest.Trained() {
		return nil, fmt.Errorf("scoring: isolation forest not trained")
	}
	if markovModel == nil || !markovModel.Trained() {
		return nil, fmt.Errorf("scoring: markov model not trained")
	}
	return &scoringService{
		forest:        forest,
		markov:        markovModel,
		baseline:      baselineDetector,
		rules:         ruleEngine,
		personalities: personalities,
		weights:       weights,
		log:           log.WithComponent("ScoringService"),
	}, nil
}

func (s *scoringService) ScoreEvent(ctx context.Context, evt *models.Event) (*models.ScoreResult, error) {
	start := time.Now()

	if err := evt.Validate(); err != nil {
		return nil, err
	}
	tokens, err := evt.SequenceTokens()
	if err != nil {
		return nil, err
	}

	var (
		isoScore      float64
		markovScore   float64
		baselineScore float64
		ruleScore     float64
		triggered     map[string]bool
	)

	// The detectors are independent pure computations over shared read-only
	// models; run them concurrently.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec := feature.Vectorize(evt)
		score, err := s.forest.Score(vec)
		if err != nil {
			return err
		}
		isoScore = score
		return nil
	})
	g.Go(func() error {
		markovScore = s.markov.Score(tokens)
		return nil
	})
	g.Go(func() error {
		baselineScore = s.baseline.Score(evt.User, evt)
		return nil
	})
	g.Go(func() error {
		ruleScore, triggered = s.rules.Evaluate(evt)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.ErrInternal("detector evaluation failed").WithCause(err)
	}

	result := s.fuse(evt.User, componentScores{
		isolationForest: isoScore,
		markov:          markovScore,
		baseline:        baselineScore,
		rules:           ruleScore,
		triggered:       triggered,
	})

	s.log.Debug(ctx, "event scored",
		logger.String("user", evt.User),
		logger.Float64("risk_score", result.RiskScore),
		logger.String("severity", string(result.Severity)),
		logger.String("anomaly_type", string(result.AnomalyType)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// componentScores carries the raw detector outputs into the fusion.
type componentScores struct {
	isolationForest float64
	markov          float64
	baseline        float64
	rules           float64
	triggered       map[string]bool
}

// fuse combines the detector outputs into the final result: weighted sum,
// clamp, severity bucketing, rule-driven classification, and explanation.
func (s *scoringService) fuse(userID string, c componentScores) *models.ScoreResult {
	final := s.weights.IsolationForestWeight*c.isolationForest +
		s.weights.MarkovWeight*c.markov +
		s.weights.BaselineWeight*c.baseline +
		s.weights.RulesWeight*c.rules
	final = models.Clamp01(final)

	return &models.ScoreResult{
		RiskScore:   models.Round4(final),
		Severity:    models.SeverityFor(final),
		Explanation: explain(c),
		Scores: models.ComponentScores{
			Baseline:        models.Round4(c.baseline),
			Markov:          models.Round4(c.markov),
			IsolationForest: models.Round4(c.isolationForest),
			Rules:           c.triggered,
		},
		AnomalyType: classify(c.triggered),
		OceanVector: s.personalities[userID],
	}
}

// classify maps triggered rules to an anomaly category. Precedence: a large
// upload outranks account-compromise indicators; first match wins.
func classify(triggered map[string]bool) constants.AnomalyType {
	switch {
	case triggered[constants.RuleLargeUpload]:
		return constants.AnomalyTypeDataExfiltration
	case triggered[constants.RuleTooManyFailedLogins], triggered[constants.RuleNewDevice]:
		return constants.AnomalyTypeCompromisedAccount
	default:
		return constants.AnomalyTypeUnknown
	}
}

// explain joins the contributing factors into analyst-readable text.
func explain(c componentScores) string {
	var parts []string
	if c.markov > markovExplainThreshold {
		parts = append(parts, explainMarkov)
	}
	if c.isolationForest > iforestExplainThreshold {
		parts = append(parts, explainIforest)
	}
	if c.baseline > baselineExplainThreshold {
		parts = append(parts, explainBaseline)
	}
	// Stable rule order keeps explanations deterministic.
	for _, rule := range []string{constants.RuleNewDevice, constants.RuleTooManyFailedLogins, constants.RuleLargeUpload} {
		if c.triggered[rule] {
			parts = append(parts, rule)
		}
	}
	if len(parts) == 0 {
		return explainFallback
	}
	return strings.Join(parts, " + ")
}
