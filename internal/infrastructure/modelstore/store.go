// Package modelstore loads the trained model artifacts at process start.
// Everything it returns is immutable, shared, read-only state; a load failure
// is fatal because scoring without models would have to invent numbers.
package modelstore

import (
	"context"
	"fmt"
	"os"

	"github.com/turtacn/ueba/internal/config"
	"github.com/turtacn/ueba/internal/detector/feature"
	"github.com/turtacn/ueba/internal/detector/iforest"
	"github.com/turtacn/ueba/internal/detector/markov"
	"github.com/turtacn/ueba/internal/domain/models"
	"github.com/turtacn/ueba/internal/domain/repository"
	"github.com/turtacn/ueba/pkg/logger"
)

// Store holds every trained artifact the ensemble serves from.
type Store struct {
	Forest        *iforest.Forest
	Markov        *markov.Model
	Baselines     map[string]*models.UserBaseline
	Personalities map[string]*models.PersonalityVector
}

// Load reads all artifacts and verifies the feature schema contract between
// training and serving. A schema mismatch is a deployment error, not a
// runtime condition.
func Load(
	ctx context.Context,
	cfg config.ModelsConfig,
	baselineRepo repository.BaselineRepository,
	personalityRepo repository.PersonalityRepository,
	log logger.Logger,
) (*Store, error) {
	forest, err := loadForest(cfg.IsolationForest)
	if err != nil {
		return nil, err
	}

	markovModel, err := loadMarkov(cfg.Markov)
	if err != nil {
		return nil, err
	}

	baselines, err := baselineRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("modelstore: load baselines: %w", err)
	}

	personalities, err := personalityRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("modelstore: load personality table: %w", err)
	}

	log.Info(ctx, "model artifacts loaded",
		logger.Int("isolation_trees", forest.NumTrees),
		logger.Int("markov_states", len(markovModel.Totals)),
		logger.Int("baseline_users", len(baselines)),
		logger.Int("personality_users", len(personalities)),
	)

	return &Store{
		Forest:        forest,
		Markov:        markovModel,
		Baselines:     baselines,
		Personalities: personalities,
	}, nil
}

func loadForest(path string) (*iforest.Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("modelstore: open isolation forest artifact: %w", err)
	}
	defer f.Close()

	forest, err := iforest.Load(f)
	if err != nil {
		return nil, fmt.Errorf("modelstore: decode isolation forest artifact: %w", err)
	}
	if err := verifySchema(forest.SchemaVersion, forest.SchemaColumns); err != nil {
		return nil, err
	}
	return forest, nil
}

func loadMarkov(path string) (*markov.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("modelstore: open markov artifact: %w", err)
	}
	defer f.Close()

	m, err := markov.Load(f)
	if err != nil {
		return nil, fmt.Errorf("modelstore: decode markov artifact: %w", err)
	}
	return m, nil
}

// verifySchema checks that the artifact was trained against the exact feature
// schema compiled into this binary, including column order.
func verifySchema(version string, columns []string) error {
	if version != feature.SchemaVersion {
		return fmt.Errorf("modelstore: artifact schema version %q does not match binary schema %q",
			version, feature.SchemaVersion)
	}
	expected := feature.Columns()
	if len(columns) != len(expected) {
		return fmt.Errorf("modelstore: artifact has %d feature columns, binary expects %d",
			len(columns), len(expected))
	}
	for i, name := range expected {
		if columns[i] != name {
			return fmt.Errorf("modelstore: feature column %d is %q in artifact, %q in binary",
				i, columns[i], name)
		}
	}
	return nil
}
