package modelstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ueba/internal/config"
	"github.com/turtacn/ueba/internal/detector/feature"
	"github.com/turtacn/ueba/internal/detector/iforest"
	"github.com/turtacn/ueba/internal/detector/markov"
	filerepo "github.com/turtacn/ueba/internal/infrastructure/persistence/file"
	"github.com/turtacn/ueba/pkg/logger"
)

func writeForestArtifact(t *testing.T, dir, version string, columns []string) string {
	t.Helper()
	data := make([][]float64, 100)
	for i := range data {
		row := make([]float64, len(columns))
		row[0] = float64(i)
		data[i] = row
	}
	forest := iforest.New(
		iforest.WithTrees(5),
		iforest.WithSampleSize(32),
		iforest.WithSeed(1),
		iforest.WithSchema(version, columns),
	)
	require.NoError(t, forest.Fit(data))

	path := filepath.Join(dir, "forest.gob")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, forest.Save(f))
	return path
}

func writeMarkovArtifact(t *testing.T, dir string) string {
	t.Helper()
	m := markov.New()
	m.Fit([][]string{{"logon", "logoff"}})

	path := filepath.Join(dir, "markov.gob")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, m.Save(f))
	return path
}

func writeTables(t *testing.T, dir string) (string, string) {
	t.Helper()
	baselines := filepath.Join(dir, "baselines.csv")
	require.NoError(t, os.WriteFile(baselines, []byte(
		"user_id,logon_count_mean,logon_count_std,logon_count_median,logon_count_q75,logon_count_q95\n"+
			"alice,10,2,9.5,11,14\n"), 0o644))

	personality := filepath.Join(dir, "psych.csv")
	require.NoError(t, os.WriteFile(personality, []byte(
		"user_id,O,C,E,A,N\nalice,0.7,0.5,0.3,0.6,0.2\n"), 0o644))
	return baselines, personality
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	forestPath := writeForestArtifact(t, dir, feature.SchemaVersion, feature.Columns())
	markovPath := writeMarkovArtifact(t, dir)
	baselinesPath, personalityPath := writeTables(t, dir)

	cfg := config.ModelsConfig{
		Source:          "file",
		IsolationForest: forestPath,
		Markov:          markovPath,
	}
	store, err := Load(
		context.Background(),
		cfg,
		filerepo.NewBaselineRepository(baselinesPath, []string{"logon_count"}),
		filerepo.NewPersonalityRepository(personalityPath),
		logger.NewNoopLogger(),
	)
	require.NoError(t, err)

	assert.True(t, store.Forest.Trained())
	assert.True(t, store.Markov.Trained())
	assert.Contains(t, store.Baselines, "alice")
	assert.Contains(t, store.Personalities, "alice")
}

func TestLoadSchemaVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	forestPath := writeForestArtifact(t, dir, "v0", feature.Columns())
	markovPath := writeMarkovArtifact(t, dir)
	baselinesPath, personalityPath := writeTables(t, dir)

	_, err := Load(
		context.Background(),
		config.ModelsConfig{IsolationForest: forestPath, Markov: markovPath},
		filerepo.NewBaselineRepository(baselinesPath, []string{"logon_count"}),
		filerepo.NewPersonalityRepository(personalityPath),
		logger.NewNoopLogger(),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version")
}

func TestLoadSchemaColumnMismatch(t *testing.T) {
	dir := t.TempDir()
	cols := feature.Columns()
	cols[0], cols[1] = cols[1], cols[0]
	forestPath := writeForestArtifact(t, dir, feature.SchemaVersion, cols)
	markovPath := writeMarkovArtifact(t, dir)
	baselinesPath, personalityPath := writeTables(t, dir)

	_, err := Load(
		context.Background(),
		config.ModelsConfig{IsolationForest: forestPath, Markov: markovPath},
		filerepo.NewBaselineRepository(baselinesPath, []string{"logon_count"}),
		filerepo.NewPersonalityRepository(personalityPath),
		logger.NewNoopLogger(),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature column")
}

func TestLoadMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	markovPath := writeMarkovArtifact(t, dir)
	baselinesPath, personalityPath := writeTables(t, dir)

	_, err := Load(
		context.Background(),
		config.ModelsConfig{IsolationForest: filepath.Join(dir, "missing.gob"), Markov: markovPath},
		filerepo.NewBaselineRepository(baselinesPath, []string{"logon_count"}),
		filerepo.NewPersonalityRepository(personalityPath),
		logger.NewNoopLogger(),
	)
	assert.Error(t, err)
}
