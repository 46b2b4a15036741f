package iforest

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusteredData returns rows tightly clustered around the origin.
func clusteredData(n, dim int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([][]float64, n)
	for i := range data {
		row := make([]float64, dim)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		data[i] = row
	}
	return data
}

func TestForestFitAndScore(t *testing.T) {
	data := clusteredData(500, 4, 7)
	forest := New(WithTrees(50), WithSampleSize(128), WithSeed(7))
	require.NoError(t, forest.Fit(data))
	require.True(t, forest.Trained())

	t.Run("should score inliers and outliers inside (0,1]", func(t *testing.T) {
		for _, x := range [][]float64{
			{0, 0, 0, 0},
			{100, 100, 100, 100},
		} {
			score, err := forest.Score(x)
			require.NoError(t, err)
			assert.Greater(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})

	t.Run("should score a far outlier higher than a central point", func(t *testing.T) {
		inlier, err := forest.Score([]float64{0, 0, 0, 0})
		require.NoError(t, err)
		outlier, err := forest.Score([]float64{50, -50, 50, -50})
		require.NoError(t, err)
		assert.Greater(t, outlier, inlier)
	})

	t.Run("should be deterministic for a fixed input", func(t *testing.T) {
		a, err := forest.Score([]float64{1, 2, 3, 4})
		require.NoError(t, err)
		b, err := forest.Score([]float64{1, 2, 3, 4})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestForestFitErrors(t *testing.T) {
	t.Run("should reject empty training data", func(t *testing.T) {
		err := New().Fit(nil)
		assert.Error(t, err)
	})

	t.Run("should reject zero-width rows", func(t *testing.T) {
		err := New().Fit([][]float64{{}})
		assert.Error(t, err)
	})

	t.Run("should shrink the sample size to the data size", func(t *testing.T) {
		forest := New(WithTrees(10), WithSampleSize(256), WithSeed(1))
		require.NoError(t, forest.Fit(clusteredData(40, 2, 1)))
		assert.Equal(t, 40, forest.SampleSize)
	})
}

func TestForestScoreUntrained(t *testing.T) {
	_, err := New().Score([]float64{1, 2})
	assert.Error(t, err)
}

func TestForestSaveLoad(t *testing.T) {
	data := clusteredData(300, 3, 11)
	forest := New(
		WithTrees(20),
		WithSampleSize(64),
		WithSeed(11),
		WithSchema("v1", []string{"a", "b", "c"}),
	)
	require.NoError(t, forest.Fit(data))

	var buf bytes.Buffer
	require.NoError(t, forest.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, forest.NumTrees, loaded.NumTrees)
	assert.Equal(t, forest.SampleSize, loaded.SampleSize)
	assert.Equal(t, "v1", loaded.SchemaVersion)
	assert.Equal(t, []string{"a", "b", "c"}, loaded.SchemaColumns)

	// Loaded forest must reproduce the original scores exactly.
	x := []float64{0.5, -0.5, 0.25}
	want, err := forest.Score(x)
	require.NoError(t, err)
	got, err := loaded.Score(x)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveUntrained(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, New().Save(&buf))
}

func TestAveragePathLength(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLength(1))
	assert.Equal(t, 0.0, averagePathLength(0))
	// c(256) is roughly 10.2 for the standard subsample size.
	assert.InDelta(t, 10.2, averagePathLength(256), 0.2)
}
