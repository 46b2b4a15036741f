package baseline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator(t *testing.T) {
	t.Run("should match the closed-form mean and population std", func(t *testing.T) {
		values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
		var acc Accumulator
		for _, v := range values {
			acc.Add(v)
		}
		assert.Equal(t, len(values), acc.Count())
		assert.InDelta(t, 5.0, acc.Mean(), 1e-12)
		assert.InDelta(t, 2.0, acc.Std(), 1e-12)
	})

	t.Run("should report zero std for fewer than two observations", func(t *testing.T) {
		var acc Accumulator
		assert.Equal(t, 0.0, acc.Std())
		acc.Add(42)
		assert.Equal(t, 0.0, acc.Std())
	})

	t.Run("should stay stable for large offsets", func(t *testing.T) {
		var acc Accumulator
		for i := 0; i < 1000; i++ {
			acc.Add(1e9 + float64(i%2))
		}
		assert.InDelta(t, 1e9+0.5, acc.Mean(), 1e-3)
		assert.InDelta(t, 0.5, acc.Std(), 1e-3)
	})
}

func TestReservoir(t *testing.T) {
	t.Run("should compute exact quantiles below capacity", func(t *testing.T) {
		r := NewReservoir(100, 1)
		for i := 1; i <= 11; i++ {
			r.Add(float64(i))
		}
		assert.Equal(t, 6.0, r.Quantile(0.5))
		assert.Equal(t, 1.0, r.Quantile(0))
		assert.Equal(t, 11.0, r.Quantile(1))
	})

	t.Run("should return zero when empty", func(t *testing.T) {
		r := NewReservoir(10, 1)
		assert.Equal(t, 0.0, r.Quantile(0.5))
	})

	t.Run("should keep a bounded sample under heavy input", func(t *testing.T) {
		r := NewReservoir(64, 1)
		for i := 0; i < 100000; i++ {
			r.Add(float64(i % 1000))
		}
		require.Len(t, r.values, 64)
		// The sample median of a uniform stream lands near the middle.
		med := r.Quantile(0.5)
		assert.Greater(t, med, 200.0)
		assert.Less(t, med, 800.0)
	})
}

func TestBuilder(t *testing.T) {
	features := []string{"logon_count", "total_bytes_out"}
	b := NewBuilder(features, 128, 1)

	for day := 0; day < 10; day++ {
		b.Add("alice", map[string]float64{
			"logon_count":     float64(day + 1),
			"total_bytes_out": 1000,
		})
	}
	b.Add("bob", map[string]float64{"logon_count": 3, "total_bytes_out": 50})

	table := b.Build()
	require.Len(t, table, 2)

	alice := table["alice"]
	require.NotNil(t, alice)
	assert.Equal(t, "alice", alice.UserID)

	logon := alice.Features["logon_count"]
	assert.InDelta(t, 5.5, logon.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(8.25), logon.Std, 1e-12)
	assert.Equal(t, 5.0, logon.Median)
	assert.Equal(t, 7.0, logon.Q75)

	bytesOut := alice.Features["total_bytes_out"]
	assert.Equal(t, 1000.0, bytesOut.Mean)
	assert.Equal(t, 0.0, bytesOut.Std)

	bob := table["bob"]
	require.NotNil(t, bob)
	assert.Equal(t, 3.0, bob.Features["logon_count"].Mean)
	assert.Equal(t, 0.0, bob.Features["logon_count"].Std)
}
