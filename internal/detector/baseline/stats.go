package baseline

import (
	"math"
	"math/rand"
	"sort"

	"github.com/turtacn/ueba/internal/domain/models"
)

// Accumulator computes running mean and standard deviation with Welford's
// algorithm, so baseline building streams row by row instead of holding a
// dataframe in memory.
type Accumulator struct {
	n    int
	mean float64
	m2   float64
}

// Add folds one observation into the running statistics.
func (a *Accumulator) Add(x float64) {
	a.n++
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

// Count returns the number of observations seen.
func (a *Accumulator) Count() int {
	return a.n
}

// Mean returns the running mean.
func (a *Accumulator) Mean() float64 {
	return a.mean
}

// Std returns the population standard deviation.
func (a *Accumulator) Std() float64 {
	if a.n < 2 {
		return 0
	}
	return math.Sqrt(a.m2 / float64(a.n))
}

// Reservoir keeps a bounded uniform sample for approximate quantiles. For
// inputs no larger than the capacity the quantiles are exact.
type Reservoir struct {
	capacity int
	seen     int
	values   []float64
	rng      *rand.Rand
}

// NewReservoir creates a reservoir holding at most capacity observations.
func NewReservoir(capacity int, seed int64) *Reservoir {
	return &Reservoir{
		capacity: capacity,
		values:   make([]float64, 0, capacity),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Add offers one observation, applying reservoir replacement once full.
func (r *Reservoir) Add(x float64) {
	r.seen++
	if len(r.values) < r.capacity {
		r.values = append(r.values, x)
		return
	}
	if idx := r.rng.Intn(r.seen); idx < r.capacity {
		r.values[idx] = x
	}
}

// Quantile returns the p-quantile (0 <= p <= 1) of the retained sample,
// 0 when the reservoir is empty.
func (r *Reservoir) Quantile(p float64) float64 {
	if len(r.values) == 0 {
		return 0
	}
	sorted := make([]float64, len(r.values))
	copy(sorted, r.values)
	sort.Float64s(sorted)

	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// Builder aggregates per-user daily rows into baseline table rows. The
// trainer feeds it weekday rows only; weekend days would dilute the baseline
// with atypical low-activity days.
type Builder struct {
	features     []string
	accumulators map[string]map[string]*Accumulator
	reservoirs   map[string]map[string]*Reservoir
	reservoirCap int
	seed         int64
}

// NewBuilder creates a Builder for the given comparison features.
func NewBuilder(features []string, reservoirCap int, seed int64) *Builder {
	return &Builder{
		features:     features,
		accumulators: make(map[string]map[string]*Accumulator),
		reservoirs:   make(map[string]map[string]*Reservoir),
		reservoirCap: reservoirCap,
		seed:         seed,
	}
}

// Add folds one daily aggregate row for a user into the running statistics.
func (b *Builder) Add(userID string, values map[string]float64) {
	accs, ok := b.accumulators[userID]
	if !ok {
		accs = make(map[string]*Accumulator, len(b.features))
		ress := make(map[string]*Reservoir, len(b.features))
		for _, f := range b.features {
			accs[f] = &Accumulator{}
			ress[f] = NewReservoir(b.reservoirCap, b.seed)
		}
		b.accumulators[userID] = accs
		b.reservoirs[userID] = ress
	}

	ress := b.reservoirs[userID]
	for _, f := range b.features {
		v := values[f]
		accs[f].Add(v)
		ress[f].Add(v)
	}
}

// Build materializes the baseline table.
func (b *Builder) Build() map[string]*models.UserBaseline {
	out := make(map[string]*models.UserBaseline, len(b.accumulators))
	for userID, accs := range b.accumulators {
		row := &models.UserBaseline{
			UserID:   userID,
			Features: make(map[string]models.FeatureBaseline, len(b.features)),
		}
		for _, f := range b.features {
			acc := accs[f]
			res := b.reservoirs[userID][f]
			row.Features[f] = models.FeatureBaseline{
				Mean:   acc.Mean(),
				Std:    acc.Std(),
				Median: res.Quantile(0.5),
				Q75:    res.Quantile(0.75),
				Q95:    res.Quantile(0.95),
			}
		}
		out[userID] = row
	}
	return out
}
