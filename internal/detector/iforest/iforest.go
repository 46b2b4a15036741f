// Package iforest implements the isolation forest algorithm for numeric
// anomaly detection. Anomalous points need fewer random partitions to
// isolate, so shorter average path lengths map to higher scores.
package iforest

import (
	"encoding/gob"
	"errors"
	"io"
	"math"
	"math/rand"
)

// Forest is a trained isolation forest. Immutable after Fit or Load; scoring
// is lock-free and safe for concurrent use.
type Forest struct {
	NumTrees      int
	SampleSize    int
	Trees         []*Tree
	Normalization float64 // c(ψ) for the configured sample size
	SchemaVersion string
	SchemaColumns []string

	rng      *rand.Rand
	maxDepth int
}

// Tree is a single isolation tree.
type Tree struct {
	Root *Node
}

// Node is one node of an isolation tree. Leaves keep the subsample size that
// reached them so path lengths can be corrected by the expected remaining
// depth.
type Node struct {
	SplitFeature int
	SplitValue   float64
	Left         *Node
	Right        *Node
	Size         int
}

// Option configures a Forest before training.
type Option func(*Forest)

// WithTrees sets the ensemble size.
func WithTrees(n int) Option {
	return func(f *Forest) { f.NumTrees = n }
}

// WithSampleSize sets the per-tree subsample size ψ.
func WithSampleSize(n int) Option {
	return func(f *Forest) { f.SampleSize = n }
}

// WithSeed makes training reproducible.
func WithSeed(seed int64) Option {
	return func(f *Forest) { f.rng = rand.New(rand.NewSource(seed)) }
}

// WithSchema records the feature schema the forest is trained against.
func WithSchema(version string, columns []string) Option {
	return func(f *Forest) {
		f.SchemaVersion = version
		f.SchemaColumns = columns
	}
}

// New creates an untrained Forest.
func New(opts ...Option) *Forest {
	f := &Forest{
		NumTrees:   100,
		SampleSize: 256,
		rng:        rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit builds the ensemble from a training matrix. Each tree is grown on a
// subsample drawn without replacement, splitting on a random feature at a
// uniform random threshold inside the feature's observed range, down to a
// single point or depth ceil(log2 ψ).
func (f *Forest) Fit(data [][]float64) error {
	if len(data) == 0 {
		return errors.New("iforest: empty training data")
	}
	nFeatures := len(data[0])
	if nFeatures == 0 {
		return errors.New("iforest: zero-width training data")
	}

	sampleSize := f.SampleSize
	if sampleSize > len(data) {
		sampleSize = len(data)
	}
	f.maxDepth = int(math.Ceil(math.Log2(float64(sampleSize))))

	f.Trees = make([]*Tree, f.NumTrees)
	for i := 0; i < f.NumTrees; i++ {
		indices := f.rng.Perm(len(data))[:sampleSize]
		sample := make([][]float64, sampleSize)
		for j, idx := range indices {
			sample[j] = data[idx]
		}
		f.Trees[i] = &Tree{Root: f.buildNode(sample, nFeatures, 0)}
	}

	f.SampleSize = sampleSize
	f.Normalization = averagePathLength(float64(sampleSize))
	return nil
}

func (f *Forest) buildNode(data [][]float64, nFeatures, depth int) *Node {
	n := len(data)
	if depth >= f.maxDepth || n <= 1 {
		return &Node{Size: n}
	}

	feat := f.rng.Intn(nFeatures)
	minVal, maxVal := data[0][feat], data[0][feat]
	for _, row := range data[1:] {
		if row[feat] < minVal {
			minVal = row[feat]
		}
		if row[feat] > maxVal {
			maxVal = row[feat]
		}
	}
	if minVal == maxVal {
		return &Node{Size: n}
	}

	splitValue := minVal + f.rng.Float64()*(maxVal-minVal)
	var left, right [][]float64
	for _, row := range data {
		if row[feat] < splitValue {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &Node{
		SplitFeature: feat,
		SplitValue:   splitValue,
		Left:         f.buildNode(left, nFeatures, depth+1),
		Right:        f.buildNode(right, nFeatures, depth+1),
	}
}

// Trained reports whether the forest holds a usable ensemble.
func (f *Forest) Trained() bool {
	return len(f.Trees) > 0 && f.Normalization > 0
}

// Score returns the normalized anomaly score 2^(-E[h(x)]/c(ψ)) in (0,1].
// Values near 1 indicate anomalies, values near 0.5 typical points. This is
// the detector's raw signal; no further transform is applied on top.
func (f *Forest) Score(x []float64) (float64, error) {
	if !f.Trained() {
		return 0, errors.New("iforest: model not trained")
	}

	var total float64
	for _, tree := range f.Trees {
		total += pathLength(x, tree.Root, 0)
	}
	avg := total / float64(len(f.Trees))

	return math.Pow(2, -avg/f.Normalization), nil
}

// pathLength walks x down a tree. Leaves holding more than one training
// point are extended by the expected depth of the subtree that was not built.
func pathLength(x []float64, n *Node, depth int) float64 {
	if n.Left == nil && n.Right == nil {
		return float64(depth) + averagePathLength(float64(n.Size))
	}
	if x[n.SplitFeature] < n.SplitValue {
		return pathLength(x, n.Left, depth+1)
	}
	return pathLength(x, n.Right, depth+1)
}

// averagePathLength is c(n): the expected path length of an unsuccessful
// search in a binary search tree of n nodes.
func averagePathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	// c(n) = 2*H(n-1) - 2*(n-1)/n with H(m) ~ ln(m) + Euler-Mascheroni
	return 2*(math.Log(n-1)+0.5772156649) - 2*(n-1)/n
}

// Save serializes the trained forest.
func (f *Forest) Save(w io.Writer) error {
	if !f.Trained() {
		return errors.New("iforest: model not trained")
	}
	return gob.NewEncoder(w).Encode(f)
}

// Load deserializes a trained forest.
func Load(r io.Reader) (*Forest, error) {
	var f Forest
	if err := gob.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	if !f.Trained() {
		return nil, errors.New("iforest: artifact holds no trained model")
	}
	f.maxDepth = int(math.Ceil(math.Log2(float64(f.SampleSize))))
	return &f, nil
}
