// Package markov implements a first-order Markov chain over action tokens.
// The chain is trained offline from historical per-user-per-day sequences and
// scores how surprising a recent sequence is under the learned transitions.
package markov

import (
	"encoding/gob"
	"errors"
	"io"
	"math"

	"github.com/turtacn/ueba/pkg/constants"
)

// Model holds transition counts and per-source totals. Immutable after
// training; scoring is lock-free and safe for concurrent use.
type Model struct {
	Transitions map[string]map[string]int
	Totals      map[string]int
}

// New creates an empty model.
func New() *Model {
	return &Model{
		Transitions: make(map[string]map[string]int),
		Totals:      make(map[string]int),
	}
}

// Fit accumulates transition counts from token sequences. May be called
// repeatedly during training; never after the model starts serving.
func (m *Model) Fit(sequences [][]string) {
	for _, seq := range sequences {
		for i := 0; i+1 < len(seq); i++ {
			a, b := seq[i], seq[i+1]
			dst, ok := m.Transitions[a]
			if !ok {
				dst = make(map[string]int)
				m.Transitions[a] = dst
			}
			dst[b]++
			m.Totals[a]++
		}
	}
}

// TransitionProbability returns P(b|a). Unseen source tokens and unseen
// transitions from known sources both fall back to the epsilon floor: an
// unobserved move is treated as equally rare either way.
func (m *Model) TransitionProbability(a, b string) float64 {
	total := m.Totals[a]
	if total == 0 {
		return constants.MarkovEpsilon
	}
	count := m.Transitions[a][b]
	if count == 0 {
		return constants.MarkovEpsilon
	}
	return float64(count) / float64(total)
}

// Score returns 1 minus the geometric mean of the pairwise transition
// probabilities. Sequences shorter than two tokens carry no evidence and
// score 0. Sequences of only high-frequency transitions score near 0;
// any unseen transition drives the score toward 1.
func (m *Model) Score(tokens []string) float64 {
	if len(tokens) < 2 {
		return 0
	}

	var logSum float64
	pairs := 0
	for i := 0; i+1 < len(tokens); i++ {
		logSum += math.Log(m.TransitionProbability(tokens[i], tokens[i+1]))
		pairs++
	}

	geoMean := math.Exp(logSum / float64(pairs))
	return 1 - geoMean
}

// Trained reports whether the model observed at least one transition.
func (m *Model) Trained() bool {
	return len(m.Totals) > 0
}

// Save serializes the model.
func (m *Model) Save(w io.Writer) error {
	if !m.Trained() {
		return errors.New("markov: model not trained")
	}
	return gob.NewEncoder(w).Encode(m)
}

// Load deserializes a trained model.
func Load(r io.Reader) (*Model, error) {
	var m Model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	if !m.Trained() {
		return nil, errors.New("markov: artifact holds no trained model")
	}
	return &m, nil
}
