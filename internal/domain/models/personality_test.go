package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonalityVectorJSON(t *testing.T) {
	p := PersonalityVector{Openness: 0.1, Conscientiousness: 0.2, Extraversion: 0.3, Agreeableness: 0.4, Neuroticism: 0.5}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"O":0.1,"C":0.2,"E":0.3,"A":0.4,"N":0.5}`, string(data))
}

func TestPersonalityCosine(t *testing.T) {
	a := &PersonalityVector{Openness: 1, Conscientiousness: 0, Extraversion: 0, Agreeableness: 0, Neuroticism: 0}
	b := &PersonalityVector{Openness: 0, Conscientiousness: 1, Extraversion: 0, Agreeableness: 0, Neuroticism: 0}
	zero := &PersonalityVector{}

	assert.InDelta(t, 1.0, a.Cosine(a), 1e-12)
	assert.InDelta(t, 0.0, a.Cosine(b), 1e-12)
	assert.Equal(t, 0.0, a.Cosine(zero))
	assert.Equal(t, 0.0, zero.Cosine(a))

	scaled := &PersonalityVector{Openness: 2}
	assert.InDelta(t, 1.0, a.Cosine(scaled), 1e-12)
}
