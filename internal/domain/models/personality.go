package models

import "math"

// PersonalityVector is a user's five-trait psychometric profile. It is
// attached to score results as analyst context only and never feeds the
// numeric fusion.
type PersonalityVector struct {
	Openness          float64 `json:"O"`
	Conscientiousness float64 `json:"C"`
	Extraversion      float64 `json:"E"`
	Agreeableness     float64 `json:"A"`
	Neuroticism       float64 `json:"N"`
}

func (p *PersonalityVector) traits() [5]float64 {
	return [5]float64{p.Openness, p.Conscientiousness, p.Extraversion, p.Agreeableness, p.Neuroticism}
}

// Cosine returns the cosine similarity between two profiles, 0 when either
// vector is zero.
func (p *PersonalityVector) Cosine(other *PersonalityVector) float64 {
	a, b := p.traits(), other.traits()
	var dot, na, nb float64
	for i := 0; i < 5; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
