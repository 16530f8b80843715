package compat

import (
	"fmt"
	"math"
)

// Weights sets the contribution of each category to the overall score.
type Weights struct {
	Age             float64
	Location        float64
	EducationCareer float64
	Lifestyle       float64
	FamilyValues    float64
}

// DefaultWeights returns the fixed production weight vector.
func DefaultWeights() Weights {
	return Weights{
		Age:             0.30,
		Location:        0.20,
		EducationCareer: 0.20,
		Lifestyle:       0.15,
		FamilyValues:    0.15,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Age + w.Location + w.EducationCareer + w.Lifestyle + w.FamilyValues
}

// Validate checks that weights are non-negative and sum to 1.0.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Age, w.Location, w.EducationCareer, w.Lifestyle, w.FamilyValues} {
		if v < 0 {
			return fmt.Errorf("compat: negative weight %f", v)
		}
	}
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("compat: weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	return nil
}

// Overall rounds the weighted sum of the category scores.
func (w Weights) Overall(s CategoryScores) int {
	// Each product is converted explicitly so the compiler cannot fuse it
	// into a multiply-add; results must match other clients bit for bit.
	sum := float64(float64(s.Age) * w.Age)
	sum += float64(float64(s.Location) * w.Location)
	sum += float64(float64(s.EducationCareer) * w.EducationCareer)
	sum += float64(float64(s.Lifestyle) * w.Lifestyle)
	sum += float64(float64(s.FamilyValues) * w.FamilyValues)
	return int(math.Round(sum))
}
