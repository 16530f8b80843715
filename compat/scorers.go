package compat

import "strings"

// Scorer rates one attribute category of a pair on a 0..100 scale.
type Scorer interface {
	Score(subject, candidate *Profile) int
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(subject, candidate *Profile) int

func (f ScorerFunc) Score(subject, candidate *Profile) int { return f(subject, candidate) }

// Scorers holds one strategy per category so any of them can be replaced
// without touching aggregation.
type Scorers struct {
	Age             Scorer
	Location        Scorer
	EducationCareer Scorer
	Lifestyle       Scorer
	FamilyValues    Scorer
}

// DefaultScorers returns the production heuristics.
func DefaultScorers() Scorers {
	return Scorers{
		Age:             ScorerFunc(AgeScore),
		Location:        ScorerFunc(LocationScore),
		EducationCareer: ScorerFunc(EducationCareerScore),
		Lifestyle:       ScorerFunc(LifestyleScore),
		FamilyValues:    ScorerFunc(FamilyValuesScore),
	}
}

// withDefaults fills unset strategies with the production ones.
func (s Scorers) withDefaults() Scorers {
	d := DefaultScorers()
	if s.Age == nil {
		s.Age = d.Age
	}
	if s.Location == nil {
		s.Location = d.Location
	}
	if s.EducationCareer == nil {
		s.EducationCareer = d.EducationCareer
	}
	if s.Lifestyle == nil {
		s.Lifestyle = d.Lifestyle
	}
	if s.FamilyValues == nil {
		s.FamilyValues = d.FamilyValues
	}
	return s
}

// AgeScore follows the subject's declared age range when there is one,
// losing 10 points per year outside it. Without a range it falls back to a
// gap table. Only the subject's preference is consulted, so the score is
// not symmetric.
func AgeScore(subject, candidate *Profile) int {
	if r, ok := subject.ageRange(); ok {
		return max(0, 100-r.Distance(candidate.Age)*10)
	}

	gap := abs(subject.Age - candidate.Age)
	switch {
	case gap <= 5:
		return 100
	case gap <= 8:
		return 80
	case gap <= 12:
		return 50
	default:
		return 20
	}
}

// LocationScore is strictly tiered: city, then state, then country.
func LocationScore(subject, candidate *Profile) int {
	a, b := subject.Location, candidate.Location
	switch {
	case strings.EqualFold(a.City, b.City):
		return 100
	case strings.EqualFold(a.State, b.State):
		return 70
	case strings.EqualFold(a.Country, b.Country):
		return 40
	default:
		return 0
	}
}

const (
	educationBase        = 50
	educationDegreeBonus = 30
	// Optimistic lift applied to every pair until degree tiers exist.
	educationBoost = 20
)

// EducationCareerScore is a coarse placeholder: matching degrees score 100,
// everything else 70.
func EducationCareerScore(subject, candidate *Profile) int {
	score := educationBase
	if strings.EqualFold(subject.Education.Degree, candidate.Education.Degree) {
		score += educationDegreeBonus
	}
	return min(100, score+educationBoost)
}

const (
	vegPenalty      = 40
	dietPenalty     = 10
	smokingPenalty  = 20
	drinkingPenalty = 20
)

// LifestyleScore deducts independent penalties for diet and habit mismatches.
func LifestyleScore(subject, candidate *Profile) int {
	a, b := subject.Lifestyle, candidate.Lifestyle
	score := 100

	if a.Diet != b.Diet {
		if (a.Diet == Veg && b.Diet == NonVeg) || (a.Diet == NonVeg && b.Diet == Veg) {
			score -= vegPenalty
		} else {
			score -= dietPenalty
		}
	}
	if a.Smoking != b.Smoking {
		score -= smokingPenalty
	}
	if a.Drinking != b.Drinking {
		score -= drinkingPenalty
	}
	return max(0, score)
}

// FamilyValuesScore treats Moderate as a bridge between the other outlooks.
func FamilyValuesScore(subject, candidate *Profile) int {
	a, b := subject.Family.Values, candidate.Family.Values
	switch {
	case a == b:
		return 100
	case a == Moderate || b == Moderate:
		return 70
	default:
		return 30
	}
}
