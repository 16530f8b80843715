package compat

import "fmt"

// Disclaimer accompanies every result.
const Disclaimer = "This compatibility insight is for informational purposes only and does not constitute medical, legal, or predictive advice."

// RadarLabels are the radar chart axes, in CategoryScores order.
var RadarLabels = []string{"Age", "Location", "Career", "Lifestyle", "Family"}

// CategoryScores holds one 0..100 score per attribute category.
type CategoryScores struct {
	Age             int `json:"age"`
	Location        int `json:"location"`
	EducationCareer int `json:"education_career"`
	Lifestyle       int `json:"lifestyle"`
	FamilyValues    int `json:"family_values"`
}

// Values returns the scores in RadarLabels order.
func (s CategoryScores) Values() []int {
	return []int{s.Age, s.Location, s.EducationCareer, s.Lifestyle, s.FamilyValues}
}

// Radar is a radar-chart projection of the category scores.
type Radar struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Result is the verdict for one (subject, candidate) pair.
type Result struct {
	OverallScore   int                `json:"overall_score"`
	CategoryScores CategoryScores     `json:"category_scores"`
	Radar          Radar              `json:"radar"`
	Insights       []string           `json:"insights"`
	Symbolic       *SymbolicIndicator `json:"symbolic_indicator,omitempty"`
	Disclaimer     string             `json:"disclaimer"`
}

// Options tunes a single evaluation.
type Options struct {
	IncludeSymbolic bool `json:"include_symbolic"`
}

// Key identifies the options for memoization.
func (o Options) Key() string {
	if o.IncludeSymbolic {
		return "sym"
	}
	return "plain"
}

// Engine evaluates profile pairs. The zero value is not usable; call New.
type Engine struct {
	Policy  EligibilityPolicy
	Scorers Scorers
	Weights Weights
}

// New returns an engine with the production policy, scorers and weights.
func New() *Engine {
	return &Engine{
		Policy:  OppositeGender,
		Scorers: DefaultScorers(),
		Weights: DefaultWeights(),
	}
}

// Evaluate scores candidate from subject's point of view.
//
// Both profiles are validated first; a malformed profile yields an error
// wrapping ErrInvalidProfile, and weights that fail Weights.Validate yield
// ErrInvalidWeights. A pair rejected by the eligibility policy
// yields ErrIneligible and no result.
func (e *Engine) Evaluate(subject, candidate *Profile, opts Options) (*Result, error) {
	// Valid weights keep the overall score within 0..100.
	if err := e.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	if err := ValidateProfile(subject); err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	if err := ValidateProfile(candidate); err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}

	policy := e.Policy
	if policy == nil {
		policy = OppositeGender
	}
	if !policy(subject, candidate) {
		return nil, ErrIneligible
	}

	scorers := e.Scorers.withDefaults()
	scores := CategoryScores{
		Age:             clamp(scorers.Age.Score(subject, candidate)),
		Location:        clamp(scorers.Location.Score(subject, candidate)),
		EducationCareer: clamp(scorers.EducationCareer.Score(subject, candidate)),
		Lifestyle:       clamp(scorers.Lifestyle.Score(subject, candidate)),
		FamilyValues:    clamp(scorers.FamilyValues.Score(subject, candidate)),
	}

	res := &Result{
		OverallScore:   e.Weights.Overall(scores),
		CategoryScores: scores,
		Radar: Radar{
			Labels: append([]string(nil), RadarLabels...),
			Values: scores.Values(),
		},
		Insights:   Insights(scores),
		Disclaimer: Disclaimer,
	}
	if opts.IncludeSymbolic {
		sym := Symbolic(subject.ID, candidate.ID)
		res.Symbolic = &sym
	}
	return res, nil
}

// clamp keeps replacement scorers inside the 0..100 contract.
func clamp(score int) int {
	return min(100, max(0, score))
}
