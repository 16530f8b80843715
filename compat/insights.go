package compat

import "fmt"

// insightCategories are the narrated categories, in output order.
// Age and location are deliberately not narrated.
var insightCategories = []struct {
	label string
	score func(CategoryScores) int
}{
	{"family values", func(s CategoryScores) int { return s.FamilyValues }},
	{"lifestyle preferences", func(s CategoryScores) int { return s.Lifestyle }},
	{"life goals", func(s CategoryScores) int { return s.EducationCareer }},
}

func insight(category string, score int) string {
	switch {
	case score > 80:
		return fmt.Sprintf("Strong alignment in %s.", category)
	case score > 50:
		return fmt.Sprintf("Moderate compatibility in %s.", category)
	default:
		return fmt.Sprintf("Differing viewpoints in %s.", category)
	}
}

// Insights returns one line per narrated category.
func Insights(s CategoryScores) []string {
	out := make([]string, 0, len(insightCategories))
	for _, c := range insightCategories {
		out = append(out, insight(c.label, c.score(s)))
	}
	return out
}
