// Package compat computes deterministic compatibility verdicts between two
// matrimony profiles. It performs no I/O and never mutates its inputs, so an
// Engine may be shared freely between goroutines.
package compat

// Gender is the declared gender of a profile. The platform models exactly
// two values; see OppositeGender for how eligibility uses it.
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// FamilyValue describes a profile's family outlook.
type FamilyValue string

const (
	Traditional FamilyValue = "Traditional"
	Moderate    FamilyValue = "Moderate"
	Liberal     FamilyValue = "Liberal"
)

// FamilyType describes household structure.
type FamilyType string

const (
	Nuclear     FamilyType = "Nuclear"
	Joint       FamilyType = "Joint"
	OtherFamily FamilyType = "Other"
)

// Diet is a profile's dietary habit.
type Diet string

const (
	Veg        Diet = "Veg"
	NonVeg     Diet = "Non-Veg"
	Vegan      Diet = "Vegan"
	Eggetarian Diet = "Eggetarian"
)

// Habit is the frequency of smoking or drinking.
type Habit string

const (
	HabitNo         Habit = "No"
	HabitOccasional Habit = "Occasional"
	HabitYes        Habit = "Yes"
)

type Location struct {
	City    string `json:"city" yaml:"city" validate:"required"`
	State   string `json:"state" yaml:"state" validate:"required"`
	Country string `json:"country" yaml:"country" validate:"required"`
}

type Education struct {
	Degree string `json:"degree" yaml:"degree" validate:"required"`
	Field  string `json:"field,omitempty" yaml:"field"`
}

type Career struct {
	JobTitle    string `json:"job_title,omitempty" yaml:"job_title"`
	IncomeRange string `json:"income_range,omitempty" yaml:"income_range"`
}

type Lifestyle struct {
	Diet     Diet  `json:"diet" yaml:"diet" validate:"required,oneof=Veg Non-Veg Vegan Eggetarian"`
	Smoking  Habit `json:"smoking" yaml:"smoking" validate:"required,oneof=No Occasional Yes"`
	Drinking Habit `json:"drinking" yaml:"drinking" validate:"required,oneof=No Occasional Yes"`
}

type Family struct {
	Type   FamilyType  `json:"type,omitempty" yaml:"type" validate:"omitempty,oneof=Nuclear Joint Other"`
	Values FamilyValue `json:"values" yaml:"values" validate:"required,oneof=Traditional Moderate Liberal"`
}

// AgeRange is an inclusive range of acceptable partner ages.
type AgeRange struct {
	Min int `json:"min" yaml:"min" validate:"gte=0"`
	Max int `json:"max" yaml:"max" validate:"gtefield=Min"`
}

// Contains reports whether age lies within the range.
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Distance returns how many years age lies outside the range, 0 when inside.
func (r AgeRange) Distance(age int) int {
	if r.Contains(age) {
		return 0
	}
	return min(abs(age-r.Min), abs(age-r.Max))
}

// Preferences are optional partner preferences. Only AgeRange currently
// influences scoring; the lists are carried for display and filtering.
type Preferences struct {
	AgeRange              *AgeRange     `json:"age_range,omitempty" yaml:"age_range" validate:"omitempty"`
	PreferredLocations    []string      `json:"preferred_locations,omitempty" yaml:"preferred_locations"`
	PreferredEducation    []string      `json:"preferred_education,omitempty" yaml:"preferred_education"`
	PreferredDiet         []Diet        `json:"preferred_diet,omitempty" yaml:"preferred_diet" validate:"omitempty,dive,oneof=Veg Non-Veg Vegan Eggetarian"`
	PreferredFamilyValues []FamilyValue `json:"preferred_family_values,omitempty" yaml:"preferred_family_values" validate:"omitempty,dive,oneof=Traditional Moderate Liberal"`
}

// Profile is the read-only input record for one candidate.
type Profile struct {
	ID          string       `json:"id" yaml:"id" validate:"required"`
	Name        string       `json:"name,omitempty" yaml:"name"`
	Gender      Gender       `json:"gender" yaml:"gender" validate:"required,oneof=Male Female"`
	Age         int          `json:"age" yaml:"age" validate:"gte=18,lte=120"`
	Location    Location     `json:"location" yaml:"location"`
	Education   Education    `json:"education" yaml:"education"`
	Career      Career       `json:"career" yaml:"career"`
	Lifestyle   Lifestyle    `json:"lifestyle" yaml:"lifestyle"`
	Family      Family       `json:"family" yaml:"family"`
	Preferences *Preferences `json:"preferences,omitempty" yaml:"preferences" validate:"omitempty"`
}

// ageRange returns the declared age preference, if any.
func (p *Profile) ageRange() (AgeRange, bool) {
	if p.Preferences == nil || p.Preferences.AgeRange == nil {
		return AgeRange{}, false
	}
	return *p.Preferences.AgeRange, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
