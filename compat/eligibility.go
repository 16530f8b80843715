package compat

// EligibilityPolicy decides whether two profiles may be scored at all.
// Implementations must be pure.
type EligibilityPolicy func(subject, candidate *Profile) bool

// OppositeGender is the platform's current matching rule: only pairs with
// different declared genders are scored. It mirrors the binary gender model
// of Profile and offers no path for users outside it; that is a product
// policy gap, kept as-is until the policy itself changes.
func OppositeGender(subject, candidate *Profile) bool {
	return subject.Gender != candidate.Gender
}
