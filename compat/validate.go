package compat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrIneligible is returned when the eligibility policy rejects a pair.
	// It is an expected outcome, not a failure: callers skip the candidate.
	ErrIneligible = errors.New("compat: ineligible pairing")

	// ErrInvalidProfile wraps every validation failure.
	ErrInvalidProfile = errors.New("compat: invalid profile")

	// ErrInvalidWeights is returned by Evaluate when the engine's weights
	// are negative or do not sum to 1.0.
	ErrInvalidWeights = errors.New("compat: invalid weights")
)

// validator.Validate caches struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateProfile checks that p carries every field the scorers read.
// The returned error wraps ErrInvalidProfile and lists the offending fields.
func ValidateProfile(p *Profile) error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", ErrInvalidProfile)
	}
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// Profile.Location.City -> location.city
		ns := strings.TrimPrefix(fe.Namespace(), "Profile.")
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(ns), fe.Tag()))
	}
	return fmt.Errorf("%w %q: %s", ErrInvalidProfile, p.ID, strings.Join(fields, ", "))
}
