package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrNonFinite        = errors.New("non-finite value in input data")
	ErrZeroVariance     = errors.New("input data has zero variance")

	// Parameter validation errors
	ErrInvalidCredibleMass = errors.New("credible mass must be in (0, 1)")
	ErrInvalidGroupID      = errors.New("invalid group id for this analysis")

	// Trace errors
	ErrUnknownVariable = errors.New("unknown posterior variable")
	ErrEmptyTrace      = errors.New("trace contains no samples")
)

// Error constructors with context
func NewInsufficientDataError(group string, n int) error {
	return fmt.Errorf("%w: %s has %d values, need at least 2", ErrInsufficientData, group, n)
}

func NewNonFiniteError(group string, index int) error {
	return fmt.Errorf("%w: %s at index %d", ErrNonFinite, group, index)
}

func NewGroupIDError(id, numGroups int) error {
	return fmt.Errorf("%w: got %d, analysis has %d group(s)", ErrInvalidGroupID, id, numGroups)
}

func NewUnknownVariableError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrNonFinite) ||
		errors.Is(err, ErrZeroVariance) ||
		errors.Is(err, ErrInvalidCredibleMass) ||
		errors.Is(err, ErrInvalidGroupID)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUnknownVariable)
}
