package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors
	ErrShapeMismatch      = errors.New("sample shape mismatch")
	ErrTooFewObservations = errors.New("fewer than 2 observations in a group")
	ErrInvalidTail        = errors.New("tail must be -1, 0 or +1")
	ErrInvalidPermutation = errors.New("permutation count must be positive")
	ErrAdjacencySize      = errors.New("adjacency size does not match data shape")
	ErrInvalidThreshold   = errors.New("invalid cluster-forming threshold")
	ErrEmptyGroup         = errors.New("group contains no observations")

	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")
)

// Error constructors with context
func NewShapeError(want, got []int) error {
	return fmt.Errorf("%w: want %v, got %v", ErrShapeMismatch, want, got)
}

func NewAdjacencyError(wantLocations, gotLocations int) error {
	return fmt.Errorf("%w: data has %d locations, adjacency covers %d",
		ErrAdjacencySize, wantLocations, gotLocations)
}

func NewTailError(tail int) error {
	return fmt.Errorf("%w: got %d", ErrInvalidTail, tail)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrTooFewObservations) ||
		errors.Is(err, ErrInvalidTail) ||
		errors.Is(err, ErrInvalidPermutation) ||
		errors.Is(err, ErrAdjacencySize) ||
		errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrEmptyGroup)
}
