package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Draw errors
	ErrInvalidRange = errors.New("range must be greater than zero")
	ErrInvalidCount = errors.New("count must be greater than zero")
	ErrInvalidShape = errors.New("unsupported draw shape")

	// Seed errors
	ErrEmptySeed     = errors.New("seed is empty or degenerate")
	ErrSeedLength    = fmt.Errorf("%w: wrong length", ErrEmptySeed)
	ErrSeedExhausted = errors.New("seed source exhausted")

	// Determinism errors
	ErrHashMismatch   = errors.New("hash mismatch")
	ErrReplayMismatch = errors.New("replayed draws differ from recorded draws")

	// Validator errors
	ErrMalformedInput = errors.New("malformed input")

	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrBatchNotFound = fmt.Errorf("%w: batch", ErrNotFound)
)

// Error constructors with context
func NewInvalidRangeError(rng uint64) error {
	return fmt.Errorf("%w: got %d", ErrInvalidRange, rng)
}

func NewMalformedInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedInput, field, reason)
}

func NewBatchNotFoundError(id string) error {
	return fmt.Errorf("%w %s", ErrBatchNotFound, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRequestError reports whether err rejects a single draw request without
// affecting the session.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidCount) ||
		errors.Is(err, ErrInvalidShape)
}
