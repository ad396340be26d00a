package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors: the dataset shape does not fit the requested operation.
	ErrInput            = errors.New("invalid input")
	ErrColumnNotFound   = fmt.Errorf("%w: column not found", ErrInput)
	ErrColumnCount      = fmt.Errorf("%w: wrong column count", ErrInput)
	ErrColumnKind       = fmt.Errorf("%w: wrong column kind", ErrInput)
	ErrGroupCardinality = fmt.Errorf("%w: group must have exactly two levels", ErrInput)

	// Unsupported operations: recognized but not implemented, or an
	// enumeration value no branch handles. Never a silent no-result.
	ErrUnsupported          = errors.New("unsupported operation")
	ErrUnsupportedStatistic = fmt.Errorf("%w: statistic", ErrUnsupported)
	ErrUnsupportedNull      = fmt.Errorf("%w: null hypothesis", ErrUnsupported)

	// Metadata errors: an operation needed a declared hypothesis and none
	// was attached.
	ErrMissingMetadata = errors.New("missing null hypothesis metadata")

	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrRunNotFound      = fmt.Errorf("%w: run", ErrNotFound)
	ErrArtifactNotFound = fmt.Errorf("%w: artifact", ErrNotFound)

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Error constructors with context
func NewInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInput, reason)
}

func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

func NewColumnKindError(name, want string) error {
	return fmt.Errorf("%w: column %q must be %s", ErrColumnKind, name, want)
}

func NewUnsupportedStatisticError(stat string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedStatistic, stat)
}

func NewUnsupportedNullError(null string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedNull, null)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrInput)
}

func IsUnsupportedError(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

func IsMissingMetadataError(err error) bool {
	return errors.Is(err, ErrMissingMetadata)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrSeedMismatch) ||
		errors.Is(err, ErrHashMismatch)
}
