package types

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every input validation failure. Callers
// test with errors.Is(err, ErrValidation) or against a specific sentinel.
var ErrValidation = errors.New("validation failed")

// Validation errors. Each wraps ErrValidation.
var (
	ErrInvalidTitle      = fmt.Errorf("%w: title must not be blank", ErrValidation)
	ErrInvalidPriority   = fmt.Errorf("%w: priority must be between 1 and 4", ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("%w: unknown status", ErrValidation)
	ErrInvalidEffort     = fmt.Errorf("%w: effort minutes must not be negative", ErrValidation)
	ErrInvalidName       = fmt.Errorf("%w: name must not be blank", ErrValidation)
	ErrInvalidDueAt      = fmt.Errorf("%w: due time must be positive", ErrValidation)
	ErrInvalidSnooze     = fmt.Errorf("%w: snooze minutes must be positive", ErrValidation)
	ErrInvalidHorizon    = fmt.Errorf("%w: horizon must not be negative", ErrValidation)
	ErrInvalidAttachment = fmt.Errorf("%w: invalid attachment", ErrValidation)
	ErrInvalidKey        = fmt.Errorf("%w: key must not be blank", ErrValidation)
)

// Conflict errors.
var (
	ErrDuplicateName = errors.New("name already exists")
)

// StorageError reports a failed store operation. Statement is the SQL that
// failed when one is known.
type StorageError struct {
	Op        string
	Statement string
	Err       error
}

func (e *StorageError) Error() string {
	if e.Statement != "" {
		return fmt.Sprintf("%s: %v (statement: %s)", e.Op, e.Err, e.Statement)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err carries a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
