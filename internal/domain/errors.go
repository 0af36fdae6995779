// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrDiscountOutOfRange is returned when a discount percentage is
	// outside the inclusive [0, 100] range.
	ErrDiscountOutOfRange = fmt.Errorf("%w: discount percentage must be between 0 and 100", ErrValidation)

	// ErrNoDiscountTargets is returned when a discount is applied to an
	// empty list of product IDs.
	ErrNoDiscountTargets = fmt.Errorf("%w: no products provided for discount", ErrValidation)
)

// ValidationError carries the field and reason for a failed validation.
// It wraps ErrValidation (or a more specific sentinel) so callers can use
// errors.Is to detect validation failures generically.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsValidationError reports whether err is any kind of validation failure:
// a ValidationError, ErrValidation, or one of the entity-specific
// validation sentinels that wrap it.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrValidation)
}
