package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store. The entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second record with the same ID).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails a database-level
	// constraint (foreign key, check, not-null). Check the wrapped error
	// for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrProductNotFound indicates that the requested product does not exist in the store.
	ErrProductNotFound = fmt.Errorf("%w: product", ErrNotFound)

	// ErrCartNotFound indicates that the requested cart does not exist in the store.
	ErrCartNotFound = fmt.Errorf("%w: cart", ErrNotFound)

	// ErrCartItemNotFound indicates that no matching line exists in the cart.
	ErrCartItemNotFound = fmt.Errorf("%w: cart item", ErrNotFound)

	// ErrOrderNotFound indicates that the requested order does not exist in the store.
	ErrOrderNotFound = fmt.Errorf("%w: order", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrUserExists indicates that a user with the given ID already exists.
	ErrUserExists = fmt.Errorf("%w: user ID", ErrDuplicate)

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrProductExists indicates that a product with the given ID already exists.
	ErrProductExists = fmt.Errorf("%w: product ID", ErrDuplicate)

	// ErrCartExists indicates that a cart with the given ID already exists.
	ErrCartExists = fmt.Errorf("%w: cart ID", ErrDuplicate)

	// ErrCartOwnerTaken indicates that the user already owns a cart.
	// One cart per user is a schema-level invariant.
	ErrCartOwnerTaken = fmt.Errorf("%w: user already has a cart", ErrDuplicate)

	// ErrOrderExists indicates that an order with the given ID already exists.
	ErrOrderExists = fmt.Errorf("%w: order ID", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "cart")
	Operation string // The operation that failed (e.g., "create", "delete")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
