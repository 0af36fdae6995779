package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/storefront-api/internal/domain"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrEmptyCart indicates a checkout was attempted against a cart with
	// no lines. Checking out nothing is a request problem, so this wraps
	// the validation sentinel and maps to HTTP 400.
	ErrEmptyCart = fmt.Errorf("%w: cart is empty", domain.ErrValidation)

	// ErrCartNotEmpty indicates a cart deletion was attempted while the
	// cart still has lines. API layer should map this to HTTP 409 Conflict.
	ErrCartNotEmpty = errors.New("cart still contains items")

	// ErrOrderHasItems indicates an order deletion was attempted against
	// an order whose snapshot is not empty. Orders with items are closed
	// historical records. API layer should map this to HTTP 409 Conflict.
	ErrOrderHasItems = errors.New("order still contains items")

	// ErrUserHasOrders indicates a user deletion was attempted while the
	// user still has orders. API layer should map this to HTTP 409 Conflict.
	ErrUserHasOrders = errors.New("user still has orders")

	// ErrProductInOrders indicates a product deletion was attempted while
	// order snapshots still reference the product. API layer should map
	// this to HTTP 409 Conflict.
	ErrProductInOrders = errors.New("product is referenced by existing orders")
)
