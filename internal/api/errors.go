package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/phrazzld/storefront-api/internal/service/auth"
	"github.com/phrazzld/storefront-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// A missing cart line is a bad request, not a missing resource: the
	// cart exists, the request names a product it does not hold.
	case errors.Is(err, store.ErrCartItemNotFound):
		return http.StatusBadRequest

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors: duplicates and referential guards
	case store.IsDuplicateError(err),
		errors.Is(err, service.ErrCartNotEmpty),
		errors.Is(err, service.ErrOrderHasItems),
		errors.Is(err, service.ErrUserHasOrders),
		errors.Is(err, service.ErrProductInOrders):
		return http.StatusConflict

	// Bad request errors
	case domain.IsValidationError(err),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrProductNotFound):
		return "Product not found"

	case errors.Is(err, store.ErrCartItemNotFound):
		return "Product not in cart"

	case errors.Is(err, store.ErrCartNotFound):
		return "Cart not found"

	case errors.Is(err, store.ErrOrderNotFound):
		return "Order not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrCartOwnerTaken):
		return "User already has a cart"

	case store.IsDuplicateError(err):
		return "Resource already exists"

	case errors.Is(err, service.ErrEmptyCart):
		return "Cart is empty"

	case errors.Is(err, service.ErrCartNotEmpty):
		return "Cart still contains items"

	case errors.Is(err, service.ErrOrderHasItems):
		return "Order still contains items"

	case errors.Is(err, service.ErrUserHasOrders):
		return "User still has orders"

	case errors.Is(err, service.ErrProductInOrders):
		return "Product is referenced by existing orders"

	// Bad request errors: domain validation messages are written for
	// users and safe to return.
	case domain.IsValidationError(err):
		return validationMessage(err)

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// validationMessage strips the generic "validation failed" prefix from a
// domain validation error, leaving the field-specific message.
func validationMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Field + " " + ve.Message
	}

	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

// RespondWithMappedError is a convenience wrapper that maps the error to
// a status code and safe message before responding.
func RespondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
