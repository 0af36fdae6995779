// Package auth provides password hashing and JWT token management for
// authenticating storefront users.
package auth

import "errors"

// Authentication errors returned by the auth package. The API layer maps
// these onto 401 responses without exposing which check failed.
var (
	// ErrInvalidCredentials indicates the email/password pair did not
	// match a registered user.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a token that is malformed, carries a bad
	// signature, or otherwise failed validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates a token whose expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrMissingToken indicates a request that carried no token at all.
	ErrMissingToken = errors.New("missing token")
)
