package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token cannot be trusted for any reason:
	// malformed, wrong signature or algorithm, expired, or not yet valid.
	// Every verification failure wraps it.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired. It is always wrapped
	// together with ErrInvalidToken.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrInvalidCredentials indicates a username/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrPasswordTooLong indicates the password exceeds bcrypt's 72 byte input limit.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)
