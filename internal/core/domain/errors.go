package domain

import (
	"errors"
	"fmt"
)

// Token verification failures. All of them surface as 401 "unauthorized".
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrExpiredToken     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Authentication and authorization failures.
var (
	ErrUnknownSubject     = errors.New("unknown token subject")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInsufficientRole   = errors.New("insufficient role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Registration conflicts, reported in this order.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// ErrPasswordTooLong is returned when a password exceeds what the hasher can
// take (72 bytes for bcrypt).
var ErrPasswordTooLong = errors.New("password too long")

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrProductNotFound  = errors.New("product not found")
)

// FlowError marks an unexpected downstream failure (storage, hashing, signing)
// inside an auth flow. It is reported as "<flow> failed" and never as an
// empty response.
type FlowError struct {
	Flow string
	Err  error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Flow, e.Err)
}

func (e *FlowError) Unwrap() error { return e.Err }

// IsTokenError reports whether err is one of the token verification failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrInvalidSignature)
}
