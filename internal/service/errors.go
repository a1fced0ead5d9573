package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConflict is the signup uniqueness failure. One combined message,
	// matching the single check over both columns.
	ErrConflict = errors.New("username or email already exists")

	// Login failures. The two cases surface distinct messages, which is a
	// user-enumeration side channel kept from the current behavior.
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidRequest is the CSRF mismatch failure. Deliberately generic so
	// the response does not reveal which check failed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound covers update/get targeting a missing or non-owned product.
	// Cross-tenant attempts must not error differently than "missing".
	ErrNotFound = errors.New("product not found")
)

// ValidationError is an input failing a field constraint. Always a single
// human-readable message; validation stops at the first failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a field-constraint failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RateLimitedError rejects a login attempt while the throttle window is
// active. RetryAfter carries the remaining wait for the user-facing message.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many login attempts, please try again in %d seconds", int(e.RetryAfter.Seconds()))
}

// IsRateLimited reports whether err is a login-throttle rejection.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}
