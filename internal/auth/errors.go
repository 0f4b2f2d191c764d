package auth

import (
	"errors"
	"fmt"
)

// Coarse-grained error kinds crossing the package boundary. Lower-level
// failures (store, codec) are logged with full detail and mapped onto one
// of these before being returned; callers never see raw driver or JWT
// errors.
var (
	// ErrNoActiveAccount covers unresolved credentials, wrong passwords
	// and every failed eligibility check during login and refresh. The
	// conflation is deliberate: a caller cannot tell "unknown account"
	// from "correct password, ineligible account".
	ErrNoActiveAccount = errors.New("no active account")

	// ErrInvalidToken is a session token that fails signature, structure
	// or expiry checks.
	ErrInvalidToken = errors.New("token is expired or invalid")

	// ErrInvalidUser is a session token that verifies but whose subject
	// cannot be resolved to a usable identity. Distinct from
	// ErrInvalidToken so audit logs and clients can tell "log in again"
	// from "account problem".
	ErrInvalidUser = errors.New("unauthorized user")

	// ErrTokenStale is a refresh token that verifies cryptographically
	// but does not match the persisted value, i.e. it has been rotated
	// out or superseded by a newer login.
	ErrTokenStale = errors.New("token is invalid or expired")

	// ErrValidation marks field-level rejections. Use Validationf to
	// attach the user-facing message.
	ErrValidation = errors.New("validation failed")
)

// Validationf wraps ErrValidation with a user-facing message so callers
// can both match the kind with errors.Is and surface the text.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// ValidationMessage extracts the message part of an ErrValidation error.
// For any other error it returns the empty string.
func ValidationMessage(err error) string {
	if err == nil || !errors.Is(err, ErrValidation) {
		return ""
	}
	msg := err.Error()
	prefix := ErrValidation.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
