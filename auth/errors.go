package auth

import (
	"errors"
	"fmt"
)

// Kind classifies expected failures so callers can branch without matching
// message text.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication"
)

// Sentinel errors for use with errors.Is.
var (
	ErrFieldsRequired   = errors.New("all fields are required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("email is already registered")

	// ErrInvalidCredentials reads the same for an unknown email and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Error is the structured failure returned by Store operations. Expected
// failures are values the caller branches on, never panics.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an auth failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
