package models

import (
	"errors"
	"net/http"
)

// Kind classifies an Error into one of the API failure categories.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

// Status maps the kind onto its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error surfaced to API callers. Message is safe to
// show; Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrMissingFields      = &Error{Kind: KindValidation, Code: "MissingFields", Message: "all fields are required"}
	ErrMissingCredentials = &Error{Kind: KindValidation, Code: "MissingFields", Message: "email and password are required"}
	ErrPasswordTooLong    = &Error{Kind: KindValidation, Code: "PasswordTooLong", Message: "password must be at most 72 bytes"}
	ErrInvalidRole        = &Error{Kind: KindValidation, Code: "InvalidRole", Message: "role must be user or admin"}
	ErrSelfDeletion       = &Error{Kind: KindValidation, Code: "SelfDeletion", Message: "cannot delete yourself"}
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Code: "InvalidCredentials", Message: "invalid email or password"}
	ErrAuthRequired       = &Error{Kind: KindAuthentication, Code: "AuthenticationRequired", Message: "authentication required"}
	ErrInvalidSession     = &Error{Kind: KindAuthentication, Code: "InvalidSession", Message: "invalid or expired session"}
	ErrForbidden          = &Error{Kind: KindAuthorization, Code: "Forbidden", Message: "elevated privileges required"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Code: "NotFound", Message: "user not found"}
	ErrDuplicateEmail     = &Error{Kind: KindConflict, Code: "DuplicateEmail", Message: "email already registered"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Code: "EmailTaken", Message: "email already in use"}
)

// Internal wraps an unexpected failure. The cause never reaches the caller.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "Internal", Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, treating anything that is not an *Error
// as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
