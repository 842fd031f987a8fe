// Package apperror defines the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindAlreadyExists
	KindInvalidOperation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidOperation:
		return "invalid_operation"
	default:
		return "unexpected"
	}
}

// Error is an error with a client-facing message and a kind
type Error struct {
	Kind    Kind
	Message string
	Detail  string // optional client-visible detail, e.g. field errors
	Err     error  // underlying cause, server-log only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationDetail is Validation with extra detail shown to the client
func ValidationDetail(msg, detail string) error {
	return &Error{Kind: KindValidation, Message: msg, Detail: detail}
}

// Auth reports a missing or invalid credential
func Auth(msg string) error {
	return &Error{Kind: KindAuth, Message: msg}
}

// Forbidden reports an authenticated caller acting on a resource it does not own
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound reports a referenced entity that does not exist
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// AlreadyExists reports a duplicate relationship or identity
func AlreadyExists(msg string) error {
	return &Error{Kind: KindAlreadyExists, Message: msg}
}

// InvalidOperation reports a business rule violation such as self-follow
func InvalidOperation(msg string) error {
	return &Error{Kind: KindInvalidOperation, Message: msg}
}

// Unexpected wraps an infrastructure failure
func Unexpected(err error) error {
	return &Error{Kind: KindUnexpected, Message: "Server error", Err: err}
}

// KindOf returns the kind of err, KindUnexpected when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps a kind to its HTTP status code
func Status(kind Kind) int {
	switch kind {
	case KindValidation, KindAlreadyExists, KindInvalidOperation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
