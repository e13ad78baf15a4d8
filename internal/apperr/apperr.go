// Package apperr defines the error kinds surfaced by the service layer.
package apperr

import "errors"

// Error kinds
var (
	ErrNotFound            = errors.New("not_found")
	ErrBadRequest          = errors.New("bad_request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConstraintViolation = errors.New("constraint_violation")
	ErrConflict            = errors.New("conflict")
	ErrInternal            = errors.New("internal_error")
)

// Error is a classified error with a client-safe message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func BadRequest(msg string) error {
	return &Error{Kind: ErrBadRequest, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func ConstraintViolation(msg string) error {
	return &Error{Kind: ErrConstraintViolation, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// As extracts the classified error from err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
