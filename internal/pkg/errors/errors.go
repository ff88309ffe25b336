// Package errors provides the structured error taxonomy shared by the domain,
// the document store and the HTTP boundary.
//
// Every AppError carries a kind sentinel (ErrBusinessRule, ErrNotFound,
// ErrAlreadyExists, ...) so callers branch with errors.Is, independent of the
// machine-readable Code and of any wrapped cause.
//
// Import Path: vmigrate.io/vmigrate/internal/pkg/errors
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds.
var (
	ErrBusinessRule  = errors.New("business rule violation")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)

// AppError is a structured application error with HTTP status and error code.
type AppError struct {
	// Code is a machine-readable error code (e.g., "WORKLOAD_NOT_FOUND").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// HTTPStatus is the corresponding HTTP status code.
	HTTPStatus int `json:"-"`

	// Params carries structured context (ids, field names) for the caller.
	Params map[string]interface{} `json:"params,omitempty"`

	// Err is the wrapped underlying cause.
	Err error `json:"-"`

	kind error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind sentinel of e.
func (e *AppError) Is(target error) bool {
	return e.kind != nil && target == e.kind
}

func newKind(kind error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		kind:       kind,
	}
}

// WithCause attaches an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return e
	}
	e.Err = err
	return e
}

// WithParams attaches structured parameters to the error.
func (e *AppError) WithParams(params map[string]interface{}) *AppError {
	if e == nil || len(params) == 0 {
		return e
	}
	e.Params = params
	return e
}

// BusinessRule creates a validation/business-rule error (422).
func BusinessRule(code, message string) *AppError {
	return newKind(ErrBusinessRule, code, message, http.StatusUnprocessableEntity)
}

// BusinessRulef is BusinessRule with a formatted message.
func BusinessRulef(code, format string, args ...interface{}) *AppError {
	return BusinessRule(code, fmt.Sprintf(format, args...))
}

// NotFound creates a 404 error.
func NotFound(code, message string) *AppError {
	return newKind(ErrNotFound, code, message, http.StatusNotFound)
}

// Duplicate creates a uniqueness violation error (409).
func Duplicate(code, message string) *AppError {
	return newKind(ErrAlreadyExists, code, message, http.StatusConflict)
}

// BadRequest creates a 400 error for malformed input at the boundary.
func BadRequest(code, message string) *AppError {
	return newKind(ErrBadRequest, code, message, http.StatusBadRequest)
}

// Internal creates a 500 error.
func Internal(code, message string) *AppError {
	return newKind(ErrInternal, code, message, http.StatusInternalServerError)
}

// IsAppError checks if an error is an AppError and returns it.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsBusinessRule reports whether err is a validation/business-rule violation.
func IsBusinessRule(err error) bool { return errors.Is(err, ErrBusinessRule) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicate reports whether err is a uniqueness violation.
func IsDuplicate(err error) bool { return errors.Is(err, ErrAlreadyExists) }
