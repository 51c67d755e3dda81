package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a promptvar error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrInvalidState   ErrorCode = "INVALID_STATE"   // 409 (stale selection, session misuse)
	ErrStorage        ErrorCode = "STORAGE"         // 500 (persistence read/write failure)
	ErrRemote         ErrorCode = "REMOTE"          // 502 (backend API failure)
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewInvalidRequest creates a 400 error for invalid parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing variable or entry.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInvalidState creates a 409 error for session misuse, such as confirming
// without a selection or selecting an occurrence from a stale parse.
func NewInvalidState(msg string) *Error {
	return &Error{
		Code:    ErrInvalidState,
		Status:  409,
		Message: msg,
	}
}

// NewStorage creates a 500 error for a persistence failure. The underlying
// adapter error is retained as the cause; callers never observe partial writes.
func NewStorage(op string, err error) *Error {
	msg := fmt.Sprintf("storage %s failed", op)
	if err != nil {
		msg = fmt.Sprintf("storage %s failed: %v", op, err)
	}
	return &Error{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
		Details: map[string]any{"op": op},
		Cause:   err,
	}
}

// NewRemote creates a 502 error for a backend API failure.
func NewRemote(msg string, err error) *Error {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{
		Code:    ErrRemote,
		Status:  502,
		Message: msg,
		Cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// Is reports whether err (or any error it wraps) is an Error with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *Error
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}
