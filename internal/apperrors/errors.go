package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks
// (unbalanced entry, negative total, out-of-tolerance match, etc.).
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrState indicates an operation that is illegal in the document's current
// lifecycle state, e.g. deleting a finalized invoice.
var ErrState = errors.New("operation not allowed in current state")

// ErrPeriodClosed indicates a posting dated into a closed accounting period.
var ErrPeriodClosed = errors.New("accounting period is closed")

// ErrConflict indicates a concurrent-write conflict. Operations failing with
// ErrConflict are safe to retry thanks to idempotency keys.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrForbidden indicates the caller lacks the required role for the company.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates a missing or invalid credential.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower-level error with a code and message for transport layers.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// IsRetryable reports whether the error represents a transient conflict that
// the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
