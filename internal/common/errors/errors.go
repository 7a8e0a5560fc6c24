package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeConflict        ErrorCode = "CONFLICT"

	// Inventory errors
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
	ErrCodeEmptyInventory  ErrorCode = "EMPTY_INVENTORY"

	// Infrastructure errors
	ErrCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
	ErrCodeDeliveryFailure    ErrorCode = "DELIVERY_FAILURE"
)

// AppError is a typed application error carried across layer boundaries.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error means a missing resource.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound
}

// IsUnauthorized reports whether the error is a permission failure.
func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized
}

// IsCallerFault reports whether the error should be shown to the invoking
// caller as a transient message rather than logged as a failure.
func (e *AppError) IsCallerFault() bool {
	switch e.Code {
	case ErrCodeUnauthorized, ErrCodeInvalidArgument, ErrCodeIndexOutOfRange,
		ErrCodeEmptyInventory, ErrCodeNotFound:
		return true
	}
	return false
}

// IsInternal reports whether the error indicates a fault on our side.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodePersistenceFailure
}

// WithDetail attaches a key/value pair to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Constructors for the common cases.

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason))
}

func NewInvalidArgumentError(field, reason string) *AppError {
	return New(ErrCodeInvalidArgument, fmt.Sprintf("Invalid value for '%s': %s", field, reason)).
		WithDetail("field", field)
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewConflictError(resource, reason string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("Conflict with %s: %s", resource, reason)).
		WithDetail("resource", resource)
}

func NewIndexOutOfRangeError(index, length int) *AppError {
	return New(ErrCodeIndexOutOfRange, fmt.Sprintf("Index %d is outside [1, %d]", index, length)).
		WithDetail("index", index).
		WithDetail("length", length)
}

func NewEmptyInventoryError() *AppError {
	return New(ErrCodeEmptyInventory, "Prize inventory is empty")
}

func NewPersistenceError(operation string, err error) *AppError {
	return Wrap(err, ErrCodePersistenceFailure, fmt.Sprintf("Durable write failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewDeliveryError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDeliveryFailure, fmt.Sprintf("Delivery failed: %s", operation)).
		WithDetail("operation", operation)
}

// IsAppError reports whether err is or wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts err to an AppError when possible, unwrapping as needed.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
