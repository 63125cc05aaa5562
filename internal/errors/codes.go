package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents internal error codes for engine operations.
// The matrix core itself is infallible; these codes exist for the
// boundary layers (validation, HTTP handlers, config).
type ErrorCode int

const (
	// Success
	ErrCodeOK ErrorCode = 0

	// Client errors (4xx equivalent)
	ErrCodeInvalidArgument    ErrorCode = 1000
	ErrCodePositionNotFound   ErrorCode = 1001
	ErrCodePositionOutOfRange ErrorCode = 1002
	ErrCodeInvalidAttribute   ErrorCode = 1003
	ErrCodeInvalidEntropy     ErrorCode = 1004
	ErrCodeSnapshotNotFound   ErrorCode = 1005

	// Server errors (5xx equivalent)
	ErrCodeInternal          ErrorCode = 2000
	ErrCodeUnavailable       ErrorCode = 2001
	ErrCodeResourceExhausted ErrorCode = 2002
)

// EngineError represents a structured error with code and context.
type EngineError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps internal error codes to HTTP status codes.
func (e *EngineError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeOK:
		return http.StatusOK
	case ErrCodeInvalidArgument, ErrCodePositionOutOfRange,
		ErrCodeInvalidAttribute, ErrCodeInvalidEntropy:
		return http.StatusBadRequest
	case ErrCodePositionNotFound, ErrCodeSnapshotNotFound:
		return http.StatusNotFound
	case ErrCodeResourceExhausted:
		return http.StatusTooManyRequests
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewEngineError creates a new EngineError.
func NewEngineError(code ErrorCode, message string, cause error) *EngineError {
	return &EngineError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Cause:   cause,
	}
}

// WithDetail adds a detail to the error.
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// Convenience constructors for common errors

func InvalidArgument(message string, cause error) *EngineError {
	return NewEngineError(ErrCodeInvalidArgument, message, cause)
}

func PositionNotFound(position int) *EngineError {
	return NewEngineError(ErrCodePositionNotFound, fmt.Sprintf("position not found: %d", position), nil).
		WithDetail("position", position)
}

func PositionOutOfRange(position, size int) *EngineError {
	return NewEngineError(ErrCodePositionOutOfRange, fmt.Sprintf("position %d outside key space [0, %d)", position, size), nil).
		WithDetail("position", position).
		WithDetail("size", size)
}

func InvalidAttribute(name, reason string) *EngineError {
	return NewEngineError(ErrCodeInvalidAttribute, fmt.Sprintf("invalid attribute '%s': %s", name, reason), nil).
		WithDetail("attribute", name).
		WithDetail("reason", reason)
}

func InvalidEntropy(entropy float64, reason string) *EngineError {
	return NewEngineError(ErrCodeInvalidEntropy, fmt.Sprintf("invalid entropy %v: %s", entropy, reason), nil).
		WithDetail("entropy", entropy).
		WithDetail("reason", reason)
}

func SnapshotNotFound(version uint64) *EngineError {
	return NewEngineError(ErrCodeSnapshotNotFound, fmt.Sprintf("snapshot not found: version %d", version), nil).
		WithDetail("version", version)
}

func InternalError(message string, cause error) *EngineError {
	return NewEngineError(ErrCodeInternal, message, cause)
}

func Unavailable(message string, cause error) *EngineError {
	return NewEngineError(ErrCodeUnavailable, message, cause)
}

func ResourceExhausted(resource string, current, limit int) *EngineError {
	return NewEngineError(ErrCodeResourceExhausted, fmt.Sprintf("%s exhausted: %d/%d", resource, current, limit), nil).
		WithDetail("resource", resource).
		WithDetail("current", current).
		WithDetail("limit", limit)
}

// IsEngineError checks if an error is an EngineError.
func IsEngineError(err error) bool {
	_, ok := err.(*EngineError)
	return ok
}

// GetCode extracts the error code from an error.
func GetCode(err error) ErrorCode {
	if ee, ok := err.(*EngineError); ok {
		return ee.Code
	}
	return ErrCodeInternal
}
