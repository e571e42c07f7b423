package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a minit error code.
type ErrorCode string

const (
	ErrAmbiguousAddressing ErrorCode = "AMBIGUOUS_ADDRESSING" // 400
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrFileNotFound        ErrorCode = "FILE_NOT_FOUND"       // 404
	ErrRecordTooLarge      ErrorCode = "RECORD_TOO_LARGE"     // 413
	ErrCancelled           ErrorCode = "CANCELLED"            // 499
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// MinitError represents a structured error with code, status, and details.
type MinitError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *MinitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAmbiguousAddressing creates a 400 error for when both id and siri are provided.
func NewAmbiguousAddressing() *MinitError {
	return &MinitError{
		Code:    ErrAmbiguousAddressing,
		Status:  400,
		Message: "cannot specify both id and siri; use one addressing mode",
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *MinitError {
	return &MinitError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a meeting cannot be found.
func NewNotFound(identifier string) *MinitError {
	return &MinitError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("meeting not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing input file.
func NewFileNotFound(path string) *MinitError {
	return &MinitError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewRecordTooLarge creates a 413 error when a record exceeds the size limit.
func NewRecordTooLarge(max, actual int) *MinitError {
	return &MinitError{
		Code:    ErrRecordTooLarge,
		Status:  413,
		Message: fmt.Sprintf("record exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewCancelled creates a 499 error for a cancelled request.
func NewCancelled(op string) *MinitError {
	return &MinitError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *MinitError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &MinitError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err, or any error it wraps, is a MinitError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MinitError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}
