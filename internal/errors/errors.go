package errors

import (
	"errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeListingFailed   ErrCode = "LISTING_FAILED"
	ErrCodeToolMissing     ErrCode = "TOOL_MISSING"
	ErrCodeUnauthenticated ErrCode = "UNAUTHENTICATED"
	ErrCodeNotFound        ErrCode = "NOT_FOUND"
	ErrCodeBadRequest      ErrCode = "BAD_REQUEST"
	ErrCodeInternal        ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewListingError wraps a failure to enumerate remote repositories
func NewListingError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeListingFailed,
		Message: message,
		Err:     err,
	}
}

// NewToolMissingError creates an error for an external tool that is not installed
func NewToolMissingError(tool, hint string) *AppError {
	return &AppError{
		Code:    ErrCodeToolMissing,
		Message: fmt.Sprintf("%s is not installed; %s", tool, hint),
	}
}

// NewUnauthenticatedError creates a new unauthenticated error
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthenticated,
		Message: message,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err, or any error it wraps, is an AppError with code
func HasCode(err error, code ErrCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// IsListingFailure checks if the error is a remote listing failure
func IsListingFailure(err error) bool {
	return HasCode(err, ErrCodeListingFailed)
}
