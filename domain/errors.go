package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeInvalid        ErrorCode = "INVALID"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodePasswordNotSet ErrorCode = "PASSWORD_NOT_SET"
	ErrCodeInternal       ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Storage-level errors.
var (
	ErrUserNotFound    = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound    = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized    = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")
)

// ErrValidation is the root of every input validation failure. Concrete
// failures are built with Invalid and match it through errors.Is.
var ErrValidation = NewError(ErrCodeInvalid, "validation failed")

// Authentication errors.
var (
	ErrEmailTaken               = NewError(ErrCodeConflict, "user with this email already exists")
	ErrInvalidCredentials       = NewError(ErrCodeUnauthorized, "invalid email or password")
	ErrNoPasswordSet            = NewError(ErrCodePasswordNotSet, "account registered with a social provider, please use social login")
	ErrInvalidAuthorizationCode = NewError(ErrCodeUnauthorized, "invalid authorization code")
	ErrUnsupportedProvider      = NewError(ErrCodeInvalid, "unsupported oauth provider")
	ErrIdentityConflict         = NewError(ErrCodeConflict, "external identity already linked")
)

// ErrTaskNotFoundOrForbidden is returned for missing tasks and for tasks
// owned by another user alike.
var ErrTaskNotFoundOrForbidden = NewError(ErrCodeNotFound, "task not found or access denied")

// Invalid returns a validation error describing the offending field.
func Invalid(field, reason string) *Error {
	return WrapError(ErrCodeInvalid, fmt.Sprintf("%s: %s", field, reason), ErrValidation)
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
