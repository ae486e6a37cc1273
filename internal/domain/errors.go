package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError with the same code and message, so wrapped
// sentinels still compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// AsDomainError unwraps err to the first DomainError in its chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
)

// Validation errors
var (
	ErrInvalidQuery       = NewDomainError(ErrCodeValidation, "query is required")
	ErrInvalidID          = NewDomainError(ErrCodeValidation, "invalid id")
	ErrInvalidLimit       = NewDomainError(ErrCodeValidation, "invalid limit")
	ErrInvalidCorpus      = NewDomainError(ErrCodeValidation, "invalid corpus file")
	ErrInvalidCursor      = NewDomainError(ErrCodeValidation, "invalid cursor")
	ErrMissingTopic       = NewDomainError(ErrCodeValidation, "topic or keywords are required")
	ErrMissingProjectType = NewDomainError(ErrCodeValidation, "projectType is required")
	ErrInvalidProjectSize = NewDomainError(ErrCodeValidation, "size must be small, medium or large")
)

// Not found errors
var (
	ErrStandardNotFound = NewDomainError(ErrCodeNotFound, "standard not found")
	ErrSectionNotFound  = NewDomainError(ErrCodeNotFound, "section not found")
	ErrTopicNotFound    = NewDomainError(ErrCodeNotFound, "topic not found")
)

// Authorization errors
var (
	ErrInvalidAdminKey = NewDomainError(ErrCodeUnauthorized, "invalid admin key")
)

// Availability errors
var (
	ErrSeedingNotConfigured = NewDomainError(ErrCodeUnavailable, "corpus seeding not configured")
	ErrStorageNotConfigured = NewDomainError(ErrCodeUnavailable, "object storage not configured")
)
