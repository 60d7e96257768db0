package domain

import "fmt"

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

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeAuthentication   = "AUTHENTICATION_ERROR"
	ErrCodeUpstreamAPI      = "UPSTREAM_API_ERROR"
	ErrCodeEmptySnapshot    = "EMPTY_SNAPSHOT"
	ErrCodeIndexBuild       = "INDEX_BUILD_ERROR"
	ErrCodeIndexNotReady    = "INDEX_NOT_READY"
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Startup-phase errors. All of these are fatal: the process must not serve
// queries with a partially built or absent index.
var (
	ErrAuthenticationFailed = NewDomainError(ErrCodeAuthentication, "ticketing system rejected token exchange")
	ErrUpstreamAPI          = NewDomainError(ErrCodeUpstreamAPI, "ticketing system request failed")
	ErrMalformedPayload     = NewDomainError(ErrCodeUpstreamAPI, "ticketing system returned malformed payload")
	ErrEmptySnapshot        = NewDomainError(ErrCodeEmptySnapshot, "snapshot contains no records")
	ErrIndexBuild           = NewDomainError(ErrCodeIndexBuild, "failed to build vector index")
)

// Serving and per-query errors. Per-query failures are recovered locally by
// the pipeline and surfaced as structured, user-facing messages.
var (
	ErrIndexNotReady = NewDomainError(ErrCodeIndexNotReady, "index not ready")
	ErrInvalidToken  = NewDomainError(ErrCodeUnauthorized, "invalid admin token")
)

// Validation errors
var (
	ErrSchemaMismatch   = NewDomainError(ErrCodeValidation, "record field set differs from snapshot schema")
	ErrInvalidGenConfig = NewDomainError(ErrCodeValidation, "invalid generation config")
)
