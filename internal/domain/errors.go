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

// Is matches domain errors by code and message so sentinel comparisons work
// across wrapped instances carrying different causes.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code && t.Message == e.Message
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
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeGeneration    = "GENERATION_ERROR"
	ErrCodeRetrieval     = "RETRIEVAL_ERROR"
	ErrCodeHistoryStore  = "HISTORY_STORE_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuery         = NewDomainError(ErrCodeValidation, "query cannot be empty")
	ErrMissingTenant      = NewDomainError(ErrCodeValidation, "tenant id cannot be empty")
	ErrMissingAgent       = NewDomainError(ErrCodeValidation, "agent id cannot be empty")
	ErrMissingSession     = NewDomainError(ErrCodeValidation, "session id cannot be empty")
	ErrInvalidMessageRole = NewDomainError(ErrCodeValidation, "invalid conversation message role")
)

// ErrGenerationFailed is the only failure class surfaced to callers of the
// query pipeline: the completion service errored or timed out, so no answer
// can be produced. Retrieval, condensation, and history failures degrade
// silently instead.
var ErrGenerationFailed = NewDomainError(ErrCodeGeneration, "failed to generate response")

// ErrHistoryNotFound is returned by cache adapters when no value exists for a
// conversation key. The store treats it as an empty history, never a failure.
var ErrHistoryNotFound = NewDomainError(ErrCodeNotFound, "conversation history not found")
