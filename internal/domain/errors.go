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
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeRetrieval        = "RETRIEVAL_ERROR"
	ErrCodeCompletion       = "COMPLETION_ERROR"
	ErrCodeAllocation       = "ALLOCATION_ERROR"
)

// Validation errors
var (
	ErrUnsupportedFileKind = NewDomainError(ErrCodeValidation, "unsupported file format")
	ErrMissingFilename     = NewDomainError(ErrCodeValidation, "filename is missing")
	ErrEmptyQuery          = NewDomainError(ErrCodeValidation, "query must not be empty")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Infrastructure errors. Retrieval failures always propagate to the
// caller; completion failures degrade per unit of work instead.
var (
	ErrRetrievalUnavailable  = NewDomainError(ErrCodeRetrieval, "similarity search unavailable")
	ErrCompletionUnavailable = NewDomainError(ErrCodeCompletion, "completion backend unavailable")
	ErrAllocationFailed      = NewDomainError(ErrCodeAllocation, "failed to persist issued document number")
)

// NewRetrievalError wraps an index/search failure for propagation
func NewRetrievalError(op string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeRetrieval, fmt.Sprintf("retrieval %s failed", op), err)
}
