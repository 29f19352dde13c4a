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
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidConfig       = "INVALID_CONFIGURATION"
	ErrCodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
	ErrCodeExtractionFailed    = "EXTRACTION_FAILED"
	ErrCodeDimensionMismatch   = "DIMENSION_MISMATCH"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeProviderError       = "PROVIDER_ERROR"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Configuration errors
var (
	ErrInvalidChunkConfig = NewDomainError(ErrCodeInvalidConfig, "invalid chunking configuration")
	ErrInvalidTopK        = NewDomainError(ErrCodeValidation, "top-k must be at least 1")
	ErrEmptyQuery         = NewDomainError(ErrCodeValidation, "query cannot be empty")
	ErrEmptySourceID      = NewDomainError(ErrCodeValidation, "source id cannot be empty")
)

// Extraction errors
var (
	ErrUnsupportedFormat = NewDomainError(ErrCodeUnsupportedFormat, "unsupported document format")
	ErrExtractionFailed  = NewDomainError(ErrCodeExtractionFailed, "document extraction failed")
)

// Store errors
var (
	ErrDimensionMismatch = NewDomainError(ErrCodeDimensionMismatch, "embedding dimensionality does not match the store")
	ErrDocumentNotFound  = NewDomainError(ErrCodeNotFound, "document not found")
	ErrJobNotFound       = NewDomainError(ErrCodeNotFound, "ingest job not found")
)

// Provider errors
var (
	ErrProviderUnavailable = NewDomainError(ErrCodeProviderUnavailable, "provider unavailable")
	ErrProviderError       = NewDomainError(ErrCodeProviderError, "provider returned a malformed response")
	ErrRateLimited         = NewDomainError(ErrCodeRateLimited, "provider rate limit exceeded")
)

// Job errors
var (
	ErrInvalidIngestJobStatus = NewDomainError(ErrCodeValidation, "invalid ingest job status")
)
