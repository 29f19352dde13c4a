package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "something is off")
	assert.Equal(t, "[VALIDATION_ERROR] something is off", err.Error())
}

func TestDomainError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying problem")
	err := NewDomainErrorWithCause(ErrCodeInternalError, "operation failed", cause)

	assert.Equal(t, "[INTERNAL_ERROR] operation failed: underlying problem", err.Error())
	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
}

func TestDomainError_SentinelsMatchThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("embed chunk 3: %w", ErrRateLimited)
	assert.ErrorIs(t, wrapped, ErrRateLimited)

	var domainErr *DomainError
	require.ErrorAs(t, wrapped, &domainErr)
	assert.Equal(t, ErrCodeRateLimited, domainErr.Code)
}

func TestDomainError_SentinelCodes(t *testing.T) {
	tests := []struct {
		err  *DomainError
		code string
	}{
		{ErrInvalidChunkConfig, ErrCodeInvalidConfig},
		{ErrInvalidTopK, ErrCodeValidation},
		{ErrEmptyQuery, ErrCodeValidation},
		{ErrEmptySourceID, ErrCodeValidation},
		{ErrUnsupportedFormat, ErrCodeUnsupportedFormat},
		{ErrExtractionFailed, ErrCodeExtractionFailed},
		{ErrDimensionMismatch, ErrCodeDimensionMismatch},
		{ErrDocumentNotFound, ErrCodeNotFound},
		{ErrJobNotFound, ErrCodeNotFound},
		{ErrProviderUnavailable, ErrCodeProviderUnavailable},
		{ErrProviderError, ErrCodeProviderError},
		{ErrRateLimited, ErrCodeRateLimited},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code, tt.err.Message)
	}
}
