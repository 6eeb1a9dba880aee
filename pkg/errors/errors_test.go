package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{401, ErrorTypeAuth},
		{403, ErrorTypeAuth},
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{400, ErrorTypeInvalidInput},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{418, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "")
			require.NotNil(t, err)
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, tt.status, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}

	assert.Nil(t, FromStatus(200, ""))
	assert.Nil(t, FromStatus(204, "ignored"))
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("packing: %w", InvalidInput("budget must be positive, got %d", 0))

	assert.True(t, IsType(err, ErrorTypeInvalidInput))
	assert.False(t, IsType(err, ErrorTypeNetwork))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeInvalidInput))
	assert.Contains(t, err.Error(), "budget must be positive, got 0")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.False(t, IsRetryable(ErrorTypeInvalidInput))
	assert.False(t, IsRetryable(ErrorTypeAuth))

	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(502))
	assert.False(t, IsRetryableStatusCode(404))
}
