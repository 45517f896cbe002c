package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "load error type", errType: ErrTypeLoad, expected: "LOAD"},
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "render error type", errType: ErrTypeRender, expected: "RENDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewAppError(ErrTypeValidation, "histogram bins must be positive", nil),
			expected: "[VALIDATION] histogram bins must be positive",
		},
		{
			name:     "with cause",
			err:      NewLoadError("open Online Retail.xlsx", fmt.Errorf("no such file")),
			expected: "[LOAD] open Online Retail.xlsx: no such file",
		},
		{
			name:     "not found",
			err:      NewNotFoundError("sheet Sheet9"),
			expected: "[NOT_FOUND] sheet Sheet9 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewLoadError("open input", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestAppError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("step load: %w", NewLoadError("missing column CustomerID", nil))

	assert.True(t, errors.Is(err, ErrLoad))
	assert.False(t, errors.Is(err, ErrRender))
	assert.False(t, errors.Is(err, NewLoadError("other", nil)), "only bare sentinels match by type")
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("bad quantity", nil).
		WithContext("row", 12).
		WithContext("column", "Quantity")

	require.Len(t, err.Context, 2)
	assert.Equal(t, 12, err.Context["row"])
	assert.Equal(t, "Quantity", err.Context["column"])

	bare := &AppError{Type: ErrTypeParsing}
	bare.WithContext("row", 1)
	assert.Equal(t, 1, bare.Context["row"])
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeConfig, TypeOf(fmt.Errorf("wrap: %w", NewConfigError("bad", nil))))
	assert.Equal(t, ErrTypeRender, TypeOf(NewRenderError("save", nil)))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}
