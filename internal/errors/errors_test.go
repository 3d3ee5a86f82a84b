package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeParse,
				Message: "invalid YAML",
				Err:     nil,
			},
			expected: "parse: invalid YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{
		Type:    ErrorTypeInput,
		Message: "test message",
		Err:     wrappedErr,
	}

	assert.Equal(t, wrappedErr, appErr.Unwrap())
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name:     "same type",
			appError: NewParseError("first", nil),
			target:   NewParseError("second", errors.New("other")),
			expected: true,
		},
		{
			name:     "different type",
			appError: NewParseError("first", nil),
			target:   NewSerializeError("first", nil),
			expected: false,
		},
		{
			name:     "not an AppError",
			appError: NewInputError("test message", nil),
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Is(tt.target))
		})
	}
}

func TestAppError_SentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("resolving target: %w", NewUnknownFormatError("ini"))

	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeUnknownFormat}))

	drop := NewDropError("Please drop a single file.")
	assert.True(t, errors.Is(drop, ErrUnsupportedDrop))
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "parse error shows the cause",
			err:      NewParseError("json", errors.New("invalid character 'i' looking for beginning of object key string")),
			expected: "Parse error: invalid character 'i' looking for beginning of object key string",
		},
		{
			name:     "serialize error without cause",
			err:      NewSerializeError("null values are not supported", nil),
			expected: "Serialize error: null values are not supported",
		},
		{
			name:     "transform error",
			err:      NewTransformError("query", errors.New("boom")),
			expected: "Transform error: boom",
		},
		{
			name:     "drop error is shown verbatim",
			err:      NewDropError("Please drop a single file."),
			expected: "Please drop a single file.",
		},
		{
			name:     "clipboard error",
			err:      NewClipboardError("copy failed", ErrClipboardUnavailable),
			expected: "Error: clipboard is unavailable",
		},
		{
			name:     "conversion error is shown verbatim",
			err:      NewConversionError("Parse error: unexpected end of JSON input"),
			expected: "Parse error: unexpected end of JSON input",
		},
		{
			name:     "swap error",
			err:      NewSwapError("editors restored", errors.New("editor is gone")),
			expected: "Swap error: editors restored",
		},
		{
			name:     "config error",
			err:      NewConfigError("invalid key_case \"shout\"", nil),
			expected: "Configuration error: invalid key_case \"shout\"",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide some data to convert.",
		},
		{
			name:     "standard error - busy",
			err:      ErrBusy,
			expected: "Error: A conversion is already running.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserFriendlyError(tt.err))
		})
	}
}
