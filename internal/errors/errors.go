package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput           = errors.New("input is empty or contains only whitespace")
	ErrFileNotFound         = errors.New("file not found")
	ErrFileEmpty            = errors.New("file is empty")
	ErrNoInput              = errors.New("no input provided: please specify a file with -i or pipe data to stdin")
	ErrInvalidFilePath      = errors.New("invalid file path")
	ErrUnknownFormat        = errors.New("unknown format")
	ErrUnsupportedShape     = errors.New("value shape is not supported by the target format")
	ErrUnsupportedDrop      = errors.New("unsupported drop")
	ErrClipboardUnavailable = errors.New("clipboard is unavailable")
	ErrBusy                 = errors.New("a conversion is already in progress")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput         ErrorType = "input"
	ErrorTypeOutput        ErrorType = "output"
	ErrorTypeConfig        ErrorType = "config"
	ErrorTypeUnknownFormat ErrorType = "unknown_format"
	ErrorTypeParse         ErrorType = "parse"
	ErrorTypeSerialize     ErrorType = "serialize"
	ErrorTypeTransform     ErrorType = "transform"
	ErrorTypeDrop          ErrorType = "drop"
	ErrorTypeClipboard     ErrorType = "clipboard"
	ErrorTypeSwap          ErrorType = "swap"
	ErrorTypeConversion    ErrorType = "conversion"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Cause returns the message of the wrapped error, or the AppError message when
// nothing is wrapped. Used where only the underlying description is shown.
func (e *AppError) Cause() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: message,
		Err:     err,
	}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return newError(ErrorTypeConfig, message, err)
}

// NewUnknownFormatError reports a format identifier that has no registered codec.
// This is a wiring defect, never a user error.
func NewUnknownFormatError(format string) *AppError {
	return newError(ErrorTypeUnknownFormat, fmt.Sprintf("no codec registered for %q", format), ErrUnknownFormat)
}

// NewParseError creates a new error raised while parsing source text
func NewParseError(message string, err error) *AppError {
	return newError(ErrorTypeParse, message, err)
}

// NewSerializeError creates a new error raised while rendering the target text
func NewSerializeError(message string, err error) *AppError {
	return newError(ErrorTypeSerialize, message, err)
}

// NewTransformError creates a new error raised by a value transform
func NewTransformError(message string, err error) *AppError {
	return newError(ErrorTypeTransform, message, err)
}

// NewDropError creates a new error for a rejected file drop
func NewDropError(reason string) *AppError {
	return newError(ErrorTypeDrop, reason, ErrUnsupportedDrop)
}

// NewClipboardError creates a new error for a failed clipboard write
func NewClipboardError(message string, err error) *AppError {
	return newError(ErrorTypeClipboard, message, err)
}

// NewSwapError creates a new error for an interrupted swap
func NewSwapError(message string, err error) *AppError {
	return newError(ErrorTypeSwap, message, err)
}

// NewConversionError creates a new error for a failed conversion. message is
// the outcome's message and is shown as is.
func NewConversionError(message string) *AppError {
	return newError(ErrorTypeConversion, message, nil)
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeUnknownFormat:
			return fmt.Sprintf("Internal error: %s", appErr.Message)
		case ErrorTypeParse:
			return fmt.Sprintf("Parse error: %s", appErr.Cause())
		case ErrorTypeSerialize:
			return fmt.Sprintf("Serialize error: %s", appErr.Cause())
		case ErrorTypeTransform:
			return fmt.Sprintf("Transform error: %s", appErr.Cause())
		case ErrorTypeDrop:
			return appErr.Message
		case ErrorTypeClipboard:
			return fmt.Sprintf("Error: %s", appErr.Cause())
		case ErrorTypeConversion:
			return appErr.Message
		case ErrorTypeSwap:
			return fmt.Sprintf("Swap error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide some data to convert."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrBusy) {
		return "Error: A conversion is already running."
	}

	return fmt.Sprintf("Error: %v", err)
}
