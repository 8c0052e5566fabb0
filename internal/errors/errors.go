// Package apperrors defines the structured error types shared by the
// convolution engine and its outer shells (CLI, HTTP server).
//
// Two sentinels classify every engine failure: ErrInvalidArgument for values
// that are present but unusable (wrong length, unacceptable size, negative
// weights) and ErrMissingArgument for absent (nil) inputs. The typed errors
// below match those sentinels through errors.Is, so callers never need to
// inspect messages.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a result mismatch between strategies.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

var (
	// ErrInvalidArgument is matched by every error describing a present but
	// unusable argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingArgument is matched by every error describing an absent argument.
	ErrMissingArgument = errors.New("missing argument")
)

// ValidationError reports an argument that is present but violates a
// precondition (length, size, sign, finiteness).
type ValidationError struct {
	// Field is the name of the argument that failed validation.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the offending value (optional, may be nil).
	Value any
}

// Error returns the error message for a ValidationError.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

// Is reports whether target is ErrInvalidArgument.
func (e ValidationError) Is(target error) bool { return target == ErrInvalidArgument }

// NewValidationError creates a new ValidationError.
//
// Parameters:
//   - field: The name of the argument that failed validation.
//   - message: A description of why validation failed.
//   - value: The invalid value (optional).
//
// Returns:
//   - error: A new ValidationError instance.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// MissingArgumentError reports a nil input where a value is required.
type MissingArgumentError struct {
	// Field is the name of the absent argument.
	Field string
}

// Error returns the error message for a MissingArgumentError.
func (e MissingArgumentError) Error() string {
	return fmt.Sprintf("missing argument '%s'", e.Field)
}

// Is reports whether target is ErrMissingArgument.
func (e MissingArgumentError) Is(target error) bool { return target == ErrMissingArgument }

// NewMissingArgumentError creates a new MissingArgumentError for field.
func NewMissingArgumentError(field string) error {
	return MissingArgumentError{Field: field}
}

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError wraps a failure that happened while a convolution was
// running, after all inputs were validated.
type CalculationError struct {
	// Cause is the underlying error that triggered this calculation error.
	Cause error
}

// Error returns the error message from the underlying cause.
func (e CalculationError) Error() string { return e.Cause.Error() }

// Unwrap returns the original wrapped error.
func (e CalculationError) Unwrap() error { return e.Cause }

// ServerError represents errors that occur in the HTTP server component.
type ServerError struct {
	// Message is a descriptive message about the server error.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the error message for a ServerError.
// It combines the descriptive message and the underlying cause if present.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a new ServerError with a message and optional cause.
//
// Parameters:
//   - message: A description of the error context.
//   - cause: The underlying error that occurred (can be nil).
//
// Returns:
//   - error: A new ServerError instance.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsArgumentError reports whether err stems from caller input, either
// invalid or missing.
func IsArgumentError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrMissingArgument)
}
