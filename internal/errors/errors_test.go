// Package apperrors provides tests for application error types.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error returns message",
			err:      ConfigError{Message: "invalid flag value"},
			expected: "invalid flag value",
		},
		{
			name:     "NewConfigError creates formatted error",
			err:      NewConfigError("invalid value %d for flag %s", 42, "--min-split"),
			expected: "invalid value 42 for flag --min-split",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			var configErr ConfigError
			if !errors.As(tt.err, &configErr) {
				t.Error("expected error to be ConfigError type")
			}
		})
	}
}

func TestArgumentSentinels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		wantInvalid bool
		wantMissing bool
	}{
		{"validation", NewValidationError("filter", "must not be empty", 0), true, false},
		{"missing", NewMissingArgumentError("signal"), false, true},
		{"wrapped validation", fmt.Errorf("curry: %w", NewValidationError("f", "bad size", 3)), true, false},
		{"wrapped missing", WrapError(NewMissingArgumentError("g"), "apply"), false, true},
		{"unrelated", errors.New("boom"), false, false},
		{"calculation wraps validation", CalculationError{Cause: NewValidationError("", "x", nil)}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := errors.Is(tt.err, ErrInvalidArgument); got != tt.wantInvalid {
				t.Errorf("errors.Is(ErrInvalidArgument) = %v, want %v", got, tt.wantInvalid)
			}
			if got := errors.Is(tt.err, ErrMissingArgument); got != tt.wantMissing {
				t.Errorf("errors.Is(ErrMissingArgument) = %v, want %v", got, tt.wantMissing)
			}
			if got := IsArgumentError(tt.err); got != (tt.wantInvalid || tt.wantMissing) {
				t.Errorf("IsArgumentError = %v", got)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()
	withField := NewValidationError("filter", "must not be empty", nil)
	if got, want := withField.Error(), "invalid argument 'filter': must not be empty"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	noField := ValidationError{Message: "length mismatch"}
	if got, want := noField.Error(), "invalid argument: length mismatch"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	var ve ValidationError
	if !errors.As(withField, &ve) || ve.Field != "filter" {
		t.Errorf("errors.As did not recover the field, got %+v", ve)
	}
}

func TestMissingArgumentErrorMessage(t *testing.T) {
	t.Parallel()
	err := NewMissingArgumentError("g")
	if got, want := err.Error(), "missing argument 'g'"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCalculationError(t *testing.T) {
	t.Parallel()
	cause := errors.New("division by zero")
	err := CalculationError{Cause: cause}
	if err.Error() != "division by zero" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestServerError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"message only", NewServerError("listen failed", nil), "listen failed"},
		{"with cause", NewServerError("listen failed", errors.New("port in use")), "listen failed: port in use"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "context") != nil {
		t.Error("wrapping nil must return nil")
	}
	base := errors.New("base")
	wrapped := WrapError(base, "step %d", 2)
	if wrapped.Error() != "step 2: base" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error must match base")
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	if !IsContextError(context.Canceled) || !IsContextError(fmt.Errorf("x: %w", context.DeadlineExceeded)) {
		t.Error("expected context errors to be detected")
	}
	if IsContextError(errors.New("other")) {
		t.Error("unexpected context error detection")
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()
	codes := map[string]int{
		"success":  ExitSuccess,
		"generic":  ExitErrorGeneric,
		"timeout":  ExitErrorTimeout,
		"mismatch": ExitErrorMismatch,
		"config":   ExitErrorConfig,
		"canceled": ExitErrorCanceled,
	}
	seen := make(map[int]string)
	for name, code := range codes {
		if other, ok := seen[code]; ok {
			t.Errorf("exit code %d shared by %s and %s", code, name, other)
		}
		seen[code] = name
	}
	if ExitSuccess != 0 || ExitErrorMismatch != 3 || ExitErrorConfig != 4 || ExitErrorCanceled != 130 {
		t.Error("exit codes drifted from their documented values")
	}
}
