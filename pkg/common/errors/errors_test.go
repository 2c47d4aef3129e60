package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrClosed", ErrClosed, "resource is closed"},
		{"ErrNotInitialized", ErrNotInitialized, "pool is not initialized"},
		{"ErrTimeout", ErrTimeout, "operation timed out"},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "threadpool",
				Field:  "threads",
				Value:  -1,
				Reason: "must be positive",
			},
			want: "threadpool: invalid threads=-1 (must be positive)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "threadpool",
				Field:  "threads",
				Value:  0,
				Reason: "must be positive",
				Hint:   "use a value greater than 0",
			},
			want: "threadpool: invalid threads=0 (must be positive) - use a value greater than 0",
		},
		{
			name: "string value",
			err: &ValidationError{
				Module: "scheduler",
				Field:  "cron",
				Value:  "",
				Reason: "cannot be empty",
			},
			want: "scheduler: invalid cron= (cannot be empty)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	verr := NewValidationError("test", "field", 0, "test")

	if verr.Unwrap() != ErrInvalidConfiguration {
		t.Errorf("Unwrap() = %v, want ErrInvalidConfiguration", verr.Unwrap())
	}
	if !errors.Is(fmt.Errorf("init: %w", verr), ErrInvalidConfiguration) {
		t.Error("wrapped ValidationError should match ErrInvalidConfiguration")
	}
}

func TestValidationError_WithHint(t *testing.T) {
	err := NewValidationError("test", "field", 0, "invalid")
	if got := err.WithHint("try a positive value"); got != err {
		t.Error("WithHint should return the same instance")
	}
	if err.Hint != "try a positive value" {
		t.Errorf("Hint = %q", err.Hint)
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewOperationError("cleanup", "EvictKeys", cause).WithContext("3 keys")

	want := "cleanup.EvictKeys failed: connection refused (3 keys)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("OperationError should wrap its cause")
	}

	bare := NewOperationError("cleanup", "EvictPattern", cause)
	if strings.Contains(bare.Error(), "(") {
		t.Errorf("unexpected context in %q", bare.Error())
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		temporary bool
		invalid   bool
	}{
		{"timeout", ErrTimeout, true, true, false},
		{"closed", ErrClosed, false, true, false},
		{"not initialized", ErrNotInitialized, false, false, false},
		{"wrapped closed", fmt.Errorf("submit: %w", ErrClosed), false, true, false},
		{"validation", NewValidationError("m", "f", 0, "r"), false, false, true},
		{"wrapped validation", NewOperationError("m", "op", NewValidationError("m", "f", 0, "r")), false, false, true},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if got := IsTemporary(tt.err); got != tt.temporary {
				t.Errorf("IsTemporary() = %v, want %v", got, tt.temporary)
			}
			if got := IsValidationError(tt.err); got != tt.invalid {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.invalid)
			}
		})
	}
}
