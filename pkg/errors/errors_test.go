package errors

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotAcquired, "write: sink %s", "idle")

	if err.Code != ErrCodeNotAcquired {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNotAcquired)
	}

	if err.Message != "write: sink idle" {
		t.Errorf("Message = %v, want %v", err.Message, "write: sink idle")
	}

	expected := "NOT_ACQUIRED: write: sink idle"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := syscall.EPIPE
	err := Wrap(ErrCodeBrokenPipe, cause, "write to renderer")

	if err.Code != ErrCodeBrokenPipe {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeBrokenPipe)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, syscall.EPIPE) {
		t.Error("errors.Is(err, EPIPE) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeProcessLaunch, "test"),
			code:     ErrCodeProcessLaunch,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeProcessLaunch, "test"),
			code:     ErrCodeBrokenPipe,
			expected: false,
		},
		{
			name:     "outer code of wrapped error",
			err:      Wrap(ErrCodeSideFile, New(ErrCodeInvalidPath, "inner"), "outer"),
			code:     ErrCodeSideFile,
			expected: true,
		},
		{
			name:     "inner code of wrapped error",
			err:      Wrap(ErrCodeSideFile, New(ErrCodeInvalidPath, "inner"), "outer"),
			code:     ErrCodeInvalidPath,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("render: %w", New(ErrCodeRenderFailed, "exit 1")),
			code:     ErrCodeRenderFailed,
			expected: true,
		},
		{
			name:     "joined errors",
			err:      errors.Join(New(ErrCodeSideFile, "close"), New(ErrCodeBrokenPipe, "close stdin")),
			code:     ErrCodeBrokenPipe,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeAlreadyAcquired, "test"),
			expected: ErrCodeAlreadyAcquired,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidFormat, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Command: "dot", ExitCode: 2}

	if err.Error() != "dot exited with status 2" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Code() != ErrCodeRenderFailed {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeRenderFailed)
	}

	wrapped := Wrap(ErrCodeRenderFailed, err, "render test.png")
	var exit *ExitError
	if !errors.As(wrapped, &exit) || exit.ExitCode != 2 {
		t.Errorf("errors.As did not recover ExitError from %v", wrapped)
	}
}
