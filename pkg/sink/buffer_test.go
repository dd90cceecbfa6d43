package sink

import (
	"testing"

	derrors "github.com/matzehuels/dotsink/pkg/errors"
)

func TestBufferLifecycle(t *testing.T) {
	var b Buffer

	if _, err := b.Write("x"); !derrors.Is(err, derrors.ErrCodeNotAcquired) {
		t.Errorf("Write() before Acquire error = %v, want NOT_ACQUIRED", err)
	}
	if err := b.Release(); !derrors.Is(err, derrors.ErrCodeNotAcquired) {
		t.Errorf("Release() before Acquire error = %v, want NOT_ACQUIRED", err)
	}

	if err := b.Acquire(); err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	n, err := b.Write("digraph { a -> b }")
	if err != nil || n != 18 {
		t.Fatalf("Write() = %d, %v; want 18, nil", n, err)
	}
	if err := b.WriteLines([]string{"a;\n", "b;\n"}); err != nil {
		t.Fatalf("WriteLines() error: %v", err)
	}
	if err := b.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}

	if got, want := b.String(), "digraph { a -> b }a;\nb;\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if err := b.WriteLines([]string{"c;\n"}); !derrors.Is(err, derrors.ErrCodeNotAcquired) {
		t.Errorf("WriteLines() after Release error = %v, want NOT_ACQUIRED", err)
	}
	if err := b.Acquire(); !derrors.Is(err, derrors.ErrCodeAlreadyAcquired) {
		t.Errorf("Acquire() after Release error = %v, want ALREADY_ACQUIRED", err)
	}
	if len(b.Bytes()) != 24 {
		t.Errorf("Bytes() length = %d, want 24", len(b.Bytes()))
	}
}
