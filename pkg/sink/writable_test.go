package sink

import (
	"errors"
	"testing"

	derrors "github.com/matzehuels/dotsink/pkg/errors"
)

// stubResource counts lifecycle calls and can fail on demand.
type stubResource struct {
	Buffer
	acquireErr error
	releaseErr error
	releases   int
}

func (s *stubResource) Acquire() error {
	if s.acquireErr != nil {
		return s.acquireErr
	}
	return s.Buffer.Acquire()
}

func (s *stubResource) Release() error {
	s.releases++
	if err := s.Buffer.Release(); err != nil {
		return err
	}
	return s.releaseErr
}

func TestWithReleasesOnSuccess(t *testing.T) {
	r := &stubResource{}
	err := With(r, func(w Writable) error {
		_, err := w.Write("digraph { a -> b }")
		return err
	})
	if err != nil {
		t.Fatalf("With() error: %v", err)
	}
	if r.releases != 1 {
		t.Errorf("Release() called %d times, want 1", r.releases)
	}
	if r.String() != "digraph { a -> b }" {
		t.Errorf("content = %q", r.String())
	}
}

func TestWithReleasesOnError(t *testing.T) {
	r := &stubResource{releaseErr: derrors.New(derrors.ErrCodeSideFile, "close failed")}
	fnErr := errors.New("generator failed")

	err := With(r, func(Writable) error { return fnErr })

	if !errors.Is(err, fnErr) {
		t.Errorf("With() error should contain fn error: %v", err)
	}
	if !derrors.Is(err, derrors.ErrCodeSideFile) {
		t.Errorf("With() error should contain release error: %v", err)
	}
	if r.releases != 1 {
		t.Errorf("Release() called %d times, want 1", r.releases)
	}
}

func TestWithReleasesOnPanic(t *testing.T) {
	r := &stubResource{}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic should propagate")
			}
		}()
		_ = With(r, func(Writable) error { panic("boom") })
	}()

	if r.releases != 1 {
		t.Errorf("Release() called %d times, want 1", r.releases)
	}
}

func TestWithSkipsFnWhenAcquireFails(t *testing.T) {
	acqErr := derrors.New(derrors.ErrCodeProcessLaunch, "no renderer")
	r := &stubResource{acquireErr: acqErr}

	called := false
	err := With(r, func(Writable) error {
		called = true
		return nil
	})

	if err != acqErr {
		t.Errorf("With() error = %v, want %v", err, acqErr)
	}
	if called || r.releases != 0 {
		t.Errorf("fn called = %v, releases = %d; want false, 0", called, r.releases)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[state]string{
		stateIdle:     "idle",
		stateAcquired: "acquired",
		stateReleased: "released",
		state(9):      "state(9)",
	} {
		if got := s.String(); got != want {
			t.Errorf("state(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
