package sink

import (
	"errors"
	"fmt"
)

// Writable accepts DOT text.
type Writable interface {
	// Write forwards s and returns the number of bytes delivered.
	Write(s string) (int, error)

	// WriteLines forwards each line in order without adding separators.
	// Callers include line terminators themselves.
	WriteLines(lines []string) error
}

// Resource is a Writable that must be acquired before use and released after.
type Resource interface {
	Writable
	Acquire() error
	Release() error
}

// With acquires r, calls fn and releases r on every exit path.
//
// If Acquire fails its error is returned and fn is not called. Otherwise the
// result joins fn's error with Release's error. A panic in fn still releases r
// before the panic continues.
func With(r Resource, fn func(Writable) error) (err error) {
	if err := r.Acquire(); err != nil {
		return err
	}

	defer func() {
		if relErr := r.Release(); relErr != nil {
			err = errors.Join(err, relErr)
		}
	}()

	return fn(r)
}

// state is the position of a sink in its lifecycle.
type state int

const (
	stateIdle state = iota
	stateAcquired
	stateReleased
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAcquired:
		return "acquired"
	case stateReleased:
		return "released"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
