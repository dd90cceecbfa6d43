package sink

import (
	"bytes"

	derrors "github.com/matzehuels/dotsink/pkg/errors"
)

// Buffer is an in-memory [Resource] with the same lifecycle rules as [Dot].
// The zero value is an idle buffer ready to be acquired.
type Buffer struct {
	state state
	buf   bytes.Buffer
}

var _ Resource = (*Buffer)(nil)

// Acquire moves the buffer into the acquired state.
func (b *Buffer) Acquire() error {
	if b.state != stateIdle {
		return derrors.New(derrors.ErrCodeAlreadyAcquired, "acquire buffer: sink is %s", b.state)
	}
	b.state = stateAcquired
	return nil
}

// Write appends s.
func (b *Buffer) Write(s string) (int, error) {
	if b.state != stateAcquired {
		return 0, derrors.New(derrors.ErrCodeNotAcquired, "write buffer: sink is %s", b.state)
	}
	return b.buf.WriteString(s)
}

// WriteLines appends each line in order.
func (b *Buffer) WriteLines(lines []string) error {
	if b.state != stateAcquired {
		return derrors.New(derrors.ErrCodeNotAcquired, "write lines buffer: sink is %s", b.state)
	}
	for _, line := range lines {
		b.buf.WriteString(line)
	}
	return nil
}

// Release ends the acquired window. The content stays readable.
func (b *Buffer) Release() error {
	if b.state != stateAcquired {
		return derrors.New(derrors.ErrCodeNotAcquired, "release buffer: sink is %s", b.state)
	}
	b.state = stateReleased
	return nil
}

// Bytes returns the bytes written so far.
func (b *Buffer) Bytes() []byte { return b.buf.Bytes() }

// String returns the text written so far.
func (b *Buffer) String() string { return b.buf.String() }
