package sink

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	derrors "github.com/matzehuels/dotsink/pkg/errors"
	"github.com/matzehuels/dotsink/pkg/observability"
)

// DefaultRenderer is the renderer executable used when none is configured.
const DefaultRenderer = "dot"

// Option configures a [Dot] sink.
type Option func(*Dot)

// WithSideFile enables or disables duplicating every written byte to
// <base>.dot.
func WithSideFile(enabled bool) Option {
	return func(d *Dot) { d.sideFile = enabled }
}

// WithRenderer replaces the renderer executable. args are passed before the
// format and output arguments, e.g. WithRenderer("dot", "-Kneato").
func WithRenderer(command string, args ...string) Option {
	return func(d *Dot) {
		d.command = command
		d.extraArgs = append([]string(nil), args...)
	}
}

// WithStderr redirects the renderer's standard error. The default is the
// parent's standard error.
func WithStderr(w io.Writer) Option {
	return func(d *Dot) { d.stderr = w }
}

// Dot streams text into a renderer process. See the package documentation for
// its lifecycle.
type Dot struct {
	base      string
	format    string
	sideFile  bool
	command   string
	extraArgs []string
	stderr    io.Writer

	state   state
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	file    *os.File
	written int64
	since   time.Time

	waited  bool
	waitErr error
}

var _ Resource = (*Dot)(nil)

// New captures the configuration of a render job writing to base.format.
// Nothing is launched or opened until [Dot.Acquire].
func New(base, format string, opts ...Option) *Dot {
	d := &Dot{
		base:    base,
		format:  format,
		command: DefaultRenderer,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OutputPath returns the file the renderer writes: base.format.
func (d *Dot) OutputPath() string { return d.base + "." + d.format }

// SideFilePath returns the path of the DOT side file: base.dot.
func (d *Dot) SideFilePath() string { return d.base + ".dot" }

// SideFile reports whether writes are duplicated to [Dot.SideFilePath].
func (d *Dot) SideFile() bool { return d.sideFile }

// Args returns the renderer's argument vector, command first.
func (d *Dot) Args() []string {
	args := make([]string, 0, len(d.extraArgs)+4)
	args = append(args, d.command)
	args = append(args, d.extraArgs...)
	return append(args, "-T"+d.format, "-o", d.OutputPath())
}

// Acquire launches the renderer with its standard input connected to the sink
// and, if enabled, creates or truncates the side file.
//
// When the side file cannot be created the renderer is killed and reaped and
// the sink stays idle, so Acquire may be retried. A side file that coincides
// with the output (format "dot") is refused before anything is launched.
func (d *Dot) Acquire() error {
	if d.state != stateIdle {
		return derrors.New(derrors.ErrCodeAlreadyAcquired, "acquire %s: sink is %s", d.OutputPath(), d.state)
	}

	if d.sideFile && d.SideFilePath() == d.OutputPath() {
		return derrors.New(derrors.ErrCodeSideFile,
			"acquire %s: renderer output would overwrite the side file", d.OutputPath())
	}

	args := d.Args()
	err := d.start(args)
	observability.Sink().OnAcquire(d.command, args, err)
	return err
}

func (d *Dot) start(args []string) error {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = d.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return derrors.Wrap(derrors.ErrCodeProcessLaunch, err, "open input of renderer %q", d.command)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return derrors.Wrap(derrors.ErrCodeProcessLaunch, err, "start renderer %q", d.command)
	}

	if d.sideFile {
		f, err := os.Create(d.SideFilePath())
		if err != nil {
			_ = stdin.Close()
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return derrors.Wrap(derrors.ErrCodeSideFile, err, "create side file %s", d.SideFilePath())
		}
		d.file = f
	}

	d.cmd = cmd
	d.stdin = stdin
	d.state = stateAcquired
	d.since = time.Now()
	return nil
}

// Write duplicates s to the side file, if enabled, and then writes it to the
// renderer. It returns the number of bytes written to the renderer.
//
// Write blocks while the renderer is not consuming its input. Because the side
// file is written first, it may hold bytes the renderer never received when
// Write fails.
func (d *Dot) Write(s string) (int, error) {
	if d.state != stateAcquired {
		return 0, d.notAcquired("write")
	}
	return d.write(s)
}

// WriteLines writes each line in order with the same steps as [Dot.Write].
// No separators are inserted.
func (d *Dot) WriteLines(lines []string) error {
	if d.state != stateAcquired {
		return d.notAcquired("write lines")
	}
	for _, line := range lines {
		if _, err := d.write(line); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dot) write(s string) (int, error) {
	b := []byte(s)
	if d.file != nil {
		if _, err := d.file.Write(b); err != nil {
			return 0, derrors.Wrap(derrors.ErrCodeSideFile, err, "write side file %s", d.SideFilePath())
		}
	}

	n, err := d.stdin.Write(b)
	if n > 0 {
		d.written += int64(n)
		observability.Sink().OnWrite(n)
	}
	if err != nil {
		return n, derrors.Wrap(derrors.ErrCodeBrokenPipe, err, "renderer %q stopped reading input", d.command)
	}
	return n, nil
}

// Release closes the side file, if open, and then the renderer's input. The
// renderer then finishes on its own; use [Dot.Wait] to observe its exit.
//
// Release fails with NOT_ACQUIRED when the sink was never acquired and on every
// call after the first. Both handles are closed even if the first close fails.
func (d *Dot) Release() error {
	if d.state != stateAcquired {
		return d.notAcquired("release")
	}

	var errs []error
	if d.file != nil {
		if err := d.file.Close(); err != nil {
			errs = append(errs, derrors.Wrap(derrors.ErrCodeSideFile, err, "close side file %s", d.SideFilePath()))
		}
		d.file = nil
	}
	if err := d.stdin.Close(); err != nil {
		errs = append(errs, derrors.Wrap(derrors.ErrCodeBrokenPipe, err, "close input of renderer %q", d.command))
	}
	d.stdin = nil
	d.state = stateReleased

	err := errors.Join(errs...)
	observability.Sink().OnRelease(d.written, time.Since(d.since), err)
	return err
}

// Wait blocks until the released renderer exits. A non-zero exit status is
// reported as RENDER_FAILED wrapping an [derrors.ExitError]. Later calls
// return the first result.
func (d *Dot) Wait() error {
	if d.state != stateReleased {
		return derrors.New(derrors.ErrCodeNotReleased, "wait %s: sink is %s", d.OutputPath(), d.state)
	}
	if d.waited {
		return d.waitErr
	}

	err := d.cmd.Wait()
	d.waited = true

	code := d.cmd.ProcessState.ExitCode()
	observability.Sink().OnExit(d.command, code, time.Since(d.since))

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		d.waitErr = derrors.Wrap(derrors.ErrCodeRenderFailed,
			&derrors.ExitError{Command: d.command, ExitCode: exitErr.ExitCode()},
			"render %s", d.OutputPath())
	default:
		d.waitErr = derrors.Wrap(derrors.ErrCodeRenderFailed, err, "render %s", d.OutputPath())
	}
	return d.waitErr
}

func (d *Dot) notAcquired(op string) error {
	return derrors.New(derrors.ErrCodeNotAcquired, "%s %s: sink is %s", op, d.OutputPath(), d.state)
}
