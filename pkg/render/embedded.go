package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"slices"
	"time"

	"github.com/goccy/go-graphviz"

	derrors "github.com/matzehuels/dotsink/pkg/errors"
	"github.com/matzehuels/dotsink/pkg/observability"
	"github.com/matzehuels/dotsink/pkg/sink"
)

// Layouts lists the Graphviz layout engines Embedded accepts.
var Layouts = []string{"dot", "neato", "fdp", "sfdp", "circo", "twopi", "osage", "patchwork"}

// Formats lists the output formats Embedded can produce.
var Formats = []string{"svg", "png", "jpg", "dot", "xdot", "pdf"}

// nativeFormats maps output formats to the go-graphviz format that renders them.
// pdf is absent because it is converted from SVG.
var nativeFormats = map[string]graphviz.Format{
	"svg":  graphviz.SVG,
	"png":  graphviz.PNG,
	"jpg":  graphviz.JPG,
	"dot":  graphviz.Format("dot"),
	"xdot": graphviz.XDOT,
}

// EmbeddedOption configures an [Embedded] renderer.
type EmbeddedOption func(*Embedded)

// WithLayout selects the Graphviz layout engine. The default is "dot".
func WithLayout(name string) EmbeddedOption {
	return func(e *Embedded) { e.layout = name }
}

// WithEmbeddedSideFile enables or disables duplicating writes to base.dot.
func WithEmbeddedSideFile(enabled bool) EmbeddedOption {
	return func(e *Embedded) { e.sideFile = enabled }
}

// WithScale renders png output at the given scale through SVG conversion.
// A scale of 1 uses the native PNG renderer.
func WithScale(scale float64) EmbeddedOption {
	return func(e *Embedded) { e.scale = scale }
}

type embeddedState int

const (
	embeddedIdle embeddedState = iota
	embeddedAcquired
	embeddedReleased
)

// Embedded renders DOT text in-process to base.format when released.
// It implements [sink.Resource] with the same lifecycle errors as [sink.Dot].
type Embedded struct {
	base     string
	format   string
	layout   string
	sideFile bool
	scale    float64

	state embeddedState
	buf   bytes.Buffer
	file  *os.File
	since time.Time
}

var _ sink.Resource = (*Embedded)(nil)

// NewEmbedded captures the configuration of an in-process render job.
func NewEmbedded(base, format string, opts ...EmbeddedOption) *Embedded {
	e := &Embedded{
		base:   base,
		format: format,
		layout: "dot",
		scale:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OutputPath returns the rendered file: base.format.
func (e *Embedded) OutputPath() string { return e.base + "." + e.format }

// SideFilePath returns the DOT side file path: base.dot.
func (e *Embedded) SideFilePath() string { return e.base + ".dot" }

// Acquire checks the format and layout and opens the side file if enabled.
func (e *Embedded) Acquire() error {
	if e.state != embeddedIdle {
		return derrors.New(derrors.ErrCodeAlreadyAcquired, "acquire %s: embedded renderer already used", e.OutputPath())
	}
	if !slices.Contains(Formats, e.format) {
		return derrors.New(derrors.ErrCodeUnsupported, "embedded renderer cannot produce %q (supported: %v)", e.format, Formats)
	}
	if !slices.Contains(Layouts, e.layout) {
		return derrors.New(derrors.ErrCodeUnsupported, "unknown layout engine %q (supported: %v)", e.layout, Layouts)
	}

	if e.sideFile && e.SideFilePath() == e.OutputPath() {
		return derrors.New(derrors.ErrCodeSideFile,
			"acquire %s: rendered output would overwrite the side file", e.OutputPath())
	}

	var err error
	if e.sideFile {
		e.file, err = os.Create(e.SideFilePath())
		if err != nil {
			err = derrors.Wrap(derrors.ErrCodeSideFile, err, "create side file %s", e.SideFilePath())
		}
	}
	observability.Sink().OnAcquire("go-graphviz", []string{e.layout, e.format, e.OutputPath()}, err)
	if err != nil {
		return err
	}

	e.state = embeddedAcquired
	e.since = time.Now()
	return nil
}

// Write duplicates s to the side file, if enabled, and buffers it for rendering.
func (e *Embedded) Write(s string) (int, error) {
	if e.state != embeddedAcquired {
		return 0, derrors.New(derrors.ErrCodeNotAcquired, "write %s: embedded renderer not acquired", e.OutputPath())
	}
	return e.write(s)
}

// WriteLines writes each line in order without separators.
func (e *Embedded) WriteLines(lines []string) error {
	if e.state != embeddedAcquired {
		return derrors.New(derrors.ErrCodeNotAcquired, "write lines %s: embedded renderer not acquired", e.OutputPath())
	}
	for _, line := range lines {
		if _, err := e.write(line); err != nil {
			return err
		}
	}
	return nil
}

func (e *Embedded) write(s string) (int, error) {
	if e.file != nil {
		if _, err := e.file.WriteString(s); err != nil {
			return 0, derrors.Wrap(derrors.ErrCodeSideFile, err, "write side file %s", e.SideFilePath())
		}
	}
	n, _ := e.buf.WriteString(s)
	observability.Sink().OnWrite(n)
	return n, nil
}

// Release closes the side file and renders the buffered text to
// [Embedded.OutputPath]. Unlike [sink.Dot.Release] it returns rendering
// errors directly, since there is no process to wait for.
func (e *Embedded) Release() error {
	if e.state != embeddedAcquired {
		return derrors.New(derrors.ErrCodeNotAcquired, "release %s: embedded renderer not acquired", e.OutputPath())
	}
	e.state = embeddedReleased

	var errs []error
	if e.file != nil {
		if err := e.file.Close(); err != nil {
			errs = append(errs, derrors.Wrap(derrors.ErrCodeSideFile, err, "close side file %s", e.SideFilePath()))
		}
		e.file = nil
	}

	written := int64(e.buf.Len())
	if err := e.render(); err != nil {
		errs = append(errs, err)
	}
	e.buf.Reset()

	err := errors.Join(errs...)
	observability.Sink().OnRelease(written, time.Since(e.since), err)
	return err
}

func (e *Embedded) render() error {
	data, err := Render(context.Background(), e.buf.Bytes(), e.format, e.layout, e.scale)
	if err != nil {
		return err
	}
	if err := os.WriteFile(e.OutputPath(), data, 0o644); err != nil {
		return derrors.Wrap(derrors.ErrCodeRenderFailed, err, "write %s", e.OutputPath())
	}
	return nil
}

// Render lays out dot with the given engine and returns the output bytes.
func Render(ctx context.Context, dot []byte, format, layout string, scale float64) ([]byte, error) {
	native, ok := nativeFormats[format]
	if !ok && format != "pdf" {
		return nil, derrors.New(derrors.ErrCodeUnsupported, "embedded renderer cannot produce %q", format)
	}
	convert := !ok || (format == "png" && scale != 1)
	if convert {
		native = graphviz.SVG
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(layout))

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, native, &buf); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeRenderFailed, err, "render %s", format)
	}

	if !convert {
		return buf.Bytes(), nil
	}
	if format == "pdf" {
		return SVGToPDF(ctx, buf.Bytes())
	}
	return SVGToPNG(ctx, buf.Bytes(), scale)
}
