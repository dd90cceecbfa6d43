package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	derrors "github.com/matzehuels/dotsink/pkg/errors"
)

// svgConverter turns SVG into PDF or scaled PNG. go-graphviz has no cairo
// backend for either, so the embedded renderer hands its SVG to this tool.
var svgConverter = "rsvg-convert"

const converterHint = "install librsvg:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin"

// SVGToPDF renders an SVG document as a single-page PDF.
func SVGToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convertSVG(ctx, svg, "pdf")
}

// SVGToPNG rasterizes an SVG document. scale multiplies the document's own
// size, so 2 yields an image twice as wide and tall.
func SVGToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return convertSVG(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func convertSVG(ctx context.Context, svg []byte, format string, extra ...string) ([]byte, error) {
	path, err := exec.LookPath(svgConverter)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeUnsupported, err,
			"embedded %s output needs %s; %s", format, svgConverter, converterHint)
	}

	cmd := exec.CommandContext(ctx, path, append([]string{"-f", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeRenderFailed, err,
			"convert SVG to %s: %s", format, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
