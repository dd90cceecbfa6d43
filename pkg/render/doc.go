// Package render renders DOT text without an installed Graphviz.
//
// # Overview
//
// [github.com/matzehuels/dotsink/pkg/sink.Dot] hands DOT text to the "dot"
// executable. Machines without Graphviz can use [Embedded] instead: it
// implements the same [sink.Resource] lifecycle but renders in-process with
// go-graphviz (Graphviz compiled to WebAssembly).
//
//	e := render.NewEmbedded("test", "svg", render.WithLayout("neato"))
//	err := sink.With(e, func(w sink.Writable) error {
//	    _, err := w.Write("digraph { a -> b }")
//	    return err
//	})
//
// Unlike the process sink, Embedded has to hold the whole graph in memory
// until Release, since go-graphviz parses a complete document. The side file
// is still streamed as writes arrive.
//
// # Formats
//
// svg, png, jpg and dot/xdot are produced natively. pdf, and png at a scale
// other than 1, go through SVG and the external rsvg-convert tool (see
// [SVGToPDF] and [SVGToPNG]).
//
// # Layout Engines
//
// [WithLayout] selects the Graphviz engine:
//
//   - dot: Hierarchical (default)
//   - neato: Spring model
//   - fdp, sfdp: Force-directed
//   - circo: Circular
//   - twopi: Radial
//   - osage, patchwork: Clustered and squarified layouts
//
// [sink.Resource]: github.com/matzehuels/dotsink/pkg/sink.Resource
package render
