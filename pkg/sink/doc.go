// Package sink streams Graphviz DOT text to an external layout renderer.
//
// # Overview
//
// The package has no graph model and no parser. A [Dot] sink launches a
// renderer process (the Graphviz "dot" executable by default) and forwards
// every string written to it, UTF-8 encoded, to the renderer's standard input.
// Optionally the same bytes are duplicated to a side file so the DOT source can
// be re-rendered later in other formats.
//
// # Lifecycle
//
// A sink moves through three states and never goes back:
//
//	idle ──Acquire──▶ acquired ──Release──▶ released
//
// [New] only captures configuration. [Dot.Acquire] launches
// "dot -T<format> -o <base>.<format>" and, when enabled, creates <base>.dot.
// Writes are valid only while acquired. [Dot.Release] closes the side file and
// then the renderer's input, which tells the renderer to lay out the graph and
// write its output file. [Dot.Wait] reaps the renderer and reports its exit
// status.
//
// # Scoped Use
//
// [With] acquires a [Resource], runs a function against its [Writable] side and
// always releases it, including when the function fails or panics:
//
//	d := sink.New("test", "png", sink.WithSideFile(true))
//	err := sink.With(d, func(w sink.Writable) error {
//	    _, err := w.Write("digraph { a -> b }")
//	    return err
//	})
//	if err == nil {
//	    err = d.Wait()
//	}
//
// # Substitution
//
// Code that produces DOT text should depend on [Writable] only. [Buffer]
// implements the same lifecycle in memory for tests, and
// [github.com/matzehuels/dotsink/pkg/render.Embedded] renders in-process when
// no Graphviz installation is available.
//
// # Errors
//
// Failures carry codes from [github.com/matzehuels/dotsink/pkg/errors]:
// PROCESS_LAUNCH when the renderer cannot start, NOT_ACQUIRED for writes or
// releases outside the acquired window, BROKEN_PIPE when the renderer stopped
// reading, SIDE_FILE for side-file failures. Nothing is retried or logged here.
//
// A Dot is not safe for concurrent use.
package sink
