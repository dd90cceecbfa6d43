package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotsink/pkg/cache"
	derrors "github.com/matzehuels/dotsink/pkg/errors"
	"github.com/matzehuels/dotsink/pkg/observability"
	"github.com/matzehuels/dotsink/pkg/render"
	"github.com/matzehuels/dotsink/pkg/sink"
)

const (
	stdinName   = "-"     // input argument that selects standard input
	stdinBase   = "graph" // output base when reading stdin without -o
	artifactKey = "artifact"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output base path; a trailing .format is stripped
	format   string // renderer output format tag
	tee      bool   // keep a copy of the DOT text in base.dot
	renderer string // renderer command
	embedded bool   // render in-process with go-graphviz instead of a subprocess
	layout   string // layout engine ("" uses the renderer's default)
	noCache  bool   // skip the artifact cache
	pick     bool   // choose the format interactively
}

// renderCommand creates the render command.
// Flags not given on the command line fall back to the config file.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a DOT file with Graphviz",
		Long: `Render streams DOT text from a file (or standard input) into the renderer
line by line and waits for it to write base.format.

With --tee the text is also copied to base.dot as it is streamed.`,
		Example: `  dotsink render graph.gv -f svg
  generate-graph | dotsink render -o deps --tee
  dotsink render graph.gv --embedded --layout neato`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := stdinName
			if len(args) == 1 {
				input = args[0]
			}
			c.applyConfig(cmd, &opts)
			return c.runRender(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input name without extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format passed to -T (default from config, png)")
	cmd.Flags().BoolVar(&opts.tee, "tee", false, "also write the DOT text to base.dot")
	cmd.Flags().StringVar(&opts.renderer, "renderer", "", "renderer command (default from config, dot)")
	cmd.Flags().BoolVar(&opts.embedded, "embedded", false, "render in-process without a Graphviz installation")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "layout engine: "+strings.Join(render.Layouts, ", "))
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not read or write the artifact cache")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the output format interactively")

	return cmd
}

// applyConfig fills flags the user did not set from the loaded config.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *renderOpts) {
	flags := cmd.Flags()
	if !flags.Changed("format") {
		opts.format = c.Config.Output.Format
	}
	if !flags.Changed("tee") {
		opts.tee = c.Config.Output.Tee
	}
	if !flags.Changed("renderer") {
		opts.renderer = c.Config.Renderer.Command
	}
}

// basePath derives the output base from the -o flag and the input path.
// An explicit output ending in .format has that extension stripped; otherwise
// the input's extension is stripped.
func basePath(output, input, format string) string {
	if output != "" {
		return strings.TrimSuffix(output, "."+format)
	}
	if input == stdinName {
		return stdinBase
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// openInput opens the DOT source. "-" selects standard input.
func openInput(input string) (*os.File, error) {
	if input == stdinName {
		return os.Stdin, nil
	}
	f, err := os.Open(input)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "input %s", input)
	}
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "open %s", input)
	}
	return f, nil
}

func isRegular(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode().IsRegular()
}

// checkOutputs rejects a render whose output or side file is the input being
// read: creating either would truncate the input before it is streamed.
func checkOutputs(input, outPath, sidePath string, tee bool) error {
	if input == stdinName {
		return nil
	}
	in, err := os.Stat(input)
	if err != nil {
		return nil
	}
	if sameFile(in, outPath) {
		return derrors.New(derrors.ErrCodeInvalidInput,
			"output %s would overwrite the input; choose another base with -o", outPath)
	}
	if tee && sameFile(in, sidePath) {
		return derrors.New(derrors.ErrCodeInvalidInput,
			"--tee would overwrite the input %s; choose another base with -o", input)
	}
	return nil
}

func sameFile(in os.FileInfo, path string) bool {
	info, err := os.Stat(path)
	return err == nil && os.SameFile(in, info)
}

// newResource builds the sink for a render job. It also returns the identity
// of the renderer, used in cache keys.
func (c *CLI) newResource(base string, opts renderOpts) (sink.Resource, string, []string) {
	if opts.embedded {
		eopts := []render.EmbeddedOption{render.WithEmbeddedSideFile(opts.tee)}
		layout := "dot"
		if opts.layout != "" {
			layout = opts.layout
			eopts = append(eopts, render.WithLayout(layout))
		}
		e := render.NewEmbedded(base, opts.format, eopts...)
		return e, e.OutputPath(), []string{"go-graphviz", layout}
	}

	args := append([]string(nil), c.Config.Renderer.Args...)
	if opts.layout != "" {
		args = append(args, "-K"+opts.layout)
	}
	d := sink.New(base, opts.format, sink.WithSideFile(opts.tee), sink.WithRenderer(opts.renderer, args...))
	id := d.Args()
	return d, d.OutputPath(), id[:len(id)-2]
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	if opts.pick {
		formats := dotFormats
		if opts.embedded {
			formats = embeddedFormats
		}
		picked, err := pickFormat(formats, opts.format)
		if err != nil {
			return err
		}
		if picked == "" {
			printDetail("No format selected")
			return nil
		}
		opts.format = picked
	}

	if err := derrors.ValidateFormat(opts.format); err != nil {
		return err
	}
	if !opts.embedded {
		if err := derrors.ValidateCommand(opts.renderer); err != nil {
			return err
		}
	}
	base := basePath(opts.output, input, opts.format)
	if err := derrors.ValidateOutputBase(base); err != nil {
		return err
	}
	sidePath := base + ".dot"
	if err := checkOutputs(input, base+"."+opts.format, sidePath, opts.tee); err != nil {
		return err
	}

	in, err := openInput(input)
	if err != nil {
		return err
	}
	if in != os.Stdin {
		defer in.Close()
	}

	res, outPath, rendererID := c.newResource(base, opts)

	// Only regular files can be rewound after hashing; pipes are never cached.
	cacheable := !opts.noCache && isRegular(in)
	store := c.newCache(!cacheable)
	defer store.Close()

	var key string
	if cacheable {
		hash, err := cache.HashReader(in)
		if err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "read %s", input)
		}
		if _, err := in.Seek(0, io.SeekStart); err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "rewind %s", input)
		}
		key = cache.ArtifactKey(hash, opts.format, rendererID...)

		data, ok, err := store.Get(ctx, key)
		if err != nil {
			c.Logger.Warn("Cache read failed", "err", err)
		}
		if ok {
			observability.Cache().OnCacheHit(ctx, artifactKey)
			return c.restoreCached(in, data, outPath, sidePath, opts.tee)
		}
		observability.Cache().OnCacheMiss(ctx, artifactKey)
	}

	name := input
	if input == stdinName {
		name = "standard input"
	}
	c.Logger.Infof("Rendering %s", name)
	prog := newProgress(c.Logger)

	var streamed int64
	err = sink.With(res, func(w sink.Writable) error {
		var err error
		streamed, err = sink.CopyLines(w, in)
		return err
	})
	if d, ok := res.(*sink.Dot); ok {
		err = waitRenderer(ctx, d, err)
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			printDetail("Install Graphviz or pass --embedded to render without it")
		}
		return err
	}
	c.Logger.Debug("Streamed input", "bytes", streamed)

	data, err := os.ReadFile(outPath)
	if err != nil {
		return derrors.Wrap(derrors.ErrCodeRenderFailed, err, "renderer did not produce %s", outPath)
	}
	if key != "" {
		if err := store.Set(ctx, key, data, c.Config.Cache.TTL.Duration); err != nil {
			c.Logger.Warn("Cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, artifactKey, len(data))
		}
	}

	prog.done(fmt.Sprintf("Rendered %s", outPath))
	printOutputs(outPath, sidePath, opts.tee, int64(len(data)), false)
	return nil
}

// waitRenderer reaps the renderer after streaming. A renderer that never
// started has nothing to wait for and only streamErr is returned.
func waitRenderer(ctx context.Context, d *sink.Dot, streamErr error) error {
	spinner := newSpinner(ctx, fmt.Sprintf("Waiting for %s...", filepath.Base(d.OutputPath())))
	waitErr := spinner.Run(d.Wait)
	if derrors.Is(waitErr, derrors.ErrCodeNotReleased) {
		return streamErr
	}
	return errors.Join(streamErr, waitErr)
}

// restoreCached writes a cached artifact in place of rendering. The side
// file, if requested, is copied from the input so both paths look the same
// as after a real render.
func (c *CLI) restoreCached(in io.Reader, data []byte, outPath, sidePath string, tee bool) error {
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidPath, err, "write %s", outPath)
	}
	if tee {
		f, err := os.Create(sidePath)
		if err != nil {
			return derrors.Wrap(derrors.ErrCodeSideFile, err, "create side file %s", sidePath)
		}
		if _, err := io.Copy(f, in); err != nil {
			f.Close()
			return derrors.Wrap(derrors.ErrCodeSideFile, err, "write side file %s", sidePath)
		}
		if err := f.Close(); err != nil {
			return derrors.Wrap(derrors.ErrCodeSideFile, err, "close side file %s", sidePath)
		}
	}

	c.Logger.Infof("Restored %s from cache", outPath)
	printOutputs(outPath, sidePath, tee, int64(len(data)), true)
	return nil
}

func printOutputs(outPath, sidePath string, tee bool, size int64, cached bool) {
	printSuccess("Rendered %s", StyleHighlight.Render(filepath.Base(outPath)))
	printFile(outPath)
	if tee {
		printFile(sidePath)
	}
	printStats(size, cached)
}
