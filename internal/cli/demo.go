package cli

import (
	"context"
	"errors"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotsink/pkg/render"
	"github.com/matzehuels/dotsink/pkg/sink"
)

const (
	demoBase   = "test"
	demoFormat = "png"
	demoGraph  = "digraph { a -> b }"
)

// demoCommand creates the demo command, which renders a two-node graph to
// test.png in the current directory.
func (c *CLI) demoCommand() *cobra.Command {
	var (
		tee      bool
		embedded bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render a two-node example graph to test.png",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDemo(cmd.Context(), tee, embedded)
		},
	}

	cmd.Flags().BoolVar(&tee, "tee", false, "also write the DOT text to test.dot")
	cmd.Flags().BoolVar(&embedded, "embedded", false, "render in-process without a Graphviz installation")

	return cmd
}

func (c *CLI) runDemo(ctx context.Context, tee, embedded bool) error {
	write := func(w sink.Writable) error {
		_, err := w.Write(demoGraph)
		return err
	}

	var (
		outPath  string
		sidePath string
		err      error
	)
	if embedded {
		e := render.NewEmbedded(demoBase, demoFormat, render.WithEmbeddedSideFile(tee))
		outPath, sidePath = e.OutputPath(), e.SideFilePath()
		err = sink.With(e, write)
	} else {
		d := sink.New(demoBase, demoFormat,
			sink.WithSideFile(tee),
			sink.WithRenderer(c.Config.Renderer.Command, c.Config.Renderer.Args...))
		outPath, sidePath = d.OutputPath(), d.SideFilePath()
		c.Logger.Debug("Demo renderer", "args", d.Args())
		err = waitRenderer(ctx, d, sink.With(d, write))
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			printDetail("Install Graphviz or pass --embedded to render without it")
		}
		return err
	}

	printSuccess("Rendered %s", StyleHighlight.Render(demoGraph))
	printFile(outPath)
	if tee {
		printFile(sidePath)
	}
	return nil
}
