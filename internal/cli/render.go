package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (multiple)
	formats  []string // output formats: svg, png, pdf, dot, json
	renderer string   // grid or graphviz
	detailed bool     // label nodes with their grid position
	layout   layoutFlags
}

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{renderer: pipeline.DefaultRenderer}

	cmd := &cobra.Command{
		Use:   "render [layout.json|records.json|URL]",
		Short: "Render a layout to SVG, PNG, PDF or DOT",
		Long: `Render a layout to SVG, PNG, PDF or DOT.

The input is either a layout.json produced by 'layout', which is drawn as is,
or a records file or URL, which is laid out first.

Renderers:
  grid      draws every node in its grid cell (default)
  graphviz  pins nodes at their grid positions and lets Graphviz route edges

PNG and PDF output requires rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if err := pipeline.ValidateRenderer(opts.renderer); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.renderer, "renderer", opts.renderer, "renderer: grid (default), graphviz")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their grid position")
	opts.layout.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("renderer", completeRenderers)

	return cmd
}

// runRender loads or computes the layout for input and writes one file per
// format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	runner, err := c.newRunner(ctx, opts.layout.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.layoutOptions(input, opts.layout)
	popts.Formats = opts.formats
	popts.Renderer = opts.renderer
	popts.Detailed = opts.detailed

	l, isLayout, err := readLayoutInput(input)
	if err != nil {
		return err
	}
	spin := newSpinner(ctx, "Loading records...")
	spin.Start()
	defer spin.Stop()

	cached := false
	if !isLayout {
		recs, loadHit, err := runner.LoadWithCacheInfo(ctx, popts)
		if err != nil {
			return err
		}
		spin.Stage(fmt.Sprintf("Laying out %d individuals...", len(recs.Individuals)))
		var layoutHit bool
		l, _, layoutHit, err = runner.LayoutWithCacheInfo(ctx, recs, popts)
		if err != nil {
			return err
		}
		cached = loadHit || layoutHit
	}

	spin.Stage(fmt.Sprintf("Rendering %s...", strings.Join(opts.formats, ", ")))
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, l, popts)
	spin.Stop()
	if err != nil {
		return err
	}

	paths := outputPaths(opts.output, input, opts.formats)
	for _, format := range opts.formats {
		if err := os.WriteFile(paths[format], artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}

	printSuccess("Rendered %d file(s)", len(opts.formats))
	for _, format := range opts.formats {
		printFile(paths[format])
	}
	printLayoutStats(l, cached || renderHit)
	return nil
}

// readLayoutInput reads input as a layout file. It reports false without an
// error when input is a URL or a records file.
func readLayoutInput(input string) (graph.Layout, bool, error) {
	if errs.IsURL(input) {
		return graph.Layout{}, false, nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return graph.Layout{}, false, errs.Wrap(errs.ErrCodeNotFound, err, "read %s", input)
	}
	if !looksLikeLayout(data) {
		return graph.Layout{}, false, nil
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		return graph.Layout{}, false, errs.Wrap(errs.ErrCodeInvalidFormat, err, "%s", input)
	}
	return l, true, nil
}

// looksLikeLayout reports whether data is a layout document rather than a
// records document. Layouts carry a top-level "nodes" array.
func looksLikeLayout(data []byte) bool {
	return bytes.Contains(data, []byte(`"nodes"`)) && !bytes.Contains(data, []byte(`"individuals"`))
}

// outputPaths maps each format to its output file. A single format writes to
// output verbatim when given; several formats share a base path.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		if f == pipeline.FormatJSON {
			paths[f] = base + layoutSuffix
			continue
		}
		paths[f] = base + "." + f
	}
	return paths
}
