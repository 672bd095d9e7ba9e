package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/pipeline"
	"github.com/matzehuels/stemma/pkg/store"
)

// layoutFlags are the flags shared by every command that computes a layout.
type layoutFlags struct {
	maxIterations int
	timeout       time.Duration
	workers       int
	noOptimize    bool
	noCache       bool
	refresh       bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxIterations, "max-iterations", 0, "optimizer iteration budget (default 10000)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "optimizer time budget (default 30s)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel candidate evaluations (default: GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.noOptimize, "no-optimize", false, "keep the initial placement")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached records and layouts")
}

// layoutOptions converts the flags to pipeline options for source.
func (c *CLI) layoutOptions(source string, f layoutFlags) pipeline.Options {
	opts := pipeline.Options{
		Source:        source,
		Refresh:       f.refresh,
		MaxIterations: f.maxIterations,
		Timeout:       f.timeout,
		Workers:       f.workers,
		SkipOptimize:  f.noOptimize,
	}
	c.setCLIDefaults(&opts)
	return opts
}

// layoutCommand creates the layout command for computing layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		save     bool
		progress bool
		flags    layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [records.json|URL]",
		Short: "Compute a generation grid layout from family records",
		Long: `Compute a generation grid layout from family records.

The layout command reads a records file (individuals and unions as JSON) from
disk or an http(s) URL, levels it into generations, places every node on the
grid and optimizes the placement. The output is a layout.json file that can be
rendered to SVG/PNG/PDF/DOT using the 'render' command.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.layoutOptions(args[0], flags)
			var sink *progressSink
			if progress {
				sink = newProgressSink(c.logger(cmd.Context()))
				opts.Sink = sink
			}
			return c.runLayout(cmd.Context(), opts, flags.noCache, output, save, sink)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&save, "save", false, "also save the layout to the local layout store")
	cmd.Flags().BoolVar(&progress, "progress", false, "log optimizer progress (bypasses the layout cache)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the records, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, noCache bool, output string, save bool, sink *progressSink) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// No spinner while the progress sink is logging.
	var spin *spinner
	if sink == nil {
		spin = newSpinner(ctx, "Loading records...")
		spin.Start()
		defer spin.Stop()
	}

	recs, loadHit, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	if spin != nil {
		spin.Stage(fmt.Sprintf("Laying out %d individuals...", len(recs.Individuals)))
	}

	l, warnings, cacheHit, err := runner.LayoutWithCacheInfo(ctx, recs, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		printError("Layout failed")
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if sink != nil {
		sink.finish(l)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", opts.Source) + layoutSuffix
	}

	if save {
		if err := c.saveLayout(ctx, &l); err != nil {
			return err
		}
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printLayoutStats(l, loadHit || cacheHit)
	printWarnings(warnings)
	if save {
		printKeyValue("Saved as", l.ID)
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// saveLayout stores l in the local layout store, filling in its ID.
func (c *CLI) saveLayout(ctx context.Context, l *graph.Layout) error {
	st, err := openLocalStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Save(ctx, l); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	c.logger(ctx).Debug("saved layout", "id", l.ID, "dir", st.Path())
	return nil
}

// openLocalStore opens the file store under the user data directory.
func openLocalStore() (*store.FileStore, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("get data dir: %w", err)
	}
	return store.NewFileStore(filepath.Join(dir, "layouts"))
}
