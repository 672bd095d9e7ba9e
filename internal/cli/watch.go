package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/layout/optimize"
	"github.com/matzehuels/stemma/pkg/pipeline"
)

// watchCommand creates the watch command, which shows the optimizer live.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "watch [records.json|URL]",
		Short: "Compute a layout while showing every optimizer move",
		Long: `Compute a layout while showing every optimizer move.

Watch always recomputes the layout; cached layouts are ignored because a
cache hit has no moves to show. Press q to stop early.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.layoutOptions(args[0], flags)
			opts.Refresh = true
			return c.runWatch(cmd.Context(), opts, flags.noCache, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runWatch computes the layout in the background and feeds its moves into
// a bubbletea program.
func (c *CLI) runWatch(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	recs, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	moves := make(chan optimize.Notification)
	opts.Sink = optimize.ChannelSink(moves)

	p := tea.NewProgram(NewWatchModel(opts.Source, cancel), tea.WithContext(ctx))

	result := make(chan layoutDoneMsg, 1)
	go forwardMoves(moves, result, p.Send)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		l, _, _, err := runner.LayoutWithCacheInfo(ctx, recs, opts)
		close(moves)
		result <- layoutDoneMsg{layout: l, err: err}
	}()

	final, err := p.Run()
	cancel()
	<-finished
	if parent.Err() != nil {
		return parent.Err()
	}
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	m := final.(WatchModel)
	if m.cancelled() {
		return context.Canceled
	}
	if m.Err != nil {
		return m.Err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", opts.Source) + layoutSuffix
	}
	if err := graph.WriteLayoutFile(m.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	printSuccess("Layout complete")
	printFile(outputPath)
	printLayoutStats(m.Layout, false)
	return nil
}

// forwardMoves relays every move to send and then the layout result, so the
// model never receives a move after the run is done.
func forwardMoves(moves <-chan optimize.Notification, result <-chan layoutDoneMsg, send func(tea.Msg)) {
	for n := range moves {
		send(moveMsg(n))
	}
	send(<-result)
}
