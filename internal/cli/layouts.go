package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/store"
)

// layoutsCommand creates the command group for layouts saved with --save.
func (c *CLI) layoutsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "Manage saved layouts",
	}

	cmd.AddCommand(c.layoutsListCommand())
	cmd.AddCommand(c.layoutsShowCommand())
	cmd.AddCommand(c.layoutsRemoveCommand())
	cmd.AddCommand(c.layoutsPruneCommand())

	return cmd
}

// layoutsListCommand creates the "layouts list" subcommand.
func (c *CLI) layoutsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved layouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openLocalStore()
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No saved layouts")
				printNextStep("Save one", appName+" layout --save records.json")
				return nil
			}
			fmt.Fprintln(stdout, summaryTable(summaries, time.Now()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of layouts to list")
	return cmd
}

// summaryTable renders summaries as a bordered table.
func summaryTable(summaries []store.Summary, now time.Time) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.ID,
			formatAge(now.Sub(s.CreatedAt)),
			strconv.Itoa(s.Individuals),
			strconv.Itoa(s.Unions),
			strconv.Itoa(s.Generations),
			strconv.FormatFloat(s.Cost, 'f', 2, 64),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Age", "People", "Unions", "Generations", "Cost").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if col == 0 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle.Foreground(colorWhite)
		})
	return t.Render()
}

// formatAge renders a duration as a coarse age such as "3h" or "2d".
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// layoutsShowCommand creates the "layouts show" subcommand.
func (c *CLI) layoutsShowCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved layout, or export it with -o",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return completeLayoutIDs(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openLocalStore()
			if err != nil {
				return err
			}
			defer st.Close()

			l, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output != "" {
				if err := graph.WriteLayoutFile(*l, output); err != nil {
					return err
				}
				printSuccess("Exported layout")
				printFile(output)
				return nil
			}

			printKeyValue("ID", l.ID)
			printKeyValue("Created", l.CreatedAt.Local().Format(time.DateTime))
			printKeyValue("People", strconv.Itoa(l.Stats.Individuals))
			printKeyValue("Unions", strconv.Itoa(l.Stats.Unions))
			printKeyValue("Generations", strconv.Itoa(l.Generations))
			printKeyValue("Cost", fmt.Sprintf("%.2f (from %.2f)", l.Stats.Cost, l.Stats.InitialCost))
			printKeyValue("Overlaps", strconv.Itoa(l.Stats.Overlaps))
			printKeyValue("Iterations", strconv.Itoa(l.Stats.Iterations))
			printKeyValue("Crossings", strconv.Itoa(l.Stats.Crossings))
			printNewline()
			printGenerations(*l)
			printNewline()
			printNextStep("Export", fmt.Sprintf("%s layouts show %s -o %s%s", appName, l.ID, l.ID, layoutSuffix))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout JSON to this file")
	return cmd
}

// layoutsRemoveCommand creates the "layouts rm" subcommand.
func (c *CLI) layoutsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <id>...",
		Short:             "Remove saved layouts",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeLayoutIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openLocalStore()
			if err != nil {
				return err
			}
			defer st.Close()

			removed := 0
			for _, id := range args {
				if !store.ValidID(id) {
					printWarning("Skipping %s: not a layout ID", id)
					continue
				}
				if err := st.Delete(cmd.Context(), id); err != nil {
					return err
				}
				removed++
			}
			printSuccess("Removed %d layout(s)", removed)
			return nil
		},
	}
}

// layoutsPruneCommand creates the "layouts prune" subcommand.
func (c *CLI) layoutsPruneCommand() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove saved layouts older than a retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				olderThan = c.Config.Server.Retention.Duration
			}
			if olderThan <= 0 {
				olderThan = store.DefaultRetention
			}
			st, err := openLocalStore()
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.Cleanup(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			printSuccess("Pruned %d layout(s)", n)
			printDetail("Directory: %s", st.Path())
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention period (default 720h)")
	return cmd
}
