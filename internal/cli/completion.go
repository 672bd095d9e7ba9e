package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/config"
	"github.com/matzehuels/stemma/pkg/pipeline"
)

// completionCommand prints shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stemma.

Besides commands and flags, the scripts complete saved layout IDs for
'layouts show' and 'layouts rm', and the values of --format, --renderer
and --store.

Bash:
  $ source <(stemma completion bash)

Zsh:
  $ stemma completion zsh > "${fpath[1]}/_stemma"

Fish:
  $ stemma completion fish > ~/.config/fish/completions/stemma.fish

PowerShell:
  PS> stemma completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeLayoutIDs completes the IDs of layouts in the local store, with
// their size as the description.
func completeLayoutIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	st, err := openLocalStore()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	summaries, err := st.List(ctx, 0)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	taken := make(map[string]bool, len(args))
	for _, a := range args {
		taken[a] = true
	}
	var ids []string
	for _, s := range summaries {
		if taken[s.ID] || !strings.HasPrefix(s.ID, toComplete) {
			continue
		}
		ids = append(ids, fmt.Sprintf("%s\t%d individuals, %d generations", s.ID, s.Individuals, s.Generations))
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes a comma-separated --format value one element at
// a time.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, partial := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, partial = toComplete[:i+1], toComplete[i+1:]
	}
	used := make(map[string]bool)
	if done != "" {
		for _, f := range parseFormats(done) {
			used[f] = true
		}
	}
	var out []string
	for _, f := range pipeline.ValidFormats {
		if !used[f] && strings.HasPrefix(f, partial) {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func fixedCompletion(values ...string) cobra.CompletionFunc {
	return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
}

var (
	completeRenderers = fixedCompletion(pipeline.ValidRenderers...)
	completeStores    = fixedCompletion(config.StoreMemory, config.StoreFile, config.StoreMongo)
)
