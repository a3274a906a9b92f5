package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wiregraph/pkg/pipeline"
)

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wiregraph.

Completions cover commands, flags and the values of --format, so

  $ wiregraph nets divider.json -f svg,<TAB>

offers the remaining output formats.

  bash:        source <(wiregraph completion bash)
  zsh:         wiregraph completion zsh > "${fpath[1]}/_wiregraph"
  fish:        wiregraph completion fish > ~/.config/fish/completions/wiregraph.fish
  powershell:  wiregraph completion powershell | Out-String | Invoke-Expression`,
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
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeFormats completes a comma-separated --format value. Formats
// already listed are not offered again.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, prefix := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, prefix = toComplete[:i+1], toComplete[i+1:]
	}
	used := make(map[string]bool)
	for _, f := range strings.Split(done, ",") {
		used[f] = true
	}

	var out []string
	for _, f := range pipeline.ValidFormats {
		if !used[f] && strings.HasPrefix(f, prefix) {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
