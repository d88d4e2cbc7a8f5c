package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/render"
	"github.com/matzehuels/depforce/pkg/sim"
)

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for depforce. Completions cover subcommands,
flags and the values of --theme, --format and --placement.

  bash:       source <(depforce completion bash)
  zsh:        depforce completion zsh > "${fpath[1]}/_depforce"
  fish:       depforce completion fish > ~/.config/fish/completions/depforce.fish
  powershell: depforce completion powershell | Out-String | Invoke-Expression`,
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

// completeOneOf completes a flag that takes a single value from values.
func completeOneOf(values ...string) cobra.CompletionFunc {
	return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
}

// completeFormats completes the last element of a comma-separated --format
// value, skipping formats already listed.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, _ := splitLast(toComplete)
	var out []string
	for _, f := range render.Formats {
		if !strings.Contains(","+done, ","+string(f)+",") {
			out = append(out, done+string(f))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// splitLast splits "svg,html,pn" into "svg,html," and "pn".
func splitLast(s string) (head, last string) {
	i := strings.LastIndexByte(s, ',')
	return s[:i+1], s[i+1:]
}

func registerLayoutCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("placement", completeOneOf(string(sim.PlacementPhyllotaxis), string(sim.PlacementRandom)))
}

func registerRenderCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("theme", completeOneOf(graph.ThemeNames...))
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}
