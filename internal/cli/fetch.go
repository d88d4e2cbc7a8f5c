package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depforce/pkg/graph"
)

// fetchCommand creates the fetch command for downloading snapshots.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output  string
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [source]",
		Short: "Download a dependency snapshot",
		Long: `Download a dependency snapshot from the analyzer and write it as graph.json.

The source is an analyzer URL or a graph.json path; it defaults to the
configured analyzer endpoint. Responses are cached unless --refresh is set.
Without --output the snapshot is written to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.pipelineOptions(sourceArg(args))
			opts.Refresh = refresh

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			data, err := runner.Fetch(ctx, opts)
			if err != nil {
				return fmt.Errorf("load %s: %w", opts.SourceRef(), err)
			}

			if output == "" || output == "-" {
				return graph.WriteGraph(cmd.OutOrStdout(), data)
			}
			if err := graph.WriteGraphFile(data, output); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			printSuccess("Fetched snapshot")
			printFile(output)
			printStats(layoutStats{nodes: len(data.Nodes), edges: len(data.Edges), settled: true})
			printNewline()
			printNextStep("Layout", appName+" layout "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached analyzer response")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
