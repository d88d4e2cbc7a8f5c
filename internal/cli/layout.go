package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/pipeline"
)

// layoutCommand creates the layout command for settling force layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		lf     layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [source]",
		Short: "Settle a force layout for a dependency snapshot",
		Long: `Settle a force layout for a dependency snapshot.

The layout command loads the snapshot (an analyzer URL or a graph.json file),
runs the force simulation until it settles and writes the positioned nodes to
a layout.json file that 'render --layout' turns into images.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := sourceArg(args)
			if output == "" {
				output = basePath("", src) + ".layout.json"
			}
			return c.runLayout(cmd, src, output, &lf)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	lf.register(cmd)

	return cmd
}

// runLayout loads the snapshot, settles it, and writes the layout.
func (c *CLI) runLayout(cmd *cobra.Command, src, output string, lf *layoutFlags) error {
	ctx := cmd.Context()
	opts := c.pipelineOptions(src)
	lf.apply(cmd, &opts)
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := errors.ValidatePath(output); err != nil {
		return err
	}
	data, err := c.fetchWithSpinner(ctx, runner, opts)
	if err != nil {
		return err
	}

	sp := startSpinner(ctx, fmt.Sprintf("Settling %d nodes...", len(data.Nodes)))
	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, data, opts)
	if err != nil {
		sp.Fail("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	sp.Stop()

	if err := graph.WriteLayoutFile(l, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	if l.Settled {
		printSuccess("Layout settled")
	} else {
		printWarning("Layout stopped after %d ticks without settling", l.Ticks)
	}
	printFile(output)
	printStats(layoutStats{nodes: len(l.Nodes), edges: len(l.Edges), ticks: l.Ticks, settled: l.Settled, cached: cacheHit})
	printNewline()
	printNextStep("Render", appName+" render --layout "+output)
	return nil
}

// fetchWithSpinner loads the snapshot behind a spinner.
func (c *CLI) fetchWithSpinner(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (graph.GraphData, error) {
	ref := opts.SourceRef()
	sp := startSpinner(ctx, "Loading "+ref+"...")
	data, err := runner.Fetch(ctx, opts)
	if err != nil {
		sp.Fail("Load failed")
		return graph.GraphData{}, fmt.Errorf("load %s: %w", ref, err)
	}
	sp.Stop()
	loggerFromContext(ctx).Debug("loaded snapshot", "source", ref, "nodes", len(data.Nodes), "edges", len(data.Edges))
	return data, nil
}
