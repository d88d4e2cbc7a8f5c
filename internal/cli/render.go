package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/pipeline"
	"github.com/matzehuels/depforce/pkg/render"
)

// renderCommand creates the render command for producing output files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		layoutPath string
		lf         layoutFlags
		rf         renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [source]",
		Short: "Render a dependency graph to SVG, HTML, DOT or images",
		Long: `Render a dependency graph to SVG, HTML, DOT, PNG, JPG or layout JSON.

Without --layout the snapshot is fetched and settled first (fetch → layout →
render). With --layout a layout.json produced by 'layout' is rendered as is.
PNG and JPG go through Graphviz neato with every node pinned to its position.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(sourceArg(args))
			lf.apply(cmd, &opts)
			rf.apply(cmd, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), lf.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			if layoutPath != "" {
				return c.renderSavedLayout(cmd.Context(), runner, layoutPath, rf.output, opts)
			}
			return c.runRender(cmd.Context(), runner, sourceArg(args), rf.output, opts)
		},
	}

	cmd.Flags().StringVar(&layoutPath, "layout", "", "render a saved layout.json instead of fetching")
	rf.register(cmd)
	lf.register(cmd)

	return cmd
}

// runRender runs the full pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) error {
	sp := startSpinner(ctx, "Loading "+opts.SourceRef()+"...")
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		sp.Fail("Render failed")
		return err
	}
	sp.Stop()

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, basePath(output, input), output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", opts.SourceRef())
	for _, p := range paths {
		printFile(p)
	}
	printStats(layoutStats{
		nodes:   result.Stats.NodeCount,
		edges:   result.Stats.EdgeCount,
		ticks:   result.Layout.Ticks,
		settled: result.Layout.Settled,
		cached:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	})
	return nil
}

// renderSavedLayout renders a layout.json without running the simulation.
func (c *CLI) renderSavedLayout(ctx context.Context, runner *pipeline.Runner, path, output string, opts pipeline.Options) error {
	l, err := graph.ReadLayoutFile(path)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", path, err)
	}
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	paths, err := writeArtifacts(artifacts, opts.Formats, basePath(output, path), output)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", path)
	for _, p := range paths {
		printFile(p)
	}
	printStats(layoutStats{nodes: len(l.Nodes), edges: len(l.Edges), ticks: l.Ticks, settled: l.Settled, cached: hit})
	return nil
}

// writeArtifacts writes one file per format. A single format honors
// output verbatim; several formats share base with their extensions.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, output string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, name := range formats {
		f, err := render.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		path := base + f.Ext()
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := errors.ValidatePath(path); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, artifacts[name], 0o644); err != nil {
			return nil, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
