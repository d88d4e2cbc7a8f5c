package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/metrics"
	"github.com/matzehuels/depforce/pkg/observability"
	"github.com/matzehuels/depforce/pkg/pipeline"
	"github.com/matzehuels/depforce/pkg/server"
)

// serveFlags configure the live view server.
type serveFlags struct {
	addr   string
	maxFPS float64
}

func (f *serveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Float64Var(&f.maxFPS, "max-fps", server.DefaultMaxFPS, "frames per second pushed to each browser (0: every tick)")
}

// serveCommand creates the serve command for the live view.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		sf      serveFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the live force layout in the browser",
		Long: `Serve the live force layout in the browser.

Each browser connection runs its own simulation and receives one frame per
tick over a websocket. Resizing the window restarts the run; switching the
theme only redraws. Prometheus metrics are exposed on /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			src := c.serveSource(args)
			load := func(ctx context.Context, refresh bool) (graph.GraphData, error) {
				return runner.Fetch(ctx, pipeline.Options{Source: src, Refresh: refresh, Logger: c.Logger})
			}
			srv, err := c.newServer(cmd, &sf, runner, load)
			if err != nil {
				return err
			}
			defer observability.Reset()

			printSuccess("Serving %s", src)
			printKeyValue("Live view", StyleLink.Render("http://"+c.serverAddr(cmd, &sf)))
			printDetail("Press Ctrl+C to stop")
			return srv.ListenAndServe(ctx)
		},
	}

	sf.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// newServer builds a server from the config and flags and installs its
// metrics as the process-wide hooks.
func (c *CLI) newServer(cmd *cobra.Command, sf *serveFlags, runner *pipeline.Runner, load server.LoadFunc) (*server.Server, error) {
	cfg := c.settings().ServerConfig()
	cfg.Addr = c.serverAddr(cmd, sf)
	if cmd.Flags().Changed("max-fps") {
		cfg.MaxFPS = sf.maxFPS
	}

	reg := metrics.NewRegistry()
	srv, err := server.New(cfg, runner, load, server.WithMetrics(reg), server.WithLogger(c.Logger))
	if err != nil {
		return nil, err
	}
	reg.Install()
	return srv, nil
}

func (c *CLI) serverAddr(cmd *cobra.Command, sf *serveFlags) string {
	if cmd.Flags().Changed("addr") {
		return sf.addr
	}
	return c.settings().Server.Addr
}

// serveSource resolves the snapshot the live view reloads from: the
// argument, the configured endpoint, or the default analyzer.
func (c *CLI) serveSource(args []string) string {
	opts := c.pipelineOptions(sourceArg(args))
	return opts.SourceRef()
}
