// Package cli implements the depforce command-line interface.
//
// Commands:
//   - fetch: download a snapshot from the analyzer or read a graph.json file
//   - layout: settle a layout and write layout.json
//   - render: produce SVG, HTML, DOT, PNG, JPG or JSON outputs
//   - serve: stream the simulation to browsers over a websocket
//   - watch: re-render whenever a graph file changes
//   - preview: run the simulation in the terminal
//   - cache: manage the local cache
//
// Loggers travel through the command context; --verbose and --log-format
// apply to every command.
package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depforce/internal/config"
	"github.com/matzehuels/depforce/pkg/buildinfo"
	"github.com/matzehuels/depforce/pkg/cache"
	"github.com/matzehuels/depforce/pkg/pipeline"
	"github.com/matzehuels/depforce/pkg/render"
	"github.com/matzehuels/depforce/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for output paths and display.
const appName = "depforce"

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	logFormat  string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depforce lays out dependency graphs with a force simulation",
		Long: `depforce fetches a dependency snapshot from the analyzer (or a graph.json file),
settles it with a force-directed simulation and renders the result as SVG, HTML,
DOT or a Graphviz image. The serve command streams the simulation to a browser.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := configureLogger(c.Logger, c.verbose, c.logFormat); err != nil {
				return err
			}
			cmd.SetContext(withLogger(ctx, c.Logger.WithPrefix(cmd.Name())))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/depforce/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", logFormatText, "log format: text, json or logfmt")
	_ = root.RegisterFlagCompletionFunc("log-format", completeOneOf(logFormatText, logFormatJSON, logFormatLogfmt))

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file once per invocation.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// settings returns the loaded config, or the defaults before loading.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.settings()
	var backend cache.Cache = cache.NewNullCache()
	if !noCache {
		var err error
		if backend, err = cache.Open(ctx, cfg.Cache); err != nil {
			return nil, err
		}
	}
	runner := pipeline.NewRunner(backend, nil, c.Logger)
	runner.SourceOptions = cfg.SourceOptions()
	return runner, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions builds options for src from the config.
func (c *CLI) pipelineOptions(src string) pipeline.Options {
	cfg := c.settings()
	if src == "" {
		src = cfg.Source.Endpoint
	}
	opts := cfg.PipelineOptions(src)
	opts.Logger = c.Logger
	return opts
}

// sourceArg returns the optional positional source.
func sourceArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{string(render.FormatSVG)}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}

// basePath derives the output path stem. Analyzer URLs have no useful
// name, so their outputs are called graph.*.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input == "" || source.IsURL(input) {
		return "graph"
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".layout")
}
