package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/observability"
	"github.com/matzehuels/depforce/pkg/server"
)

const defaultDebounce = 100 * time.Millisecond

// watchCommand creates the watch command for re-rendering on change.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		lf       layoutFlags
		rf       renderFlags
		sf       serveFlags
		serve    bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <graph.json>",
		Short: "Re-render a graph file whenever it changes",
		Long: `Re-render a graph file whenever it changes.

Every write to the file settles a new layout and rewrites the outputs. With
--serve the live view is served as well and connected browsers switch to the
new snapshot as soon as it is written. Writes that leave the file invalid are
logged and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			opts := c.pipelineOptions(path)
			lf.apply(cmd, &opts)
			rf.apply(cmd, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			g, err := graph.ReadGraphFile(path)
			if err != nil {
				return fmt.Errorf("load graph %s: %w", path, err)
			}

			runner, err := c.newRunner(ctx, lf.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var srv *server.Server
			rebuild := func(g graph.GraphData) {
				start := time.Now()
				l, err := runner.Layout(ctx, g, opts)
				if err != nil {
					c.Logger.Error("layout failed", "path", path, "err", err)
					return
				}
				artifacts, err := runner.Render(ctx, l, opts)
				if err != nil {
					c.Logger.Error("render failed", "path", path, "err", err)
					return
				}
				paths, err := writeArtifacts(artifacts, opts.Formats, basePath(rf.output, path), rf.output)
				if err != nil {
					c.Logger.Error("write failed", "err", err)
					return
				}
				if srv != nil {
					srv.SetGraph(g)
				}
				c.Logger.Info("rebuilt", "nodes", len(g.Nodes), "ticks", l.Ticks, "files", paths, "took", time.Since(start).Round(time.Millisecond))
			}
			rebuild(g)

			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			if serve {
				load := func(context.Context, bool) (graph.GraphData, error) {
					return graph.ReadGraphFile(path)
				}
				if srv, err = c.newServer(cmd, &sf, runner, load); err != nil {
					return err
				}
				defer observability.Reset()
				go func() {
					if err := srv.ListenAndServe(watchCtx); err != nil {
						c.Logger.Error("live view stopped", "err", err)
						cancel()
					}
				}()
				printKeyValue("Live view", StyleLink.Render("http://"+c.serverAddr(cmd, &sf)))
			}

			printInfo("Watching %s", path)
			printDetail("Press Ctrl+C to stop")
			return watchFile(watchCtx, path, debounce, c.Logger, rebuild)
		},
	}

	lf.register(cmd)
	rf.register(cmd)
	sf.register(cmd)
	cmd.Flags().BoolVar(&serve, "serve", false, "also serve the live view")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before rebuilding")

	return cmd
}

// watchFile calls onChange with the re-read graph after each burst of
// writes to path. The parent directory is watched so that editors which
// replace the file are followed. It returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, logger *log.Logger, onChange func(graph.GraphData)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create file watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", filepath.Dir(abs))
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("graph changed", "path", path, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "err", err)

		case <-timer.C:
			g, err := graph.ReadGraphFile(abs)
			if err != nil {
				logger.Warn("skipping invalid graph", "path", path, "err", err)
				continue
			}
			onChange(g)
		}
	}
}
