package sim

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depforce/pkg/cache"
	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
)

// RedrawFunc draws a frame with a theme outside the tick loop.
type RedrawFunc func(Frame, graph.Theme)

// Controller owns the current run for a view. A new run starts only when
// the snapshot or viewport changes; a theme change redraws the current
// frame once without restarting. Repeated updates with identical input
// are ignored.
//
// Unless created with WithManualTicks, the controller drives each run on
// its own goroutine and cancels it when the run is replaced or the
// controller is closed.
type Controller struct {
	parent   context.Context
	simOpts  []Option
	interval time.Duration
	manual   bool
	redraw   RedrawFunc
	logger   *log.Logger

	mu       sync.Mutex
	key      string
	theme    graph.Theme
	hasTheme bool
	sim      *Simulation
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithSimOptions sets the options every run is created with.
func WithSimOptions(opts ...Option) ControllerOption {
	return func(c *Controller) { c.simOpts = append(c.simOpts, opts...) }
}

// WithInterval sets the tick interval of owned runs.
func WithInterval(d time.Duration) ControllerOption {
	return func(c *Controller) { c.interval = d }
}

// WithManualTicks disables the owned run loop; the caller ticks runs.
func WithManualTicks() ControllerOption {
	return func(c *Controller) { c.manual = true }
}

// WithRedraw sets the callback used for out-of-loop redraws.
func WithRedraw(fn RedrawFunc) ControllerOption {
	return func(c *Controller) { c.redraw = fn }
}

// WithControllerLogger sets the logger.
func WithControllerLogger(l *log.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller whose runs live at most as long as ctx.
func NewController(ctx context.Context, opts ...ControllerOption) *Controller {
	c := &Controller{
		parent:   ctx,
		interval: DefaultFrameInterval,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Update applies new input. It returns the current run and whether a new
// run was started. On error the previous run, if any, stays current.
func (c *Controller) Update(data graph.GraphData, vp graph.Viewport, theme graph.Theme) (*Simulation, bool, error) {
	key, err := runKey(data, vp)
	if err != nil {
		return c.Current(), false, err
	}

	c.mu.Lock()
	if c.sim != nil && key == c.key {
		sim := c.sim
		changed := !c.hasTheme || !themeEqual(theme, c.theme)
		c.theme, c.hasTheme = theme, true
		c.mu.Unlock()
		if changed {
			c.logger.Debug("theme changed, redrawing", "run", sim.ID(), "theme", theme.Name)
			c.doRedraw(sim, theme)
		}
		return sim, false, nil
	}
	c.mu.Unlock()

	sim, err := New(data, vp, c.simOpts...)
	if err != nil {
		return c.Current(), false, err
	}

	c.mu.Lock()
	c.stopLocked()
	c.sim, c.key, c.theme, c.hasTheme = sim, key, theme, true
	c.startLocked(sim)
	c.mu.Unlock()

	c.logger.Debug("started layout run", "run", sim.ID(), "nodes", len(data.Nodes), "width", vp.Width, "height", vp.Height)
	c.doRedraw(sim, theme)
	return sim, true, nil
}

// Redraw draws the current frame once with the current theme.
func (c *Controller) Redraw() {
	c.mu.Lock()
	sim, theme := c.sim, c.theme
	c.mu.Unlock()
	if sim != nil {
		c.doRedraw(sim, theme)
	}
}

// Current returns the current run, or nil before the first Update.
func (c *Controller) Current() *Simulation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim
}

// Theme returns the theme of the last accepted Update.
func (c *Controller) Theme() graph.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// Close cancels the owned run loop and waits for it to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) doRedraw(sim *Simulation, theme graph.Theme) {
	if c.redraw != nil {
		c.redraw(sim.Frame(), theme)
	}
}

func (c *Controller) startLocked(sim *Simulation) {
	if c.manual {
		return
	}
	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := sim.Run(ctx, c.interval); err != nil && !stderrors.Is(err, context.Canceled) {
			c.logger.Warn("layout run stopped", "run", sim.ID(), "err", err)
		}
	}()
}

func (c *Controller) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// runKey identifies the input of a run: snapshot contents and viewport.
func runKey(data graph.GraphData, vp graph.Viewport) (string, error) {
	b, err := json.Marshal(struct {
		Data     graph.GraphData `json:"data"`
		Viewport graph.Viewport  `json:"viewport"`
	}{data, vp})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "encode run input")
	}
	return cache.Hash(b), nil
}

func themeEqual(a, b graph.Theme) bool {
	return slices.Equal(a.ArrowColors, b.ArrowColors) &&
		slices.Equal(themeColors(a), themeColors(b))
}

func themeColors(t graph.Theme) []string {
	return []string{
		t.Name, t.CircularEdgeColor, t.EdgeColor, t.RootNodeColor,
		t.MultipleVersionsColor, t.NodeColor, t.TooltipBorderColor,
		t.TooltipBackgroundColor, t.TooltipTextColor,
	}
}
