package sim

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/force"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/observability"
)

// DefaultFrameInterval paces Run at 60 ticks per second.
const DefaultFrameInterval = time.Second / 60

// Simulation is one layout run over an immutable snapshot.
//
// Tick and Run must be driven from a single goroutine. Frame, State, Alpha
// and Ticks may be called from any goroutine and observe the state as of
// the last completed tick.
type Simulation struct {
	cfg      config
	id       string
	data     graph.GraphData
	viewport graph.Viewport

	mu         sync.Mutex
	bodies     []force.Body
	forces     []force.Named
	rng        *rand.Rand
	radii      []float64
	degenerate []int
	alpha      float64
	state      State
	ticks      int
	started    time.Time

	running atomic.Bool
}

// New validates the snapshot and viewport, composes the forces and seeds
// node positions. Invalid input rejects the run before any tick: graphs
// with unknown edge endpoints fail with MALFORMED_GRAPH.
func New(data graph.GraphData, vp graph.Viewport, opts ...Option) (*Simulation, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s, err := newSimulation(data, vp, cfg)
	if err != nil {
		observability.Simulation().OnRunRejected(err)
		cfg.logger.Warn("layout run rejected", "err", err)
		return nil, err
	}

	observability.Simulation().OnRunStart(s.id, len(data.Nodes), len(data.Edges))
	cfg.logger.Debug("layout run started", "run", s.id, "nodes", len(data.Nodes), "edges", len(data.Edges), "seed", cfg.seed)
	if err := DegenerateError(s.data, s.degenerate); err != nil {
		cfg.logger.Warn("degenerate node geometry", "run", s.id, "err", err)
	}
	return s, nil
}

func newSimulation(data graph.GraphData, vp graph.Viewport, cfg config) (*Simulation, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	forces, err := force.Compose(data, vp, cfg.params)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:      cfg,
		id:       cfg.runID,
		data:     data.Clone(),
		viewport: vp,
		bodies:   make([]force.Body, len(data.Nodes)),
		forces:   forces,
		rng:      force.NewRand(cfg.seed),
		alpha:    1,
		state:    Initializing,
		started:  time.Now(),
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.radii, s.degenerate = Radii(s.data, cfg.radius)
	s.place()
	for _, f := range s.forces {
		f.Force.Initialize(s.bodies, s.rng)
	}
	return s, nil
}

// ID returns the run id.
func (s *Simulation) ID() string { return s.id }

// Data returns the snapshot the run lays out. Callers must not modify it.
func (s *Simulation) Data() graph.GraphData { return s.data }

// Viewport returns the frame the run clamps to.
func (s *Simulation) Viewport() graph.Viewport { return s.viewport }

// Seed returns the tie-break seed.
func (s *Simulation) Seed() uint64 { return s.cfg.seed }

// Degenerate returns the indices of nodes drawn at the minimum radius.
func (s *Simulation) Degenerate() []int { return slices.Clone(s.degenerate) }

// Forces returns the names of the composed forces in application order.
func (s *Simulation) Forces() []string {
	names := make([]string, len(s.forces))
	for i, f := range s.forces {
		names[i] = f.Name
	}
	return names
}

// Tick advances the run by one step and returns the resulting frame. The
// tick callback, if any, is invoked after the state is updated.
func (s *Simulation) Tick() Frame {
	start := time.Now()

	s.mu.Lock()
	if s.state == Initializing {
		s.state = Ticking
	}
	s.alpha += (s.cfg.alphaTarget - s.alpha) * s.cfg.alphaDecay
	for _, f := range s.forces {
		f.Force.Apply(s.alpha)
	}
	s.integrate()
	s.clamp()
	s.ticks++

	settledNow := false
	if s.state != Settled && s.alpha < s.cfg.alphaMin {
		s.state = Settled
		settledNow = true
	}
	frame := s.frameLocked()
	onTick := s.cfg.onTick
	s.mu.Unlock()

	hooks := observability.Simulation()
	hooks.OnTick(s.id, frame.Tick, frame.Alpha, time.Since(start))
	if settledNow {
		elapsed := time.Since(s.started)
		hooks.OnSettled(s.id, frame.Tick, elapsed)
		s.cfg.logger.Debug("layout run settled", "run", s.id, "ticks", frame.Tick, "duration", elapsed)
	}
	if onTick != nil {
		onTick(frame)
	}
	return frame
}

// integrate applies friction and moves every body by its velocity.
func (s *Simulation) integrate() {
	keep := 1 - s.cfg.velocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		b.VX *= keep
		b.VY *= keep
		b.X += b.VX
		b.Y += b.VY
	}
}

// clamp keeps every position within [buffer, extent-buffer] on both axes.
func (s *Simulation) clamp() {
	w, h := s.viewport.Width, s.viewport.Height
	loX, hiX := bounds(w, s.cfg.buffer)
	loY, hiY := bounds(h, s.cfg.buffer)
	for i := range s.bodies {
		b := &s.bodies[i]
		b.X = clamp(b.X, loX, hiX, w/2)
		b.Y = clamp(b.Y, loY, hiY, h/2)
	}
}

// Step runs n ticks and returns the last frame.
func (s *Simulation) Step(n int) Frame {
	frame := s.Frame()
	for i := 0; i < n; i++ {
		frame = s.Tick()
	}
	return frame
}

// Settle ticks until the run settles or maxTicks ticks have run in this
// call. maxTicks <= 0 uses DefaultMaxTicks.
func (s *Simulation) Settle(maxTicks int) Frame {
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	frame := s.Frame()
	for i := 0; i < maxTicks && frame.State != Settled; i++ {
		frame = s.Tick()
	}
	return frame
}

// Run ticks once per interval until the run settles or ctx is done. It
// returns ctx.Err() on cancellation and nil once settled. A second
// concurrent Run on the same simulation fails.
func (s *Simulation) Run(ctx context.Context, interval time.Duration) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeInternal, "run %s is already being driven", s.id)
	}
	defer s.running.Store(false)

	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for s.State() != Settled {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
	return nil
}

// Reheat sets alpha and resumes ticking; a settled run starts moving again.
func (s *Simulation) Reheat(alpha float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alpha = math.Max(0, math.Min(1, alpha))
	if s.alpha >= s.cfg.alphaMin {
		s.state = Ticking
	}
}

// Frame returns a copy of the current state.
func (s *Simulation) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

func (s *Simulation) frameLocked() Frame {
	positions := make([]graph.Point, len(s.bodies))
	for i, b := range s.bodies {
		positions[i] = graph.Point{X: b.X, Y: b.Y}
	}
	return Frame{
		RunID:     s.id,
		Tick:      s.ticks,
		Alpha:     s.alpha,
		State:     s.state,
		Positions: positions,
		Radii:     slices.Clone(s.radii),
	}
}

// Layout returns the current positions as a serializable layout.
func (s *Simulation) Layout() graph.Layout {
	return s.Frame().Layout(s.data, s.viewport, s.cfg.seed)
}

// State returns the current run state.
func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Alpha returns the current influence scalar.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Ticks returns the number of completed ticks.
func (s *Simulation) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}
