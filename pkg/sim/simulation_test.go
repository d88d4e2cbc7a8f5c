package sim

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/observability"
)

var testViewport = graph.Viewport{Width: 800, Height: 600}

func testGraph() graph.GraphData {
	return graph.GraphData{
		Nodes: []graph.Node{
			{ID: "app@1.0.0", Name: "app", Depth: 3},
			{ID: "http@2.0.0", Name: "http", Depth: 2},
			{ID: "json@1.1.0", Name: "json", Depth: 2, IsMultipleVersions: true},
			{ID: "json@1.2.0", Name: "json", Depth: 1, IsMultipleVersions: true},
			{ID: "log@0.3.0", Name: "log", Depth: 0},
		},
		Edges: []graph.Edge{
			{SourceID: "app@1.0.0", TargetID: "http@2.0.0"},
			{SourceID: "app@1.0.0", TargetID: "json@1.1.0"},
			{SourceID: "http@2.0.0", TargetID: "json@1.2.0"},
			{SourceID: "json@1.2.0", TargetID: "log@0.3.0"},
			{SourceID: "log@0.3.0", TargetID: "app@1.0.0", IsCircular: true},
		},
	}
}

func newTestSim(t *testing.T, data graph.GraphData, vp graph.Viewport, opts ...Option) *Simulation {
	t.Helper()
	s, err := New(data, vp, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func assertInBounds(t *testing.T, f Frame, vp graph.Viewport, buffer float64) {
	t.Helper()
	for i, p := range f.Positions {
		if p.X < buffer || p.X > vp.Width-buffer || p.Y < buffer || p.Y > vp.Height-buffer {
			t.Fatalf("tick %d: node %d at (%v, %v) outside clamp box", f.Tick, i, p.X, p.Y)
		}
	}
}

type countingHooks struct {
	observability.NoopSimulationHooks
	started, rejected, ticks, settled atomic.Int32
}

func (h *countingHooks) OnRunStart(string, int, int)                { h.started.Add(1) }
func (h *countingHooks) OnRunRejected(error)                        { h.rejected.Add(1) }
func (h *countingHooks) OnTick(string, int, float64, time.Duration) { h.ticks.Add(1) }
func (h *countingHooks) OnSettled(string, int, time.Duration)       { h.settled.Add(1) }

func TestNewRejectsMalformedGraph(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetSimulationHooks(hooks)
	defer observability.Reset()

	data := testGraph()
	data.Edges = append(data.Edges, graph.Edge{SourceID: "app@1.0.0", TargetID: "missing@0.0.0"})

	_, err := New(data, testViewport)
	if !errors.Is(err, errors.ErrCodeMalformedGraph) {
		t.Fatalf("New() error = %v, want MALFORMED_GRAPH", err)
	}
	if hooks.rejected.Load() != 1 || hooks.started.Load() != 0 {
		t.Errorf("rejected = %d, started = %d", hooks.rejected.Load(), hooks.started.Load())
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		vp   graph.Viewport
		opts []Option
	}{
		{"ZeroViewport", graph.Viewport{}, nil},
		{"InfiniteWidth", graph.Viewport{Width: math.Inf(1), Height: 600}, nil},
		{"AlphaDecay", testViewport, []Option{WithAlphaDecay(1.5)}},
		{"AlphaMin", testViewport, []Option{WithAlphaMin(0)}},
		{"VelocityDecay", testViewport, []Option{WithVelocityDecay(-0.1)}},
		{"Buffer", testViewport, []Option{WithBuffer(-1)}},
		{"Placement", testViewport, []Option{WithPlacement("grid")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(testGraph(), tt.vp, tt.opts...); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("New() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestStateMachine(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetSimulationHooks(hooks)
	defer observability.Reset()

	s := newTestSim(t, testGraph(), testViewport)
	if s.State() != Initializing || s.Alpha() != 1 || s.Ticks() != 0 {
		t.Fatalf("initial state = %v alpha = %v ticks = %d", s.State(), s.Alpha(), s.Ticks())
	}

	f := s.Tick()
	if f.State != Ticking || f.Tick != 1 {
		t.Errorf("after one tick: state = %v tick = %d", f.State, f.Tick)
	}
	if want := 1 - DefaultAlphaDecay; math.Abs(f.Alpha-want) > 1e-12 {
		t.Errorf("alpha = %v, want %v", f.Alpha, want)
	}

	f = s.Settle(0)
	if f.State != Settled {
		t.Fatalf("Settle() state = %v", f.State)
	}
	if f.Tick < 299 || f.Tick > 302 {
		t.Errorf("settled after %d ticks, want about 300", f.Tick)
	}
	if f.Alpha >= DefaultAlphaMin {
		t.Errorf("settled alpha = %v", f.Alpha)
	}
	if hooks.settled.Load() != 1 || int(hooks.ticks.Load()) != f.Tick {
		t.Errorf("hooks: settled = %d ticks = %d", hooks.settled.Load(), hooks.ticks.Load())
	}

	// Ticking past settle keeps the state and has negligible effect.
	before := s.Frame()
	after := s.Tick()
	if after.State != Settled {
		t.Errorf("state after extra tick = %v", after.State)
	}
	for i := range before.Positions {
		if d := math.Hypot(after.Positions[i].X-before.Positions[i].X, after.Positions[i].Y-before.Positions[i].Y); d > 1 {
			t.Errorf("node %d moved %v after settling", i, d)
		}
	}
}

func TestClampHoldsEveryTick(t *testing.T) {
	// A cramped viewport forces repulsion against the walls.
	vp := graph.Viewport{Width: 120, Height: 90}
	s := newTestSim(t, testGraph(), vp)
	for i := 0; i < 200; i++ {
		assertInBounds(t, s.Tick(), vp, DefaultBuffer)
	}
}

func TestClampBufferWiderThanViewport(t *testing.T) {
	vp := graph.Viewport{Width: 30, Height: 30}
	s := newTestSim(t, testGraph(), vp)
	f := s.Tick()
	for i, p := range f.Positions {
		if p.X != 15 || p.Y != 15 {
			t.Errorf("node %d at (%v, %v), want (15, 15)", i, p.X, p.Y)
		}
	}
}

func TestDeterministic(t *testing.T) {
	for _, placement := range []Placement{PlacementPhyllotaxis, PlacementRandom} {
		t.Run(string(placement), func(t *testing.T) {
			a := newTestSim(t, testGraph(), testViewport, WithSeed(7), WithPlacement(placement)).Step(120)
			b := newTestSim(t, testGraph(), testViewport, WithSeed(7), WithPlacement(placement)).Step(120)
			for i := range a.Positions {
				if a.Positions[i] != b.Positions[i] {
					t.Fatalf("node %d: %v != %v", i, a.Positions[i], b.Positions[i])
				}
			}
		})
	}
}

func TestRandomPlacementDependsOnSeed(t *testing.T) {
	a := newTestSim(t, testGraph(), testViewport, WithSeed(1), WithPlacement(PlacementRandom)).Frame()
	b := newTestSim(t, testGraph(), testViewport, WithSeed(2), WithPlacement(PlacementRandom)).Frame()
	if a.Positions[0] == b.Positions[0] {
		t.Error("different seeds should place nodes differently")
	}
}

func TestSettledLayoutIsReproducible(t *testing.T) {
	a := newTestSim(t, testGraph(), testViewport).Settle(0)
	b := newTestSim(t, testGraph(), testViewport).Settle(0)
	if a.Tick != b.Tick {
		t.Fatalf("ticks differ: %d vs %d", a.Tick, b.Tick)
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Errorf("node %d: %v != %v", i, a.Positions[i], b.Positions[i])
		}
	}
}

func TestSelfLoop(t *testing.T) {
	data := graph.GraphData{
		Nodes: []graph.Node{{ID: "a", Depth: 1}, {ID: "b"}},
		Edges: []graph.Edge{{SourceID: "a", TargetID: "a"}, {SourceID: "a", TargetID: "b"}, {SourceID: "b", TargetID: "b"}},
	}
	s := newTestSim(t, data, testViewport)
	for i := 0; i < 300; i++ {
		f := s.Tick()
		for _, p := range f.Positions {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) {
				t.Fatalf("tick %d: NaN position", f.Tick)
			}
		}
		assertInBounds(t, f, testViewport, DefaultBuffer)
	}
}

func TestLinkedNodesApproachLinkDistance(t *testing.T) {
	data := graph.GraphData{
		Nodes: []graph.Node{{ID: "a", Depth: 1}, {ID: "b"}},
		Edges: []graph.Edge{{SourceID: "a", TargetID: "b"}},
	}
	f := newTestSim(t, data, graph.Viewport{Width: 2000, Height: 2000}).Settle(0)
	d := math.Hypot(f.Positions[0].X-f.Positions[1].X, f.Positions[0].Y-f.Positions[1].Y)
	if d < 50 || d > 400 {
		t.Errorf("linked distance = %v, want near the link distance", d)
	}
}

func TestPresetPositionsKept(t *testing.T) {
	data := testGraph()
	data.Nodes[2] = data.Nodes[2].WithPosition(graph.Point{X: 123, Y: 456})

	f := newTestSim(t, data, testViewport).Frame()
	if f.Positions[2] != (graph.Point{X: 123, Y: 456}) {
		t.Errorf("preset position = %v", f.Positions[2])
	}
	if f.Positions[0] == f.Positions[1] {
		t.Error("unplaced nodes should not coincide")
	}
}

func TestSnapshotIsNotMutated(t *testing.T) {
	data := testGraph()
	s := newTestSim(t, data, testViewport)
	s.Step(10)
	for _, n := range data.Nodes {
		if n.HasPosition() {
			t.Fatalf("input node %s was given a position", n.ID)
		}
	}
	if s.Data().Nodes[0].HasPosition() {
		t.Error("run snapshot should not carry positions")
	}
}

func TestTickCallbackReceivesCopy(t *testing.T) {
	var frames []Frame
	s := newTestSim(t, testGraph(), testViewport, WithOnTick(func(f Frame) {
		f.Positions[0] = graph.Point{X: -1, Y: -1}
		frames = append(frames, f)
	}))
	s.Step(3)

	if len(frames) != 3 {
		t.Fatalf("callback ran %d times, want 3", len(frames))
	}
	if frames[2].Tick != 3 {
		t.Errorf("last frame tick = %d", frames[2].Tick)
	}
	if p := s.Frame().Positions[0]; p.X < 0 {
		t.Error("callback mutation leaked into the simulation")
	}
}

func TestRunSettles(t *testing.T) {
	s := newTestSim(t, testGraph(), testViewport, WithAlphaDecay(0.5))
	if err := s.Run(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s.State() != Settled {
		t.Errorf("state = %v, want settled", s.State())
	}
}

func TestRunCancel(t *testing.T) {
	s := newTestSim(t, testGraph(), testViewport)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx, time.Hour); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if s.Ticks() != 0 {
		t.Errorf("ticks = %d after cancelled run", s.Ticks())
	}
}

func TestRunRejectsConcurrentDriver(t *testing.T) {
	s := newTestSim(t, testGraph(), testViewport)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Hour) }()

	deadline := time.After(time.Second)
	for !s.running.Load() {
		select {
		case <-deadline:
			t.Fatal("first Run never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if err := s.Run(ctx, time.Millisecond); err == nil {
		t.Error("second Run should fail")
	}
	cancel()
	<-done
}

func TestReheat(t *testing.T) {
	s := newTestSim(t, testGraph(), testViewport)
	s.Settle(0)
	s.Reheat(0.3)
	if s.State() != Ticking || s.Alpha() != 0.3 {
		t.Errorf("after Reheat: state = %v alpha = %v", s.State(), s.Alpha())
	}
}

func TestEmptyGraph(t *testing.T) {
	s := newTestSim(t, graph.GraphData{}, testViewport)
	f := s.Settle(0)
	if len(f.Positions) != 0 || f.State != Settled {
		t.Errorf("empty graph frame = %+v", f)
	}
}

func TestForcesOrder(t *testing.T) {
	s := newTestSim(t, testGraph(), testViewport)
	want := []string{"link", "charge", "collide", "center"}
	got := s.Forces()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("force %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLayout(t *testing.T) {
	s := newTestSim(t, testGraph(), testViewport, WithSeed(9))
	s.Settle(0)
	l := s.Layout()

	if err := l.Validate(); err != nil {
		t.Fatalf("Layout().Validate() = %v", err)
	}
	if !l.Settled || l.Seed != 9 || l.MaxDepth != 4 || l.Width != 800 {
		t.Errorf("layout header = %+v", l)
	}

	f := FrameFromLayout(l)
	if f.State != Settled || f.Positions[1] != s.Frame().Positions[1] {
		t.Errorf("FrameFromLayout() = %+v", f)
	}
}
