package sim

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/depforce/pkg/graph"
)

// State is the phase of a simulation run.
type State int

// Run states.
const (
	Initializing State = iota
	Ticking
	Settled
)

var stateNames = [...]string{"initializing", "ticking", "settled"}

// String returns the lowercase state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	i := slices.Index(stateNames[:], string(b))
	if i < 0 {
		return fmt.Errorf("unknown state %q", b)
	}
	*s = State(i)
	return nil
}

// Frame is a read-only copy of a run after a tick. Positions and Radii are
// parallel to the snapshot's Nodes.
type Frame struct {
	RunID     string        `json:"run_id"`
	Tick      int           `json:"tick"`
	Alpha     float64       `json:"alpha"`
	State     State         `json:"state"`
	Positions []graph.Point `json:"positions"`
	Radii     []float64     `json:"radii"`
}

// Nodes returns copies of data's nodes placed at the frame positions.
func (f Frame) Nodes(data graph.GraphData) []graph.Node {
	out := make([]graph.Node, len(data.Nodes))
	for i, n := range data.Nodes {
		if i < len(f.Positions) {
			n = n.WithPosition(f.Positions[i])
		}
		out[i] = n
	}
	return out
}

// Layout converts the frame into a serializable layout.
func (f Frame) Layout(data graph.GraphData, vp graph.Viewport, seed uint64) graph.Layout {
	return graph.Layout{
		Width:    vp.Width,
		Height:   vp.Height,
		Seed:     seed,
		Ticks:    f.Tick,
		Alpha:    f.Alpha,
		Settled:  f.State == Settled,
		MaxDepth: data.MaxDepth(),
		Nodes:    f.Nodes(data),
		Edges:    slices.Clone(data.Edges),
		Radii:    slices.Clone(f.Radii),
	}
}

// FrameFromLayout rebuilds the final frame of a stored layout.
func FrameFromLayout(l graph.Layout) Frame {
	f := Frame{
		Tick:      l.Ticks,
		Alpha:     l.Alpha,
		State:     Ticking,
		Positions: make([]graph.Point, len(l.Nodes)),
		Radii:     slices.Clone(l.Radii),
	}
	if l.Settled {
		f.State = Settled
	}
	for i, n := range l.Nodes {
		f.Positions[i] = n.Position()
	}
	return f
}

// MarshalFrame encodes a frame for streaming.
func MarshalFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}
