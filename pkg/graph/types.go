package graph

import (
	"math"
	"slices"

	"github.com/matzehuels/depforce/internal/validation"
)

// =============================================================================
// GraphData - Layout Input Snapshot
// =============================================================================

// GraphData is an ordered list of nodes plus an ordered list of edges.
// The layout core never changes list membership.
type GraphData struct {
	Nodes []Node `json:"nodesList" bson:"nodes"`
	Edges []Edge `json:"edgesList" bson:"edges"`
}

// Node is a package in the dependency graph.
type Node struct {
	ID                 string `json:"id" bson:"id"`
	Name               string `json:"name" bson:"name"`
	Version            string `json:"version" bson:"version"`
	Description        string `json:"description" bson:"description"`
	Dir                string `json:"dir" bson:"dir"`
	Depth              int    `json:"depth" bson:"depth"`
	IsMultipleVersions bool   `json:"isMultipleVersions" bson:"is_multiple_versions"`

	// X and Y are nil until a layout assigns them.
	X *float64 `json:"x,omitempty" bson:"x,omitempty"`
	Y *float64 `json:"y,omitempty" bson:"y,omitempty"`
}

// Edge is a directed dependency between two node ids.
type Edge struct {
	Source     string `json:"source" bson:"source"` // display label
	SourceID   string `json:"sourceId" bson:"source_id"`
	Target     string `json:"target" bson:"target"` // display label
	TargetID   string `json:"targetId" bson:"target_id"`
	IsCircular bool   `json:"isCircular" bson:"is_circular"`
}

// HasPosition reports whether both coordinates are set.
func (n Node) HasPosition() bool { return n.X != nil && n.Y != nil }

// Position returns the node position, with NaN for unset coordinates.
func (n Node) Position() Point {
	p := Point{X: math.NaN(), Y: math.NaN()}
	if n.X != nil {
		p.X = *n.X
	}
	if n.Y != nil {
		p.Y = *n.Y
	}
	return p
}

// WithPosition returns a copy of n placed at p.
func (n Node) WithPosition(p Point) Node {
	x, y := p.X, p.Y
	n.X, n.Y = &x, &y
	return n
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.SourceID == e.TargetID }

// Root returns the designated root node, the first in insertion order.
func (g GraphData) Root() (Node, bool) {
	if len(g.Nodes) == 0 {
		return Node{}, false
	}
	return g.Nodes[0], true
}

// MaxDepth returns the root depth plus one, or 0 for an empty graph.
func (g GraphData) MaxDepth() int {
	root, ok := g.Root()
	if !ok {
		return 0
	}
	return root.Depth + 1
}

// Clone returns a deep copy; positions are copied, not shared.
func (g GraphData) Clone() GraphData {
	out := GraphData{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: slices.Clone(g.Edges),
	}
	for i, n := range g.Nodes {
		if n.X != nil {
			x := *n.X
			n.X = &x
		}
		if n.Y != nil {
			y := *n.Y
			n.Y = &y
		}
		out.Nodes[i] = n
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	return out
}

// WithoutPositions returns a copy with every node position cleared.
func (g GraphData) WithoutPositions() GraphData {
	out := g.Clone()
	for i := range out.Nodes {
		out.Nodes[i].X, out.Nodes[i].Y = nil, nil
	}
	return out
}

// =============================================================================
// Geometry
// =============================================================================

// Point is a 2D coordinate in viewport units.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// IsSet reports whether both coordinates are finite numbers.
func (p Point) IsSet() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Viewport is the drawable area. It is fixed for one simulation run.
type Viewport struct {
	Width  float64 `json:"width" bson:"width" toml:"width" yaml:"width" validate:"gt=0,finite"`
	Height float64 `json:"height" bson:"height" toml:"height" yaml:"height" validate:"gt=0,finite"`
}

// Validate checks that both dimensions are positive and finite.
func (v Viewport) Validate() error {
	return validation.Struct(v)
}

// Center returns (width/2, height/2).
func (v Viewport) Center() Point {
	return Point{X: v.Width / 2, Y: v.Height / 2}
}

// Contains reports whether p lies inside [0, width] x [0, height].
func (v Viewport) Contains(p Point) bool {
	return p.X >= 0 && p.X <= v.Width && p.Y >= 0 && p.Y <= v.Height
}
