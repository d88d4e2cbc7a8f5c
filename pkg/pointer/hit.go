package pointer

import (
	"math"

	"github.com/matzehuels/depforce/pkg/force"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/sim"
)

// EdgeStrokeWidth is the drawn edge width; DefaultEdgeTolerance is half of it.
const (
	EdgeStrokeWidth      = 3.0
	DefaultEdgeTolerance = EdgeStrokeWidth / 2
)

// NodeAt returns the index of the node whose disc contains p. Nodes are
// drawn in order, so on overlap the last one wins.
func NodeAt(f sim.Frame, p graph.Point) (int, bool) {
	for i := len(f.Positions) - 1; i >= 0; i-- {
		c := f.Positions[i]
		r := 0.0
		if i < len(f.Radii) {
			r = f.Radii[i]
		}
		if math.Hypot(p.X-c.X, p.Y-c.Y) <= r {
			return i, true
		}
	}
	return -1, false
}

// EdgeAt returns the index of the link nearest to p within tolerance of its
// segment. A tolerance <= 0 uses DefaultEdgeTolerance. Self loops have no
// drawn segment and are never hit.
func EdgeAt(f sim.Frame, links []force.Link, p graph.Point, tolerance float64) (int, bool) {
	if tolerance <= 0 {
		tolerance = DefaultEdgeTolerance
	}
	best, bestDist := -1, math.Inf(1)
	for i, l := range links {
		if l.Source == l.Target || !inRange(l, len(f.Positions)) {
			continue
		}
		d := segmentDistance(p, f.Positions[l.Source], f.Positions[l.Target])
		if d <= tolerance && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

func inRange(l force.Link, n int) bool {
	return l.Source >= 0 && l.Source < n && l.Target >= 0 && l.Target < n
}

// segmentDistance is the distance from p to segment ab.
func segmentDistance(p, a, b graph.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = max(0, min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// Kind says what a Target is.
type Kind string

// Target kinds.
const (
	KindNode Kind = "node"
	KindEdge Kind = "edge"
)

// Target is the element under the pointer and its tooltip text.
type Target struct {
	Kind  Kind   `json:"kind"`
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Hit resolves p to a node or, failing that, an edge. Nodes are drawn
// above edges and take precedence.
func Hit(data graph.GraphData, f sim.Frame, links []force.Link, p graph.Point) (Target, bool) {
	if i, ok := NodeAt(f, p); ok && i < len(data.Nodes) {
		return Target{Kind: KindNode, Index: i, Text: NodeTooltip(data.Nodes[i], data.MaxDepth())}, true
	}
	if i, ok := EdgeAt(f, links, p, 0); ok && i < len(data.Edges) {
		return Target{Kind: KindEdge, Index: i, Text: EdgeTooltip(data.Edges[i])}, true
	}
	return Target{}, false
}
