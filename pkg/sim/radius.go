package sim

import (
	"math"
	"strings"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
)

// RadiusScale holds the constants of the node radius formula.
type RadiusScale struct {
	Base  float64 `json:"base" toml:"base" yaml:"base"`
	Scale float64 `json:"scale" toml:"scale" yaml:"scale"`
	Min   float64 `json:"min" toml:"min" yaml:"min"`
}

// DefaultRadiusScale returns base 13, scale 2.2, minimum 1.
func DefaultRadiusScale() RadiusScale {
	return RadiusScale{Base: 13, Scale: 2.2, Min: 1}
}

// Radius returns the draw radius of a node at depth. ok is false when
// maxDepth-depth is not positive; the minimum radius is returned then.
// Radii below the minimum are raised to it.
func (r RadiusScale) Radius(maxDepth, depth int) (radius float64, ok bool) {
	span := maxDepth - depth
	if span <= 0 {
		return r.Min, false
	}
	return math.Max(r.Base-r.Scale*math.Log2(float64(span)), r.Min), true
}

// Radii computes every node's radius once per run. degenerate lists the
// indices of nodes that fell back to the minimum because of their depth.
func Radii(data graph.GraphData, r RadiusScale) (radii []float64, degenerate []int) {
	maxDepth := data.MaxDepth()
	radii = make([]float64, len(data.Nodes))
	for i, n := range data.Nodes {
		var ok bool
		if radii[i], ok = r.Radius(maxDepth, n.Depth); !ok {
			degenerate = append(degenerate, i)
		}
	}
	return radii, degenerate
}

// DegenerateError describes degenerate nodes as a DEGENERATE_GEOMETRY error
// for reporting. It returns nil when there are none.
func DegenerateError(data graph.GraphData, degenerate []int) error {
	if len(degenerate) == 0 {
		return nil
	}
	ids := make([]string, 0, min(len(degenerate), 5))
	for _, i := range degenerate[:min(len(degenerate), 5)] {
		ids = append(ids, data.Nodes[i].ID)
	}
	more := ""
	if len(degenerate) > len(ids) {
		more = ", ..."
	}
	return errors.New(errors.ErrCodeDegenerateGeometry,
		"%d node(s) at depth >= %d drawn at minimum radius: %s%s",
		len(degenerate), data.MaxDepth(), strings.Join(ids, ", "), more)
}
