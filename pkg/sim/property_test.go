package sim

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/depforce/pkg/graph"
)

// chainGraph builds n nodes where node i depends on node i+1, plus a back
// edge from the last node to the first when n > 2.
func chainGraph(n int) graph.GraphData {
	var data graph.GraphData
	for i := 0; i < n; i++ {
		data.Nodes = append(data.Nodes, graph.Node{ID: fmt.Sprintf("n%d", i), Depth: n - 1 - i})
	}
	for i := 0; i+1 < n; i++ {
		data.Edges = append(data.Edges, graph.Edge{SourceID: data.Nodes[i].ID, TargetID: data.Nodes[i+1].ID})
	}
	if n > 2 {
		data.Edges = append(data.Edges, graph.Edge{SourceID: data.Nodes[n-1].ID, TargetID: data.Nodes[0].ID, IsCircular: true})
	}
	return data
}

func TestSimulationProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 40
	properties := gopter.NewProperties(params)

	properties.Property("positions stay inside the clamp box", prop.ForAll(
		func(n int, w, h float64, seed uint64) bool {
			vp := graph.Viewport{Width: w, Height: h}
			s, err := New(chainGraph(n), vp, WithSeed(seed), WithPlacement(PlacementRandom))
			if err != nil {
				return false
			}
			for i := 0; i < 60; i++ {
				for _, p := range s.Tick().Positions {
					if p.X < DefaultBuffer || p.X > w-DefaultBuffer || p.Y < DefaultBuffer || p.Y > h-DefaultBuffer {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 25),
		gen.Float64Range(60, 1600),
		gen.Float64Range(60, 1200),
		gen.UInt64(),
	))

	properties.Property("same seed gives the same frames", prop.ForAll(
		func(n int, seed uint64) bool {
			a, _ := New(chainGraph(n), testViewport, WithSeed(seed), WithPlacement(PlacementRandom))
			b, _ := New(chainGraph(n), testViewport, WithSeed(seed), WithPlacement(PlacementRandom))
			fa, fb := a.Step(40), b.Step(40)
			for i := range fa.Positions {
				if fa.Positions[i] != fb.Positions[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 25),
		gen.UInt64(),
	))

	properties.Property("alpha never increases without reheat", prop.ForAll(
		func(n, ticks int) bool {
			s, _ := New(chainGraph(n), testViewport)
			prev := s.Alpha()
			for i := 0; i < ticks; i++ {
				a := s.Tick().Alpha
				if a > prev {
					return false
				}
				prev = a
			}
			return true
		},
		gen.IntRange(0, 10),
		gen.IntRange(1, 400),
	))

	properties.Property("radius shrinks with distance from root", prop.ForAll(
		func(depth, span int) bool {
			r := DefaultRadiusScale()
			maxDepth := depth + span + 1
			outer, ok1 := r.Radius(maxDepth, depth)
			inner, ok2 := r.Radius(maxDepth, depth+1)
			return ok1 && ok2 && outer <= inner && outer >= r.Min
		},
		gen.IntRange(0, 100),
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t)
}
