package pointer

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/force"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/sim"
)

var vp = graph.Viewport{Width: 800, Height: 600}

func TestPlace(t *testing.T) {
	tip := Size{Width: 200, Height: 100}

	tests := []struct {
		name string
		p    graph.Point
		want graph.Point
	}{
		{"Center", graph.Point{X: 400, Y: 300}, graph.Point{X: 410, Y: 310}},
		{"TopLeft", graph.Point{X: 2, Y: 3}, graph.Point{X: 12, Y: 13}},
		{"RightEdge", graph.Point{X: 798, Y: 300}, graph.Point{X: 588, Y: 310}},
		{"BottomEdge", graph.Point{X: 400, Y: 597}, graph.Point{X: 410, Y: 487}},
		{"BottomRight", graph.Point{X: 795, Y: 595}, graph.Point{X: 585, Y: 485}},
		{"ExactFit", graph.Point{X: 590, Y: 490}, graph.Point{X: 600, Y: 500}},
		{"JustOver", graph.Point{X: 591, Y: 300}, graph.Point{X: 381, Y: 310}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Place(tt.p, tip, vp)
			if err != nil {
				t.Fatalf("Place() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Place(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPlacePinsWideTooltip(t *testing.T) {
	got, err := Place(graph.Point{X: 300, Y: 300}, Size{Width: 700, Height: 50}, vp)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if got.X != 0 {
		t.Errorf("X = %v, want pinned to 0", got.X)
	}
}

func TestPlaceTallerThanViewport(t *testing.T) {
	small := graph.Viewport{Width: 100, Height: 100}
	tip := Size{Width: 40, Height: 150}
	got, err := Place(graph.Point{X: 20, Y: 0}, tip, small)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if got.Y != 0 {
		t.Errorf("Y = %v, want pinned to 0", got.Y)
	}
	if tip.Fits(small) {
		t.Error("Fits() = true for a tooltip taller than the viewport")
	}
	if !(Size{Width: 100, Height: 100}).Fits(small) {
		t.Error("Fits() = false for a viewport-sized tooltip")
	}
}

func TestPlaceUnmeasurable(t *testing.T) {
	for _, tip := range []Size{
		{},
		{Width: 100},
		{Width: -1, Height: 20},
		{Width: math.NaN(), Height: 20},
		{Width: 20, Height: math.Inf(1)},
	} {
		if _, err := Place(graph.Point{X: 10, Y: 10}, tip, vp); !errors.Is(err, errors.ErrCodeUnmeasurableElement) {
			t.Errorf("Place(tip=%v) error = %v, want UNMEASURABLE_ELEMENT", tip, err)
		}
	}
}

func TestPlaceInvalidInput(t *testing.T) {
	tip := Size{Width: 10, Height: 10}
	if _, err := Place(graph.Point{X: 1, Y: 1}, tip, graph.Viewport{}); err == nil {
		t.Error("zero viewport should fail")
	}
	if _, err := Place(graph.Point{X: math.NaN(), Y: 1}, tip, vp); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NaN pointer error = %v", err)
	}
}

func TestPlaceNeverOverflowsNearEdges(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 500
	properties := gopter.NewProperties(params)

	properties.Property("tooltip stays in frame near every edge", prop.ForAll(
		func(w, h, tw, th, along, inset float64, side int) bool {
			view := graph.Viewport{Width: w, Height: h}
			tip := Size{Width: tw * w, Height: th * h}

			var p graph.Point
			switch side {
			case 0:
				p = graph.Point{X: inset, Y: along * h}
			case 1:
				p = graph.Point{X: w - inset, Y: along * h}
			case 2:
				p = graph.Point{X: along * w, Y: inset}
			default:
				p = graph.Point{X: along * w, Y: h - inset}
			}

			got, err := Place(p, tip, view)
			if err != nil {
				return false
			}
			return got.X >= 0 && got.Y >= 0 && got.X+tip.Width <= w && got.Y+tip.Height <= h
		},
		gen.Float64Range(100, 4000),
		gen.Float64Range(100, 4000),
		gen.Float64Range(0.01, 1),
		gen.Float64Range(0.01, 1),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 5),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}

func testFrame() (graph.GraphData, sim.Frame, []force.Link) {
	data := graph.GraphData{
		Nodes: []graph.Node{
			{ID: "app@1.0.0", Name: "app", Version: "1.0.0", Depth: 2, Description: "the app", Dir: "/src/app"},
			{ID: "http@2.0.0", Name: "http", Version: "2.0.0", Depth: 1},
			{ID: "log@0.3.0", Name: "log", Version: "0.3.0", Depth: 0},
		},
		Edges: []graph.Edge{
			{SourceID: "app@1.0.0", TargetID: "http@2.0.0"},
			{SourceID: "http@2.0.0", TargetID: "log@0.3.0"},
			{SourceID: "log@0.3.0", TargetID: "log@0.3.0"},
		},
	}
	f := sim.Frame{
		Positions: []graph.Point{{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 300, Y: 300}},
		Radii:     []float64{13, 10.8, 9.5},
	}
	links := []force.Link{{Source: 0, Target: 1}, {Source: 1, Target: 2}, {Source: 2, Target: 2}}
	return data, f, links
}

func TestNodeAt(t *testing.T) {
	_, f, _ := testFrame()

	if i, ok := NodeAt(f, graph.Point{X: 108, Y: 104}); !ok || i != 0 {
		t.Errorf("NodeAt(inside 0) = %d, %v", i, ok)
	}
	if _, ok := NodeAt(f, graph.Point{X: 200, Y: 200}); ok {
		t.Error("NodeAt(empty space) should miss")
	}

	// Overlapping discs: the later node is on top.
	f.Positions[2] = graph.Point{X: 105, Y: 100}
	if i, _ := NodeAt(f, graph.Point{X: 103, Y: 100}); i != 2 {
		t.Errorf("NodeAt(overlap) = %d, want 2", i)
	}
}

func TestEdgeAt(t *testing.T) {
	_, f, links := testFrame()

	tests := []struct {
		name string
		p    graph.Point
		want int
		ok   bool
	}{
		{"OnFirst", graph.Point{X: 200, Y: 101}, 0, true},
		{"OnSecond", graph.Point{X: 299, Y: 200}, 1, true},
		{"TooFar", graph.Point{X: 200, Y: 104}, -1, false},
		{"PastEndpoint", graph.Point{X: 50, Y: 100}, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EdgeAt(f, links, tt.p, 0)
			if got != tt.want || ok != tt.ok {
				t.Errorf("EdgeAt(%v) = %d, %v; want %d, %v", tt.p, got, ok, tt.want, tt.ok)
			}
		})
	}

	if _, ok := EdgeAt(f, links, graph.Point{X: 200, Y: 104}, 5); !ok {
		t.Error("wider tolerance should hit")
	}
	if _, ok := EdgeAt(f, []force.Link{{Source: 0, Target: 9}}, graph.Point{X: 100, Y: 100}, 5); ok {
		t.Error("out of range link should be skipped")
	}
}

func TestTooltips(t *testing.T) {
	data, _, _ := testFrame()

	want := "Name: app\nVersion: 1.0.0\nDepth: 1\nDescription: the app\nDir: /src/app"
	if got := NodeTooltip(data.Nodes[0], data.MaxDepth()); got != want {
		t.Errorf("NodeTooltip() =\n%s\nwant\n%s", got, want)
	}
	if got := NodeTooltip(data.Nodes[2], data.MaxDepth()); got[len(got)-len("Dir: "):] != "Dir: " {
		t.Errorf("empty fields should still be listed: %q", got)
	}
	if got := EdgeTooltip(data.Edges[0]); got != "Source: app@1.0.0\nTarget: http@2.0.0" {
		t.Errorf("EdgeTooltip() = %q", got)
	}
}

func TestHit(t *testing.T) {
	data, f, links := testFrame()

	got, ok := Hit(data, f, links, graph.Point{X: 298, Y: 102})
	if !ok || got.Kind != KindNode || got.Index != 1 {
		t.Errorf("Hit(node over edge) = %+v, %v", got, ok)
	}

	got, ok = Hit(data, f, links, graph.Point{X: 200, Y: 100})
	if !ok || got.Kind != KindEdge || got.Index != 0 || got.Text != EdgeTooltip(data.Edges[0]) {
		t.Errorf("Hit(edge) = %+v, %v", got, ok)
	}

	if _, ok := Hit(data, f, links, graph.Point{X: 600, Y: 500}); ok {
		t.Error("Hit(empty) should miss")
	}
}
