package force

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
)

// DefaultLinkDistance is the target separation of linked nodes.
const DefaultLinkDistance = 100.0

// Link is an edge resolved to body indices.
type Link struct {
	Source, Target int
}

// ResolveLinks maps edges to body indices using an id index. A missing
// endpoint is a MALFORMED_GRAPH error.
func ResolveLinks(edges []graph.Edge, index map[string]int) ([]Link, error) {
	links := make([]Link, len(edges))
	for i, e := range edges {
		s, ok := index[e.SourceID]
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "edge %d: unknown source id %q", i, e.SourceID)
		}
		t, ok := index[e.TargetID]
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "edge %d: unknown target id %q", i, e.TargetID)
		}
		links[i] = Link{Source: s, Target: t}
	}
	return links, nil
}

// LinkForce pulls linked bodies toward a target distance.
//
// Each link is a spring whose default stiffness is 1/min(deg(s), deg(t)), so
// hubs are not yanked around by their many leaves. The correction is split
// between the endpoints by bias deg(s)/(deg(s)+deg(t)) on the target side.
type LinkForce struct {
	links      []Link
	distance   float64
	strength   float64 // <= 0 selects the degree-based default
	iterations int

	bodies    []Body
	rng       *rand.Rand
	strengths []float64
	bias      []float64
}

// LinkOption configures a LinkForce.
type LinkOption func(*LinkForce)

// WithLinkStrength sets a uniform link strength. Zero restores the
// degree-based default.
func WithLinkStrength(s float64) LinkOption {
	return func(f *LinkForce) { f.strength = s }
}

// WithLinkIterations sets how many relaxation passes run per tick.
func WithLinkIterations(n int) LinkOption {
	return func(f *LinkForce) {
		if n > 0 {
			f.iterations = n
		}
	}
}

// NewLinkForce creates a link force with the given target distance.
func NewLinkForce(links []Link, distance float64, opts ...LinkOption) *LinkForce {
	f := &LinkForce{links: links, distance: distance, iterations: 1}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Initialize binds bodies and precomputes per-link strength and bias.
// Links whose indices fall outside bodies are dropped.
func (f *LinkForce) Initialize(bodies []Body, rng *rand.Rand) {
	f.bodies = bodies
	f.rng = orDefault(rng)

	valid := f.links[:0:0]
	for _, l := range f.links {
		if l.Source >= 0 && l.Source < len(bodies) && l.Target >= 0 && l.Target < len(bodies) {
			valid = append(valid, l)
		}
	}
	f.links = valid

	count := make([]int, len(bodies))
	for _, l := range f.links {
		count[l.Source]++
		count[l.Target]++
	}

	f.strengths = make([]float64, len(f.links))
	f.bias = make([]float64, len(f.links))
	for i, l := range f.links {
		cs, ct := float64(count[l.Source]), float64(count[l.Target])
		f.bias[i] = cs / (cs + ct)
		if f.strength > 0 {
			f.strengths[i] = f.strength
		} else {
			f.strengths[i] = 1 / math.Min(cs, ct)
		}
	}
}

// Apply moves each link's endpoints toward the target distance.
func (f *LinkForce) Apply(alpha float64) {
	for k := 0; k < f.iterations; k++ {
		for i, l := range f.links {
			src, tgt := &f.bodies[l.Source], &f.bodies[l.Target]

			x := tgt.X + tgt.VX - src.X - src.VX
			if x == 0 {
				x = jiggle(f.rng)
			}
			y := tgt.Y + tgt.VY - src.Y - src.VY
			if y == 0 {
				y = jiggle(f.rng)
			}
			d := math.Sqrt(x*x + y*y)
			d = (d - f.distance) / d * alpha * f.strengths[i]
			x, y = x*d, y*d

			b := f.bias[i]
			tgt.VX -= x * b
			tgt.VY -= y * b
			b = 1 - b
			src.VX += x * b
			src.VY += y * b
		}
	}
}

// Links returns the bound links.
func (f *LinkForce) Links() []Link { return f.links }
