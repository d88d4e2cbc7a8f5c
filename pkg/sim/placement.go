package sim

import (
	"math"

	"github.com/matzehuels/depforce/pkg/graph"
)

// Phyllotaxis constants: nodes spiral outward from the center at the
// golden angle, 10 units apart in radius.
const initialRadius = 10.0

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// place seeds every body from its node position, or from the configured
// strategy when the node has none. Velocities start at zero.
func (s *Simulation) place() {
	c := s.viewport.Center()
	for i, n := range s.data.Nodes {
		b := &s.bodies[i]
		p := n.Position()
		switch {
		case !math.IsNaN(p.X) && !math.IsNaN(p.Y):
			b.X, b.Y = p.X, p.Y
			continue
		case s.cfg.placement == PlacementRandom:
			p = s.randomPoint(p)
		default:
			p = phyllotaxis(i, c, p)
		}
		b.X, b.Y = p.X, p.Y
	}
}

// phyllotaxis fills unset coordinates of p with spiral point i around c.
func phyllotaxis(i int, c, p graph.Point) graph.Point {
	r := initialRadius * math.Sqrt(0.5+float64(i))
	a := float64(i) * initialAngle
	if math.IsNaN(p.X) {
		p.X = c.X + r*math.Cos(a)
	}
	if math.IsNaN(p.Y) {
		p.Y = c.Y + r*math.Sin(a)
	}
	return p
}

// randomPoint fills unset coordinates of p uniformly inside the clamp box.
func (s *Simulation) randomPoint(p graph.Point) graph.Point {
	loX, hiX := bounds(s.viewport.Width, s.cfg.buffer)
	loY, hiY := bounds(s.viewport.Height, s.cfg.buffer)
	if math.IsNaN(p.X) {
		p.X = loX + s.rng.Float64()*(hiX-loX)
	}
	if math.IsNaN(p.Y) {
		p.Y = loY + s.rng.Float64()*(hiY-loY)
	}
	return p
}

// bounds returns the clamp interval for one axis. A buffer wider than half
// the extent collapses the interval to the midpoint.
func bounds(extent, buffer float64) (lo, hi float64) {
	lo, hi = buffer, extent-buffer
	if lo > hi {
		lo, hi = extent/2, extent/2
	}
	return lo, hi
}

// clamp hard-limits v to [lo, hi]; an unset v becomes half the extent.
func clamp(v, lo, hi, half float64) float64 {
	if math.IsNaN(v) {
		v = half
	}
	return math.Max(lo, math.Min(hi, v))
}
