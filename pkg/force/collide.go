package force

import (
	"math"
	"math/rand/v2"
)

// DefaultCollideRadius is the disc radius used to discourage overlaps.
const DefaultCollideRadius = 5.0

// Collide treats every body as a disc and pushes overlapping discs apart.
// It uses predicted positions (x+vx) and is not scaled by alpha.
type Collide struct {
	radius     float64
	strength   float64
	iterations int

	bodies []Body
	rng    *rand.Rand
}

// CollideOption configures a Collide force.
type CollideOption func(*Collide)

// WithCollideStrength sets the fraction of the overlap resolved per pass.
func WithCollideStrength(s float64) CollideOption {
	return func(f *Collide) { f.strength = s }
}

// WithCollideIterations sets how many passes run per tick.
func WithCollideIterations(n int) CollideOption {
	return func(f *Collide) {
		if n > 0 {
			f.iterations = n
		}
	}
}

// NewCollide creates a collision force with a fixed disc radius.
func NewCollide(radius float64, opts ...CollideOption) *Collide {
	f := &Collide{radius: radius, strength: 1, iterations: 1}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Initialize binds bodies.
func (f *Collide) Initialize(bodies []Body, rng *rand.Rand) {
	f.bodies = bodies
	f.rng = orDefault(rng)
}

// Apply separates overlapping pairs. Each pair is visited once.
func (f *Collide) Apply(float64) {
	if f.radius <= 0 {
		return
	}
	r := 2 * f.radius
	for k := 0; k < f.iterations; k++ {
		for i := range f.bodies {
			bi := &f.bodies[i]
			xi, yi := bi.X+bi.VX, bi.Y+bi.VY
			for j := i + 1; j < len(f.bodies); j++ {
				bj := &f.bodies[j]
				x := xi - bj.X - bj.VX
				y := yi - bj.Y - bj.VY
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = jiggle(f.rng)
					l += x * x
				}
				if y == 0 {
					y = jiggle(f.rng)
					l += y * y
				}
				d := math.Sqrt(l)
				d = (r - d) / d * f.strength
				x, y = x*d, y*d

				// Equal radii share the correction evenly.
				bi.VX += x * 0.5
				bi.VY += y * 0.5
				bj.VX -= x * 0.5
				bj.VY -= y * 0.5
			}
		}
	}
}
