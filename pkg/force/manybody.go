package force

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultChargeStrength is the repulsion applied between every node pair.
const DefaultChargeStrength = -350.0

// ManyBody applies a force between every pair of bodies whose magnitude is
// strength*alpha/distance. Negative strength repels.
//
// With Theta == 0 the sum is exact, O(n²). With Theta > 0 distant groups of
// bodies are approximated by their centroid using a Barnes-Hut tree.
type ManyBody struct {
	strength     float64
	theta        float64
	distanceMin2 float64
	distanceMax2 float64

	bodies []Body
	rng    *rand.Rand

	particles []*particle
	plane     []barneshut.Particle2
}

// ManyBodyOption configures a ManyBody force.
type ManyBodyOption func(*ManyBody)

// WithTheta enables the Barnes-Hut approximation. Zero keeps the exact sum.
func WithTheta(theta float64) ManyBodyOption {
	return func(f *ManyBody) { f.theta = math.Max(theta, 0) }
}

// WithDistanceMin sets the distance below which the force stops growing.
func WithDistanceMin(d float64) ManyBodyOption {
	return func(f *ManyBody) { f.distanceMin2 = d * d }
}

// WithDistanceMax limits the interaction range. Zero means unbounded.
func WithDistanceMax(d float64) ManyBodyOption {
	return func(f *ManyBody) {
		if d > 0 {
			f.distanceMax2 = d * d
		} else {
			f.distanceMax2 = math.Inf(1)
		}
	}
}

// NewManyBody creates a many-body force.
func NewManyBody(strength float64, opts ...ManyBodyOption) *ManyBody {
	f := &ManyBody{
		strength:     strength,
		distanceMin2: 1,
		distanceMax2: math.Inf(1),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Initialize binds bodies.
func (f *ManyBody) Initialize(bodies []Body, rng *rand.Rand) {
	f.bodies = bodies
	f.rng = orDefault(rng)
	f.particles = nil
	f.plane = nil
}

// Apply adds the pairwise forces to every body's velocity.
func (f *ManyBody) Apply(alpha float64) {
	if f.theta > 0 && len(f.bodies) > 1 && f.applyApproximate(alpha) {
		return
	}
	f.applyExact(alpha)
}

func (f *ManyBody) applyExact(alpha float64) {
	for i := range f.bodies {
		bi := &f.bodies[i]
		for j := range f.bodies {
			if i == j {
				continue
			}
			bj := &f.bodies[j]
			vx, vy := f.contribution(bj.X-bi.X, bj.Y-bi.Y, 1, alpha)
			bi.VX += vx
			bi.VY += vy
		}
	}
}

// contribution returns the velocity change caused by a mass m at offset (x, y).
func (f *ManyBody) contribution(x, y, m, alpha float64) (float64, float64) {
	l := x*x + y*y
	if l >= f.distanceMax2 {
		return 0, 0
	}
	if x == 0 {
		x = jiggle(f.rng)
		l += x * x
	}
	if y == 0 {
		y = jiggle(f.rng)
		l += y * y
	}
	if l < f.distanceMin2 {
		l = math.Sqrt(f.distanceMin2 * l)
	}
	w := f.strength * m * alpha / l
	return x * w, y * w
}

// particle adapts a body position to the Barnes-Hut tree.
type particle struct{ pos r2.Vec }

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return 1 }

// applyApproximate reports false when the tree cannot be built, in which
// case the caller falls back to the exact sum.
func (f *ManyBody) applyApproximate(alpha float64) bool {
	if len(f.particles) != len(f.bodies) {
		f.particles = make([]*particle, len(f.bodies))
		f.plane = make([]barneshut.Particle2, len(f.bodies))
		for i := range f.particles {
			f.particles[i] = &particle{}
			f.plane[i] = f.particles[i]
		}
	}

	// Coincident bodies cannot be separated by the tree.
	seen := make(map[r2.Vec]struct{}, len(f.bodies))
	for i, b := range f.bodies {
		if !isSet(b.X) || !isSet(b.Y) {
			return false
		}
		pos := r2.Vec{X: b.X, Y: b.Y}
		if _, dup := seen[pos]; dup {
			return false
		}
		seen[pos] = struct{}{}
		f.particles[i].pos = pos
	}

	plane, err := barneshut.NewPlane(f.plane)
	if err != nil {
		return false
	}

	kernel := func(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		if p1 == p2 {
			return r2.Vec{}
		}
		vx, vy := f.contribution(v.X, v.Y, m2, alpha)
		return r2.Vec{X: vx, Y: vy}
	}
	for i, p := range f.particles {
		dv := plane.ForceOn(p, f.theta, kernel)
		f.bodies[i].VX += dv.X
		f.bodies[i].VY += dv.Y
	}
	return true
}
