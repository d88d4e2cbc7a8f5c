package force

import (
	"math"
	"math/rand/v2"
)

// Body is a simulated particle. Unset coordinates are NaN.
type Body struct {
	X, Y   float64
	VX, VY float64
}

// Force is one additive perturbation applied every tick.
type Force interface {
	// Initialize binds the force to the simulation's bodies. It must be
	// called before Apply and again whenever the body slice changes.
	Initialize(bodies []Body, rng *rand.Rand)
	// Apply perturbs the bound bodies scaled by alpha.
	Apply(alpha float64)
}

// Named pairs a force with the name it is registered under.
type Named struct {
	Name  string
	Force Force
}

// Force names, in application order.
const (
	NameLink    = "link"
	NameCharge  = "charge"
	NameCollide = "collide"
	NameCenter  = "center"
)

// NewRand returns the seeded source used for tie-breaks.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// jiggle returns a tiny non-zero offset used to separate coincident bodies.
func jiggle(rng *rand.Rand) float64 {
	for {
		if v := (rng.Float64() - 0.5) * 1e-6; v != 0 {
			return v
		}
	}
}

// orDefault returns rng, or a zero-seeded source when rng is nil.
func orDefault(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return NewRand(0)
	}
	return rng
}

func isSet(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
