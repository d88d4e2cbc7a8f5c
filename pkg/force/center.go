package force

import (
	"math"
	"math/rand/v2"
)

// DefaultCenterStrength is the pull toward the viewport center.
const DefaultCenterStrength = 1.2

// Center pulls each body individually toward a fixed point:
//
//	x += (cx - x) * strength * alpha
//
// Unlike a centroid force it does not preserve relative positions; every
// body drifts toward the same point, which counteracts repulsion pushing
// the graph off-frame. Apply before Initialize does nothing.
type Center struct {
	X, Y     float64
	Strength float64

	bodies []Body
}

// NewCenter creates a centering force toward (x, y).
func NewCenter(x, y, strength float64) *Center {
	return &Center{X: x, Y: y, Strength: strength}
}

// Initialize binds bodies.
func (c *Center) Initialize(bodies []Body, _ *rand.Rand) {
	c.bodies = bodies
}

// Apply moves every body toward the center. Unset coordinates count as 0.
func (c *Center) Apply(alpha float64) {
	k := c.Strength * alpha
	for i := range c.bodies {
		b := &c.bodies[i]
		x, y := b.X, b.Y
		if math.IsNaN(x) {
			x = 0
		}
		if math.IsNaN(y) {
			y = 0
		}
		b.X = x + (c.X-x)*k
		b.Y = y + (c.Y-y)*k
	}
}
