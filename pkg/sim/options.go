package sim

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/force"
)

// Default simulation parameters.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultBuffer        = 20.0
	DefaultSeed          = uint64(42)

	// DefaultMaxTicks bounds Settle when alpha can never reach AlphaMin.
	DefaultMaxTicks = 10000
)

// DefaultAlphaDecay settles a run from alpha 1 in 300 ticks (≈0.0228).
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Placement selects how unplaced nodes are seeded.
type Placement string

// Placement strategies.
const (
	PlacementPhyllotaxis Placement = "phyllotaxis"
	PlacementRandom      Placement = "random"
)

// TickFunc receives a copy of the state after every tick.
type TickFunc func(Frame)

type config struct {
	runID         string
	seed          uint64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	buffer        float64
	placement     Placement
	params        force.Params
	radius        RadiusScale
	onTick        TickFunc
	logger        *log.Logger
}

func defaultConfig() config {
	return config{
		seed:          DefaultSeed,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: DefaultVelocityDecay,
		buffer:        DefaultBuffer,
		placement:     PlacementPhyllotaxis,
		params:        force.DefaultParams(),
		radius:        DefaultRadiusScale(),
		logger:        log.NewWithOptions(io.Discard, log.Options{}),
	}
}

func (c config) validate() error {
	switch {
	case c.alphaMin <= 0 || c.alphaMin >= 1:
		return errors.New(errors.ErrCodeInvalidInput, "alpha min %v must be in (0, 1)", c.alphaMin)
	case c.alphaDecay <= 0 || c.alphaDecay >= 1:
		return errors.New(errors.ErrCodeInvalidInput, "alpha decay %v must be in (0, 1)", c.alphaDecay)
	case c.alphaTarget < 0 || c.alphaTarget > 1:
		return errors.New(errors.ErrCodeInvalidInput, "alpha target %v must be in [0, 1]", c.alphaTarget)
	case c.velocityDecay < 0 || c.velocityDecay > 1:
		return errors.New(errors.ErrCodeInvalidInput, "velocity decay %v must be in [0, 1]", c.velocityDecay)
	case c.buffer < 0:
		return errors.New(errors.ErrCodeInvalidInput, "buffer %v must not be negative", c.buffer)
	case c.placement != PlacementPhyllotaxis && c.placement != PlacementRandom:
		return errors.New(errors.ErrCodeInvalidInput, "unknown placement %q", c.placement)
	}
	return nil
}

// Option configures a Simulation.
type Option func(*config)

// WithRunID names the run in hooks and logs. A random id is used otherwise.
func WithRunID(id string) Option { return func(c *config) { c.runID = id } }

// WithSeed sets the tie-break and placement seed.
func WithSeed(seed uint64) Option { return func(c *config) { c.seed = seed } }

// WithAlphaMin sets the settle threshold.
func WithAlphaMin(v float64) Option { return func(c *config) { c.alphaMin = v } }

// WithAlphaDecay sets the per-tick decay rate.
func WithAlphaDecay(v float64) Option { return func(c *config) { c.alphaDecay = v } }

// WithAlphaTarget sets the value alpha decays toward.
func WithAlphaTarget(v float64) Option { return func(c *config) { c.alphaTarget = v } }

// WithVelocityDecay sets friction; velocities are scaled by 1-v each tick.
func WithVelocityDecay(v float64) Option { return func(c *config) { c.velocityDecay = v } }

// WithBuffer sets the clamp margin kept free along every viewport edge.
func WithBuffer(v float64) Option { return func(c *config) { c.buffer = v } }

// WithPlacement selects the seeding strategy for unplaced nodes.
func WithPlacement(p Placement) Option { return func(c *config) { c.placement = p } }

// WithParams replaces the force coefficients.
func WithParams(p force.Params) Option { return func(c *config) { c.params = p } }

// WithRadiusScale replaces the node radius formula constants.
func WithRadiusScale(r RadiusScale) Option { return func(c *config) { c.radius = r } }

// WithOnTick registers the render callback.
func WithOnTick(fn TickFunc) Option { return func(c *config) { c.onTick = fn } }

// WithLogger sets the logger for run diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
