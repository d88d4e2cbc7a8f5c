package force

import (
	"github.com/matzehuels/depforce/internal/validation"
)

// Params holds every force coefficient. The zero value is not useful; start
// from DefaultParams.
type Params struct {
	LinkDistance   float64 `json:"link_distance" toml:"link_distance" yaml:"link_distance" validate:"gt=0,finite"`
	LinkStrength   float64 `json:"link_strength" toml:"link_strength" yaml:"link_strength" validate:"gte=0,finite"` // 0 = degree-based
	LinkIterations int     `json:"link_iterations" toml:"link_iterations" yaml:"link_iterations" validate:"gte=1,lte=16"`

	ChargeStrength    float64 `json:"charge_strength" toml:"charge_strength" yaml:"charge_strength" validate:"finite"`
	ChargeTheta       float64 `json:"charge_theta" toml:"charge_theta" yaml:"charge_theta" validate:"gte=0,lte=2,finite"` // 0 = exact
	ChargeDistanceMin float64 `json:"charge_distance_min" toml:"charge_distance_min" yaml:"charge_distance_min" validate:"gte=0,finite"`
	ChargeDistanceMax float64 `json:"charge_distance_max" toml:"charge_distance_max" yaml:"charge_distance_max" validate:"gte=0,finite"` // 0 = unbounded

	CollideRadius     float64 `json:"collide_radius" toml:"collide_radius" yaml:"collide_radius" validate:"gte=0,finite"`
	CollideStrength   float64 `json:"collide_strength" toml:"collide_strength" yaml:"collide_strength" validate:"gte=0,lte=1,finite"`
	CollideIterations int     `json:"collide_iterations" toml:"collide_iterations" yaml:"collide_iterations" validate:"gte=1,lte=16"`

	CenterStrength float64 `json:"center_strength" toml:"center_strength" yaml:"center_strength" validate:"gte=0,finite"`
}

// DefaultParams returns link distance 100, charge -350, collide radius 5
// and center strength 1.2.
func DefaultParams() Params {
	return Params{
		LinkDistance:      DefaultLinkDistance,
		LinkIterations:    1,
		ChargeStrength:    DefaultChargeStrength,
		ChargeDistanceMin: 1,
		CollideRadius:     DefaultCollideRadius,
		CollideStrength:   1,
		CollideIterations: 1,
		CenterStrength:    DefaultCenterStrength,
	}
}

// Validate checks every coefficient against its allowed range.
func (p Params) Validate() error {
	return validation.Struct(p)
}
