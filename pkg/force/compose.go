package force

import (
	"github.com/matzehuels/depforce/pkg/graph"
)

// Compose builds the forces for one run, in application order: link,
// charge, collide, center. The returned forces are unbound; the caller
// initializes them with its body slice.
func Compose(data graph.GraphData, vp graph.Viewport, p Params) ([]Named, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	index, err := data.Index()
	if err != nil {
		return nil, err
	}
	links, err := ResolveLinks(data.Edges, index)
	if err != nil {
		return nil, err
	}

	c := vp.Center()
	return []Named{
		{Name: NameLink, Force: NewLinkForce(links, p.LinkDistance,
			WithLinkStrength(p.LinkStrength),
			WithLinkIterations(p.LinkIterations),
		)},
		{Name: NameCharge, Force: NewManyBody(p.ChargeStrength,
			WithTheta(p.ChargeTheta),
			WithDistanceMin(p.ChargeDistanceMin),
			WithDistanceMax(p.ChargeDistanceMax),
		)},
		{Name: NameCollide, Force: NewCollide(p.CollideRadius,
			WithCollideStrength(p.CollideStrength),
			WithCollideIterations(p.CollideIterations),
		)},
		{Name: NameCenter, Force: NewCenter(c.X, c.Y, p.CenterStrength)},
	}, nil
}
