package pointer

import (
	"math"

	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
)

// Margin is the gap kept between the pointer and the tooltip.
const Margin = 10.0

// Size is a measured overlay size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) measurable() bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// Fits reports whether s can be shown inside vp without overflowing.
func (s Size) Fits(vp graph.Viewport) bool {
	return s.Width <= vp.Width && s.Height <= vp.Height
}

// Place returns the top-left corner for a tooltip of size tip shown for a
// pointer at p. The tooltip sits Margin below and right of the pointer; on
// an axis where it would overflow the viewport it moves to the other side
// of the pointer, and a flipped position below zero is pinned to zero.
// A tooltip larger than the viewport on an axis is therefore pinned to zero
// there and still overflows the far edge by the excess; [Size.Fits] reports
// that case.
//
// A tooltip that was never measured (zero, negative or non-finite size)
// yields UNMEASURABLE_ELEMENT and must not be shown.
func Place(p graph.Point, tip Size, vp graph.Viewport) (graph.Point, error) {
	if !tip.measurable() {
		return graph.Point{}, errors.New(errors.ErrCodeUnmeasurableElement,
			"tooltip size %gx%g is not measurable", tip.Width, tip.Height)
	}
	if err := vp.Validate(); err != nil {
		return graph.Point{}, err
	}
	if !p.IsSet() {
		return graph.Point{}, errors.New(errors.ErrCodeInvalidInput, "pointer position is not set")
	}
	return graph.Point{
		X: placeAxis(p.X, tip.Width, vp.Width),
		Y: placeAxis(p.Y, tip.Height, vp.Height),
	}, nil
}

func placeAxis(p, size, extent float64) float64 {
	v := p + Margin
	if v+size > extent {
		v = max(0, p-size-Margin)
	}
	return v
}
