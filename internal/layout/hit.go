package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/inamate/timegraph/internal/geom"
)

// HasHit reports whether p, in root content space, lies on the element.
// Collapsed and never arranged elements are not hit.
func (e *Element) HasHit(p geom.Point) bool {
	if !e.visible {
		return false
	}
	if e.isRotated() {
		return e.bounding.Contains(p) && e.hitPrecise(p)
	}
	c := e.corners
	return p.X >= c.LeftTop.X && p.X <= c.RightTop.X &&
		p.Y >= c.LeftTop.Y && p.Y <= c.RightBottom.Y
}

// isRotated guesses rotation from a placement scale that differs from the
// element's own scale factor. Ancestor scaling also trips it, which only
// costs the precise test.
func (e *Element) isRotated() bool {
	return math.Abs(e.scaleFactor-e.placement.ScaleX()) > 0
}

// hitPrecise tests p against the half-planes of the four edges.
func (e *Element) hitPrecise(p geom.Point) bool {
	c := e.corners
	switch {
	case side(c.LeftTop, c.RightTop, p) < 0:
		return false
	case side(c.LeftBottom, c.RightBottom, p) > 0:
		return false
	case side(c.LeftTop, c.LeftBottom, p) > 0:
		return false
	case side(c.RightTop, c.RightBottom, p) < 0:
		return false
	}
	return true
}

// side is the cross product of the edge from→to with to→p.
func side(from, to, p geom.Point) float64 {
	return r2.Cross(r2.Sub(to, from), r2.Sub(p, to))
}

// IsInView reports whether the bounding rectangle touches view.
func (e *Element) IsInView(view geom.Rect) bool {
	return view.ContainsRect(e.bounding) || view.Intersects(e.bounding)
}
