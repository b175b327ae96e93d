package geom

import "math"

// ContainmentDelta is the tolerance used when comparing arranged rectangles.
// Edges closer than this are treated as equal.
const ContainmentDelta = 0.001

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectAt creates a rect with the given origin and size.
func RectAt(origin Point, s Size) Rect {
	return Rect{X: origin.X, Y: origin.Y, Width: s.Width, Height: s.Height}
}

// RectLTRB creates a rect from its edges.
func RectLTRB(left, top, right, bottom float64) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Size returns the width and height of the rect.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Contains checks if a point is inside the rect, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsRect checks if inner lies entirely within r, edges included.
func (r Rect) ContainsRect(inner Rect) bool {
	return r.Left() <= inner.Left() && r.Top() <= inner.Top() &&
		r.Right() >= inner.Right() && r.Bottom() >= inner.Bottom()
}

// ContainsWithDelta is ContainsRect where any edge of inner overlapping the
// matching edge of r by less than delta is snapped onto it first.
func (r Rect) ContainsWithDelta(inner Rect, delta float64) bool {
	l, t, rt, b := inner.Left(), inner.Top(), inner.Right(), inner.Bottom()
	if r.Left()-l < delta {
		l = r.Left()
	}
	if r.Top()-t < delta {
		t = r.Top()
	}
	if rt-r.Right() < delta {
		rt = r.Right()
	}
	if b-r.Bottom() < delta {
		b = r.Bottom()
	}
	return r.Left() <= l && r.Top() <= t && r.Right() >= rt && r.Bottom() >= b
}

// Intersects reports whether the interiors of r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return o.Left() < r.Right() && r.Left() < o.Right() &&
		o.Top() < r.Bottom() && r.Top() < o.Bottom()
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return RectLTRB(
		min(r.Left(), other.Left()),
		min(r.Top(), other.Top()),
		max(r.Right(), other.Right()),
		max(r.Bottom(), other.Bottom()),
	)
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Envelope returns the axis-aligned bounding box of points.
func Envelope(points ...Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	l, t := math.Inf(1), math.Inf(1)
	rt, b := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		l, t = min(l, p.X), min(t, p.Y)
		rt, b = max(rt, p.X), max(b, p.Y)
	}
	return RectLTRB(l, t, rt, b)
}
