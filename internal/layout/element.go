// Package layout implements measured and arranged scene elements. Every
// element keeps its geometry expressed in the content space of the root it
// was arranged under, so a subtree is always consistent after a call to
// Arrange, Scale, Rotate or Reposition returns.
package layout

import (
	"math"

	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/visual"
)

// Margins are the outer spacing of an element, in its local units.
type Margins struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Uniform returns margins of m on every side.
func Uniform(m float64) Margins {
	return Margins{Left: m, Top: m, Right: m, Bottom: m}
}

func (m Margins) Horizontal() float64 { return m.Left + m.Right }
func (m Margins) Vertical() float64   { return m.Top + m.Bottom }

// Quad holds the four content corners of an element in root content space.
type Quad struct {
	LeftTop     geom.Point
	RightTop    geom.Point
	LeftBottom  geom.Point
	RightBottom geom.Point
}

func (q Quad) points() []geom.Point {
	return []geom.Point{q.LeftTop, q.RightTop, q.RightBottom, q.LeftBottom}
}

// Overrides are the layout hooks an element type can replace. Types
// embedding Element inherit the defaults and bind themselves with
// ExtendElement.
type Overrides interface {
	visual.ChildProvider

	// MeasureOverride returns the size the element wants within available.
	MeasureOverride(available geom.Size) geom.Size
	// ArrangeOverride places children and returns the size used.
	ArrangeOverride(final geom.Size) geom.Size
	// ArrangeCore returns the content rectangle and the margin-inclusive
	// size taken from size.
	ArrangeCore(size geom.Size) (content geom.Rect, final geom.Size)
}

// Drawer is implemented by elements that paint themselves.
type Drawer interface {
	OnDraw(c *drawing.Canvas)
}

// Placer exposes the matrix children are arranged relative to.
type Placer interface {
	PlacementMatrix() geom.Matrix2D
}

// Child is an element that can be laid out by a container.
type Child interface {
	visual.Visual
	drawing.Drawable
	Placer

	Measure(available geom.Size)
	DesiredSize() geom.Size
	ArrangeIn(origin geom.Point, size geom.Size, parent Placer)
}

// Element is the base layout element. The zero value is not usable; create
// elements with NewElement or New.
type Element struct {
	visual.Node

	Margin Margins
	// Width and Height pin the content size when not NaN.
	Width, Height        float64
	MinWidth, MaxWidth   float64
	MinHeight, MaxHeight float64
	// ClipEnabled clips drawing to the unscaled content rectangle.
	ClipEnabled bool

	self Overrides

	rotation    float64
	scaleFactor float64

	desired     geom.Size
	arrangeSize geom.Size
	arranged    geom.Size
	unscaled    geom.Size
	contentSize geom.Size
	corners     Quad
	clip        geom.Rect
	bounding    geom.Rect
	visible     bool

	arrangeMatrix geom.Matrix2D
	placement     geom.Matrix2D
}

// NewElement returns an element without size constraints.
func NewElement() Element {
	return Element{
		Width:         math.NaN(),
		Height:        math.NaN(),
		MaxWidth:      math.Inf(1),
		MaxHeight:     math.Inf(1),
		scaleFactor:   1,
		arrangeMatrix: geom.Identity(),
		placement:     geom.Identity(),
	}
}

// New allocates a plain element.
func New() *Element {
	e := NewElement()
	return &e
}

// ExtendElement binds the outer type whose overrides drive layout.
func (e *Element) ExtendElement(self Overrides) {
	e.self = self
	e.ExtendNode(self)
}

func (e *Element) impl() Overrides {
	if e.self == nil {
		return e
	}
	return e.self
}

// MeasureOverride returns an empty size.
func (e *Element) MeasureOverride(geom.Size) geom.Size {
	return geom.Size{}
}

// ArrangeOverride takes all of final.
func (e *Element) ArrangeOverride(final geom.Size) geom.Size {
	return final
}

func (e *Element) Rotation() float64              { return e.rotation }
func (e *Element) ScaleFactor() float64           { return e.scaleFactor }
func (e *Element) DesiredSize() geom.Size         { return e.desired }
func (e *Element) ArrangeSize() geom.Size         { return e.arrangeSize }
func (e *Element) ArrangedSize() geom.Size        { return e.arranged }
func (e *Element) UnscaledSize() geom.Size        { return e.unscaled }
func (e *Element) ContentSize() geom.Size         { return e.contentSize }
func (e *Element) Corners() Quad                  { return e.corners }
func (e *Element) Clip() geom.Rect                { return e.clip }
func (e *Element) BoundingRect() geom.Rect        { return e.bounding }
func (e *Element) PlacementMatrix() geom.Matrix2D { return e.placement }

// IsVisible reports whether the last arrange produced geometry.
func (e *Element) IsVisible() bool { return e.visible }

// envelope is the effective size range of each axis.
type envelope struct {
	minWidth, maxWidth   float64
	minHeight, maxHeight float64
}

func (e *Element) envelope() envelope {
	var env envelope
	env.minWidth, env.maxWidth = pin(e.Width, e.MinWidth, e.MaxWidth)
	env.minHeight, env.maxHeight = pin(e.Height, e.MinHeight, e.MaxHeight)
	return env
}

// pin narrows [lo, hi] onto explicit, clamped into [lo, hi], when explicit
// is set.
func pin(explicit, lo, hi float64) (float64, float64) {
	upper, lower := math.MaxFloat64, 0.0
	if !math.IsNaN(explicit) {
		upper, lower = explicit, explicit
	}
	hi = max(min(upper, hi), lo)
	lo = max(min(hi, lower), lo)
	return lo, hi
}

func (env envelope) clamp(s geom.Size) geom.Size {
	return geom.Sz(
		max(min(s.Width, env.maxWidth), env.minWidth),
		max(min(s.Height, env.maxHeight), env.minHeight),
	)
}
