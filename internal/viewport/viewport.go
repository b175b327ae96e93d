// Package viewport keeps the pan and zoom state of a view over a larger
// content area, called the border.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/timegraph/internal/geom"
)

var (
	ErrViewLargerThanBorder = errors.New("view is larger than border")
	ErrOutsideView          = errors.New("point is outside the view")
)

// Result reports whether a pan or resize changed the view.
type Result int

const (
	Unmodified Result = iota
	Modified
)

func (r Result) String() string {
	if r == Modified {
		return "modified"
	}
	return "unmodified"
}

// ScaleResult reports how TryScale changed the view.
type ScaleResult int

const (
	ScaleUnmodified ScaleResult = iota
	// ScaleSameOrigin keeps the content point under the scale origin.
	ScaleSameOrigin
	// ScaleTransformedOrigin had to pan back inside the border.
	ScaleTransformedOrigin
)

func (r ScaleResult) String() string {
	switch r {
	case ScaleSameOrigin:
		return "same-origin"
	case ScaleTransformedOrigin:
		return "transformed-origin"
	default:
		return "unmodified"
	}
}

const identityScaleEpsilon = 0.0001

// Modifier maps view coordinates onto content. The matrix only ever holds
// a uniform scale of at least 1 and a non-positive translation that keeps
// the view inside the scaled border.
type Modifier struct {
	matrix       geom.Matrix2D
	viewWidth    float64
	viewHeight   float64
	borderWidth  float64
	borderHeight float64
}

func New(viewWidth, viewHeight, borderWidth, borderHeight float64) (*Modifier, error) {
	if viewWidth > borderWidth || viewHeight > borderHeight {
		return nil, fmt.Errorf("new viewport %vx%v over %vx%v: %w",
			viewWidth, viewHeight, borderWidth, borderHeight, ErrViewLargerThanBorder)
	}
	return &Modifier{
		matrix:       geom.Identity(),
		viewWidth:    viewWidth,
		viewHeight:   viewHeight,
		borderWidth:  borderWidth,
		borderHeight: borderHeight,
	}, nil
}

func (m *Modifier) Matrix() geom.Matrix2D { return m.matrix }
func (m *Modifier) ViewSize() geom.Size   { return geom.Sz(m.viewWidth, m.viewHeight) }
func (m *Modifier) BorderSize() geom.Size { return geom.Sz(m.borderWidth, m.borderHeight) }

// ContentMatrix maps content onto the view.
func (m *Modifier) ContentMatrix() geom.Matrix2D { return m.matrix }

// ContentSize is the unscaled border.
func (m *Modifier) ContentSize() geom.Size { return m.BorderSize() }

// ViewRect is the visible part of the content.
func (m *Modifier) ViewRect() geom.Rect {
	sx, sy := m.matrix.ScaleX(), m.matrix.ScaleY()
	return geom.Rect{
		X:      -m.matrix[4] / sx,
		Y:      -m.matrix[5] / sy,
		Width:  m.viewWidth / sx,
		Height: m.viewHeight / sy,
	}
}

// TryResizeView resizes the view and the border by the same ratio so the
// visible content stays the same.
func (m *Modifier) TryResizeView(width, height float64) Result {
	if width < 0 || height < 0 {
		return Unmodified
	}

	rx, ry := width/m.viewWidth, height/m.viewHeight
	m.matrix[4] *= rx
	m.matrix[5] *= ry
	m.viewWidth, m.viewHeight = width, height
	m.borderWidth *= rx
	m.borderHeight *= ry
	return Modified
}

// TryResizeBorder changes the content size and pans back inside it.
func (m *Modifier) TryResizeBorder(width, height float64) Result {
	if width < m.viewWidth || height < m.viewHeight {
		return Unmodified
	}

	m.borderWidth, m.borderHeight = width, height
	m.translateIntoBounds()
	return Modified
}

// TryResizeBorderAt changes the content size and shows it from the content
// offset (offX, offY).
func (m *Modifier) TryResizeBorderAt(width, height, offX, offY float64) Result {
	if width < m.viewWidth || height < m.viewHeight {
		return Unmodified
	}

	saved := *m
	m.matrix[4], m.matrix[5] = 0, 0
	m.borderWidth, m.borderHeight = width, height

	tx, ty := -offX*m.matrix.ScaleX(), -offY*m.matrix.ScaleY()
	if m.isOutOfBounds(tx, ty) {
		*m = saved
		return Unmodified
	}

	m.matrix[4], m.matrix[5] = tx, ty
	return Modified
}

// TryTranslate pans the view by v in view units. A pan leaving the border
// is rejected.
func (m *Modifier) TryTranslate(v geom.Point) Result {
	if m.isOutOfBounds(-v.X, -v.Y) {
		return Unmodified
	}
	m.matrix[4] -= v.X
	m.matrix[5] -= v.Y
	return Modified
}

// TryScale zooms by delta around origin, a point of the view. The scale
// never drops below 1.
func (m *Modifier) TryScale(origin geom.Point, delta float64) (ScaleResult, error) {
	if !m.inView(origin) {
		return ScaleUnmodified, fmt.Errorf("scale at %v: %w", origin, ErrOutsideView)
	}

	sx := m.matrix.ScaleX()
	if math.Abs(sx-1) < identityScaleEpsilon && delta < 1 {
		return ScaleUnmodified, nil
	}
	if sx+delta < 1 {
		delta = 1 - sx
	}

	m.scale(origin, delta)

	if delta < 0 && m.translateIntoBounds() {
		return ScaleTransformedOrigin, nil
	}
	return ScaleSameOrigin, nil
}

func (m *Modifier) scale(origin geom.Point, delta float64) {
	sx, sy := m.matrix.ScaleX(), m.matrix.ScaleY()
	nsx, nsy := sx+delta, sy+delta

	ox := (origin.X - m.matrix[4]) * (nsx / sx)
	oy := (origin.Y - m.matrix[5]) * (nsy / sy)

	m.matrix = geom.Matrix2D{nsx, 0, 0, nsy, -(ox - origin.X), -(oy - origin.Y)}
}

// ViewToContent maps a view point onto content.
func (m *Modifier) ViewToContent(p geom.Point) (geom.Point, error) {
	if !m.inView(p) {
		return geom.Point{}, fmt.Errorf("convert %v: %w", p, ErrOutsideView)
	}
	return geom.Pt(
		(-m.matrix[4]+p.X)/m.matrix.ScaleX(),
		(-m.matrix[5]+p.Y)/m.matrix.ScaleY(),
	), nil
}

func (m *Modifier) inView(p geom.Point) bool {
	return p.X >= 0 && p.X <= m.viewWidth && p.Y >= 0 && p.Y <= m.viewHeight
}

// translateIntoBounds clamps the translation so the view stays inside the
// scaled border and reports whether it moved.
func (m *Modifier) translateIntoBounds() bool {
	moved := false
	if m.matrix[4] > 0 {
		m.matrix[4] = 0
		moved = true
	}
	if m.matrix[5] > 0 {
		m.matrix[5] = 0
		moved = true
	}
	if -m.matrix[4]+m.viewWidth > m.borderWidth*m.matrix.ScaleX() {
		m.matrix[4] = -m.borderWidth*m.matrix.ScaleX() + m.viewWidth
		moved = true
	}
	if -m.matrix[5]+m.viewHeight > m.borderHeight*m.matrix.ScaleY() {
		m.matrix[5] = -m.borderHeight*m.matrix.ScaleY() + m.viewHeight
		moved = true
	}
	return moved
}

// isOutOfBounds reports whether moving the translation by (tx, ty) would
// show anything outside the scaled border.
func (m *Modifier) isOutOfBounds(tx, ty float64) bool {
	left, top := -m.matrix[4], -m.matrix[5]
	right, bottom := left+m.viewWidth, top+m.viewHeight
	return left-tx < 0 || top-ty < 0 ||
		right-tx > m.borderWidth*m.matrix.ScaleX() ||
		bottom-ty > m.borderHeight*m.matrix.ScaleY()
}
