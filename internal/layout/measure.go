package layout

import "github.com/inamate/timegraph/internal/geom"

// Measure computes DesiredSize for available, margins included. The result
// never exceeds available.
func (e *Element) Measure(available geom.Size) {
	e.desired = e.measureCore(available)
}

func (e *Element) measureCore(available geom.Size) geom.Size {
	h, v := e.Margin.Horizontal(), e.Margin.Vertical()
	env := e.envelope()

	size := geom.Sz(
		max(env.minWidth, min(max(0, available.Width-h), env.maxWidth)),
		max(env.minHeight, min(max(0, available.Height-v), env.maxHeight)),
	)

	measured := env.clamp(e.impl().MeasureOverride(size))

	return geom.Sz(
		min(measured.Width+h, available.Width),
		min(measured.Height+v, available.Height),
	)
}

// Arrange places the element at origin of the root content space. Scale
// and rotation are reset.
func (e *Element) Arrange(origin geom.Point, size geom.Size) {
	e.arrange(origin, size, geom.Identity())
}

// ArrangeIn places the element at origin of the content space of parent.
func (e *Element) ArrangeIn(origin geom.Point, size geom.Size, parent Placer) {
	e.arrange(origin, size, parent.PlacementMatrix())
}

func (e *Element) arrange(origin geom.Point, size geom.Size, seed geom.Matrix2D) {
	e.scaleFactor = 1
	e.rotation = 0
	e.arrangeMatrix = seed.WithTranslation(seed.Map(origin))
	e.arrangeSize = size
	e.doArrange()
}

// ArrangeCore is the default arrange step: margins are removed, the
// override result is clamped to the size constraints and margins are added
// back.
func (e *Element) ArrangeCore(size geom.Size) (geom.Rect, geom.Size) {
	m := e.Margin
	free := geom.Sz(max(0, size.Width-m.Horizontal()), max(0, size.Height-m.Vertical()))
	env := e.envelope()

	// children are placed past the margin
	e.placement = e.placement.WithTranslation(e.arrangeMatrix.MapXY(m.Left, m.Top))

	used := e.impl().ArrangeOverride(free)

	// a request below the minimum is honored
	env.minWidth = min(env.minWidth, size.Width)
	env.minHeight = min(env.minHeight, size.Height)
	used = env.clamp(used)

	content := geom.RectAt(geom.Pt(m.Left, m.Top), used)
	return content, used.Add(geom.Sz(m.Horizontal(), m.Vertical()))
}

func (e *Element) doArrange() {
	e.placement = e.arrangeMatrix

	content, final := e.impl().ArrangeCore(e.arrangeSize)

	finalRect := geom.RectAt(geom.Point{}, final)
	arrangeRect := geom.RectAt(geom.Point{}, e.arrangeSize)
	if !finalRect.ContainsWithDelta(content, geom.ContainmentDelta) ||
		!arrangeRect.ContainsWithDelta(finalRect, geom.ContainmentDelta) {
		e.collapse()
		return
	}

	e.arranged = final
	e.unscaled = content.Size()
	e.clip = geom.RectAt(geom.Point{}, e.unscaled)

	l, t := content.Left(), content.Top()
	w, h := content.Width, content.Height
	e.corners = Quad{
		LeftTop:     e.placement.MapXY(-l, -t),
		RightTop:    e.placement.MapXY(w+l, -t),
		LeftBottom:  e.placement.MapXY(-l, h+t),
		RightBottom: e.placement.MapXY(w+l, h+t),
	}
	e.contentSize = geom.Sz(
		geom.Distance(e.corners.LeftTop, e.corners.RightTop),
		geom.Distance(e.corners.LeftTop, e.corners.LeftBottom),
	)
	e.bounding = geom.Envelope(e.corners.points()...)
	e.visible = true
}

// collapse hides an element whose arrange result did not fit.
func (e *Element) collapse() {
	e.arranged = geom.Size{}
	e.unscaled = geom.Size{}
	e.contentSize = geom.Size{}
	e.corners = Quad{}
	e.clip = geom.Rect{}
	e.bounding = geom.Rect{}
	e.arrangeMatrix = geom.Matrix2D{}
	e.visible = false
}
