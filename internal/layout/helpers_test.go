package layout

import (
	"iter"

	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/visual"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

// wrapper arranges its inner child over its whole content.
type wrapper struct {
	Element
	inner *Element
}

func newWrapper(inner *Element) *wrapper {
	w := &wrapper{Element: NewElement(), inner: inner}
	w.ExtendElement(w)
	return w
}

func (w *wrapper) MeasureOverride(available geom.Size) geom.Size {
	return available
}

func (w *wrapper) ArrangeOverride(final geom.Size) geom.Size {
	w.inner.ArrangeIn(geom.Point{}, final, w)
	return w.inner.ArrangedSize()
}

func (w *wrapper) Visuals() iter.Seq[visual.Visual] {
	return visual.All([]*Element{w.inner})
}

// fixed always asks for and takes size.
type fixed struct {
	Element
	size geom.Size
}

func newFixed(size geom.Size) *fixed {
	f := &fixed{Element: NewElement(), size: size}
	f.ExtendElement(f)
	return f
}

func (f *fixed) MeasureOverride(geom.Size) geom.Size { return f.size }
func (f *fixed) ArrangeOverride(geom.Size) geom.Size { return f.size }

// overflowing reports content twice as large as the size it returns.
type overflowing struct {
	Element
}

func newOverflowing() *overflowing {
	o := &overflowing{Element: NewElement()}
	o.ExtendElement(o)
	return o
}

func (o *overflowing) ArrangeCore(size geom.Size) (geom.Rect, geom.Size) {
	return geom.RectAt(geom.Point{}, geom.Sz(2*size.Width, 2*size.Height)), size
}

// painted fills its element canvas. A non-nil take replaces the arranged
// size.
type painted struct {
	Element
	take *geom.Size
}

func newPainted() *painted {
	p := &painted{Element: NewElement()}
	p.ExtendElement(p)
	return p
}

func (p *painted) ArrangeOverride(final geom.Size) geom.Size {
	if p.take != nil {
		return *p.take
	}
	return final
}

func (p *painted) OnDraw(c *drawing.Canvas) {
	c.Surface().DrawRect(geom.RectAt(geom.Point{}, c.Size()), drawing.Paint{Fill: "#000000"})
}
