package layout

import (
	"iter"

	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/visual"
)

type placedChild struct {
	child  Child
	origin geom.Point
}

// Panel places children at fixed origins of its content space.
type Panel struct {
	Element
	children []placedChild
}

func NewPanel() *Panel {
	p := &Panel{Element: NewElement()}
	p.ExtendElement(p)
	return p
}

// Add appends c at origin. Later children draw on top.
func (p *Panel) Add(c Child, origin geom.Point) {
	p.children = append(p.children, placedChild{child: c, origin: origin})
}

// Children returns the children in draw order.
func (p *Panel) Children() []Child {
	out := make([]Child, len(p.children))
	for i, pc := range p.children {
		out[i] = pc.child
	}
	return out
}

func (p *Panel) Visuals() iter.Seq[visual.Visual] {
	return func(yield func(visual.Visual) bool) {
		for _, pc := range p.children {
			if !yield(pc.child) {
				return
			}
		}
	}
}

// MeasureOverride measures every child in the space right and below its
// origin and returns their extent.
func (p *Panel) MeasureOverride(available geom.Size) geom.Size {
	var extent geom.Size
	for _, pc := range p.children {
		pc.child.Measure(geom.Sz(
			max(0, available.Width-pc.origin.X),
			max(0, available.Height-pc.origin.Y),
		))
		d := pc.child.DesiredSize()
		extent.Width = max(extent.Width, pc.origin.X+d.Width)
		extent.Height = max(extent.Height, pc.origin.Y+d.Height)
	}
	return extent
}

// ArrangeOverride arranges each child at its origin with its desired size.
func (p *Panel) ArrangeOverride(final geom.Size) geom.Size {
	for _, pc := range p.children {
		pc.child.ArrangeIn(pc.origin, pc.child.DesiredSize(), p)
	}
	return final
}

func (p *Panel) OnDraw(c *drawing.Canvas) {
	for _, pc := range p.children {
		pc.child.Draw(c)
	}
}
