package layout

import (
	"iter"

	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/visual"
)

type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

// Stack lines up children along one axis. Each child takes its desired
// length on the stacking axis and the full stack on the other.
type Stack struct {
	Element
	Orientation Orientation
	Spacing     float64
	children    []Child
}

func NewStack(o Orientation, spacing float64) *Stack {
	s := &Stack{Element: NewElement(), Orientation: o, Spacing: spacing}
	s.ExtendElement(s)
	return s
}

func (s *Stack) Add(children ...Child) {
	s.children = append(s.children, children...)
}

func (s *Stack) Visuals() iter.Seq[visual.Visual] {
	return visual.All(s.children)
}

func (s *Stack) MeasureOverride(available geom.Size) geom.Size {
	var used geom.Size
	for i, c := range s.children {
		gap := s.Spacing
		if i == 0 {
			gap = 0
		}
		if s.Orientation == Vertical {
			c.Measure(geom.Sz(available.Width, max(0, available.Height-used.Height-gap)))
			d := c.DesiredSize()
			used.Width = max(used.Width, d.Width)
			used.Height += gap + d.Height
		} else {
			c.Measure(geom.Sz(max(0, available.Width-used.Width-gap), available.Height))
			d := c.DesiredSize()
			used.Width += gap + d.Width
			used.Height = max(used.Height, d.Height)
		}
	}
	return used
}

func (s *Stack) ArrangeOverride(final geom.Size) geom.Size {
	offset := 0.0
	for _, c := range s.children {
		d := c.DesiredSize()
		if s.Orientation == Vertical {
			c.ArrangeIn(geom.Pt(0, offset), geom.Sz(final.Width, d.Height), s)
			offset += d.Height + s.Spacing
		} else {
			c.ArrangeIn(geom.Pt(offset, 0), geom.Sz(d.Width, final.Height), s)
			offset += d.Width + s.Spacing
		}
	}
	return final
}

func (s *Stack) OnDraw(c *drawing.Canvas) {
	for _, child := range s.children {
		child.Draw(c)
	}
}
