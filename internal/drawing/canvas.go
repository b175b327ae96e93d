package drawing

import (
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/visual"
)

// Drawable is anything that can draw itself on a canvas.
type Drawable interface {
	Draw(c *Canvas)
}

// Canvas is the drawing context handed to a layer and, through
// ForElement, to each element of the layer.
type Canvas struct {
	surface Surface
	layer   visual.LayerID
	size    geom.Size
	view    geom.Rect // visible area in canvas space
	source  geom.Matrix2D
}

// NewCanvas wraps s. The current matrix of s becomes the source matrix
// element placements are composed with.
func NewCanvas(s Surface, layer visual.LayerID, size geom.Size, view geom.Rect) *Canvas {
	return &Canvas{
		surface: s,
		layer:   layer,
		size:    size,
		view:    view,
		source:  s.Matrix(),
	}
}

// NewLayerCanvas creates the canvas matching the space of l.
func NewLayerCanvas(l Layer, s Surface, vp ViewProvider) *Canvas {
	switch l.Space() {
	case SpaceContent:
		cm := vp.ContentMatrix()
		vs := vp.ViewSize()
		view := geom.Rect{
			X:      -cm[4] / cm.ScaleX(),
			Y:      -cm[5] / cm.ScaleY(),
			Width:  vs.Width / cm.ScaleX(),
			Height: vs.Height / cm.ScaleY(),
		}
		s.SetMatrix(s.Matrix().Multiply(cm))
		return NewCanvas(s, l.ID(), vp.ContentSize(), view)
	case SpaceView:
		vs := vp.ViewSize()
		return NewCanvas(s, l.ID(), vs, geom.RectAt(geom.Pt(0, 0), vs))
	default:
		return NewCanvas(s, l.ID(), geom.Size{}, geom.Rect{})
	}
}

func (c *Canvas) Surface() Surface            { return c.surface }
func (c *Canvas) Layer() visual.LayerID       { return c.layer }
func (c *Canvas) Size() geom.Size             { return c.size }
func (c *Canvas) View() geom.Rect             { return c.view }
func (c *Canvas) SourceMatrix() geom.Matrix2D { return c.source }

// ForElement sets the surface matrix to draw in the local space of an
// element placed by placement and returns the element canvas.
func (c *Canvas) ForElement(placement geom.Matrix2D, unscaled geom.Size) *Canvas {
	ec := *c
	ec.size = geom.Sz(min(unscaled.Width, c.size.Width), min(unscaled.Height, c.size.Height))
	c.surface.SetMatrix(c.source.Multiply(placement))
	return &ec
}

// Draw draws d on c.
func (c *Canvas) Draw(d Drawable) {
	d.Draw(c)
}
