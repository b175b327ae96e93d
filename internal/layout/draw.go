package layout

import "github.com/inamate/timegraph/internal/drawing"

// Draw paints the element through its OnDraw when it belongs to the canvas
// layer and is in view.
func (e *Element) Draw(c *drawing.Canvas) {
	if !e.visible || !e.IsInLayer(c.Layer()) || !e.IsInView(c.View()) {
		return
	}

	s := c.Surface()
	count := s.Save()
	defer s.RestoreToCount(count)

	ec := c.ForElement(e.placement, e.unscaled)
	if e.ClipEnabled {
		s.ClipRect(e.clip)
	}
	if d, ok := e.self.(Drawer); ok {
		d.OnDraw(ec)
	}
}
