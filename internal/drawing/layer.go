package drawing

import (
	"iter"

	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/visual"
)

// Space selects the coordinate system a layer draws in.
type Space int

const (
	// SpaceDefault draws nothing meaningful; used by the sentinel layer.
	SpaceDefault Space = iota
	// SpaceContent follows the pan/zoom of the viewport.
	SpaceContent
	// SpaceView is fixed to the screen.
	SpaceView
)

// Layer is one entry of the drawing order.
type Layer interface {
	ID() visual.LayerID
	// Kind names the registration slot the layer can fill.
	Kind() string
	Space() Space
	Draw(c *Canvas)
}

type defaultLayer struct{}

func (defaultLayer) ID() visual.LayerID { return visual.DefaultLayer }
func (defaultLayer) Kind() string       { return KindDefault }
func (defaultLayer) Space() Space       { return SpaceDefault }
func (defaultLayer) Draw(*Canvas)       {}

// KindDefault is the kind of the sentinel layer.
const KindDefault = "default"

// DefaultLayer returns the sentinel layer occupying empty registered slots.
func DefaultLayer() Layer {
	return defaultLayer{}
}

// ContentLayer is a content-space layer whose visuals take part in
// per-layer hit testing. It is itself the root visual of its layer.
type ContentLayer struct {
	id      visual.LayerID
	kind    string
	visuals []visual.Visual
}

func NewContentLayer(kind string) *ContentLayer {
	return &ContentLayer{id: visual.NewLayerID(), kind: kind}
}

// Add appends visuals in draw order.
func (l *ContentLayer) Add(vs ...visual.Visual) {
	l.visuals = append(l.visuals, vs...)
}

// Adopt pushes the layer onto v and appends it.
func (l *ContentLayer) Adopt(v visual.Visual) error {
	if err := v.PushLayer(l.id); err != nil {
		return err
	}
	l.visuals = append(l.visuals, v)
	return nil
}

func (l *ContentLayer) ID() visual.LayerID { return l.id }
func (l *ContentLayer) Kind() string       { return l.kind }
func (l *ContentLayer) Space() Space       { return SpaceContent }

func (l *ContentLayer) Draw(c *Canvas) {
	for _, v := range l.visuals {
		if d, ok := v.(Drawable); ok {
			d.Draw(c)
		}
	}
}

func (l *ContentLayer) CurrentLayer() visual.LayerID { return l.id }

// PushLayer is a no-op: a content layer always owns itself.
func (l *ContentLayer) PushLayer(visual.LayerID) error { return nil }
func (l *ContentLayer) PopLayer()                      {}

func (l *ContentLayer) IsInLayer(layer visual.LayerID) bool { return layer == l.id }

// HasHit is always true so traversal descends into every visual.
func (l *ContentLayer) HasHit(geom.Point) bool { return true }

func (l *ContentLayer) Visuals() iter.Seq[visual.Visual] {
	return visual.All(l.visuals)
}

// VisualsInSameLayer yields every visual of the layer.
func (l *ContentLayer) VisualsInSameLayer() iter.Seq[visual.Visual] {
	return l.Visuals()
}

// ViewLayer draws screen-fixed content through a callback.
type ViewLayer struct {
	id   visual.LayerID
	kind string
	draw func(c *Canvas)
}

func NewViewLayer(kind string, draw func(c *Canvas)) *ViewLayer {
	return &ViewLayer{id: visual.NewLayerID(), kind: kind, draw: draw}
}

func (l *ViewLayer) ID() visual.LayerID { return l.id }
func (l *ViewLayer) Kind() string       { return l.kind }
func (l *ViewLayer) Space() Space       { return SpaceView }

func (l *ViewLayer) Draw(c *Canvas) {
	if l.draw != nil {
		l.draw(c)
	}
}
