package diagram

import (
	"errors"
	"fmt"
	"iter"

	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/hittest"
	"github.com/inamate/timegraph/internal/layout"
	"github.com/inamate/timegraph/internal/visual"
)

// Drawing layer kinds.
const (
	KindStations = "stations"
	KindTrains   = "trains"
	KindLegend   = "legend"
)

var (
	ErrUnknownElement = errors.New("unknown element")
	ErrUnknownOp      = errors.New("unknown transform op")
	ErrInvalidScale   = errors.New("scale must be positive and finite")
	ErrInvalidAngle   = errors.New("rotation must be finite")
	ErrInvalidOrigin  = errors.New("origin must be finite")
)

// legendOffset is the top left of the legend in view space.
var legendOffset = geom.Pt(8, 8)

type entry struct {
	el     Element
	parent layout.Placer
}

// Scene is a built document: one root panel per content layer registered
// with a drawing manager, plus a screen-fixed legend.
type Scene struct {
	Drawing *drawing.Manager
	Hits    *hittest.Manager

	size     geom.Size
	roots    []*layout.Panel
	legend   *layout.Stack
	elements map[string]entry
	order    []string
}

// Build creates the scene of doc. The scene is not laid out.
func Build(doc *Document) (*Scene, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	s := &Scene{
		Drawing:  drawing.NewManager(KindStations),
		size:     geom.Sz(doc.Width, doc.Height),
		elements: make(map[string]entry),
	}

	stations := make(map[string]Station, len(doc.Stations))
	root := s.newRoot()
	for _, st := range doc.Stations {
		stations[st.ID] = st
		line := NewStationLine(st, doc.Width)
		root.Add(line, line.Origin())
		s.register(line, root)
	}
	layer := drawing.NewContentLayer(KindStations)
	if err := layer.Adopt(root); err != nil {
		return nil, fmt.Errorf("adopt stations: %w", err)
	}
	if err := s.Drawing.ReplaceRegistered(layer, 0); err != nil {
		return nil, err
	}

	for _, l := range doc.Layers {
		root := s.newRoot()
		for _, t := range doc.Trains {
			if t.Layer != l.ID {
				continue
			}
			path := NewTrainPath(t, trainPoints(doc, t, stations))
			root.Add(path, path.Origin())
			s.register(path, root)
		}
		for _, lb := range doc.Labels {
			t, _ := doc.train(lb.Train)
			if t.Layer != l.ID {
				continue
			}
			label := NewTrainLabel(lb.ID, t)
			root.Add(label, geom.Pt(lb.X, lb.Y))
			s.register(label, root)
		}

		layer := drawing.NewContentLayer(KindTrains)
		if err := layer.Adopt(root); err != nil {
			return nil, fmt.Errorf("adopt layer %q: %w", l.ID, err)
		}
		s.Drawing.AddOnTop(layer)
	}

	s.legend = layout.NewStack(layout.Vertical, 2)
	for _, t := range doc.Trains {
		s.legend.Add(NewTrainLabel("", t))
	}
	s.Drawing.AddOnTop(drawing.NewViewLayer(KindLegend, s.legend.Draw))

	s.Hits = hittest.NewManager(s.Drawing)
	return s, nil
}

func (s *Scene) newRoot() *layout.Panel {
	root := layout.NewPanel()
	root.Width = s.size.Width
	root.Height = s.size.Height
	s.roots = append(s.roots, root)
	return root
}

func (s *Scene) register(el Element, parent layout.Placer) {
	s.elements[el.ID()] = entry{el: el, parent: parent}
	s.order = append(s.order, el.ID())
}

func trainPoints(doc *Document, t Train, stations map[string]Station) []geom.Point {
	points := make([]geom.Point, 0, 2*len(t.Stops))
	for _, stop := range t.Stops {
		y := stations[stop.Station].Y
		points = append(points, geom.Pt(doc.TimeX(stop.Arrival), y))
		if stop.leaves() > stop.Arrival {
			points = append(points, geom.Pt(doc.TimeX(stop.leaves()), y))
		}
	}
	return points
}

func (s *Scene) Size() geom.Size { return s.size }

// Element looks up an element by id.
func (s *Scene) Element(id string) (Element, bool) {
	e, ok := s.elements[id]
	return e.el, ok
}

// Elements yields the elements in build order.
func (s *Scene) Elements() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		for _, id := range s.order {
			if !yield(s.elements[id].el) {
				return
			}
		}
	}
}

// Layout measures and arranges every layer at the diagram size and then
// reapplies transforms.
func (s *Scene) Layout(transforms map[string]Transform) {
	for _, root := range s.roots {
		root.Measure(s.size)
		root.Arrange(geom.Point{}, s.size)
	}
	s.legend.Measure(geom.InfiniteSize)
	s.legend.Arrange(legendOffset, s.legend.DesiredSize())

	for _, id := range s.order {
		t, ok := transforms[id]
		if !ok {
			continue
		}
		e := s.elements[id]
		if t.Origin != nil {
			e.el.RepositionIn(geom.Pt(t.Origin.X, t.Origin.Y), e.parent)
		}
		if t.Scale > 0 {
			e.el.ScaleTo(t.Scale)
		}
		if t.Rotation != 0 {
			e.el.RotateTo(t.Rotation)
		}
	}
}

// HitAll returns the elements under p, a point of diagram space, from the
// undermost layer up.
func (s *Scene) HitAll(p geom.Point) []Element {
	var out []Element
	s.Hits.Visit(nil, func(v visual.Visual) hittest.ResultBehavior {
		if el, ok := v.(Element); ok && el.ID() != "" {
			out = append(out, el)
		}
		return hittest.ResultContinue
	}, p)
	return out
}

// Hit returns the topmost element under p.
func (s *Scene) Hit(p geom.Point) (Element, bool) {
	all := s.HitAll(p)
	if len(all) == 0 {
		return nil, false
	}
	return all[len(all)-1], true
}

// Bounds returns the union of the bounding rectangles of ids. Unknown ids
// are skipped.
func (s *Scene) Bounds(ids []string) geom.Rect {
	var out geom.Rect
	first := true
	for _, id := range ids {
		e, ok := s.elements[id]
		if !ok || !e.el.IsVisible() {
			continue
		}
		if first {
			out = e.el.BoundingRect()
			first = false
			continue
		}
		out = out.Union(e.el.BoundingRect())
	}
	return out
}
