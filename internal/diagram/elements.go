package diagram

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/layout"
)

type ElementKind string

const (
	KindStation ElementKind = "station"
	KindTrain   ElementKind = "train"
	KindLabel   ElementKind = "label"
)

const (
	stationLineHeight = 8
	// hitTolerance is how far from a train path a point still hits it.
	hitTolerance = 4
	labelPadding = 4
	glyphWidth   = 7
	glyphHeight  = 13
)

// Element is a diagram element addressable by id.
type Element interface {
	layout.Child

	ID() string
	Kind() ElementKind

	IsVisible() bool
	ScaleFactor() float64
	Rotation() float64
	BoundingRect() geom.Rect
	Scale(factor float64)
	ScaleTo(factor float64)
	Rotate(radians float64)
	RotateTo(radians float64)
	RepositionIn(origin geom.Point, parent layout.Placer)
}

// StationLine is the horizontal line of a station across the diagram.
type StationLine struct {
	layout.Element
	station Station
}

func NewStationLine(s Station, width float64) *StationLine {
	l := &StationLine{Element: layout.NewElement(), station: s}
	l.Width = width
	l.Height = stationLineHeight
	l.ExtendElement(l)
	return l
}

func (l *StationLine) ID() string        { return l.station.ID }
func (l *StationLine) Kind() ElementKind { return KindStation }

// Origin is the top left of the line in diagram space.
func (l *StationLine) Origin() geom.Point {
	return geom.Pt(0, l.station.Y-stationLineHeight/2)
}

func (l *StationLine) OnDraw(c *drawing.Canvas) {
	s := c.Surface()
	size := c.Size()
	mid := size.Height / 2
	s.DrawLine(geom.Pt(0, mid), geom.Pt(size.Width, mid), drawing.Paint{Stroke: l.station.Color, StrokeWidth: 1})
	s.DrawText(geom.Pt(labelPadding, mid-labelPadding/2), l.station.Name, drawing.Paint{Fill: l.station.Color})
}

// TrainPath is the polyline a train draws through the diagram. Its box
// is the envelope of the path widened by the hit tolerance.
type TrainPath struct {
	layout.Element
	train  Train
	origin geom.Point
	points []geom.Point // relative to the top left of the box
}

// NewTrainPath creates the path through points given in diagram space.
func NewTrainPath(t Train, points []geom.Point) *TrainPath {
	box := geom.Envelope(points...)
	p := &TrainPath{
		Element: layout.NewElement(),
		train:   t,
		origin:  geom.Pt(box.X-hitTolerance, box.Y-hitTolerance),
		points:  make([]geom.Point, len(points)),
	}
	for i, pt := range points {
		p.points[i] = r2.Sub(pt, p.origin)
	}
	p.Width = box.Width + 2*hitTolerance
	p.Height = box.Height + 2*hitTolerance
	p.ExtendElement(p)
	return p
}

func (p *TrainPath) ID() string         { return p.train.ID }
func (p *TrainPath) Kind() ElementKind  { return KindTrain }
func (p *TrainPath) Origin() geom.Point { return p.origin }

// Points returns the path relative to the box.
func (p *TrainPath) Points() []geom.Point {
	return p.points
}

// HasHit narrows the box test to points near one of the segments.
func (p *TrainPath) HasHit(pt geom.Point) bool {
	if !p.Element.HasHit(pt) {
		return false
	}
	inv, ok := p.PlacementMatrix().Invert()
	if !ok {
		return false
	}
	local := inv.Map(pt)
	for i := 1; i < len(p.points); i++ {
		if segmentDistance(local, p.points[i-1], p.points[i]) <= hitTolerance {
			return true
		}
	}
	return len(p.points) == 1 && geom.Distance(local, p.points[0]) <= hitTolerance
}

func (p *TrainPath) OnDraw(c *drawing.Canvas) {
	s := c.Surface()
	paint := drawing.Paint{Stroke: p.train.Color, StrokeWidth: 2}
	for i := 1; i < len(p.points); i++ {
		s.DrawLine(p.points[i-1], p.points[i], paint)
	}
}

func segmentDistance(p, a, b geom.Point) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return geom.Distance(p, a)
	}
	t := math.Max(0, math.Min(1, r2.Dot(r2.Sub(p, a), ab)/l2))
	return geom.Distance(p, r2.Add(a, r2.Scale(t, ab)))
}

// TrainLabel is a boxed train number.
type TrainLabel struct {
	layout.Element
	id    string
	text  string
	color string
}

// NewTrainLabel creates a label for t. Labels with an empty id are not
// addressable and never reported by hit tests.
func NewTrainLabel(id string, t Train) *TrainLabel {
	l := &TrainLabel{Element: layout.NewElement(), id: id, text: t.Number, color: t.Color}
	l.Width = float64(len(t.Number)*glyphWidth + 2*labelPadding)
	l.Height = glyphHeight + labelPadding
	l.ExtendElement(l)
	return l
}

func (l *TrainLabel) ID() string        { return l.id }
func (l *TrainLabel) Kind() ElementKind { return KindLabel }
func (l *TrainLabel) Text() string      { return l.text }

func (l *TrainLabel) OnDraw(c *drawing.Canvas) {
	s := c.Surface()
	s.DrawRect(geom.RectAt(geom.Point{}, c.Size()), drawing.Paint{Fill: "#ffffffe6", Stroke: l.color, StrokeWidth: 1})
	s.DrawText(geom.Pt(labelPadding, glyphHeight), l.text, drawing.Paint{Fill: l.color})
}
