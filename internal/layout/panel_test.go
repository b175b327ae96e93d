package layout

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/visual"
)

func TestPanel_MeasureArrange(t *testing.T) {
	p := NewPanel()
	first := newFixed(geom.Sz(20, 20))
	second := newFixed(geom.Sz(20, 20))
	p.Add(first, geom.Pt(10, 10))
	p.Add(second, geom.Pt(50, 20))

	p.Measure(geom.Sz(200, 200))
	if diff := cmp.Diff(geom.Sz(70, 40), p.DesiredSize()); diff != "" {
		t.Fatalf("DesiredSize() mismatch (-want +got):\n%s", diff)
	}

	p.Arrange(geom.Pt(100, 100), p.DesiredSize())
	if diff := cmp.Diff(geom.Pt(150, 120), second.Corners().LeftTop, approx); diff != "" {
		t.Errorf("second LeftTop mismatch (-want +got):\n%s", diff)
	}
	if !second.HasHit(geom.Pt(155, 125)) {
		t.Error("second HasHit(155, 125) = false, want true")
	}

	p.Scale(2)
	if diff := cmp.Diff(geom.Pt(200, 140), second.Corners().LeftTop, approx); diff != "" {
		t.Errorf("second LeftTop after Scale mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Sz(40, 40), second.ContentSize(), approx); diff != "" {
		t.Errorf("second ContentSize() after Scale mismatch (-want +got):\n%s", diff)
	}
}

func TestPanel_MeasureLimitsChildren(t *testing.T) {
	p := NewPanel()
	c := newFixed(geom.Sz(100, 100))
	p.Add(c, geom.Pt(30, 40))

	p.Measure(geom.Sz(80, 80))

	if diff := cmp.Diff(geom.Sz(50, 40), c.DesiredSize()); diff != "" {
		t.Errorf("child DesiredSize() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Sz(80, 80), p.DesiredSize()); diff != "" {
		t.Errorf("DesiredSize() mismatch (-want +got):\n%s", diff)
	}
}

func TestPanel_LayerPropagation(t *testing.T) {
	p := NewPanel()
	a, b := New(), New()
	p.Add(a, geom.Point{})
	p.Add(b, geom.Point{})

	if err := b.PushLayer("labels"); err != nil {
		t.Fatalf("PushLayer() error = %v", err)
	}
	if err := p.PushLayer("trains"); err != nil {
		t.Fatalf("PushLayer() error = %v", err)
	}

	if a.CurrentLayer() != "trains" {
		t.Errorf("a CurrentLayer() = %q, want trains", a.CurrentLayer())
	}
	if b.CurrentLayer() != "labels" {
		t.Errorf("b CurrentLayer() = %q, want labels", b.CurrentLayer())
	}
	same := slices.Collect(p.VisualsInSameLayer())
	if len(same) != 1 || same[0] != visual.Visual(a) {
		t.Errorf("VisualsInSameLayer() = %v, want [a]", same)
	}

	p.PopLayer()
	if a.CurrentLayer() != visual.DefaultLayer {
		t.Errorf("a CurrentLayer() after PopLayer = %q, want default", a.CurrentLayer())
	}
}

func TestPanel_DrawsChildrenInOrder(t *testing.T) {
	p := NewPanel()
	p.ClipEnabled = true
	p.Add(newPainted(), geom.Pt(0, 0))
	p.Add(newPainted(), geom.Pt(10, 10))
	for _, c := range p.Children() {
		c.(*painted).Width = 5
		c.(*painted).Height = 5
	}
	p.Measure(geom.Sz(50, 50))
	p.Arrange(geom.Point{}, geom.Sz(50, 50))

	r := drawing.NewRecorder()
	p.Draw(drawing.NewCanvas(r, "layer", geom.Sz(50, 50), geom.Rect{Width: 50, Height: 50}))

	want := []string{"save", "clip", "save", "rect", "restore", "save", "rect", "restore", "restore"}
	if diff := cmp.Diff(want, recordedOps(r)); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if got := r.Commands()[6].Transform; got[4] != 10 || got[5] != 10 {
		t.Errorf("second child transform = %v, want translation (10, 10)", got)
	}
}

func TestStack_Arrange(t *testing.T) {
	type tc struct {
		orientation Orientation
		wantDesired geom.Size
		wantLast    geom.Point
	}

	tests := map[string]tc{
		"vertical": {
			orientation: Vertical,
			wantDesired: geom.Sz(30, 40),
			wantLast:    geom.Pt(0, 30),
		},
		"horizontal": {
			orientation: Horizontal,
			wantDesired: geom.Sz(100, 10),
			wantLast:    geom.Pt(70, 0),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewStack(tt.orientation, 5)
			items := []*fixed{
				newFixed(geom.Sz(30, 10)),
				newFixed(geom.Sz(30, 10)),
				newFixed(geom.Sz(30, 10)),
			}
			for _, it := range items {
				s.Add(it)
			}

			s.Measure(geom.Sz(200, 200))
			if diff := cmp.Diff(tt.wantDesired, s.DesiredSize()); diff != "" {
				t.Fatalf("DesiredSize() mismatch (-want +got):\n%s", diff)
			}

			s.Arrange(geom.Point{}, s.DesiredSize())
			if diff := cmp.Diff(tt.wantLast, items[2].Corners().LeftTop, approx); diff != "" {
				t.Errorf("last LeftTop mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(geom.Sz(30, 10), items[2].UnscaledSize()); diff != "" {
				t.Errorf("last UnscaledSize() mismatch (-want +got):\n%s", diff)
			}
			if n := len(slices.Collect(s.Visuals())); n != 3 {
				t.Errorf("Visuals() len = %d, want 3", n)
			}
		})
	}
}
