package diagram

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

// testDocument spans 06:00 to 10:00 over 1200 units, 5 units a minute.
func testDocument() *Document {
	return &Document{
		ID:         "diag_test",
		Name:       "test",
		Width:      1200,
		Height:     400,
		Background: "#ffffff",
		Start:      360,
		End:        600,
		Layers:     []Layer{{ID: "freight"}, {ID: "passenger"}},
		Stations: []Station{
			{ID: "s1", Name: "North", Y: 60, Color: "#000000"},
			{ID: "s2", Name: "Middle", Y: 200, Color: "#000000"},
			{ID: "s3", Name: "South", Y: 340, Color: "#000000"},
		},
		Trains: []Train{
			{
				ID:     "ice",
				Number: "ICE 571",
				Color:  "#ff0000",
				Layer:  "passenger",
				Stops: []Stop{
					{Station: "s1", Arrival: 380},
					{Station: "s2", Arrival: 412, Departure: 414},
					{Station: "s3", Arrival: 450},
				},
			},
			{
				ID:     "gm",
				Number: "GM 47",
				Color:  "#00ff00",
				Layer:  "freight",
				Stops: []Stop{
					{Station: "s1", Arrival: 400},
					{Station: "s2", Arrival: 500, Departure: 520},
					{Station: "s3", Arrival: 590},
				},
			},
		},
		Labels: []Label{{ID: "l1", Train: "ice", X: 130, Y: 100}},
	}
}

func mustScene(t *testing.T, doc *Document) *Scene {
	t.Helper()
	s, err := Build(doc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	s.Layout(doc.Transforms)
	return s
}

func ids(els []Element) []string {
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.ID()
	}
	return out
}

func TestDocument_Validate(t *testing.T) {
	type tc struct {
		edit    func(d *Document)
		wantErr error
	}

	tests := map[string]tc{
		"valid": {
			edit: func(*Document) {},
		},
		"zero width": {
			edit:    func(d *Document) { d.Width = 0 },
			wantErr: ErrInvalidDocument,
		},
		"empty time span": {
			edit:    func(d *Document) { d.End = d.Start },
			wantErr: ErrInvalidDocument,
		},
		"duplicate id": {
			edit:    func(d *Document) { d.Labels[0].ID = "s1" },
			wantErr: ErrDuplicateID,
		},
		"empty id": {
			edit:    func(d *Document) { d.Stations[0].ID = "" },
			wantErr: ErrInvalidDocument,
		},
		"unknown layer": {
			edit:    func(d *Document) { d.Trains[0].Layer = "regional" },
			wantErr: ErrUnknownLayer,
		},
		"unknown station": {
			edit:    func(d *Document) { d.Trains[1].Stops[2].Station = "s9" },
			wantErr: ErrUnknownStation,
		},
		"single stop": {
			edit:    func(d *Document) { d.Trains[0].Stops = d.Trains[0].Stops[:1] },
			wantErr: ErrInvalidDocument,
		},
		"departs before arrival": {
			edit:    func(d *Document) { d.Trains[0].Stops[1].Departure = 400 },
			wantErr: ErrInvalidDocument,
		},
		"arrives before previous departure": {
			edit:    func(d *Document) { d.Trains[0].Stops[2].Arrival = 413 },
			wantErr: ErrInvalidDocument,
		},
		"label for unknown train": {
			edit:    func(d *Document) { d.Labels[0].Train = "ic" },
			wantErr: ErrUnknownTrain,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := testDocument()
			tt.edit(d)
			if err := d.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDocument_TimeX(t *testing.T) {
	d := testDocument()
	tests := map[string]struct {
		minutes float64
		want    float64
	}{
		"start":  {minutes: 360, want: 0},
		"middle": {minutes: 480, want: 600},
		"end":    {minutes: 600, want: 1200},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := d.TimeX(tt.minutes); got != tt.want {
				t.Errorf("TimeX(%v) = %v, want %v", tt.minutes, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	s := mustScene(t, testDocument())

	var got []string
	kinds := make(map[ElementKind]int)
	for el := range s.Elements() {
		got = append(got, el.ID())
		kinds[el.Kind()]++
	}

	want := []string{"s1", "s2", "s3", "gm", "ice", "l1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Elements() mismatch (-want +got):\n%s", diff)
	}
	wantKinds := map[ElementKind]int{KindStation: 3, KindTrain: 2, KindLabel: 1}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	// stations, two train layers and the legend
	if got := s.Drawing.Len(); got != 4 {
		t.Errorf("Drawing.Len() = %d, want 4", got)
	}
}

func TestBuild_InvalidDocument(t *testing.T) {
	d := testDocument()
	d.Height = -1
	if _, err := Build(d); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("Build() error = %v, want %v", err, ErrInvalidDocument)
	}
}

func TestScene_Layout(t *testing.T) {
	s := mustScene(t, testDocument())

	tests := map[string]struct {
		id   string
		want geom.Rect
	}{
		"station line": {id: "s2", want: geom.Rect{X: 0, Y: 196, Width: 1200, Height: 8}},
		"train path":   {id: "ice", want: geom.Rect{X: 96, Y: 56, Width: 358, Height: 288}},
		"freight path": {id: "gm", want: geom.Rect{X: 196, Y: 56, Width: 958, Height: 288}},
		"label":        {id: "l1", want: geom.Rect{X: 130, Y: 100, Width: 57, Height: 17}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			el, ok := s.Element(tt.id)
			if !ok {
				t.Fatalf("Element(%q) not found", tt.id)
			}
			if diff := cmp.Diff(tt.want, el.BoundingRect(), approx); diff != "" {
				t.Errorf("BoundingRect() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScene_Hit(t *testing.T) {
	s := mustScene(t, testDocument())

	tests := map[string]struct {
		p       geom.Point
		wantAll []string
		wantTop string
	}{
		"path over station":     {p: geom.Pt(100, 60), wantAll: []string{"s1", "ice"}, wantTop: "ice"},
		"on a segment":          {p: geom.Pt(180, 130), wantAll: []string{"ice"}, wantTop: "ice"},
		"near a segment":        {p: geom.Pt(180, 133), wantAll: []string{"ice"}, wantTop: "ice"},
		"label above path":      {p: geom.Pt(150, 108), wantAll: []string{"ice", "l1"}, wantTop: "l1"},
		"station only":          {p: geom.Pt(450, 200), wantAll: []string{"s2"}, wantTop: "s2"},
		"inside boxes, no line": {p: geom.Pt(300, 100)},
		"outside diagram":       {p: geom.Pt(-10, -10)},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tt.wantAll, ids(s.HitAll(tt.p)), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("HitAll(%v) mismatch (-want +got):\n%s", tt.p, diff)
			}
			top, ok := s.Hit(tt.p)
			if ok != (tt.wantTop != "") {
				t.Fatalf("Hit(%v) ok = %v, want %v", tt.p, ok, tt.wantTop != "")
			}
			if ok && top.ID() != tt.wantTop {
				t.Errorf("Hit(%v) = %q, want %q", tt.p, top.ID(), tt.wantTop)
			}
		})
	}
}

func TestScene_Apply(t *testing.T) {
	type tc struct {
		ops     []Op
		want    geom.Rect
		wantT   Transform
		wantErr error
	}

	tests := map[string]tc{
		"move": {
			ops:   []Op{{Element: "l1", Kind: OpMove, X: 500, Y: 300}},
			want:  geom.Rect{X: 500, Y: 300, Width: 57, Height: 17},
			wantT: Transform{Origin: &Point{X: 500, Y: 300}},
		},
		"scale": {
			ops:   []Op{{Element: "l1", Kind: OpScale, Value: 2}},
			want:  geom.Rect{X: 130, Y: 100, Width: 114, Height: 34},
			wantT: Transform{Scale: 2},
		},
		"scale twice then scale to": {
			ops: []Op{
				{Element: "l1", Kind: OpScale, Value: 2},
				{Element: "l1", Kind: OpScale, Value: 2},
				{Element: "l1", Kind: OpScaleTo, Value: 3},
			},
			want:  geom.Rect{X: 130, Y: 100, Width: 171, Height: 51},
			wantT: Transform{Scale: 3},
		},
		"rotate a quarter turn": {
			ops:   []Op{{Element: "l1", Kind: OpRotate, Value: math.Pi / 2}},
			want:  geom.Rect{X: 113, Y: 100, Width: 17, Height: 57},
			wantT: Transform{Rotation: math.Pi / 2},
		},
		"move then scale": {
			ops: []Op{
				{Element: "l1", Kind: OpMove, X: 10, Y: 20},
				{Element: "l1", Kind: OpScale, Value: 2},
			},
			want:  geom.Rect{X: 10, Y: 20, Width: 114, Height: 34},
			wantT: Transform{Scale: 2, Origin: &Point{X: 10, Y: 20}},
		},
		"unknown element": {
			ops:     []Op{{Element: "l9", Kind: OpScale, Value: 2}},
			wantErr: ErrUnknownElement,
		},
		"zero scale": {
			ops:     []Op{{Element: "l1", Kind: OpScaleTo}},
			wantErr: ErrInvalidScale,
		},
		"unknown op": {
			ops:     []Op{{Element: "l1", Kind: "skew", Value: 1}},
			wantErr: ErrUnknownOp,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc := testDocument()
			s := mustScene(t, doc)

			var (
				got Transform
				err error
			)
			for _, op := range tt.ops {
				if got, err = s.Apply(op, got); err != nil {
					break
				}
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Apply() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tt.wantT, got, approx); diff != "" {
				t.Errorf("Apply() transform mismatch (-want +got):\n%s", diff)
			}

			el, _ := s.Element("l1")
			if diff := cmp.Diff(tt.want, el.BoundingRect(), approx); diff != "" {
				t.Errorf("BoundingRect() mismatch (-want +got):\n%s", diff)
			}

			// a fresh layout with the stored transform lands in the same place
			s.Layout(map[string]Transform{"l1": got})
			if diff := cmp.Diff(tt.want, el.BoundingRect(), approx); diff != "" {
				t.Errorf("BoundingRect() after Layout mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScene_Apply_NonFinite(t *testing.T) {
	type tc struct {
		setup   []Op
		op      Op
		wantErr error
	}

	tests := map[string]tc{
		"scale overflow": {
			setup:   []Op{{Element: "l1", Kind: OpScale, Value: 1e200}},
			op:      Op{Element: "l1", Kind: OpScale, Value: 1e200},
			wantErr: ErrInvalidScale,
		},
		"scale underflow": {
			setup:   []Op{{Element: "l1", Kind: OpScale, Value: 1e-200}},
			op:      Op{Element: "l1", Kind: OpScale, Value: 1e-200},
			wantErr: ErrInvalidScale,
		},
		"scale to infinity": {
			op:      Op{Element: "l1", Kind: OpScaleTo, Value: math.Inf(1)},
			wantErr: ErrInvalidScale,
		},
		"scale by NaN": {
			op:      Op{Element: "l1", Kind: OpScale, Value: math.NaN()},
			wantErr: ErrInvalidScale,
		},
		"rotation overflow": {
			setup:   []Op{{Element: "l1", Kind: OpRotate, Value: math.MaxFloat64}},
			op:      Op{Element: "l1", Kind: OpRotate, Value: math.MaxFloat64},
			wantErr: ErrInvalidAngle,
		},
		"rotate to NaN": {
			op:      Op{Element: "l1", Kind: OpRotateTo, Value: math.NaN()},
			wantErr: ErrInvalidAngle,
		},
		"move to infinity": {
			op:      Op{Element: "l1", Kind: OpMove, X: math.Inf(-1), Y: 10},
			wantErr: ErrInvalidOrigin,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := mustScene(t, testDocument())

			var prev Transform
			for _, op := range tt.setup {
				var err error
				if prev, err = s.Apply(op, prev); err != nil {
					t.Fatalf("Apply(%v) error = %v", op, err)
				}
			}
			el, _ := s.Element("l1")
			before := el.BoundingRect()

			got, err := s.Apply(tt.op, prev)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Apply() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(prev, got); diff != "" {
				t.Errorf("Apply() changed the transform (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(before, el.BoundingRect()); diff != "" {
				t.Errorf("Apply() moved the element (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScene_Bounds(t *testing.T) {
	s := mustScene(t, testDocument())

	got := s.Bounds([]string{"s2", "l1", "missing"})
	want := geom.Rect{X: 0, Y: 100, Width: 1200, Height: 104}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}
	if got := s.Bounds(nil); got != (geom.Rect{}) {
		t.Errorf("Bounds(nil) = %v, want empty", got)
	}
}

type fixedView struct {
	size geom.Size
}

func (v fixedView) ContentMatrix() geom.Matrix2D { return geom.Identity() }
func (v fixedView) ViewSize() geom.Size          { return v.size }
func (v fixedView) ContentSize() geom.Size       { return v.size }

func TestScene_Draw(t *testing.T) {
	s := mustScene(t, testDocument())
	r := drawing.NewRecorder()
	s.Drawing.Draw(r, fixedView{size: s.Size()})

	counts := make(map[string]int)
	for _, c := range r.Commands() {
		counts[c.Op]++
	}

	// three station lines and three segments for each train
	if counts["line"] != 9 {
		t.Errorf("line commands = %d, want 9", counts["line"])
	}
	// station names, the label and two legend entries
	if counts["text"] != 6 {
		t.Errorf("text commands = %d, want 6", counts["text"])
	}
	if counts["rect"] != 3 {
		t.Errorf("rect commands = %d, want 3", counts["rect"])
	}
	if counts["save"] != counts["restore"] {
		t.Errorf("save = %d, restore = %d", counts["save"], counts["restore"])
	}
}

func TestNewSampleDocument(t *testing.T) {
	doc := NewSampleDocument("diag_sample")
	s := mustScene(t, doc)

	n := 0
	for el := range s.Elements() {
		if !el.IsVisible() {
			t.Errorf("element %s %q is collapsed", el.Kind(), el.ID())
		}
		n++
	}
	if n != 9 {
		t.Errorf("elements = %d, want 9", n)
	}
}
