package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"

	"github.com/inamate/timegraph/internal/diagram"
	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/viewport"
)

var ErrNoDocument = errors.New("no document loaded")

// Engine owns a diagram document, its laid out scene and the view onto
// it. It is not safe for concurrent use.
type Engine struct {
	// Document state
	doc   *diagram.Document
	scene *diagram.Scene

	// View state
	view       *viewport.Modifier
	viewWidth  float64
	viewHeight float64

	recorder *drawing.Recorder
}

// NewEngine creates an engine drawing into a viewWidth x viewHeight view.
func NewEngine(viewWidth, viewHeight float64) *Engine {
	return &Engine{
		viewWidth:  viewWidth,
		viewHeight: viewHeight,
		recorder:   drawing.NewRecorder(),
	}
}

// --- Commands ---

// LoadDocument loads a document from JSON.
func (e *Engine) LoadDocument(jsonData string) error {
	var doc diagram.Document
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return e.load(&doc)
}

// LoadSampleDocument loads the built-in sample diagram.
func (e *Engine) LoadSampleDocument(id string) error {
	return e.load(diagram.NewSampleDocument(id))
}

// SetDocument loads doc. The engine keeps and mutates doc.
func (e *Engine) SetDocument(doc *diagram.Document) error {
	return e.load(doc)
}

func (e *Engine) load(doc *diagram.Document) error {
	scene, err := diagram.Build(doc)
	if err != nil {
		return err
	}

	// the border never gets smaller than the view
	view, err := viewport.New(e.viewWidth, e.viewHeight,
		max(e.viewWidth, doc.Width), max(e.viewHeight, doc.Height))
	if err != nil {
		return err
	}

	if doc.Transforms == nil {
		doc.Transforms = make(map[string]diagram.Transform)
	}
	e.doc = doc
	e.scene = scene
	e.view = view
	e.Layout()
	return nil
}

// Layout measures and arranges the scene at the document size.
func (e *Engine) Layout() {
	if e.scene == nil {
		return
	}
	e.scene.Layout(e.doc.Transforms)
}

// Transform applies op to an element and records the result in the
// document.
func (e *Engine) Transform(op diagram.Op) error {
	if e.scene == nil {
		return ErrNoDocument
	}
	next, err := e.scene.Apply(op, e.doc.Transforms[op.Element])
	if err != nil {
		return err
	}
	e.doc.Transforms[op.Element] = next
	e.doc.Version++
	return nil
}

// Pan moves the view by (dx, dy) view units.
func (e *Engine) Pan(dx, dy float64) (viewport.Result, error) {
	if e.view == nil {
		return viewport.Unmodified, ErrNoDocument
	}
	return e.view.TryTranslate(geom.Pt(dx, dy)), nil
}

// Zoom scales the view by delta around the view point (x, y).
func (e *Engine) Zoom(x, y, delta float64) (viewport.ScaleResult, error) {
	if e.view == nil {
		return viewport.ScaleUnmodified, ErrNoDocument
	}
	return e.view.TryScale(geom.Pt(x, y), delta)
}

// Resize changes the view size. The visible content is kept.
func (e *Engine) Resize(width, height float64) viewport.Result {
	if e.view == nil {
		e.viewWidth, e.viewHeight = width, height
		return viewport.Modified
	}
	res := e.view.TryResizeView(width, height)
	if res == viewport.Modified {
		e.viewWidth, e.viewHeight = width, height
	}
	return res
}

// --- Queries ---

// Render draws every layer and returns the draw commands as JSON.
func (e *Engine) Render() string {
	if e.scene == nil {
		return "[]"
	}
	e.scene.Drawing.Draw(e.recorder, e.view)
	result, _ := drawing.CommandsToJSON(e.recorder.Commands())
	return result
}

// RenderPNG rasterizes the current view as PNG into w.
func (e *Engine) RenderPNG(w io.Writer) error {
	if e.scene == nil {
		return ErrNoDocument
	}
	bg := e.doc.Background
	if bg == "" {
		bg = "#ffffff"
	}
	r, err := drawing.NewRaster(int(e.viewWidth), int(e.viewHeight), bg)
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	e.scene.Drawing.Draw(r, e.view)
	if err := png.Encode(w, r.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// HitTest returns the id of the topmost element under the view point
// (x, y), or an empty string.
func (e *Engine) HitTest(x, y float64) string {
	p, ok := e.toContent(x, y)
	if !ok {
		return ""
	}
	el, ok := e.scene.Hit(p)
	if !ok {
		return ""
	}
	return el.ID()
}

// HitTestAll returns the ids of every element under the view point
// (x, y), undermost first.
func (e *Engine) HitTestAll(x, y float64) []string {
	p, ok := e.toContent(x, y)
	if !ok {
		return []string{}
	}
	hits := e.scene.HitAll(p)
	ids := make([]string, len(hits))
	for i, el := range hits {
		ids[i] = el.ID()
	}
	return ids
}

func (e *Engine) toContent(x, y float64) (geom.Point, bool) {
	if e.scene == nil {
		return geom.Point{}, false
	}
	p, err := e.view.ViewToContent(geom.Pt(x, y))
	if err != nil {
		return geom.Point{}, false
	}
	return p, true
}

// SelectionBounds returns the diagram space bounds of the elements ids.
func (e *Engine) SelectionBounds(ids []string) geom.Rect {
	if e.scene == nil || len(ids) == 0 {
		return geom.Rect{}
	}
	return e.scene.Bounds(ids)
}

// ViewState is the pan and zoom state sent to clients.
type ViewState struct {
	Matrix  []float64 `json:"matrix"`
	Visible geom.Rect `json:"visible"`
	View    geom.Size `json:"view"`
	Border  geom.Size `json:"border"`
}

func (e *Engine) ViewState() ViewState {
	if e.view == nil {
		return ViewState{Matrix: geom.Identity().ToSlice(), View: geom.Sz(e.viewWidth, e.viewHeight)}
	}
	return ViewState{
		Matrix:  e.view.Matrix().ToSlice(),
		Visible: e.view.ViewRect(),
		View:    e.view.ViewSize(),
		Border:  e.view.BorderSize(),
	}
}

// Document returns the loaded document, or nil.
func (e *Engine) Document() *diagram.Document {
	return e.doc
}

// GetDocument returns the full document as JSON.
func (e *Engine) GetDocument() (string, error) {
	if e.doc == nil {
		return "{}", nil
	}
	data, err := json.Marshal(e.doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(data), nil
}
