//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/timegraph/internal/diagram"
	"github.com/inamate/timegraph/internal/engine"
)

const (
	defaultViewWidth  = 1200
	defaultViewHeight = 400
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(defaultViewWidth, defaultViewHeight)

	// Create the engine API object
	timegraph := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	timegraph.Set("loadDocument", js.FuncOf(loadDocument))
	timegraph.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	timegraph.Set("transform", js.FuncOf(transform))
	timegraph.Set("pan", js.FuncOf(pan))
	timegraph.Set("zoom", js.FuncOf(zoom))
	timegraph.Set("resize", js.FuncOf(resize))

	// --- Queries (frontend ← engine) ---
	timegraph.Set("render", js.FuncOf(render))
	timegraph.Set("hitTest", js.FuncOf(hitTest))
	timegraph.Set("hitTestAll", js.FuncOf(hitTestAll))
	timegraph.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	timegraph.Set("getViewState", js.FuncOf(getViewState))
	timegraph.Set("getDocument", js.FuncOf(getDocument))

	// Register on global scope
	js.Global().Set("timegraphEngine", timegraph)

	// Signal that WASM is ready
	js.Global().Set("timegraphWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) js.Value {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() js.Value {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	if err := eng.LoadDocument(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	diagramID := "diag_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		diagramID = args[0].String()
	}

	if err := eng.LoadSampleDocument(diagramID); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// transform takes an element transform as JSON.
func transform(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing transform JSON"})
	}

	var op diagram.Op
	if err := json.Unmarshal([]byte(args[0].String()), &op); err != nil {
		return errorResult(err)
	}
	if err := eng.Transform(op); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func pan(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	res, err := eng.Pan(args[0].Float(), args[1].Float())
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(res.String())
}

func zoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	res, err := eng.Zoom(args[0].Float(), args[1].Float(), args[2].Float())
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(res.String())
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	return js.ValueOf(eng.Resize(args[0].Float(), args[1].Float()).String())
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func hitTestAll(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf([]interface{}{})
	}
	ids := eng.HitTestAll(args[0].Float(), args[1].Float())
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	var ids []string
	if len(args) > 0 && args[0].Type() == js.TypeObject {
		ids = make([]string, args[0].Length())
		for i := range ids {
			ids[i] = args[0].Index(i).String()
		}
	}
	data, _ := json.Marshal(eng.SelectionBounds(ids))
	return js.ValueOf(string(data))
}

func getViewState(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(eng.ViewState())
	return js.ValueOf(string(data))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	doc, err := eng.GetDocument()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(doc)
}
