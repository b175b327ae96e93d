package drawing

import (
	"encoding/json"

	"github.com/inamate/timegraph/internal/geom"
)

// Command is a single drawing operation for the frontend to replay on a
// Canvas2D context.
type Command struct {
	Op          string       `json:"op"`                    // "clear", "save", "restore", "clip", "rect", "line", "polygon", "text"
	Transform   []float64    `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Rect        *geom.Rect   `json:"rect,omitempty"`        // For "clip" and "rect"
	Points      [][2]float64 `json:"points,omitempty"`      // For "line", "polygon" and the "text" baseline origin
	Text        string       `json:"text,omitempty"`        // For "text"
	Fill        string       `json:"fill,omitempty"`        // Fill color
	Stroke      string       `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64      `json:"strokeWidth,omitempty"` // Stroke width
}

// Recorder is a Surface that records commands instead of drawing.
type Recorder struct {
	matrix   geom.Matrix2D
	stack    []geom.Matrix2D
	commands []Command
}

func NewRecorder() *Recorder {
	return &Recorder{matrix: geom.Identity()}
}

// Commands returns the recorded commands in painter's order.
func (r *Recorder) Commands() []Command {
	return r.commands
}

func (r *Recorder) Clear() {
	r.commands = append(r.commands[:0], Command{Op: "clear"})
}

func (r *Recorder) Matrix() geom.Matrix2D     { return r.matrix }
func (r *Recorder) SetMatrix(m geom.Matrix2D) { r.matrix = m }

func (r *Recorder) Save() int {
	count := len(r.stack)
	r.stack = append(r.stack, r.matrix)
	r.commands = append(r.commands, Command{Op: "save"})
	return count
}

func (r *Recorder) RestoreToCount(count int) {
	for len(r.stack) > count && len(r.stack) > 0 {
		r.matrix = r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		r.commands = append(r.commands, Command{Op: "restore"})
	}
}

func (r *Recorder) ClipRect(rect geom.Rect) {
	r.commands = append(r.commands, Command{
		Op:        "clip",
		Transform: r.matrix.ToSlice(),
		Rect:      &rect,
	})
}

func (r *Recorder) DrawRect(rect geom.Rect, p Paint) {
	r.commands = append(r.commands, Command{
		Op:          "rect",
		Transform:   r.matrix.ToSlice(),
		Rect:        &rect,
		Fill:        p.Fill,
		Stroke:      p.Stroke,
		StrokeWidth: p.StrokeWidth,
	})
}

func (r *Recorder) DrawLine(a, b geom.Point, p Paint) {
	r.commands = append(r.commands, Command{
		Op:          "line",
		Transform:   r.matrix.ToSlice(),
		Points:      [][2]float64{{a.X, a.Y}, {b.X, b.Y}},
		Stroke:      p.Stroke,
		StrokeWidth: p.StrokeWidth,
	})
}

func (r *Recorder) DrawPolygon(points []geom.Point, p Paint) {
	pts := make([][2]float64, len(points))
	for i, pt := range points {
		pts[i] = [2]float64{pt.X, pt.Y}
	}
	r.commands = append(r.commands, Command{
		Op:          "polygon",
		Transform:   r.matrix.ToSlice(),
		Points:      pts,
		Fill:        p.Fill,
		Stroke:      p.Stroke,
		StrokeWidth: p.StrokeWidth,
	})
}

func (r *Recorder) DrawText(origin geom.Point, text string, p Paint) {
	r.commands = append(r.commands, Command{
		Op:        "text",
		Transform: r.matrix.ToSlice(),
		Points:    [][2]float64{{origin.X, origin.Y}},
		Text:      text,
		Fill:      p.Fill,
	})
}

// CommandsToJSON serializes commands to JSON.
func CommandsToJSON(commands []Command) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
