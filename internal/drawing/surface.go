// Package drawing holds the drawing-layer registry and the canvas
// abstraction elements draw on. Pixel output is left to Surface
// implementations.
package drawing

import "github.com/inamate/timegraph/internal/geom"

// Paint describes how a shape is filled and stroked. Empty colors are skipped.
type Paint struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Surface is a 2D drawing target with a current transform and clip.
type Surface interface {
	Clear()
	Matrix() geom.Matrix2D
	SetMatrix(m geom.Matrix2D)

	// Save pushes the current matrix and clip and returns the count to
	// pass to RestoreToCount.
	Save() int
	RestoreToCount(count int)

	ClipRect(r geom.Rect)
	DrawRect(r geom.Rect, p Paint)
	DrawLine(a, b geom.Point, p Paint)
	DrawPolygon(points []geom.Point, p Paint)
	// DrawText draws text with its baseline starting at origin, in the
	// fill color.
	DrawText(origin geom.Point, text string, p Paint)
}

// ViewProvider exposes the pan/zoom state content canvases are built from.
type ViewProvider interface {
	ContentMatrix() geom.Matrix2D
	ViewSize() geom.Size
	ContentSize() geom.Size
}
