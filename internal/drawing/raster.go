package drawing

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/inamate/timegraph/internal/geom"
)

var ErrInvalidColor = errors.New("invalid color")

type rasterState struct {
	matrix geom.Matrix2D
	clip   image.Rectangle
}

// Raster is a Surface that rasterizes into an RGBA image. Clipping is
// limited to the device-space bounding box of the clip rectangle.
type Raster struct {
	img        *image.RGBA
	background color.Color
	matrix     geom.Matrix2D
	clip       image.Rectangle
	stack      []rasterState
	z          *vector.Rasterizer
}

// NewRaster creates a w×h raster cleared to background.
func NewRaster(w, h int, background string) (*Raster, error) {
	bg, err := ParseColor(background)
	if err != nil {
		return nil, err
	}
	r := &Raster{
		img:        image.NewRGBA(image.Rect(0, 0, w, h)),
		background: bg,
		matrix:     geom.Identity(),
		z:          vector.NewRasterizer(w, h),
	}
	r.clip = r.img.Bounds()
	r.Clear()
	return r, nil
}

// Image returns the rasterized image.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
}

func (r *Raster) Matrix() geom.Matrix2D     { return r.matrix }
func (r *Raster) SetMatrix(m geom.Matrix2D) { r.matrix = m }

func (r *Raster) Save() int {
	count := len(r.stack)
	r.stack = append(r.stack, rasterState{matrix: r.matrix, clip: r.clip})
	return count
}

func (r *Raster) RestoreToCount(count int) {
	for len(r.stack) > count && len(r.stack) > 0 {
		top := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		r.matrix, r.clip = top.matrix, top.clip
	}
}

func (r *Raster) ClipRect(rect geom.Rect) {
	dev := r.matrix.MapRect(rect)
	ir := image.Rect(
		int(math.Floor(dev.Left())),
		int(math.Floor(dev.Top())),
		int(math.Ceil(dev.Right())),
		int(math.Ceil(dev.Bottom())),
	)
	r.clip = r.clip.Intersect(ir)
}

func (r *Raster) DrawRect(rect geom.Rect, p Paint) {
	corners := []geom.Point{
		geom.Pt(rect.Left(), rect.Top()),
		geom.Pt(rect.Right(), rect.Top()),
		geom.Pt(rect.Right(), rect.Bottom()),
		geom.Pt(rect.Left(), rect.Bottom()),
	}
	r.DrawPolygon(corners, p)
}

func (r *Raster) DrawLine(a, b geom.Point, p Paint) {
	if p.Stroke == "" {
		return
	}
	col, err := ParseColor(p.Stroke)
	if err != nil {
		return
	}
	r.strokeSegment(a, b, strokeWidth(p), col)
}

func (r *Raster) DrawPolygon(points []geom.Point, p Paint) {
	if len(points) < 2 {
		return
	}
	if p.Fill != "" && len(points) > 2 {
		if col, err := ParseColor(p.Fill); err == nil {
			dev := make([]geom.Point, len(points))
			for i, pt := range points {
				dev[i] = r.matrix.Map(pt)
			}
			r.fill(dev, col)
		}
	}
	if p.Stroke != "" {
		col, err := ParseColor(p.Stroke)
		if err != nil {
			return
		}
		for i := range points {
			r.strokeSegment(points[i], points[(i+1)%len(points)], strokeWidth(p), col)
		}
	}
}

// DrawText draws unscaled 7x13 glyphs at the device position of origin.
func (r *Raster) DrawText(origin geom.Point, text string, p Paint) {
	if p.Fill == "" || r.clip.Empty() {
		return
	}
	col, err := ParseColor(p.Fill)
	if err != nil {
		return
	}
	dev := r.matrix.Map(origin)
	d := font.Drawer{
		Dst:  r.img.SubImage(r.clip).(*image.RGBA),
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(dev.X)), int(math.Round(dev.Y))),
	}
	d.DrawString(text)
}

// strokeSegment fills the quad around a→b in local coordinates.
func (r *Raster) strokeSegment(a, b geom.Point, width float64, col color.Color) {
	d := r2.Sub(b, a)
	if r2.Norm(d) == 0 {
		return
	}
	n := r2.Scale(width/2, r2.Unit(geom.Pt(-d.Y, d.X)))
	quad := []geom.Point{
		r.matrix.Map(r2.Add(a, n)),
		r.matrix.Map(r2.Add(b, n)),
		r.matrix.Map(r2.Sub(b, n)),
		r.matrix.Map(r2.Sub(a, n)),
	}
	r.fill(quad, col)
}

// fill rasterizes a device-space polygon restricted to the clip box.
func (r *Raster) fill(dev []geom.Point, col color.Color) {
	if r.clip.Empty() {
		return
	}
	off := r.clip.Min
	r.z.Reset(r.clip.Dx(), r.clip.Dy())
	r.z.DrawOp = draw.Over
	r.z.MoveTo(float32(dev[0].X)-float32(off.X), float32(dev[0].Y)-float32(off.Y))
	for _, p := range dev[1:] {
		r.z.LineTo(float32(p.X)-float32(off.X), float32(p.Y)-float32(off.Y))
	}
	r.z.ClosePath()
	r.z.Draw(r.img, r.clip, image.NewUniform(col), image.Point{})
}

func strokeWidth(p Paint) float64 {
	if p.StrokeWidth <= 0 {
		return 1
	}
	return p.StrokeWidth
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.Color, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return nil, fmt.Errorf("parse %q: %w", s, ErrInvalidColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, ErrInvalidColor)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
