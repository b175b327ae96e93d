package geom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// Where:
// - a, d = scale
// - b, c = skew/rotation
// - e, f = translation
//
// The zero value is the degenerate transform that maps every point to the origin.
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a clockwise rotation matrix (angle in radians, y axis down).
func Rotate(radians float64) Matrix2D {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Map applies the matrix to a point.
func (m Matrix2D) Map(p Point) Point {
	return m.MapXY(p.X, p.Y)
}

// MapXY applies the matrix to the point (x, y).
func (m Matrix2D) MapXY(x, y float64) Point {
	return Point{X: m[0]*x + m[2]*y + m[4], Y: m[1]*x + m[3]*y + m[5]}
}

// MapRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Matrix2D) MapRect(r Rect) Rect {
	return Envelope(
		m.MapXY(r.X, r.Y),
		m.MapXY(r.Right(), r.Y),
		m.MapXY(r.Right(), r.Bottom()),
		m.MapXY(r.X, r.Bottom()),
	)
}

// ScaleX returns the horizontal scale component (a).
func (m Matrix2D) ScaleX() float64 { return m[0] }

// ScaleY returns the vertical scale component (d).
func (m Matrix2D) ScaleY() float64 { return m[3] }

// Translation returns the translation component (e, f).
func (m Matrix2D) Translation() Point {
	return Point{X: m[4], Y: m[5]}
}

// WithTranslation returns a copy of m whose translation is replaced by p.
func (m Matrix2D) WithTranslation(p Point) Matrix2D {
	m[4], m[5] = p.X, p.Y
	return m
}

// Determinant returns the determinant of the matrix.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix and false if it is not invertible.
func (m Matrix2D) Invert() (Matrix2D, bool) {
	det := m.Determinant()
	if det == 0 {
		return Identity(), false
	}

	invDet := 1.0 / det
	return Matrix2D{
		m[3] * invDet,
		-m[1] * invDet,
		-m[2] * invDet,
		m[0] * invDet,
		(m[2]*m[5] - m[3]*m[4]) * invDet,
		(m[1]*m[4] - m[0]*m[5]) * invDet,
	}, true
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	id := Identity()
	for i := range m {
		if !scalar.EqualWithinAbs(m[i], id[i], eps) {
			return false
		}
	}
	return true
}

// IsScaleTranslate reports whether m has no rotation or skew component.
func (m Matrix2D) IsScaleTranslate() bool {
	return m[1] == 0 && m[2] == 0
}
