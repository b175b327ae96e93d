package layout

import (
	"math"

	"github.com/inamate/timegraph/internal/geom"
)

// Scale multiplies the scale factor by factor and re-arranges the subtree.
// Non-positive factors are ignored.
func (e *Element) Scale(factor float64) {
	if factor <= 0 {
		return
	}
	e.applyScale(factor, e.scaleFactor*factor)
}

// ScaleTo sets the scale factor to factor and re-arranges the subtree.
func (e *Element) ScaleTo(factor float64) {
	if factor <= 0 {
		return
	}
	e.applyScale(factor/e.scaleFactor, factor)
}

func (e *Element) applyScale(step, factor float64) {
	e.arrangeMatrix = e.arrangeMatrix.Multiply(geom.Scale(step, step))
	e.scaleFactor = factor
	e.doArrange()
}

// Rotate turns the element clockwise by radians on top of its rotation.
func (e *Element) Rotate(radians float64) {
	e.applyRotation(radians, e.rotation+radians)
}

// RotateTo sets the clockwise rotation to radians.
func (e *Element) RotateTo(radians float64) {
	e.applyRotation(2*math.Pi-reduceAngle(e.rotation)+radians, radians)
}

func (e *Element) applyRotation(step, rotation float64) {
	e.arrangeMatrix = e.arrangeMatrix.Multiply(geom.Rotate(step))
	e.rotation = rotation
	e.doArrange()
}

func reduceAngle(rad float64) float64 {
	if rad > 2*math.Pi {
		rad = math.Mod(rad, 2*math.Pi)
	}
	return rad
}

// Reposition moves the element to origin of the root content space,
// keeping its scale and rotation.
func (e *Element) Reposition(origin geom.Point) {
	e.reposition(origin, geom.Identity())
}

// RepositionIn moves the element to origin of the content space of parent.
func (e *Element) RepositionIn(origin geom.Point, parent Placer) {
	e.reposition(origin, parent.PlacementMatrix())
}

func (e *Element) reposition(origin geom.Point, m geom.Matrix2D) {
	e.arrangeMatrix = e.arrangeMatrix.WithTranslation(m.Map(origin))
	e.doArrange()
}
