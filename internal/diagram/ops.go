package diagram

import (
	"fmt"
	"math"

	"github.com/inamate/timegraph/internal/geom"
)

type OpKind string

const (
	OpScale    OpKind = "scale"
	OpScaleTo  OpKind = "scaleTo"
	OpRotate   OpKind = "rotate"
	OpRotateTo OpKind = "rotateTo"
	OpMove     OpKind = "move"
)

// Op is a single element transform. Value is the scale factor or the
// angle in radians; X and Y are the new origin for a move.
type Op struct {
	Element string  `json:"element"`
	Kind    OpKind  `json:"kind"`
	Value   float64 `json:"value,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
}

// Apply runs op on its element and returns prev updated to the resulting
// placement. The element is left unchanged when op fails, including when
// the resulting scale or rotation would not be finite.
func (s *Scene) Apply(op Op, prev Transform) (Transform, error) {
	e, ok := s.elements[op.Element]
	if !ok {
		return prev, fmt.Errorf("apply %s to %q: %w", op.Kind, op.Element, ErrUnknownElement)
	}

	next := prev
	switch op.Kind {
	case OpScale, OpScaleTo:
		factor := op.Value
		if op.Kind == OpScale {
			factor *= e.el.ScaleFactor()
		}
		if op.Value <= 0 || factor <= 0 || !finite(factor) {
			return prev, fmt.Errorf("apply %s %v: %w", op.Kind, op.Value, ErrInvalidScale)
		}
		if op.Kind == OpScale {
			e.el.Scale(op.Value)
		} else {
			e.el.ScaleTo(op.Value)
		}
		next.Scale = e.el.ScaleFactor()
	case OpRotate:
		if !finite(op.Value) || !finite(e.el.Rotation()+op.Value) {
			return prev, fmt.Errorf("apply %s %v: %w", op.Kind, op.Value, ErrInvalidAngle)
		}
		e.el.Rotate(op.Value)
		next.Rotation = e.el.Rotation()
	case OpRotateTo:
		if !finite(op.Value) {
			return prev, fmt.Errorf("apply %s %v: %w", op.Kind, op.Value, ErrInvalidAngle)
		}
		e.el.RotateTo(op.Value)
		next.Rotation = e.el.Rotation()
	case OpMove:
		if !finite(op.X) || !finite(op.Y) {
			return prev, fmt.Errorf("apply %s (%v, %v): %w", op.Kind, op.X, op.Y, ErrInvalidOrigin)
		}
		e.el.RepositionIn(geom.Pt(op.X, op.Y), e.parent)
		next.Origin = &Point{X: op.X, Y: op.Y}
	default:
		return prev, fmt.Errorf("apply %q: %w", op.Kind, ErrUnknownOp)
	}
	return next, nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
