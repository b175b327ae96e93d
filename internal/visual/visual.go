// Package visual defines the scene-graph node contract: drawing-layer
// membership, child enumeration and hit testing.
package visual

import (
	"errors"
	"iter"

	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/typeid"
)

// LayerID identifies a drawing layer.
type LayerID string

// DefaultLayer is the sentinel at the bottom of every layer stack. A visual
// whose current layer is DefaultLayer is not restricted to any layer.
const DefaultLayer LayerID = "default"

var ErrEmptyLayer = errors.New("empty layer id")

// NewLayerID generates a unique layer id.
func NewLayerID() LayerID {
	return LayerID(typeid.NewLayerID())
}

// Visual is a node of the scene graph.
type Visual interface {
	CurrentLayer() LayerID
	PushLayer(layer LayerID) error
	PopLayer()
	IsInLayer(layer LayerID) bool

	// HasHit reports whether p, expressed in the content space of the
	// visual's ancestor, lies within the visual's visible geometry.
	HasHit(p geom.Point) bool

	// Visuals yields the children in draw order.
	Visuals() iter.Seq[Visual]
	VisualsInSameLayer() iter.Seq[Visual]
}

// ChildProvider enumerates children of a visual.
type ChildProvider interface {
	Visuals() iter.Seq[Visual]
}

// Node implements the layer stack of a Visual. Embedders call ExtendNode
// with themselves so that layer changes reach their children.
type Node struct {
	// layers above the sentinel, top last
	layers []LayerID
	self   ChildProvider
}

// ExtendNode binds the child provider used for layer propagation.
func (n *Node) ExtendNode(self ChildProvider) {
	n.self = self
}

// CurrentLayer returns the top of the layer stack.
func (n *Node) CurrentLayer() LayerID {
	if len(n.layers) == 0 {
		return DefaultLayer
	}
	return n.layers[len(n.layers)-1]
}

// LayerDepth returns the number of layers on the stack, sentinel included.
func (n *Node) LayerDepth() int {
	return len(n.layers) + 1
}

// PushLayer moves the node, and every child sharing its current layer, into layer.
func (n *Node) PushLayer(layer LayerID) error {
	if layer == "" {
		return ErrEmptyLayer
	}
	for child := range n.VisualsInSameLayer() {
		if err := child.PushLayer(layer); err != nil {
			return err
		}
	}
	n.layers = append(n.layers, layer)
	return nil
}

// PopLayer reverts PushLayer. The sentinel is never popped.
func (n *Node) PopLayer() {
	if len(n.layers) == 0 {
		return
	}
	for child := range n.VisualsInSameLayer() {
		child.PopLayer()
	}
	n.layers = n.layers[:len(n.layers)-1]
}

func (n *Node) IsInLayer(layer LayerID) bool {
	current := n.CurrentLayer()
	return current == DefaultLayer || current == layer
}

// Visuals yields nothing. Types with children override it.
func (n *Node) Visuals() iter.Seq[Visual] {
	return None()
}

func (n *Node) VisualsInSameLayer() iter.Seq[Visual] {
	if n.self == nil {
		return None()
	}
	return SameLayer(n.CurrentLayer(), n.self.Visuals())
}

// SameLayer filters visuals whose current layer is layer.
func SameLayer(layer LayerID, visuals iter.Seq[Visual]) iter.Seq[Visual] {
	return func(yield func(Visual) bool) {
		for v := range visuals {
			if v.CurrentLayer() != layer {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// None is the empty child sequence.
func None() iter.Seq[Visual] {
	return func(func(Visual) bool) {}
}

// All yields each element of s as a Visual.
func All[V Visual](s []V) iter.Seq[Visual] {
	return func(yield func(Visual) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}
