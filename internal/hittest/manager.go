package hittest

import (
	"github.com/inamate/timegraph/internal/drawing"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/visual"
)

// Manager hit tests the layers of a drawing manager.
type Manager struct {
	drawing *drawing.Manager
}

func NewManager(d *drawing.Manager) *Manager {
	return &Manager{drawing: d}
}

// Visit traverses every hit-testable layer from the undermost one. Each
// layer only descends into visuals of its own layer. A stop ends the
// traversal of the current layer; the next layer is still visited. Visit
// reports whether no layer was stopped.
func (m *Manager) Visit(filter FilterFunc, result ResultFunc, p geom.Point) bool {
	completed := true
	for l := range m.drawing.Layers() {
		root, ok := l.(visual.Visual)
		if !ok {
			continue
		}
		if !Traverse(root, filter, result, p, SameLayer) {
			completed = false
		}
	}
	return completed
}

// All returns every visual hit under p, in traversal order.
func (m *Manager) All(p geom.Point) []visual.Visual {
	var out []visual.Visual
	m.Visit(nil, func(v visual.Visual) ResultBehavior {
		out = append(out, v)
		return ResultContinue
	}, p)
	return out
}
