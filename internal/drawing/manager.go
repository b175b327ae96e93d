package drawing

import (
	"errors"
	"fmt"
	"iter"

	"github.com/inamate/timegraph/internal/visual"
)

var (
	ErrKindNotRegistered = errors.New("layer kind is not registered")
	ErrRegistrationIndex = errors.New("registration index out of range")
	ErrLayerIndex        = errors.New("layer index out of range")
)

type slot struct {
	layer      Layer
	registered bool
}

// Manager keeps drawing layers in order, undermost first. Registered
// slots are fixed positions reserved for a layer kind; they hold the
// default layer until replaced.
type Manager struct {
	kinds []string
	slots []slot
}

// NewManager creates a manager with one registered slot per kind.
func NewManager(registered ...string) *Manager {
	m := &Manager{kinds: registered}
	for range registered {
		m.slots = append(m.slots, slot{layer: DefaultLayer(), registered: true})
	}
	return m
}

// ReplaceRegistered puts l into the n-th registered slot of its kind.
func (m *Manager) ReplaceRegistered(l Layer, n int) error {
	var matches []int
	reg := 0
	for i, s := range m.slots {
		if !s.registered {
			continue
		}
		if m.kinds[reg] == l.Kind() {
			matches = append(matches, i)
		}
		reg++
	}

	if len(matches) == 0 {
		return fmt.Errorf("replace %q: %w", l.Kind(), ErrKindNotRegistered)
	}
	if n < 0 || n >= len(matches) {
		return fmt.Errorf("replace %q #%d: %w", l.Kind(), n, ErrRegistrationIndex)
	}

	m.slots[matches[n]] = slot{layer: l, registered: true}
	return nil
}

// Remove resets a registered slot to the default layer or deletes an added layer.
func (m *Manager) Remove(index int) error {
	if index < 0 || index >= len(m.slots) {
		return fmt.Errorf("remove %d: %w", index, ErrLayerIndex)
	}
	if m.slots[index].registered {
		m.slots[index].layer = DefaultLayer()
		return nil
	}
	m.slots = append(m.slots[:index], m.slots[index+1:]...)
	return nil
}

func (m *Manager) AddOnTop(l Layer) {
	m.slots = append(m.slots, slot{layer: l})
}

func (m *Manager) AddOnBottom(l Layer) {
	m.slots = append([]slot{{layer: l}}, m.slots...)
}

// Insert places l at index, shifting the layers above it.
func (m *Manager) Insert(index int, l Layer) error {
	if index < 0 || index > len(m.slots) {
		return fmt.Errorf("insert %d: %w", index, ErrLayerIndex)
	}
	m.slots = append(m.slots, slot{})
	copy(m.slots[index+1:], m.slots[index:])
	m.slots[index] = slot{layer: l}
	return nil
}

// Len returns the number of layers, registered slots included.
func (m *Manager) Len() int {
	return len(m.slots)
}

// Layers yields the layers from the undermost one.
func (m *Manager) Layers() iter.Seq[Layer] {
	return func(yield func(Layer) bool) {
		for _, s := range m.slots {
			if !yield(s.layer) {
				return
			}
		}
	}
}

// Lookup finds a layer by id.
func (m *Manager) Lookup(id visual.LayerID) (Layer, bool) {
	for _, s := range m.slots {
		if s.layer.ID() == id {
			return s.layer, true
		}
	}
	return nil, false
}

// Order returns the layer ids from the undermost one, default slots skipped.
func (m *Manager) Order() []visual.LayerID {
	ids := make([]visual.LayerID, 0, len(m.slots))
	for _, s := range m.slots {
		if id := s.layer.ID(); id != visual.DefaultLayer {
			ids = append(ids, id)
		}
	}
	return ids
}

// Draw clears s and draws every layer on a canvas of its space. The
// surface matrix is restored after each layer.
func (m *Manager) Draw(s Surface, vp ViewProvider) {
	matrix := s.Matrix()
	s.Clear()
	for l := range m.Layers() {
		l.Draw(NewLayerCanvas(l, s, vp))
		s.SetMatrix(matrix)
	}
}
