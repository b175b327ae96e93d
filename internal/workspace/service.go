package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/inamate/timegraph/internal/diagram"
	"github.com/inamate/timegraph/internal/engine"
	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/typeid"
	"github.com/inamate/timegraph/internal/viewport"
)

var (
	ErrNotFound    = errors.New("diagram not found")
	ErrForbidden   = errors.New("forbidden")
	ErrMissingName = errors.New("name is required")
)

// Service keeps diagrams in memory. Each diagram has its own engine and
// lock, so work on different diagrams does not contend.
type Service struct {
	mu         sync.RWMutex
	diagrams   map[string]*entry // diagramID -> entry
	viewWidth  float64
	viewHeight float64
	now        func() time.Time
}

type entry struct {
	mu        sync.Mutex
	engine    *engine.Engine
	ownerID   string
	createdAt time.Time
	updatedAt time.Time
}

func NewService(viewWidth, viewHeight float64) *Service {
	return &Service{
		diagrams:   make(map[string]*entry),
		viewWidth:  viewWidth,
		viewHeight: viewHeight,
		now:        time.Now,
	}
}

type Diagram struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	OwnerID   string  `json:"ownerId"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Version   int     `json:"version"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Create adds a new diagram owned by ownerID. With sample set the diagram
// starts from the sample timetable instead of an empty one.
func (s *Service) Create(name, ownerID string, sample bool) (*Diagram, error) {
	if name == "" {
		return nil, ErrMissingName
	}

	diagramID := typeid.NewDiagramID()
	var doc *diagram.Document
	if sample {
		doc = diagram.NewSampleDocument(diagramID)
		doc.Name = name
	} else {
		doc = diagram.NewEmptyDocument(diagramID, name)
	}
	return s.add(doc, ownerID)
}

// Import adds a diagram from its JSON document. The document gets a new
// id.
func (s *Service) Import(data []byte, ownerID string) (*Diagram, error) {
	var doc diagram.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", diagram.ErrInvalidDocument)
	}
	if doc.Name == "" {
		return nil, ErrMissingName
	}
	doc.ID = typeid.NewDiagramID()
	return s.add(&doc, ownerID)
}

func (s *Service) add(doc *diagram.Document, ownerID string) (*Diagram, error) {
	eng := engine.NewEngine(s.viewWidth, s.viewHeight)
	if err := eng.SetDocument(doc); err != nil {
		return nil, fmt.Errorf("load diagram: %w", err)
	}

	now := s.now()
	e := &entry{engine: eng, ownerID: ownerID, createdAt: now, updatedAt: now}

	s.mu.Lock()
	s.diagrams[doc.ID] = e
	s.mu.Unlock()

	return e.summary(), nil
}

func (s *Service) Get(diagramID string) (*Diagram, error) {
	var d *Diagram
	err := s.with(diagramID, func(e *entry) error {
		d = e.summary()
		return nil
	})
	return d, err
}

// Exists reports whether diagramID is a known diagram.
func (s *Service) Exists(diagramID string) bool {
	_, err := s.lookup(diagramID)
	return err == nil
}

// List returns the diagrams owned by ownerID, oldest first.
func (s *Service) List(ownerID string) []Diagram {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.diagrams))
	for _, e := range s.diagrams {
		if e.ownerID == ownerID {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].createdAt.Before(entries[j].createdAt)
	})

	diagrams := make([]Diagram, len(entries))
	for i, e := range entries {
		e.mu.Lock()
		diagrams[i] = *e.summary()
		e.mu.Unlock()
	}
	return diagrams
}

// Delete removes a diagram. Only its owner may delete it.
func (s *Service) Delete(diagramID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.diagrams[diagramID]
	if !ok {
		return ErrNotFound
	}
	if e.ownerID != userID {
		return ErrForbidden
	}
	delete(s.diagrams, diagramID)
	return nil
}

// Document returns the diagram document as JSON.
func (s *Service) Document(diagramID string) (json.RawMessage, error) {
	var doc json.RawMessage
	err := s.with(diagramID, func(e *entry) error {
		data, err := e.engine.GetDocument()
		if err != nil {
			return err
		}
		doc = json.RawMessage(data)
		return nil
	})
	return doc, err
}

// Replace swaps the diagram document for data, keeping the diagram id.
// The view is reset.
func (s *Service) Replace(diagramID string, data []byte) (*Diagram, error) {
	var doc diagram.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", diagram.ErrInvalidDocument)
	}
	doc.ID = diagramID

	var d *Diagram
	err := s.with(diagramID, func(e *entry) error {
		if prev := e.engine.Document(); prev != nil && doc.Version <= prev.Version {
			doc.Version = prev.Version + 1
		}
		if err := e.engine.SetDocument(&doc); err != nil {
			return err
		}
		e.updatedAt = s.now()
		d = e.summary()
		return nil
	})
	return d, err
}

// Render returns the draw commands of the current view as JSON.
func (s *Service) Render(diagramID string) (string, error) {
	var out string
	err := s.with(diagramID, func(e *entry) error {
		out = e.engine.Render()
		return nil
	})
	return out, err
}

func (s *Service) RenderPNG(diagramID string, w io.Writer) error {
	return s.with(diagramID, func(e *entry) error {
		return e.engine.RenderPNG(w)
	})
}

// HitTest returns the elements under the view point (x, y). With all
// unset only the topmost element is returned.
func (s *Service) HitTest(diagramID string, x, y float64, all bool) ([]string, error) {
	var ids []string
	err := s.with(diagramID, func(e *entry) error {
		if all {
			ids = e.engine.HitTestAll(x, y)
			return nil
		}
		ids = []string{}
		if id := e.engine.HitTest(x, y); id != "" {
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

// Transform applies op and returns the new document version.
func (s *Service) Transform(diagramID string, op diagram.Op) (int, error) {
	var version int
	err := s.with(diagramID, func(e *entry) error {
		if err := e.engine.Transform(op); err != nil {
			return err
		}
		e.updatedAt = s.now()
		version = e.engine.Document().Version
		return nil
	})
	return version, err
}

func (s *Service) SelectionBounds(diagramID string, ids []string) (geom.Rect, error) {
	var r geom.Rect
	err := s.with(diagramID, func(e *entry) error {
		r = e.engine.SelectionBounds(ids)
		return nil
	})
	return r, err
}

// View returns the pan and zoom state of the diagram.
func (s *Service) View(diagramID string) (engine.ViewState, error) {
	var v engine.ViewState
	err := s.with(diagramID, func(e *entry) error {
		v = e.engine.ViewState()
		return nil
	})
	return v, err
}

func (s *Service) Pan(diagramID string, dx, dy float64) (viewport.Result, engine.ViewState, error) {
	var (
		res viewport.Result
		v   engine.ViewState
	)
	err := s.with(diagramID, func(e *entry) error {
		var err error
		res, err = e.engine.Pan(dx, dy)
		v = e.engine.ViewState()
		return err
	})
	return res, v, err
}

func (s *Service) Zoom(diagramID string, x, y, delta float64) (viewport.ScaleResult, engine.ViewState, error) {
	var (
		res viewport.ScaleResult
		v   engine.ViewState
	)
	err := s.with(diagramID, func(e *entry) error {
		var err error
		res, err = e.engine.Zoom(x, y, delta)
		v = e.engine.ViewState()
		return err
	})
	return res, v, err
}

func (s *Service) Resize(diagramID string, width, height float64) (viewport.Result, engine.ViewState, error) {
	var (
		res viewport.Result
		v   engine.ViewState
	)
	err := s.with(diagramID, func(e *entry) error {
		res = e.engine.Resize(width, height)
		v = e.engine.ViewState()
		return nil
	})
	return res, v, err
}

func (s *Service) lookup(diagramID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.diagrams[diagramID]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// with runs fn holding the diagram lock.
func (s *Service) with(diagramID string, fn func(e *entry) error) error {
	e, err := s.lookup(diagramID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e)
}

// summary must be called with e.mu held, or before e is shared.
func (e *entry) summary() *Diagram {
	doc := e.engine.Document()
	return &Diagram{
		ID:        doc.ID,
		Name:      doc.Name,
		OwnerID:   e.ownerID,
		Width:     doc.Width,
		Height:    doc.Height,
		Version:   doc.Version,
		CreatedAt: e.createdAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: e.updatedAt.UTC().Format(time.RFC3339Nano),
	}
}
