// Package diagram turns a timetable document into a laid out scene of
// station lines, train paths and labels.
package diagram

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDocument = errors.New("invalid document")
	ErrDuplicateID     = errors.New("duplicate element id")
	ErrUnknownLayer    = errors.New("unknown layer")
	ErrUnknownStation  = errors.New("unknown station")
	ErrUnknownTrain    = errors.New("unknown train")
)

// Document is the JSON form of a timetable diagram. Times are minutes
// after midnight; the horizontal axis spans Start to End over Width.
type Document struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Version    int                  `json:"version"`
	Width      float64              `json:"width"`
	Height     float64              `json:"height"`
	Background string               `json:"background"`
	Start      float64              `json:"start"`
	End        float64              `json:"end"`
	Layers     []Layer              `json:"layers"`
	Stations   []Station            `json:"stations"`
	Trains     []Train              `json:"trains"`
	Labels     []Label              `json:"labels"`
	Transforms map[string]Transform `json:"transforms,omitempty"`
}

// Layer is a content layer trains are drawn in, undermost first.
type Layer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Station struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// Stop is a train call at a station. A zero Departure means the train
// leaves on arrival.
type Stop struct {
	Station   string  `json:"station"`
	Arrival   float64 `json:"arrival"`
	Departure float64 `json:"departure,omitempty"`
}

func (s Stop) leaves() float64 {
	return max(s.Arrival, s.Departure)
}

type Train struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Color  string `json:"color"`
	Layer  string `json:"layer"`
	Stops  []Stop `json:"stops"`
}

// Label shows a train number at a fixed content position.
type Label struct {
	ID    string  `json:"id"`
	Train string  `json:"train"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform is the user placement applied to an element after layout.
// Zero fields leave the laid out value.
type Transform struct {
	Scale    float64 `json:"scale,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Origin   *Point  `json:"origin,omitempty"`
}

// TimeX maps a time onto the horizontal axis.
func (d *Document) TimeX(minutes float64) float64 {
	return d.Width * (minutes - d.Start) / (d.End - d.Start)
}

// Validate checks the document can be built.
func (d *Document) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("size %vx%v: %w", d.Width, d.Height, ErrInvalidDocument)
	}
	if d.End <= d.Start {
		return fmt.Errorf("time span %v-%v: %w", d.Start, d.End, ErrInvalidDocument)
	}

	ids := make(map[string]struct{})
	claim := func(id string) error {
		if id == "" {
			return fmt.Errorf("empty id: %w", ErrInvalidDocument)
		}
		if _, ok := ids[id]; ok {
			return fmt.Errorf("%q: %w", id, ErrDuplicateID)
		}
		ids[id] = struct{}{}
		return nil
	}

	layers := make(map[string]struct{}, len(d.Layers))
	for _, l := range d.Layers {
		if err := claim(l.ID); err != nil {
			return err
		}
		layers[l.ID] = struct{}{}
	}

	stations := make(map[string]struct{}, len(d.Stations))
	for _, s := range d.Stations {
		if err := claim(s.ID); err != nil {
			return err
		}
		stations[s.ID] = struct{}{}
	}

	trains := make(map[string]struct{}, len(d.Trains))
	for _, t := range d.Trains {
		if err := claim(t.ID); err != nil {
			return err
		}
		if _, ok := layers[t.Layer]; !ok {
			return fmt.Errorf("train %q layer %q: %w", t.ID, t.Layer, ErrUnknownLayer)
		}
		if len(t.Stops) < 2 {
			return fmt.Errorf("train %q has %d stops: %w", t.ID, len(t.Stops), ErrInvalidDocument)
		}
		for i, s := range t.Stops {
			if _, ok := stations[s.Station]; !ok {
				return fmt.Errorf("train %q stop %d: %q: %w", t.ID, i, s.Station, ErrUnknownStation)
			}
			if s.Departure != 0 && s.Departure < s.Arrival {
				return fmt.Errorf("train %q stop %d departs before arrival: %w", t.ID, i, ErrInvalidDocument)
			}
			if i > 0 && s.Arrival < t.Stops[i-1].leaves() {
				return fmt.Errorf("train %q stop %d arrives before leaving stop %d: %w", t.ID, i, i-1, ErrInvalidDocument)
			}
		}
		trains[t.ID] = struct{}{}
	}

	for _, l := range d.Labels {
		if err := claim(l.ID); err != nil {
			return err
		}
		if _, ok := trains[l.Train]; !ok {
			return fmt.Errorf("label %q train %q: %w", l.ID, l.Train, ErrUnknownTrain)
		}
	}
	return nil
}

func (d *Document) train(id string) (Train, bool) {
	for _, t := range d.Trains {
		if t.ID == id {
			return t, true
		}
	}
	return Train{}, false
}
