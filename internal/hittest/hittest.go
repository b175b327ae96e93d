// Package hittest walks visual trees to find the visuals under a point.
package hittest

import (
	"iter"

	"github.com/inamate/timegraph/internal/geom"
	"github.com/inamate/timegraph/internal/visual"
)

// FilterBehavior is returned by a FilterFunc before a visual is hit tested.
type FilterBehavior int

const (
	FilterContinue FilterBehavior = iota
	// FilterSkipChildren reports the visual but not its children.
	FilterSkipChildren
	// FilterSkipSelf visits the children without reporting the visual.
	FilterSkipSelf
	// FilterSkipSelfAndChildren prunes the subtree.
	FilterSkipSelfAndChildren
	// FilterStop aborts the traversal.
	FilterStop
)

// ResultBehavior is returned by a ResultFunc for each hit visual.
type ResultBehavior int

const (
	ResultContinue ResultBehavior = iota
	ResultStop
)

// FilterFunc is called for every visual reached, hit or not.
type FilterFunc func(v visual.Visual, p geom.Point) FilterBehavior

// ResultFunc is called for every reported hit.
type ResultFunc func(v visual.Visual) ResultBehavior

// Provider enumerates the children a traversal descends into.
type Provider func(v visual.Visual) iter.Seq[visual.Visual]

// AllVisuals descends into every child.
func AllVisuals(v visual.Visual) iter.Seq[visual.Visual] {
	return v.Visuals()
}

// SameLayer descends only into children sharing the parent's layer.
func SameLayer(v visual.Visual) iter.Seq[visual.Visual] {
	return v.VisualsInSameLayer()
}

// Traverse walks the tree under root depth first, parents before children.
// Children of a visual that is not hit are never reached. It returns false
// when a callback stopped the traversal. Nil callbacks continue and a nil
// provider descends into every child.
func Traverse(root visual.Visual, filter FilterFunc, result ResultFunc, p geom.Point, provider Provider) bool {
	if provider == nil {
		provider = AllVisuals
	}

	behavior := FilterContinue
	if filter != nil {
		behavior = filter(root, p)
	}
	switch behavior {
	case FilterStop:
		return false
	case FilterSkipSelfAndChildren:
		return true
	}

	if !root.HasHit(p) {
		return true
	}

	if behavior != FilterSkipSelf && result != nil {
		if result(root) == ResultStop {
			return false
		}
	}

	if behavior == FilterSkipChildren {
		return true
	}
	for child := range provider(root) {
		if !Traverse(child, filter, result, p, provider) {
			return false
		}
	}
	return true
}

// Visit traverses every child of root.
func Visit(root visual.Visual, filter FilterFunc, result ResultFunc, p geom.Point) bool {
	return Traverse(root, filter, result, p, AllVisuals)
}

// Order selects which hit Nearest returns. The zero value is Last.
type Order int

const (
	// Last is the last hit in traversal order, usually the most specific.
	Last Order = iota
	// First is the first hit in traversal order.
	First
)

// Nearest returns the first or last visual under p, or nil.
func Nearest(root visual.Visual, p geom.Point, order Order) visual.Visual {
	var found visual.Visual
	after := ResultContinue
	if order == First {
		after = ResultStop
	}

	Visit(root, nil, func(v visual.Visual) ResultBehavior {
		found = v
		return after
	}, p)
	return found
}

// Hits yields the visuals of vs that are hit by p.
func Hits(vs iter.Seq[visual.Visual], p geom.Point) iter.Seq[visual.Visual] {
	return func(yield func(visual.Visual) bool) {
		for v := range vs {
			if v.HasHit(p) && !yield(v) {
				return
			}
		}
	}
}
