package visual

import (
	"errors"
	"fmt"
)

var (
	ErrDefaultSource    = errors.New("source layer can't be the default layer")
	ErrSourceNotOrdered = errors.New("source layer is not present in layer order")
	ErrLayerNotOrdered  = errors.New("visual layer is not present in layer order")
)

// OrderByLayers groups visuals by their current layer following order.
// Visuals in the default layer are placed with source. Within a layer the
// input order is kept.
func OrderByLayers[V Visual](visuals []V, order []LayerID, source LayerID) ([]V, error) {
	if source == DefaultLayer {
		return nil, ErrDefaultSource
	}

	groups := make(map[LayerID][]V, len(order))
	for _, layer := range order {
		groups[layer] = nil
	}
	if _, ok := groups[source]; !ok {
		return nil, fmt.Errorf("order by layers %q: %w", source, ErrSourceNotOrdered)
	}

	for _, v := range visuals {
		layer := v.CurrentLayer()
		if layer == DefaultLayer {
			layer = source
		}
		group, ok := groups[layer]
		if !ok {
			return nil, fmt.Errorf("order by layers %q: %w", layer, ErrLayerNotOrdered)
		}
		groups[layer] = append(group, v)
	}

	ordered := make([]V, 0, len(visuals))
	for _, layer := range order {
		ordered = append(ordered, groups[layer]...)
		// a layer listed twice must not emit its visuals twice
		groups[layer] = nil
	}
	return ordered, nil
}
