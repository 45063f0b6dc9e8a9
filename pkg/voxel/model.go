package voxel

import (
	"github.com/assys/brickguide/pkg/brick"
)

// Model is the stack of layers built from a placement sequence, ground first.
type Model struct {
	Grid       brick.Grid
	Layers     []Layer
	Placements []brick.Placement
	// Membership[i] is the layer index of Placements[i].
	Membership []int

	conflicts int
}

// Assign builds the layer stack for placements. Every placement is validated
// against grid first; an out-of-bounds footprint fails the whole call with
// INVALID_PLACEMENT.
func Assign(grid brick.Grid, placements []brick.Placement) (*Model, error) {
	if err := grid.ValidateAll(placements); err != nil {
		return nil, err
	}

	m := &Model{
		Grid:       grid,
		Placements: append([]brick.Placement(nil), placements...),
		Membership: make([]int, len(placements)),
	}

	current := NewGroundLayer(grid)
	for i, p := range placements {
		if !current.CanPlace(p) {
			m.Layers = append(m.Layers, current)
			current = current.Derive()
			m.conflicts++
		}
		current.Place(p)
		m.Membership[i] = len(m.Layers)
	}
	m.Layers = append(m.Layers, current, current.Derive())
	return m, nil
}

// Depth returns the number of layers, including the trailing empty one.
func (m *Model) Depth() int { return len(m.Layers) }

// Conflicts returns how many times a footprint collision opened a new layer.
func (m *Model) Conflicts() int { return m.conflicts }

// At returns the cell at (layer, row, col); anything outside the stack reads
// as Unsupported.
func (m *Model) At(layer, row, col int) Cell {
	if layer < 0 || layer >= len(m.Layers) {
		return Unsupported()
	}
	return m.Layers[layer].At(row, col)
}

// Ground is the Lower index of a Support whose upper placement rests on the
// build plate.
const Ground = -1

// Support records that placement Upper rests on placement Lower.
type Support struct {
	Upper int
	Lower int
}

// Supports lists, in placement order, what every placement rests on: the
// ground for layer 0, otherwise each placement in the layer directly below
// whose footprint overlaps it. A placement floating over Unsupported cells
// has no entry.
func (m *Model) Supports() []Support {
	byLayer := make(map[int][]int)
	for i, layer := range m.Membership {
		byLayer[layer] = append(byLayer[layer], i)
	}

	var out []Support
	for i, layer := range m.Membership {
		if layer == 0 {
			out = append(out, Support{Upper: i, Lower: Ground})
			continue
		}
		for _, j := range byLayer[layer-1] {
			if m.Placements[i].Overlaps(m.Placements[j]) {
				out = append(out, Support{Upper: i, Lower: j})
			}
		}
	}
	return out
}
