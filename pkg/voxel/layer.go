package voxel

import "github.com/assys/brickguide/pkg/brick"

// Layer is one horizontal slice of the model. Cells are stored row-major:
// row is the y coordinate, column is x.
type Layer struct {
	grid  brick.Grid
	cells []Cell
}

// NewGroundLayer returns a layer that is Buildable everywhere.
func NewGroundLayer(grid brick.Grid) Layer {
	l := Layer{grid: grid, cells: make([]Cell, grid.Cells())}
	for i := range l.cells {
		l.cells[i] = Buildable()
	}
	return l
}

func (l Layer) Grid() brick.Grid { return l.grid }

func (l Layer) index(row, col int) int { return row*l.grid.Width + col }

// At returns the cell at (row, col). Positions off the grid read as
// Unsupported.
func (l Layer) At(row, col int) Cell {
	if !l.grid.Contains(col, row) {
		return Unsupported()
	}
	return l.cells[l.index(row, col)]
}

// Derive returns the layer resting on l: Buildable where l is Occupied,
// Unsupported everywhere else.
func (l Layer) Derive() Layer {
	next := Layer{grid: l.grid, cells: make([]Cell, len(l.cells))}
	for i, c := range l.cells {
		if c.IsOccupied() {
			next.cells[i] = Buildable()
		}
	}
	return next
}

// CanPlace reports whether no cell under the footprint of p is Occupied.
// The footprint must already be validated against the grid.
func (l Layer) CanPlace(p brick.Placement) bool {
	for row := p.Y; row < p.Top(); row++ {
		for col := p.X; col < p.Right(); col++ {
			if l.cells[l.index(row, col)].IsOccupied() {
				return false
			}
		}
	}
	return true
}

// Place marks the footprint of p as Occupied with its color.
func (l Layer) Place(p brick.Placement) {
	for row := p.Y; row < p.Top(); row++ {
		for col := p.X; col < p.Right(); col++ {
			l.cells[l.index(row, col)] = Occupied(p.Color)
		}
	}
}

func (l Layer) OccupiedCount() int {
	n := 0
	for _, c := range l.cells {
		if c.IsOccupied() {
			n++
		}
	}
	return n
}

// Count returns the number of cells of the given kind.
func (l Layer) Count(kind Kind) int {
	n := 0
	for _, c := range l.cells {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
