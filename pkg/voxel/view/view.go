// Package view reads a voxel model from the four cardinal directions.
//
// An [Arrangement] reindexes the model's (layer, row, column) axes into
// (depth, vertical, horizontal) positions, where depth 0 is the slice nearest
// the viewer. Each direction is a [Transform]: which source axis feeds each
// position and whether it is read in reverse.
//
//	back:  depth=row     vertical=layer  horizontal=column
//	front: back with depth and horizontal reversed
//	right: depth=column  vertical=layer  horizontal=row
//	left:  right with depth and horizontal reversed
//
// Arrangements never copy cells; they read through to the shared model.
package view

import (
	"fmt"

	"github.com/assys/brickguide/pkg/voxel"
)

// Axis names an axis of the source model.
type Axis uint8

const (
	LayerAxis Axis = iota
	RowAxis
	ColumnAxis
)

func (a Axis) String() string {
	switch a {
	case LayerAxis:
		return "layer"
	case RowAxis:
		return "row"
	case ColumnAxis:
		return "column"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// Destination positions within a Transform.
const (
	Depth = iota
	Vertical
	Horizontal
)

// Transform maps each destination position to a source axis, optionally
// reversed.
type Transform struct {
	Axes    [3]Axis
	Reverse [3]bool
}

// Flip returns t with the depth and horizontal positions reversed.
func (t Transform) Flip() Transform {
	t.Reverse[Depth] = !t.Reverse[Depth]
	t.Reverse[Horizontal] = !t.Reverse[Horizontal]
	return t
}

// Direction is a cardinal viewing direction.
type Direction string

const (
	Front Direction = "front"
	Back  Direction = "back"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in output order.
var Directions = []Direction{Front, Back, Left, Right}

var (
	backTransform  = Transform{Axes: [3]Axis{RowAxis, LayerAxis, ColumnAxis}}
	rightTransform = Transform{Axes: [3]Axis{ColumnAxis, LayerAxis, RowAxis}}

	transforms = map[Direction]Transform{
		Back:  backTransform,
		Front: backTransform.Flip(),
		Right: rightTransform,
		Left:  rightTransform.Flip(),
	}
)

// TransformFor returns the transform of a direction.
func TransformFor(d Direction) (Transform, bool) {
	t, ok := transforms[d]
	return t, ok
}

// Arrangement is a model read under a transform.
type Arrangement struct {
	model     *voxel.Model
	transform Transform
	direction Direction
	dims      [3]int
}

// Arrange reads m under t.
func Arrange(m *voxel.Model, d Direction, t Transform) Arrangement {
	src := sourceDims(m)
	a := Arrangement{model: m, transform: t, direction: d}
	for pos, axis := range t.Axes {
		a.dims[pos] = src[axis]
	}
	return a
}

func sourceDims(m *voxel.Model) [3]int {
	var d [3]int
	d[LayerAxis] = m.Depth()
	d[RowAxis] = m.Grid.Height
	d[ColumnAxis] = m.Grid.Width
	return d
}

func (a Arrangement) Direction() Direction { return a.direction }
func (a Arrangement) Transform() Transform { return a.transform }

// Dims returns the (depth, vertical, horizontal) extents.
func (a Arrangement) Dims() (depth, vertical, horizontal int) {
	return a.dims[Depth], a.dims[Vertical], a.dims[Horizontal]
}

// Contains reports whether (i, j, k) is inside the arrangement.
func (a Arrangement) Contains(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 && i < a.dims[Depth] && j < a.dims[Vertical] && k < a.dims[Horizontal]
}

// Source maps (i, j, k) to model coordinates (layer, row, column).
func (a Arrangement) Source(i, j, k int) (layer, row, col int) {
	var src [3]int
	for pos, v := range [3]int{i, j, k} {
		if a.transform.Reverse[pos] {
			v = a.dims[pos] - 1 - v
		}
		src[a.transform.Axes[pos]] = v
	}
	return src[LayerAxis], src[RowAxis], src[ColumnAxis]
}

// At returns the cell at depth i, vertical j, horizontal k. Positions outside
// the arrangement read as Unsupported.
func (a Arrangement) At(i, j, k int) voxel.Cell {
	if !a.Contains(i, j, k) {
		return voxel.Unsupported()
	}
	return a.model.At(a.Source(i, j, k))
}

// Views holds the four arrangements of one model.
type Views struct {
	Front Arrangement
	Back  Arrangement
	Left  Arrangement
	Right Arrangement
}

// Project builds all four arrangements of m.
func Project(m *voxel.Model) Views {
	return Views{
		Front: Arrange(m, Front, transforms[Front]),
		Back:  Arrange(m, Back, transforms[Back]),
		Left:  Arrange(m, Left, transforms[Left]),
		Right: Arrange(m, Right, transforms[Right]),
	}
}

// All returns the arrangements as front, back, left, right.
func (v Views) All() []Arrangement {
	return []Arrangement{v.Front, v.Back, v.Left, v.Right}
}

// Get returns the arrangement for d.
func (v Views) Get(d Direction) (Arrangement, bool) {
	switch d {
	case Front:
		return v.Front, true
	case Back:
		return v.Back, true
	case Left:
		return v.Left, true
	case Right:
		return v.Right, true
	}
	return Arrangement{}, false
}
