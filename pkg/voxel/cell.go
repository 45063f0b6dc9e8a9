package voxel

import "fmt"

// Kind enumerates the cell states.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindBuildable
	KindOccupied
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindBuildable:
		return "buildable"
	case KindOccupied:
		return "occupied"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Cell is the state of one grid position in one layer. Color is only set for
// occupied cells.
type Cell struct {
	Kind  Kind
	Color string
}

func Unsupported() Cell          { return Cell{Kind: KindUnsupported} }
func Buildable() Cell            { return Cell{Kind: KindBuildable} }
func Occupied(color string) Cell { return Cell{Kind: KindOccupied, Color: color} }

func (c Cell) IsOccupied() bool  { return c.Kind == KindOccupied }
func (c Cell) IsBuildable() bool { return c.Kind == KindBuildable }

func (c Cell) String() string {
	if c.Kind == KindOccupied {
		return "occupied(" + c.Color + ")"
	}
	return c.Kind.String()
}
