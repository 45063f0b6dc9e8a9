package brick

import (
	"fmt"

	"github.com/assys/brickguide/pkg/errors"
)

// Placement is a single brick instruction: footprint [X, X+Width) × [Y, Y+Height)
// and a color token.
type Placement struct {
	X      int    `json:"x" yaml:"x" bson:"x"`
	Y      int    `json:"y" yaml:"y" bson:"y"`
	Width  int    `json:"width" yaml:"width" bson:"width"`
	Height int    `json:"height" yaml:"height" bson:"height"`
	Color  string `json:"color" yaml:"color" bson:"color"`
}

func (p Placement) Right() int { return p.X + p.Width }
func (p Placement) Top() int   { return p.Y + p.Height }
func (p Placement) Area() int  { return p.Width * p.Height }

func (p Placement) String() string {
	return fmt.Sprintf("%s %dx%d @%d,%d", p.Color, p.Width, p.Height, p.X, p.Y)
}

// Overlaps reports whether the footprints of p and q share at least one cell.
func (p Placement) Overlaps(q Placement) bool {
	return p.X < q.Right() && q.X < p.Right() && p.Y < q.Top() && q.Y < p.Top()
}

// Grid is the bounded build plate, in units.
type Grid struct {
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

// DefaultGrid is the reference 10×10 build plate.
var DefaultGrid = Grid{Width: 10, Height: 10}

// Cells returns the number of positions on the plate.
func (g Grid) Cells() int { return g.Width * g.Height }

// Contains reports whether (x, y) lies on the plate.
func (g Grid) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Validate checks that the footprint of p lies entirely inside the grid.
func (g Grid) Validate(p Placement) error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "grid must be positive, got %dx%d", g.Width, g.Height)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidPlacement, "%s: size must be positive", p)
	}
	if p.X < 0 || p.Y < 0 || p.X > g.Width-p.Width || p.Y > g.Height-p.Height {
		return errors.New(errors.ErrCodeInvalidPlacement, "%s: footprint exceeds %dx%d grid", p, g.Width, g.Height)
	}
	return nil
}

// ValidateAll validates every placement, reporting the first failure with its
// 1-based step number.
func (g Grid) ValidateAll(placements []Placement) error {
	for i, p := range placements {
		if err := g.Validate(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPlacement, err, "step %d", i+1)
		}
	}
	return nil
}
