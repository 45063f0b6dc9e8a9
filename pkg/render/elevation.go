package render

import (
	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/voxel"
	"github.com/assys/brickguide/pkg/voxel/view"
)

// DrawElevation draws one arrangement as a flat elevation. Depth slices are
// drawn nearest first onto the same canvas; within a slice, occupied cells
// become brick-height rectangles and buildable cells become connector strips
// tinted by the brick below them.
func DrawElevation(c Canvas, palette *brick.Palette, a view.Arrangement) {
	depth, vertical, horizontal := a.Dims()
	w, h := ElevationBounds(horizontal, vertical)
	drawBorder(c, w, h)

	for i := 0; i < depth; i++ {
		for j := 0; j < vertical; j++ {
			for k := 0; k < horizontal; k++ {
				drawElevationCell(c, palette, a, i, j, k)
			}
		}
	}
}

func drawElevationCell(c Canvas, palette *brick.Palette, a view.Arrangement, i, j, k int) {
	cell := a.At(i, j, k)
	x := float64(k)
	y := float64(j) * BrickHeight

	switch cell.Kind {
	case voxel.KindOccupied:
		c.Rectangle(x, y, StudSpacing, BrickHeight, Style{
			Fill:      palette.Color(cell.Color),
			Stroke:    outline,
			Alpha:     solidAlpha,
			LineWidth: lineSize,
		})
	case voxel.KindBuildable:
		style, ok := connectorStyle(palette, a, i, j, k)
		if !ok {
			return
		}
		c.Rectangle(x+(StudSpacing-2*StudRadius)/2, y, 2*StudRadius, StudHeight, style)
	case voxel.KindUnsupported:
	}
}

// connectorStyle picks the connector paint for a buildable cell. The nearest
// slice always gets the faint neutral texture; deeper slices inherit the
// color of the occupied cell one step down and draw nothing otherwise.
func connectorStyle(palette *brick.Palette, a view.Arrangement, i, j, k int) (Style, bool) {
	if i == 0 {
		return Style{Fill: neutral, Stroke: outline, Alpha: textureAlpha, LineWidth: lineSize}, true
	}
	below := a.At(i, j-1, k)
	if !below.IsOccupied() {
		return Style{}, false
	}
	return Style{Fill: palette.Color(below.Color), Stroke: outline, Alpha: solidAlpha, LineWidth: lineSize}, true
}
