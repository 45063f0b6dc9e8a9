package render

import (
	"image/color"

	"github.com/assys/brickguide/pkg/brick"
)

// Brick geometry in grid units.
const (
	StudRadius  = 0.3
	StudSpacing = 1.0
	StudHeight  = 0.177
	BrickHeight = 1.211

	// FrameMargin pads every frame around the drawn bounds.
	FrameMargin = 0.5
)

// Opacities used by the guide drawings.
const (
	textureAlpha = 0.1
	priorAlpha   = 0.2
	solidAlpha   = 1.0
)

var (
	outline  = color.RGBA{A: 255}
	neutral  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	lineSize = 1.0
)

// PreviewFrame is the frame of a step preview on grid.
func PreviewFrame(grid brick.Grid) Frame {
	return Frame{
		MinX: -FrameMargin, MinY: -FrameMargin,
		MaxX: float64(grid.Width) + FrameMargin, MaxY: float64(grid.Height) + FrameMargin,
	}
}

// ElevationBounds returns the border size of an elevation with the given
// horizontal cell count and layer count. The border is at least square.
func ElevationBounds(horizontal, layers int) (w, h float64) {
	w = float64(horizontal)
	h = max(w, float64(layers)*BrickHeight)
	return w, h
}

// ElevationFrame is the frame of an elevation.
func ElevationFrame(horizontal, layers int) Frame {
	w, h := ElevationBounds(horizontal, layers)
	return Frame{MinX: -FrameMargin, MinY: -FrameMargin, MaxX: w + FrameMargin, MaxY: h + FrameMargin}
}

func drawBorder(c Canvas, w, h float64) {
	c.Rectangle(0, 0, w, h, Style{Stroke: outline, Alpha: solidAlpha, LineWidth: lineSize})
}

// drawStuds covers the w×h area at (x, y) with one stud per unit cell.
func drawStuds(c Canvas, x, y float64, w, h int, fill color.Color, alpha float64) {
	nx := int(float64(w) / StudSpacing)
	ny := int(float64(h) / StudSpacing)
	s := Style{Fill: fill, Stroke: outline, Alpha: alpha, LineWidth: lineSize}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			c.Circle(x+(float64(i)+0.5)*StudSpacing, y+(float64(j)+0.5)*StudSpacing, StudRadius, s)
		}
	}
}
