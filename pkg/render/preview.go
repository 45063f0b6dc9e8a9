package render

import "github.com/assys/brickguide/pkg/brick"

// DrawPreview draws the top-down guide for one step: a faint stud texture
// over the whole grid, every placement but the last faded, the last one solid
// with its studs, and the grid border. Layering is ignored; all placements
// share one plane. An empty sequence draws only the texture and border.
func DrawPreview(c Canvas, grid brick.Grid, palette *brick.Palette, placements []brick.Placement) {
	drawBorder(c, float64(grid.Width), float64(grid.Height))
	drawStuds(c, 0, 0, grid.Width, grid.Height, neutral, textureAlpha)
	if len(placements) == 0 {
		return
	}

	last := len(placements) - 1
	for _, p := range placements[:last] {
		drawPlacement(c, palette, p, priorAlpha)
	}

	p := placements[last]
	drawPlacement(c, palette, p, solidAlpha)
	drawStuds(c, float64(p.X), float64(p.Y), p.Width, p.Height, palette.Color(p.Color), solidAlpha)
}

func drawPlacement(c Canvas, palette *brick.Palette, p brick.Placement, alpha float64) {
	c.Rectangle(float64(p.X), float64(p.Y), float64(p.Width), float64(p.Height), Style{
		Fill:      palette.Color(p.Color),
		Stroke:    outline,
		Alpha:     alpha,
		LineWidth: lineSize,
	})
}
