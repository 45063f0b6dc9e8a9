package pipeline

import (
	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/render"
	"github.com/assys/brickguide/pkg/render/raster"
	"github.com/assys/brickguide/pkg/render/recording"
	"github.com/assys/brickguide/pkg/render/svg"
)

// NewBackend returns the drawing backend for an image format.
func NewBackend(format string, scale float64) (render.Backend, error) {
	f, err := render.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case render.FormatPNG:
		return raster.New(scale), nil
	case render.FormatSVG:
		return svg.New(scale), nil
	case render.FormatJSON:
		return recording.New(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "no backend for format %q", format)
}

// NewRenderer returns a renderer drawing format at scale onto grid.
func NewRenderer(format string, scale float64, grid brick.Grid, palette *brick.Palette) (render.Renderer, error) {
	backend, err := NewBackend(format, scale)
	if err != nil {
		return render.Renderer{}, err
	}
	return render.Renderer{Backend: backend, Grid: grid, Palette: palette}, nil
}
