package raster

import (
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/render"
)

func errInvalidFrame(f render.Frame) error {
	return errors.New(errors.ErrCodeRenderFailed, "frame %.2fx%.2f has no pixels", f.Width(), f.Height())
}
