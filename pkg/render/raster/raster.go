// Package raster paints canvases into PNG images with github.com/fogleman/gg.
package raster

import (
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/assys/brickguide/pkg/render"
)

// DefaultScale is the number of pixels per grid unit.
const DefaultScale = 40.0

// Backend creates PNG canvases.
type Backend struct {
	// Scale is pixels per grid unit; zero means DefaultScale.
	Scale float64
	// Background fills the canvas before drawing; nil means white.
	Background color.Color
}

// New returns a backend with the given scale.
func New(scale float64) *Backend { return &Backend{Scale: scale} }

func (b *Backend) Format() render.Format { return render.FormatPNG }

func (b *Backend) NewCanvas(f render.Frame) (render.Canvas, error) {
	scale := b.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	w := int(math.Ceil(f.Width() * scale))
	h := int(math.Ceil(f.Height() * scale))
	if w <= 0 || h <= 0 {
		return nil, errInvalidFrame(f)
	}

	dc := gg.NewContext(w, h)
	bg := b.Background
	if bg == nil {
		bg = color.White
	}
	dc.SetColor(bg)
	dc.Clear()

	// Grid units, y up: flip vertically and move the frame origin.
	dc.Translate(0, float64(h))
	dc.Scale(scale, -scale)
	dc.Translate(-f.MinX, -f.MinY)

	return &Canvas{dc: dc}, nil
}

// Canvas wraps a gg drawing context.
type Canvas struct {
	dc *gg.Context
}

func (c *Canvas) Rectangle(x, y, w, h float64, s render.Style) {
	c.dc.DrawRectangle(x, y, w, h)
	c.paint(s)
}

func (c *Canvas) Circle(cx, cy, r float64, s render.Style) {
	c.dc.DrawCircle(cx, cy, r)
	c.paint(s)
}

func (c *Canvas) paint(s render.Style) {
	alpha := s.Opacity()
	stroke := s.Stroke != nil && s.LineWidth > 0
	if s.Fill != nil {
		c.dc.SetColor(withAlpha(s.Fill, alpha))
		if stroke {
			c.dc.FillPreserve()
		} else {
			c.dc.Fill()
		}
	}
	if stroke {
		c.dc.SetColor(withAlpha(s.Stroke, alpha))
		// gg strokes in device space, so LineWidth is in pixels.
		c.dc.SetLineWidth(s.LineWidth)
		c.dc.Stroke()
	}
	c.dc.ClearPath()
}

func (c *Canvas) Encode(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

func withAlpha(c color.Color, alpha float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * alpha))
	return n
}
