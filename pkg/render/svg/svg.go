// Package svg writes canvases as standalone SVG documents.
package svg

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/render"
)

// DefaultScale is the number of SVG user units per grid unit.
const DefaultScale = 40.0

type Backend struct {
	Scale float64
}

func New(scale float64) *Backend { return &Backend{Scale: scale} }

func (b *Backend) Format() render.Format { return render.FormatSVG }

func (b *Backend) NewCanvas(f render.Frame) (render.Canvas, error) {
	scale := b.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	if f.Width() <= 0 || f.Height() <= 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "empty frame %.2fx%.2f", f.Width(), f.Height())
	}
	return &Canvas{frame: f, scale: scale}, nil
}

// Canvas accumulates SVG elements. Coordinates are converted from grid units
// (y up) to SVG user units (y down) as shapes are added.
type Canvas struct {
	frame render.Frame
	scale float64
	body  bytes.Buffer
}

func (c *Canvas) x(v float64) float64 { return (v - c.frame.MinX) * c.scale }
func (c *Canvas) y(v float64) float64 { return (c.frame.MaxY - v) * c.scale }

func (c *Canvas) Rectangle(x, y, w, h float64, s render.Style) {
	fmt.Fprintf(&c.body, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"%s/>`+"\n",
		c.x(x), c.y(y+h), w*c.scale, h*c.scale, paint(s))
}

func (c *Canvas) Circle(cx, cy, r float64, s render.Style) {
	fmt.Fprintf(&c.body, `  <circle cx="%.2f" cy="%.2f" r="%.2f"%s/>`+"\n",
		c.x(cx), c.y(cy), r*c.scale, paint(s))
}

func (c *Canvas) Encode(w io.Writer) error {
	width := c.frame.Width() * c.scale
	height := c.frame.Height() * c.scale

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")
	buf.Write(c.body.Bytes())
	buf.WriteString("</svg>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

func paint(s render.Style) string {
	fill := "none"
	if s.Fill != nil {
		fill = hex(s.Fill)
	}
	stroke := "none"
	if s.Stroke != nil && s.LineWidth > 0 {
		stroke = hex(s.Stroke)
	}
	out := fmt.Sprintf(` fill="%s" stroke="%s"`, fill, stroke)
	if stroke != "none" {
		out += fmt.Sprintf(` stroke-width="%.2f"`, s.LineWidth)
	}
	if a := s.Opacity(); a < 1 {
		out += fmt.Sprintf(` opacity="%.2f"`, a)
	}
	return out
}

func hex(c color.Color) string {
	return brick.Hex(color.RGBAModel.Convert(c).(color.RGBA))
}
