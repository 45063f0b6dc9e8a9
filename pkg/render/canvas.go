package render

import (
	"image/color"
	"io"
	"strings"

	"github.com/assys/brickguide/pkg/errors"
)

// Format identifies an encoded image type.
type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG, FormatJSON:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown image format %q (want png, svg or json)", s)
}

// MIMEType returns the media type of encoded images of this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// Style describes how a shape is painted. A nil Fill draws only the outline,
// a nil Stroke draws no outline. Alpha applies to both.
type Style struct {
	Fill      color.Color
	Stroke    color.Color
	Alpha     float64
	LineWidth float64
}

// Opacity returns Alpha clamped to [0, 1].
func (s Style) Opacity() float64 {
	return min(1, max(0, s.Alpha))
}

// Frame is the visible region of a canvas in grid units.
type Frame struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (f Frame) Width() float64  { return f.MaxX - f.MinX }
func (f Frame) Height() float64 { return f.MaxY - f.MinY }

// Canvas is a drawing surface addressed in grid units, y up.
type Canvas interface {
	Rectangle(x, y, w, h float64, s Style)
	Circle(cx, cy, r float64, s Style)
	// Encode writes the finished image. A canvas is encoded at most once.
	Encode(w io.Writer) error
}

// Backend creates canvases. Implementations must return independent canvases
// so concurrent renders never share a surface.
type Backend interface {
	Format() Format
	NewCanvas(f Frame) (Canvas, error)
}
