// Package recording provides a canvas that records draw calls instead of
// painting them. Tests assert on the recorded operations; the JSON encoding
// doubles as a machine-readable output format.
package recording

import (
	"encoding/json"
	"image/color"
	"io"
	"sync"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/render"
)

// Shape kinds.
const (
	Rect   = "rect"
	Circle = "circle"
)

// Op is one recorded draw call. Colors are #rrggbb strings, empty when unset.
type Op struct {
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	W         float64 `json:"w,omitempty"`
	H         float64 `json:"h,omitempty"`
	R         float64 `json:"r,omitempty"`
	Fill      string  `json:"fill,omitempty"`
	Stroke    string  `json:"stroke,omitempty"`
	Alpha     float64 `json:"alpha"`
	LineWidth float64 `json:"line_width,omitempty"`
}

// Canvas records operations in call order.
type Canvas struct {
	Frame render.Frame `json:"frame"`
	Ops   []Op         `json:"ops"`
}

func (c *Canvas) Rectangle(x, y, w, h float64, s render.Style) {
	c.Ops = append(c.Ops, styled(Op{Kind: Rect, X: x, Y: y, W: w, H: h}, s))
}

func (c *Canvas) Circle(cx, cy, r float64, s render.Style) {
	c.Ops = append(c.Ops, styled(Op{Kind: Circle, X: cx, Y: cy, R: r}, s))
}

func (c *Canvas) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Filter returns the operations matching keep.
func (c *Canvas) Filter(keep func(Op) bool) []Op {
	var out []Op
	for _, op := range c.Ops {
		if keep(op) {
			out = append(out, op)
		}
	}
	return out
}

func styled(op Op, s render.Style) Op {
	op.Fill = hex(s.Fill)
	op.Stroke = hex(s.Stroke)
	op.Alpha = s.Alpha
	op.LineWidth = s.LineWidth
	return op
}

func hex(c color.Color) string {
	if c == nil {
		return ""
	}
	return brick.Hex(color.RGBAModel.Convert(c).(color.RGBA))
}

// Backend hands out recording canvases and keeps every canvas it created,
// in creation order.
type Backend struct {
	mu       sync.Mutex
	canvases []*Canvas
}

func New() *Backend { return &Backend{} }

func (b *Backend) Format() render.Format { return render.FormatJSON }

func (b *Backend) NewCanvas(f render.Frame) (render.Canvas, error) {
	c := &Canvas{Frame: f}
	b.mu.Lock()
	b.canvases = append(b.canvases, c)
	b.mu.Unlock()
	return c, nil
}

// Canvases returns the canvases created so far.
func (b *Backend) Canvases() []*Canvas {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Canvas(nil), b.canvases...)
}

// Decode reads a canvas written by Encode.
func Decode(r io.Reader) (*Canvas, error) {
	var c Canvas
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
