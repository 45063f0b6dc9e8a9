package svg

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/render"
)

func TestPreviewSVG(t *testing.T) {
	r := render.Renderer{Backend: New(0)}
	img, err := r.Preview([]brick.Placement{{X: 1, Y: 1, Width: 2, Height: 1, Color: "red"}})
	if err != nil {
		t.Fatalf("Preview() error: %v", err)
	}
	out := string(img.Data)

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 440.0 440.0"`) {
		t.Errorf("unexpected header: %.80s", out)
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("missing closing tag")
	}
	want := `<rect x="60.00" y="340.00" width="80.00" height="40.00" fill="#ff0000" stroke="#000000" stroke-width="1.00"/>`
	if !strings.Contains(out, want) {
		t.Errorf("missing brick element %s", want)
	}
	if n := strings.Count(out, "<circle"); n != 102 {
		t.Errorf("circles = %d, want 102", n)
	}
	if n := strings.Count(out, `opacity="0.10"`); n != 100 {
		t.Errorf("faded texture studs = %d, want 100", n)
	}
}

func TestPaint(t *testing.T) {
	tests := []struct {
		name  string
		style render.Style
		want  string
	}{
		{"outline", render.Style{Stroke: color.Black, Alpha: 1, LineWidth: 1}, ` fill="none" stroke="#000000" stroke-width="1.00"`},
		{"fill only", render.Style{Fill: color.White, Alpha: 1}, ` fill="#ffffff" stroke="none"`},
		{"faded", render.Style{Fill: color.White, Alpha: 0.2}, ` fill="#ffffff" stroke="none" opacity="0.20"`},
		{"zero width stroke", render.Style{Stroke: color.Black, Alpha: 1}, ` fill="none" stroke="none"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paint(tt.style); got != tt.want {
				t.Errorf("paint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeWritesWholeDocument(t *testing.T) {
	c, err := New(10).NewCanvas(render.Frame{MaxX: 2, MaxY: 1})
	if err != nil {
		t.Fatal(err)
	}
	c.Circle(1, 0.5, 0.5, render.Style{Fill: color.Black, Alpha: 1})
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `<circle cx="10.00" cy="5.00" r="5.00" fill="#000000" stroke="none"/>`) {
		t.Errorf("unexpected document:\n%s", buf.String())
	}
}
