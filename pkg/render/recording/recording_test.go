package recording

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/assys/brickguide/pkg/render"
)

func TestRecordAndDecode(t *testing.T) {
	b := New()
	c, err := b.NewCanvas(render.Frame{MinX: -0.5, MinY: -0.5, MaxX: 10.5, MaxY: 10.5})
	if err != nil {
		t.Fatal(err)
	}
	c.Rectangle(1, 2, 3, 4, render.Style{Fill: color.RGBA{255, 0, 0, 255}, Stroke: color.Black, Alpha: 0.2, LineWidth: 1})
	c.Circle(0.5, 0.5, 0.3, render.Style{Fill: color.White, Alpha: 1})

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	want := []Op{
		{Kind: Rect, X: 1, Y: 2, W: 3, H: 4, Fill: "#ff0000", Stroke: "#000000", Alpha: 0.2, LineWidth: 1},
		{Kind: Circle, X: 0.5, Y: 0.5, R: 0.3, Fill: "#ffffff", Alpha: 1},
	}
	if len(got.Ops) != len(want) {
		t.Fatalf("decoded %d ops, want %d", len(got.Ops), len(want))
	}
	for i := range want {
		if got.Ops[i] != want[i] {
			t.Errorf("op %d = %+v, want %+v", i, got.Ops[i], want[i])
		}
	}
	if got.Frame.MaxX != 10.5 {
		t.Errorf("frame = %+v", got.Frame)
	}
	if n := len(b.Canvases()); n != 1 {
		t.Errorf("Canvases() = %d, want 1", n)
	}
}
