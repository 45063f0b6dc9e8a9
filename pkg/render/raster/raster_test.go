package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/render"
)

func decode(t *testing.T, img render.Image) image.Image {
	t.Helper()
	if img.Format != render.FormatPNG {
		t.Fatalf("Format = %s, want png", img.Format)
	}
	out, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	return out
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestPreviewPixels(t *testing.T) {
	r := render.Renderer{Backend: New(DefaultScale)}
	img, err := r.Preview([]brick.Placement{{X: 1, Y: 1, Width: 2, Height: 1, Color: "red"}})
	if err != nil {
		t.Fatalf("Preview() error: %v", err)
	}
	px := decode(t, img)

	if b := px.Bounds(); b.Dx() != 440 || b.Dy() != 440 {
		t.Fatalf("bounds = %v, want 440x440", b)
	}
	// Between the two studs of the brick, in grid units (2, 1.5).
	if got := rgbaAt(px, 100, 360); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("brick pixel = %v, want red", got)
	}
	// Top-left corner lies in the frame margin.
	if got := rgbaAt(px, 2, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("margin pixel = %v, want white", got)
	}
}

func TestRenderIsPixelIdentical(t *testing.T) {
	r := render.Renderer{Backend: New(20)}
	seq := []brick.Placement{
		{X: 0, Y: 0, Width: 4, Height: 2, Color: "blue"},
		{X: 2, Y: 0, Width: 4, Height: 2, Color: "yellow"},
		{X: 3, Y: 1, Width: 1, Height: 1, Color: "#336699"},
	}
	a, err := r.Preview(seq)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := r.Preview(seq)
	if !a.Equal(b) {
		t.Error("Preview() produced different bytes for the same input")
	}

	va, err := r.ControlViews(seq)
	if err != nil {
		t.Fatal(err)
	}
	vb, _ := r.ControlViews(seq)
	for i := range va.All() {
		if !va.All()[i].Equal(vb.All()[i]) {
			t.Errorf("view %d produced different bytes for the same input", i)
		}
	}
}

func TestBackgroundOverride(t *testing.T) {
	b := &Backend{Scale: 10, Background: color.Black}
	c, err := b.NewCanvas(render.Frame{MaxX: 1, MaxY: 1})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	px, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := rgbaAt(px, 5, 5); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("background = %v, want black", got)
	}
}

func TestNewCanvasRejectsEmptyFrame(t *testing.T) {
	if _, err := New(0).NewCanvas(render.Frame{}); err == nil {
		t.Error("NewCanvas(empty frame) should fail")
	}
}

func TestWithAlpha(t *testing.T) {
	got := withAlpha(color.RGBA{255, 0, 0, 255}, 0.2)
	if got != (color.NRGBA{255, 0, 0, 51}) {
		t.Errorf("withAlpha() = %v", got)
	}
}
