package pipeline

import (
	"bytes"
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/assys/brickguide/pkg/blueprint"
	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/cache"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/render/recording"
)

type memSource map[string]*blueprint.Blueprint

func (m memSource) List(context.Context) ([]string, error) {
	var names []string
	for n := range m {
		names = append(names, n)
	}
	return names, nil
}

func (m memSource) Load(_ context.Context, name string) (*blueprint.Blueprint, error) {
	if bp, ok := m[name]; ok {
		return bp, nil
	}
	return nil, errors.New(errors.ErrCodeBlueprintNotFound, "blueprint %q not found", name)
}

func testSource() memSource {
	return memSource{
		"tower": {Name: "tower", Steps: []brick.Placement{
			{X: 0, Y: 0, Width: 4, Height: 2, Color: "red"},
			{X: 0, Y: 0, Width: 2, Height: 2, Color: "blue"},
			{X: 6, Y: 6, Width: 2, Height: 2, Color: "green"},
		}},
		"broken": {Name: "broken", Steps: []brick.Placement{
			{X: 9, Y: 9, Width: 2, Height: 2, Color: "red"},
		}},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("invalid format error = %v", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Blueprint: "tower", Step: 1}
	if err := opts.ValidateForStep(); err != nil {
		t.Fatal(err)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Grid != brick.DefaultGrid {
		t.Errorf("Grid = %v, want %v", opts.Grid, brick.DefaultGrid)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "png" {
		t.Errorf("Formats = %v, want [png]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	support := Options{Blueprint: "tower"}
	if err := support.ValidateForSupport(); err != nil {
		t.Fatal(err)
	}
	if support.Formats[0] != FormatSVG {
		t.Errorf("support Formats = %v, want [svg]", support.Formats)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing blueprint", Options{Step: 1}, errors.ErrCodeInvalidBlueprint},
		{"path traversal", Options{Blueprint: "../etc", Step: 1}, errors.ErrCodeInvalidBlueprint},
		{"step zero", Options{Blueprint: "tower"}, errors.ErrCodeInvalidInput},
		{"negative scale", Options{Blueprint: "tower", Step: 1, Scale: -1}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Blueprint: "tower", Step: 1, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForStep()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	bad := Options{Blueprint: "tower", Formats: []string{"png"}}
	if err := bad.ValidateForSupport(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("support png error = %v, want INVALID_FORMAT", err)
	}
}

func TestStep(t *testing.T) {
	r := NewRunner(testSource(), nil, nil, nil)
	res, err := r.Step(context.Background(), Options{Blueprint: "tower", Step: 2, Formats: []string{"json", "svg"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Step != 2 || res.Total != 3 {
		t.Errorf("Step/Total = %d/%d, want 2/3", res.Step, res.Total)
	}
	if res.Placement.Color != "blue" {
		t.Errorf("Placement = %v, want the blue brick", res.Placement)
	}
	if len(res.Artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(res.Artifacts))
	}
	if !strings.Contains(string(res.Artifacts["svg"].Data), "<svg") {
		t.Error("svg artifact is not SVG")
	}

	c, err := recording.Decode(bytes.NewReader(res.Artifacts["json"].Data))
	if err != nil {
		t.Fatal(err)
	}
	// Both placed bricks are drawn: one faded, one solid.
	var bricks int
	for _, op := range c.Ops {
		if op.Kind == "rect" && op.Fill != "" && op.Fill != "#ffffff" {
			bricks++
		}
	}
	if bricks != 2 {
		t.Errorf("got %d brick rectangles, want 2", bricks)
	}
}

func TestStepOutOfRange(t *testing.T) {
	r := NewRunner(testSource(), nil, nil, nil)
	_, err := r.Step(context.Background(), Options{Blueprint: "tower", Step: 4, Formats: []string{"json"}})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestLoadErrors(t *testing.T) {
	r := NewRunner(testSource(), nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Control(ctx, Options{Blueprint: "missing"}); !errors.Is(err, errors.ErrCodeBlueprintNotFound) {
		t.Errorf("missing blueprint error = %v", err)
	}
	if _, err := r.Control(ctx, Options{Blueprint: "broken"}); !errors.Is(err, errors.ErrCodeInvalidBlueprint) {
		t.Errorf("broken blueprint error = %v", err)
	}
	if _, err := NewRunner(nil, nil, nil, nil).Load(ctx, "tower", brick.DefaultGrid); !errors.Is(err, errors.ErrCodeUnavailable) {
		t.Errorf("no source error = %v", err)
	}
}

func TestControl(t *testing.T) {
	r := NewRunner(testSource(), nil, nil, nil)
	res, err := r.Control(context.Background(), Options{Blueprint: "tower", Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	// blue collides with red and opens layer 1, green joins it, then the
	// trailing derived layer.
	if res.Layers != 3 {
		t.Errorf("Layers = %d, want 3", res.Layers)
	}
	views, ok := res.Views["json"]
	if !ok {
		t.Fatal("missing json views")
	}
	for i, img := range views.All() {
		if len(img.Data) == 0 {
			t.Errorf("view %d is empty", i)
		}
	}
}

func TestControlCache(t *testing.T) {
	c := cache.NewMemoryCache()
	r := NewRunner(testSource(), c, nil, nil)
	ctx := context.Background()
	opts := Options{Blueprint: "tower", Formats: []string{"svg"}}

	first, err := r.Control(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first render should miss the cache")
	}
	if c.Len() != 4 {
		t.Errorf("cache holds %d entries, want 4 elevations", c.Len())
	}

	second, err := r.Control(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second render should hit the cache")
	}
	if second.Layers != first.Layers {
		t.Errorf("cached Layers = %d, want %d", second.Layers, first.Layers)
	}
	for i, img := range second.Views["svg"].All() {
		if !img.Equal(first.Views["svg"].All()[i]) {
			t.Errorf("cached view %d differs", i)
		}
	}

	opts.Refresh = true
	third, _ := r.Control(ctx, opts)
	if third.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestStepCacheKeyedByPalette(t *testing.T) {
	r := NewRunner(testSource(), cache.NewMemoryCache(), nil, nil)
	ctx := context.Background()
	opts := Options{Blueprint: "tower", Step: 1, Formats: []string{"svg"}}

	r.Palette = brick.NewPalette(map[string]color.RGBA{"red": {R: 200, A: 255}})
	first, err := r.Step(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}

	r.Palette = brick.NewPalette(map[string]color.RGBA{"red": {R: 120, A: 255}})
	second, err := r.Step(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHit {
		t.Error("a changed color override must not reuse the cached preview")
	}
	if bytes.Equal(first.Artifacts["svg"].Data, second.Artifacts["svg"].Data) {
		t.Error("previews drawn with different overrides are identical")
	}

	third, err := r.Step(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheHit {
		t.Error("same palette should hit the cache")
	}
}

func TestStepCacheSharedAcrossNames(t *testing.T) {
	src := testSource()
	src["copy"] = &blueprint.Blueprint{Name: "copy", Steps: src["tower"].Steps}
	r := NewRunner(src, cache.NewMemoryCache(), nil, nil)
	ctx := context.Background()

	if _, err := r.Step(ctx, Options{Blueprint: "tower", Step: 1, Formats: []string{"svg"}}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Step(ctx, Options{Blueprint: "copy", Step: 1, Formats: []string{"svg"}})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheHit {
		t.Error("identical step prefixes should share cached previews")
	}
}

func TestSupportDOT(t *testing.T) {
	r := NewRunner(testSource(), nil, nil, nil)
	res, err := r.Support(context.Background(), Options{Blueprint: "tower", Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatal(err)
	}
	dot := string(res.Artifacts[FormatDOT])
	if !strings.Contains(dot, `"p2" -> "p1"`) {
		t.Errorf("blue brick should rest on the red one:\n%s", dot)
	}
	if res.Layers != 3 {
		t.Errorf("Layers = %d, want 3", res.Layers)
	}
}
