package render

import (
	"bytes"

	"golang.org/x/sync/errgroup"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/voxel"
	"github.com/assys/brickguide/pkg/voxel/view"
)

// Renderer draws guide images with one backend. The zero Grid means
// brick.DefaultGrid; a nil Palette resolves named and hex colors only.
type Renderer struct {
	Backend Backend
	Grid    brick.Grid
	Palette *brick.Palette
}

func (r Renderer) grid() brick.Grid {
	if r.Grid.Width == 0 && r.Grid.Height == 0 {
		return brick.DefaultGrid
	}
	return r.Grid
}

// Preview renders the step preview of placements, the last one being the
// current step.
func (r Renderer) Preview(placements []brick.Placement) (Image, error) {
	grid := r.grid()
	if err := grid.ValidateAll(placements); err != nil {
		return Image{}, err
	}
	return r.draw("preview", PreviewFrame(grid), func(c Canvas) {
		DrawPreview(c, grid, r.Palette, placements)
	})
}

// Elevation renders a single arrangement.
func (r Renderer) Elevation(a view.Arrangement) (Image, error) {
	_, vertical, horizontal := a.Dims()
	return r.draw(string(a.Direction()), ElevationFrame(horizontal, vertical), func(c Canvas) {
		DrawElevation(c, r.Palette, a)
	})
}

// ControlViews holds the four elevations of a finished model.
type ControlViews struct {
	Front Image
	Back  Image
	Left  Image
	Right Image
	// Layers is the depth of the model the views were drawn from.
	Layers int
}

// All returns the images as front, back, left, right.
func (v ControlViews) All() []Image {
	return []Image{v.Front, v.Back, v.Left, v.Right}
}

// Get returns the image for d.
func (v ControlViews) Get(d view.Direction) (Image, bool) {
	switch d {
	case view.Front:
		return v.Front, true
	case view.Back:
		return v.Back, true
	case view.Left:
		return v.Left, true
	case view.Right:
		return v.Right, true
	}
	return Image{}, false
}

// ControlViews builds the voxel model of placements once and renders its
// four elevations concurrently.
func (r Renderer) ControlViews(placements []brick.Placement) (ControlViews, error) {
	model, err := voxel.Assign(r.grid(), placements)
	if err != nil {
		return ControlViews{}, err
	}
	return r.ModelViews(model)
}

// ModelViews renders the four elevations of an already built model.
func (r Renderer) ModelViews(model *voxel.Model) (ControlViews, error) {
	views := view.Project(model)
	out := ControlViews{Layers: model.Depth()}
	targets := []*Image{&out.Front, &out.Back, &out.Left, &out.Right}

	var g errgroup.Group
	for i, a := range views.All() {
		g.Go(func() error {
			img, err := r.Elevation(a)
			if err != nil {
				return err
			}
			*targets[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ControlViews{}, err
	}
	return out, nil
}

func (r Renderer) draw(name string, frame Frame, fn func(Canvas)) (Image, error) {
	if r.Backend == nil {
		return Image{}, errors.New(errors.ErrCodeRenderFailed, "%s: no backend configured", name)
	}
	c, err := r.Backend.NewCanvas(frame)
	if err != nil {
		return Image{}, errors.Wrap(errors.ErrCodeRenderFailed, err, "%s: create canvas", name)
	}
	fn(c)

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return Image{}, errors.Wrap(errors.ErrCodeRenderFailed, err, "%s: encode %s", name, r.Backend.Format())
	}
	return Image{Format: r.Backend.Format(), Data: buf.Bytes()}, nil
}
