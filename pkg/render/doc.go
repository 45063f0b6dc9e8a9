// Package render draws build guide images.
//
// # Overview
//
// Two drawings are produced from placements:
//
//   - A top-down step preview ([DrawPreview]): every placement up to the
//     current step in one plane, earlier bricks faded, the newest brick solid
//     with its studs.
//   - Four elevations ([DrawElevation]): the voxel model built from the whole
//     sequence, read from the front, back, left and right.
//
// Geometry is expressed in grid units with y growing upward. Drawing goes
// through the small [Canvas] interface (rectangles, circles, encode), so the
// drawing code never depends on a particular rasterizer. Backends live in
// subpackages:
//
//   - [raster]: PNG via github.com/fogleman/gg
//   - [svg]: standalone SVG documents
//   - [recording]: records draw calls; encodes them as JSON
//
// # Renderer
//
// [Renderer] ties a [Backend] to a grid and a color palette:
//
//	r := render.Renderer{Backend: raster.New(), Grid: brick.DefaultGrid}
//	img, err := r.Preview(steps[:3])
//	views, err := r.ControlViews(steps)
//	html := views.Front.DataURI()
//
// Every call allocates its own canvas, so a Renderer may be shared between
// goroutines. The four elevations are drawn concurrently from one model.
// Backend failures surface as RENDER_FAILED and are never retried.
//
// [raster]: github.com/assys/brickguide/pkg/render/raster
// [svg]: github.com/assys/brickguide/pkg/render/svg
// [recording]: github.com/assys/brickguide/pkg/render/recording
package render
