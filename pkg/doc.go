// Package pkg provides the core libraries of brickguide, a step-by-step
// building guide for brick models.
//
// # Overview
//
// A blueprint is an ordered list of brick placements on a grid plate. The
// guide shows one placement per step as a top-down preview, then checks the
// finished model from four sides. The pkg directory is organized into:
//
//  1. Domain: [brick], [blueprint], [voxel], [voxel/view], [guide]
//  2. Rendering: [render] and its backends, [pipeline]
//  3. Infrastructure: [cache], [session], [config], [httputil], [observability]
//  4. Hardware: [pickbylight] lights the storage bin of the next brick
//
// # Architecture
//
// The data flow for one guide position:
//
//	Blueprint (CSV, YAML, MongoDB)
//	         ↓
//	    [voxel] package (stack placements into layers)
//	         ↓
//	    [voxel/view] package (front, back, left, right arrangements)
//	         ↓
//	    [render] package (preview and elevation drawing)
//	         ↓
//	    PNG/SVG/JSON output
//
// # Quick Start
//
// Render the control views of a blueprint:
//
//	import (
//	    "context"
//	    "github.com/assys/brickguide/pkg/blueprint"
//	    "github.com/assys/brickguide/pkg/pipeline"
//	    "github.com/assys/brickguide/pkg/voxel/view"
//	)
//
//	runner := pipeline.NewRunner(blueprint.NewDirSource("blueprints"), nil, nil, nil)
//	res, _ := runner.Control(context.Background(), pipeline.Options{
//	    Blueprint: "house",
//	    Formats:   []string{"png"},
//	})
//	front, _ := res.Views["png"].Get(view.Front)
//
// # Main Packages
//
// [brick] - Placements, the grid plate and the color palette.
//
// [blueprint] - Blueprint sources: a directory of CSV and YAML files,
// MongoDB, and a caching wrapper.
//
// [voxel] - Assigns each placement to the lowest layer where its footprint
// is free and records which cells are occupied or buildable.
//
// [voxel/view] - Reads a voxel model from the four cardinal directions
// without copying it.
//
// [guide] - Step navigation: next, back, the control position and restart.
//
// [render] - Preview and elevation drawing against a [render.Canvas], with
// raster (PNG), SVG and recording (JSON) backends, plus the support graph
// in [render/nodelink].
//
// [pipeline] - Loads blueprints and renders cached step, control and
// support artifacts. Shared by the CLI and the web server.
//
// [cache] - Artifact cache with null, memory, file and Redis backends.
//
// [session] - Operator sessions with memory, file and Redis backends.
//
// [pickbylight] - Storage bins and the Art-Net controller that lights them.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/voxel/...    # Specific package
//	go test -run Example       # Examples only
//
// [brick]: https://pkg.go.dev/github.com/assys/brickguide/pkg/brick
// [blueprint]: https://pkg.go.dev/github.com/assys/brickguide/pkg/blueprint
// [voxel]: https://pkg.go.dev/github.com/assys/brickguide/pkg/voxel
// [voxel/view]: https://pkg.go.dev/github.com/assys/brickguide/pkg/voxel/view
// [guide]: https://pkg.go.dev/github.com/assys/brickguide/pkg/guide
// [render]: https://pkg.go.dev/github.com/assys/brickguide/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/assys/brickguide/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/assys/brickguide/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/assys/brickguide/pkg/cache
// [session]: https://pkg.go.dev/github.com/assys/brickguide/pkg/session
// [config]: https://pkg.go.dev/github.com/assys/brickguide/pkg/config
// [httputil]: https://pkg.go.dev/github.com/assys/brickguide/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/assys/brickguide/pkg/observability
// [pickbylight]: https://pkg.go.dev/github.com/assys/brickguide/pkg/pickbylight
package pkg
