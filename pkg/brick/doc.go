// Package brick defines the build instructions consumed by the voxel engine.
//
// A [Placement] is one step of a blueprint: a rectangular footprint on the
// build plate plus a symbolic color token. Placements are plain values; the
// sequence order is the build order and is never changed by the engine.
//
// # Grid
//
// Every placement must fit inside a [Grid] (10×10 units by default). Use
// [Grid.Validate] or [Grid.ValidateAll] before handing a sequence to the
// engine; out-of-bounds footprints are reported as INVALID_PLACEMENT and are
// never clipped or moved.
//
// # Colors
//
// Color tokens stay symbolic until render time. A [Palette] resolves them to
// RGBA values using the CSS/X11 color names, hex notation and registered
// overrides. Unknown tokens resolve to [FallbackColor] so a single bad token
// never aborts a render.
package brick
