// Package voxel turns an ordered placement sequence into a stack of layers.
//
// # Cells
//
// Every grid position of every layer holds a [Cell] in one of three states:
//
//   - [KindUnsupported]: nothing occupied the position one layer below.
//   - [KindBuildable]: the layer below holds a brick here, so a connector
//     (stud) is visible and a new brick may rest on it. The ground layer is
//     Buildable everywhere.
//   - [KindOccupied]: a brick of the cell's color fills the position.
//
// # Layer assignment
//
// [Assign] walks the placements in build order and packs each one into the
// current layer. A placement whose footprint touches an Occupied cell closes
// the current layer and opens a new one derived from it: Buildable exactly
// where the closed layer was Occupied, Unsupported elsewhere. Placements over
// Unsupported cells are accepted; assignment only avoids collisions, it does
// not check structural support.
//
// After the last placement the current layer is closed and one more derived
// layer is appended, so the top studs of the model are always visible:
//
//	placements: (0,0,4,4,red) (0,0,4,4,blue)
//	layer 0:    red footprint, Buildable elsewhere
//	layer 1:    blue footprint, Unsupported elsewhere
//	layer 2:    Buildable under blue, Unsupported elsewhere
//
// Models are immutable once built and safe to share between goroutines.
package voxel
