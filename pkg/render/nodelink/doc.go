// Package nodelink renders the support graph of a voxel model as a
// node-link diagram.
//
// Every placement becomes a box filled with its brick color. An edge points
// from a placement to each placement it rests on in the layer directly
// below; placements in the bottom layer point to a single ground node.
// Placements of one layer share a rank, so the diagram reads like the
// model: top layer at the top, ground at the bottom.
//
//	dot := nodelink.ToDOT(model, palette, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. SVG rendering runs in-process through
// [github.com/goccy/go-graphviz].
package nodelink
