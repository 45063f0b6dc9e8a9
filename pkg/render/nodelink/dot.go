package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/voxel"
)

// GroundID is the DOT node ID of the ground.
const GroundID = "ground"

// Options configures diagram generation.
type Options struct {
	// Detailed adds the layer index to node labels.
	Detailed bool
}

// NodeID returns the DOT node ID of placement i (0-based).
func NodeID(i int) string { return "p" + strconv.Itoa(i+1) }

// graphAttrs is the DOT preamble shared by every support graph.
var graphAttrs = []string{
	`rankdir=TB`,
	`bgcolor="transparent"`,
	`ranksep=0.5`,
	`nodesep=0.3`,
	`node [shape=box, style="rounded,filled", fontsize=18, margin="0.2,0.1"]`,
}

// ToDOT converts the support graph of m to Graphviz DOT source. Bricks of
// one layer share a rank, the top layer first, and every support edge
// points from the upper brick down to the brick or ground it rests on.
func ToDOT(m *voxel.Model, palette *brick.Palette, opts Options) string {
	byLayer := make([][]int, m.Depth())
	for i, layer := range m.Membership {
		byLayer[layer] = append(byLayer[layer], i)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	for _, attr := range graphAttrs {
		fmt.Fprintf(&buf, "  %s;\n", attr)
	}
	for layer := len(byLayer) - 1; layer >= 0; layer-- {
		if len(byLayer[layer]) == 0 {
			continue
		}
		buf.WriteString("\n  { rank=same;\n")
		for _, i := range byLayer[layer] {
			fmt.Fprintf(&buf, "    %q [%s];\n", NodeID(i), fmtAttrs(i, m.Placements[i], layer, palette, opts))
		}
		buf.WriteString("  }\n")
	}
	if len(m.Placements) > 0 {
		fmt.Fprintf(&buf, "  %q [label=\"ground\", shape=plaintext, style=\"\"];\n\n", GroundID)
	}
	for _, s := range m.Supports() {
		to := GroundID
		if s.Lower != voxel.Ground {
			to = NodeID(s.Lower)
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", NodeID(s.Upper), to)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(i int, p brick.Placement, layer int, palette *brick.Palette, opts Options) string {
	label := fmt.Sprintf("#%d %s", i+1, p)
	if opts.Detailed {
		label += fmt.Sprintf("\nlayer %d", layer)
	}
	fill := palette.Color(p.Color)
	return fmt.Sprintf("label=%q, fillcolor=%q, fontcolor=%q", label, brick.Hex(fill), fontColor(fill))
}

// fontColor picks black or white, whichever reads better on fill.
func fontColor(fill color.RGBA) string {
	luma := 0.299*float64(fill.R) + 0.587*float64(fill.G) + 0.114*float64(fill.B)
	if luma < 128 {
		return "white"
	}
	return "black"
}

// RenderSVG lays out DOT source with the embedded Graphviz and returns an
// SVG that scales to its container.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "start graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse support graph")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "lay out support graph")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales to its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
