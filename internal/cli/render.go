package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/pipeline"
	"github.com/assys/brickguide/pkg/render"
	"github.com/assys/brickguide/pkg/voxel/view"
)

// renderOpts holds the command-line flags shared by the render subcommands.
type renderOpts struct {
	output   string  // base path; format (and view) suffixes are appended
	formats  string  // comma-separated output formats
	scale    float64 // pixels (or SVG units) per grid unit
	noCache  bool    // bypass the artifact cache
	detailed bool    // layer indices in support graph labels
}

// renderCommand creates the render command with step, control and support
// subcommands.
func (c *CLI) renderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render guide images to files",
		Long: `Render the images the guide shows, without running the server.

  step      preview of one step: earlier bricks faded, the new one highlighted
  control   front, back, left and right elevations of the finished model
  support   graph of which brick rests on which (DOT or SVG)`,
	}

	cmd.AddCommand(c.renderStepCommand())
	cmd.AddCommand(c.renderControlCommand())
	cmd.AddCommand(c.renderSupportCommand())

	return cmd
}

func addRenderFlags(cmd *cobra.Command, opts *renderOpts, formatHelp string) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default derived from the blueprint name)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", formatHelp)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable artifact caching")
}

func (c *CLI) renderStepCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:               "step <blueprint> <step>",
		ValidArgsFunction: c.completeBlueprint,
		Short:             "Render the preview of one step",
		Args:              cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "step must be a number, got %q", args[1])
			}
			return c.runRender(cmd.Context(), pipeline.KindStep, args[0], step, &opts)
		},
	}
	addRenderFlags(cmd, &opts, "output format(s): png (default), svg, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "pixels per grid unit (default from config)")
	return cmd
}

func (c *CLI) renderControlCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:               "control <blueprint>",
		ValidArgsFunction: c.completeBlueprint,
		Short:             "Render the four elevations of the finished model",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), pipeline.KindControl, args[0], 0, &opts)
		},
	}
	addRenderFlags(cmd, &opts, "output format(s): png (default), svg, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "pixels per grid unit (default from config)")
	return cmd
}

func (c *CLI) renderSupportCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:               "support <blueprint>",
		ValidArgsFunction: c.completeBlueprint,
		Short:             "Render the support graph of the finished model",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), pipeline.KindSupport, args[0], 0, &opts)
		},
	}
	addRenderFlags(cmd, &opts, "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show layer indices in node labels")
	return cmd
}

// runRender renders one blueprint and writes every requested artifact.
func (c *CLI) runRender(ctx context.Context, kind, name string, step int, opts *renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	e, err := c.openEnv(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer e.close()

	scale := opts.scale
	if scale == 0 {
		scale = cfg.Render.Scale
	}
	popts := pipeline.Options{
		Blueprint: name,
		Step:      step,
		Scale:     scale,
		Grid:      cfg.Grid(),
		Detailed:  opts.detailed,
		Logger:    c.Logger,
	}
	base := opts.output
	prog := newProgress(c.Logger)

	var files map[string][]byte
	switch kind {
	case pipeline.KindStep:
		popts.Formats = parseFormats(opts.formats, cfg.Render.Format)
		res, err := e.runner.Step(ctx, popts)
		if err != nil {
			return err
		}
		if base == "" {
			base = fmt.Sprintf("%s_step%d", res.Blueprint, res.Step)
		}
		files = stepFiles(basePath(base), res)
		printInfo("Step %d of %d: %s", res.Step, res.Total, res.Placement)
		printStats(res.Total, 0, res.CacheHit)
	case pipeline.KindControl:
		popts.Formats = parseFormats(opts.formats, cfg.Render.Format)
		res, err := e.runner.Control(ctx, popts)
		if err != nil {
			return err
		}
		if base == "" {
			base = res.Blueprint
		}
		files = controlFiles(basePath(base), res)
		printStats(res.Total, res.Layers, res.CacheHit)
	case pipeline.KindSupport:
		popts.Formats = parseFormats(opts.formats, pipeline.FormatSVG)
		res, err := e.runner.Support(ctx, popts)
		if err != nil {
			return err
		}
		if base == "" {
			base = res.Blueprint + "_support"
		}
		files = supportFiles(basePath(base), res)
		printStats(0, res.Layers, false)
	}

	for _, path := range sortedKeys(files) {
		if err := writeOutput(path, files[path]); err != nil {
			return err
		}
		printFile(path)
	}
	prog.done(fmt.Sprintf("Rendered %s of %s", kind, name))
	return nil
}

func stepFiles(base string, res *pipeline.StepResult) map[string][]byte {
	files := make(map[string][]byte, len(res.Artifacts))
	for format, img := range res.Artifacts {
		files[base+"."+format] = img.Data
	}
	return files
}

func controlFiles(base string, res *pipeline.ControlResult) map[string][]byte {
	files := make(map[string][]byte)
	for format, views := range res.Views {
		for _, d := range view.Directions {
			img, _ := views.Get(d)
			files[fmt.Sprintf("%s_%s.%s", base, d, format)] = img.Data
		}
	}
	return files
}

func supportFiles(base string, res *pipeline.SupportResult) map[string][]byte {
	files := make(map[string][]byte, len(res.Artifacts))
	for format, data := range res.Artifacts {
		files[base+"."+format] = data
	}
	return files
}

// basePath strips a known format extension from an output path.
func basePath(output string) string {
	ext := filepath.Ext(output)
	switch strings.TrimPrefix(ext, ".") {
	case string(render.FormatPNG), string(render.FormatSVG), string(render.FormatJSON), pipeline.FormatDOT:
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
