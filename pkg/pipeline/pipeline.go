// Package pipeline loads blueprints and renders their guide images.
//
// The same runner backs the HTTP server, the CLI and the terminal guide, so
// option defaults and caching behave identically everywhere.
//
// # Stages
//
//  1. Load: fetch the blueprint from a [blueprint.Source] and validate it
//     against the grid.
//  2. Model: for control and support renders, assign the placements to
//     voxel layers.
//  3. Render: draw the requested formats, consulting the artifact cache
//     first.
//
// # Usage
//
//	runner := pipeline.NewRunner(source, artifacts, nil, logger)
//	res, err := runner.Step(ctx, pipeline.Options{Blueprint: "tower", Step: 3})
//	if err != nil {
//	    return err
//	}
//	png := res.Artifacts["png"]
//
// Control renders return the four elevations per format; support renders
// return the support graph as DOT and SVG.
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/cache"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/render"
)

// DefaultScale is the default number of pixels (or SVG units) per grid unit.
const DefaultScale = 40.0

// TTLArtifact is how long rendered images stay cached.
const TTLArtifact = 24 * time.Hour

// Render kinds, used for cache keys, hooks and logs.
const (
	KindStep    = "step"
	KindControl = "control"
	KindSupport = "support"
)

// Support graph formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of image formats for step and control renders.
var ValidFormats = map[string]bool{
	string(render.FormatPNG):  true,
	string(render.FormatSVG):  true,
	string(render.FormatJSON): true,
}

// ValidSupportFormats is the set of support graph formats.
var ValidSupportFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// Options configures one render.
type Options struct {
	Blueprint string `json:"blueprint"`
	// Step is the 1-based guide step for step renders.
	Step    int        `json:"step,omitempty"`
	Formats []string   `json:"formats,omitempty"`
	Scale   float64    `json:"scale,omitempty"`
	Grid    brick.Grid `json:"grid,omitempty"`
	// Detailed adds layer indices to support graph labels.
	Detailed bool `json:"detailed,omitempty"`
	// Refresh skips cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateFormat checks that format is a step/control image format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, keys(ValidFormats))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func keys(m map[string]bool) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return strings.Join(out, ", ")
}

func (o *Options) setDefaults() {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Grid.Width == 0 && o.Grid.Height == 0 {
		o.Grid = brick.DefaultGrid
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) validateCommon() error {
	if err := errors.ValidateBlueprintName(o.Blueprint); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	o.setDefaults()
	return nil
}

// ValidateForStep checks the options of a step render and applies defaults.
// The step range is checked once the blueprint is loaded.
func (o *Options) ValidateForStep() error {
	if err := o.validateCommon(); err != nil {
		return err
	}
	if err := errors.ValidateStep(o.Step); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{string(render.FormatPNG)}
	}
	return ValidateFormats(o.Formats)
}

// ValidateForControl checks the options of a control render and applies
// defaults.
func (o *Options) ValidateForControl() error {
	if err := o.validateCommon(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{string(render.FormatPNG)}
	}
	return ValidateFormats(o.Formats)
}

// ValidateForSupport checks the options of a support graph render and
// applies defaults.
func (o *Options) ValidateForSupport() error {
	if err := o.validateCommon(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if !ValidSupportFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid support format: %q (must be one of: %s)", f, keys(ValidSupportFormats))
		}
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for one image.
func (o *Options) ArtifactKeyOpts(kind, format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Kind:       kind,
		Format:     format,
		Scale:      o.Scale,
		GridWidth:  o.Grid.Width,
		GridHeight: o.Grid.Height,
	}
}

// Stats contains timing information.
type Stats struct {
	LoadTime   time.Duration
	ModelTime  time.Duration
	RenderTime time.Duration
}

// StepResult is the preview of one guide step.
type StepResult struct {
	Blueprint string
	Step      int
	Total     int
	// Placement is the brick placed in this step.
	Placement brick.Placement
	// Artifacts holds the preview keyed by format.
	Artifacts map[string]render.Image
	Stats     Stats
	CacheHit  bool
}

// ControlResult holds the elevations of a finished blueprint.
type ControlResult struct {
	Blueprint string
	Total     int
	Layers    int
	// Views holds the four elevations keyed by format.
	Views    map[string]render.ControlViews
	Stats    Stats
	CacheHit bool
}

// SupportResult is the support graph of a blueprint.
type SupportResult struct {
	Blueprint string
	Layers    int
	// Artifacts holds DOT source and/or SVG keyed by format.
	Artifacts map[string][]byte
	Stats     Stats
}

func (s Stats) String() string {
	return fmt.Sprintf("load=%s model=%s render=%s", s.LoadTime, s.ModelTime, s.RenderTime)
}
