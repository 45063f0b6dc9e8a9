package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/assys/brickguide/pkg/blueprint"
	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/cache"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/observability"
	"github.com/assys/brickguide/pkg/render"
	"github.com/assys/brickguide/pkg/render/nodelink"
	"github.com/assys/brickguide/pkg/voxel"
	"github.com/assys/brickguide/pkg/voxel/view"
)

// Runner loads blueprints and renders them with an artifact cache.
//
// The Runner holds no per-request state; multiple goroutines can use the
// same Runner with different options.
type Runner struct {
	Source  blueprint.Source
	Cache   cache.Cache
	Keyer   cache.Keyer
	Palette *brick.Palette
	Logger  *log.Logger
}

// NewRunner creates a runner. A nil cache disables artifact caching, a nil
// keyer uses DefaultKeyer.
func NewRunner(src blueprint.Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Load fetches a blueprint and validates it against grid.
func (r *Runner) Load(ctx context.Context, name string, grid brick.Grid) (*blueprint.Blueprint, error) {
	if r.Source == nil {
		return nil, errors.New(errors.ErrCodeUnavailable, "no blueprint source configured")
	}
	bp, err := r.Source.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := bp.Validate(grid); err != nil {
		return nil, err
	}
	return bp, nil
}

// Step renders the preview of one guide step: every placement up to and
// including opts.Step, the last one highlighted.
func (r *Runner) Step(ctx context.Context, opts Options) (res *StepResult, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForStep(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, KindStep, opts.Formats)
	defer func() {
		observability.Render().OnRenderComplete(ctx, KindStep, opts.Formats, 0, time.Since(start), err)
	}()

	bp, err := r.Load(ctx, opts.Blueprint, opts.Grid)
	if err != nil {
		return nil, err
	}
	if opts.Step > bp.Len() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "step %d out of range: blueprint %q has %d steps", opts.Step, bp.Name, bp.Len())
	}
	res = &StepResult{
		Blueprint: bp.Name,
		Step:      opts.Step,
		Total:     bp.Len(),
		Placement: bp.Steps[opts.Step-1],
		Artifacts: make(map[string]render.Image),
	}
	res.Stats.LoadTime = time.Since(start)

	prefix := bp.Prefix(opts.Step)
	hash := stepsHash(prefix)
	renderStart := time.Now()
	res.CacheHit = true
	for _, format := range opts.Formats {
		key := r.artifactKey(hash, opts, KindStep, format)
		if img, ok := r.cached(ctx, key, format, opts); ok {
			res.Artifacts[format] = img
			continue
		}
		res.CacheHit = false

		rd, err := NewRenderer(format, opts.Scale, opts.Grid, r.Palette)
		if err != nil {
			return nil, err
		}
		img, err := rd.Preview(prefix)
		if err != nil {
			return nil, err
		}
		r.store(ctx, key, img)
		res.Artifacts[format] = img
	}
	res.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Debug("rendered step",
		"blueprint", bp.Name,
		"step", opts.Step,
		"total", bp.Len(),
		"cached", res.CacheHit,
		"duration", res.Stats.RenderTime)
	return res, nil
}

// Control renders the four elevations of the finished blueprint.
func (r *Runner) Control(ctx context.Context, opts Options) (res *ControlResult, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForControl(); err != nil {
		return nil, err
	}

	start := time.Now()
	layers := 0
	observability.Render().OnRenderStart(ctx, KindControl, opts.Formats)
	defer func() {
		observability.Render().OnRenderComplete(ctx, KindControl, opts.Formats, layers, time.Since(start), err)
	}()

	bp, err := r.Load(ctx, opts.Blueprint, opts.Grid)
	if err != nil {
		return nil, err
	}
	res = &ControlResult{
		Blueprint: bp.Name,
		Total:     bp.Len(),
		Views:     make(map[string]render.ControlViews),
	}
	res.Stats.LoadTime = time.Since(start)

	modelStart := time.Now()
	model, err := voxel.Assign(opts.Grid, bp.Steps)
	if err != nil {
		return nil, err
	}
	layers = model.Depth()
	res.Layers = layers
	res.Stats.ModelTime = time.Since(modelStart)

	hash := stepsHash(bp.Steps)
	renderStart := time.Now()
	res.CacheHit = true
	for _, format := range opts.Formats {
		if views, ok := r.cachedViews(ctx, hash, format, opts); ok {
			views.Layers = layers
			res.Views[format] = views
			continue
		}
		res.CacheHit = false

		rd, err := NewRenderer(format, opts.Scale, opts.Grid, r.Palette)
		if err != nil {
			return nil, err
		}
		views, err := rd.ModelViews(model)
		if err != nil {
			return nil, err
		}
		for _, d := range view.Directions {
			img, _ := views.Get(d)
			r.store(ctx, r.artifactKey(hash, opts, viewKind(d), format), img)
		}
		res.Views[format] = views
	}
	res.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Debug("rendered control views",
		"blueprint", bp.Name,
		"layers", layers,
		"conflicts", model.Conflicts(),
		"cached", res.CacheHit,
		"duration", res.Stats.RenderTime)
	return res, nil
}

// Support renders the support graph of the finished blueprint.
func (r *Runner) Support(ctx context.Context, opts Options) (res *SupportResult, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSupport(); err != nil {
		return nil, err
	}

	start := time.Now()
	layers := 0
	observability.Render().OnRenderStart(ctx, KindSupport, opts.Formats)
	defer func() {
		observability.Render().OnRenderComplete(ctx, KindSupport, opts.Formats, layers, time.Since(start), err)
	}()

	bp, err := r.Load(ctx, opts.Blueprint, opts.Grid)
	if err != nil {
		return nil, err
	}
	res = &SupportResult{Blueprint: bp.Name, Artifacts: make(map[string][]byte)}
	res.Stats.LoadTime = time.Since(start)

	modelStart := time.Now()
	model, err := voxel.Assign(opts.Grid, bp.Steps)
	if err != nil {
		return nil, err
	}
	layers = model.Depth()
	res.Layers = layers
	res.Stats.ModelTime = time.Since(modelStart)

	renderStart := time.Now()
	dot := nodelink.ToDOT(model, r.Palette, nodelink.Options{Detailed: opts.Detailed})
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			res.Artifacts[format] = []byte(dot)
		case FormatSVG:
			data, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "support graph of %q", bp.Name)
			}
			res.Artifacts[format] = data
		}
	}
	res.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Debug("rendered support graph",
		"blueprint", bp.Name,
		"placements", bp.Len(),
		"duration", res.Stats.RenderTime)
	return res, nil
}

// Close releases the artifact cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cached(ctx context.Context, key, format string, opts Options) (render.Image, bool) {
	if opts.Refresh {
		return render.Image{}, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		return render.Image{}, false
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	return render.Image{Format: render.Format(format), Data: data}, true
}

// artifactKey names one cached image drawn with the runner's palette.
func (r *Runner) artifactKey(hash string, opts Options, kind, format string) string {
	ko := opts.ArtifactKeyOpts(kind, format)
	ko.Palette = r.Palette.Fingerprint()
	return r.Keyer.ArtifactKey(hash, ko)
}

// cachedViews succeeds only if all four elevations are cached.
func (r *Runner) cachedViews(ctx context.Context, hash, format string, opts Options) (render.ControlViews, bool) {
	var views render.ControlViews
	targets := []*render.Image{&views.Front, &views.Back, &views.Left, &views.Right}
	for i, d := range view.Directions {
		img, ok := r.cached(ctx, r.artifactKey(hash, opts, viewKind(d), format), format, opts)
		if !ok {
			return render.ControlViews{}, false
		}
		*targets[i] = img
	}
	return views, true
}

func (r *Runner) store(ctx context.Context, key string, img render.Image) {
	if err := r.Cache.Set(ctx, key, img.Data, TTLArtifact); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "artifact", len(img.Data))
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func viewKind(d view.Direction) string { return KindControl + ":" + string(d) }

func stepsHash(steps []brick.Placement) string {
	return (&blueprint.Blueprint{Steps: steps}).Hash()
}
