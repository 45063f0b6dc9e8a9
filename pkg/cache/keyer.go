package cache

// Keyer names cache entries.
type Keyer interface {
	// BlueprintKey names a loaded blueprint from a source.
	BlueprintKey(source, name string) string
	// ListKey names the blueprint listing of a source.
	ListKey(source string) string
	// ArtifactKey names a rendered image of a placement sequence.
	ArtifactKey(stepsHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an image's bytes.
type ArtifactKeyOpts struct {
	Kind       string  `json:"kind"` // preview or a view direction
	Format     string  `json:"format"`
	Scale      float64 `json:"scale"`
	GridWidth  int     `json:"grid_width"`
	GridHeight int     `json:"grid_height"`
	// Palette fingerprints the color overrides the image was drawn with.
	Palette    string  `json:"palette,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) BlueprintKey(source, name string) string {
	return "blueprint:" + source + ":" + name
}

func (DefaultKeyer) ListKey(source string) string {
	return "blueprints:" + source
}

func (DefaultKeyer) ArtifactKey(stepsHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", stepsHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, isolating deployments
// that share one Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) BlueprintKey(source, name string) string {
	return k.prefix + k.inner.BlueprintKey(source, name)
}

func (k ScopedKeyer) ListKey(source string) string {
	return k.prefix + k.inner.ListKey(source)
}

func (k ScopedKeyer) ArtifactKey(stepsHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(stepsHash, opts)
}
