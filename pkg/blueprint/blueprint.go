package blueprint

import (
	"context"
	"encoding/json"
	"math/rand/v2"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/cache"
	"github.com/assys/brickguide/pkg/errors"
)

// Blueprint is a named build sequence.
type Blueprint struct {
	Name  string            `json:"name" yaml:"name" bson:"name"`
	Steps []brick.Placement `json:"steps" yaml:"steps" bson:"steps"`
}

// Len returns the number of steps.
func (b *Blueprint) Len() int { return len(b.Steps) }

// Prefix returns the placements up to and including step (1-based), clamped
// to the blueprint length.
func (b *Blueprint) Prefix(step int) []brick.Placement {
	return b.Steps[:min(max(step, 0), len(b.Steps))]
}

// Validate checks every step against grid.
func (b *Blueprint) Validate(grid brick.Grid) error {
	if err := grid.ValidateAll(b.Steps); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "blueprint %q", b.Name)
	}
	return nil
}

// Hash identifies the step sequence; two blueprints with the same steps
// share a hash regardless of name.
func (b *Blueprint) Hash() string {
	data, _ := json.Marshal(b.Steps)
	return cache.Hash(data)
}

// Source lists and loads blueprints.
type Source interface {
	// List returns the available names in sorted order.
	List(ctx context.Context) ([]string, error)
	// Load returns the named blueprint or BLUEPRINT_NOT_FOUND.
	Load(ctx context.Context, name string) (*Blueprint, error)
}

// Store is a Source that can also persist blueprints.
type Store interface {
	Source
	Save(ctx context.Context, b *Blueprint) error
}

// Random picks a blueprint name uniformly. A nil rng uses the global
// generator.
func Random(ctx context.Context, src Source, rng *rand.Rand) (string, error) {
	names, err := src.List(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", errors.New(errors.ErrCodeBlueprintNotFound, "no blueprints available")
	}
	if rng == nil {
		return names[rand.IntN(len(names))], nil
	}
	return names[rng.IntN(len(names))], nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeBlueprintNotFound, "blueprint %q not found", name)
}
