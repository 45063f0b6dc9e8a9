package blueprint

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/cache"
	"github.com/assys/brickguide/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "house.csv", "0,0,4,2,red\n0,0,4,2,blue\n")
	writeFile(t, dir, "tower.yaml", "steps:\n  - {x: 1, y: 1, width: 2, height: 1, color: red}\n")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, ".hidden.csv", "0,0,1,1,red\n")
	os.Mkdir(filepath.Join(dir, "archive.csv"), 0o755)
	return dir
}

func TestDirSourceList(t *testing.T) {
	names, err := NewDirSource(testDir(t)).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"house", "tower"}) {
		t.Errorf("List() = %v, want [house tower]", names)
	}
}

func TestDirSourceLoad(t *testing.T) {
	ctx := context.Background()
	src := NewDirSource(testDir(t))

	b, err := src.Load(ctx, "house")
	if err != nil {
		t.Fatalf("Load(house) error: %v", err)
	}
	if b.Name != "house" || b.Len() != 2 || b.Steps[1].Color != "blue" {
		t.Errorf("Load(house) = %+v", b)
	}

	b, err = src.Load(ctx, "tower")
	if err != nil {
		t.Fatalf("Load(tower) error: %v", err)
	}
	if b.Name != "tower" || b.Len() != 1 {
		t.Errorf("Load(tower) = %+v", b)
	}
}

func TestDirSourceLoadErrors(t *testing.T) {
	ctx := context.Background()
	dir := testDir(t)
	writeFile(t, dir, "broken.csv", "0,0,zwei,4,red\n")
	src := NewDirSource(dir)

	tests := []struct {
		name string
		code errors.Code
	}{
		{"missing", errors.ErrCodeBlueprintNotFound},
		{"../etc/passwd", errors.ErrCodeInvalidBlueprint},
		{"broken", errors.ErrCodeInvalidBlueprint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := src.Load(ctx, tt.name); !errors.Is(err, tt.code) {
				t.Errorf("Load(%q) error = %v, want %s", tt.name, err, tt.code)
			}
		})
	}
}

func TestDirSourceSave(t *testing.T) {
	ctx := context.Background()
	src := NewDirSource(filepath.Join(t.TempDir(), "new"))
	b := &Blueprint{Name: "bridge", Steps: []brick.Placement{{X: 0, Y: 0, Width: 1, Height: 6, Color: "gray"}}}
	if err := src.Save(ctx, b); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := src.Load(ctx, "bridge")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 || got.Steps[0] != b.Steps[0] {
		t.Errorf("Load after Save = %+v", got)
	}
	if err := src.Save(ctx, &Blueprint{Name: "a/b"}); !errors.Is(err, errors.ErrCodeInvalidBlueprint) {
		t.Errorf("Save(a/b) error = %v", err)
	}
}

func TestDirSourceUnavailable(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "nope")).List(context.Background())
	if !errors.Is(err, errors.ErrCodeUnavailable) {
		t.Errorf("List() error = %v, want UNAVAILABLE", err)
	}
}

type countingSource struct {
	Source
	lists, loads int
}

func (s *countingSource) List(ctx context.Context) ([]string, error) {
	s.lists++
	return s.Source.List(ctx)
}

func (s *countingSource) Load(ctx context.Context, name string) (*Blueprint, error) {
	s.loads++
	return s.Source.Load(ctx, name)
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()
	inner := &countingSource{Source: NewDirSource(testDir(t))}
	src := NewCachedSource(inner, cache.NewMemoryCache(), nil, "dir", 0)

	for i := 0; i < 3; i++ {
		b, err := src.Load(ctx, "house")
		if err != nil || b.Len() != 2 {
			t.Fatalf("Load() = %v, %v", b, err)
		}
		names, err := src.List(ctx)
		if err != nil || len(names) != 2 {
			t.Fatalf("List() = %v, %v", names, err)
		}
	}
	if inner.loads != 1 || inner.lists != 1 {
		t.Errorf("inner called %d loads, %d lists; want 1 each", inner.loads, inner.lists)
	}

	if err := src.Invalidate(ctx, "house"); err != nil {
		t.Fatal(err)
	}
	src.Load(ctx, "house")
	src.List(ctx)
	if inner.loads != 2 || inner.lists != 2 {
		t.Errorf("after Invalidate: %d loads, %d lists; want 2 each", inner.loads, inner.lists)
	}

	if _, err := src.Load(ctx, "missing"); !errors.Is(err, errors.ErrCodeBlueprintNotFound) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestRandom(t *testing.T) {
	ctx := context.Background()
	src := NewDirSource(testDir(t))
	rng := rand.New(rand.NewPCG(1, 2))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		name, err := Random(ctx, src, rng)
		if err != nil {
			t.Fatal(err)
		}
		seen[name] = true
	}
	if !seen["house"] || !seen["tower"] || len(seen) != 2 {
		t.Errorf("Random() picked %v, want both blueprints", seen)
	}

	if _, err := Random(ctx, NewDirSource(t.TempDir()), nil); !errors.Is(err, errors.ErrCodeBlueprintNotFound) {
		t.Errorf("Random(empty) error = %v, want BLUEPRINT_NOT_FOUND", err)
	}
}

func TestBlueprintHelpers(t *testing.T) {
	b := &Blueprint{Name: "x", Steps: []brick.Placement{
		{X: 0, Y: 0, Width: 1, Height: 1, Color: "red"},
		{X: 1, Y: 0, Width: 1, Height: 1, Color: "red"},
	}}
	for step, want := range map[int]int{-1: 0, 0: 0, 1: 1, 2: 2, 9: 2} {
		if got := len(b.Prefix(step)); got != want {
			t.Errorf("Prefix(%d) has %d steps, want %d", step, got, want)
		}
	}
	other := &Blueprint{Name: "y", Steps: b.Steps}
	if b.Hash() != other.Hash() {
		t.Error("Hash() should ignore the name")
	}
	if err := b.Validate(brick.Grid{Width: 1, Height: 1}); !errors.Is(err, errors.ErrCodeInvalidBlueprint) {
		t.Errorf("Validate(1x1) error = %v", err)
	}
}
