package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// exercise runs the common contract against a cache implementation.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "blueprint:dir:house", []byte(`{"name":"house"}`), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "blueprint:dir:house")
	if err != nil || !hit || string(data) != `{"name":"house"}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Set(ctx, "blueprint:dir:house", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	if data, _, _ := c.Get(ctx, "blueprint:dir:house"); string(data) != "v2" {
		t.Errorf("after overwrite Get = %q, want v2", data)
	}
	if err := c.Delete(ctx, "blueprint:dir:house"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "blueprint:dir:house"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	exercise(t, NewMemoryCache())
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry missed")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want expired entry dropped", c.Len())
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	buf := []byte("abc")
	c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	got[1] = 'y'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed to %q", again)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, c)
}

func TestFileCacheExpiryAndPrune(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	c.Set(ctx, "stale", []byte("old"), time.Nanosecond)
	c.Set(ctx, "fresh", []byte("new"), time.Hour)
	time.Sleep(5 * time.Millisecond)

	corrupt := filepath.Join(dir, "ab", "corrupt.json")
	os.MkdirAll(filepath.Dir(corrupt), 0o755)
	os.WriteFile(corrupt, []byte("{not json"), 0o644)

	removed, err := c.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune removed %d, want 2", removed)
	}
	if _, hit, _ := c.Get(ctx, "fresh"); !hit {
		t.Error("fresh entry pruned")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), time.Hour)

	removed, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if removed != 2 {
		t.Errorf("Clear removed %d, want 2", removed)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Clear left %d directories behind", len(entries))
	}
}

func TestFileCacheLayout(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	c.Set(context.Background(), "k", []byte("v"), 0)

	h := Hash([]byte("k"))
	if _, err := os.Stat(filepath.Join(dir, h[:2], h[2:]+".json")); err != nil {
		t.Errorf("entry not at hashed path: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, h[:2]))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.BlueprintKey("dir", "house"); got != "blueprint:dir:house" {
		t.Errorf("BlueprintKey = %s", got)
	}
	if got := k.ListKey("mongo"); got != "blueprints:mongo" {
		t.Errorf("ListKey = %s", got)
	}

	a1 := k.ArtifactKey("abc", ArtifactKeyOpts{Kind: "front", Format: "png", Scale: 40})
	a2 := k.ArtifactKey("abc", ArtifactKeyOpts{Kind: "front", Format: "svg", Scale: 40})
	if a1 == a2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(a1, "artifact:") {
		t.Errorf("ArtifactKey = %s", a1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "shop-a:")
	if got := scoped.BlueprintKey("dir", "house"); got != "shop-a:blueprint:dir:house" {
		t.Errorf("BlueprintKey = %s", got)
	}
	if got := scoped.ListKey("dir"); got != "shop-a:blueprints:dir" {
		t.Errorf("ListKey = %s", got)
	}
	if got := scoped.ArtifactKey("abc", ArtifactKeyOpts{}); !strings.HasPrefix(got, "shop-a:artifact:") {
		t.Errorf("ArtifactKey = %s", got)
	}
}
