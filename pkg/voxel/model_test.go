package voxel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
)

func mustAssign(t *testing.T, placements ...brick.Placement) *Model {
	t.Helper()
	m, err := Assign(brick.DefaultGrid, placements)
	if err != nil {
		t.Fatalf("Assign() error: %v", err)
	}
	return m
}

func TestAssignSingleBrick(t *testing.T) {
	m := mustAssign(t, brick.Placement{X: 1, Y: 1, Width: 2, Height: 1, Color: "red"})

	if m.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", m.Depth())
	}
	if got := m.Layers[0].OccupiedCount(); got != 2 {
		t.Errorf("layer 0 occupied = %d, want 2", got)
	}
	for _, pos := range [][2]int{{1, 1}, {1, 2}} {
		c := m.At(0, pos[0], pos[1])
		if c != Occupied("red") {
			t.Errorf("At(0, %d, %d) = %v, want occupied(red)", pos[0], pos[1], c)
		}
	}
	if got := m.Layers[1].OccupiedCount(); got != 0 {
		t.Errorf("trailing layer occupied = %d, want 0", got)
	}
	if got := m.Layers[1].Count(KindBuildable); got != 2 {
		t.Errorf("trailing layer buildable = %d, want 2", got)
	}
}

func TestAssignStackedIdenticalFootprints(t *testing.T) {
	m := mustAssign(t,
		brick.Placement{X: 0, Y: 0, Width: 4, Height: 4, Color: "red"},
		brick.Placement{X: 0, Y: 0, Width: 4, Height: 4, Color: "blue"},
	)

	if m.Depth() != 3 {
		t.Fatalf("Depth() = %d, want 3", m.Depth())
	}
	if m.Membership[0] != 0 || m.Membership[1] != 1 {
		t.Errorf("Membership = %v, want [0 1]", m.Membership)
	}
	if c := m.At(0, 2, 2); c != Occupied("red") {
		t.Errorf("layer 0 = %v, want occupied(red)", c)
	}
	if c := m.At(1, 2, 2); c != Occupied("blue") {
		t.Errorf("layer 1 = %v, want occupied(blue)", c)
	}
	if c := m.At(1, 5, 5); c != Unsupported() {
		t.Errorf("layer 1 outside footprint = %v, want unsupported", c)
	}
	if c := m.At(2, 0, 0); c != Buildable() {
		t.Errorf("layer 2 over blue = %v, want buildable", c)
	}
	if m.Conflicts() != 1 {
		t.Errorf("Conflicts() = %d, want 1", m.Conflicts())
	}
}

func TestAssignDisjointFootprints(t *testing.T) {
	m := mustAssign(t,
		brick.Placement{X: 0, Y: 0, Width: 2, Height: 2, Color: "red"},
		brick.Placement{X: 5, Y: 5, Width: 2, Height: 2, Color: "blue"},
	)

	if m.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", m.Depth())
	}
	if m.Membership[0] != 0 || m.Membership[1] != 0 {
		t.Errorf("Membership = %v, want [0 0]", m.Membership)
	}
	if got := m.Layers[0].OccupiedCount(); got != 8 {
		t.Errorf("layer 0 occupied = %d, want 8", got)
	}
}

func TestAssignEmpty(t *testing.T) {
	m := mustAssign(t)
	if m.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", m.Depth())
	}
	if got := m.Layers[0].Count(KindBuildable); got != 100 {
		t.Errorf("ground buildable = %d, want 100", got)
	}
	if got := m.Layers[1].Count(KindUnsupported); got != 100 {
		t.Errorf("trailing unsupported = %d, want 100", got)
	}
}

func TestAssignAcceptsUnsupportedCells(t *testing.T) {
	m := mustAssign(t,
		brick.Placement{X: 0, Y: 0, Width: 2, Height: 2, Color: "red"},
		brick.Placement{X: 0, Y: 0, Width: 2, Height: 2, Color: "blue"},
		// Lands on layer 1 over Unsupported cells; no collision, so no new layer.
		brick.Placement{X: 6, Y: 6, Width: 2, Height: 2, Color: "green"},
	)
	if m.Membership[2] != 1 {
		t.Errorf("floating brick layer = %d, want 1", m.Membership[2])
	}
	if m.Depth() != 3 {
		t.Errorf("Depth() = %d, want 3", m.Depth())
	}
}

func TestAssignRejectsOutOfBounds(t *testing.T) {
	_, err := Assign(brick.DefaultGrid, []brick.Placement{
		{X: 0, Y: 0, Width: 2, Height: 2, Color: "red"},
		{X: 9, Y: 0, Width: 2, Height: 2, Color: "red"},
	})
	if !errors.Is(err, errors.ErrCodeInvalidPlacement) {
		t.Fatalf("Assign() error = %v, want INVALID_PLACEMENT", err)
	}
}

func TestAssignRejectsOverflowingFootprints(t *testing.T) {
	for _, p := range []brick.Placement{
		{X: math.MaxInt, Y: 0, Width: 1, Height: 1, Color: "red"},
		{X: 5, Y: 5, Width: math.MaxInt, Height: 1, Color: "red"},
		{X: 5, Y: 5, Width: 1, Height: math.MaxInt, Color: "red"},
	} {
		if _, err := Assign(brick.DefaultGrid, []brick.Placement{p}); !errors.Is(err, errors.ErrCodeInvalidPlacement) {
			t.Errorf("Assign(%v) error = %v, want INVALID_PLACEMENT", p, err)
		}
	}
}

func TestDeriveOnlyPropagatesFromOccupied(t *testing.T) {
	ground := NewGroundLayer(brick.DefaultGrid)
	ground.Place(brick.Placement{X: 3, Y: 4, Width: 2, Height: 1, Color: "red"})

	next := ground.Derive()
	if got := next.Count(KindBuildable); got != 2 {
		t.Errorf("derived buildable = %d, want 2", got)
	}
	if c := next.At(4, 3); c != Buildable() {
		t.Errorf("At(4,3) = %v, want buildable", c)
	}
	if c := next.At(3, 4); c != Unsupported() {
		t.Errorf("At(3,4) = %v, want unsupported (row/column swapped)", c)
	}

	// Buildable cells of the previous layer do not carry support further up.
	if got := next.Derive().Count(KindBuildable); got != 0 {
		t.Errorf("second derivation buildable = %d, want 0", got)
	}
}

func TestLayerAtOffGrid(t *testing.T) {
	l := NewGroundLayer(brick.DefaultGrid)
	for _, pos := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if c := l.At(pos[0], pos[1]); c != Unsupported() {
			t.Errorf("At(%d,%d) = %v, want unsupported", pos[0], pos[1], c)
		}
	}
}

func randomPlacements(rng *rand.Rand, n int) []brick.Placement {
	colors := []string{"red", "blue", "green", "yellow"}
	out := make([]brick.Placement, n)
	for i := range out {
		w := 1 + rng.Intn(4)
		h := 1 + rng.Intn(4)
		out[i] = brick.Placement{
			X:      rng.Intn(brick.DefaultGrid.Width - w + 1),
			Y:      rng.Intn(brick.DefaultGrid.Height - h + 1),
			Width:  w,
			Height: h,
			Color:  colors[rng.Intn(len(colors))],
		}
	}
	return out
}

func TestAssignLayerCountInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		seq := randomPlacements(rng, rng.Intn(12))
		m, err := Assign(brick.DefaultGrid, seq)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if m.Depth() != 1+m.Conflicts()+1 {
			t.Fatalf("trial %d: Depth() = %d, conflicts = %d", trial, m.Depth(), m.Conflicts())
		}
		if got := m.Layers[m.Depth()-1].OccupiedCount(); got != 0 {
			t.Fatalf("trial %d: top layer has %d occupied cells", trial, got)
		}
		for i := 0; i+1 < m.Depth(); i++ {
			if m.Layers[i].OccupiedCount() == 0 && len(seq) > 0 {
				t.Fatalf("trial %d: non-trailing layer %d is empty", trial, i)
			}
		}
		for i, layer := range m.Membership {
			if i > 0 && layer < m.Membership[i-1] {
				t.Fatalf("trial %d: membership not monotonic: %v", trial, m.Membership)
			}
		}
	}
}

func TestAssignDisjointSequencesUseOneLayer(t *testing.T) {
	// Tile the grid in 2x2 blocks, shuffled; no two overlap.
	rng := rand.New(rand.NewSource(3))
	var seq []brick.Placement
	for y := 0; y < 10; y += 2 {
		for x := 0; x < 10; x += 2 {
			seq = append(seq, brick.Placement{X: x, Y: y, Width: 2, Height: 2, Color: "red"})
		}
	}
	rng.Shuffle(len(seq), func(i, j int) { seq[i], seq[j] = seq[j], seq[i] })

	m := mustAssign(t, seq...)
	if m.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", m.Depth())
	}
	if got := m.Layers[0].OccupiedCount(); got != 100 {
		t.Errorf("layer 0 occupied = %d, want 100", got)
	}
}

func TestAssignDoesNotAliasInput(t *testing.T) {
	seq := []brick.Placement{{X: 0, Y: 0, Width: 1, Height: 1, Color: "red"}}
	m := mustAssign(t, seq...)
	seq[0].Color = "blue"
	if m.Placements[0].Color != "red" {
		t.Error("model placements alias the caller's slice")
	}
}

func TestSupports(t *testing.T) {
	m := mustAssign(t,
		brick.Placement{X: 0, Y: 0, Width: 4, Height: 2, Color: "red"},
		brick.Placement{X: 4, Y: 0, Width: 4, Height: 2, Color: "blue"},
		brick.Placement{X: 2, Y: 0, Width: 4, Height: 2, Color: "green"},
		brick.Placement{X: 0, Y: 6, Width: 2, Height: 2, Color: "white"},
	)

	want := []Support{
		{Upper: 0, Lower: Ground},
		{Upper: 1, Lower: Ground},
		{Upper: 2, Lower: 0},
		{Upper: 2, Lower: 1},
	}
	got := m.Supports()
	if len(got) != len(want) {
		t.Fatalf("Supports() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Supports()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
