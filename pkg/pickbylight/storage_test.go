package pickbylight

import (
	"testing"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
)

func TestBinHolds(t *testing.T) {
	bin := Bin{Width: 2, Length: 4, Color: "Red"}
	tests := []struct {
		name string
		p    brick.Placement
		want bool
	}{
		{"same orientation", brick.Placement{Width: 2, Height: 4, Color: "red"}, true},
		{"rotated", brick.Placement{Width: 4, Height: 2, Color: "red"}, true},
		{"other color", brick.Placement{Width: 2, Height: 4, Color: "blue"}, false},
		{"other size", brick.Placement{Width: 2, Height: 2, Color: "red"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bin.Holds(tt.p); got != tt.want {
				t.Errorf("Holds(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestStorageAdd(t *testing.T) {
	s := NewStorage(16)
	tests := []struct {
		name string
		bin  Bin
		ok   bool
	}{
		{"valid", Bin{Location: 3, Width: 2, Length: 2, Color: "red"}, true},
		{"location too high", Bin{Location: 16, Width: 2, Length: 2, Color: "red"}, false},
		{"negative location", Bin{Location: -1, Width: 2, Length: 2, Color: "red"}, false},
		{"zero width", Bin{Location: 1, Width: 0, Length: 2, Color: "red"}, false},
		{"no color", Bin{Location: 1, Width: 2, Length: 2}, false},
		{"negative count", Bin{Location: 1, Width: 2, Length: 2, Color: "red", Count: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.bin)
			if tt.ok && err != nil {
				t.Errorf("Add: %v", err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Add error = %v, want INVALID_INPUT", err)
			}
		})
	}
	if n := len(s.Bins()); n != 1 {
		t.Errorf("got %d bins, want 1", n)
	}
}

func TestStorageReplaceAndOrder(t *testing.T) {
	s := NewStorage(8)
	s.Add(Bin{Location: 5, Width: 1, Length: 1, Color: "red"})
	s.Add(Bin{Location: 2, Width: 1, Length: 1, Color: "blue"})
	s.Add(Bin{Location: 5, Width: 2, Length: 2, Color: "green"})

	bins := s.Bins()
	if len(bins) != 2 {
		t.Fatalf("got %d bins, want 2", len(bins))
	}
	if bins[0].Location != 2 || bins[1].Location != 5 {
		t.Errorf("bins not ordered by location: %+v", bins)
	}
	if bins[1].Color != "green" {
		t.Errorf("bin 5 = %+v, want the replacement", bins[1])
	}

	s.Remove(2)
	if len(s.Bins()) != 1 {
		t.Error("Remove did not drop the bin")
	}
}

func TestStorageLocate(t *testing.T) {
	s := NewStorage(8)
	s.Add(Bin{Location: 1, Width: 2, Length: 2, Color: "red", Count: 0})
	s.Add(Bin{Location: 4, Width: 2, Length: 2, Color: "red", Count: 10})
	s.Add(Bin{Location: 6, Width: 2, Length: 2, Color: "blue", Count: 0})

	bin, ok := s.Locate(brick.Placement{Width: 2, Height: 2, Color: "red"})
	if !ok || bin.Location != 4 {
		t.Errorf("Locate(red) = %+v, %v; want the stocked bin 4", bin, ok)
	}

	bin, ok = s.Locate(brick.Placement{Width: 2, Height: 2, Color: "blue"})
	if !ok || bin.Location != 6 {
		t.Errorf("Locate(blue) = %+v, %v; want empty bin 6 as fallback", bin, ok)
	}

	if _, ok := s.Locate(brick.Placement{Width: 1, Height: 1, Color: "red"}); ok {
		t.Error("Locate found a bin for an unstored size")
	}
}
