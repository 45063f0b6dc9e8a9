package voxel

import "testing"

func TestCellString(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{Unsupported(), "unsupported"},
		{Buildable(), "buildable"},
		{Occupied("red"), "occupied(red)"},
		{Cell{Kind: Kind(9)}, "Kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.cell.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestZeroCellIsUnsupported(t *testing.T) {
	var c Cell
	if c != Unsupported() {
		t.Errorf("zero Cell = %v, want unsupported", c)
	}
}
