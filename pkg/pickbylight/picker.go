package pickbylight

import (
	"context"

	"github.com/assys/brickguide/pkg/brick"
)

// Picker lights the bin for each placement the guide shows.
type Picker struct {
	Storage  *Storage
	Signaler Signaler
}

// NewPicker returns a picker; a nil signaler is a NoopSignaler.
func NewPicker(storage *Storage, sig Signaler) *Picker {
	if sig == nil {
		sig = NoopSignaler{}
	}
	return &Picker{Storage: storage, Signaler: sig}
}

// Pick lights the bin holding p in the brick's LED color. Without a
// matching bin the strip is cleared and found is false.
func (p *Picker) Pick(ctx context.Context, placement brick.Placement) (bin Bin, found bool, err error) {
	bin, found = p.Storage.Locate(placement)
	if !found {
		return Bin{}, false, p.Signaler.Clear(ctx)
	}
	return bin, true, p.Signaler.Highlight(ctx, bin.Location, brick.LEDColor(placement.Color))
}

// Clear turns the strip off, e.g. when the control views are shown.
func (p *Picker) Clear(ctx context.Context) error {
	return p.Signaler.Clear(ctx)
}
