package pickbylight

import (
	"slices"
	"strings"
	"sync"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
)

// Bin is one storage compartment under an LED.
type Bin struct {
	Location int    `toml:"location" json:"location"`
	Width    int    `toml:"width" json:"width"`
	Length   int    `toml:"length" json:"length"`
	Color    string `toml:"color" json:"color"`
	Count    int    `toml:"count" json:"count"`
}

// Holds reports whether the bin stores bricks for p: same color and the
// same footprint, rotated or not.
func (b Bin) Holds(p brick.Placement) bool {
	if !strings.EqualFold(strings.TrimSpace(b.Color), strings.TrimSpace(p.Color)) {
		return false
	}
	return (b.Width == p.Width && b.Length == p.Height) ||
		(b.Width == p.Height && b.Length == p.Width)
}

// Storage is the set of bins on one shelf, keyed by location.
type Storage struct {
	mu        sync.RWMutex
	locations int
	bins      map[int]Bin
}

// NewStorage returns an empty shelf with LED positions [0, locations).
func NewStorage(locations int) *Storage {
	return &Storage{locations: locations, bins: make(map[int]Bin)}
}

// Add registers b, replacing any bin at the same location.
func (s *Storage) Add(b Bin) error {
	if b.Location < 0 || b.Location >= s.locations {
		return errors.New(errors.ErrCodeInvalidInput, "location %d out of range [0, %d)", b.Location, s.locations)
	}
	if b.Width <= 0 || b.Length <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "bin size must be positive, got %dx%d", b.Width, b.Length)
	}
	if strings.TrimSpace(b.Color) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "bin color is required")
	}
	if b.Count < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "count must not be negative, got %d", b.Count)
	}
	s.mu.Lock()
	s.bins[b.Location] = b
	s.mu.Unlock()
	return nil
}

// Remove drops the bin at location, if any.
func (s *Storage) Remove(location int) {
	s.mu.Lock()
	delete(s.bins, location)
	s.mu.Unlock()
}

// Bins returns every bin ordered by location.
func (s *Storage) Bins() []Bin {
	s.mu.RLock()
	out := make([]Bin, 0, len(s.bins))
	for _, b := range s.bins {
		out = append(out, b)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Bin) int { return a.Location - b.Location })
	return out
}

// Locate returns the lowest-location bin holding p. Bins with stock are
// preferred over empty ones.
func (s *Storage) Locate(p brick.Placement) (Bin, bool) {
	var empty *Bin
	for _, b := range s.Bins() {
		if !b.Holds(p) {
			continue
		}
		if b.Count > 0 {
			return b, true
		}
		if empty == nil {
			empty = &b
		}
	}
	if empty != nil {
		return *empty, true
	}
	return Bin{}, false
}

// Locations returns the number of LED positions.
func (s *Storage) Locations() int { return s.locations }
