package brick

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/colornames"
)

// FallbackColor is used for any token the palette cannot resolve.
var FallbackColor = color.RGBA{R: 100, G: 100, B: 100, A: 255}

// Palette resolves color tokens to RGBA values. The zero value is usable and
// knows the CSS/X11 names plus hex notation.
type Palette struct {
	mu        sync.RWMutex
	overrides map[string]color.RGBA
}

// NewPalette returns a palette with the given overrides registered.
func NewPalette(overrides map[string]color.RGBA) *Palette {
	p := &Palette{}
	for token, c := range overrides {
		p.Register(token, c)
	}
	return p
}

// Register makes token resolve to c, taking precedence over named colors.
func (p *Palette) Register(token string, c color.RGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.overrides == nil {
		p.overrides = make(map[string]color.RGBA)
	}
	p.overrides[normalizeToken(token)] = c
}

// Resolve returns the color for token and whether it was recognized.
// Unrecognized tokens return FallbackColor.
func (p *Palette) Resolve(token string) (color.RGBA, bool) {
	key := normalizeToken(token)
	if p != nil {
		p.mu.RLock()
		c, ok := p.overrides[key]
		p.mu.RUnlock()
		if ok {
			return c, true
		}
	}
	if c, ok := colornames.Map[key]; ok {
		return c, true
	}
	if c, ok := parseHex(key); ok {
		return c, true
	}
	return FallbackColor, false
}

// Fingerprint identifies the palette's overrides: equal override sets give
// equal fingerprints regardless of registration order. A palette without
// overrides, or a nil one, has the empty fingerprint.
func (p *Palette) Fingerprint() string {
	if p == nil {
		return ""
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.overrides) == 0 {
		return ""
	}
	tokens := make([]string, 0, len(p.overrides))
	for token := range p.overrides {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)
	h := sha256.New()
	for _, token := range tokens {
		c := p.overrides[token]
		fmt.Fprintf(h, "%s=%02x%02x%02x%02x\n", token, c.R, c.G, c.B, c.A)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Color is Resolve without the recognition flag.
func (p *Palette) Color(token string) color.RGBA {
	c, _ := p.Resolve(token)
	return c
}

func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

func parseHex(s string) (color.RGBA, bool) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	s = s[1:]
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}

// ledColors is the pick-by-light table. LED strips only distinguish a handful
// of hues, so blueprint tokens map onto these.
var ledColors = map[string]color.RGBA{
	"red":    {R: 255, A: 255},
	"green":  {G: 255, A: 255},
	"blue":   {B: 255, A: 255},
	"yellow": {R: 255, G: 255, A: 255},
	"purple": {R: 255, B: 255, A: 255},
	"cyan":   {G: 255, B: 255, A: 255},
	"white":  {R: 255, G: 255, B: 255, A: 255},
}

// LEDColor returns the strip color for a token, or FallbackColor.
func LEDColor(token string) color.RGBA {
	if c, ok := ledColors[normalizeToken(token)]; ok {
		return c
	}
	return FallbackColor
}
