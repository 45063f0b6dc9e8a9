package brick

import (
	"image/color"
	"testing"
)

func TestPaletteResolve(t *testing.T) {
	var p Palette
	tests := []struct {
		token  string
		want   color.RGBA
		wantOK bool
	}{
		{"red", color.RGBA{255, 0, 0, 255}, true},
		{"Blue", color.RGBA{0, 0, 255, 255}, true},
		{" gray ", color.RGBA{128, 128, 128, 255}, true},
		{"#00ff00", color.RGBA{0, 255, 0, 255}, true},
		{"#f0a", color.RGBA{255, 0, 170, 255}, true},
		{"#12345", FallbackColor, false},
		{"#zzzzzz", FallbackColor, false},
		{"sparkly", FallbackColor, false},
		{"", FallbackColor, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := p.Resolve(tt.token)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Resolve(%q) = %v, %v; want %v, %v", tt.token, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPaletteOverride(t *testing.T) {
	brand := color.RGBA{200, 16, 46, 255}
	p := NewPalette(map[string]color.RGBA{"Red": brand})
	if got := p.Color("red"); got != brand {
		t.Errorf("Color(red) = %v, want override %v", got, brand)
	}
	if got := p.Color("blue"); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("Color(blue) = %v, want named color", got)
	}
}

func TestNilPalette(t *testing.T) {
	var p *Palette
	if got := p.Color("green"); got != (color.RGBA{0, 128, 0, 255}) {
		t.Errorf("nil palette Color(green) = %v", got)
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.RGBA{255, 0, 170, 255}); got != "#ff00aa" {
		t.Errorf("Hex() = %q, want #ff00aa", got)
	}
	if got := Hex(FallbackColor); got != "#646464" {
		t.Errorf("Hex(fallback) = %q, want #646464", got)
	}
}

func TestLEDColor(t *testing.T) {
	tests := map[string]color.RGBA{
		"red":    {255, 0, 0, 255},
		"PURPLE": {255, 0, 255, 255},
		"cyan":   {0, 255, 255, 255},
		"white":  {255, 255, 255, 255},
		"gray":   FallbackColor,
		"orange": FallbackColor,
	}
	for token, want := range tests {
		if got := LEDColor(token); got != want {
			t.Errorf("LEDColor(%q) = %v, want %v", token, got, want)
		}
	}
}

func TestPaletteFingerprint(t *testing.T) {
	red := color.RGBA{R: 200, A: 255}
	blue := color.RGBA{B: 200, A: 255}

	a := NewPalette(map[string]color.RGBA{"red": red, "blue": blue})
	b := &Palette{}
	b.Register(" BLUE ", blue)
	b.Register("red", red)
	if a.Fingerprint() == "" || a.Fingerprint() != b.Fingerprint() {
		t.Errorf("equal overrides: %q vs %q", a.Fingerprint(), b.Fingerprint())
	}

	b.Register("red", color.RGBA{R: 120, A: 255})
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("changed override kept the fingerprint")
	}

	var none *Palette
	if none.Fingerprint() != "" || NewPalette(nil).Fingerprint() != "" {
		t.Error("palette without overrides should have an empty fingerprint")
	}
}
