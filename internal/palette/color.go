// Package palette computes per-instance sword colors from the active gesture mode.
package palette

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is a color with channels in [0,1] (sRGB).
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// HSL is hue, saturation, lightness, each in [0,1].
type HSL struct {
	H, S, L float64
}

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("palette: bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("palette: bad color %q: %w", s, err)
	}
	return RGB{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}

// RGBA8 returns 8-bit channels with full alpha.
func (c RGB) RGBA8() (r, g, b, a uint8) {
	return to8(c.R), to8(c.G), to8(c.B), 255
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

// ToHSL converts an sRGB color to HSL.
func (c RGB) ToHSL() HSL {
	maxC := math.Max(c.R, math.Max(c.G, c.B))
	minC := math.Min(c.R, math.Min(c.G, c.B))
	l := (minC + maxC) / 2

	if minC == maxC {
		return HSL{0, 0, l}
	}

	delta := maxC - minC
	var s, h float64
	if l <= 0.5 {
		s = delta / (maxC + minC)
	} else {
		s = delta / (2 - maxC - minC)
	}
	switch maxC {
	case c.R:
		h = (c.G - c.B) / delta
		if c.G < c.B {
			h += 6
		}
	case c.G:
		h = (c.B-c.R)/delta + 2
	default:
		h = (c.R-c.G)/delta + 4
	}
	return HSL{h / 6, s, l}
}

// FromHSL converts HSL to sRGB. Hue wraps into [0,1); s and l are clamped.
func FromHSL(hsl HSL) RGB {
	h := wrap01(hsl.H)
	s := clamp01(hsl.S)
	l := clamp01(hsl.L)

	if s == 0 {
		return RGB{l, l, l}
	}
	var p float64
	if l <= 0.5 {
		p = l * (1 + s)
	} else {
		p = l + s - l*s
	}
	q := 2*l - p
	return RGB{
		R: hueToRGB(q, p, h+1.0/3),
		G: hueToRGB(q, p, h),
		B: hueToRGB(q, p, h-1.0/3),
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}

func wrap01(v float64) float64 {
	v = math.Mod(v, 1)
	if v < 0 {
		v++
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
