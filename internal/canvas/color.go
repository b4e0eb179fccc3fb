package canvas

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color with straight (non-premultiplied) alpha.
type Color struct {
	colorful.Color
	A float64
}

// Transparent is fully transparent black.
var Transparent = Color{}

// Hex parses "#rgb", "#rrggbb" or "#rrggbbaa".
func Hex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	alpha := 1.0
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("parse alpha in %q: %w", s, err)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{Color: c, A: alpha}, nil
}

// MustHex is Hex for literals known to be valid.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

// Fade multiplies c's alpha by f.
func (c Color) Fade(f float64) Color {
	c.A = clamp01(c.A * f)
	return c
}

// NRGBA converts to the standard library's non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	cl := c.Clamped()
	return color.NRGBA{
		R: uint8(math.Round(cl.R * 255)),
		G: uint8(math.Round(cl.G * 255)),
		B: uint8(math.Round(cl.B * 255)),
		A: uint8(math.Round(clamp01(c.A) * 255)),
	}
}

// Lerp blends two colors in RGB space, alpha included.
func Lerp(a, b Color, t float64) Color {
	t = clamp01(t)
	return Color{
		Color: a.Color.BlendRgb(b.Color, t),
		A:     a.A + (b.A-a.A)*t,
	}
}

// Stop is one entry in a gradient's ordered color ramp.
type Stop struct {
	Offset float64
	Color  Color
}

// ColorAt samples a ramp at t in [0,1]. Stops must be sorted by offset.
func ColorAt(stops []Stop, t float64) Color {
	switch len(stops) {
	case 0:
		return Transparent
	case 1:
		return stops[0].Color
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(stops); i++ {
		hi := stops[i]
		if t > hi.Offset {
			continue
		}
		lo := stops[i-1]
		span := hi.Offset - lo.Offset
		if span <= 0 {
			return hi.Color
		}
		return Lerp(lo.Color, hi.Color, (t-lo.Offset)/span)
	}
	return last.Color
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
