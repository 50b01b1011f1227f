package colors

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// MaxPosterize is the largest posterization level the demos expose.
const MaxPosterize = 16

// Palette is an ordered colour ramp. Entries are piecewise-linear
// interpolation stops for a normalized scalar in [0,1].
type Palette []Color

// Normalize returns a palette with at least two entries. A single colour is
// repeated, an empty palette becomes solid white.
func (p Palette) Normalize() Palette {
	switch len(p) {
	case 0:
		return Palette{White, White}
	case 1:
		return Palette{p[0], p[0]}
	}
	out := make(Palette, len(p))
	copy(out, p)
	return out
}

// Normalized maps v into [0,1] against [lo, hi]. A degenerate range, a NaN
// value or bounds that leave the ratio undefined map to 0.
func Normalized(v, lo, hi float64) float64 {
	if hi == lo || math.IsNaN(v) {
		return 0
	}
	t := (v - lo) / (hi - lo)
	if math.IsNaN(t) {
		return 0
	}
	return math.Max(0, math.Min(1, t))
}

// Posterize quantizes t to levels steps. levels <= 0 leaves t unchanged.
func Posterize(t float64, levels int) float64 {
	if levels <= 0 {
		return t
	}
	l := float64(levels)
	return math.Round(t*l) / l
}

// At returns the colour at normalized position t, blending the two
// bracketing entries by the fractional remainder. t is clamped to [0,1] and
// NaN reads as 0.
func (p Palette) At(t float64) Color {
	if len(p) < 2 {
		p = p.Normalize()
	}
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))
	s := t * float64(len(p)-1)
	i := int(math.Floor(s))
	if i >= len(p)-1 {
		return p[len(p)-1]
	}
	return Lerp(p[i], p[i+1], s-float64(i))
}

// Map resolves a scalar value to a colour: normalize against [lo, hi],
// posterize when levels > 0, then look up the ramp.
func (p Palette) Map(v, lo, hi float64, levels int) Color {
	return p.At(Posterize(Normalized(v, lo, hi), levels))
}

// Texels samples the ramp at n texel centres, (i+0.5)/n. The result is the
// content of the 1-D lookup texture bound when drawing palette patches.
func (p Palette) Texels(n int) []Color {
	if n <= 0 {
		return nil
	}
	out := make([]Color, n)
	for i := range out {
		out[i] = p.At(TexelCenter(i, n))
	}
	return out
}

// TexelCenter returns the normalized coordinate of texel i out of n.
func TexelCenter(i, n int) float64 {
	return (float64(i) + 0.5) / float64(n)
}

// LabRamp builds an n-entry palette by blending stops in CIE-L*a*b*, which
// keeps perceived lightness even along the ramp.
func LabRamp(stops []Color, n int) Palette {
	stops = Palette(stops).Normalize()
	if n < 2 {
		n = 2
	}
	lab := make([]colorful.Color, len(stops))
	for i, s := range stops {
		lab[i], _ = colorful.MakeColor(Color{s.R, s.G, s.B, 255})
	}

	out := make(Palette, n)
	for i := range out {
		t := float64(i) / float64(n-1)
		s := t * float64(len(lab)-1)
		j := int(math.Floor(s))
		if j >= len(lab)-1 {
			j = len(lab) - 2
		}
		c := lab[j].BlendLab(lab[j+1], s-float64(j)).Clamped()
		r, g, b := c.RGB255()
		a := lerp8(stops[j].A, stops[j+1].A, s-float64(j))
		out[i] = Color{r, g, b, a}
	}
	return out
}
