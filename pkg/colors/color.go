// Package colors provides the 8-bit RGBA colour used by every batch, the
// named colours of the demos and the palette ramps used to map scalar patch
// values to colour.
package colors

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Color is a non-premultiplied 8-bit RGBA colour. The zero value is
// transparent black; use White for the batch default.
type Color struct {
	R, G, B, A uint8
}

// Named colours.
var (
	White     = Color{255, 255, 255, 255}
	OffWhite  = Color{230, 230, 230, 255}
	LightGray = Color{170, 170, 170, 255}
	Red       = Color{230, 30, 30, 255}
	Orange    = Color{240, 140, 0, 255}
	Yellow    = Color{240, 220, 0, 255}
	Green     = Color{30, 230, 30, 255}
	Blue      = Color{30, 30, 200, 255}
	Purple    = Color{170, 20, 170, 255}
	Black     = Color{0, 0, 0, 255}
)

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// Hex parses "RRGGBBAA", "RRGGBB", "#RRGGBBAA" or "#RRGGBB". Six-digit forms
// are opaque.
func Hex(s string) (Color, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 && len(digits) != 8 {
		return Color{}, fmt.Errorf("parse color %q: want 6 or 8 hex digits", s)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	c := Color{b[0], b[1], b[2], 255}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// MustHex is like Hex but panics on malformed input. It is meant for
// package-level tables.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the colour as "RRGGBBAA".
func (c Color) String() string {
	return fmt.Sprintf("%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// MarshalText implements encoding.TextMarshaler, so colours read and write
// as hex strings in config files and flags.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Hex.
func (c *Color) UnmarshalText(text []byte) error {
	v, err := Hex(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

// Std converts to the image/color type the framebuffer stores.
func (c Color) Std() color.RGBA {
	return color.RGBA(c)
}

// FromStd converts any color.Color, un-premultiplying alpha.
func FromStd(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color(n)
}

// Normalized returns the components scaled to [0,1], matching how the GPU
// reads normalized unsigned-byte attributes.
func (c Color) Normalized() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// Lerp blends a towards b by t per channel, rounding to the nearest byte.
func Lerp(a, b Color, t float64) Color {
	return Color{
		lerp8(a.R, b.R, t),
		lerp8(a.G, b.G, t),
		lerp8(a.B, b.B, t),
		lerp8(a.A, b.A, t),
	}
}

// Scale multiplies the RGB channels by k, leaving alpha alone.
func (c Color) Scale(k float64) Color {
	return Color{scale8(c.R, k), scale8(c.G, k), scale8(c.B, k), c.A}
}

func lerp8(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func scale8(a uint8, k float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, float64(a)*k))))
}
