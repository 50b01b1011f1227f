// Package render is a software reference renderer for primitive batches.
// It draws the same impostor, triangle and tessellated-patch geometry the
// GPU path draws, into a CPU framebuffer that can be saved as PNG or shown
// in a terminal with half-block cells.
package render

import (
	"image"
	"image/png"
	"os"

	"github.com/taigrr/glprim/pkg/colors"
)

// Framebuffer is a row-major colour buffer with a matching depth buffer.
// For terminal output the height is twice the number of rows.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []colors.Color
	Depth  []float64
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the buffers when the size changes.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == fb.Width && height == fb.Height && fb.Pixels != nil {
		return
	}
	fb.Width, fb.Height = width, height
	fb.Pixels = make([]colors.Color, width*height)
	fb.Depth = make([]float64, width*height)
	fb.ClearDepth()
}

// Clear fills the colour buffer with c and resets depth.
func (fb *Framebuffer) Clear(c colors.Color) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
	fb.ClearDepth()
}

// ClearDepth resets every depth sample to the far plane.
func (fb *Framebuffer) ClearDepth() {
	n := len(fb.Depth)
	if n == 0 {
		return
	}
	fb.Depth[0] = 1
	for i := 1; i < n; i *= 2 {
		copy(fb.Depth[i:], fb.Depth[:i])
	}
}

func (fb *Framebuffer) inside(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// SetPixel sets a pixel; out-of-bounds writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c colors.Color) {
	if fb.inside(x, y) {
		fb.Pixels[y*fb.Width+x] = c
	}
}

// GetPixel returns the colour at (x, y), or transparent black outside.
func (fb *Framebuffer) GetPixel(x, y int) colors.Color {
	if !fb.inside(x, y) {
		return colors.Color{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DepthAt returns the window depth at (x, y), 1 outside.
func (fb *Framebuffer) DepthAt(x, y int) float64 {
	if !fb.inside(x, y) {
		return 1
	}
	return fb.Depth[y*fb.Width+x]
}

// plot writes c at (x, y) if z passes the depth test. alpha < 1 blends over
// the current colour.
func (fb *Framebuffer) plot(x, y int, z float64, c colors.Color, alpha float64) bool {
	if !fb.inside(x, y) || z < 0 || z > 1 {
		return false
	}
	i := y*fb.Width + x
	if z >= fb.Depth[i] {
		return false
	}
	if alpha < 1 {
		c = colors.Lerp(fb.Pixels[i], c, alpha)
	}
	fb.Pixels[i] = c
	fb.Depth[i] = z
	return true
}

// ToImage converts the framebuffer to an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x].Std())
		}
	}
	return img
}

// SavePNG writes the framebuffer to path.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
