package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/glprim/pkg/colors"
)

// Draw paints the framebuffer onto a terminal screen, two pixel rows per
// cell: the upper half block takes the top pixel as foreground and the
// bottom pixel as background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		top := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, top)),
					Bg: cellColor(fb.GetPixel(x, top+1)),
				},
			})
		}
	}
}

// cellColor maps a pixel to a terminal colour; transparent pixels keep the
// terminal default.
func cellColor(c colors.Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c.Std()
}
