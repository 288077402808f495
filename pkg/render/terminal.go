package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the framebuffer into area as half-block cells: the upper
// half shows the even pixel row in the foreground, the lower half the odd
// row in the background. Transparent pixels leave the terminal default.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= fb.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, topY)),
					Bg: cellColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

func cellColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is the pixel type of framebuffers and textures.
type Color = color.RGBA

var (
	ColorBlack      = RGB(0, 0, 0)
	ColorWhite      = RGB(255, 255, 255)
	ColorRed        = RGB(255, 0, 0)
	ColorGreen      = RGB(0, 255, 0)
	ColorBlue       = RGB(0, 0, 255)
	ColorGray       = RGB(128, 128, 128)
	ColorBackground = RGB(51, 51, 76) // clear color of the viewer
)

func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

func RGBA(r, g, b, a uint8) Color {
	return Color{r, g, b, a}
}
