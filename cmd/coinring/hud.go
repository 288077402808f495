package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
)

var (
	hudBg    = color.RGBA{0, 0, 0, 255}
	hudText  = color.RGBA{230, 230, 230, 255}
	hudFPS   = color.RGBA{80, 220, 120, 255}
	hudPolys = color.RGBA{90, 200, 230, 255}
	hudOn    = color.RGBA{240, 220, 90, 255}
	hudOff   = color.RGBA{120, 120, 120, 255}
)

// HUD shows the frame rate, the coin name and the toggle states over the
// top and bottom rows.
type HUD struct {
	title     string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(title string, polyCount int) *HUD {
	return &HUD{title: title, polyCount: polyCount, fpsTime: time.Now()}
}

// Tick counts a frame; the rate is refreshed once a second.
func (h *HUD) Tick() {
	h.fpsFrames++
	if elapsed := time.Since(h.fpsTime); elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, toggles []toggle) {
	top, bottom := area.Min.Y, area.Max.Y-1
	width := area.Max.X - area.Min.X

	fps := fmt.Sprintf(" %.0f FPS ", h.fps)
	writeText(scr, area.Min.X, top, fps, hudFPS)
	title := " " + h.title + " "
	writeText(scr, area.Min.X+max((width-len(title))/2, len(fps)), top, title, hudText)
	polys := fmt.Sprintf(" %d polys ", h.polyCount)
	writeText(scr, area.Max.X-len(polys), top, polys, hudPolys)

	if bottom <= top {
		return
	}
	x := area.Min.X
	for _, t := range toggles {
		box, fg := "[ ]", hudOff
		if t.on {
			box, fg = "[✓]", hudOn
		}
		x = writeText(scr, x, bottom, fmt.Sprintf(" %s %s %s", box, t.key, t.name), fg)
	}
	writeText(scr, x, bottom, "  ? hide  esc quit ", hudOff)
}

// writeText puts s on one row starting at x and returns the column after
// it. Every rune takes one cell.
func writeText(scr uv.Screen, x, y int, s string, fg color.Color) int {
	for _, r := range s {
		scr.SetCell(x, y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: fg, Bg: hudBg},
		})
		x++
	}
	return x
}
