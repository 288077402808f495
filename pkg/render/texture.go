package render

import (
	"image"
	"math"

	"github.com/taigrr/coinring/pkg/math3d"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterBilinear
)

// Texture holds a 2D image for texture mapping. UV (0, 0) is the
// bottom-left corner of the image.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color // row-major, top row first
	WrapU      WrapMode
	WrapV      WrapMode
	FilterMode FilterMode
}

// NewTexture creates a transparent texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// TextureFromImage copies img into a new texture. Non-premultiplied RGBA
// images, which is what the remapper produces, are copied directly.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	tex := NewTexture(b.Dx(), b.Dy())

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := range tex.Height {
			row := nrgba.Pix[nrgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := range tex.Width {
				p := row[x*4 : x*4+4 : x*4+4]
				tex.Pixels[y*tex.Width+x] = Color{R: p[0], G: p[1], B: p[2], A: p[3]}
			}
		}
		return tex
	}

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			tex.Pixels[y*tex.Width+x] = Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: uint8(a >> 8)}
		}
	}
	return tex
}

func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y), or transparent black outside.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample looks up the texture at (u, v) with its wrap and filter modes.
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	u = wrapCoord(u, t.WrapU)
	v = 1 - wrapCoord(v, t.WrapV)

	if t.FilterMode == FilterBilinear {
		return t.sampleBilinear(u, v)
	}
	return t.sampleNearest(u, v)
}

// SampleNormal decodes a tangent-space normal from a normal map, mapping
// each channel from [0, 255] to [-1, 1].
func (t *Texture) SampleNormal(u, v float64) math3d.Vec3 {
	c := t.Sample(u, v)
	n := math3d.V3(
		float64(c.R)/127.5-1,
		float64(c.G)/127.5-1,
		float64(c.B)/127.5-1,
	).Normalize()
	if n == (math3d.Vec3{}) {
		return math3d.V3(0, 0, 1)
	}
	return n
}

func wrapCoord(c float64, mode WrapMode) float64 {
	if mode == WrapClamp {
		return math.Max(0, math.Min(1, c))
	}
	return c - math.Floor(c)
}

func (t *Texture) sampleNearest(u, v float64) Color {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.Pixels[y*t.Width+x]
}

func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	x1 := wrapIndex(x0+1, t.Width, t.WrapU)
	y1 := wrapIndex(y0+1, t.Height, t.WrapV)
	x0 = wrapIndex(x0, t.Width, t.WrapU)
	y0 = wrapIndex(y0, t.Height, t.WrapV)

	top := lerpColor(t.Pixels[y0*t.Width+x0], t.Pixels[y0*t.Width+x1], tx)
	bot := lerpColor(t.Pixels[y1*t.Width+x0], t.Pixels[y1*t.Width+x1], tx)
	return lerpColor(top, bot, ty)
}

func wrapIndex(i, size int, mode WrapMode) int {
	if mode == WrapClamp {
		return max(0, min(size-1, i))
	}
	i %= size
	if i < 0 {
		i += size
	}
	return i
}

func lerpColor(a, b Color, t float64) Color {
	l := func(x, y uint8) uint8 {
		return toByte(float64(x) + (float64(y)-float64(x))*t)
	}
	return Color{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}

// MultiplyColor scales RGB by intensity, saturating at 255.
func MultiplyColor(c Color, intensity float64) Color {
	s := func(x uint8) uint8 {
		return toByte(float64(x) * intensity)
	}
	return Color{R: s(c.R), G: s(c.G), B: s(c.B), A: c.A}
}

// toByte rounds v to the nearest channel value.
func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
