package render

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// gradientTexture is 4x1: black, 85, 170, white.
func gradientTexture() *Texture {
	tex := NewTexture(4, 1)
	for x := range 4 {
		v := uint8(x * 85)
		tex.SetPixel(x, 0, RGB(v, v, v))
	}
	return tex
}

func TestTextureSampleNearest(t *testing.T) {
	tex := gradientTexture()

	tests := []struct {
		name string
		u    float64
		want uint8
	}{
		{"left edge", 0, 0},
		{"second texel", 0.3, 85},
		{"right edge", 0.99, 255},
		{"u = 1 stays in range", 1, 0}, // repeat wraps 1 to 0
		{"repeat", 1.3, 85},
		{"negative repeat", -0.4, 170},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tex.Sample(tc.u, 0.5).R; got != tc.want {
				t.Errorf("Sample(%v) = %d, want %d", tc.u, got, tc.want)
			}
		})
	}
}

func TestTextureSampleClamp(t *testing.T) {
	tex := gradientTexture()
	tex.WrapU = WrapClamp

	if got := tex.Sample(-3, 0.5).R; got != 0 {
		t.Errorf("clamped left = %d, want 0", got)
	}
	if got := tex.Sample(7, 0.5).R; got != 255 {
		t.Errorf("clamped right = %d, want 255", got)
	}
}

func TestTextureSampleFlipsV(t *testing.T) {
	tex := NewTexture(1, 2)
	tex.SetPixel(0, 0, ColorRed)  // top row
	tex.SetPixel(0, 1, ColorBlue) // bottom row

	if got := tex.Sample(0.5, 0.9); got != ColorRed {
		t.Errorf("v near 1 = %v, want top row", got)
	}
	if got := tex.Sample(0.5, 0.1); got != ColorBlue {
		t.Errorf("v near 0 = %v, want bottom row", got)
	}
}

func TestTextureSampleBilinear(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, RGB(0, 0, 0))
	tex.SetPixel(1, 0, RGB(200, 200, 200))
	tex.FilterMode = FilterBilinear
	tex.WrapU = WrapClamp

	tests := []struct {
		u    float64
		want uint8
	}{
		{0.25, 0},   // texel center
		{0.5, 100},  // halfway between centers
		{0.75, 200}, // texel center
	}
	for _, tc := range tests {
		if got := tex.Sample(tc.u, 0.5).R; got != tc.want {
			t.Errorf("Sample(%v) = %d, want %d", tc.u, got, tc.want)
		}
	}
}

func TestTextureSampleNormal(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		x, z float64
	}{
		{"flat", RGB(128, 128, 255), 0, 1},
		{"tilted toward +X", RGB(255, 128, 128), 1, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tex := NewTexture(1, 1)
			tex.SetPixel(0, 0, tc.c)
			n := tex.SampleNormal(0.5, 0.5)
			if math.Abs(n.X-tc.x) > 0.02 || math.Abs(n.Z-tc.z) > 0.02 {
				t.Errorf("SampleNormal = %v, want x=%v z=%v", n, tc.x, tc.z)
			}
			if math.Abs(n.Len()-1) > 1e-9 {
				t.Errorf("normal length = %v, want 1", n.Len())
			}
		})
	}
}

func TestTextureFromImage(t *testing.T) {
	nrgba := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	nrgba.SetNRGBA(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.SetGray(2, 1, color.Gray{Y: 90})

	tests := []struct {
		name string
		img  image.Image
		want Color
	}{
		{"nrgba fast path", nrgba, RGB(10, 20, 30)},
		{"generic path", gray, RGB(90, 90, 90)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tex := TextureFromImage(tc.img)
			if tex.Width != 3 || tex.Height != 2 {
				t.Fatalf("size = %dx%d, want 3x2", tex.Width, tex.Height)
			}
			if got := tex.GetPixel(2, 1); got != tc.want {
				t.Errorf("pixel = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMultiplyColor(t *testing.T) {
	tests := []struct {
		intensity float64
		want      Color
	}{
		{1, RGB(100, 200, 50)},
		{0.5, RGB(50, 100, 25)},
		{2, RGB(200, 255, 100)},
		{0, RGB(0, 0, 0)},
	}
	for _, tc := range tests {
		if got := MultiplyColor(RGB(100, 200, 50), tc.intensity); got != tc.want {
			t.Errorf("MultiplyColor(%v) = %v, want %v", tc.intensity, got, tc.want)
		}
	}
}

func BenchmarkTextureSampleBilinear(b *testing.B) {
	tex := NewTexture(256, 256)
	tex.FilterMode = FilterBilinear

	for b.Loop() {
		tex.Sample(0.37, 0.61)
	}
}
