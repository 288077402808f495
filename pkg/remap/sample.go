package remap

import (
	"fmt"
	"math"
	"strings"
)

// FilterMode selects how the source is sampled.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // single closest texel, the default
	FilterBilinear                   // 2x2 weighted blend
)

// EdgeMode decides what a sample outside the source returns.
type EdgeMode int

const (
	EdgeClamp       EdgeMode = iota // nearest edge texel
	EdgeTransparent                 // transparent black
)

func (f FilterMode) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterBilinear:
		return "bilinear"
	}
	return fmt.Sprintf("FilterMode(%d)", int(f))
}

func (e EdgeMode) String() string {
	switch e {
	case EdgeClamp:
		return "clamp"
	case EdgeTransparent:
		return "transparent"
	}
	return fmt.Sprintf("EdgeMode(%d)", int(e))
}

// ParseFilter parses "nearest" or "bilinear".
func ParseFilter(s string) (FilterMode, error) {
	switch strings.ToLower(s) {
	case "nearest", "":
		return FilterNearest, nil
	case "bilinear", "linear":
		return FilterBilinear, nil
	}
	return 0, &InvalidConfigurationError{Field: "filter", Value: s, Reason: "want nearest or bilinear"}
}

// ParseEdge parses "clamp" or "transparent".
func ParseEdge(s string) (EdgeMode, error) {
	switch strings.ToLower(s) {
	case "clamp", "":
		return EdgeClamp, nil
	case "transparent", "black":
		return EdgeTransparent, nil
	}
	return 0, &InvalidConfigurationError{Field: "edge", Value: s, Reason: "want clamp or transparent"}
}

// texel resolves a (possibly out of range) integer-valued float coordinate
// pair to a pixel using the edge policy. NaN counts as out of range.
func (p *PixelBuffer) texel(fx, fy float64, edge EdgeMode) Pixel {
	inX := fx >= 0 && fx < float64(p.Width)
	inY := fy >= 0 && fy < float64(p.Height)
	if inX && inY {
		return p.At(int(fx), int(fy))
	}
	if edge == EdgeTransparent {
		return Pixel{}
	}
	return p.At(clampIndex(fx, p.Width), clampIndex(fy, p.Height))
}

func clampIndex(f float64, size int) int {
	switch {
	case !(f >= 0): // also catches NaN
		return 0
	case f >= float64(size):
		return size - 1
	}
	return int(f)
}

// sampleNearest reads the texel at (floor(u*W), floor(v*H)).
func (p *PixelBuffer) sampleNearest(u, v float64, edge EdgeMode) Pixel {
	return p.texel(math.Floor(u*float64(p.Width)), math.Floor(v*float64(p.Height)), edge)
}

// sampleBilinear blends the four texels around (u*W-0.5, v*H-0.5).
func (p *PixelBuffer) sampleBilinear(u, v float64, edge EdgeMode) Pixel {
	fx := u*float64(p.Width) - 0.5
	fy := v*float64(p.Height) - 0.5
	if !finite(fx) || !finite(fy) {
		return p.texel(fx, fy, edge)
	}

	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx := fx - x0
	ty := fy - y0

	c00 := p.texel(x0, y0, edge)
	c10 := p.texel(x0+1, y0, edge)
	c01 := p.texel(x0, y0+1, edge)
	c11 := p.texel(x0+1, y0+1, edge)

	return lerpPixel(lerpPixel(c00, c10, tx), lerpPixel(c01, c11, tx), ty)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func lerpPixel(a, b Pixel, t float64) Pixel {
	l := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return Pixel{l(a.R, b.R), l(a.G, b.G), l(a.B, b.B), l(a.A, b.A)}
}

// Sample returns the source color at normalized (u, v).
func (p *PixelBuffer) Sample(u, v float64, filter FilterMode, edge EdgeMode) Pixel {
	if filter == FilterBilinear {
		return p.sampleBilinear(u, v, edge)
	}
	return p.sampleNearest(u, v, edge)
}
