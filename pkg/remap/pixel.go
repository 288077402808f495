// Package remap projects a flat circular coin photo onto the annular
// texture space of a coin ring using an inverse polar transform.
package remap

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Pixel is a single 8-bit RGBA sample.
type Pixel struct {
	R, G, B, A uint8
}

// PixelBuffer is a W×H grid of RGBA pixels stored row-major with
// interleaved channels. len(Pix) is always Width*Height*4.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer allocates a zeroed (transparent black) buffer.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, &InvalidBufferError{Width: width, Height: height, Reason: "dimensions must be positive"}
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}, nil
}

// FromImage copies img into a new non-premultiplied buffer.
func FromImage(img image.Image) (*PixelBuffer, error) {
	b := img.Bounds()
	pb, err := NewPixelBuffer(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	dst := pb.Image()
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return pb, nil
}

// Validate checks the buffer length invariant.
func (p *PixelBuffer) Validate() error {
	if p == nil {
		return &InvalidBufferError{Reason: "nil buffer"}
	}
	if p.Width <= 0 || p.Height <= 0 {
		return &InvalidBufferError{Width: p.Width, Height: p.Height, Length: len(p.Pix), Reason: "dimensions must be positive"}
	}
	if len(p.Pix) != p.Width*p.Height*4 {
		return &InvalidBufferError{Width: p.Width, Height: p.Height, Length: len(p.Pix), Reason: "length does not match width*height*4"}
	}
	return nil
}

// At returns the pixel at (x, y). The caller guarantees the coordinate is
// inside the buffer.
func (p *PixelBuffer) At(x, y int) Pixel {
	i := (y*p.Width + x) * 4
	s := p.Pix[i : i+4 : i+4]
	return Pixel{s[0], s[1], s[2], s[3]}
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (p *PixelBuffer) Set(x, y int, c Pixel) {
	if x < 0 || x >= p.Width || y < 0 || y >= p.Height {
		return
	}
	i := (y*p.Width + x) * 4
	s := p.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
}

// Image returns an *image.NRGBA view that shares Pix with the buffer.
func (p *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.Pix,
		Stride: p.Width * 4,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// Clone returns a deep copy.
func (p *PixelBuffer) Clone() *PixelBuffer {
	c := &PixelBuffer{Width: p.Width, Height: p.Height, Pix: make([]uint8, len(p.Pix))}
	copy(c.Pix, p.Pix)
	return c
}
