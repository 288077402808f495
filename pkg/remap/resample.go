package remap

import (
	xdraw "golang.org/x/image/draw"
)

// Square resamples p to a square of side max(Width, Height) using a
// Catmull-Rom kernel. MapToSource treats the source as a unit square, so a
// non-square photo otherwise lands on the ring as an ellipse. A buffer that
// is already square is returned unchanged.
func Square(p *PixelBuffer) (*PixelBuffer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Width == p.Height {
		return p, nil
	}

	side := max(p.Width, p.Height)
	out, err := NewPixelBuffer(side, side)
	if err != nil {
		return nil, err
	}
	src := p.Image()
	dst := out.Image()
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return out, nil
}
