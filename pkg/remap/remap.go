package remap

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Default destination size of a ring texture.
const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

// Remapper fills destination textures from a source photo. The zero value
// is not usable; construct with New.
type Remapper struct {
	Mapper  Mapper     // coordinate transform, MapToSource by default
	Filter  FilterMode // sampling filter
	Edge    EdgeMode   // out-of-bounds policy
	Workers int        // row bands processed in parallel; 1 runs serially
}

// Option configures a Remapper.
type Option func(*Remapper)

// WithMapper replaces the coordinate transform.
func WithMapper(m Mapper) Option {
	return func(r *Remapper) { r.Mapper = m }
}

// WithFilter selects the sampling filter.
func WithFilter(f FilterMode) Option {
	return func(r *Remapper) { r.Filter = f }
}

// WithEdge selects the out-of-bounds policy.
func WithEdge(e EdgeMode) Option {
	return func(r *Remapper) { r.Edge = e }
}

// WithWorkers bounds the number of goroutines. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Remapper) { r.Workers = n }
}

// New returns a Remapper using MapToSource, nearest sampling and edge
// clamping unless overridden.
func New(opts ...Option) *Remapper {
	r := &Remapper{
		Mapper: MapToSource,
		Filter: FilterNearest,
		Edge:   EdgeClamp,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Workers <= 0 {
		r.Workers = runtime.GOMAXPROCS(0)
	}
	return r
}

// Remap is shorthand for New(opts...).Remap with a background context.
func Remap(src *PixelBuffer, destWidth, destHeight int, opts ...Option) (*PixelBuffer, error) {
	return New(opts...).Remap(context.Background(), src, destWidth, destHeight)
}

func (r *Remapper) validate(destWidth, destHeight int) error {
	switch {
	case destWidth <= 0:
		return &InvalidConfigurationError{Field: "width", Value: destWidth, Reason: "must be positive"}
	case destHeight <= 0:
		return &InvalidConfigurationError{Field: "height", Value: destHeight, Reason: "must be positive"}
	case r.Mapper == nil:
		return &InvalidConfigurationError{Field: "mapper", Value: nil, Reason: "must be set"}
	case r.Filter != FilterNearest && r.Filter != FilterBilinear:
		return &InvalidConfigurationError{Field: "filter", Value: r.Filter, Reason: "unknown filter"}
	case r.Edge != EdgeClamp && r.Edge != EdgeTransparent:
		return &InvalidConfigurationError{Field: "edge", Value: r.Edge, Reason: "unknown edge mode"}
	}
	return nil
}

// Remap allocates a destWidth×destHeight buffer and writes every pixel
// exactly once from src. Alpha is always 255 in the result. src is only
// read. On error no buffer is returned.
func (r *Remapper) Remap(ctx context.Context, src *PixelBuffer, destWidth, destHeight int) (*PixelBuffer, error) {
	if err := r.validate(destWidth, destHeight); err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	dst := &PixelBuffer{
		Width:  destWidth,
		Height: destHeight,
		Pix:    make([]uint8, destWidth*destHeight*4),
	}

	workers := min(max(r.Workers, 1), destHeight)
	band := (destHeight + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for y0 := 0; y0 < destHeight; y0 += band {
		y1 := min(y0+band, destHeight)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				r.remapRow(src, dst, y)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}

// remapRow fills row y of dst. Rows never overlap, so concurrent calls
// for different y are safe.
func (r *Remapper) remapRow(src, dst *PixelBuffer, y int) {
	v := float64(y) / float64(dst.Height)
	row := dst.Pix[y*dst.Width*4 : (y+1)*dst.Width*4]
	for x := range dst.Width {
		u := float64(x) / float64(dst.Width)
		su, sv := r.Mapper(u, v)
		c := src.Sample(su, sv, r.Filter, r.Edge)

		i := x * 4
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = 255
	}
}
