package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/coinring/pkg/math3d"
)

// ErrInvalidRing is returned for ring dimensions that describe no solid.
var ErrInvalidRing = errors.New("invalid ring")

// FaceUV is the rectangle of texture space a group of faces maps into.
// A rectangle with zero area maps every vertex to a single texel.
type FaceUV struct {
	U0, V0, U1, V1 float64
}

// Map places (s, t) in [0,1]² inside the rectangle.
func (f FaceUV) Map(s, t float64) math3d.Vec2 {
	return math3d.V2(f.U0+(f.U1-f.U0)*s, f.V0+(f.V1-f.V0)*t)
}

// RingOptions describes a band around the Y axis, centered on the origin.
type RingOptions struct {
	InnerDiameter float64
	OuterDiameter float64
	Height        float64
	Tessellation  int // segments around the axis

	SideUV   FaceUV // inner and outer walls
	TopUV    FaceUV // cap at +Y
	BottomUV FaceUV // cap at -Y
}

// DefaultRingOptions matches a punched silver dollar: a 2 unit band 1 unit
// tall with a 0.1 wall. The walls use the lower three quarters of the
// texture, the top cap shows the whole texture and the bottom cap a
// single texel.
func DefaultRingOptions() RingOptions {
	return RingOptions{
		InnerDiameter: 1.8,
		OuterDiameter: 2,
		Height:        1,
		Tessellation:  64,
		SideUV:        FaceUV{0, 0, 1, 0.75},
		TopUV:         FaceUV{0, 0, 1, 1},
		BottomUV:      FaceUV{0, 0, 0, 0},
	}
}

// Validate reports dimensions that cannot form a ring.
func (o RingOptions) Validate() error {
	switch {
	case !(o.InnerDiameter > 0):
		return fmt.Errorf("%w: inner diameter %v must be positive", ErrInvalidRing, o.InnerDiameter)
	case !(o.OuterDiameter > 0):
		return fmt.Errorf("%w: outer diameter %v must be positive", ErrInvalidRing, o.OuterDiameter)
	case !(o.Height > 0):
		return fmt.Errorf("%w: height %v must be positive", ErrInvalidRing, o.Height)
	case o.InnerDiameter >= o.OuterDiameter:
		return fmt.Errorf("%w: inner diameter %v must be smaller than outer diameter %v",
			ErrInvalidRing, o.InnerDiameter, o.OuterDiameter)
	case o.Tessellation < 3:
		return fmt.Errorf("%w: tessellation %d must be at least 3", ErrInvalidRing, o.Tessellation)
	}
	return nil
}

// NewRing builds the band left after subtracting a cylinder of the inner
// diameter from one of the outer diameter: outer and inner walls joined by
// two annular caps. Walls are smooth shaded and caps flat. Wall texture u
// runs once around the axis starting at +X, v runs bottom to top.
func NewRing(opts RingOptions) (*Mesh, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	n := opts.Tessellation
	ro, ri := opts.OuterDiameter/2, opts.InnerDiameter/2
	y0, y1 := -opts.Height/2, opts.Height/2

	m := NewMesh("ring")
	m.Vertices = make([]MeshVertex, 0, 4*(n+1)+4*n)
	m.Faces = make([]Face, 0, 8*n)
	m.Materials = []Material{DefaultMaterial("ring")}

	wall := func(radius float64, outward bool) {
		base := len(m.Vertices)
		for i := 0; i <= n; i++ {
			u := float64(i) / float64(n)
			theta := u * 2 * math.Pi
			normal := math3d.Cylindrical(theta, 1, 0)
			if !outward {
				normal = normal.Negate()
			}
			m.Vertices = append(m.Vertices,
				MeshVertex{Position: math3d.Cylindrical(theta, radius, y0), Normal: normal, UV: opts.SideUV.Map(u, 0)},
				MeshVertex{Position: math3d.Cylindrical(theta, radius, y1), Normal: normal, UV: opts.SideUV.Map(u, 1)},
			)
		}
		for i := range n {
			b0, t0 := base+2*i, base+2*i+1
			b1, t1 := b0+2, t0+2
			if outward {
				m.addQuad(b0, t0, b1, t1)
			} else {
				m.addQuad(b0, b1, t0, t1)
			}
		}
	}

	// annulus adds a cap at height y; the first vertex of each pair is on
	// the outer edge.
	annulus := func(y float64, faceUV FaceUV, up bool) {
		base := len(m.Vertices)
		normal := math3d.Up()
		if !up {
			normal = normal.Negate()
		}
		for i := range n {
			theta := float64(i) / float64(n) * 2 * math.Pi
			for _, r := range []float64{ro, ri} {
				p := math3d.Cylindrical(theta, r, y)
				uv := faceUV.Map(0.5+p.X/(2*ro), 0.5+p.Z/(2*ro))
				m.Vertices = append(m.Vertices, MeshVertex{Position: p, Normal: normal, UV: uv})
			}
		}
		for i := range n {
			o0, i0 := base+2*i, base+2*i+1
			j := (i + 1) % n
			o1, i1 := base+2*j, base+2*j+1
			if up {
				m.addQuad(o0, i0, o1, i1)
			} else {
				m.addQuad(o0, o1, i0, i1)
			}
		}
	}

	wall(ro, true)
	wall(ri, false)
	annulus(y1, opts.TopUV, true)
	annulus(y0, opts.BottomUV, false)

	m.CalculateTangents()
	m.CalculateBounds()
	return m, nil
}

// addQuad adds triangles (a, b, c) and (c, b, d) with material 0.
func (m *Mesh) addQuad(a, b, c, d int) {
	m.Faces = append(m.Faces,
		Face{V: [3]int{a, b, c}},
		Face{V: [3]int{c, b, d}},
	)
}

// NewPlane builds a square of the given size lying on the XZ plane and
// facing +Y, with the whole texture mapped across it. The flat coin is
// shown this way inside the ring.
func NewPlane(size float64) *Mesh {
	h := size / 2
	up := math3d.Up()
	m := NewMesh("plane")
	m.Materials = []Material{DefaultMaterial("plane")}
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(-h, 0, h), Normal: up, UV: math3d.V2(0, 0)},
		{Position: math3d.V3(h, 0, h), Normal: up, UV: math3d.V2(1, 0)},
		{Position: math3d.V3(-h, 0, -h), Normal: up, UV: math3d.V2(0, 1)},
		{Position: math3d.V3(h, 0, -h), Normal: up, UV: math3d.V2(1, 1)},
	}
	m.addQuad(0, 1, 2, 3)
	m.CalculateTangents()
	m.CalculateBounds()
	return m
}
