package models

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/taigrr/coinring/pkg/math3d"
)

// DefaultCSGCells is the marching cubes resolution along the longest side
// of the ring's bounding box.
const DefaultCSGCells = 128

// NewRingCSG builds the ring as a solid, subtracting the inner cylinder
// from the outer one, and polygonizes it with marching cubes. The result
// is a triangle soup, faceted according to cells, with UVs assigned from
// vertex positions the same way NewRing assigns them. opts.Tessellation is
// ignored.
func NewRingCSG(opts RingOptions, cells int) (*Mesh, error) {
	opts.Tessellation = max(opts.Tessellation, 3)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if cells <= 0 {
		cells = DefaultCSGCells
	}

	outer, err := sdf.Cylinder3D(opts.Height, opts.OuterDiameter/2, 0)
	if err != nil {
		return nil, fmt.Errorf("outer cylinder: %w", err)
	}
	inner, err := sdf.Cylinder3D(opts.Height, opts.InnerDiameter/2, 0)
	if err != nil {
		return nil, fmt.Errorf("inner cylinder: %w", err)
	}
	solid := sdf.Difference3D(outer, inner)

	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: marching cubes produced no triangles", ErrInvalidRing)
	}

	m := NewMesh("ring")
	m.Materials = []Material{DefaultMaterial("ring")}
	m.Vertices = make([]MeshVertex, 0, 3*len(triangles))
	m.Faces = make([]Face, 0, len(triangles))

	for _, tri := range triangles {
		// sdfx cylinders stand on Z; (x, y, z) -> (x, z, -y) stands them
		// on Y and keeps the winding.
		var p [3]math3d.Vec3
		for j := range 3 {
			v := tri[j]
			p[j] = math3d.V3(v.X, v.Z, -v.Y)
		}
		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
		if n.Len() < 1e-12 {
			continue
		}
		normal := n.Normalize()

		base := len(m.Vertices)
		for j, uv := range csgUVs(p, normal, opts) {
			vn := normal
			if math.Abs(normal.Y) < 0.5 {
				// Wall: shade smoothly around the axis.
				radial := math3d.V3(p[j].X, 0, p[j].Z).Normalize()
				if radial.Dot(normal) < 0 {
					radial = radial.Negate()
				}
				vn = radial
			}
			m.Vertices = append(m.Vertices, MeshVertex{Position: p[j], Normal: vn, UV: uv})
		}
		m.Faces = append(m.Faces, Face{V: [3]int{base, base + 1, base + 2}})
	}

	m.CalculateTangents()
	m.CalculateBounds()
	return m, nil
}

// csgUVs maps a triangle's corners into texture space: walls by angle and
// height, caps by planar projection. Wall triangles straddling the +X
// seam get u unwrapped past 1 so they do not span the whole texture.
func csgUVs(p [3]math3d.Vec3, normal math3d.Vec3, opts RingOptions) [3]math3d.Vec2 {
	var uv [3]math3d.Vec2

	if math.Abs(normal.Y) >= 0.5 {
		face := opts.TopUV
		if normal.Y < 0 {
			face = opts.BottomUV
		}
		ro := opts.OuterDiameter / 2
		for j := range 3 {
			uv[j] = face.Map(0.5+p[j].X/(2*ro), 0.5+p[j].Z/(2*ro))
		}
		return uv
	}

	var u [3]float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for j := range 3 {
		u[j] = p[j].AngleXZ() / (2 * math.Pi)
		lo, hi = math.Min(lo, u[j]), math.Max(hi, u[j])
	}
	if hi-lo > 0.5 {
		for j := range u {
			if u[j] < 0.5 {
				u[j]++
			}
		}
	}
	for j := range 3 {
		v := math.Max(0, math.Min(1, p[j].Y/opts.Height+0.5))
		uv[j] = opts.SideUV.Map(u[j], v)
	}
	return uv
}
