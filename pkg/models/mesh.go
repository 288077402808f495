// Package models holds the coin ring mesh, the builders that produce it and
// GLB import and export.
package models

import (
	"image"

	"github.com/taigrr/coinring/pkg/math3d"
)

// Mesh is an indexed triangle mesh. Faces wind counter-clockwise when seen
// from the side their normals point to, as in glTF.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes. Tangent.W is the bitangent sign.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Tangent  math3d.Vec4
	UV       math3d.Vec2
}

// Face is a triangle and the material it is drawn with.
type Face struct {
	V        [3]int
	Material int // -1 for none
}

// Material is the subset of a glTF PBR material the ring uses.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Metallic  float64
	Roughness float64
	BaseMap   image.Image // diffuse texture, optional
	NormalMap image.Image // tangent-space normal map, optional
}

// HasTexture reports whether a base color texture is bound.
func (m *Material) HasTexture() bool {
	return m.BaseMap != nil
}

func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// faceNormal is the unnormalized normal of face f, its length twice the
// face area.
func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	p0 := m.Vertices[f.V[0]].Position
	p1 := m.Vertices[f.V[1]].Position
	p2 := m.Vertices[f.V[2]].Position
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

// CalculateSmoothNormals sets each vertex normal to the area-weighted
// average of the faces sharing it.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}
	for _, f := range m.Faces {
		n := m.faceNormal(f)
		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(n)
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// CalculateTangents derives per-vertex tangents from positions and UVs,
// accumulated over faces and orthogonalized against the normal. Normals
// must be set first. Vertices whose faces have degenerate UVs get a
// tangent perpendicular to the normal picked from the ring axis.
func (m *Mesh) CalculateTangents() {
	tan := make([]math3d.Vec3, len(m.Vertices))
	bit := make([]math3d.Vec3, len(m.Vertices))

	for _, f := range m.Faces {
		v0, v1, v2 := m.Vertices[f.V[0]], m.Vertices[f.V[1]], m.Vertices[f.V[2]]
		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.UV.Sub(v0.UV)
		d2 := v2.UV.Sub(v0.UV)

		det := d1.X*d2.Y - d2.X*d1.Y
		if det == 0 {
			continue
		}
		r := 1 / det
		t := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(r)
		b := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(r)
		for _, vi := range f.V {
			tan[vi] = tan[vi].Add(t)
			bit[vi] = bit[vi].Add(b)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := tan[i].Sub(n.Scale(n.Dot(tan[i])))
		if t.Len() < 1e-12 {
			t = math3d.Up().Cross(n)
			if t.Len() < 1e-12 {
				t = math3d.V3(1, 0, 0)
			}
		}
		t = t.Normalize()

		w := 1.0
		if n.Cross(t).Dot(bit[i]) < 0 {
			w = -1
		}
		m.Vertices[i].Tangent = math3d.V4FromV3(t, w)
	}
}

// Transform applies mat to positions, normals and tangents.
func (m *Mesh) Transform(mat math3d.Mat4) {
	nm := mat.NormalMatrix()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.MulVec3(v.Position)
		v.Normal = nm.MulVec3Dir(v.Normal).Normalize()
		t := mat.MulVec3Dir(v.Tangent.Vec3()).Normalize()
		v.Tangent = math3d.V4FromV3(t, v.Tangent.W)
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh. Material images are shared.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = append([]MeshVertex(nil), m.Vertices...)
	c.Faces = append([]Face(nil), m.Faces...)
	c.Materials = append([]Material(nil), m.Materials...)
	return &c
}

// GetVertex returns the position, normal and UV of vertex i.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetTangent returns the tangent of vertex i.
func (m *Mesh) GetTangent(i int) math3d.Vec4 {
	return m.Vertices[i].Tangent
}

func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetFaceMaterial returns the material index of face i, -1 if none.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i, or nil when out of range.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// SetMaterialMaps binds base and normal textures to every material,
// creating a default one when the mesh has none.
func (m *Mesh) SetMaterialMaps(base, normal image.Image) {
	if len(m.Materials) == 0 {
		m.Materials = []Material{DefaultMaterial("ring")}
		for i := range m.Faces {
			m.Faces[i].Material = 0
		}
	}
	for i := range m.Materials {
		m.Materials[i].BaseMap = base
		m.Materials[i].NormalMap = normal
	}
}

// DefaultMaterial is an untinted dielectric.
func DefaultMaterial(name string) Material {
	return Material{
		Name:      name,
		BaseColor: [4]float64{1, 1, 1, 1},
		Roughness: 1,
	}
}
