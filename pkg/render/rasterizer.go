// Package render rasterizes the coin ring in software: an orbit camera,
// a depth-buffered triangle rasterizer with Gouraud, textured and
// normal-mapped shading, wireframe overlays, and half-block terminal output.
package render

import (
	"math"

	"github.com/taigrr/coinring/pkg/math3d"
)

// Lighting model shared by every shaded draw call.
const (
	AmbientLight = 0.3
	DiffuseLight = 0.7
)

// DefaultLightDir points toward the light, like a hemispheric light
// placed at (1, 1, 0).
var DefaultLightDir = math3d.V3(1, 1, 0).Normalize()

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // world space
	Normal   math3d.Vec3
	Tangent  math3d.Vec4 // W is the bitangent sign
	UV       math3d.Vec2
	Color    Color
}

// Triangle represents a triangle to be rasterized. Front faces wind
// counter-clockwise when seen from outside.
type Triangle struct {
	V [3]Vertex
}

// Rasterizer draws triangles into a framebuffer with a depth buffer.
type Rasterizer struct {
	camera       *Camera
	fb           *Framebuffer
	zbuffer      []float64 // row-major, same size as fb
	frustum      Frustum
	frustumDirty bool

	CullingStats           CullingStats
	DisableBackfaceCulling bool // render both sides, e.g. for flat planes
}

// CullingStats counts frustum culling decisions since the last reset.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
	}
	r.Resize()
	return r
}

// Resize reallocates the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets the depth buffer. Call it before each frame.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// InvalidateFrustum marks the cached frustum stale. Call it whenever the
// camera moves.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

func (r *Rasterizer) updateFrustum() {
	if r.frustumDirty {
		r.frustum = NewFrustumFromMatrix(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
}

func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests a local-space box, moved by transform, against the view
// frustum.
func (r *Rasterizer) IsVisible(localBounds AABB, transform math3d.Mat4) bool {
	r.updateFrustum()
	return r.frustum.IntersectAABB(localBounds.Transform(transform))
}

// screenVertex is a vertex after projection. InvW is 1/w in clip space and
// drives perspective-correct interpolation.
type screenVertex struct {
	X, Y, Z float64
	InvW    float64
}

// project maps tri to screen space. It fails when a vertex lies on or
// behind the camera plane; such triangles are dropped rather than clipped.
func (r *Rasterizer) project(tri *Triangle) (sv [3]screenVertex, ok bool) {
	vp := r.camera.ViewProjectionMatrix()
	w, h := float64(r.Width()), float64(r.Height())
	for i := range 3 {
		clip := vp.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))
		if clip.W <= 0 {
			return sv, false
		}
		inv := 1 / clip.W
		sv[i] = screenVertex{
			X:    (clip.X*inv + 1) * 0.5 * w,
			Y:    (1 - clip.Y*inv) * 0.5 * h,
			Z:    clip.Z * inv,
			InvW: inv,
		}
	}
	return sv, true
}

// edgeCoeffs returns A, B, C of the edge function A*x + B*y + C for the
// directed edge (x0, y0) -> (x1, y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// rasterize fills the pixels covered by sv. For each pixel that passes the
// depth test, shade receives perspective-correct barycentric weights and
// returns the color to write.
func (r *Rasterizer) rasterize(sv [3]screenVertex, shade func(b [3]float64) Color) {
	// Screen Y points down, so counter-clockwise front faces have a
	// negative signed area.
	area := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area == 0 || (area > 0 && !r.DisableBackfaceCulling) {
		return
	}
	invArea := 1 / area

	minX := max(0, int(math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := min(r.Width()-1, int(math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := max(0, int(math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := min(r.Height()-1, int(math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)

	px, py := float64(minX)+0.5, float64(minY)+0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	width := r.Width()
	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		row := y * width
		for x := minX; x <= maxX; x++ {
			b0, b1, b2 := w0*invArea, w1*invArea, w2*invArea
			if b0 >= 0 && b1 >= 0 && b2 >= 0 {
				z := b0*sv[0].Z + b1*sv[1].Z + b2*sv[2].Z
				if z >= -1 && z < r.zbuffer[row+x] {
					p0, p1, p2 := b0*sv[0].InvW, b1*sv[1].InvW, b2*sv[2].InvW
					s := 1 / (p0 + p1 + p2)
					r.zbuffer[row+x] = z
					r.fb.SetPixel(x, y, shade([3]float64{p0 * s, p1 * s, p2 * s}))
				}
			}
			w0 += A0
			w1 += A1
			w2 += A2
		}
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

// intensity is the lighting term for a unit normal and light direction.
func intensity(normal, lightDir math3d.Vec3) float64 {
	return AmbientLight + DiffuseLight*math.Max(0, normal.Dot(lightDir))
}

func weigh3(b [3]float64, a0, a1, a2 float64) float64 {
	return b[0]*a0 + b[1]*a1 + b[2]*a2
}

func weighVec2(b [3]float64, a0, a1, a2 math3d.Vec2) math3d.Vec2 {
	return math3d.V2(weigh3(b, a0.X, a1.X, a2.X), weigh3(b, a0.Y, a1.Y, a2.Y))
}

func weighVec3(b [3]float64, a0, a1, a2 math3d.Vec3) math3d.Vec3 {
	return math3d.V3(weigh3(b, a0.X, a1.X, a2.X), weigh3(b, a0.Y, a1.Y, a2.Y), weigh3(b, a0.Z, a1.Z, a2.Z))
}

// DrawTriangleGouraud lights each vertex color and interpolates the result.
func (r *Rasterizer) DrawTriangleGouraud(tri Triangle, lightDir math3d.Vec3) {
	sv, ok := r.project(&tri)
	if !ok {
		return
	}
	light := lightDir.Normalize()
	var lit [3]Color
	for i, v := range tri.V {
		lit[i] = MultiplyColor(v.Color, intensity(v.Normal, light))
	}
	r.rasterize(sv, func(b [3]float64) Color {
		return RGB(
			toByte(weigh3(b, float64(lit[0].R), float64(lit[1].R), float64(lit[2].R))),
			toByte(weigh3(b, float64(lit[0].G), float64(lit[1].G), float64(lit[2].G))),
			toByte(weigh3(b, float64(lit[0].B), float64(lit[1].B), float64(lit[2].B))),
		)
	})
}

// DrawTriangleTexturedGouraud samples tex at the interpolated UV and
// modulates it with interpolated per-vertex lighting.
func (r *Rasterizer) DrawTriangleTexturedGouraud(tri Triangle, tex *Texture, lightDir math3d.Vec3) {
	sv, ok := r.project(&tri)
	if !ok {
		return
	}
	light := lightDir.Normalize()
	var li [3]float64
	for i, v := range tri.V {
		li[i] = intensity(v.Normal, light)
	}
	r.rasterize(sv, func(b [3]float64) Color {
		uv := weighVec2(b, tri.V[0].UV, tri.V[1].UV, tri.V[2].UV)
		c := tex.Sample(uv.X, uv.Y)
		c.A = 255
		return MultiplyColor(c, weigh3(b, li[0], li[1], li[2]))
	})
}

// DrawTriangleBumped shades per pixel: the normal map sample is moved from
// tangent space to world space with the interpolated tangent frame, then
// lit. A nil base texture shades white.
func (r *Rasterizer) DrawTriangleBumped(tri Triangle, base, normalMap *Texture, lightDir math3d.Vec3) {
	sv, ok := r.project(&tri)
	if !ok {
		return
	}
	light := lightDir.Normalize()
	v := &tri.V
	r.rasterize(sv, func(b [3]float64) Color {
		uv := weighVec2(b, v[0].UV, v[1].UV, v[2].UV)
		n := weighVec3(b, v[0].Normal, v[1].Normal, v[2].Normal).Normalize()
		t := weighVec3(b, v[0].Tangent.Vec3(), v[1].Tangent.Vec3(), v[2].Tangent.Vec3())
		t = t.Sub(n.Scale(n.Dot(t))).Normalize()
		sign := 1.0
		if weigh3(b, v[0].Tangent.W, v[1].Tangent.W, v[2].Tangent.W) < 0 {
			sign = -1
		}
		bt := n.Cross(t).Scale(sign)

		tn := normalMap.SampleNormal(uv.X, uv.Y)
		world := t.Scale(tn.X).Add(bt.Scale(tn.Y)).Add(n.Scale(tn.Z)).Normalize()

		c := ColorWhite
		if base != nil {
			c = base.Sample(uv.X, uv.Y)
			c.A = 255
		}
		return MultiplyColor(c, intensity(world, light))
	})
}

// MeshRenderer is the read-only view of a mesh the rasterizer needs; it
// keeps this package independent of models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer adds local bounds, enabling frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// TangentMeshRenderer adds per-vertex tangents, enabling normal mapping.
type TangentMeshRenderer interface {
	MeshRenderer
	GetTangent(i int) math3d.Vec4
}

// frustumCulled reports whether a bounded mesh lies entirely outside the
// view. Meshes without bounds are never culled.
func (r *Rasterizer) frustumCulled(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}
	r.CullingStats.MeshesTested++
	lo, hi := bounded.GetBounds()
	if !r.IsVisible(AABB{Min: lo, Max: hi}, transform) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

// eachTriangle moves every face of mesh to world space and passes it to fn.
func (r *Rasterizer) eachTriangle(mesh MeshRenderer, transform math3d.Mat4, color Color, fn func(Triangle)) {
	if r.frustumCulled(mesh, transform) {
		return
	}
	normalMat := transform.NormalMatrix()
	tangents, _ := mesh.(TangentMeshRenderer)

	for i := range mesh.TriangleCount() {
		var tri Triangle
		for j, idx := range mesh.GetFace(i) {
			p, n, uv := mesh.GetVertex(idx)
			v := Vertex{
				Position: transform.MulVec3(p),
				Normal:   normalMat.MulVec3Dir(n).Normalize(),
				UV:       uv,
				Color:    color,
			}
			if tangents != nil {
				t := tangents.GetTangent(idx)
				v.Tangent = math3d.V4FromV3(transform.MulVec3Dir(t.Vec3()).Normalize(), t.W)
			}
			tri.V[j] = v
		}
		fn(tri)
	}
}

// DrawMeshGouraud renders a mesh in a solid color with Gouraud shading.
func (r *Rasterizer) DrawMeshGouraud(mesh MeshRenderer, transform math3d.Mat4, color Color, lightDir math3d.Vec3) {
	r.eachTriangle(mesh, transform, color, func(tri Triangle) {
		r.DrawTriangleGouraud(tri, lightDir)
	})
}

// DrawMeshTexturedGouraud renders a mesh with tex and Gouraud shading.
func (r *Rasterizer) DrawMeshTexturedGouraud(mesh MeshRenderer, transform math3d.Mat4, tex *Texture, lightDir math3d.Vec3) {
	r.eachTriangle(mesh, transform, ColorWhite, func(tri Triangle) {
		r.DrawTriangleTexturedGouraud(tri, tex, lightDir)
	})
}

// DrawMeshBumped renders a mesh with per-pixel normal mapping. Without a
// normal map or mesh tangents it falls back to DrawMeshTexturedGouraud, or
// DrawMeshGouraud when base is nil as well.
func (r *Rasterizer) DrawMeshBumped(mesh MeshRenderer, transform math3d.Mat4, base, normalMap *Texture, lightDir math3d.Vec3) {
	if _, ok := mesh.(TangentMeshRenderer); !ok || normalMap == nil {
		if base == nil {
			r.DrawMeshGouraud(mesh, transform, ColorWhite, lightDir)
			return
		}
		r.DrawMeshTexturedGouraud(mesh, transform, base, lightDir)
		return
	}
	r.eachTriangle(mesh, transform, ColorWhite, func(tri Triangle) {
		r.DrawTriangleBumped(tri, base, normalMap, lightDir)
	})
}

// DrawMeshWireframe draws every triangle edge, ignoring depth.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	r.eachTriangle(mesh, transform, color, func(tri Triangle) {
		for j := range 3 {
			drawLine3D(r.camera, r.fb, tri.V[j].Position, tri.V[(j+1)%3].Position, color)
		}
	})
}
