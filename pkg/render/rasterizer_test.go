package render

import (
	"math"
	"testing"

	"github.com/taigrr/coinring/pkg/math3d"
)

type mockVertex struct {
	pos    math3d.Vec3
	normal math3d.Vec3
	uv     math3d.Vec2
}

// mockMesh implements MeshRenderer for testing.
type mockMesh struct {
	vertices []mockVertex
	faces    [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}

// tangentMesh adds tangents, all +X.
type tangentMesh struct{ *mockMesh }

func (m tangentMesh) GetTangent(int) math3d.Vec4 { return math3d.V4(1, 0, 0, 1) }

// boundedMesh adds bounds.
type boundedMesh struct {
	*mockMesh
	min, max math3d.Vec3
}

func (m boundedMesh) GetBounds() (min, max math3d.Vec3) { return m.min, m.max }

// quadMesh is a 10x10 square in the XY plane facing +Z, UVs 0..1 with u
// along +X.
func quadMesh(z float64) *mockMesh {
	n := math3d.V3(0, 0, 1)
	return &mockMesh{
		vertices: []mockVertex{
			{math3d.V3(-5, -5, z), n, math3d.V2(0, 0)},
			{math3d.V3(5, -5, z), n, math3d.V2(1, 0)},
			{math3d.V3(5, 5, z), n, math3d.V2(1, 1)},
			{math3d.V3(-5, 5, z), n, math3d.V2(0, 1)},
		},
		faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

// createTestRasterizer looks at the origin from +Z, 10 units away, with
// +X to the right and +Y up.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetOrbit(math.Pi/2, math.Pi/2, 10, math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetFOV(math.Pi / 3)
	r := NewRasterizer(camera, fb)
	fb.Clear(ColorBlack)
	return r, fb
}

// frontTriangle winds counter-clockwise seen from +Z.
func frontTriangle(z float64, c Color) Triangle {
	n := math3d.V3(0, 0, 1)
	return Triangle{V: [3]Vertex{
		{Position: math3d.V3(-5, -5, z), Normal: n, Color: c},
		{Position: math3d.V3(5, -5, z), Normal: n, Color: c},
		{Position: math3d.V3(0, 5, z), Normal: n, Color: c},
	}}
}

func countDrawn(fb *Framebuffer) int {
	n := 0
	for _, c := range fb.Pixels {
		if c != ColorBlack {
			n++
		}
	}
	return n
}

func TestDrawTriangleGouraud_FrontFace(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawTriangleGouraud(frontTriangle(0, RGB(200, 200, 200)), math3d.V3(0, 0, 1))

	if countDrawn(fb) == 0 {
		t.Fatal("front-facing triangle drew no pixels")
	}
	if got := fb.GetPixel(50, 50); got != RGB(200, 200, 200) {
		t.Errorf("center pixel = %v, want fully lit (200, 200, 200)", got)
	}
}

func TestDrawTriangleGouraud_BackfaceCulling(t *testing.T) {
	tri := frontTriangle(0, ColorWhite)
	tri.V[1], tri.V[2] = tri.V[2], tri.V[1]

	r, fb := createTestRasterizer(100, 100)
	r.DrawTriangleGouraud(tri, math3d.V3(0, 0, 1))
	if n := countDrawn(fb); n > 0 {
		t.Errorf("back-facing triangle should be culled, but got %d pixels", n)
	}

	r, fb = createTestRasterizer(100, 100)
	r.DisableBackfaceCulling = true
	r.DrawTriangleGouraud(tri, math3d.V3(0, 0, 1))
	if countDrawn(fb) == 0 {
		t.Error("back-facing triangle should be drawn with culling disabled")
	}
}

func TestDrawTriangleGouraud_Lighting(t *testing.T) {
	tests := []struct {
		name  string
		light math3d.Vec3
		want  uint8
	}{
		{"facing light", math3d.V3(0, 0, 1), 200},
		{"perpendicular light", math3d.V3(1, 0, 0), 60},
		{"light behind", math3d.V3(0, 0, -1), 60},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(100, 100)
			r.DrawTriangleGouraud(frontTriangle(0, RGB(200, 200, 200)), tc.light)
			if got := fb.GetPixel(50, 50).R; got != tc.want {
				t.Errorf("center red = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDrawTriangleGouraud_DepthTest(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	light := math3d.V3(0, 0, 1)

	r.DrawTriangleGouraud(frontTriangle(1, ColorRed), light)
	r.DrawTriangleGouraud(frontTriangle(-1, ColorBlue), light)
	if got := fb.GetPixel(50, 50); got != ColorRed {
		t.Errorf("nearer triangle should win, got %v", got)
	}

	r.ClearDepth()
	r.DrawTriangleGouraud(frontTriangle(-1, ColorBlue), light)
	if got := fb.GetPixel(50, 50); got != ColorBlue {
		t.Errorf("after ClearDepth the far triangle should draw, got %v", got)
	}
}

func TestDrawTriangle_BehindCamera(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawTriangleGouraud(frontTriangle(20, ColorWhite), math3d.V3(0, 0, 1))
	if n := countDrawn(fb); n > 0 {
		t.Errorf("triangle behind the camera drew %d pixels", n)
	}
}

func TestDrawMeshTexturedGouraud(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	// Image row 0 is the top of the texture, v = 1.
	tex := NewTexture(2, 2)
	tex.SetPixel(0, 0, ColorBlue)
	tex.SetPixel(1, 0, ColorBlue)
	tex.SetPixel(0, 1, ColorRed)
	tex.SetPixel(1, 1, ColorRed)

	r.DrawMeshTexturedGouraud(quadMesh(0), math3d.Identity(), tex, math3d.V3(0, 0, 1))

	tests := []struct {
		name string
		y    int
		want Color
	}{
		{"upper half samples v near 1", 25, ColorBlue},
		{"lower half samples v near 0", 75, ColorRed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := fb.GetPixel(50, tc.y); got != tc.want {
				t.Errorf("pixel (50, %d) = %v, want %v", tc.y, got, tc.want)
			}
		})
	}
}

func TestDrawMeshBumped(t *testing.T) {
	base := NewTexture(1, 1)
	base.SetPixel(0, 0, RGB(200, 200, 200))
	light := math3d.V3(0, 0, 1)

	tests := []struct {
		name   string
		normal Color
		want   uint8
	}{
		{"flat normal map matches plain shading", RGB(128, 128, 255), 200},
		{"normal tilted along the tangent", RGB(255, 128, 128), 60},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nm := NewTexture(1, 1)
			nm.SetPixel(0, 0, tc.normal)

			r, fb := createTestRasterizer(100, 100)
			r.DrawMeshBumped(tangentMesh{quadMesh(0)}, math3d.Identity(), base, nm, light)

			got := int(fb.GetPixel(50, 50).R)
			if absInt(got-int(tc.want)) > 2 {
				t.Errorf("center red = %d, want about %d", got, tc.want)
			}
		})
	}
}

func TestDrawMeshBumped_Fallbacks(t *testing.T) {
	nm := NewTexture(1, 1)
	nm.SetPixel(0, 0, RGB(255, 128, 128))
	light := math3d.V3(0, 0, 1)

	// Without tangents the normal map is ignored.
	r, fb := createTestRasterizer(100, 100)
	r.DrawMeshBumped(quadMesh(0), math3d.Identity(), nil, nm, light)
	if got := fb.GetPixel(50, 50); got != ColorWhite {
		t.Errorf("mesh without tangents: center = %v, want white", got)
	}

	r, fb = createTestRasterizer(100, 100)
	r.DrawMeshBumped(tangentMesh{quadMesh(0)}, math3d.Identity(), nil, nil, light)
	if got := fb.GetPixel(50, 50); got != ColorWhite {
		t.Errorf("nil normal map: center = %v, want white", got)
	}
}

func TestDrawMesh_Transform(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	// Turning the quad away from the camera makes it a back face.
	r.DrawMeshGouraud(quadMesh(0), math3d.RotateY(math.Pi), ColorWhite, math3d.V3(0, 0, 1))
	if n := countDrawn(fb); n > 0 {
		t.Errorf("rotated quad should be culled, got %d pixels", n)
	}

	r.DrawMeshGouraud(quadMesh(0), math3d.Translate(math3d.V3(0, 0, 1)), ColorWhite, math3d.V3(0, 0, 1))
	if countDrawn(fb) == 0 {
		t.Error("translated quad should be drawn")
	}
}

func TestDrawMesh_FrustumCulling(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	far := boundedMesh{quadMesh(0), math3d.V3(-5, -5, 0), math3d.V3(5, 5, 0)}
	r.DrawMeshGouraud(far, math3d.Translate(math3d.V3(100, 0, 0)), ColorWhite, math3d.V3(0, 0, 1))
	if r.CullingStats.MeshesCulled != 1 || countDrawn(fb) != 0 {
		t.Errorf("off-screen mesh: stats %+v, drawn %d", r.CullingStats, countDrawn(fb))
	}

	r.ResetCullingStats()
	r.DrawMeshGouraud(far, math3d.Identity(), ColorWhite, math3d.V3(0, 0, 1))
	if r.CullingStats.MeshesDrawn != 1 || r.CullingStats.MeshesTested != 1 {
		t.Errorf("visible mesh: stats %+v", r.CullingStats)
	}
}

func TestDrawMeshWireframe(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawMeshWireframe(quadMesh(0), math3d.Identity(), ColorGreen)

	if countDrawn(fb) == 0 {
		t.Fatal("wireframe drew nothing")
	}
	// The diagonal passes through the center; a point off it stays clear.
	if got := fb.GetPixel(50, 50); got != ColorGreen {
		t.Errorf("center on the diagonal = %v, want green", got)
	}
	if got := fb.GetPixel(60, 50); got != ColorBlack {
		t.Errorf("interior point = %v, want background", got)
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)
	r.DrawTriangleGouraud(frontTriangle(0, ColorWhite), math3d.V3(0, 0, 1))
	r.ClearDepth()
	for i, z := range r.zbuffer {
		if z != math.MaxFloat64 {
			t.Fatalf("zbuffer[%d] = %v after ClearDepth", i, z)
		}
	}
}

func TestRasterizerResize(t *testing.T) {
	r, fb := createTestRasterizer(10, 10)
	fb.Resize(20, 8)
	r.Resize()
	if len(r.zbuffer) != 160 || r.Width() != 20 || r.Height() != 8 {
		t.Errorf("after resize: %d depth entries, %dx%d", len(r.zbuffer), r.Width(), r.Height())
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func BenchmarkDrawTriangleGouraud(b *testing.B) {
	r, _ := createTestRasterizer(200, 200)
	tri := frontTriangle(0, RGB(255, 100, 50))
	lightDir := math3d.V3(0, 0, 1)

	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangleGouraud(tri, lightDir)
	}
}

func BenchmarkDrawMeshBumped(b *testing.B) {
	r, _ := createTestRasterizer(200, 200)
	mesh := tangentMesh{quadMesh(0)}
	base := NewTexture(64, 64)
	nm := NewTexture(64, 64)
	nm.Pixels[0] = RGB(128, 128, 255)
	lightDir := math3d.V3(0, 0, 1)

	for b.Loop() {
		r.ClearDepth()
		r.DrawMeshBumped(mesh, math3d.Identity(), base, nm, lightDir)
	}
}
