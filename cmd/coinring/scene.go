package main

import (
	"math"

	"github.com/taigrr/coinring/pkg/coin"
	"github.com/taigrr/coinring/pkg/math3d"
	"github.com/taigrr/coinring/pkg/models"
	"github.com/taigrr/coinring/pkg/render"
)

// initialSpin turns the ring an eighth of a turn so the seam between the
// texture ends is off to the side.
const initialSpin = math.Pi / 4

var (
	wireColor  = render.RGB(0, 255, 128)
	plainColor = render.RGB(200, 200, 200)
)

// Scene draws a built ring with the viewer's toggles. It renders offscreen
// into its own framebuffer; the caller decides where the pixels go.
type Scene struct {
	Model  *coin.Model
	Camera *render.Camera

	Spin      float64 // ring rotation about Y
	Textured  bool
	Bumped    bool
	Wireframe bool
	Axes      bool
	Preview   bool // flat source coin inside the ring
	LightDir  math3d.Vec3

	fb     *render.Framebuffer
	raster *render.Rasterizer
	wire   *render.Wireframe
	plane  *models.Mesh
}

// NewScene sets up a width x height pixel view of m from the default orbit.
func NewScene(m *coin.Model, width, height int) *Scene {
	s := &Scene{
		Model:  m,
		Camera: render.NewCamera(),
		fb:     render.NewFramebuffer(width, height),
		plane:  models.NewPlane(1),
	}
	s.raster = render.NewRasterizer(s.Camera, s.fb)
	s.wire = render.NewWireframe(s.Camera, s.fb)
	s.Reset()
	s.Resize(width, height)
	return s
}

// Reset restores the starting view and toggles.
func (s *Scene) Reset() {
	s.Spin = initialSpin
	s.Textured = true
	s.Bumped = s.Model.BumpTexture != nil
	s.Wireframe = false
	s.Axes = false
	s.Preview = false
	s.LightDir = render.DefaultLightDir
	def := render.NewCamera()
	s.Camera.SetOrbit(def.Alpha, def.Beta, def.Radius, def.Target)
	s.raster.InvalidateFrustum()
}

func (s *Scene) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	s.fb.Resize(width, height)
	s.raster.Resize()
	s.Camera.SetAspectRatio(float64(width) / float64(height))
	s.raster.InvalidateFrustum()
}

func (s *Scene) Framebuffer() *render.Framebuffer { return s.fb }

// Orbit and Zoom move the camera and keep the culling frustum current.
func (s *Scene) Orbit(dAlpha, dBeta float64) {
	s.Camera.Orbit(dAlpha, dBeta)
	s.raster.InvalidateFrustum()
}

func (s *Scene) Zoom(factor float64) {
	s.Camera.Zoom(factor)
	s.raster.InvalidateFrustum()
}

// Render draws one frame.
func (s *Scene) Render() {
	s.fb.Clear(render.ColorBackground)
	s.raster.ClearDepth()

	m := s.Model
	xf := math3d.RotateY(s.Spin)
	switch {
	case s.Wireframe:
		s.raster.DrawMeshWireframe(m.Mesh, xf, wireColor)
	case !s.Textured:
		s.raster.DrawMeshGouraud(m.Mesh, xf, plainColor, s.LightDir)
	case s.Bumped && m.BumpTexture != nil:
		s.raster.DrawMeshBumped(m.Mesh, xf, m.DiffuseTexture, m.BumpTexture, s.LightDir)
	default:
		s.raster.DrawMeshTexturedGouraud(m.Mesh, xf, m.DiffuseTexture, s.LightDir)
	}

	if s.Preview && m.SourceTexture != nil {
		// The plane is seen from both sides as the camera orbits.
		s.raster.DisableBackfaceCulling = true
		s.raster.DrawMeshTexturedGouraud(s.plane, math3d.Identity(), m.SourceTexture, s.LightDir)
		s.raster.DisableBackfaceCulling = false
	}
	if s.Axes {
		s.wire.DrawAxes(axisSize(m.Mesh))
	}
}

// axisSize reaches a little past the ring's outer wall.
func axisSize(mesh *models.Mesh) float64 {
	size := mesh.Size()
	return 0.6 * math.Max(size.X, math.Max(size.Y, size.Z))
}

// Status lists the toggles for the HUD.
func (s *Scene) Status() []toggle {
	return []toggle{
		{"T", "texture", s.Textured && !s.Wireframe},
		{"B", "bump", s.Bumped && s.Model.BumpTexture != nil},
		{"X", "wireframe", s.Wireframe},
		{"G", "axes", s.Axes},
		{"P", "preview", s.Preview},
	}
}

type toggle struct {
	key  string
	name string
	on   bool
}
