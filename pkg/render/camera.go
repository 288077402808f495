package render

import (
	"math"

	"github.com/taigrr/coinring/pkg/math3d"
)

// Camera orbits a target point. Alpha is the longitude around the Y axis
// measured from +X toward +Z, Beta the angle down from +Y, Radius the
// distance to the target.
type Camera struct {
	Alpha  float64
	Beta   float64
	Radius float64
	Target math3d.Vec3

	// Limits applied by Orbit, Zoom and SetOrbit.
	MinRadius, MaxRadius float64

	FOV         float64 // vertical, radians
	AspectRatio float64 // width / height
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpDirty        bool
}

// minBeta keeps the camera off the poles, where the view up vector would
// be parallel to the view direction.
const minBeta = 0.01

// NewCamera returns a camera looking at the origin from the front and a
// little above, 4 units away.
func NewCamera() *Camera {
	c := &Camera{
		MinRadius:   0.5,
		MaxRadius:   50,
		FOV:         0.8,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         100,
		projDirty:   true,
	}
	c.SetOrbit(math.Pi/2, math.Pi/2.5, 4, math3d.Zero3())
	return c
}

// SetOrbit places the camera on its orbit.
func (c *Camera) SetOrbit(alpha, beta, radius float64, target math3d.Vec3) {
	c.Alpha = alpha
	c.Beta = beta
	c.Radius = radius
	c.Target = target
	c.clamp()
	c.viewDirty = true
}

// Orbit moves the camera along its orbit by the given angles.
func (c *Camera) Orbit(dAlpha, dBeta float64) {
	c.Alpha += dAlpha
	c.Beta += dBeta
	c.clamp()
	c.viewDirty = true
}

// Zoom scales the orbit radius; factors below 1 move closer.
func (c *Camera) Zoom(factor float64) {
	c.Radius *= factor
	c.clamp()
	c.viewDirty = true
}

func (c *Camera) clamp() {
	c.Alpha = math.Mod(c.Alpha, 2*math.Pi)
	c.Beta = math.Max(minBeta, math.Min(math.Pi-minBeta, c.Beta))
	if c.MinRadius > 0 {
		c.Radius = math.Max(c.MinRadius, c.Radius)
	}
	if c.MaxRadius > 0 {
		c.Radius = math.Min(c.MaxRadius, c.Radius)
	}
}

// Position returns the camera's location in world space.
func (c *Camera) Position() math3d.Vec3 {
	sb := math.Sin(c.Beta)
	return c.Target.Add(math3d.V3(
		c.Radius*math.Cos(c.Alpha)*sb,
		c.Radius*math.Cos(c.Beta),
		c.Radius*math.Sin(c.Alpha)*sb,
	))
}

func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets width / height of the image plane. Terminal
// framebuffers use half-block cells, so one pixel is about square.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Forward is the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position()).Normalize()
}

func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position(), c.Target, math3d.Up())
		c.viewDirty = false
		c.vpDirty = true
	}
	return c.viewMatrix
}

func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
		c.vpDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	proj, view := c.ProjectionMatrix(), c.ViewMatrix()
	if c.vpDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.vpDirty = false
	}
	return c.viewProjMatrix
}

// WorldToScreen projects a world point to pixel coordinates. visible is
// false for points behind the camera or outside the view volume.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight)
	return x, y, ndc.Z, true
}
