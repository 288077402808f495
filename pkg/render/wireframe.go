package render

import (
	"github.com/taigrr/coinring/pkg/math3d"
)

// Wireframe draws unshaded 3D lines over the framebuffer, without depth.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{camera: camera, fb: fb}
}

func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	drawLine3D(w.camera, w.fb, p1, p2, color)
}

// drawLine3D projects a world-space segment and draws it. The segment is
// cut at the near plane so an endpoint behind the camera does not flip
// across the screen.
func drawLine3D(cam *Camera, fb *Framebuffer, a, b math3d.Vec3, color Color) {
	vp := cam.ViewProjectionMatrix()
	ca := vp.MulVec4(math3d.V4FromV3(a, 1))
	cb := vp.MulVec4(math3d.V4FromV3(b, 1))

	near := cam.Near
	if ca.W < near && cb.W < near {
		return
	}
	if ca.W < near {
		ca = clipToW(cb, ca, near)
	} else if cb.W < near {
		cb = clipToW(ca, cb, near)
	}

	w, h := float64(fb.Width), float64(fb.Height)
	fb.DrawLineF(
		(ca.X/ca.W+1)*0.5*w, (1-ca.Y/ca.W)*0.5*h,
		(cb.X/cb.W+1)*0.5*w, (1-cb.Y/cb.W)*0.5*h,
		color,
	)
}

// clipToW moves out along the segment from in until its W equals w.
func clipToW(in, out math3d.Vec4, w float64) math3d.Vec4 {
	t := (in.W - w) / (in.W - out.W)
	return math3d.V4(
		in.X+(out.X-in.X)*t,
		in.Y+(out.Y-in.Y)*t,
		in.Z+(out.Z-in.Z)*t,
		w,
	)
}

// DrawAxes draws the world X, Y and Z axes from the origin in red, green
// and blue, each with an arrowhead and a letter near its tip.
func (w *Wireframe) DrawAxes(size float64) {
	head, label := 0.05*size, 0.9*size
	o := math3d.Zero3()

	x := math3d.V3(size, 0, 0)
	w.DrawLine3D(o, x, ColorRed)
	w.DrawLine3D(x, math3d.V3(size-head, head, 0), ColorRed)
	w.DrawLine3D(x, math3d.V3(size-head, -head, 0), ColorRed)
	w.drawLabel('X', math3d.V3(label, -head, 0), ColorRed)

	y := math3d.V3(0, size, 0)
	w.DrawLine3D(o, y, ColorGreen)
	w.DrawLine3D(y, math3d.V3(-head, size-head, 0), ColorGreen)
	w.DrawLine3D(y, math3d.V3(head, size-head, 0), ColorGreen)
	w.drawLabel('Y', math3d.V3(0, label, -head), ColorGreen)

	z := math3d.V3(0, 0, size)
	w.DrawLine3D(o, z, ColorBlue)
	w.DrawLine3D(z, math3d.V3(0, -head, size-head), ColorBlue)
	w.DrawLine3D(z, math3d.V3(0, head, size-head), ColorBlue)
	w.drawLabel('Z', math3d.V3(0, head, label), ColorBlue)
}

// glyphs are letter strokes in a unit box, y down.
var glyphs = map[rune][][4]float64{
	'X': {{0, 0, 1, 1}, {1, 0, 0, 1}},
	'Y': {{0, 0, 0.5, 0.5}, {1, 0, 0.5, 0.5}, {0.5, 0.5, 0.5, 1}},
	'Z': {{0, 0, 1, 0}, {1, 0, 0, 1}, {0, 1, 1, 1}},
}

// labelPixels is the glyph height on screen.
const labelPixels = 4

// drawLabel draws a screen-aligned letter centered on the projection of pos.
func (w *Wireframe) drawLabel(r rune, pos math3d.Vec3, color Color) {
	sx, sy, _, ok := w.camera.WorldToScreen(pos, w.fb.Width, w.fb.Height)
	if !ok {
		return
	}
	const s = labelPixels
	ox, oy := sx-s/2, sy-s/2
	for _, st := range glyphs[r] {
		w.fb.DrawLineF(ox+st[0]*s, oy+st[1]*s, ox+st[2]*s, oy+st[3]*s, color)
	}
}
