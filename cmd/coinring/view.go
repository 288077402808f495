package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/coinring/pkg/coin"
)

// RotationAxis is one angle driven by a velocity that springs back to rest,
// so a drag or key press leaves the ring coasting to a stop.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

func NewRotationAxis(fps int) RotationAxis {
	// Critically damped: the velocity decays without overshooting.
	return RotationAxis{velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Update advances one frame.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

const (
	dragStrength = 0.03 // radians of velocity per cell dragged
	keyImpulse   = 0.05
	zoomStep     = 0.9
)

// viewer maps input events onto a Scene.
type viewer struct {
	scene   *Scene
	fps     int
	spin    RotationAxis // ring yaw
	tilt    RotationAxis // camera elevation
	showHUD bool

	dragging     bool
	lastX, lastY int
}

func newViewer(s *Scene, fps int) *viewer {
	v := &viewer{scene: s, fps: fps, showHUD: true}
	v.reset()
	return v
}

func (v *viewer) reset() {
	v.scene.Reset()
	v.spin = NewRotationAxis(v.fps)
	v.spin.Position = v.scene.Spin
	v.tilt = NewRotationAxis(v.fps)
}

// step advances the spin springs by one frame.
func (v *viewer) step() {
	v.spin.Update()
	v.scene.Spin = v.spin.Position

	prev := v.tilt.Position
	v.tilt.Update()
	if d := v.tilt.Position - prev; d != 0 {
		v.scene.Orbit(0, d)
	}
}

// handle applies one event and reports whether the viewer should quit.
func (v *viewer) handle(ev uv.Event) (quit bool) {
	s := v.scene
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c", "q"):
			return true
		case ev.MatchString("a", "left"):
			v.spin.Velocity -= keyImpulse
		case ev.MatchString("d", "right"):
			v.spin.Velocity += keyImpulse
		case ev.MatchString("w", "up"):
			v.tilt.Velocity -= keyImpulse
		case ev.MatchString("s", "down"):
			v.tilt.Velocity += keyImpulse
		case ev.MatchString("+", "="):
			s.Zoom(zoomStep)
		case ev.MatchString("-", "_"):
			s.Zoom(1 / zoomStep)
		case ev.MatchString("t"):
			s.Textured = !s.Textured
		case ev.MatchString("b"):
			s.Bumped = !s.Bumped
		case ev.MatchString("x"):
			s.Wireframe = !s.Wireframe
		case ev.MatchString("g"):
			s.Axes = !s.Axes
		case ev.MatchString("p"):
			s.Preview = !s.Preview
		case ev.MatchString("r"):
			v.reset()
		case ev.MatchString("?", "shift+/"):
			v.showHUD = !v.showHUD
		}

	case uv.MouseClickEvent:
		v.dragging = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.dragging = false

	case uv.MouseMotionEvent:
		if v.dragging {
			v.spin.Velocity += float64(ev.X-v.lastX) * dragStrength
			v.tilt.Velocity -= float64(ev.Y-v.lastY) * dragStrength
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			s.Zoom(zoomStep)
		case uv.MouseWheelDown:
			s.Zoom(1 / zoomStep)
		}
	}
	return false
}

// runView shows model in the terminal until the user quits or ctx ends.
// Each terminal cell holds two pixels stacked vertically.
func runView(ctx context.Context, model *coin.Model, title string, fps int) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h") // any-event mouse, SGR coordinates

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scene := NewScene(model, width, height*2)
	v := newViewer(scene, fps)
	hud := NewHUD(title, model.Mesh.TriangleCount())

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ws, isResize := ev.(uv.WindowSizeEvent); isResize {
				width, height = ws.Width, ws.Height
				term.Erase()
				term.Resize(width, height)
				scene.Resize(width, height*2)
				continue
			}
			if v.handle(ev) {
				return nil
			}

		case <-ticker.C:
			v.step()
			scene.Render()
			area := uv.Rectangle(image.Rect(0, 0, width, height))
			scene.Framebuffer().Draw(term, area)
			hud.Tick()
			if v.showHUD {
				hud.Draw(term, area, scene.Status())
			}
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
