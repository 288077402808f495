package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"github.com/taigrr/coinring/pkg/coin"
)

// snapshotView is the viewer state a snapshot is taken with.
type snapshotView struct {
	spin      float64 // degrees
	zoom      float64
	plain     bool
	noBump    bool
	wireframe bool
	axes      bool
	preview   bool
}

func (v *snapshotView) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&v.spin, "spin", initialSpin*180/math.Pi, "ring rotation about the vertical axis, degrees")
	f.Float64Var(&v.zoom, "zoom", 1, "camera distance factor; below 1 is closer")
	f.BoolVar(&v.plain, "plain", false, "shade without the texture")
	f.BoolVar(&v.noBump, "no-bump", false, "skip normal mapping")
	f.BoolVar(&v.wireframe, "wireframe", false, "draw triangle edges only")
	f.BoolVar(&v.axes, "axes", false, "draw the world axes")
	f.BoolVar(&v.preview, "preview", false, "show the flat source coin inside the ring")
}

func (v snapshotView) apply(s *Scene) {
	s.Spin = v.spin * math.Pi / 180
	if v.zoom > 0 && v.zoom != 1 {
		s.Zoom(v.zoom)
	}
	s.Textured = !v.plain
	if v.noBump {
		s.Bumped = false
	}
	s.Wireframe = v.wireframe
	s.Axes = v.axes
	s.Preview = v.preview
}

// parseFrame parses "WxH".
func parseFrame(s string) (w, h int, err error) {
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("frame %q: want WxH: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("frame %q: size must be positive", s)
	}
	return w, h, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E8C547"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")).Width(10)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EDEDED"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5A5A7A")).
			Padding(0, 1)
)

// summary renders a titled box of label/value rows.
func summary(title string, rows [][2]string) string {
	lines := []string{titleStyle.Render(title)}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(r[0]), valueStyle.Render(r[1])))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func modelRows(src string, m *coin.Model, took time.Duration) [][2]string {
	rows := [][2]string{
		{"source", src},
		{"texture", fmt.Sprintf("%dx%d", m.Diffuse.Width, m.Diffuse.Height)},
		{"bump", "none"},
		{"mesh", fmt.Sprintf("%d vertices, %d triangles", m.Mesh.VertexCount(), m.Mesh.TriangleCount())},
		{"took", took.Round(time.Millisecond).String()},
	}
	if m.Source != nil {
		rows[0][1] = fmt.Sprintf("%s (%dx%d)", src, m.Source.Width, m.Source.Height)
	}
	if m.Bump != nil {
		rows[2][1] = fmt.Sprintf("%dx%d", m.Bump.Width, m.Bump.Height)
	}
	return rows
}

func bakeSummary(src string, m *coin.Model, files []string, took time.Duration) string {
	rows := modelRows(src, m, took)
	for _, f := range files {
		rows = append(rows, [2]string{"wrote", f})
	}
	return summary("Ring baked", rows)
}

func snapshotSummary(src string, m *coin.Model, out string, w, h int, took time.Duration) string {
	rows := append(modelRows(src, m, took), [2]string{"wrote", fmt.Sprintf("%s (%dx%d)", out, w, h)})
	return summary("Snapshot saved", rows)
}
