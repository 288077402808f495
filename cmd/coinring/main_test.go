package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/taigrr/coinring/pkg/coin"
	"github.com/taigrr/coinring/pkg/models"
	"github.com/taigrr/coinring/pkg/remap"
)

func parseOptions(t *testing.T, args ...string) *options {
	t.Helper()
	o := &options{}
	cmd := &cobra.Command{Use: "test"}
	o.register(cmd)
	if err := cmd.PersistentFlags().Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return o
}

func TestOptionsDefaults(t *testing.T) {
	cfg, err := parseOptions(t).config("coin.png")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	def := coin.DefaultConfig()
	if cfg.Width != def.Width || cfg.Height != def.Height {
		t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, def.Width, def.Height)
	}
	if cfg.Filter != remap.FilterNearest || cfg.Edge != remap.EdgeClamp || cfg.Mesh != coin.MeshAnalytic {
		t.Errorf("modes = %v %v %v", cfg.Filter, cfg.Edge, cfg.Mesh)
	}
	if cfg.Ring != def.Ring {
		t.Errorf("ring = %+v, want %+v", cfg.Ring, def.Ring)
	}
	if cfg.Diffuse != coin.FileSource("coin.png") || cfg.Bump != nil {
		t.Errorf("sources = %v, %v", cfg.Diffuse, cfg.Bump)
	}
}

func TestOptionsConfig(t *testing.T) {
	cfg, err := parseOptions(t,
		"--bump", "normal.png",
		"--width", "256", "--height", "128",
		"--filter", "bilinear", "--edge", "transparent",
		"--workers", "3", "--square",
		"--inner", "1.5", "--outer", "2.5", "--ring-height", "0.5", "--tessellation", "32",
		"--mesh", "csg", "--csg-cells", "40",
	).config("coin.png")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Bump != coin.FileSource("normal.png") {
		t.Errorf("bump = %v", cfg.Bump)
	}
	if cfg.Width != 256 || cfg.Height != 128 || cfg.Workers != 3 || !cfg.SquareSource {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Filter != remap.FilterBilinear || cfg.Edge != remap.EdgeTransparent {
		t.Errorf("filter, edge = %v, %v", cfg.Filter, cfg.Edge)
	}
	if cfg.Mesh != coin.MeshCSG || cfg.CSGCells != 40 {
		t.Errorf("mesh = %v cells %d", cfg.Mesh, cfg.CSGCells)
	}
	r := cfg.Ring
	if r.InnerDiameter != 1.5 || r.OuterDiameter != 2.5 || r.Height != 0.5 || r.Tessellation != 32 {
		t.Errorf("ring = %+v", r)
	}
}

func TestOptionsConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"filter", []string{"--filter", "cubic"}, remap.ErrInvalidConfiguration},
		{"edge", []string{"--edge", "wrap"}, remap.ErrInvalidConfiguration},
		{"width", []string{"--width", "0"}, remap.ErrInvalidConfiguration},
		{"ring", []string{"--inner", "3"}, models.ErrInvalidRing},
		{"mesh", []string{"--mesh", "voxel"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOptions(t, tt.args...).config("coin.png")
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"640x480", 640, 480, false},
		{"32X16", 32, 16, false},
		{"0x10", 0, 0, true},
		{"wide", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := parseFrame(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

// runCLI runs the root command on a small gray coin written to a temp dir.
func runCLI(t *testing.T, args ...string) (string, string) {
	t.Helper()
	t.Cleanup(func() { coin.SetLogger(nil) })

	dir := t.TempDir()
	src := filepath.Join(dir, "coin.png")
	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, grayImage(16, 16, 100)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	full := append([]string{args[0], src,
		"--width", "32", "--height", "16", "--tessellation", "16", "--log-level", "error"},
		args[1:]...)
	for i, a := range full {
		full[i] = strings.ReplaceAll(a, "$DIR", dir)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(full)
	root.SetOut(&out)
	root.SetErr(&out)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return dir, out.String()
}

func TestBakeCommand(t *testing.T) {
	dir, out := runCLI(t, "bake", "--out", "$DIR/out", "--glb", "$DIR/ring.glb")

	for _, name := range []string{"out/diffuse.png", "ring.glb"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "bump.png")); !os.IsNotExist(err) {
		t.Errorf("bump.png written without --bump: %v", err)
	}
	if !strings.Contains(out, "Ring baked") || !strings.Contains(out, "diffuse.png") {
		t.Errorf("summary missing:\n%s", out)
	}

	mesh, err := models.LoadGLB(filepath.Join(dir, "ring.glb"))
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}
	if mesh.TriangleCount() != 8*16 {
		t.Errorf("triangles = %d, want %d", mesh.TriangleCount(), 8*16)
	}

	// The baked ring renders without the source image.
	shot := filepath.Join(dir, "baked.png")
	root := newRootCmd()
	root.SetArgs([]string{"snapshot", filepath.Join(dir, "ring.glb"), "--out", shot, "--frame", "20x10"})
	root.SetOut(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("snapshot of glb: %v", err)
	}
	if _, err := os.Stat(shot); err != nil {
		t.Error(err)
	}
}

func TestSnapshotCommand(t *testing.T) {
	dir, out := runCLI(t, "snapshot", "--out", "$DIR/shot.png", "--frame", "40x30", "--axes")

	f, err := os.Open(filepath.Join(dir, "shot.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("snapshot = %dx%d, want 40x30", b.Dx(), b.Dy())
	}
	if !strings.Contains(out, "Snapshot saved") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestCommandArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"bake"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Error("bake without an image should fail")
	}
}
