package models

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.LoadTextures {
		t.Error("LoadTextures should default to true")
	}
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestSaveGLBRoundTrip(t *testing.T) {
	ring, err := NewRing(DefaultRingOptions())
	if err != nil {
		t.Fatalf("NewRing: %v", err)
	}
	ring.SetMaterialMaps(
		solidImage(8, 4, color.NRGBA{200, 180, 40, 255}),
		solidImage(8, 4, color.NRGBA{128, 128, 255, 255}),
	)

	path := filepath.Join(t.TempDir(), "ring.glb")
	if err := SaveGLB(path, ring); err != nil {
		t.Fatalf("SaveGLB: %v", err)
	}

	got, err := LoadGLB(path)
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}
	if got.VertexCount() != ring.VertexCount() {
		t.Errorf("VertexCount = %d, want %d", got.VertexCount(), ring.VertexCount())
	}
	if got.TriangleCount() != ring.TriangleCount() {
		t.Errorf("TriangleCount = %d, want %d", got.TriangleCount(), ring.TriangleCount())
	}

	for i := range ring.Vertices {
		want, have := ring.Vertices[i], got.Vertices[i]
		if d := want.Position.Sub(have.Position).Len(); d > 1e-6 {
			t.Fatalf("vertex %d moved by %v", i, d)
		}
		if d := want.UV.Sub(have.UV); math.Abs(d.X) > 1e-6 || math.Abs(d.Y) > 1e-6 {
			t.Fatalf("vertex %d UV %v, want %v", i, have.UV, want.UV)
		}
	}
	for i := range ring.Faces {
		if ring.Faces[i].V != got.Faces[i].V {
			t.Fatalf("face %d = %v, want %v", i, got.Faces[i].V, ring.Faces[i].V)
		}
	}

	mat := got.GetMaterial(got.GetFaceMaterial(0))
	if mat == nil {
		t.Fatal("faces lost their material")
	}
	if !mat.HasTexture() || mat.NormalMap == nil {
		t.Fatalf("material %q lost its maps", mat.Name)
	}
	r, g, b, _ := mat.BaseMap.At(3, 2).RGBA()
	if r>>8 != 200 || g>>8 != 180 || b>>8 != 40 {
		t.Errorf("base map pixel = (%d, %d, %d)", r>>8, g>>8, b>>8)
	}

	_, mat, err = LoadGLBMaterial(path)
	if err != nil {
		t.Fatalf("LoadGLBMaterial: %v", err)
	}
	if mat == nil || mat.BaseMap.Bounds().Dx() != 8 {
		t.Errorf("LoadGLBMaterial material = %+v", mat)
	}
}

func TestSaveGLBEmptyMesh(t *testing.T) {
	if err := SaveGLB(filepath.Join(t.TempDir(), "x.glb"), NewMesh("empty")); err == nil {
		t.Error("expected error for a mesh without faces")
	}
}
