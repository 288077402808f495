package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/coinring/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals when the file has none.
	CalculateNormals bool
	// LoadTextures decodes base color and normal textures into materials.
	LoadTextures bool
}

func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		LoadTextures:     true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file with its textures.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load reads every triangle primitive of every mesh in the document into
// a single Mesh. Materials are carried over by index.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for i, mat := range doc.Materials {
		m, err := l.material(doc, filepath.Dir(path), mat)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		mesh.Materials = append(mesh.Materials, m)
	}

	hasNormals := true
	for _, m := range doc.Meshes {
		ok, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		hasNormals = hasNormals && ok
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateTangents()
	mesh.CalculateBounds()
	return mesh, nil
}

func (l *GLTFLoader) material(doc *gltf.Document, dir string, mat *gltf.Material) (Material, error) {
	m := DefaultMaterial(mat.Name)
	if !l.LoadTextures {
		return m, nil
	}

	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		img, err := textureImage(doc, dir, pbr.BaseColorTexture.Index)
		if err != nil {
			return m, fmt.Errorf("base color texture: %w", err)
		}
		m.BaseMap = img
	}
	if nt := mat.NormalTexture; nt != nil && nt.Index != nil {
		img, err := textureImage(doc, dir, *nt.Index)
		if err != nil {
			return m, fmt.Errorf("normal texture: %w", err)
		}
		m.NormalMap = img
	}
	return m, nil
}

// processMesh appends the triangle primitives of m and reports whether all
// of them carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	hasNormals := true
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Accessor(doc, idx); err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
		} else {
			hasNormals = false
		}

		var uvs []math3d.Vec2
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Accessor(doc, idx); err != nil {
				return false, fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// glTF puts v=0 at the top of the image.
				v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}
		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{Material: material}
			for j := range 3 {
				if indices[i+j] >= len(positions) {
					return false, fmt.Errorf("index %d out of range", indices[i+j])
				}
				f.V[j] = base + indices[i+j]
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}
	return hasNormals, nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, len(floats)/3)
	for i := range out {
		out[i] = math3d.V3(floats[3*i], floats[3*i+1], floats[3*i+2])
	}
	return out, nil
}

func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2, len(floats)/2)
	for i := range out {
		out[i] = math3d.V2(floats[2*i], floats[2*i+1])
	}
	return out, nil
}

// readFloats reads a float32 accessor of the given type into a flat slice
// of count*n values.
func readFloats(doc *gltf.Document, accessorIdx int, typ gltf.AccessorType, n int) ([]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	acc := doc.Accessors[accessorIdx]
	if acc.Type != typ {
		return nil, fmt.Errorf("expected %v, got %v", typ, acc.Type)
	}
	if acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", acc.ComponentType)
	}

	data, stride, err := accessorBytes(doc, acc, 4*n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, acc.Count*n)
	for i := range acc.Count {
		off := i * stride
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[off+4*j:])
			out = append(out, float64(math.Float32frombits(bits)))
		}
	}
	return out, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	acc := doc.Accessors[accessorIdx]

	var size int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type %v", acc.ComponentType)
	}

	data, stride, err := accessorBytes(doc, acc, size)
	if err != nil {
		return nil, err
	}
	out := make([]int, acc.Count)
	for i := range out {
		b := data[i*stride:]
		switch size {
		case 1:
			out[i] = int(b[0])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			out[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return out, nil
}

// accessorBytes returns the accessor's bytes starting at its first element
// and the stride between elements. elemSize is used when the buffer view
// is tightly packed.
func accessorBytes(doc *gltf.Document, acc *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if acc.BufferView == nil {
		return nil, 0, errors.New("accessor has no buffer view")
	}
	view := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[view.Buffer]
	if buf.URI != "" && len(buf.Data) == 0 {
		return nil, 0, errors.New("external buffers are not supported")
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + acc.ByteOffset
	end := start
	if acc.Count > 0 {
		end += (acc.Count-1)*stride + elemSize
	}
	if end > len(buf.Data) || end > view.ByteOffset+view.ByteLength {
		return nil, 0, fmt.Errorf("accessor reads past its buffer view (%d > %d)", end, len(buf.Data))
	}
	return buf.Data[start:end], stride, nil
}

// textureImage decodes the image behind texture index idx, embedded or
// next to the document.
func textureImage(doc *gltf.Document, dir string, idx int) (image.Image, error) {
	if idx < 0 || idx >= len(doc.Textures) || doc.Textures[idx].Source == nil {
		return nil, fmt.Errorf("texture %d has no source", idx)
	}
	src := *doc.Textures[idx].Source
	if src < 0 || src >= len(doc.Images) {
		return nil, fmt.Errorf("image %d out of range", src)
	}

	data, err := imageBytes(doc, dir, doc.Images[src])
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", src, err)
	}
	return img, nil
}

func imageBytes(doc *gltf.Document, dir string, img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		data := doc.Buffers[bv.Buffer].Data
		if bv.ByteOffset+bv.ByteLength > len(data) {
			return nil, errors.New("image buffer view out of range")
		}
		return data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
	}
	if img.URI == "" {
		return nil, errors.New("image has neither buffer view nor uri")
	}
	data, err := os.ReadFile(filepath.Join(dir, img.URI))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// LoadGLBMaterial loads a GLB file and returns the mesh plus its first
// material with a base color texture, or nil if there is none.
func LoadGLBMaterial(path string) (*Mesh, *Material, error) {
	mesh, err := LoadGLB(path)
	if err != nil {
		return nil, nil, err
	}
	for i := range mesh.Materials {
		if mesh.Materials[i].HasTexture() {
			return mesh, &mesh.Materials[i], nil
		}
	}
	return mesh, nil, nil
}
