package models

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"maps"
	"slices"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// SaveGLB writes mesh as a binary glTF file with one primitive per
// material. Material base and normal maps are embedded as PNG.
func SaveGLB(path string, mesh *Mesh) error {
	doc, err := Document(mesh)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}

// Document converts mesh to a glTF document with a single node.
func Document(mesh *Mesh) (*gltf.Document, error) {
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("mesh %q has no faces", mesh.Name)
	}

	doc := gltf.NewDocument()

	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	uvs := make([][2]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = [3]float32{float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z)}
		normals[i] = [3]float32{float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z)}
		uvs[i] = [2]float32{float32(v.UV.X), float32(1 - v.UV.Y)}
	}
	attributes := map[string]int{
		gltf.POSITION:   modeler.WritePosition(doc, positions),
		gltf.NORMAL:     modeler.WriteNormal(doc, normals),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
	}

	materials := make([]int, len(mesh.Materials))
	for i := range mesh.Materials {
		idx, err := writeMaterial(doc, &mesh.Materials[i])
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", mesh.Materials[i].Name, err)
		}
		materials[i] = idx
	}

	groups := make(map[int][]uint32)
	for _, f := range mesh.Faces {
		mat := f.Material
		if mat < 0 || mat >= len(mesh.Materials) {
			mat = -1
		}
		groups[mat] = append(groups[mat], uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}

	gm := &gltf.Mesh{Name: mesh.Name}
	for _, mat := range slices.Sorted(maps.Keys(groups)) {
		prim := &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(doc, groups[mat])),
			Attributes: attributes,
		}
		if mat >= 0 {
			prim.Material = gltf.Index(materials[mat])
		}
		gm.Primitives = append(gm.Primitives, prim)
	}

	doc.Meshes = append(doc.Meshes, gm)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: mesh.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return doc, nil
}

func writeMaterial(doc *gltf.Document, m *Material) (int, error) {
	gm := &gltf.Material{
		Name:                 m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{},
	}
	if m.BaseMap != nil {
		tex, err := writeTexture(doc, m.Name+"-base", m.BaseMap)
		if err != nil {
			return 0, err
		}
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: tex}
	}
	if m.NormalMap != nil {
		tex, err := writeTexture(doc, m.Name+"-normal", m.NormalMap)
		if err != nil {
			return 0, err
		}
		gm.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(tex)}
	}
	doc.Materials = append(doc.Materials, gm)
	return len(doc.Materials) - 1, nil
}

func writeTexture(doc *gltf.Document, name string, img image.Image) (int, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("encode %s: %w", name, err)
	}
	imgIdx, err := modeler.WriteImage(doc, name+".png", "image/png", &buf)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", name, err)
	}
	doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(imgIdx)})
	return len(doc.Textures) - 1, nil
}
