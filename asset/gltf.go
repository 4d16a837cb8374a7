package asset

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"scene-renderer/math"
)

// importGLTF reads every triangle primitive of a .gltf or .glb file. Node
// transforms are not applied; the model offset is expected to place the
// geometry.
func importGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)
	s := &Scene{}

	// image index -> texture reference stored in material properties
	imageRefs := make([]string, len(doc.Images))
	for i, img := range doc.Images {
		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				return nil, fmt.Errorf("gltf image %d: %w", i, err)
			}
			imageRefs[i] = s.embed(raw)
		case img.IsEmbeddedResource():
			raw, err := img.MarshalData()
			if err != nil {
				return nil, fmt.Errorf("gltf image %d: %w", i, err)
			}
			imageRefs[i] = s.embed(raw)
		case img.URI != "":
			imageRefs[i] = filepath.Join(dir, img.URI)
		}
	}

	for _, gm := range doc.Materials {
		props := Properties{PropName: gm.Name}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			props[PropDiffuseColour] = math.NewVec3(float32(cf[0]), float32(cf[1]), float32(cf[2]))
			if pbr.BaseColorTexture != nil {
				idx := pbr.BaseColorTexture.Index
				if idx < len(doc.Textures) && doc.Textures[idx].Source != nil {
					if src := *doc.Textures[idx].Source; src < len(imageRefs) && imageRefs[src] != "" {
						props[PropDiffuseTexture] = imageRefs[src]
					}
				}
			}
		}
		s.Materials = append(s.Materials, props)
	}

	defaultMaterial := -1
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			mesh, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("gltf mesh %d primitive %d: %w", mi, pi, err)
			}
			if mesh == nil {
				continue
			}
			mesh.Name = fmt.Sprintf("%s_p%d", gm.Name, pi)
			if prim.Material != nil && *prim.Material < len(s.Materials) {
				mesh.MaterialIndex = *prim.Material
			} else {
				if defaultMaterial < 0 {
					defaultMaterial = len(s.Materials)
					s.Materials = append(s.Materials, Properties{})
				}
				mesh.MaterialIndex = defaultMaterial
			}
			s.Meshes = append(s.Meshes, mesh)
		}
	}
	return s, nil
}

func (s *Scene) embed(raw []byte) string {
	s.Textures = append(s.Textures, raw)
	return fmt.Sprintf("*%d", len(s.Textures)-1)
}

// readPrimitive returns nil for point and line primitives.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*MeshData, error) {
	switch prim.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	switch prim.Mode {
	case gltf.PrimitiveTriangleStrip:
		indices = stripToTriangles(indices)
	case gltf.PrimitiveTriangleFan:
		indices = fanToTriangles(indices)
	}

	m := &MeshData{
		Vertices: make([]float32, 0, len(positions)*3),
		Normals:  make([]float32, 0, len(positions)*3),
		UVs:      make([]float32, 0, len(positions)*2),
		Indices:  indices,
	}
	for i, p := range positions {
		m.Vertices = append(m.Vertices, p[0], p[1], p[2])
		if i < len(normals) {
			m.Normals = append(m.Normals, normals[i][0], normals[i][1], normals[i][2])
		}
		if i < len(uvs) {
			m.UVs = append(m.UVs, uvs[i][0], uvs[i][1])
		} else {
			m.UVs = append(m.UVs, 0, 0)
		}
	}
	if len(normals) < len(positions) {
		m.Normals = generateNormals(m.Vertices, m.Indices)
	}
	return m, nil
}

func stripToTriangles(strip []uint32) []uint32 {
	var out []uint32
	for i := 0; i+2 < len(strip); i++ {
		if i%2 == 0 {
			out = append(out, strip[i], strip[i+1], strip[i+2])
		} else {
			out = append(out, strip[i+1], strip[i], strip[i+2])
		}
	}
	return out
}

func fanToTriangles(fan []uint32) []uint32 {
	var out []uint32
	for i := 1; i+1 < len(fan); i++ {
		out = append(out, fan[0], fan[i], fan[i+1])
	}
	return out
}

// generateNormals accumulates area-weighted face normals per vertex.
func generateNormals(vertices []float32, indices []uint32) []float32 {
	n := len(vertices) / 3
	accum := make([]math.Vec3, n)
	at := func(i uint32) math.Vec3 {
		return math.NewVec3(vertices[i*3], vertices[i*3+1], vertices[i*3+2])
	}
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		v0 := at(i0)
		face := at(i1).Sub(v0).Cross(at(i2).Sub(v0))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}
	out := make([]float32, 0, n*3)
	for _, a := range accum {
		a = a.Normalize()
		out = append(out, a.X, a.Y, a.Z)
	}
	return out
}
