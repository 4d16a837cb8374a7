// Package asset imports mesh files into CPU-side scenes. It never touches the
// GPU; scene.NewAssetModel uploads the result.
package asset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"scene-renderer/math"
)

var ErrUnsupportedFormat = errors.New("unsupported asset format")

// PostProcess selects optional import steps.
type PostProcess uint8

const (
	// Triangulate splits polygons into triangles.
	Triangulate PostProcess = 1 << iota
	// OptimizeMeshes merges meshes that share a material.
	OptimizeMeshes
)

// Material property keys.
const (
	// PropDiffuseTexture holds a file path, or "*N" for Scene.Textures[N].
	PropDiffuseTexture = "$tex.file"
	// PropDiffuseColour holds a math.Vec3.
	PropDiffuseColour = "$clr.diffuse"
	PropName          = "?mat.name"
)

// Properties is the key/value bag describing one imported material.
type Properties map[string]any

func (p Properties) DiffuseTexture() (string, bool) {
	s, ok := p[PropDiffuseTexture].(string)
	return s, ok && s != ""
}

func (p Properties) DiffuseColour() (math.Vec3, bool) {
	c, ok := p[PropDiffuseColour].(math.Vec3)
	return c, ok
}

// EmbeddedIndex parses a "*N" texture reference.
func EmbeddedIndex(ref string) (int, bool) {
	if !strings.HasPrefix(ref, "*") {
		return 0, false
	}
	n, err := strconv.Atoi(ref[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// MeshData is flattened triangle geometry. Vertices and Normals hold three
// floats per vertex and UVs two.
type MeshData struct {
	Name          string
	Vertices      []float32
	Normals       []float32
	UVs           []float32
	Indices       []uint32
	MaterialIndex int
}

func (m *MeshData) VertexCount() int { return len(m.Vertices) / 3 }

// Scene is the result of an import.
type Scene struct {
	Materials []Properties
	Meshes    []*MeshData
	// Textures holds encoded images embedded in the source file.
	Textures [][]byte
}

// Import loads the file at path, choosing the reader by extension.
func Import(path string, flags PostProcess) (*Scene, error) {
	var (
		s   *Scene
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		s, err = importGLTF(path)
	case ".obj":
		s, err = importOBJ(path, flags)
	default:
		return nil, fmt.Errorf("import %q: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	if len(s.Meshes) == 0 {
		return nil, fmt.Errorf("import %q: no geometry", path)
	}
	if flags&OptimizeMeshes != 0 {
		s.mergeByMaterial()
	}
	return s, nil
}

// mergeByMaterial joins meshes that reference the same material, keeping the
// order in which materials first appear.
func (s *Scene) mergeByMaterial() {
	var merged []*MeshData
	byMaterial := make(map[int]*MeshData)

	for _, m := range s.Meshes {
		dst, ok := byMaterial[m.MaterialIndex]
		if !ok {
			cp := *m
			cp.Vertices = append([]float32(nil), m.Vertices...)
			cp.Normals = append([]float32(nil), m.Normals...)
			cp.UVs = append([]float32(nil), m.UVs...)
			cp.Indices = append([]uint32(nil), m.Indices...)
			byMaterial[m.MaterialIndex] = &cp
			merged = append(merged, &cp)
			continue
		}
		base := uint32(dst.VertexCount())
		dst.Vertices = append(dst.Vertices, m.Vertices...)
		dst.Normals = append(dst.Normals, m.Normals...)
		dst.UVs = append(dst.UVs, m.UVs...)
		for _, i := range m.Indices {
			dst.Indices = append(dst.Indices, base+i)
		}
	}
	s.Meshes = merged
}
