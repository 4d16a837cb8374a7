package scene

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"scene-renderer/asset"
	"scene-renderer/gpu"
	"scene-renderer/math"
)

// ImportFlags are the post-processing steps applied to every model file.
const ImportFlags = asset.Triangulate | asset.OptimizeMeshes

// Model is a fixed set of meshes plus a local offset applied on top of each
// entity's pose. One Model is shared by every entity that references it.
type Model struct {
	meshes    []*Mesh
	materials []*Material

	pos, rot, scl math.Vec3
}

// NewModel takes ownership of meshes and their materials.
func NewModel(meshes ...*Mesh) *Model {
	m := &Model{meshes: meshes, scl: math.Vec3One}
	seen := make(map[*Material]bool)
	for _, mesh := range meshes {
		if mesh.Material != nil && !seen[mesh.Material] {
			seen[mesh.Material] = true
			m.materials = append(m.materials, mesh.Material)
		}
	}
	return m
}

// NewAssetModel uploads an imported scene. Relative texture paths resolve
// against baseDir.
func NewAssetModel(dev gpu.Device, s *asset.Scene, baseDir string, logger *log.Logger) (*Model, error) {
	materials := make([]*Material, 0, len(s.Materials))
	release := func() {
		for _, mat := range materials {
			mat.Release()
		}
	}
	for _, props := range s.Materials {
		mat, err := NewAssetMaterial(dev, props, baseDir, s.Textures, logger)
		if err != nil {
			release()
			return nil, err
		}
		materials = append(materials, mat)
	}

	m := &Model{materials: materials, scl: math.Vec3One}
	for i, md := range s.Meshes {
		if md.MaterialIndex < 0 || md.MaterialIndex >= len(materials) {
			m.Release()
			return nil, fmt.Errorf("mesh %d: material index %d of %d", i, md.MaterialIndex, len(materials))
		}
		m.meshes = append(m.meshes,
			NewMesh(dev, md.Vertices, md.UVs, md.Normals, md.Indices, materials[md.MaterialIndex]))
	}
	return m, nil
}

// LoadModel imports the file at path and uploads it.
func LoadModel(dev gpu.Device, path string, logger *log.Logger) (*Model, error) {
	s, err := asset.Import(path, ImportFlags)
	if err != nil {
		return nil, err
	}
	return NewAssetModel(dev, s, filepath.Dir(path), logger)
}

var (
	quadVertices = []float32{.5, .5, 0, -.5, .5, 0, -.5, -.5, 0, .5, -.5, 0}
	quadUVs      = []float32{1, 1, 0, 1, 0, 0, 1, 0}
	quadNormals  = make([]float32, 12)
	// each triangle appears in both windings
	quadIndices = []uint32{0, 1, 2, 2, 3, 0, 0, 2, 1, 2, 0, 3}
)

// NewQuadModel builds the unit quad used for UI overlays. A nil material is
// replaced by translucent white.
func NewQuadModel(dev gpu.Device, material *Material) (*Model, error) {
	if material == nil {
		var err error
		if material, err = NewMaterial(dev, math.Vec3One, nil); err != nil {
			return nil, err
		}
		material.Alpha = 0.5
	}
	return NewModel(NewMesh(dev, quadVertices, quadUVs, quadNormals, quadIndices, material)), nil
}

func (m *Model) Meshes() []*Mesh { return m.meshes }
func (m *Model) Materials() []*Material { return m.materials }

// Scale multiplies the accumulated scale.
func (m *Model) Scale(s math.Vec3) { m.scl = m.scl.MulVec(s) }

func (m *Model) Translate(t math.Vec3) { m.pos = m.pos.Add(t) }

func (m *Model) Rotate(r math.Vec3) { m.rot = m.rot.Add(r) }

// Matrix applies the offset to base in the order translate, rotate, scale.
func (m *Model) Matrix(base math.Mat4) math.Mat4 {
	base.TranslateInPlace(m.pos)
	base.RotateInPlace(m.rot)
	base.ScaleInPlace(m.scl)
	return base
}

// Release frees every mesh and material once.
func (m *Model) Release() {
	for _, mesh := range m.meshes {
		mesh.Release()
	}
	for _, mat := range m.materials {
		mat.Release()
	}
	m.meshes, m.materials = nil, nil
}
