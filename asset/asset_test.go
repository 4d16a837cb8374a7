package asset

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"scene-renderer/math"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const quadOBJ = `# unit quad
mtllib quad.mtl
o Quad
v -0.5 -0.5 0
v 0.5 -0.5 0
v 0.5 0.5 0
v -0.5 0.5 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl red
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const quadMTL = `newmtl red
Kd 1 0 0
map_Kd -s 1 1 1 textures/red.png
`

func TestImportOBJ(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "quad.mtl", quadMTL)
	path := writeFile(t, dir, "quad.obj", quadOBJ)

	s, err := Import(path, Triangulate)
	require.NoError(t, err)
	require.Len(t, s.Meshes, 1)
	require.Len(t, s.Materials, 1)

	m := s.Meshes[0]
	assert.Equal(t, "Quad", m.Name)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	assert.Len(t, m.UVs, 8)
	assert.Equal(t, []float32{0, 0, 1}, m.Normals[:3])

	props := s.Materials[m.MaterialIndex]
	colour, ok := props.DiffuseColour()
	require.True(t, ok)
	assert.Equal(t, math.NewVec3(1, 0, 0), colour)
	tex, ok := props.DiffuseTexture()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "textures", "red.png"), tex)
}

func TestImportOBJNeedsTriangulate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "quad.mtl", quadMTL)
	path := writeFile(t, dir, "quad.obj", quadOBJ)

	_, err := Import(path, 0)
	assert.ErrorContains(t, err, "Triangulate")
}

func TestImportOBJGeneratesNormals(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n")

	s, err := Import(path, Triangulate)
	require.NoError(t, err)
	m := s.Meshes[0]
	assert.Equal(t, "default", m.Name)
	for i := 0; i < m.VertexCount(); i++ {
		assert.InDelta(t, 1, m.Normals[i*3+2], 1e-6)
	}
	_, ok := s.Materials[m.MaterialIndex].DiffuseTexture()
	assert.False(t, ok)
}

func TestImportUnsupported(t *testing.T) {
	_, err := Import("model.fbx", Triangulate)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Import(filepath.Join(t.TempDir(), "missing.obj"), Triangulate)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImportEmptyOBJ(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.obj", "# nothing\n")
	_, err := Import(path, Triangulate)
	assert.ErrorContains(t, err, "no geometry")
}

func TestMergeByMaterial(t *testing.T) {
	s := &Scene{
		Materials: []Properties{{}, {}},
		Meshes: []*MeshData{
			{Vertices: make([]float32, 9), Normals: make([]float32, 9), UVs: make([]float32, 6), Indices: []uint32{0, 1, 2}, MaterialIndex: 1},
			{Vertices: make([]float32, 9), Normals: make([]float32, 9), UVs: make([]float32, 6), Indices: []uint32{0, 1, 2}, MaterialIndex: 0},
			{Vertices: make([]float32, 9), Normals: make([]float32, 9), UVs: make([]float32, 6), Indices: []uint32{2, 1, 0}, MaterialIndex: 1},
		},
	}
	first := s.Meshes[0]
	s.mergeByMaterial()

	require.Len(t, s.Meshes, 2)
	assert.Equal(t, 1, s.Meshes[0].MaterialIndex)
	assert.Equal(t, 6, s.Meshes[0].VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 5, 4, 3}, s.Meshes[0].Indices)
	assert.Equal(t, 0, s.Meshes[1].MaterialIndex)
	assert.Len(t, first.Indices, 3, "source mesh must not be modified")
}

func TestGenerateNormalsSkipsBadIndices(t *testing.T) {
	n := generateNormals([]float32{0, 0, 0, 1, 0, 0, 0, 0, 1}, []uint32{0, 2, 1, 0, 1, 9})
	require.Len(t, n, 9)
	assert.InDelta(t, 1, n[1], 1e-6)
}

func TestStripAndFan(t *testing.T) {
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, stripToTriangles([]uint32{0, 1, 2, 3}))
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, fanToTriangles([]uint32{0, 1, 2, 3}))
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImportGLB(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	img, err := modeler.WriteImage(doc, "red.png", "image/png", bytes.NewReader(encodePNG(t)))
	require.NoError(t, err)

	doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(img)})
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name: "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float64{1, 0.5, 0.25, 1},
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	})
	doc.Meshes = append(doc.Meshes,
		&gltf.Mesh{Name: "tri", Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
			Material:   gltf.Index(0),
		}}},
		&gltf.Mesh{Name: "fan", Primitives: []*gltf.Primitive{{
			Mode:       gltf.PrimitiveTriangleFan,
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos},
		}}},
		&gltf.Mesh{Name: "points", Primitives: []*gltf.Primitive{{
			Mode:       gltf.PrimitivePoints,
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos},
		}}},
	)

	path := filepath.Join(t.TempDir(), "model.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))

	s, err := Import(path, Triangulate|OptimizeMeshes)
	require.NoError(t, err)
	require.Len(t, s.Meshes, 2)
	require.Len(t, s.Materials, 2)
	require.Len(t, s.Textures, 1)

	tri := s.Meshes[0]
	assert.Equal(t, 0, tri.MaterialIndex)
	assert.Equal(t, []uint32{0, 1, 2}, tri.Indices)
	assert.Len(t, tri.Normals, 12)

	props := s.Materials[0]
	c, _ := props.DiffuseColour()
	assert.Equal(t, math.NewVec3(1, 0.5, 0.25), c)
	ref, ok := props.DiffuseTexture()
	require.True(t, ok)
	n, ok := EmbeddedIndex(ref)
	require.True(t, ok)
	decoded, err := DecodeImage(s.Textures[n])
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Bounds().Dx())

	fan := s.Meshes[1]
	assert.Equal(t, 1, fan.MaterialIndex)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, fan.Indices)
	assert.Len(t, fan.UVs, 8)
}

func TestEmbeddedIndex(t *testing.T) {
	n, ok := EmbeddedIndex("*3")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = EmbeddedIndex("textures/a.png")
	assert.False(t, ok)
	_, ok = EmbeddedIndex("*x")
	assert.False(t, ok)
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 1))))
	path := filepath.Join(dir, "a.bmp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	_, err = LoadImage(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = DecodeImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name     string
		scene    *Scene
		vertices int
		indices  int
	}{
		{"sphere", Sphere(1, 8, 4), 9 * 5, 8 * 4 * 6},
		{"cube", Cube(2), 24, 36},
		{"plane", Plane(4, 2, 2), 9, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, tt.scene.Meshes, 1)
			require.Len(t, tt.scene.Materials, 1)
			m := tt.scene.Meshes[0]
			assert.Equal(t, tt.vertices, m.VertexCount())
			assert.Len(t, m.Indices, tt.indices)
			assert.Len(t, m.Normals, tt.vertices*3)
			assert.Len(t, m.UVs, tt.vertices*2)
			for _, i := range m.Indices {
				assert.Less(t, int(i), tt.vertices)
			}
		})
	}
}

func TestCubeNormalsPointOutwards(t *testing.T) {
	m := Cube(2).Meshes[0]
	for i := 0; i < m.VertexCount(); i++ {
		p := math.NewVec3(m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2])
		n := math.NewVec3(m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2])
		assert.InDelta(t, 1, p.Dot(n), 1e-6)
	}
}

func TestSphereRadius(t *testing.T) {
	m := Sphere(2.5, 6, 3).Meshes[0]
	for i := 0; i < m.VertexCount(); i++ {
		p := math.NewVec3(m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2])
		assert.InDelta(t, 2.5, p.Length(), 1e-5)
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "tex.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t), 0o644))

	var got string
	require.Eventually(t, func() bool {
		select {
		case got = <-w.Events():
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, path, got)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	for range w.Events() {
	}
}
