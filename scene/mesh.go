package scene

import (
	"scene-renderer/gpu"
)

// Attribute names the mesh buffers are bound to.
const (
	AttrPosition = "vertexPosition"
	AttrUV       = "vertexUv"
	AttrNormal   = "vertexNormal"
)

// Mesh is GPU-resident geometry: position, UV, normal and index buffers
// behind one vertex array, drawn with a shared Material.
type Mesh struct {
	dev        gpu.Device
	vao        uint32
	vertexBuf  uint32
	uvBuf      uint32
	normalBuf  uint32
	indexBuf   uint32
	numIndices int

	Material *Material
}

// NewMesh uploads the buffers once. vertices and normals hold three floats
// per vertex, uvs two.
func NewMesh(dev gpu.Device, vertices, uvs, normals []float32, indices []uint32, material *Material) *Mesh {
	m := &Mesh{
		dev:        dev,
		vao:        dev.CreateVertexArray(),
		vertexBuf:  dev.CreateBuffer(),
		uvBuf:      dev.CreateBuffer(),
		normalBuf:  dev.CreateBuffer(),
		indexBuf:   dev.CreateBuffer(),
		numIndices: len(indices),
		Material:   material,
	}

	dev.BindBuffer(gpu.ArrayBuffer, m.vertexBuf)
	dev.BufferFloat32(gpu.ArrayBuffer, vertices)
	dev.BindBuffer(gpu.ArrayBuffer, m.uvBuf)
	dev.BufferFloat32(gpu.ArrayBuffer, uvs)
	dev.BindBuffer(gpu.ArrayBuffer, m.normalBuf)
	dev.BufferFloat32(gpu.ArrayBuffer, normals)
	dev.BindBuffer(gpu.ArrayBuffer, 0)

	dev.BindBuffer(gpu.ElementArrayBuffer, m.indexBuf)
	dev.BufferUint32(gpu.ElementArrayBuffer, indices)
	dev.BindBuffer(gpu.ElementArrayBuffer, 0)
	return m
}

func (m *Mesh) IndexCount() int { return m.numIndices }

// BindAttributes records the buffer layout for program in the mesh's vertex
// array. Call once per program before the first Draw. The vertex array is
// left bound.
func (m *Mesh) BindAttributes(program *gpu.Program) {
	m.dev.BindVertexArray(m.vao)

	bind := func(name string, buf uint32, size int32) {
		a := program.Attribute(name)
		if a.Location() < 0 {
			return
		}
		a.Enable()
		m.dev.BindBuffer(gpu.ArrayBuffer, buf)
		m.dev.VertexAttribPointer(uint32(a.Location()), size)
	}
	bind(AttrPosition, m.vertexBuf, 3)
	bind(AttrUV, m.uvBuf, 2)
	bind(AttrNormal, m.normalBuf, 3)

	m.dev.BindBuffer(gpu.ElementArrayBuffer, m.indexBuf)
}

// Draw issues one indexed triangle draw with the mesh's vertex array bound.
func (m *Mesh) Draw() {
	m.dev.BindVertexArray(m.vao)
	m.dev.DrawTriangles(m.numIndices)
}

// Release deletes the buffers and vertex array. Later calls do nothing.
func (m *Mesh) Release() {
	if m.vao == 0 {
		return
	}
	for _, buf := range []uint32{m.vertexBuf, m.uvBuf, m.normalBuf, m.indexBuf} {
		m.dev.DeleteBuffer(buf)
	}
	m.dev.DeleteVertexArray(m.vao)
	m.vao = 0
}
