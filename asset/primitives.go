package asset

import (
	"github.com/chewxy/math32"

	"scene-renderer/math"
)

// Procedural shapes. Each returns a Scene with a single mesh bound to one
// untextured default material.

func primitive(m *MeshData) *Scene {
	return &Scene{
		Materials: []Properties{{PropName: m.Name}},
		Meshes:    []*MeshData{m},
	}
}

func (m *MeshData) push(p, n math.Vec3, u, v float32) {
	m.Vertices = append(m.Vertices, p.X, p.Y, p.Z)
	m.Normals = append(m.Normals, n.X, n.Y, n.Z)
	m.UVs = append(m.UVs, u, v)
}

// Sphere builds a UV sphere centred on the origin.
func Sphere(radius float32, segments, rings int) *Scene {
	segments = max(segments, 3)
	rings = max(rings, 2)

	m := &MeshData{Name: "Sphere"}
	for ring := 0; ring <= rings; ring++ {
		phi := float32(ring) * math32.Pi / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)
		for seg := 0; seg <= segments; seg++ {
			theta := float32(seg) * 2 * math32.Pi / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)

			n := math.NewVec3(sinPhi*cosTheta, cosPhi, sinPhi*sinTheta)
			m.push(n.Mul(radius), n, float32(seg)/float32(segments), float32(ring)/float32(rings))
		}
	}

	stride := uint32(segments + 1)
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			cur := uint32(ring)*stride + uint32(seg)
			next := cur + stride
			m.Indices = append(m.Indices,
				cur, next, cur+1,
				cur+1, next, next+1)
		}
	}
	return primitive(m)
}

// cubeFaces lists each face as normal, u axis and v axis.
var cubeFaces = [6][3]math.Vec3{
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {X: -1}, {Y: 1}},
	{{Y: 1}, {X: 1}, {Z: -1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{X: 1}, {Z: -1}, {Y: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
}

// Cube builds an axis-aligned cube with 24 vertices so that every face has
// its own normals and UVs.
func Cube(size float32) *Scene {
	h := size / 2
	m := &MeshData{Name: "Cube"}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for f, face := range cubeFaces {
		n, u, v := face[0], face[1], face[2]
		for _, c := range corners {
			p := n.Add(u.Mul(c[0])).Add(v.Mul(c[1])).Mul(h)
			m.push(p, n, (c[0]+1)/2, (c[1]+1)/2)
		}
		base := uint32(f * 4)
		m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return primitive(m)
}

// Plane builds a subdivided plane on the XZ axis facing +Y.
func Plane(width, depth float32, subdivisions int) *Scene {
	subdivisions = max(subdivisions, 1)
	m := &MeshData{Name: "Plane"}

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			p := math.NewVec3((u-0.5)*width, 0, (v-0.5)*depth)
			m.push(p, math.Vec3Up, u, v)
		}
	}

	stride := uint32(subdivisions + 1)
	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			tl := uint32(z)*stride + uint32(x)
			bl := tl + stride
			m.Indices = append(m.Indices,
				tl, bl, tl+1,
				tl+1, bl, bl+1)
		}
	}
	return primitive(m)
}
