package asset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"scene-renderer/math"
)

// objRef is one face corner: 0-based position / uv / normal indices, -1
// when absent.
type objRef struct{ v, vt, vn int }

type objGroup struct {
	name    string
	matName string
	faces   [][3]objRef
}

// importOBJ parses a Wavefront .obj file and its mtllib, producing one mesh
// per object or group.
func importOBJ(path string, flags PostProcess) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	s := &Scene{}
	materials := map[string]int{}

	var positions, normals []math.Vec3
	var uvs []math.Vec2

	var groups []*objGroup
	cur := &objGroup{name: "default"}

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v", "vn":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj %q line %d: short %s", path, lineNo, fields[0])
			}
			v := math.NewVec3(parseFloat(fields[1]), parseFloat(fields[2]), parseFloat(fields[3]))
			if fields[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v)
			}

		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("obj %q line %d: short vt", path, lineNo)
			}
			// only u and v are kept
			uvs = append(uvs, math.NewVec2(parseFloat(fields[1]), parseFloat(fields[2])))

		case "o", "g":
			if len(cur.faces) > 0 {
				groups = append(groups, cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objGroup{name: name, matName: cur.matName}

		case "usemtl":
			if len(fields) > 1 {
				if len(cur.faces) > 0 && cur.matName != fields[1] {
					groups = append(groups, cur)
					cur = &objGroup{name: cur.name}
				}
				cur.matName = fields[1]
			}

		case "mtllib":
			for _, lib := range fields[1:] {
				if err := loadMTL(filepath.Join(dir, lib), dir, s, materials); err != nil {
					return nil, err
				}
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			corners := make([]objRef, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				corners = append(corners, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			if len(corners) > 3 && flags&Triangulate == 0 {
				return nil, fmt.Errorf("obj %q line %d: %d-sided face needs Triangulate", path, lineNo, len(corners))
			}
			// fan: 0-1-2, 0-2-3, ...
			for i := 1; i+1 < len(corners); i++ {
				cur.faces = append(cur.faces, [3]objRef{corners[0], corners[i], corners[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj %q: %w", path, err)
	}
	if len(cur.faces) > 0 {
		groups = append(groups, cur)
	}

	defaultMaterial := -1
	for _, g := range groups {
		mesh := buildOBJMesh(g, positions, normals, uvs)
		if idx, ok := materials[g.matName]; ok {
			mesh.MaterialIndex = idx
		} else {
			if defaultMaterial < 0 {
				defaultMaterial = len(s.Materials)
				s.Materials = append(s.Materials, Properties{})
			}
			mesh.MaterialIndex = defaultMaterial
		}
		s.Meshes = append(s.Meshes, mesh)
	}
	return s, nil
}

func parseFloat(s string) float32 {
	v, _ := strconv.ParseFloat(s, 32)
	return float32(v)
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices
// count back from the current end of each list.
func parseFaceVertex(tok string, nv, nvt, nvn int) objRef {
	idx := func(s string, n int) int {
		if s == "" {
			return -1
		}
		i, err := strconv.Atoi(s)
		switch {
		case err != nil:
			return -1
		case i > 0:
			return i - 1
		case i < 0:
			return n + i
		}
		return -1
	}
	parts := strings.Split(tok, "/")
	ref := objRef{v: -1, vt: -1, vn: -1}
	ref.v = idx(parts[0], nv)
	if len(parts) > 1 {
		ref.vt = idx(parts[1], nvt)
	}
	if len(parts) > 2 {
		ref.vn = idx(parts[2], nvn)
	}
	return ref
}

// buildOBJMesh deduplicates face corners into an indexed mesh.
func buildOBJMesh(g *objGroup, positions, normals []math.Vec3, uvs []math.Vec2) *MeshData {
	m := &MeshData{Name: g.name}
	seen := map[objRef]uint32{}
	hasNormals := true

	for _, face := range g.faces {
		for _, ref := range face {
			if idx, ok := seen[ref]; ok {
				m.Indices = append(m.Indices, idx)
				continue
			}
			var p, n math.Vec3
			var uv math.Vec2
			if ref.v >= 0 && ref.v < len(positions) {
				p = positions[ref.v]
			}
			if ref.vn >= 0 && ref.vn < len(normals) {
				n = normals[ref.vn]
			} else {
				hasNormals = false
			}
			if ref.vt >= 0 && ref.vt < len(uvs) {
				uv = uvs[ref.vt]
			}
			idx := uint32(m.VertexCount())
			m.Vertices = append(m.Vertices, p.X, p.Y, p.Z)
			m.Normals = append(m.Normals, n.X, n.Y, n.Z)
			m.UVs = append(m.UVs, uv.X, uv.Y)
			seen[ref] = idx
			m.Indices = append(m.Indices, idx)
		}
	}
	if !hasNormals {
		m.Normals = generateNormals(m.Vertices, m.Indices)
	}
	return m
}

// loadMTL appends the materials of an .mtl file to s, recording each name's
// index in byName.
func loadMTL(path, dir string, s *Scene, byName map[string]int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mtl %q: %w", path, err)
	}
	defer f.Close()

	var cur Properties
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "newmtl":
			cur = Properties{PropName: fields[1]}
			byName[fields[1]] = len(s.Materials)
			s.Materials = append(s.Materials, cur)
		case "Kd":
			if cur != nil && len(fields) >= 4 {
				cur[PropDiffuseColour] = math.NewVec3(parseFloat(fields[1]), parseFloat(fields[2]), parseFloat(fields[3]))
			}
		case "map_Kd":
			if cur != nil {
				// options such as -s precede the file name
				cur[PropDiffuseTexture] = filepath.Join(dir, fields[len(fields)-1])
			}
		}
	}
	return scanner.Err()
}
