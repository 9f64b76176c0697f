package scene

import (
	"fmt"

	"github.com/binzume/hdconv/coord"
	"github.com/binzume/hdconv/geom"
	"github.com/binzume/hdconv/hd"
)

func (m *Mesh) boneIndex(name string) int {
	for i, n := range m.Bones {
		if n == name {
			return i
		}
	}
	m.Bones = append(m.Bones, name)
	return len(m.Bones) - 1
}

// addWeight binds vertex v to joint. When all slots are used the smallest
// weight is replaced.
func (m *Mesh) addWeight(v, joint int, w float32) {
	if w <= 0 {
		return
	}
	if m.Joints == nil {
		m.Joints = make([][MaxInfluences]uint16, len(m.Positions))
		m.Weights = make([][MaxInfluences]float32, len(m.Positions))
	}
	slot := 0
	for i, x := range m.Weights[v] {
		if x < m.Weights[v][slot] {
			slot = i
		}
	}
	if m.Weights[v][slot] >= w {
		return
	}
	m.Joints[v][slot] = uint16(joint)
	m.Weights[v][slot] = w
}

func (m *Mesh) normalizeWeights() {
	for i := range m.Weights {
		var sum float32
		for _, w := range m.Weights[i] {
			sum += w
		}
		if sum > 0 {
			for k := range m.Weights[i] {
				m.Weights[i][k] /= sum
			}
		}
	}
}

// meshFromBinary converts a .mesh asset. Winding is reversed since the
// axis swap mirrors the geometry.
func meshFromBinary(name string, src *hd.Mesh, format hd.FileFormat) *Mesh {
	n := len(src.Vertices)
	m := &Mesh{
		Name:      name,
		Positions: make([][3]float32, n),
		Normals:   make([][3]float32, n),
		UVs:       make([][2]float32, n),
	}
	for i, v := range src.Vertices {
		m.Positions[i] = coord.MeshVertex(v.Position).Array()
		m.Normals[i] = coord.MeshVertex(v.Normal).Normalize().Array()
		m.UVs[i] = format.UV(v.UV)
	}
	m.Indices = make([]uint32, 0, len(src.Faces)*3)
	for _, f := range src.Faces {
		m.Indices = append(m.Indices, f[2], f[1], f[0])
	}
	return m
}

// applySkin binds the vertices of m to the bones of s. Vertex order of the
// skin follows the mesh.
func applySkin(m *Mesh, s *hd.Skin) error {
	if len(s.Weights) != len(m.Positions) {
		return fmt.Errorf("skin has %d vertices, mesh %q has %d", len(s.Weights), m.Name, len(m.Positions))
	}
	for v, infl := range s.Weights {
		for _, in := range infl {
			m.addWeight(v, m.boneIndex(s.Bones[in.Bone].Name), in.Weight)
		}
	}
	m.normalizeWeights()
	return nil
}

type corner struct {
	vert, uv, smooth int
}

type smoothVertex struct {
	vert, smooth int
}

// newellNormal returns the area weighted normal of a polygon.
func newellNormal(pts []*geom.Vector3) *geom.Vector3 {
	n := &geom.Vector3{}
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// meshFromGroup converts one face group of a .dmesh asset. Corners sharing
// a vertex, a uv and a smoothing group become one output vertex. Normals
// are averaged over the faces of a smoothing group.
func meshFromGroup(src *hd.TextMesh, g *hd.TextGroup, positions []*geom.Vector3, joints []string, format hd.FileFormat) (*Mesh, error) {
	m := &Mesh{Name: g.Name}
	useUV := len(g.UVFaces) > 0
	index := map[corner]uint32{}
	normals := map[smoothVertex]*geom.Vector3{}
	var keys []corner
	outputs := map[int][]int{}

	for fi, face := range g.Faces {
		if len(face) < 3 {
			continue
		}
		sg := 0
		if fi < len(g.SmoothGroups) {
			sg = g.SmoothGroups[fi]
		}
		var uvFace []int
		if fi < len(g.UVFaces) {
			uvFace = g.UVFaces[fi]
		}

		n := len(face)
		pts := make([]*geom.Vector3, n)
		corners := make([]uint32, n)
		poly := make([]int, n)
		for c := 0; c < n; c++ {
			k := n - 1 - c
			key := corner{vert: face[k], uv: -1, smooth: sg}
			if k < len(uvFace) {
				key.uv = uvFace[k]
			}
			idx, ok := index[key]
			if !ok {
				idx = uint32(len(keys))
				index[key] = idx
				keys = append(keys, key)
				outputs[key.vert] = append(outputs[key.vert], int(idx))
			}
			pts[c] = positions[key.vert]
			corners[c] = idx
			poly[c] = c
		}

		fn := newellNormal(pts)
		for c := 0; c < n; c++ {
			sv := smoothVertex{face[n-1-c], sg}
			if normals[sv] == nil {
				normals[sv] = &geom.Vector3{}
			}
			normals[sv] = normals[sv].Add(fn)
		}
		for _, t := range geom.TriangulatePolygon(pts, poly) {
			m.Indices = append(m.Indices, corners[t[0]], corners[t[1]], corners[t[2]])
		}
	}

	m.Positions = make([][3]float32, len(keys))
	m.Normals = make([][3]float32, len(keys))
	if useUV {
		m.UVs = make([][2]float32, len(keys))
	}
	for i, k := range keys {
		m.Positions[i] = positions[k.vert].Array()
		m.Normals[i] = normals[smoothVertex{k.vert, k.smooth}].Normalize().Array()
		if useUV && k.uv >= 0 {
			m.UVs[i] = format.UV(src.UVs[k.uv])
		}
	}

	for _, w := range src.Weights {
		out := outputs[w.Vert]
		if len(out) == 0 {
			continue
		}
		if w.Bone < 0 || w.Bone >= len(joints) {
			return nil, &hd.DecodeError{Kind: hd.ErrDanglingParentReference, Offset: -1, Name: g.Name,
				Detail: fmt.Sprintf("weight of vertex %d names joint %d of %d", w.Vert, w.Bone, len(joints))}
		}
		j := m.boneIndex(joints[w.Bone])
		for _, v := range out {
			m.addWeight(v, j, w.Weight)
		}
	}
	m.normalizeWeights()
	return m, nil
}

// meshesFromText converts every face group of a .dmesh asset.
func meshesFromText(src *hd.TextMesh, format hd.FileFormat) ([]*Mesh, error) {
	positions := make([]*geom.Vector3, len(src.Verts))
	for i, v := range src.Verts {
		positions[i] = coord.MeshVertex(v)
	}
	joints := make([]string, len(src.Joints))
	for i, j := range src.Joints {
		joints[i] = j.Name
	}
	joints = hd.UniqueNames(joints)

	var meshes []*Mesh
	for _, g := range src.Groups {
		m, err := meshFromGroup(src, g, positions, joints, format)
		if err != nil {
			return nil, err
		}
		if len(m.Indices) > 0 {
			meshes = append(meshes, m)
		}
	}
	return meshes, nil
}
