package hd

// Vertex is a stored .mesh vertex in file coordinates.
type Vertex struct {
	Position  [3]float32
	UV        [2]float32
	Color     [4]uint8
	Normal    [3]float32
	Tangent   [3]float32
	Bitangent [3]float32
}

// Mesh is a decoded .mesh asset. Faces are stored index triples.
type Mesh struct {
	BoundsMin [3]float32
	BoundsMax [3]float32
	Vertices  []*Vertex
	Faces     [][3]uint32
}

const (
	vertexSize = 3*4 + 2*4 + 4 + 9*4
	faceSize   = 3 * 4
)

// ParseMesh decodes a binary mesh. The geometry follows the entry table
// directly; entry names are not consulted.
func ParseMesh(data []byte) (*Mesh, error) {
	c, err := ParseContainer(data)
	if err != nil {
		return nil, err
	}
	r := newReader(data, 0, "mesh")
	r.pos = c.DataOffset
	vertCount := int(r.uint32())
	loopCount := int(r.uint32())
	m := &Mesh{}
	r.floats(m.BoundsMin[:])
	r.floats(m.BoundsMax[:])
	if r.err != nil {
		return nil, r.err
	}
	faceCount := loopCount / 3
	if need := vertexSize*vertCount + faceSize*faceCount; vertCount < 0 || faceCount < 0 || r.pos+need > len(data) {
		return nil, truncated("mesh", r.pos, need, len(data)-r.pos)
	}
	m.Vertices = make([]*Vertex, vertCount)
	for i := range m.Vertices {
		v := &Vertex{}
		r.floats(v.Position[:])
		r.floats(v.UV[:])
		for k := range v.Color {
			v.Color[k] = r.uint8()
		}
		r.floats(v.Normal[:])
		r.floats(v.Tangent[:])
		r.floats(v.Bitangent[:])
		m.Vertices[i] = v
	}
	m.Faces = make([][3]uint32, faceCount)
	for i := range m.Faces {
		for k := 0; k < 3; k++ {
			idx := r.uint32()
			if int(idx) >= vertCount {
				return nil, &DecodeError{Kind: ErrTruncatedBuffer, Name: "faces", Offset: r.pos - 4, Detail: "vertex index out of range"}
			}
			m.Faces[i][k] = idx
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}
