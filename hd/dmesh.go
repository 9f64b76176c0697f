package hd

// TextGroup is one named face group of a .dmesh file. Faces and UVFaces
// hold indices into TextMesh.Verts and TextMesh.UVs in stored order.
type TextGroup struct {
	Name         string
	Faces        [][]int
	UVFaces      [][]int
	SmoothGroups []int
}

// TextWeight binds vertex Vert to joint Bone.
type TextWeight struct {
	Vert   int
	Bone   int
	Weight float32
}

// TextMesh is a decoded .dmesh asset.
type TextMesh struct {
	Verts   [][3]float32
	UVs     [][2]float32
	Groups  []*TextGroup
	Joints  []*TextBone
	Weights []TextWeight
}

// Group returns the group named name, or nil.
func (m *TextMesh) Group(name string) *TextGroup {
	for _, g := range m.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// ParseDMesh decodes a text mesh.
func ParseDMesh(data []byte) (*TextMesh, error) {
	m := &TextMesh{}
	var group *TextGroup
	count := 0
	inGroup := func(l *textLine) error {
		if group == nil {
			return malformed(l.No, "%s outside of a group block", l.Arg(0))
		}
		return nil
	}
	d := newTextDecoder("dmesh", map[string]*keyword{
		"vert": {Fn: func(l *textLine) error {
			v, err := l.Floats(1, 3)
			if err == nil {
				m.Verts = append(m.Verts, [3]float32{v[0], v[1], v[2]})
			}
			return err
		}},
		"uv": {Fn: func(l *textLine) error {
			v, err := l.Floats(1, 2)
			if err == nil {
				m.UVs = append(m.UVs, [2]float32{v[0], v[1]})
			}
			return err
		}},
		"group": {Depth: 2, Fn: func(l *textLine) error {
			name := l.Arg(1)
			if g := m.Group(name); g != nil {
				*g = TextGroup{Name: name}
				group = g
				return nil
			}
			group = &TextGroup{Name: name}
			m.Groups = append(m.Groups, group)
			return nil
		}},
		"count": {Depth: 3, Fn: func(l *textLine) error {
			n, err := l.Int(1)
			if err != nil {
				return err
			}
			if n < 0 {
				return malformed(l.No, "bad count %d", n)
			}
			count = n
			return nil
		}},
		"verts": {Depth: 3, Fn: func(l *textLine) error {
			if err := inGroup(l); err != nil {
				return err
			}
			v, err := l.Ints(1, count)
			group.Faces = append(group.Faces, v)
			return err
		}},
		"uvs": {Depth: 3, Fn: func(l *textLine) error {
			if err := inGroup(l); err != nil {
				return err
			}
			v, err := l.Ints(1, count)
			group.UVFaces = append(group.UVFaces, v)
			return err
		}},
		"smoothGroup": {Depth: 3, Fn: func(l *textLine) error {
			if err := inGroup(l); err != nil {
				return err
			}
			n, err := l.Int(1)
			group.SmoothGroups = append(group.SmoothGroups, n)
			return err
		}},
		"joint": {Depth: 2, Fn: func(l *textLine) error {
			m.Joints = append(m.Joints, newTextBone(l.Arg(1)))
			return nil
		}},
		"parent": {Depth: 3, Fn: func(l *textLine) error {
			b, err := currentBone(m.Joints, l)
			if err != nil {
				return err
			}
			b.Parent, b.HasParent = BoneName(l.Rest()), true
			return nil
		}},
		"origin": boneVectorKeyword(&m.Joints, 3, func(b *TextBone, v []float32) { copy(b.Origin[:], v) }, 3),
		"axis":   boneVectorKeyword(&m.Joints, 3, func(b *TextBone, v []float32) { copy(b.Axis[:], v) }, 4),
		"weight": {Depth: 2, Fn: func(l *textLine) error {
			v, err := l.Ints(1, 2)
			if err != nil {
				return err
			}
			w, err := l.Float(3)
			m.Weights = append(m.Weights, TextWeight{Vert: v[0], Bone: v[1], Weight: w})
			return err
		}},
	})
	if err := d.run(data); err != nil {
		return nil, err
	}
	for _, g := range m.Groups {
		if err := m.checkGroup(g); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *TextMesh) checkGroup(g *TextGroup) error {
	for _, f := range g.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Verts) {
				return &DecodeError{Kind: ErrTruncatedBuffer, Offset: -1, Name: g.Name, Detail: "vertex index out of range"}
			}
		}
	}
	for _, f := range g.UVFaces {
		for _, v := range f {
			if v < 0 || v >= len(m.UVs) {
				return &DecodeError{Kind: ErrTruncatedBuffer, Offset: -1, Name: g.Name, Detail: "uv index out of range"}
			}
		}
	}
	return nil
}
