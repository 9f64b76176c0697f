package hd

// TextBone is a bone of a .dskel file or a joint of a .dmesh file. Origin
// and Axis are the stored values; Axis is a quaternion read w-first.
type TextBone struct {
	Name      string
	Parent    string
	HasParent bool
	Origin    [3]float32
	Axis      [4]float32
	Width     float32
	Height    float32
	Length    float32
}

// TextSkeleton is a decoded .dskel asset.
type TextSkeleton struct {
	Declared int
	Bones    []*TextBone
}

func currentBone(bones []*TextBone, l *textLine) (*TextBone, error) {
	if len(bones) == 0 {
		return nil, malformed(l.No, "%s outside of a bone block", l.Arg(0))
	}
	return bones[len(bones)-1], nil
}

func boneVectorKeyword(bones *[]*TextBone, depth int, set func(b *TextBone, v []float32), n int) *keyword {
	return &keyword{Depth: depth, Fn: func(l *textLine) error {
		b, err := currentBone(*bones, l)
		if err != nil {
			return err
		}
		v, err := l.Floats(1, n)
		if err != nil {
			return err
		}
		set(b, v)
		return nil
	}}
}

// ParseDSkel decodes a text skeleton.
func ParseDSkel(data []byte) (*TextSkeleton, error) {
	s := &TextSkeleton{}
	scalar := func(set func(b *TextBone, v float32)) *keyword {
		return boneVectorKeyword(&s.Bones, 2, func(b *TextBone, v []float32) { set(b, v[0]) }, 1)
	}
	d := newTextDecoder("dskel", map[string]*keyword{
		"skeleton": {Depth: 0, Exact: true, Fn: func(l *textLine) error {
			if len(l.Fields) < 2 {
				return nil
			}
			n, err := l.Int(1)
			s.Declared = n
			return err
		}},
		"bone": {Depth: 1, Exact: true, Fn: func(l *textLine) error {
			s.Bones = append(s.Bones, newTextBone(l.Arg(1)))
			return nil
		}},
		"parent": {Depth: 2, Fn: func(l *textLine) error {
			b, err := currentBone(s.Bones, l)
			if err != nil {
				return err
			}
			b.Parent, b.HasParent = BoneName(l.Arg(1)), true
			return nil
		}},
		"origin": boneVectorKeyword(&s.Bones, 2, func(b *TextBone, v []float32) { copy(b.Origin[:], v) }, 3),
		"axis":   boneVectorKeyword(&s.Bones, 2, func(b *TextBone, v []float32) { copy(b.Axis[:], v) }, 4),
		"width":  scalar(func(b *TextBone, v float32) { b.Width = v }),
		"height": scalar(func(b *TextBone, v float32) { b.Height = v }),
		"length": scalar(func(b *TextBone, v float32) { b.Length = v }),
	})
	if err := d.run(data); err != nil {
		return nil, err
	}
	return s, nil
}

func newTextBone(name string) *TextBone {
	return &TextBone{Name: BoneName(name), Axis: [4]float32{1, 0, 0, 0}, Length: 1}
}
