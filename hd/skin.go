package hd

// Influence is one bone weight of a skinned vertex.
type Influence struct {
	Bone   int
	Weight float32
}

// SkinBone is a bind bone of a .skin file. Matrix is row-major as stored.
type SkinBone struct {
	Name   string
	Matrix [16]float32
	Vector [4]float32
}

// Skin is a decoded .skin asset. Weights has one entry per mesh vertex.
type Skin struct {
	Weights [][]Influence
	Bones   []*SkinBone
}

const (
	skinWeightSize   = 4*4 + 4
	skinBoneSize     = 32 + 16*4 + 4*4
	maxSkinInfluence = 4
)

// ParseSkin decodes a binary skin. Unused influence slots, stored as bone 0
// with weight 0, are dropped.
func ParseSkin(data []byte) (*Skin, error) {
	c, err := ParseContainer(data)
	if err != nil {
		return nil, err
	}
	r := newReader(data, 0, "skin")
	r.pos = c.DataOffset
	vertCount := int(r.uint32())
	boneCount := int(r.uint32())
	if r.err != nil {
		return nil, r.err
	}
	if need := skinWeightSize*vertCount + skinBoneSize*boneCount; vertCount < 0 || boneCount < 0 || r.pos+need > len(data) {
		return nil, truncated("skin", r.pos, need, len(data)-r.pos)
	}
	s := &Skin{Weights: make([][]Influence, vertCount)}
	for i := range s.Weights {
		var w [maxSkinInfluence]float32
		r.floats(w[:])
		for k := 0; k < maxSkinInfluence; k++ {
			b := int(r.uint8())
			if b == 0 && w[k] == 0 {
				continue
			}
			if b >= boneCount {
				return nil, &DecodeError{Kind: ErrDanglingParentReference, Name: "weights", Offset: r.pos - 1, Detail: "bone index out of range"}
			}
			s.Weights[i] = append(s.Weights[i], Influence{Bone: b, Weight: w[k]})
		}
	}
	for i := 0; i < boneCount; i++ {
		b := &SkinBone{Name: BoneName(r.fixedString(32))}
		r.floats(b.Matrix[:])
		r.floats(b.Vector[:])
		s.Bones = append(s.Bones, b)
	}
	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}
