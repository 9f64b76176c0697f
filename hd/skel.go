package hd

// Bone is a bone record of a binary skeleton. Matrix is column-major as
// stored. Parent is an index into the same list, negative for roots.
type Bone struct {
	Name   string
	Matrix [16]float32
	Parent int32
	Width  float32
	Height float32
	Length float32
	Flags  int32
}

// Joint carries rotation limits of the bone at Index.
type Joint struct {
	Index  int32
	Parent int32
	Matrix [16]float32
	TwistX float32
	TwistY float32
	SwingX float32
	SwingY float32
}

// Fix is a bone-to-bone constraint record. It is decoded but not applied.
type Fix struct {
	Type      uint32
	Flags     uint32
	Fix1      uint32
	Fix2      uint32
	BoneIndex uint32
}

// Skeleton is a decoded .skel asset.
type Skeleton struct {
	NumBones    int
	NumJoints   int
	NumFixes    int
	NumBounds   int
	NumTrackers int
	NumSlots    int
	Bones       []*Bone
	Joints      []*Joint
	Fixes       []*Fix
}

const (
	boneRecordSize  = 32 + 16*4 + 4 + 3*4 + 4
	jointRecordSize = 2*4 + 16*4 + 4*4
	fixRecordSize   = 5 * 4
)

// SkeletonSchema is the property table of "skeleton" chunk containers.
var SkeletonSchema = &Schema[Skeleton]{
	AssetType: "skeleton",
	Properties: map[string]*Property[Skeleton]{
		"numBones":    {Kind: CountProperty, Decode: func(s *Skeleton, _ *reader, n int) { s.NumBones = n }},
		"numJoints":   {Kind: CountProperty, Decode: func(s *Skeleton, _ *reader, n int) { s.NumJoints = n }},
		"numFixes":    {Kind: CountProperty, Decode: func(s *Skeleton, _ *reader, n int) { s.NumFixes = n }},
		"numBounds":   {Kind: CountProperty, Decode: func(s *Skeleton, _ *reader, n int) { s.NumBounds = n }},
		"numTrackers": {Kind: CountProperty, Decode: func(s *Skeleton, _ *reader, n int) { s.NumTrackers = n }},
		"numSlots":    {Kind: CountProperty, Decode: func(s *Skeleton, _ *reader, n int) { s.NumSlots = n }},
		"bones":       {Kind: ArrayProperty, Count: "numBones", ElemSize: boneRecordSize, Decode: readBone},
		"joints":      {Kind: ArrayProperty, Count: "numJoints", ElemSize: jointRecordSize, Decode: readJoint},
		"fixes":       {Kind: ArrayProperty, Count: "numFixes", ElemSize: fixRecordSize, Decode: readFix},
		"slots":       {Kind: SkippedProperty, Note: "slot data is not used"},
	},
}

func readBone(s *Skeleton, r *reader, _ int) {
	b := &Bone{Name: BoneName(r.fixedString(32))}
	r.floats(b.Matrix[:])
	b.Parent = r.int32()
	b.Width = r.float32()
	b.Height = r.float32()
	b.Length = r.float32()
	b.Flags = r.int32()
	s.Bones = append(s.Bones, b)
}

func readJoint(s *Skeleton, r *reader, _ int) {
	j := &Joint{Index: r.int32(), Parent: r.int32()}
	r.floats(j.Matrix[:])
	j.TwistX = r.float32()
	j.TwistY = r.float32()
	j.SwingX = r.float32()
	j.SwingY = r.float32()
	s.Joints = append(s.Joints, j)
}

func readFix(s *Skeleton, r *reader, _ int) {
	s.Fixes = append(s.Fixes, &Fix{
		Type:      r.uint32(),
		Flags:     r.uint32(),
		Fix1:      r.uint32(),
		Fix2:      r.uint32(),
		BoneIndex: r.uint32(),
	})
}

// ParseSkeleton decodes a binary .skel buffer.
func ParseSkeleton(data []byte) (*Skeleton, error) {
	s := &Skeleton{}
	if _, err := decodeChunk(data, SkeletonSchema, s); err != nil {
		return nil, err
	}
	return s, nil
}
