package hd

import "log"

// PoseTransform is the stored pose of one bone.
type PoseTransform struct {
	Name string
	Key  Key
}

// Pose is a decoded .pose or .dpose asset.
type Pose struct {
	Transforms []*PoseTransform
}

// Find returns the transform of bone name, or nil.
func (p *Pose) Find(name string) *PoseTransform {
	for _, t := range p.Transforms {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (p *Pose) set(name string, k Key) {
	if t := p.Find(name); t != nil {
		t.Key = k
		return
	}
	p.Transforms = append(p.Transforms, &PoseTransform{Name: name, Key: k})
}

const poseRecordSize = keyRecordSize + 32

// ParsePose decodes a binary pose. The records follow the entry table
// directly; entry names are not consulted.
func ParsePose(data []byte) (*Pose, error) {
	c, err := ParseContainer(data)
	if err != nil {
		return nil, err
	}
	r := newReader(data, 0, "pose")
	r.pos = c.DataOffset
	n := int(r.uint32())
	if r.err != nil {
		return nil, r.err
	}
	if need := poseRecordSize * n; n < 0 || r.pos+need > len(data) {
		return nil, truncated("pose", r.pos, need, len(data)-r.pos)
	}
	p := &Pose{}
	for i := 0; i < n; i++ {
		k := readKey(r)
		p.set(BoneName(r.fixedString(32)), k)
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

// ParseDPose decodes a text pose. Stored quaternions are negated on read.
func ParseDPose(data []byte) (*Pose, error) {
	p := &Pose{}
	declared := -1
	d := newTextDecoder("dpose", map[string]*keyword{
		"numTransforms": {Depth: 1, Fn: func(l *textLine) error {
			n, err := l.Int(1)
			declared = n
			return err
		}},
		"transform": {Depth: 1, Fn: func(l *textLine) error {
			v, err := l.Floats(2, 7)
			if err != nil {
				return err
			}
			k := keyFromFloats(v)
			k.QX, k.QZ, k.QY, k.QW = -k.QX, -k.QZ, -k.QY, -k.QW
			p.set(BoneName(l.Arg(1)), k)
			return nil
		}},
	})
	if err := d.run(data); err != nil {
		return nil, err
	}
	if declared >= 0 && declared != len(p.Transforms) {
		log.Printf("hd: dpose declares %d transforms, found %d", declared, len(p.Transforms))
	}
	return p, nil
}
