package skeleton

import (
	"github.com/binzume/hdconv/coord"
	"github.com/binzume/hdconv/geom"
	"github.com/binzume/hdconv/hd"
)

type skelConvention struct{}

func (skelConvention) Root(r *Record) *geom.Matrix4 {
	return coord.SkelRoot(r.Raw)
}

func (skelConvention) Child(parent *geom.Matrix4, r *Record) *geom.Matrix4 {
	return coord.SkelChild(parent, r.Raw)
}

type dskelConvention struct{}

func (dskelConvention) Root(r *Record) *geom.Matrix4 {
	return coord.DSkelBone(r.Origin, r.Axis)
}

func (dskelConvention) Child(_ *geom.Matrix4, r *Record) *geom.Matrix4 {
	return coord.DSkelBone(r.Origin, r.Axis)
}

type dmeshConvention struct{}

func (dmeshConvention) Root(r *Record) *geom.Matrix4 {
	return coord.DMeshRoot(r.Origin, r.Axis)
}

func (dmeshConvention) Child(parent *geom.Matrix4, r *Record) *geom.Matrix4 {
	return coord.DMeshChild(parent, r.Origin, r.Axis)
}

// Conventions of the skeleton carrying file variants.
var (
	SkelConvention  Convention = skelConvention{}
	DSkelConvention Convention = dskelConvention{}
	DMeshConvention Convention = dmeshConvention{}
)

// FromSkel builds the hierarchy of a binary skeleton.
func FromSkel(s *hd.Skeleton) (*Skeleton, error) {
	records := make([]*Record, len(s.Bones))
	for i, b := range s.Bones {
		raw := geom.Matrix4(b.Matrix)
		records[i] = &Record{Name: b.Name, Parent: int(b.Parent), Raw: &raw, Length: b.Length}
	}
	return Build(records, &Options{Convention: SkelConvention, InferLength: true, QuarterTurn: true})
}

func textRecords(bones []*hd.TextBone) []*Record {
	records := make([]*Record, len(bones))
	for i, b := range bones {
		records[i] = &Record{Name: b.Name, ByName: true, Origin: b.Origin, Axis: b.Axis, Length: b.Length}
		if b.HasParent {
			records[i].ParentName = b.Parent
		}
	}
	return records
}

// FromDSkel builds the hierarchy of a text skeleton.
func FromDSkel(s *hd.TextSkeleton) (*Skeleton, error) {
	return Build(textRecords(s.Bones), &Options{Convention: DSkelConvention, InferLength: true})
}

// FromDMesh builds the hierarchy of the joints of a text mesh.
func FromDMesh(m *hd.TextMesh) (*Skeleton, error) {
	records := textRecords(m.Joints)
	for _, r := range records {
		r.Length = 1
	}
	return Build(records, &Options{Convention: DMeshConvention, InferLength: true})
}
