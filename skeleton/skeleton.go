// Package skeleton rebuilds a bone hierarchy from flat bone records.
package skeleton

import (
	"fmt"
	"strings"

	"github.com/binzume/hdconv/coord"
	"github.com/binzume/hdconv/geom"
	"github.com/binzume/hdconv/hd"
)

// Record is one stored bone in file order. The parent is given either by
// index (Parent, negative for roots) or by name (ParentName when ByName).
type Record struct {
	Name       string
	Parent     int
	ParentName string
	ByName     bool
	Raw        *geom.Matrix4
	Origin     [3]float32
	Axis       [4]float32
	Length     float32 // initial length, zero means 1
}

// Convention places bones of one file variant in armature space.
type Convention interface {
	Root(r *Record) *geom.Matrix4
	Child(parent *geom.Matrix4, r *Record) *geom.Matrix4
}

// Options select the placement rules. InferLength extends a bone to a
// child lying on its Y axis. QuarterTurn rotates bones -90 degrees about Z,
// except for "root" named bones and their descendants.
type Options struct {
	Convention  Convention
	InferLength bool
	QuarterTurn bool
}

// Bone is a placed bone. World is in armature space, Local is relative to
// the parent bone.
type Bone struct {
	Index    int
	Name     string
	Parent   int
	Children []int
	World    *geom.Matrix4
	Local    *geom.Matrix4
	Head     *geom.Vector3
	Tail     *geom.Vector3
	Length   float32
}

type Skeleton struct {
	Bones []*Bone
	Order []int // parents before children
	Roots []int
}

const (
	straightChainMinFactor = 0.1
	straightChainTolerance = 0.001
)

// Find returns the first bone named name, or nil.
func (s *Skeleton) Find(name string) *Bone {
	for _, b := range s.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// ParentOf returns the parent bone of b, or nil for roots.
func (s *Skeleton) ParentOf(b *Bone) *Bone {
	if b.Parent < 0 {
		return nil
	}
	return s.Bones[b.Parent]
}

func resolveParents(records []*Record) ([]int, error) {
	byName := map[string]int{}
	for i := len(records) - 1; i >= 0; i-- {
		byName[records[i].Name] = i
	}
	parents := make([]int, len(records))
	for i, r := range records {
		if r.ByName {
			if r.ParentName == "" {
				parents[i] = -1
				continue
			}
			p, ok := byName[r.ParentName]
			if !ok {
				return nil, &hd.DecodeError{Kind: hd.ErrDanglingParentReference, Offset: -1, Name: r.Name,
					Detail: fmt.Sprintf("parent %q not found", r.ParentName)}
			}
			parents[i] = p
			continue
		}
		if r.Parent >= len(records) {
			return nil, &hd.DecodeError{Kind: hd.ErrDanglingParentReference, Offset: -1, Name: r.Name,
				Detail: fmt.Sprintf("parent index %d of %d bones", r.Parent, len(records))}
		}
		parents[i] = r.Parent
		if r.Parent < 0 {
			parents[i] = -1
		}
	}
	return parents, nil
}

// Build places all records and returns the hierarchy. Bones that cannot be
// reached from a root form a cycle.
func Build(records []*Record, opt *Options) (*Skeleton, error) {
	parents, err := resolveParents(records)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	names = hd.UniqueNames(names)
	s := &Skeleton{Bones: make([]*Bone, len(records))}
	for i, r := range records {
		s.Bones[i] = &Bone{Index: i, Name: names[i], Parent: parents[i], Length: r.Length}
		if s.Bones[i].Length == 0 {
			s.Bones[i].Length = 1
		}
	}
	for i, p := range parents {
		if p < 0 {
			s.Roots = append(s.Roots, i)
		} else {
			s.Bones[p].Children = append(s.Bones[p].Children, i)
		}
	}

	s.Order = s.walk(s.Roots, nil)
	if len(s.Order) != len(records) {
		return nil, cycleError(s, records)
	}
	for _, i := range s.Order {
		b, r := s.Bones[i], records[i]
		var m *geom.Matrix4
		if b.Parent < 0 {
			m = opt.Convention.Root(r)
		} else {
			m = opt.Convention.Child(s.Bones[b.Parent].World, r)
		}
		b.setWorld(m.Orthonormalized())
	}

	if opt.InferLength {
		s.inferLengths()
	}
	if opt.QuarterTurn {
		s.quarterTurn()
	}
	s.updateLocals()
	return s, nil
}

// walk returns a depth-first pre-order of the subtrees at from. Children
// of a bone listed in stop are not entered.
func (s *Skeleton) walk(from []int, stop func(b *Bone) bool) []int {
	var order []int
	stack := make([]int, 0, len(from))
	for i := len(from) - 1; i >= 0; i-- {
		stack = append(stack, from[i])
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b := s.Bones[i]
		if stop != nil && stop(b) {
			continue
		}
		order = append(order, i)
		for c := len(b.Children) - 1; c >= 0; c-- {
			stack = append(stack, b.Children[c])
		}
	}
	return order
}

func cycleError(s *Skeleton, records []*Record) error {
	seen := make([]bool, len(records))
	for _, i := range s.Order {
		seen[i] = true
	}
	for i, ok := range seen {
		if !ok {
			return &hd.DecodeError{Kind: hd.ErrCyclicHierarchy, Offset: -1, Name: records[i].Name,
				Detail: "bone is not reachable from a root"}
		}
	}
	return nil
}

func (b *Bone) setWorld(m *geom.Matrix4) {
	b.World = m
	b.Head = m.Translation()
	b.Tail = b.Head.Add(m.Axis(1).Normalize().Scale(b.Length))
}

// inferLengths moves the tail of a bone onto a child head lying on the
// bone's axis.
func (s *Skeleton) inferLengths() {
	for _, b := range s.Bones {
		for _, c := range b.Children {
			center := s.Bones[c].Head
			prox := center.Sub(b.Head)
			boneVec := b.Tail.Sub(b.Head)
			norm := prox.Dot(boneVec) / boneVec.Dot(boneVec)
			if norm <= straightChainMinFactor {
				continue
			}
			if prox.Sub(boneVec.Scale(norm)).Len() < straightChainTolerance {
				b.Tail = &geom.Vector3{X: center.X, Y: center.Y, Z: center.Z}
				b.Length = b.Tail.Sub(b.Head).Len()
			}
		}
	}
}

func isRootChain(b *Bone) bool {
	return strings.Contains(strings.ToLower(b.Name), "root")
}

func (s *Skeleton) quarterTurn() {
	r := coord.SkelQuarterTurn(geom.NewMatrix4())
	for _, i := range s.walk(s.Roots, isRootChain) {
		b := s.Bones[i]
		b.World = coord.SkelQuarterTurn(b.World)
		b.Head = r.ApplyTo(b.Head)
		b.Tail = r.ApplyTo(b.Tail)
	}
}

func (s *Skeleton) updateLocals() {
	for _, b := range s.Bones {
		if b.Parent < 0 {
			b.Local = b.World.Clone()
		} else {
			b.Local = s.Bones[b.Parent].World.Inverse().Mul(b.World)
		}
	}
}

// AddRoot appends a parentless bone placed at world.
func (s *Skeleton) AddRoot(name string, world *geom.Matrix4, length float32) *Bone {
	if length == 0 {
		length = 1
	}
	b := &Bone{Index: len(s.Bones), Name: name, Parent: -1, Length: length}
	b.setWorld(world.Orthonormalized())
	b.Local = b.World.Clone()
	s.Bones = append(s.Bones, b)
	s.Roots = append(s.Roots, b.Index)
	s.Order = append(s.Order, b.Index)
	return b
}
