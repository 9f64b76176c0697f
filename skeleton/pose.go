package skeleton

import (
	"github.com/binzume/hdconv/coord"
	"github.com/binzume/hdconv/geom"
	"github.com/binzume/hdconv/hd"
)

// RootKey places the key of a root bone in armature space.
type RootKey func(k hd.Key) *geom.Matrix4

var (
	// MotionRoot is used by binary motions.
	MotionRoot RootKey = coord.MotionRootKey
	// PoseRoot is used by text motions and poses.
	PoseRoot RootKey = coord.PoseRootKey
)

// Pose returns the armature-space matrix of every bone. Keyed children are
// placed relative to their parent's pose. Bones without a key keep their
// rest transform relative to the parent.
func (s *Skeleton) Pose(keys map[string]hd.Key, root RootKey) []*geom.Matrix4 {
	world := make([]*geom.Matrix4, len(s.Bones))
	for _, i := range s.Order {
		b := s.Bones[i]
		k, keyed := keys[b.Name]
		switch {
		case b.Parent < 0 && keyed:
			world[i] = root(k)
		case b.Parent < 0:
			world[i] = b.World.Clone()
		case keyed:
			world[i] = world[b.Parent].Mul(coord.PoseKey(k))
		default:
			world[i] = world[b.Parent].Mul(b.Local)
		}
	}
	return world
}

// LocalPose converts armature-space pose matrices to parent-relative ones.
func (s *Skeleton) LocalPose(world []*geom.Matrix4) []*geom.Matrix4 {
	local := make([]*geom.Matrix4, len(world))
	for i, b := range s.Bones {
		if b.Parent < 0 {
			local[i] = world[i]
		} else {
			local[i] = world[b.Parent].Inverse().Mul(world[i])
		}
	}
	return local
}

// Unmatched returns the key names that do not name a bone.
func (s *Skeleton) Unmatched(names []string) []string {
	var out []string
	for _, n := range names {
		if s.Find(n) == nil {
			out = append(out, n)
		}
	}
	return out
}
