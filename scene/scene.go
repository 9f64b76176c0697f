// Package scene turns decoded assets into meshes, materials and animations
// bound to one armature, and hands them to a Builder.
package scene

import (
	"github.com/binzume/hdconv/geom"
	"github.com/binzume/hdconv/hd"
	"github.com/binzume/hdconv/skeleton"
)

// MaxInfluences is the number of bone weights kept per vertex.
const MaxInfluences = 4

// Material binds resolved texture files to a mesh.
type Material struct {
	Name        string
	Type        hd.MaterialType
	TwoSided    bool
	DiffuseMap  string
	NormalMap   string
	SpecularMap string
	EmissionMap string
	MaskMap     string
	CensorMap   string
	Surface     string
	AutoUV      int32
	Speculars   [3]float32
}

// Mesh is an indexed triangle list in armature space. Joints index Bones,
// the names of the bones the mesh is weighted to.
type Mesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Bones     []string
	Joints    [][MaxInfluences]uint16
	Weights   [][MaxInfluences]float32
	Indices   []uint32
	Material  *Material
}

// Skinned reports whether the mesh carries bone weights.
func (m *Mesh) Skinned() bool {
	return len(m.Bones) > 0 && len(m.Joints) == len(m.Positions)
}

// Channel holds the parent-relative matrix of one bone for every frame.
type Channel struct {
	Bone   int
	Frames []*geom.Matrix4
}

// Animation is a sampled bone animation. Frame i is shown at i/FrameRate
// seconds.
type Animation struct {
	Name      string
	FrameRate float32
	NumFrames int
	Channels  []*Channel
}

// Builder creates host objects from the imported scene. Calls arrive in
// order: the skeleton, then materials, meshes and animations.
type Builder interface {
	AddSkeleton(s *skeleton.Skeleton) error
	AddMaterial(m *Material) error
	AddMesh(m *Mesh) error
	AddAnimation(a *Animation) error
}

// Scene collects everything imported so far.
type Scene struct {
	Skeleton   *skeleton.Skeleton
	Materials  []*Material
	Meshes     []*Mesh
	Animations []*Animation
}

// Build feeds the scene to b.
func (s *Scene) Build(b Builder) error {
	if s.Skeleton != nil && len(s.Skeleton.Bones) > 0 {
		if err := b.AddSkeleton(s.Skeleton); err != nil {
			return err
		}
	}
	for _, m := range s.Materials {
		if err := b.AddMaterial(m); err != nil {
			return err
		}
	}
	for _, m := range s.Meshes {
		if err := b.AddMesh(m); err != nil {
			return err
		}
	}
	for _, a := range s.Animations {
		if err := b.AddAnimation(a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) lastMesh() *Mesh {
	if len(s.Meshes) == 0 {
		return nil
	}
	return s.Meshes[len(s.Meshes)-1]
}
