// Package coord holds the fixed change-of-basis matrices that map stored
// Haydee transforms into a right-handed Z-up armature space.
package coord

import (
	"math"

	"github.com/binzume/hdconv/geom"
	"github.com/binzume/hdconv/hd"
)

var (
	axisX = &geom.Vector3{X: 1}
	axisY = &geom.Vector3{Y: 1}
	axisZ = &geom.Vector3{Z: 1}
)

func rows(r0, r1, r2 [3]geom.Element) geom.Matrix4 {
	return *geom.NewMatrix4FromRows(
		[4]geom.Element{r0[0], r0[1], r0[2], 0},
		[4]geom.Element{r1[0], r1[1], r1[2], 0},
		[4]geom.Element{r2[0], r2[1], r2[2], 0},
		[4]geom.Element{0, 0, 0, 1},
	)
}

// .skel
var (
	skelRootRows  = rows([3]geom.Element{-1, 0, 0}, [3]geom.Element{0, 0, -1}, [3]geom.Element{0, 1, 0})
	skelRootCols  = rows([3]geom.Element{0, 1, 0}, [3]geom.Element{0, 0, 1}, [3]geom.Element{1, 0, 0})
	skelChildRows = rows([3]geom.Element{0, 0, -1}, [3]geom.Element{1, 0, 0}, [3]geom.Element{0, 1, 0})
	skelChildCols = rows([3]geom.Element{0, 1, 0}, [3]geom.Element{0, 0, 1}, [3]geom.Element{-1, 0, 0})
)

// .dmesh
var (
	swapRowSkel   = rows([3]geom.Element{0, 0, 1}, [3]geom.Element{1, 0, 0}, [3]geom.Element{0, 1, 0})
	swapColSkel   = rows([3]geom.Element{1, 0, 0}, [3]geom.Element{0, 0, -1}, [3]geom.Element{0, -1, 0})
	meshChildRows = rows([3]geom.Element{-1, 0, 0}, [3]geom.Element{0, 0, 1}, [3]geom.Element{0, -1, 0})
	meshChildCols = rows([3]geom.Element{1, 0, 0}, [3]geom.Element{0, 0, 1}, [3]geom.Element{0, 1, 0})
)

// RotationZ returns a rotation of deg degrees about Z.
func RotationZ(deg float64) *geom.Matrix4 {
	return geom.NewRotationMatrix4FromAxisAngle(axisZ, deg*math.Pi/180)
}

func rotationX(deg float64) *geom.Matrix4 {
	return geom.NewRotationMatrix4FromAxisAngle(axisX, deg*math.Pi/180)
}

func rotationY(deg float64) *geom.Matrix4 {
	return geom.NewRotationMatrix4FromAxisAngle(axisY, deg*math.Pi/180)
}

// VectorSwapSkel maps a stored point to (-z, y, -x).
func VectorSwapSkel(v [3]float32) *geom.Vector3 {
	return &geom.Vector3{X: -v[2], Y: v[1], Z: -v[0]}
}

// MeshVertex maps a stored vertex position or normal to (-x, -z, y).
func MeshVertex(v [3]float32) *geom.Vector3 {
	return &geom.Vector3{X: -v[0], Y: -v[2], Z: v[1]}
}

// SkelRoot places a root bone of a binary skeleton.
func SkelRoot(raw *geom.Matrix4) *geom.Matrix4 {
	return skelRootRows.Mul(raw).Mul(&skelRootCols)
}

// SkelChild places a non-root bone of a binary skeleton under its parent's
// final matrix.
func SkelChild(parent, raw *geom.Matrix4) *geom.Matrix4 {
	return parent.Mul(skelChildRows.Mul(raw).Mul(&skelChildCols))
}

// SkelQuarterTurn is the -90 degree Z rotation applied to binary skeleton
// bones outside of a "root" named chain.
func SkelQuarterTurn(m *geom.Matrix4) *geom.Matrix4 {
	return RotationZ(-90).Mul(m)
}

// axisQuaternion reads a stored w-first quaternion.
func axisQuaternion(axis [4]float32) *geom.Quaternion {
	return &geom.Quaternion{W: axis[0], X: axis[1], Y: axis[2], Z: axis[3]}
}

// DSkelBone returns the armature matrix of a text skeleton bone. Text
// skeleton bones are stored in armature space, not relative to a parent.
func DSkelBone(origin [3]float32, axis [4]float32) *geom.Matrix4 {
	q := axisQuaternion(axis)
	q = &geom.Quaternion{W: -q.Z, X: q.W, Y: q.Y, Z: -q.X}
	m := geom.NewRotationMatrix4FromQuaternion(q.Normalize()).Mul(RotationZ(90))
	m.SetTranslation(VectorSwapSkel([3]float32{-origin[1], -origin[2], origin[0]}))
	return m
}

// DMeshRoot places a root joint of a text mesh.
func DMeshRoot(origin [3]float32, axis [4]float32) *geom.Matrix4 {
	m := geom.NewRotationMatrix4FromQuaternion(axisQuaternion(axis).Normalize())
	m.SetTranslation(VectorSwapSkel(origin))
	return swapRowSkel.Mul(m).Mul(&swapColSkel)
}

// DMeshChild places a non-root joint of a text mesh under its parent's
// final matrix.
func DMeshChild(parent *geom.Matrix4, origin [3]float32, axis [4]float32) *geom.Matrix4 {
	r := geom.NewRotationMatrix4FromQuaternion(axisQuaternion(axis).Normalize())
	m := parent.Mul(meshChildRows.Mul(r).Mul(&meshChildCols))
	m.SetTranslation(parent.ApplyTo(&geom.Vector3{X: -origin[2], Y: origin[0], Z: origin[1]}))
	return m
}

// SkinBone returns the bind matrix of a .skin bone from its stored
// row-major matrix.
func SkinBone(stored [16]float32) *geom.Matrix4 {
	// stored rows are the columns of a column-major matrix
	m := geom.NewMatrix4FromSlice(stored[:]).Transposed()
	r := m.Rotation3()
	row3 := m.Row(3)
	r.SetTranslation(r.ApplyTo(&geom.Vector3{X: row3[0], Y: row3[1], Z: row3[2]}))
	orient := RotationZ(90).Mul(rotationY(-90))
	return rotationX(-90).Mul(r).Mul(orient)
}

func keyRotation(k hd.Key) *geom.Matrix4 {
	q := &geom.Quaternion{W: k.QW, X: -k.QY, Y: k.QX, Z: k.QZ}
	return geom.NewRotationMatrix4FromQuaternion(q.Normalize())
}

// PoseKey returns the pose matrix of a non-root bone relative to its
// parent's pose.
func PoseKey(k hd.Key) *geom.Matrix4 {
	m := keyRotation(k)
	m.SetTranslation(&geom.Vector3{X: -k.Z, Y: k.X, Z: k.Y})
	return m
}

// MotionRootKey returns the armature-space pose of a root bone in a binary
// motion.
func MotionRootKey(k hd.Key) *geom.Matrix4 {
	return RotationZ(90).Mul(PoseKey(k))
}

// PoseRootKey returns the armature-space pose of a root bone in a text
// motion or a pose.
func PoseRootKey(k hd.Key) *geom.Matrix4 {
	m := keyRotation(k)
	m.SetTranslation(&geom.Vector3{X: -k.X, Y: -k.Z, Z: k.Y})
	return m.Mul(RotationZ(90))
}
