package geom

import (
	"testing"
)

func TestVector3(t *testing.T) {
	zero := NewVector3(0, 0, 0)
	if zero.Len() != 0 || zero.LenSqr() != 0 || zero.Dot(zero) != 0 {
		t.Error("len != 0")
	}

	if *zero.Normalize() != *NewVector3(1, 0, 0) {
		t.Error("Normalize shoud returns unit vector.", zero.Normalize())
	}

	if *NewVector3(1, 0, 0).Add(NewVector3(0, 1, 0)) != *NewVector3(1, 1, 0) {
		t.Error("Vector.Add()")
	}

	if *NewVector3(1, 0, 0).Cross(NewVector3(0, 1, 0)) != *NewVector3(0, 0, 1) {
		t.Error("Vector.Cross()")
	}
}

func TestVector4(t *testing.T) {
	zero := NewVector4(0, 0, 0, 0)
	if zero.Len() != 0 || zero.LenSqr() != 0 || zero.Dot(zero) != 0 {
		t.Error("len != 0")
	}

	if *zero.Normalize() != *NewVector4(0, 0, 0, 1) {
		t.Error("Normalize shoud returns unit vector.", zero.Normalize())
	}

	if *NewVector4(1, 0, 0, 0).Add(NewVector4(0, 1, 0, 0)) != *NewVector4(1, 1, 0, 0) {
		t.Error("Vector.Add()")
	}
}

func TestTriangulatePolygon(t *testing.T) {
	verts := []*Vector3{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 0},
		{0, 1, 0},
		{0.8, 0.2, 0},
	}

	if tris := TriangulatePolygon(verts, []int{0, 1, 2}); len(tris) != 1 || tris[0] != [3]int{0, 1, 2} {
		t.Error("triangle", tris)
	}

	if tris := TriangulatePolygon(verts, []int{0, 1, 2, 3}); len(tris) != 2 {
		t.Error("quad", tris)
	}

	// non-convex
	if tris := TriangulatePolygon(verts, []int{0, 4, 1, 2, 3}); len(tris) != 3 {
		t.Error("non-convex", tris)
	}

	if len(TriangulatePolygon(verts, nil)) != 0 {
		t.Error("not empty")
	}
}
