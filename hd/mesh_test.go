package hd

import (
	"errors"
	"testing"
)

func vertexRecord(x, y, z, u, v float32) []byte {
	return Concat(Float32s(x, y, z, u, v), []byte{255, 128, 0, 255}, Float32s(0, 1, 0, 1, 0, 0, 0, 0, 1))
}

func TestParseMesh(t *testing.T) {
	geometry := Concat(
		Uint32s(3, 3), Float32s(-1, -1, -1, 1, 1, 1),
		vertexRecord(0, 0, 0, 0, 0),
		vertexRecord(1, 0, 0, 1, 0),
		vertexRecord(0, 1, 0, 0, 1),
		Uint32s(0, 1, 2),
	)
	m, err := ParseMesh(NewChunkWriter("mesh").Add("geometry", geometry).Bytes())
	if err != nil {
		t.Fatal("ParseMesh", err)
	}
	if len(m.Vertices) != 3 || len(m.Faces) != 1 || m.BoundsMax[0] != 1 {
		t.Fatal("mesh", len(m.Vertices), len(m.Faces))
	}
	v := m.Vertices[1]
	if v.Position[0] != 1 || v.UV[0] != 1 || v.Color[1] != 128 || v.Normal[1] != 1 || v.Bitangent[2] != 1 {
		t.Error("vertex", v)
	}
	if m.Faces[0] != [3]uint32{0, 1, 2} {
		t.Error("face", m.Faces[0])
	}

	_, err = ParseMesh(NewChunkWriter("mesh").Add("geometry", geometry[:len(geometry)-4]).Bytes())
	if !errors.Is(err, ErrTruncatedBuffer) {
		t.Error("truncated", err)
	}

	bad := Concat(geometry[:len(geometry)-12], Uint32s(0, 1, 7))
	_, err = ParseMesh(NewChunkWriter("mesh").Add("geometry", bad).Bytes())
	if !errors.Is(err, ErrTruncatedBuffer) {
		t.Error("index range", err)
	}
}

func TestParseSkin(t *testing.T) {
	bone := func(name string) []byte {
		return Concat(FixedString(name, 32), Float32s(identity()...), Float32s(0, 0, 0, 1))
	}
	data := Concat(
		Uint32s(2, 2),
		Float32s(1, 0, 0, 0), []byte{1, 0, 0, 0},
		Float32s(0.5, 0.5, 0, 0), []byte{0, 1, 0, 0},
		bone("Hips"), bone("Spine"),
	)
	s, err := ParseSkin(NewChunkWriter("skin").Add("skin", data).Bytes())
	if err != nil {
		t.Fatal("ParseSkin", err)
	}
	if len(s.Weights) != 2 || len(s.Bones) != 2 || s.Bones[1].Name != "Spine" {
		t.Fatal("skin", s)
	}
	if len(s.Weights[0]) != 1 || s.Weights[0][0] != (Influence{Bone: 1, Weight: 1}) {
		t.Error("vertex 0", s.Weights[0])
	}
	if len(s.Weights[1]) != 2 || s.Weights[1][0].Bone != 0 || s.Weights[1][0].Weight != 0.5 {
		t.Error("vertex 1", s.Weights[1])
	}
}

func TestParsePose(t *testing.T) {
	data := Concat(
		Uint32s(2),
		Float32s(1, 2, 3, 0, 0, 0, 1), FixedString("Hips", 32),
		Float32s(0, 0, 0, 0.5, 0, 0, 0.5), FixedString("Head", 32),
	)
	p, err := ParsePose(NewChunkWriter("pose").Add("pose", data).Bytes())
	if err != nil {
		t.Fatal("ParsePose", err)
	}
	if len(p.Transforms) != 2 || p.Find("Hips").Key.Z != 3 || p.Find("Head").Key.QX != 0.5 {
		t.Error("pose", p.Transforms)
	}

	_, err = ParsePose(NewChunkWriter("pose").Add("pose", data[:70]).Bytes())
	if !errors.Is(err, ErrTruncatedBuffer) {
		t.Error("truncated", err)
	}
}
