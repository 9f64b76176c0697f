package hd

import (
	"errors"
	"testing"
)

func TestParseDMeshNegativeCount(t *testing.T) {
	src := "HD_DATA_TXT\nmesh\n{\nvert 0 0 0\ngroups\n{\ngroup A\n{\nface\n{\ncount -1;\nverts 0;\n}\n}\n}\n}\n"
	_, err := ParseDMesh([]byte(src))
	if !errors.Is(err, ErrMalformedTextBlock) {
		t.Fatal("negative count", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Line != 11 {
		t.Error("line", err)
	}
}

func TestTextLineIntsNegative(t *testing.T) {
	l := &textLine{No: 4, Text: "verts 1 2", Fields: []string{"verts", "1", "2"}}
	if _, err := l.Ints(1, -1); !errors.Is(err, ErrMalformedTextBlock) {
		t.Error("negative n", err)
	}
	v, err := l.Ints(1, 2)
	if err != nil || len(v) != 2 || v[1] != 2 {
		t.Error("ints", v, err)
	}
}
