package gltfutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func testDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{{
		Indices:    gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2})),
		Attributes: map[string]uint32{"POSITION": pos},
	}}}}
	doc.Nodes = []*gltf.Node{{Name: "tri", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []uint32{0}
	return doc
}

func TestSaveBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.glb")
	if err := Save(testDocument(), path); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 1 || len(doc.Meshes) != 1 || doc.Meshes[0].Name != "tri" {
		t.Error("loaded document", Summary(doc))
	}
}

func TestSaveText(t *testing.T) {
	dir := t.TempDir()
	if err := Save(testDocument(), filepath.Join(dir, "out.gltf")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.bin")); err != nil {
		t.Error("buffer file", err)
	}
	doc, err := Load(filepath.Join(dir, "out.gltf"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Accessors[0].Count != 3 {
		t.Error("position count", doc.Accessors[0].Count)
	}
}

func TestSaveUnsupported(t *testing.T) {
	if err := Save(testDocument(), filepath.Join(t.TempDir(), "out.obj")); err == nil {
		t.Error("unsupported extension should fail")
	}
}

func TestSummary(t *testing.T) {
	want := "nodes:1 meshes:1 skins:0 materials:0 textures:0 animations:0"
	if s := Summary(testDocument()); s != want {
		t.Error("summary", s)
	}
}
