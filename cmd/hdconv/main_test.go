package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binzume/hdconv/gltfutil"
	"github.com/binzume/hdconv/hd"
)

const testDSkel = `HD_DATA_TXT
skeleton 2
{
	bone Hips
	{
		origin 0 0 0;
		axis 1 0 0 0;
	}
	bone Spine
	{
		parent Hips;
		origin 0 0 1;
		axis 1 0 0 0;
	}
}
`

const testDMot = `HD_DATA_TXT
motion
{
	numTracks 1;
	numFrames 2;
	track Spine
	{
		key 0 0 1 0 0 0 1;
		key 0 0 1 0.6 0 0 0.8;
	}
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSplitArgs(t *testing.T) {
	inputs, output := splitArgs([]string{"a/body.outfit"})
	if len(inputs) != 1 || output != "a/body.glb" {
		t.Error("default output", inputs, output)
	}
	inputs, output = splitArgs([]string{"body.outfit", "walk.dmot", "out.GLTF"})
	if len(inputs) != 2 || output != "out.GLTF" {
		t.Error("explicit output", inputs, output)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, configFileName, `
format: H2
skeleton: skel/body.dskel
scale: 0.01
inputs:
  - walk.dmot
texture:
  resolution_limit: 1024
`)
	if found := findConfig("", filepath.Join(dir, "body.outfit")); found != path {
		t.Error("findConfig", found)
	}
	conf, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Skeleton != filepath.Join(dir, "skel", "body.dskel") || conf.Inputs[0] != filepath.Join(dir, "walk.dmot") {
		t.Error("relative paths", conf.Skeleton, conf.Inputs)
	}

	conf.Resolve(Flags{Scale: 2})
	if conf.Scale != 2 || conf.FrameRate != 30 || conf.Texture.ResolutionLimit != 1024 {
		t.Error("resolve", conf.Scale, conf.FrameRate, conf.Texture)
	}
	opt, err := conf.importOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opt.Format != hd.H2 {
		t.Error("format", opt.Format)
	}
	if g := conf.gltfOptions(); g.Scale != 2 || g.TextureResolutionLimit != 1024 {
		t.Error("gltf options", g)
	}
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := writeFile(t, t.TempDir(), configFileName, "colour: red\n")
	if _, err := loadConfig(path); err == nil {
		t.Error("unknown field should fail")
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	skel := writeFile(t, dir, "body.dskel", testDSkel)
	mot := writeFile(t, dir, "walk.dmot", testDMot)
	output := filepath.Join(dir, "walk.glb")

	conf := &Config{Skeleton: skel}
	conf.Resolve(Flags{})
	if err := convert(conf, []string{mot}, output); err != nil {
		t.Fatal(err)
	}
	doc, err := gltfutil.Load(output)
	if err != nil {
		t.Fatal(err)
	}
	// root and two bones
	if len(doc.Nodes) != 3 || len(doc.Animations) != 1 {
		t.Fatal("document", gltfutil.Summary(doc))
	}
	if doc.Animations[0].Name != "walk" || len(doc.Animations[0].Channels) != 2 {
		t.Error("animation", doc.Animations[0].Name, len(doc.Animations[0].Channels))
	}
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "body.dskel", testDSkel)
	var buf bytes.Buffer
	if err := dump(&buf, path, "yaml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Spine") {
		t.Error("yaml dump", buf.String())
	}
	buf.Reset()
	if err := dump(&buf, path, "spew"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Hips") {
		t.Error("spew dump", buf.String())
	}
	if err := dump(&buf, path, "xml"); err == nil {
		t.Error("unknown format should fail")
	}
	if err := dump(&buf, writeFile(t, dir, "notes.txt", "hello"), ""); err == nil {
		t.Error("unsupported type should fail")
	}
}
