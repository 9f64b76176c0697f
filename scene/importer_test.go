package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binzume/hdconv/coord"
	"github.com/binzume/hdconv/geom"
	"github.com/binzume/hdconv/hd"
	"github.com/binzume/hdconv/skeleton"
)

const eps = 1e-5

func writeFiles(t *testing.T, files map[string][]byte) string {
	dir := t.TempDir()
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func vertexRecord(x, y, z, u, v float32) []byte {
	return hd.Concat(hd.Float32s(x, y, z, u, v), []byte{255, 255, 255, 255}, hd.Float32s(0, 1, 0, 1, 0, 0, 0, 0, 1))
}

func testMesh() []byte {
	return hd.NewChunkWriter("mesh").Add("geometry", hd.Concat(
		hd.Uint32s(3, 3), hd.Float32s(0, 0, 0, 1, 1, 0),
		vertexRecord(0, 0, 0, 0, 0),
		vertexRecord(1, 0, 0, 1, 0),
		vertexRecord(0, 1, 0, 0, 1),
		hd.Uint32s(0, 1, 2),
	)).Bytes()
}

func testSkin() []byte {
	bone := func(name string) []byte {
		return hd.Concat(hd.FixedString(name, 32), hd.Float32s(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1), hd.Float32s(0, 0, 0, 1))
	}
	return hd.NewChunkWriter("skin").Add("skin", hd.Concat(
		hd.Uint32s(3, 2),
		hd.Float32s(1, 0, 0, 0), []byte{1, 0, 0, 0},
		hd.Float32s(0.5, 0.5, 0, 0), []byte{0, 1, 0, 0},
		hd.Float32s(0.25, 0.25, 0, 0), []byte{0, 1, 0, 0},
		bone("Hips"), bone("Spine"),
	)).Bytes()
}

func matrixEqual(a, b *geom.Matrix4) bool {
	for i := range a {
		if d := a[i] - b[i]; d > eps || d < -eps {
			return false
		}
	}
	return true
}

func TestImportMeshAndSkin(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{"body.mesh": testMesh(), "body.skin": testSkin()})
	im := NewImporter(&Options{Format: hd.H2})
	if err := im.Import(filepath.Join(dir, "body.mesh")); err != nil {
		t.Fatal("mesh", err)
	}
	m := im.Scene.Meshes[0]
	if m.Name != "body" || len(m.Positions) != 3 || len(m.Indices) != 3 {
		t.Fatal("mesh", m.Name, len(m.Positions), len(m.Indices))
	}
	if m.Positions[1] != [3]float32{-1, 0, 0} || m.Positions[2] != [3]float32{0, 0, 1} {
		t.Error("positions", m.Positions)
	}
	if m.Normals[0] != [3]float32{0, 0, 1} {
		t.Error("normal", m.Normals[0])
	}
	if m.Indices[0] != 2 || m.Indices[2] != 0 {
		t.Error("winding", m.Indices)
	}
	if m.UVs[2] != [2]float32{0, 0} || m.UVs[0] != [2]float32{0, 1} {
		t.Error("H2 uv", m.UVs)
	}

	if err := im.Import(filepath.Join(dir, "body.skin")); err != nil {
		t.Fatal("skin", err)
	}
	if !m.Skinned() || len(m.Bones) != 2 {
		t.Fatal("skin bones", m.Bones)
	}
	if m.Bones[m.Joints[0][0]] != "Spine" || m.Weights[0][0] != 1 {
		t.Error("vertex 0", m.Joints[0], m.Weights[0])
	}
	for _, w := range [][MaxInfluences]float32{m.Weights[1], m.Weights[2]} {
		if w[0] != 0.5 || w[1] != 0.5 {
			t.Error("normalized weights", w)
		}
	}

	sk := im.Scene.Skeleton
	if sk == nil || len(sk.Roots) != 2 {
		t.Fatal("skin armature", sk)
	}
	b := sk.Find("Hips")
	if b.Length != skinBoneLength || !matrixEqual(b.World, coord.SkinBone([16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}).Orthonormalized()) {
		t.Error("skin bone", b.Length, b.World)
	}
}

func TestImportSkinWithoutMesh(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{"body.skin": testSkin()})
	if err := NewImporter(nil).Import(filepath.Join(dir, "body.skin")); err == nil {
		t.Error("skin without mesh")
	}
}

const testDMesh = `HD_DATA_TXT
mesh
{
	verts 4
	{
		vert 0 0 0;
		vert 1 0 0;
		vert 1 1 0;
		vert 0 1 0;
	}
	uvs 4
	{
		uv 0 0;
		uv 1 0;
		uv 1 1;
		uv 0 1;
	}
	groups 2
	{
		group Quad
		{
			face
			{
				count 4;
				verts 0 1 2 3;
				uvs 0 1 2 3;
				smoothGroup 1;
			}
		}
		group Split
		{
			face
			{
				count 3;
				verts 0 1 2;
				smoothGroup 1;
			}
			face
			{
				count 3;
				verts 0 2 3;
				smoothGroup 2;
			}
		}
	}
	joints 2
	{
		joint Root
		{
			origin 0 0 0;
			axis 1 0 0 0;
		}
		joint Spine
		{
			parent Root;
			origin 0 1 0;
			axis 1 0 0 0;
		}
	}
	weights 1
	{
		weight 2 1 0.75;
	}
}
`

func TestImportDMesh(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{"body.dmesh": []byte(testDMesh)})
	im := NewImporter(nil)
	if err := im.Import(filepath.Join(dir, "body.dmesh")); err != nil {
		t.Fatal("dmesh", err)
	}
	if im.Scene.Skeleton == nil || len(im.Scene.Skeleton.Bones) != 2 {
		t.Fatal("joints", im.Scene.Skeleton)
	}
	if len(im.Scene.Meshes) != 2 {
		t.Fatal("groups", len(im.Scene.Meshes))
	}

	quad := im.Scene.Meshes[0]
	if quad.Name != "Quad" || len(quad.Positions) != 4 || len(quad.Indices) != 6 {
		t.Fatal("quad", len(quad.Positions), quad.Indices)
	}
	// corners are reversed: vertex 1 is stored vertex 2
	if quad.Positions[1] != [3]float32{-1, 0, 1} || quad.UVs[1] != [2]float32{1, 1} {
		t.Error("corner", quad.Positions[1], quad.UVs[1])
	}
	for i, n := range quad.Normals {
		if n != [3]float32{0, -1, 0} {
			t.Error("normal", i, n)
		}
	}
	if !quad.Skinned() || quad.Bones[quad.Joints[1][0]] != "Spine" || quad.Weights[1][0] != 1 {
		t.Error("weight", quad.Bones, quad.Joints[1], quad.Weights[1])
	}
	if quad.Weights[0][0] != 0 {
		t.Error("unweighted vertex", quad.Weights[0])
	}

	split := im.Scene.Meshes[1]
	if len(split.Positions) != 6 || split.UVs != nil {
		t.Error("smoothing groups split vertices", len(split.Positions), split.UVs)
	}
}

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
	numTracks 3;
	numFrames 2;
	frameRate 24;
	track Hips
	{
		key 0 1 0 0 0 0 1;
		key 0 2 0 0 0 0 1;
	}
	track Spine
	{
		key 0 0 1 0 0 0 1;
		key 0 0 1 0.6 0 0 0.8;
	}
	track Tail
	{
		key 0 0 0 0 0 0 1;
		key 0 0 0 0 0 0 1;
	}
}
`

func TestImportMotion(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"body.dskel": []byte(testDSkel),
		"walk.dmot":  []byte(testDMot),
		"rest.dpose": []byte("HD_DATA_TXT\npose\n{\ntransform Spine 0 0 2 0 0 0 1;\n}\n"),
	})
	im := NewImporter(nil)
	if err := im.Import(filepath.Join(dir, "walk.dmot")); err == nil {
		t.Error("motion without armature")
	}
	if err := im.Import(filepath.Join(dir, "body.dskel")); err != nil {
		t.Fatal("dskel", err)
	}
	if err := im.Import(filepath.Join(dir, "body.dskel")); err == nil {
		t.Error("second armature")
	}
	if err := im.Import(filepath.Join(dir, "walk.dmot")); err != nil {
		t.Fatal("dmot", err)
	}

	a := im.Scene.Animations[0]
	if a.Name != "walk" || a.FrameRate != 24 || a.NumFrames != 2 || len(a.Channels) != 2 {
		t.Fatal("animation", a.Name, a.FrameRate, a.NumFrames, len(a.Channels))
	}
	hips, spine := a.Channels[0], a.Channels[1]
	if len(hips.Frames) != 2 || len(spine.Frames) != 2 {
		t.Fatal("frames", len(hips.Frames), len(spine.Frames))
	}
	if want := coord.PoseRootKey(hd.Key{Y: 2, QW: 1}); !matrixEqual(hips.Frames[1], want) {
		t.Error("root frame", hips.Frames[1], want)
	}
	if want := coord.PoseKey(hd.Key{Z: 1, QX: 0.6, QW: 0.8}); !matrixEqual(spine.Frames[1], want) {
		t.Error("child frame", spine.Frames[1], want)
	}

	if err := im.Import(filepath.Join(dir, "rest.dpose")); err != nil {
		t.Fatal("dpose", err)
	}
	p := im.Scene.Animations[1]
	if p.NumFrames != 1 || p.FrameRate != DefaultFrameRate || len(p.Channels) != 1 {
		t.Fatal("pose", p.NumFrames, len(p.Channels))
	}
	if want := coord.PoseKey(hd.Key{Z: 2, QW: -1}); !matrixEqual(p.Channels[0].Frames[0], want) {
		t.Error("pose frame", p.Channels[0].Frames[0], want)
	}
}

func skelBone(name string, parent int32, x, y, z float32) []byte {
	return hd.Concat(
		hd.FixedString(name, 32),
		hd.Float32s(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, x, y, z, 1),
		hd.Int32s(parent),
		hd.Float32s(0.1, 0.2, 2),
		hd.Int32s(0),
	)
}

func keyRecord(k hd.Key) []byte {
	return hd.Float32s(k.X, k.Y, k.Z, k.QX, k.QZ, k.QY, k.QW)
}

func TestImportSkelAndMotion(t *testing.T) {
	skel := hd.NewChunkWriter("skeleton").
		AddInt32("numBones", 3).
		Add("bones", hd.Concat(
			skelBone("SK_Root", -1, 1, 2, 3),
			skelBone("A", 0, 4, 0, 0),
			skelBone("B", 0, 0, 0, -3),
		)).
		Bytes()
	keys := []hd.Key{
		{X: 1, QW: 1},
		{X: 1, Y: 0.5, QZ: 0.6, QW: 0.8},
		{Y: 2, QW: 1},
		{Y: 2, QZ: 0.6, QW: 0.8},
	}
	mot := hd.NewChunkWriter("motion").
		AddInt32("numFrames", 2).
		AddInt32("numKeys", 4).
		AddInt32("numTracks", 3).
		Add("keys", hd.Concat(keyRecord(keys[0]), keyRecord(keys[1]), keyRecord(keys[2]), keyRecord(keys[3]))).
		Add("tracks", hd.Concat(
			hd.FixedString("SK_Root", 32), hd.Int32s(0),
			hd.FixedString("A", 32), hd.Int32s(2),
			hd.FixedString("Tail", 32), hd.Int32s(0),
		)).
		Bytes()
	dir := writeFiles(t, map[string][]byte{"body.skel": skel, "walk.motion": mot})

	im := NewImporter(nil)
	if err := im.Import(filepath.Join(dir, "body.skel")); err != nil {
		t.Fatal("skel", err)
	}
	sk := im.Scene.Skeleton
	if len(sk.Bones) != 3 || len(sk.Roots) != 1 || sk.Bones[0].Length < 4-eps {
		t.Fatal("armature", len(sk.Bones), sk.Roots, sk.Bones[0].Length)
	}
	if err := im.Import(filepath.Join(dir, "walk.motion")); err != nil {
		t.Fatal("motion", err)
	}

	a := im.Scene.Animations[0]
	if a.Name != "walk" || a.FrameRate != DefaultFrameRate || a.NumFrames != 2 || len(a.Channels) != 2 {
		t.Fatal("animation", a.Name, a.FrameRate, a.NumFrames, len(a.Channels))
	}
	root, child := a.Channels[0], a.Channels[1]
	if root.Bone != 0 || child.Bone != 1 {
		t.Error("channel bones", root.Bone, child.Bone)
	}
	for f := 0; f < 2; f++ {
		if want := coord.MotionRootKey(keys[f]); !matrixEqual(root.Frames[f], want) {
			t.Error("root frame", f, root.Frames[f], want)
		}
		if want := coord.PoseKey(keys[2+f]); !matrixEqual(child.Frames[f], want) {
			t.Error("child frame", f, child.Frames[f], want)
		}
	}
}

func TestImportOutfitParts(t *testing.T) {
	outfit := `HD_DATA_TXT
outfit Suit
{
	name Suit;
	data
	{
		mesh "Outfits\Suit\body.mesh";
		skin "Outfits\Suit\body.skin";
		material "Outfits\Suit\body.mtl";
	}
	data
	{
		mesh "Outfits\Suit\gone.mesh";
	}
}
`
	material := `HD_DATA_TXT
material
{
	type MASK;
	diffuseMap "body_D.png";
	normalMap "Textures\missing_N.png";
	censorMap "body_C.png";
	surface flesh;
	autouv 1;
}
`
	dir := writeFiles(t, map[string][]byte{
		"Outfits/Suit/suit.outfit": []byte(outfit),
		"Outfits/Suit/body.mesh":   testMesh(),
		"Outfits/Suit/body.skin":   testSkin(),
		"Outfits/Suit/body.mtl":    []byte(material),
		"Outfits/Suit/body_D.png":  {},
	})
	im := NewImporter(nil)
	if err := im.Import(filepath.Join(dir, "Outfits", "Suit", "suit.outfit")); err != nil {
		t.Fatal("outfit", err)
	}
	if len(im.Scene.Meshes) != 1 || len(im.Scene.Materials) != 1 {
		t.Fatal("parts", len(im.Scene.Meshes), len(im.Scene.Materials))
	}
	m := im.Scene.Meshes[0]
	if m.Material == nil || m.Material.Type != hd.MaterialMask || !m.Skinned() {
		t.Fatal("part", m.Material, m.Skinned())
	}
	if m.Material.DiffuseMap != filepath.Join(dir, "Outfits", "Suit", "body_D.png") {
		t.Error("diffuse", m.Material.DiffuseMap)
	}
	if !strings.HasSuffix(filepath.ToSlash(m.Material.NormalMap), "Textures/missing_N.png") {
		t.Error("normal map", m.Material.NormalMap)
	}
	if m.Material.CensorMap != filepath.Join(dir, "Outfits", "Suit", "body_C.png") || m.Material.Surface != "flesh" || m.Material.AutoUV != 1 {
		t.Error("extra properties", m.Material.CensorMap, m.Material.Surface, m.Material.AutoUV)
	}
}

func TestImportUnsupported(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{"a.txt": []byte("x"), "b.mesh": []byte("HD_CHUNKnot really")})
	im := NewImporter(nil)
	if err := im.Import(filepath.Join(dir, "a.txt")); err == nil {
		t.Error("extension")
	}
	if err := im.Import(filepath.Join(dir, "b.mesh")); err == nil {
		t.Error("broken mesh")
	}
	if err := im.Import(filepath.Join(dir, "missing.mesh")); err == nil || !strings.Contains(err.Error(), "missing.mesh") {
		t.Error("missing file", err)
	}
}

type recorder struct {
	calls []string
}

func (r *recorder) AddSkeleton(s *skeleton.Skeleton) error {
	r.calls = append(r.calls, "skeleton")
	return nil
}

func (r *recorder) AddMaterial(m *Material) error {
	r.calls = append(r.calls, "material")
	return nil
}

func (r *recorder) AddMesh(m *Mesh) error {
	r.calls = append(r.calls, "mesh")
	return nil
}

func (r *recorder) AddAnimation(a *Animation) error {
	r.calls = append(r.calls, "animation")
	return nil
}

func TestSceneBuildOrder(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"body.dskel": []byte(testDSkel),
		"body.mesh":  testMesh(),
		"body.mtl":   []byte("HD_DATA_TXT\nmaterial\n{\ntype OPAQUE;\n}\n"),
		"walk.dmot":  []byte(testDMot),
	})
	im := NewImporter(nil)
	for _, f := range []string{"body.mesh", "body.mtl", "body.dskel", "walk.dmot"} {
		if err := im.Import(filepath.Join(dir, f)); err != nil {
			t.Fatal(f, err)
		}
	}
	if im.Scene.Meshes[0].Material != im.Scene.Materials[0] {
		t.Error("material binds to the last mesh")
	}
	r := &recorder{}
	if err := im.Scene.Build(r); err != nil {
		t.Fatal(err)
	}
	if strings.Join(r.calls, ",") != "skeleton,material,mesh,animation" {
		t.Error("calls", r.calls)
	}
}
