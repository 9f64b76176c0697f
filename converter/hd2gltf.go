package converter

import (
	"log"
	"math"
	"path/filepath"

	"github.com/binzume/hdconv/geom"
	"github.com/binzume/hdconv/hd"
	"github.com/binzume/hdconv/scene"
	"github.com/binzume/hdconv/skeleton"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	unlitMaterialExt    = "KHR_materials_unlit"
	specularMaterialExt = "KHR_materials_specular"
	maskAlphaCutoff     = 0.5
)

type GLTFOption struct {
	Scale      float32 // Default: 1
	ForceUnlit bool

	TextureReCompress      bool
	TextureBytesThreshold  int64 // 0: unlimited
	TextureResolutionLimit int   // 0: unlimited
	TextureScale           float32
}

// GLTFBuilder writes an imported scene as a glTF document. Everything is
// placed under one root node turning the Z-up armature space to Y-up.
type GLTFBuilder struct {
	*GLTFOption
	*gltf.Document

	root      uint32
	skeleton  *skeleton.Skeleton
	boneNodes []uint32
	materials map[*scene.Material]uint32
	textures  *textureCache
	extUsed   map[string]bool
}

var _ scene.Builder = (*GLTFBuilder)(nil)

func NewGLTFBuilder(options *GLTFOption) *GLTFBuilder {
	if options == nil {
		options = &GLTFOption{}
	}
	if options.Scale == 0 {
		options.Scale = 1
	}
	if options.TextureScale == 0 {
		options.TextureScale = 1.0
	}
	b := &GLTFBuilder{
		GLTFOption: options,
		Document:   gltf.NewDocument(),
		materials:  map[*scene.Material]uint32{},
		textures:   newTextureCache(),
		extUsed:    map[string]bool{},
	}
	s := options.Scale
	b.root = b.addNode(&gltf.Node{
		Name:        "Armature",
		Rotation:    [4]float32{-math.Sqrt2 / 2, 0, 0, math.Sqrt2 / 2},
		Scale:       [3]float32{s, s, s},
		Translation: [3]float32{0, 0, 0},
	})
	b.Scenes[0].Nodes = append(b.Scenes[0].Nodes, b.root)
	return b
}

func (b *GLTFBuilder) addNode(n *gltf.Node) uint32 {
	b.Nodes = append(b.Nodes, n)
	return uint32(len(b.Nodes) - 1)
}

func (b *GLTFBuilder) addChild(parent, child uint32) {
	b.Nodes[parent].Children = append(b.Nodes[parent].Children, child)
}

func (b *GLTFBuilder) addMatrices(mat [][4][4]float32) uint32 {
	a := make([][4]float32, len(mat)*4)
	for i, m := range mat {
		a[i*4+0] = m[0]
		a[i*4+1] = m[1]
		a[i*4+2] = m[2]
		a[i*4+3] = m[3]
	}
	acc := modeler.WriteTangent(b.Document, a)
	b.Accessors[acc].Type = gltf.AccessorMat4
	b.Accessors[acc].Count /= 4
	b.BufferViews[*b.Accessors[acc].BufferView].ByteStride *= 4
	return acc
}

func columns(m *geom.Matrix4) [4][4]float32 {
	return [4][4]float32{
		{m[0], m[1], m[2], m[3]},
		{m[4], m[5], m[6], m[7]},
		{m[8], m[9], m[10], m[11]},
		{m[12], m[13], m[14], m[15]},
	}
}

func setTRS(n *gltf.Node, m *geom.Matrix4) {
	t, r, _ := m.Decompose()
	n.Translation = t.Array()
	n.Rotation = r.Normalize().Array()
	n.Scale = [3]float32{1, 1, 1}
}

// AddSkeleton adds one node per bone, parents first.
func (b *GLTFBuilder) AddSkeleton(s *skeleton.Skeleton) error {
	if b.skeleton != nil {
		return errors.New("gltf: skeleton already added")
	}
	b.skeleton = s
	b.boneNodes = make([]uint32, len(s.Bones))
	for _, i := range s.Order {
		bone := s.Bones[i]
		n := &gltf.Node{Name: bone.Name}
		setTRS(n, bone.Local)
		b.boneNodes[i] = b.addNode(n)
		if bone.Parent < 0 {
			b.addChild(b.root, b.boneNodes[i])
		} else {
			b.addChild(b.boneNodes[bone.Parent], b.boneNodes[i])
		}
	}
	return nil
}

func (b *GLTFBuilder) useExtension(name string) {
	if !b.extUsed[name] {
		b.extUsed[name] = true
		b.ExtensionsUsed = append(b.ExtensionsUsed, name)
	}
}

func (b *GLTFBuilder) textureIndex(path string) *uint32 {
	if path == "" {
		return nil
	}
	tex, err := b.addTexture(path)
	if err != nil {
		log.Print("Texture read error:", err)
		return nil
	}
	return tex
}

func (b *GLTFBuilder) convertMaterial(mat *scene.Material) *gltf.Material {
	var rf float32 = 0.6
	var mf float32 = 0
	mm := &gltf.Material{
		Name: mat.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
			RoughnessFactor: &rf,
			MetallicFactor:  &mf,
		},
		DoubleSided: mat.TwoSided,
	}
	switch {
	case mat.Type == hd.MaterialMask:
		cutoff := float32(maskAlphaCutoff)
		mm.AlphaMode = gltf.AlphaMask
		mm.AlphaCutoff = &cutoff
	case b.textures.hasAlpha(mat.DiffuseMap):
		mm.AlphaMode = gltf.AlphaBlend
	}

	if tex := b.textureIndex(mat.DiffuseMap); tex != nil {
		mm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: *tex}
	}
	if extras := materialExtras(mat); len(extras) > 0 {
		mm.Extras = extras
	}
	if b.ForceUnlit {
		mm.Extensions = map[string]interface{}{unlitMaterialExt: map[string]string{}}
		b.useExtension(unlitMaterialExt)
		return mm
	}
	if tex := b.textureIndex(mat.NormalMap); tex != nil {
		mm.NormalTexture = &gltf.NormalTexture{Index: tex}
	}
	if tex := b.textureIndex(mat.EmissionMap); tex != nil {
		mm.EmissiveTexture = &gltf.TextureInfo{Index: *tex}
		mm.EmissiveFactor = [3]float32{1, 1, 1}
	}
	if mat.Speculars != [3]float32{} || mat.SpecularMap != "" {
		ext := map[string]interface{}{}
		if mat.Speculars != [3]float32{} {
			ext["specularColorFactor"] = mat.Speculars
		}
		if tex := b.textureIndex(mat.SpecularMap); tex != nil {
			ext["specularColorTexture"] = map[string]uint32{"index": *tex}
		}
		mm.Extensions = map[string]interface{}{specularMaterialExt: ext}
		b.useExtension(specularMaterialExt)
	}
	return mm
}

// materialExtras keeps the properties glTF has no field for. Texture
// paths are reduced to file names.
func materialExtras(mat *scene.Material) map[string]interface{} {
	extras := map[string]interface{}{}
	if mat.MaskMap != "" {
		extras["maskMap"] = filepath.Base(mat.MaskMap)
	}
	if mat.CensorMap != "" {
		extras["censorMap"] = filepath.Base(mat.CensorMap)
	}
	if mat.Surface != "" {
		extras["surface"] = mat.Surface
	}
	if mat.AutoUV != 0 {
		extras["autoUV"] = mat.AutoUV
	}
	return extras
}

func (b *GLTFBuilder) AddMaterial(mat *scene.Material) error {
	if _, ok := b.materials[mat]; ok {
		return nil
	}
	b.Materials = append(b.Materials, b.convertMaterial(mat))
	b.materials[mat] = uint32(len(b.Materials) - 1)
	return nil
}

// skinJoints maps the bone palette of m to skeleton nodes. Weights of
// bones missing from the skeleton are dropped.
func (b *GLTFBuilder) skinJoints(m *scene.Mesh) ([]int, [][4]uint16, [][4]float32) {
	var bones []int
	remap := make([]int, len(m.Bones))
	for i, name := range m.Bones {
		remap[i] = -1
		if bone := b.skeleton.Find(name); bone != nil {
			remap[i] = len(bones)
			bones = append(bones, bone.Index)
		} else {
			log.Printf("mesh %q: bone %q not in skeleton", m.Name, name)
		}
	}
	if len(bones) == 0 {
		return nil, nil, nil
	}
	joints := make([][4]uint16, len(m.Joints))
	weights := make([][4]float32, len(m.Weights))
	for v := range m.Joints {
		var sum float32
		for k := 0; k < scene.MaxInfluences; k++ {
			if m.Weights[v][k] == 0 || int(m.Joints[v][k]) >= len(remap) {
				continue
			}
			j := remap[m.Joints[v][k]]
			if j < 0 {
				continue
			}
			joints[v][k] = uint16(j)
			weights[v][k] = m.Weights[v][k]
			sum += weights[v][k]
		}
		if sum > 0 {
			for k := range weights[v] {
				weights[v][k] /= sum
			}
		}
	}
	return bones, joints, weights
}

func (b *GLTFBuilder) addSkin(bones []int) uint32 {
	joints := make([]uint32, len(bones))
	invmats := make([][4][4]float32, len(bones))
	for i, bi := range bones {
		joints[i] = b.boneNodes[bi]
		invmats[i] = columns(b.skeleton.Bones[bi].World.Inverse())
	}
	b.Skins = append(b.Skins, &gltf.Skin{
		Joints:              joints,
		Skeleton:            gltf.Index(b.root),
		InverseBindMatrices: gltf.Index(b.addMatrices(invmats)),
	})
	return uint32(len(b.Skins) - 1)
}

func (b *GLTFBuilder) AddMesh(m *scene.Mesh) error {
	if len(m.Indices) == 0 {
		return nil
	}
	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(b.Document, m.Positions),
	}
	if len(m.Normals) == len(m.Positions) && !b.ForceUnlit {
		attributes["NORMAL"] = modeler.WriteNormal(b.Document, m.Normals)
	}
	if len(m.UVs) == len(m.Positions) {
		uvs := make([][2]float32, len(m.UVs))
		for i, uv := range m.UVs {
			uvs[i] = [2]float32{uv[0], 1 - uv[1]}
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(b.Document, uvs)
	}

	node := &gltf.Node{Name: m.Name}
	if m.Skinned() && b.skeleton != nil {
		if bones, joints, weights := b.skinJoints(m); len(bones) > 0 {
			attributes["JOINTS_0"] = modeler.WriteJoints(b.Document, joints)
			attributes["WEIGHTS_0"] = modeler.WriteWeights(b.Document, weights)
			node.Skin = gltf.Index(b.addSkin(bones))
		}
	}

	prim := &gltf.Primitive{
		Indices:    gltf.Index(modeler.WriteIndices(b.Document, m.Indices)),
		Attributes: attributes,
	}
	if m.Material != nil {
		if err := b.AddMaterial(m.Material); err != nil {
			return err
		}
		prim.Material = gltf.Index(b.materials[m.Material])
	}
	b.Meshes = append(b.Meshes, &gltf.Mesh{Name: m.Name, Primitives: []*gltf.Primitive{prim}})
	node.Mesh = gltf.Index(uint32(len(b.Meshes) - 1))
	b.addChild(b.root, b.addNode(node))
	return nil
}

// AddAnimation writes linear translation and rotation channels for every
// animated bone.
func (b *GLTFBuilder) AddAnimation(a *scene.Animation) error {
	if b.skeleton == nil {
		return errors.Errorf("gltf: animation %q without skeleton", a.Name)
	}
	if a.NumFrames == 0 || len(a.Channels) == 0 {
		return nil
	}
	rate := a.FrameRate
	if rate <= 0 {
		rate = scene.DefaultFrameRate
	}
	keys := make([]float32, a.NumFrames)
	for i := range keys {
		keys[i] = float32(i) / rate
	}
	keysAcc := modeler.WriteAccessor(b.Document, gltf.TargetNone, keys)
	b.Accessors[keysAcc].Min = []float32{keys[0]}
	b.Accessors[keysAcc].Max = []float32{keys[len(keys)-1]}

	anim := &gltf.Animation{Name: a.Name}
	for _, ch := range a.Channels {
		if ch.Bone < 0 || ch.Bone >= len(b.boneNodes) || len(ch.Frames) != a.NumFrames {
			log.Printf("animation %q: skipped channel of bone %d", a.Name, ch.Bone)
			continue
		}
		translations := make([][3]float32, len(ch.Frames))
		rotations := make([][4]float32, len(ch.Frames))
		var prev *geom.Quaternion
		for i, m := range ch.Frames {
			t, r, _ := m.Decompose()
			r = r.Normalize()
			if prev != nil && prev.Dot(r) < 0 {
				r = &geom.Quaternion{X: -r.X, Y: -r.Y, Z: -r.Z, W: -r.W}
			}
			prev = r
			translations[i] = t.Array()
			rotations[i] = r.Array()
		}
		node := b.boneNodes[ch.Bone]
		addSampler(anim, keysAcc, modeler.WritePosition(b.Document, translations), node, gltf.TRSTranslation)
		addSampler(anim, keysAcc, modeler.WriteTangent(b.Document, rotations), node, gltf.TRSRotation)
	}
	if len(anim.Channels) > 0 {
		b.Animations = append(b.Animations, anim)
	}
	return nil
}

func addSampler(a *gltf.Animation, keysAcc, samplesAcc, node uint32, path gltf.TRSProperty) {
	a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(keysAcc),
		Output:        gltf.Index(samplesAcc),
		Interpolation: gltf.InterpolationLinear,
	})
	a.Channels = append(a.Channels, &gltf.Channel{
		Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
		Target: gltf.ChannelTarget{
			Node: gltf.Index(node),
			Path: path,
		},
	})
}

// Result finishes and returns the document.
func (b *GLTFBuilder) Result() *gltf.Document {
	if len(b.Document.Textures) > 0 && len(b.Samplers) == 0 {
		b.Samplers = []*gltf.Sampler{{}}
	}
	return b.Document
}

// ConvertScene builds a glTF document from s.
func ConvertScene(s *scene.Scene, options *GLTFOption) (*gltf.Document, error) {
	b := NewGLTFBuilder(options)
	if err := s.Build(b); err != nil {
		return nil, err
	}
	return b.Result(), nil
}
