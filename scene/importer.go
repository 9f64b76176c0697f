package scene

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/hdconv/coord"
	"github.com/binzume/hdconv/hd"
	"github.com/binzume/hdconv/skeleton"
	"github.com/pkg/errors"
)

// skinBoneLength is the length given to bones created from a skin.
const skinBoneLength = 4

type Options struct {
	Format hd.FileFormat
	// FrameRate is used when a motion stores none. Default: 30
	FrameRate float32
	// Exists checks referenced files. Default: hd.FileExists
	Exists hd.Exists
}

// Importer reads asset files into a Scene. It is the only part of the
// module that touches the file system.
type Importer struct {
	*Options
	Scene *Scene

	materials map[string]*Material
}

func NewImporter(options *Options) *Importer {
	if options == nil {
		options = &Options{}
	}
	if options.FrameRate == 0 {
		options.FrameRate = DefaultFrameRate
	}
	if options.Exists == nil {
		options.Exists = hd.FileExists
	}
	return &Importer{
		Options:   options,
		Scene:     &Scene{},
		materials: map[string]*Material{},
	}
}

// Extensions lists the file types Import accepts.
var Extensions = []string{
	".skel", ".skeleton", ".dskel",
	".mesh", ".dmesh", ".skin",
	".mtl", ".material",
	".motion", ".dmot", ".pose", ".dpose",
	".outfit",
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	return data, nil
}

// Import adds the asset at path to the scene. Skins and materials are
// bound to the most recently imported mesh. Motions and poses need an
// armature.
func (im *Importer) Import(path string) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".skel", ".skeleton":
		err = im.importSkel(path)
	case ".dskel":
		err = im.importDSkel(path)
	case ".mesh", ".dmesh":
		_, err = im.importMesh(path)
	case ".skin":
		m := im.Scene.lastMesh()
		if m == nil {
			return errors.Errorf("import %s: no mesh to skin", path)
		}
		err = im.importSkin(path, m)
	case ".mtl", ".material":
		var mat *Material
		if mat, err = im.importMaterial(path); err == nil {
			if m := im.Scene.lastMesh(); m != nil && m.Material == nil {
				m.Material = mat
			}
		}
	case ".motion", ".dmot":
		err = im.importMotion(path)
	case ".pose", ".dpose":
		err = im.importPose(path)
	case ".outfit":
		err = im.importOutfit(path)
	default:
		return errors.Errorf("import %s: unsupported file type", path)
	}
	return errors.Wrapf(err, "import %s", path)
}

func (im *Importer) setSkeleton(s *skeleton.Skeleton) error {
	if im.Scene.Skeleton != nil && len(im.Scene.Skeleton.Bones) > 0 {
		return errors.New("scene already has an armature")
	}
	im.Scene.Skeleton = s
	log.Printf("armature: %d bones, %d roots", len(s.Bones), len(s.Roots))
	return nil
}

func (im *Importer) armature() (*skeleton.Skeleton, error) {
	if im.Scene.Skeleton == nil || len(im.Scene.Skeleton.Bones) == 0 {
		return nil, errors.New("no armature loaded")
	}
	return im.Scene.Skeleton, nil
}

func (im *Importer) importSkel(path string) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	s, err := hd.ParseSkeleton(data)
	if err != nil {
		return err
	}
	sk, err := skeleton.FromSkel(s)
	if err != nil {
		return err
	}
	return im.setSkeleton(sk)
}

func (im *Importer) importDSkel(path string) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	s, err := hd.ParseDSkel(data)
	if err != nil {
		return err
	}
	if s.Declared != len(s.Bones) {
		log.Printf("%s: %d bones declared, %d found", path, s.Declared, len(s.Bones))
	}
	sk, err := skeleton.FromDSkel(s)
	if err != nil {
		return err
	}
	return im.setSkeleton(sk)
}

func (im *Importer) importMesh(path string) ([]*Mesh, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var meshes []*Mesh
	if strings.ToLower(filepath.Ext(path)) == ".dmesh" {
		src, err := hd.ParseDMesh(data)
		if err != nil {
			return nil, err
		}
		if len(src.Joints) > 0 {
			if im.Scene.Skeleton == nil || len(im.Scene.Skeleton.Bones) == 0 {
				sk, err := skeleton.FromDMesh(src)
				if err != nil {
					return nil, err
				}
				if err := im.setSkeleton(sk); err != nil {
					return nil, err
				}
			} else {
				log.Printf("%s: joints ignored, armature already loaded", path)
			}
		}
		if meshes, err = meshesFromText(src, im.Format); err != nil {
			return nil, err
		}
	} else {
		src, err := hd.ParseMesh(data)
		if err != nil {
			return nil, err
		}
		meshes = []*Mesh{meshFromBinary(baseName(path), src, im.Format)}
	}
	im.Scene.Meshes = append(im.Scene.Meshes, meshes...)
	return meshes, nil
}

// importSkin binds m to the skin at path. Skin bones missing from the
// armature are added as roots at their bind pose.
func (im *Importer) importSkin(path string, m *Mesh) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	s, err := hd.ParseSkin(data)
	if err != nil {
		return err
	}
	if im.Scene.Skeleton == nil {
		im.Scene.Skeleton = &skeleton.Skeleton{}
	}
	sk := im.Scene.Skeleton
	for _, b := range s.Bones {
		if sk.Find(b.Name) == nil {
			sk.AddRoot(b.Name, coord.SkinBone(b.Matrix), skinBoneLength)
		}
	}
	return applySkin(m, s)
}

func (im *Importer) importMaterial(path string) (*Material, error) {
	if mat, ok := im.materials[path]; ok {
		return mat, nil
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	src, err := hd.ParseMaterial(data)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	resolve := func(ref string) string {
		p := hd.ResolveMaterialPath(dir, ref, im.Exists)
		if p != "" && !im.Exists(p) {
			log.Printf("%s: texture not found: %s", path, p)
		}
		return p
	}
	mat := &Material{
		Name:        baseName(path),
		Type:        src.Type,
		TwoSided:    src.TwoSided,
		DiffuseMap:  resolve(src.DiffuseMap),
		NormalMap:   resolve(src.NormalMap),
		SpecularMap: resolve(src.SpecularMap),
		EmissionMap: resolve(src.EmissionMap),
		MaskMap:     resolve(src.MaskMap),
		CensorMap:   resolve(src.CensorMap),
		Surface:     src.Surface,
		AutoUV:      src.AutoUV,
		Speculars:   src.Speculars,
	}
	im.materials[path] = mat
	im.Scene.Materials = append(im.Scene.Materials, mat)
	return mat, nil
}

func (im *Importer) importMotion(path string) error {
	sk, err := im.armature()
	if err != nil {
		return err
	}
	data, err := readFile(path)
	if err != nil {
		return err
	}
	var mot *hd.Motion
	root := skeleton.MotionRoot
	if strings.ToLower(filepath.Ext(path)) == ".dmot" {
		mot, err = hd.ParseDMot(data)
		root = skeleton.PoseRoot
	} else {
		mot, err = hd.ParseMotion(data)
	}
	if err != nil {
		return err
	}
	a, err := motionAnimation(baseName(path), sk, mot, root, im.FrameRate)
	if err != nil {
		return err
	}
	im.Scene.Animations = append(im.Scene.Animations, a)
	return nil
}

func (im *Importer) importPose(path string) error {
	sk, err := im.armature()
	if err != nil {
		return err
	}
	data, err := readFile(path)
	if err != nil {
		return err
	}
	var p *hd.Pose
	if strings.ToLower(filepath.Ext(path)) == ".dpose" {
		p, err = hd.ParseDPose(data)
	} else {
		p, err = hd.ParsePose(data)
	}
	if err != nil {
		return err
	}
	a, err := poseAnimation(baseName(path), sk, p)
	if err != nil {
		return err
	}
	im.Scene.Animations = append(im.Scene.Animations, a)
	return nil
}

// importOutfit loads the mesh, material and skin of every outfit part.
// Parts whose mesh is missing are skipped.
func (im *Importer) importOutfit(path string) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	o, err := hd.ParseOutfit(data)
	if err != nil {
		return err
	}
	log.Printf("outfit %q: %d parts", o.Name, len(o.Parts))
	for _, p := range o.Parts {
		meshPath := hd.ResolveOutfitPath(path, p.Mesh, im.Exists)
		if !im.Exists(meshPath) {
			log.Printf("file not found: %s", meshPath)
			continue
		}
		meshes, err := im.importMesh(meshPath)
		if err != nil {
			return errors.Wrapf(err, "mesh %s", meshPath)
		}
		if p.Material != "" {
			matPath := hd.ResolveOutfitPath(path, p.Material, im.Exists)
			if im.Exists(matPath) {
				mat, err := im.importMaterial(matPath)
				if err != nil {
					return errors.Wrapf(err, "material %s", matPath)
				}
				for _, m := range meshes {
					m.Material = mat
				}
			} else {
				log.Printf("file not found: %s", matPath)
			}
		}
		if p.Skin != "" {
			skinPath := hd.ResolveOutfitPath(path, p.Skin, im.Exists)
			if !im.Exists(skinPath) {
				log.Printf("file not found: %s", skinPath)
				continue
			}
			for _, m := range meshes {
				if err := im.importSkin(skinPath, m); err != nil {
					return errors.Wrapf(err, "skin %s", skinPath)
				}
			}
		}
	}
	return nil
}
