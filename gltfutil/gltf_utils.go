package gltfutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

func Load(path string) (*gltf.Document, error) {
	return gltf.Open(path)
}

// Save writes doc as .glb, or as .gltf with the buffer in a .bin file
// next to it.
func Save(doc *gltf.Document, path string) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		err = gltf.SaveBinary(doc, path)
	case ".gltf":
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for i, b := range doc.Buffers {
			if b.URI == "" && len(b.Data) > 0 {
				b.URI = bufferName(base, i)
			}
		}
		err = gltf.Save(doc, path)
	default:
		return errors.Errorf("unsupported output type: %s", filepath.Ext(path))
	}
	return errors.Wrapf(err, "save %s", path)
}

func bufferName(base string, i int) string {
	if i == 0 {
		return base + ".bin"
	}
	return fmt.Sprintf("%s%d.bin", base, i)
}

// Summary describes the contents of doc in one line.
func Summary(doc *gltf.Document) string {
	return fmt.Sprintf("nodes:%d meshes:%d skins:%d materials:%d textures:%d animations:%d",
		len(doc.Nodes), len(doc.Meshes), len(doc.Skins), len(doc.Materials), len(doc.Textures), len(doc.Animations))
}
