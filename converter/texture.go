package converter

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"github.com/blezek/tga"
	_ "github.com/oov/psd"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// textureCache holds decoded images and written textures by file path.
type textureCache struct {
	textures map[string]*textureInfo
}

type textureInfo struct {
	path string
	id   *uint32
	img  image.Image
	err  error
}

func newTextureCache() *textureCache {
	return &textureCache{textures: map[string]*textureInfo{}}
}

func (c *textureCache) get(path string) *textureInfo {
	if t, ok := c.textures[path]; ok {
		return t
	}
	t := &textureInfo{path: path}
	c.textures[path] = t
	return t
}

func (c *textureCache) getImage(path string) (image.Image, error) {
	t := c.get(path)
	if t.img != nil || t.err != nil {
		return t.img, t.err
	}

	f, err := os.Open(t.path)
	if err != nil {
		t.err = err
		return nil, err
	}
	defer f.Close()

	t.img, _, t.err = image.Decode(f)
	if t.err != nil && strings.ToLower(filepath.Ext(t.path)) == ".tga" {
		// retry
		f.Seek(0, io.SeekStart)
		t.img, t.err = tga.Decode(f)
	}
	return t.img, t.err
}

func (c *textureCache) hasAlpha(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if path == "" || ext == ".jpg" || ext == ".jpeg" || ext == ".bmp" {
		return false
	}
	img, err := c.getImage(path)
	if err != nil {
		return false
	}
	switch img.ColorModel() {
	case color.YCbCrModel, color.CMYKModel, color.GrayModel:
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

func scaleTexture(img image.Image, mime string, scale float32, limit int) (io.Reader, error) {
	rect := img.Bounds()

	if limit > 0 {
		sz := int(float32(rect.Dx()) * scale)
		if sz > limit {
			scale *= float32(limit) / float32(sz)
		}
	}

	if scale != 1.0 {
		dst := image.NewRGBA(image.Rect(0, 0, int(float32(rect.Dx())*scale), int(float32(rect.Dy())*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
		img = dst
	}

	w := new(bytes.Buffer)
	var err error
	if mime == "image/png" {
		err = png.Encode(w, img)
	} else {
		err = jpeg.Encode(w, img, nil)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// addTexture embeds the image at path. Formats other than PNG and JPEG are
// decoded and written as PNG.
func (b *GLTFBuilder) addTexture(path string) (*uint32, error) {
	t := b.textures.get(path)
	if t.id != nil {
		return t.id, nil
	}
	ext := strings.ToLower(filepath.Ext(path))

	encode := b.TextureReCompress
	if b.TextureBytesThreshold > 0 {
		stat, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if stat.Size() > b.TextureBytesThreshold {
			encode = true
		}
	}

	var mimeType string
	if ext == ".jpg" || ext == ".jpeg" {
		mimeType = "image/jpeg"
	} else if ext == ".png" {
		mimeType = "image/png"
	} else {
		mimeType = "image/png"
		encode = true
	}
	if b.TextureResolutionLimit > 0 || b.TextureScale != 1 {
		encode = true
	}

	var r io.Reader
	if encode {
		img, err := b.textures.getImage(path)
		if err != nil {
			return nil, err
		}
		r2, err := scaleTexture(img, mimeType, b.TextureScale, b.TextureResolutionLimit)
		if err != nil {
			return nil, err
		}
		r = r2
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	img, err := modeler.WriteImage(b.Document, filepath.Base(path), mimeType, r)
	if err != nil {
		return nil, err
	}
	b.Buffers[0].ByteLength = uint32(len(b.Buffers[0].Data)) // avoid AddImage bug
	b.Textures = append(b.Textures,
		&gltf.Texture{Sampler: gltf.Index(0), Source: gltf.Index(img)})

	t.id = gltf.Index(uint32(len(b.Textures)) - 1)
	log.Printf("texture: %s", filepath.Base(path))
	return t.id, nil
}
