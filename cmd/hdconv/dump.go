package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/hdconv/hd"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
}

// decodeAsset parses path with the decoder for its extension.
func decodeAsset(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".skel", ".skeleton":
		return hd.ParseSkeleton(data)
	case ".dskel":
		return hd.ParseDSkel(data)
	case ".mesh":
		return hd.ParseMesh(data)
	case ".dmesh":
		return hd.ParseDMesh(data)
	case ".skin":
		return hd.ParseSkin(data)
	case ".mtl", ".material":
		return hd.ParseMaterial(data)
	case ".motion":
		return hd.ParseMotion(data)
	case ".dmot":
		return hd.ParseDMot(data)
	case ".pose":
		return hd.ParsePose(data)
	case ".dpose":
		return hd.ParseDPose(data)
	case ".outfit":
		return hd.ParseOutfit(data)
	}
	return nil, errors.Errorf("unsupported file type (%s)", hd.Sniff(data))
}

func dump(w io.Writer, path, format string) error {
	v, err := decodeAsset(path)
	if err != nil {
		return errors.Wrapf(err, "dump %s", path)
	}
	switch format {
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# %s\n%s", path, out)
	case "", "spew":
		fmt.Fprintf(w, "%s\n%s", path, spewConfig.Sdump(v))
	default:
		return errors.Errorf("unknown dump format %q", format)
	}
	return nil
}
