package main

import (
	"os"
	"path/filepath"

	"github.com/binzume/hdconv/converter"
	"github.com/binzume/hdconv/hd"
	"github.com/binzume/hdconv/scene"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const configFileName = "hdconv.yaml"

// Config holds conversion settings. Fields not set in the file keep their
// zero values.
type Config struct {
	Format    string   `yaml:"format"`
	Skeleton  string   `yaml:"skeleton"`
	Scale     float32  `yaml:"scale"`
	FrameRate float32  `yaml:"frame_rate"`
	Unlit     bool     `yaml:"unlit"`
	Inputs    []string `yaml:"inputs"`

	Texture struct {
		ReCompress      bool    `yaml:"recompress"`
		BytesThreshold  int64   `yaml:"bytes_threshold"`
		ResolutionLimit int     `yaml:"resolution_limit"`
		Scale           float32 `yaml:"scale"`
	} `yaml:"texture"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	H2        bool
	Skeleton  string
	Scale     float64
	FrameRate float64
	Unlit     bool
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	// relative paths are relative to the config file
	dir := filepath.Dir(path)
	if cfg.Skeleton != "" && !filepath.IsAbs(cfg.Skeleton) {
		cfg.Skeleton = filepath.Join(dir, cfg.Skeleton)
	}
	for i, in := range cfg.Inputs {
		if !filepath.IsAbs(in) {
			cfg.Inputs[i] = filepath.Join(dir, in)
		}
	}
	return &cfg, nil
}

// findConfig returns the explicit path, or hdconv.yaml next to input if
// it exists.
func findConfig(explicit, input string) string {
	if explicit != "" {
		return explicit
	}
	path := filepath.Join(filepath.Dir(input), configFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (c *Config) Resolve(flags Flags) {
	if flags.H2 {
		c.Format = hd.H2.String()
	}
	if flags.Skeleton != "" {
		c.Skeleton = flags.Skeleton
	}
	if flags.Scale > 0 {
		c.Scale = float32(flags.Scale)
	}
	if flags.FrameRate > 0 {
		c.FrameRate = float32(flags.FrameRate)
	}
	if flags.Unlit {
		c.Unlit = true
	}

	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.FrameRate <= 0 {
		c.FrameRate = scene.DefaultFrameRate
	}
}

func (c *Config) importOptions() (*scene.Options, error) {
	format, err := hd.ParseFileFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return &scene.Options{Format: format, FrameRate: c.FrameRate}, nil
}

func (c *Config) gltfOptions() *converter.GLTFOption {
	return &converter.GLTFOption{
		Scale:                  c.Scale,
		ForceUnlit:             c.Unlit,
		TextureReCompress:      c.Texture.ReCompress,
		TextureBytesThreshold:  c.Texture.BytesThreshold,
		TextureResolutionLimit: c.Texture.ResolutionLimit,
		TextureScale:           c.Texture.Scale,
	}
}
