package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/hdconv/converter"
	"github.com/binzume/hdconv/gltfutil"
	"github.com/binzume/hdconv/scene"
	"github.com/pkg/errors"
)

func defaultOutputFile(input string) string {
	ext := filepath.Ext(input)
	return input[0:len(input)-len(ext)] + ".glb"
}

func isOutputFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".glb" || ext == ".gltf"
}

// splitArgs separates the input files from an optional trailing output.
func splitArgs(args []string) ([]string, string) {
	if len(args) > 1 && isOutputFile(args[len(args)-1]) {
		return args[:len(args)-1], args[len(args)-1]
	}
	return args, defaultOutputFile(args[0])
}

func convert(conf *Config, inputs []string, output string) error {
	opt, err := conf.importOptions()
	if err != nil {
		return err
	}
	im := scene.NewImporter(opt)
	if conf.Skeleton != "" {
		if err := im.Import(conf.Skeleton); err != nil {
			return err
		}
	}
	all := append(append([]string{}, inputs...), conf.Inputs...)
	for _, in := range all {
		log.Print("in: ", in)
		if err := im.Import(in); err != nil {
			return err
		}
	}

	doc, err := converter.ConvertScene(im.Scene, conf.gltfOptions())
	if err != nil {
		return errors.Wrap(err, "convert")
	}
	log.Print(gltfutil.Summary(doc))
	log.Print("out: ", output)
	return gltfutil.Save(doc, output)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] input.outfit [more inputs...] [output.glb]\n", os.Args[0])
		flag.PrintDefaults()
	}
	confFile := flag.String("config", "", "config file (default: "+configFileName+" next to the input)")
	h2 := flag.Bool("h2", false, "H2 texture coordinates")
	skel := flag.String("skeleton", "", "armature for meshes, motions and poses")
	scale := flag.Float64("scale", 0, "output scale (default 1)")
	frameRate := flag.Float64("framerate", 0, "frame rate of motions without one (default 30)")
	forceUnlit := flag.Bool("gltfunlit", false, "unlit all materials")
	dumpOnly := flag.Bool("dump", false, "print decoded records instead of converting")
	dumpFormat := flag.String("format", "spew", "dump format: spew or yaml")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	if *dumpOnly {
		for _, in := range flag.Args() {
			if err := dump(os.Stdout, in, *dumpFormat); err != nil {
				log.Fatal(err)
			}
		}
		return
	}

	inputs, output := splitArgs(flag.Args())
	conf := &Config{}
	if path := findConfig(*confFile, inputs[0]); path != "" {
		c, err := loadConfig(path)
		if err != nil {
			log.Fatal(err)
		}
		log.Print("config: ", path)
		conf = c
	}
	conf.Resolve(Flags{
		H2:        *h2,
		Skeleton:  *skel,
		Scale:     *scale,
		FrameRate: *frameRate,
		Unlit:     *forceUnlit,
	})

	if err := convert(conf, inputs, output); err != nil {
		log.Fatal(err)
	}
}
