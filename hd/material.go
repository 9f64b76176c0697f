package hd

import (
	"log"
	"strconv"
	"strings"
)

type MaterialType int32

const (
	MaterialOpaque MaterialType = iota
	MaterialMask
	MaterialHair
)

var materialTypeNames = map[string]MaterialType{
	"OPAQUE": MaterialOpaque,
	"MASK":   MaterialMask,
	"HAIR":   MaterialHair,
}

func (t MaterialType) String() string {
	for k, v := range materialTypeNames {
		if v == t {
			return k
		}
	}
	return strconv.Itoa(int(t))
}

// Material is a decoded .mtl/.material asset. Map paths are stored as
// written in the file; see ResolveMaterialPath.
type Material struct {
	Type        MaterialType
	TwoSided    bool
	Width       float32
	Height      float32
	AutoUV      int32
	DiffuseMap  string
	NormalMap   string
	SpecularMap string
	EmissionMap string
	CensorMap   string
	MaskMap     string
	Surface     string
	Speculars   [3]float32
}

// Maps returns pointers to the texture map fields keyed by property name.
func (m *Material) Maps() map[string]*string {
	return map[string]*string{
		"diffuseMap":  &m.DiffuseMap,
		"normalMap":   &m.NormalMap,
		"specularMap": &m.SpecularMap,
		"emissionMap": &m.EmissionMap,
		"censorMap":   &m.CensorMap,
		"maskMap":     &m.MaskMap,
	}
}

func mapProperty(field func(m *Material) *string) *Property[Material] {
	return &Property[Material]{Kind: ValueProperty, Decode: func(m *Material, r *reader, _ int) {
		*field(m) = r.stringW()
	}}
}

// MaterialSchema is the property table of "material" chunk containers.
var MaterialSchema = &Schema[Material]{
	AssetType: "material",
	Properties: map[string]*Property[Material]{
		"type":        {Kind: ValueProperty, Decode: func(m *Material, r *reader, _ int) { m.Type = MaterialType(r.int32()) }},
		"twoSided":    {Kind: ValueProperty, Decode: func(m *Material, r *reader, _ int) { m.TwoSided = r.int32() != 0 }},
		"width":       {Kind: ValueProperty, Decode: func(m *Material, r *reader, _ int) { m.Width = r.float32() }},
		"height":      {Kind: ValueProperty, Decode: func(m *Material, r *reader, _ int) { m.Height = r.float32() }},
		"autouv":      {Kind: ValueProperty, Decode: func(m *Material, r *reader, _ int) { m.AutoUV = r.int32() }},
		"diffuseMap":  mapProperty(func(m *Material) *string { return &m.DiffuseMap }),
		"normalMap":   mapProperty(func(m *Material) *string { return &m.NormalMap }),
		"specularMap": mapProperty(func(m *Material) *string { return &m.SpecularMap }),
		"emissionMap": mapProperty(func(m *Material) *string { return &m.EmissionMap }),
		"censorMap":   mapProperty(func(m *Material) *string { return &m.CensorMap }),
		"maskMap":     mapProperty(func(m *Material) *string { return &m.MaskMap }),
		"surface":     {Kind: ValueProperty, Decode: func(m *Material, r *reader, _ int) { m.Surface = r.fixedString(64) }},
		"speculars":   {Kind: ValueProperty, Decode: func(m *Material, r *reader, _ int) { r.floats(m.Speculars[:]) }},
	},
}

// ParseMaterial decodes a material from either container format.
func ParseMaterial(data []byte) (*Material, error) {
	switch Sniff(data) {
	case BinaryChunk:
		m := &Material{}
		if _, err := decodeChunk(data, MaterialSchema, m); err != nil {
			return nil, err
		}
		return m, nil
	case TextUTF8, TextUTF16:
		return parseTextMaterial(data)
	}
	return nil, unsupported(data, "HD_CHUNK or HD_DATA_TXT")
}

// parseTextMaterial reads "key value" lines of the first brace block.
func parseTextMaterial(data []byte) (*Material, error) {
	lines, err := textLines(data)
	if err != nil {
		return nil, err
	}
	m := &Material{}
	maps := m.Maps()
	inBlock := false
	for i, raw := range lines {
		line := stripLine(raw)
		if !inBlock {
			inBlock = line == "{"
			continue
		}
		if line == "}" {
			return m, nil
		}
		if line == "" {
			continue
		}
		key, value := line, ""
		if sp := strings.IndexAny(line, " \t"); sp >= 0 {
			key, value = line[:sp], strings.TrimSpace(line[sp+1:])
		}
		lineNo := i + 1
		switch key {
		case "type":
			t, ok := materialTypeNames[value]
			if !ok {
				return nil, malformed(lineNo, "unknown material type %q", value)
			}
			m.Type = t
		case "twoSided":
			m.TwoSided = strings.EqualFold(value, "true")
		case "width":
			m.Width, err = parseFloat(value, lineNo)
		case "height":
			m.Height, err = parseFloat(value, lineNo)
		case "autouv":
			var v int
			v, err = parseInt(value, lineNo)
			m.AutoUV = int32(v)
		case "surface":
			m.Surface = value
		case "speculars":
			var v []float32
			v, err = parseFloats(strings.Fields(value), 3, lineNo)
			if err == nil {
				copy(m.Speculars[:], v)
			}
		default:
			if p, ok := maps[key]; ok {
				*p = strings.Trim(value, "\"")
			} else {
				log.Printf("hd: material line %d: skip %s", lineNo, key)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if !inBlock {
		return nil, malformed(len(lines), "missing '{'")
	}
	return nil, malformed(len(lines), "missing '}'")
}
