package hd

import "strings"

// OutfitPart names the files of one outfit component. Skin and Material
// may be empty.
type OutfitPart struct {
	Mesh     string
	Skin     string
	Material string
}

// Outfit is a decoded .outfit asset.
type Outfit struct {
	Name  string
	Parts []OutfitPart
}

func unquote(s string) string {
	return strings.ReplaceAll(s, "\"", "")
}

// ParseOutfit decodes an outfit file. Parts with the same mesh, skin and
// material are kept once, in first-seen order.
func ParseOutfit(data []byte) (*Outfit, error) {
	o := &Outfit{}
	var parts []OutfitPart
	last := func(l *textLine) (*OutfitPart, error) {
		if len(parts) == 0 {
			return nil, malformed(l.No, "%s before mesh", l.Arg(0))
		}
		return &parts[len(parts)-1], nil
	}
	d := newTextDecoder("outfit", map[string]*keyword{
		"outfit": {Depth: 0, Exact: true, Fn: func(l *textLine) error {
			if rest := l.Rest(); rest != "" {
				o.Name = unquote(rest)
			}
			return nil
		}},
		"name": {Depth: 1, Exact: true, Fn: func(l *textLine) error {
			o.Name = unquote(l.Rest())
			return nil
		}},
		"mesh": {Depth: 2, Exact: true, Fn: func(l *textLine) error {
			parts = append(parts, OutfitPart{Mesh: unquote(l.Rest())})
			return nil
		}},
		"skin": {Depth: 2, Exact: true, Fn: func(l *textLine) error {
			p, err := last(l)
			if err == nil {
				p.Skin = unquote(l.Rest())
			}
			return err
		}},
		"material": {Depth: 2, Exact: true, Fn: func(l *textLine) error {
			p, err := last(l)
			if err == nil {
				p.Material = unquote(l.Rest())
			}
			return err
		}},
	})
	if err := d.run(data); err != nil {
		return nil, err
	}
	seen := map[OutfitPart]bool{}
	for _, p := range parts {
		if !seen[p] {
			seen[p] = true
			o.Parts = append(o.Parts, p)
		}
	}
	return o, nil
}
