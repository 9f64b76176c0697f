package hd

import "fmt"

// FileFormat selects per-game conventions.
type FileFormat int

const (
	H1 FileFormat = iota
	H2
)

func (f FileFormat) String() string {
	if f == H2 {
		return "H2"
	}
	return "H1"
}

// ParseFileFormat accepts "H1" or "H2", case-insensitive. Empty means H1.
func ParseFileFormat(s string) (FileFormat, error) {
	switch s {
	case "", "H1", "h1":
		return H1, nil
	case "H2", "h2":
		return H2, nil
	}
	return H1, fmt.Errorf("unknown file format %q", s)
}

// UV maps a stored texture coordinate to the one used for rendering.
func (f FileFormat) UV(uv [2]float32) [2]float32 {
	if f == H2 {
		return [2]float32{uv[0], 1 - uv[1]}
	}
	return uv
}
