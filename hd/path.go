package hd

import (
	"os"
	"path/filepath"
	"strings"
)

const maxPathWalk = 50

// Exists reports whether a regular file exists at path.
type Exists func(path string) bool

// FileExists checks the local file system.
func FileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// normalizePath converts stored Windows separators to the local one.
func normalizePath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, "\\", "/"))
}

// ResolveMaterialPath locates a texture referenced by a material in dir.
// A bare file name is joined to dir. A path with directories is joined to
// each ancestor of dir in turn until the file exists.
func ResolveMaterialPath(dir, ref string, exists Exists) string {
	if ref == "" {
		return ""
	}
	if !strings.Contains(ref, "\\") {
		return filepath.Join(dir, normalizePath(ref))
	}
	rel := normalizePath(ref)
	if filepath.IsAbs(rel) {
		return rel
	}
	cur := dir
	for i := 0; i < maxPathWalk; i++ {
		parent := filepath.Dir(cur)
		full := filepath.Join(parent, rel)
		if exists(full) || parent == cur {
			return full
		}
		cur = parent
	}
	return rel
}

// ResolveOutfitPath locates a component file referenced by the outfit at
// outfitFile. References are tried relative to the "outfits" folder next
// to the outfit, then relative to the folder containing the outfit tree.
func ResolveOutfitPath(outfitFile, ref string, exists Exists) string {
	rel := normalizePath(ref)
	if filepath.IsAbs(rel) {
		return rel
	}
	base := filepath.Dir(outfitFile)
	r := filepath.Join("..", rel)
	if first, rest, ok := strings.Cut(filepath.ToSlash(rel), "/"); ok && strings.EqualFold(first, "outfits") {
		r = filepath.FromSlash(rest)
	}
	if p := filepath.Join(base, r); exists(p) {
		return p
	}
	slashed := filepath.ToSlash(base)
	if i := strings.Index(strings.ToLower(slashed), "/outfit"); i >= 0 {
		return filepath.Join(filepath.FromSlash(slashed[:i]), rel)
	}
	return filepath.Join(base, rel)
}
