package hd

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLen is the longest bone name kept, in bytes.
const MaxNameLen = 63

// BoneName cleans a stored bone name: surrounding whitespace and quotes
// are removed and the result is cut to MaxNameLen bytes on a rune boundary.
func BoneName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"")
	return truncate(s, MaxNameLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// UniqueNames returns names with duplicates renamed to "name.001",
// "name.002" and so on. The first occurrence keeps its name.
func UniqueNames(names []string) []string {
	used := make(map[string]bool, len(names))
	for _, n := range names {
		used[n] = false
	}
	out := make([]string, len(names))
	for i, n := range names {
		if !used[n] {
			used[n] = true
			out[i] = n
			continue
		}
		for k := 1; ; k++ {
			suffix := fmt.Sprintf(".%03d", k)
			if c := truncate(n, MaxNameLen-len(suffix)) + suffix; !hasName(used, c) {
				used[c] = true
				out[i] = c
				break
			}
		}
	}
	return out
}

func hasName(used map[string]bool, n string) bool {
	_, ok := used[n]
	return ok
}
