package hd

import (
	"log"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// textLines decodes a text asset and splits it into raw lines.
func textLines(data []byte) ([]string, error) {
	var dec []byte
	var err error
	switch Sniff(data) {
	case TextUTF8:
		dec, err = unicode.UTF8BOM.NewDecoder().Bytes(data)
	case TextUTF16:
		dec, err = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
	default:
		return nil, unsupported(data, "HD_DATA_TXT")
	}
	if err != nil {
		return nil, &DecodeError{Kind: ErrUnsupportedFormat, Offset: -1, Err: err}
	}
	return strings.Split(strings.ReplaceAll(string(dec), "\r\n", "\n"), "\n"), nil
}

func stripLine(line string) string {
	return strings.Trim(strings.TrimSpace(line), ";")
}

// textLine is one non-empty line handed to a keyword handler.
type textLine struct {
	No     int
	Text   string
	Fields []string
	Depth  int
}

// Arg returns field i or "".
func (l *textLine) Arg(i int) string {
	if i < len(l.Fields) {
		return l.Fields[i]
	}
	return ""
}

// Rest returns the text after the keyword, split once on whitespace.
func (l *textLine) Rest() string {
	if sp := strings.IndexAny(l.Text, " \t"); sp >= 0 {
		return strings.TrimSpace(l.Text[sp+1:])
	}
	return ""
}

func (l *textLine) Float(i int) (float32, error) {
	return parseFloat(l.Arg(i), l.No)
}

func (l *textLine) Int(i int) (int, error) {
	return parseInt(l.Arg(i), l.No)
}

// Floats parses n numbers starting at field i.
func (l *textLine) Floats(i, n int) ([]float32, error) {
	if i > len(l.Fields) {
		i = len(l.Fields)
	}
	return parseFloats(l.Fields[i:], n, l.No)
}

func (l *textLine) Ints(i, n int) ([]int, error) {
	if n < 0 {
		return nil, malformed(l.No, "%s: bad count %d", l.Arg(0), n)
	}
	if len(l.Fields) < i+n {
		return nil, malformed(l.No, "%s: want %d values, got %d", l.Arg(0), n, len(l.Fields)-i)
	}
	out := make([]int, n)
	for k := range out {
		v, err := parseInt(l.Fields[i+k], l.No)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func parseFloat(s string, line int) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, malformed(line, "bad number %q", s)
	}
	return float32(v), nil
}

func parseInt(s string, line int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, malformed(line, "bad integer %q", s)
	}
	return v, nil
}

func parseFloats(fields []string, n int, line int) ([]float32, error) {
	if len(fields) < n {
		return nil, malformed(line, "want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range out {
		v, err := parseFloat(fields[i], line)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// keyword is one entry of a text dispatch table. The handler runs when the
// brace depth is at least Depth, or exactly Depth when Exact is set.
type keyword struct {
	Depth int
	Exact bool
	Fn    func(l *textLine) error
}

// textDecoder drives a keyword table over the lines of a text asset.
type textDecoder struct {
	kind     string
	keywords map[string]*keyword
	skipped  map[string]bool
}

func newTextDecoder(kind string, keywords map[string]*keyword) *textDecoder {
	return &textDecoder{kind: kind, keywords: keywords, skipped: map[string]bool{}}
}

// run checks the signature line, then dispatches every following line.
// A "{" or "}" line changes the depth before it is dispatched.
func (d *textDecoder) run(data []byte) error {
	lines, err := textLines(data)
	if err != nil {
		return err
	}
	if f := strings.Fields(stripLine(lines[0])); len(f) == 0 || f[0] != "HD_DATA_TXT" {
		return unsupported(data, "HD_DATA_TXT")
	}
	depth := 0
	for i := 1; i < len(lines); i++ {
		text := stripLine(lines[i])
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "{":
			depth++
			continue
		case "}":
			depth--
			if depth < 0 {
				return malformed(i+1, "unbalanced '}'")
			}
			continue
		}
		kw, ok := d.keywords[fields[0]]
		if !ok {
			if !d.skipped[fields[0]] {
				d.skipped[fields[0]] = true
				log.Printf("hd: %s line %d: unknown keyword %s", d.kind, i+1, fields[0])
			}
			continue
		}
		if depth < kw.Depth || (kw.Exact && depth != kw.Depth) {
			continue
		}
		if err := kw.Fn(&textLine{No: i + 1, Text: text, Fields: fields, Depth: depth}); err != nil {
			return err
		}
	}
	if depth != 0 {
		return malformed(len(lines), "%d unclosed '{'", depth)
	}
	return nil
}
