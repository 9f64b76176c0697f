package hd

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	latin1  = charmap.ISO8859_1
	utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

func checkSpan(data []byte, off, n int) error {
	if off < 0 || n < 0 || off+n > len(data) {
		return truncated("", off, n, len(data)-off)
	}
	return nil
}

// ReadInt32LE reads a little-endian int32 at off.
func ReadInt32LE(data []byte, off int) (int32, error) {
	if err := checkSpan(data, off, 4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(data[off:])), nil
}

// ReadUint32LE reads a little-endian uint32 at off.
func ReadUint32LE(data []byte, off int) (uint32, error) {
	if err := checkSpan(data, off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data[off:]), nil
}

// ReadFloat32LE reads a little-endian float32 at off.
func ReadFloat32LE(data []byte, off int) (float32, error) {
	v, err := ReadUint32LE(data, off)
	return math.Float32frombits(v), err
}

// ReadFixedString reads a NUL terminated Latin-1 string stored in a slot of
// maxLen bytes. The whole slot is consumed.
func ReadFixedString(data []byte, off, maxLen int) (string, int, error) {
	if err := checkSpan(data, off, maxLen); err != nil {
		return "", 0, err
	}
	b := data[off : off+maxLen]
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	s, err := latin1.NewDecoder().Bytes(b)
	if err != nil {
		return "", 0, err
	}
	return string(s), maxLen, nil
}

// ReadLengthPrefixedAnsi reads a u32 byte count n, n bytes of text and one
// terminator byte. It returns the string and 4+n+1.
func ReadLengthPrefixedAnsi(data []byte, off int) (string, int, error) {
	n, err := ReadUint32LE(data, off)
	if err != nil {
		return "", 0, err
	}
	size := 4 + int(n) + 1
	if int(n) < 0 || checkSpan(data, off, size) != nil {
		return "", 0, truncated("", off, size, len(data)-off)
	}
	b := data[off+4 : off+4+int(n)]
	if utf8.Valid(b) {
		return string(b), size, nil
	}
	s, err := latin1.NewDecoder().Bytes(b)
	return string(s), size, err
}

// ReadLengthPrefixedUTF16 reads a u32 character count n, 2n bytes of UTF-16LE
// text and a 2 byte terminator. It returns the string and 4+2n+2.
func ReadLengthPrefixedUTF16(data []byte, off int) (string, int, error) {
	n, err := ReadUint32LE(data, off)
	if err != nil {
		return "", 0, err
	}
	size := 4 + 2*int(n) + 2
	if int(n) < 0 || checkSpan(data, off, size) != nil {
		return "", 0, truncated("", off, size, len(data)-off)
	}
	s, err := utf16le.NewDecoder().Bytes(data[off+4 : off+4+2*int(n)])
	return string(s), size, err
}

// reader walks a payload slice with a sticky error. base is the absolute
// file offset of buf[0] and is used in error reports only.
type reader struct {
	buf  []byte
	base int
	pos  int
	name string
	err  error
}

func newReader(buf []byte, base int, name string) *reader {
	return &reader{buf: buf, base: base, name: name}
}

func (r *reader) fail(n int) {
	if r.err == nil {
		r.err = truncated(r.name, r.base+r.pos, n, len(r.buf)-r.pos)
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.fail(n)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) int32() int32 {
	if b := r.take(4); b != nil {
		return int32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

func (r *reader) uint32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) uint8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) float32() float32 {
	return math.Float32frombits(r.uint32())
}

func (r *reader) floats(dst []float32) {
	for i := range dst {
		dst[i] = r.float32()
	}
}

func (r *reader) fixedString(maxLen int) string {
	if r.err != nil {
		return ""
	}
	s, n, err := ReadFixedString(r.buf, r.pos, maxLen)
	if err != nil {
		r.fail(maxLen)
		return ""
	}
	r.pos += n
	return s
}

func (r *reader) stringW() string {
	if r.err != nil {
		return ""
	}
	s, n, err := ReadLengthPrefixedUTF16(r.buf, r.pos)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Name = r.name
			de.Offset += r.base
		}
		r.err = err
		return ""
	}
	r.pos += n
	return s
}
