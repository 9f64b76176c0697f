package hd

import (
	"bytes"
	"encoding/binary"
	"math"
)

// ChunkWriter builds HD_CHUNK buffers. Payloads are laid out in the order
// they are added.
type ChunkWriter struct {
	Tag     string
	names   []string
	payload [][]byte
}

func NewChunkWriter(tag string) *ChunkWriter {
	return &ChunkWriter{Tag: tag}
}

// Add appends an entry. An empty payload writes an absent property.
func (w *ChunkWriter) Add(name string, data []byte) *ChunkWriter {
	w.names = append(w.names, name)
	w.payload = append(w.payload, data)
	return w
}

func (w *ChunkWriter) AddInt32(name string, v int32) *ChunkWriter {
	return w.Add(name, Int32s(v))
}

func putFixed(buf *bytes.Buffer, s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	buf.Write(b)
}

// Bytes serializes the container. serializedSize is the total length.
func (w *ChunkWriter) Bytes() []byte {
	var buf bytes.Buffer
	putFixed(&buf, string(magicChunk), chunkSignatureSize)
	count := len(w.names) + 1
	total := chunkHeaderSize + chunkEntrySize*count
	for _, p := range w.payload {
		total += len(p)
	}
	binary.Write(&buf, binary.LittleEndian, int32(count))
	binary.Write(&buf, binary.LittleEndian, int32(total))
	putFixed(&buf, w.Tag, chunkEntrySize)
	off := 0
	for i, name := range w.names {
		putFixed(&buf, name, chunkNameSize)
		binary.Write(&buf, binary.LittleEndian, [4]int32{int32(len(w.payload[i])), int32(off), 0, 0})
		off += len(w.payload[i])
	}
	for _, p := range w.payload {
		buf.Write(p)
	}
	return buf.Bytes()
}

// Int32s encodes little-endian int32 values.
func Int32s(v ...int32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(x))
	}
	return b
}

func Uint32s(v ...uint32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], x)
	}
	return b
}

// Float32s encodes little-endian float32 values.
func Float32s(v ...float32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(x))
	}
	return b
}

// FixedString encodes s into a NUL padded slot of n bytes.
func FixedString(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

// UTF16String encodes s with a u32 character count and a 2 byte terminator.
func UTF16String(s string) []byte {
	u, _ := utf16le.NewEncoder().Bytes([]byte(s))
	b := make([]byte, 4+len(u)+2)
	binary.LittleEndian.PutUint32(b, uint32(len(u)/2))
	copy(b[4:], u)
	return b
}

// Concat joins encoded fields.
func Concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}
