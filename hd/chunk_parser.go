package hd

import (
	"fmt"
)

const (
	chunkSignatureSize = 20
	chunkHeaderSize    = 28
	chunkEntrySize     = 48
	chunkNameSize      = 32
)

// Entry is one row of the chunk entry table. Offset is relative to the
// data segment. Size 0 means the property is absent.
type Entry struct {
	Name       string
	Size       int32
	Offset     int32
	NumSubs    int32
	SubsOffset int32
}

// Container is the header and entry table of an HD_CHUNK buffer.
type Container struct {
	Tag            string
	EntryCount     int
	SerializedSize int
	Entries        []*Entry
	DataOffset     int
}

// ParseContainer reads the fixed header and the entry table. The first
// slot of the table is reserved and holds the asset type tag.
func ParseContainer(data []byte) (*Container, error) {
	if Sniff(data) != BinaryChunk {
		return nil, unsupported(data, "HD_CHUNK")
	}
	entryCount, err := ReadInt32LE(data, chunkSignatureSize)
	if err != nil {
		return nil, err
	}
	serialSize, err := ReadInt32LE(data, chunkSignatureSize+4)
	if err != nil {
		return nil, err
	}
	if entryCount < 1 {
		return nil, &DecodeError{Kind: ErrTruncatedBuffer, Offset: chunkSignatureSize,
			Detail: fmt.Sprintf("invalid entry count %d", entryCount)}
	}
	c := &Container{
		EntryCount:     int(entryCount),
		SerializedSize: int(serialSize),
		DataOffset:     chunkHeaderSize + chunkEntrySize*int(entryCount),
	}
	if c.DataOffset > len(data) {
		return nil, truncated("entry table", chunkHeaderSize, c.DataOffset-chunkHeaderSize, len(data)-chunkHeaderSize)
	}
	c.Tag, _, _ = ReadFixedString(data, chunkHeaderSize, chunkNameSize)

	r := newReader(data[:c.DataOffset], 0, "entry table")
	for i := 1; i < c.EntryCount; i++ {
		r.pos = chunkHeaderSize + chunkEntrySize*i
		e := &Entry{Name: r.fixedString(chunkNameSize)}
		e.Size = r.int32()
		e.Offset = r.int32()
		e.NumSubs = r.int32()
		e.SubsOffset = r.int32()
		if r.err != nil {
			return nil, r.err
		}
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

// CheckTag compares the raw tag bytes against the expected asset type.
func (c *Container) CheckTag(data []byte, assetType string) error {
	off := chunkHeaderSize
	if off+len(assetType) > len(data) || string(data[off:off+len(assetType)]) != assetType {
		return &DecodeError{Kind: ErrWrongAssetType, Offset: off, Name: c.Tag, Detail: "expected " + assetType}
	}
	return nil
}

// Find returns the entry named name, or nil.
func (c *Container) Find(name string) *Entry {
	for _, e := range c.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Payload returns the bytes of e and their absolute offset.
func (c *Container) Payload(data []byte, e *Entry) ([]byte, int, error) {
	start := c.DataOffset + int(e.Offset)
	if e.Offset < 0 || e.Size < 0 || start+int(e.Size) > len(data) {
		return nil, start, truncated(e.Name, start, int(e.Size), len(data)-start)
	}
	return data[start : start+int(e.Size)], start, nil
}

// DataSize is the sum of all entry payload sizes.
func (c *Container) DataSize() int {
	n := 0
	for _, e := range c.Entries {
		n += int(e.Size)
	}
	return n
}
