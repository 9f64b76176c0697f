package hd

import (
	"errors"
	"testing"
)

func TestParseContainer(t *testing.T) {
	data := NewChunkWriter("skeleton").
		AddInt32("numBones", 0).
		Add("bones", nil).
		Add("slots", make([]byte, 12)).
		Bytes()

	c, err := ParseContainer(data)
	if err != nil {
		t.Fatal("ParseContainer", err)
	}
	if c.Tag != "skeleton" || c.EntryCount != 4 || len(c.Entries) != 3 {
		t.Error("header", c.Tag, c.EntryCount, len(c.Entries))
	}
	if c.DataOffset != 28+48*4 {
		t.Error("data offset", c.DataOffset)
	}
	if c.DataSize() != c.SerializedSize-c.DataOffset {
		t.Error("entry sizes", c.DataSize(), c.SerializedSize, c.DataOffset)
	}
	e := c.Find("slots")
	if e == nil || e.Size != 12 || e.Offset != 4 {
		t.Fatal("slots entry", e)
	}
	payload, off, err := c.Payload(data, e)
	if err != nil || len(payload) != 12 || off != c.DataOffset+4 {
		t.Error("payload", len(payload), off, err)
	}
	if c.Find("joints") != nil {
		t.Error("unexpected entry")
	}
}

func TestParseContainerTruncated(t *testing.T) {
	data := NewChunkWriter("skeleton").AddInt32("numBones", 0).Bytes()
	if _, err := ParseContainer(data[:60]); !errors.Is(err, ErrTruncatedBuffer) {
		t.Error("table", err)
	}

	c, err := ParseContainer(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Payload(data[:len(data)-2], c.Entries[0]); !errors.Is(err, ErrTruncatedBuffer) {
		t.Error("payload", err)
	}
}

func TestCheckTag(t *testing.T) {
	data := NewChunkWriter("material").AddInt32("type", 0).Bytes()
	_, err := ParseSkeleton(data)
	if !errors.Is(err, ErrWrongAssetType) {
		t.Error("expected wrong asset type", err)
	}
}
