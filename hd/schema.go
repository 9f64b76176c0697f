package hd

import (
	"fmt"
	"log"
)

// PropertyKind tells the chunk decoder how to feed a property payload to
// its decode function.
type PropertyKind int

const (
	// CountProperty is an int32 scalar that array properties depend on.
	CountProperty PropertyKind = iota
	// ValueProperty is a self-contained payload.
	ValueProperty
	// ArrayProperty is a list of fixed-stride records. The stride is the
	// payload size divided by the value of the Count property.
	ArrayProperty
	// SkippedProperty is recognized but not interpreted.
	SkippedProperty
)

// Property describes how one named entry of a chunk container decodes into T.
type Property[T any] struct {
	Kind     PropertyKind
	Count    string
	ElemSize int
	// Decode receives the count value for CountProperty and the element
	// index for ArrayProperty.
	Decode func(dst *T, r *reader, n int)
	Note   string
}

// Schema maps entry names of one asset type to their decoders. Schemas are
// read-only after package initialization.
type Schema[T any] struct {
	AssetType  string
	Properties map[string]*Property[T]
}

// decodeChunk decodes all present entries of data into dst. Count
// properties are decoded first regardless of table order.
func decodeChunk[T any](data []byte, s *Schema[T], dst *T) (*Container, error) {
	c, err := ParseContainer(data)
	if err != nil {
		return nil, err
	}
	if err := c.CheckTag(data, s.AssetType); err != nil {
		return nil, err
	}

	type present struct {
		entry *Entry
		prop  *Property[T]
	}
	var entries []present
	for i, e := range c.Entries {
		if e.Size <= 0 {
			continue
		}
		p, ok := s.Properties[e.Name]
		if !ok {
			return nil, &DecodeError{Kind: ErrUnknownProperty, Name: e.Name,
				Offset: chunkHeaderSize + chunkEntrySize*(i+1), Detail: s.AssetType}
		}
		entries = append(entries, present{e, p})
	}

	counts := map[string]int{}
	for _, pe := range entries {
		if pe.prop.Kind != CountProperty {
			continue
		}
		payload, off, err := c.Payload(data, pe.entry)
		if err != nil {
			return nil, err
		}
		n, err := ReadInt32LE(payload, 0)
		if err != nil {
			return nil, truncated(pe.entry.Name, off, 4, len(payload))
		}
		counts[pe.entry.Name] = int(n)
		if pe.prop.Decode != nil {
			pe.prop.Decode(dst, nil, int(n))
		}
	}

	for _, pe := range entries {
		e, p := pe.entry, pe.prop
		if p.Kind == CountProperty {
			continue
		}
		payload, off, err := c.Payload(data, e)
		if err != nil {
			return nil, err
		}
		switch p.Kind {
		case SkippedProperty:
			log.Printf("hd: skip %s %s (%d bytes) %s", s.AssetType, e.Name, e.Size, p.Note)
			continue
		case ValueProperty:
			r := newReader(payload, off, e.Name)
			p.Decode(dst, r, 0)
			if r.err != nil {
				return nil, r.err
			}
		case ArrayProperty:
			n, ok := counts[p.Count]
			if !ok {
				return nil, &DecodeError{Kind: ErrMissingDependency, Name: e.Name, Offset: off, Detail: "needs " + p.Count}
			}
			if err := decodeArray(dst, p, e.Name, payload, off, n); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func decodeArray[T any](dst *T, p *Property[T], name string, payload []byte, off, n int) error {
	if n < 0 {
		return &DecodeError{Kind: ErrTruncatedBuffer, Name: name, Offset: off, Detail: fmt.Sprintf("negative count %d", n)}
	}
	if n == 0 {
		return nil
	}
	stride := len(payload) / n
	if stride < p.ElemSize {
		return &DecodeError{Kind: ErrTruncatedBuffer, Name: name, Offset: off,
			Detail: fmt.Sprintf("%d elements of %d bytes in %d bytes", n, p.ElemSize, len(payload))}
	}
	for i := 0; i < n; i++ {
		r := newReader(payload[i*stride:(i+1)*stride], off+i*stride, name)
		p.Decode(dst, r, i)
		if r.err != nil {
			return r.err
		}
	}
	return nil
}
