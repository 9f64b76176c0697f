package hd

import (
	"fmt"
	"log"
)

// Key is one stored bone pose. The quaternion components are kept in
// file order: x, z, y, w.
type Key struct {
	X, Y, Z        float32
	QX, QZ, QY, QW float32
}

const (
	keyRecordSize         = 7 * 4
	trackRecordSize       = 32 + 4
	legacyMotionHeaderEnd = 44
)

// Track is the key sequence of one bone, one key per frame.
type Track struct {
	Name     string
	FirstKey int
	Keys     []Key
}

// Motion is a decoded .motion or .dmot asset.
type Motion struct {
	NumFrames  int
	Duration   int
	NumKeys    int
	NumEvents  int
	FirstFrame int
	// FrameRate is 0 when the file does not store one.
	FrameRate int
	Tracks    []*Track
}

// Track returns the track of bone name, or nil.
func (m *Motion) Track(name string) *Track {
	for _, t := range m.Tracks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Frame returns the key of every track at frame n. Frames are numbered
// from 1.
func (m *Motion) Frame(n int) ([]Key, error) {
	if n < 1 || n > m.NumFrames {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrFrameOutOfRange, n, m.NumFrames)
	}
	keys := make([]Key, len(m.Tracks))
	for i, t := range m.Tracks {
		keys[i] = t.Keys[n-1]
	}
	return keys, nil
}

type motionChunk struct {
	Motion
	numTracks int
	keys      []byte
	keysOff   int
}

// MotionSchema is the property table of "motion" chunk containers.
var MotionSchema = &Schema[motionChunk]{
	AssetType: "motion",
	Properties: map[string]*Property[motionChunk]{
		"numFrames": {Kind: CountProperty, Decode: func(m *motionChunk, _ *reader, n int) { m.NumFrames = n }},
		"duration":  {Kind: CountProperty, Decode: func(m *motionChunk, _ *reader, n int) { m.Duration = n }},
		"numKeys":   {Kind: CountProperty, Decode: func(m *motionChunk, _ *reader, n int) { m.NumKeys = n }},
		"numTracks": {Kind: CountProperty, Decode: func(m *motionChunk, _ *reader, n int) { m.numTracks = n }},
		"numEvents": {Kind: CountProperty, Decode: func(m *motionChunk, _ *reader, n int) { m.NumEvents = n }},
		"keys": {Kind: ValueProperty, Decode: func(m *motionChunk, r *reader, _ int) {
			m.keys, m.keysOff = r.buf, r.base
		}},
		"tracks": {Kind: ArrayProperty, Count: "numTracks", ElemSize: trackRecordSize, Decode: func(m *motionChunk, r *reader, _ int) {
			name := BoneName(r.fixedString(32))
			m.Tracks = append(m.Tracks, &Track{Name: name, FirstKey: int(r.int32())})
		}},
		"events": {Kind: SkippedProperty, Note: "motion events are not supported"},
	},
}

// ParseMotion decodes a binary motion in either the chunk or the legacy
// HD_MOTION container.
func ParseMotion(data []byte) (*Motion, error) {
	switch Sniff(data) {
	case BinaryChunk:
		return parseChunkMotion(data)
	case LegacyMotion:
		return parseLegacyMotion(data)
	}
	return nil, unsupported(data, "HD_CHUNK or HD_MOTION")
}

func parseChunkMotion(data []byte) (*Motion, error) {
	mc := &motionChunk{}
	if _, err := decodeChunk(data, MotionSchema, mc); err != nil {
		return nil, err
	}
	m := &mc.Motion
	if len(m.Tracks) == 0 || m.NumFrames <= 0 {
		return m, nil
	}
	if m.NumKeys <= 0 {
		return nil, &DecodeError{Kind: ErrMissingDependency, Name: "keys", Offset: mc.keysOff, Detail: "needs numKeys"}
	}
	stride := len(mc.keys) / m.NumKeys
	if stride < keyRecordSize {
		return nil, truncated("keys", mc.keysOff, m.NumKeys*keyRecordSize, len(mc.keys))
	}
	if err := readTrackKeys(m, mc.keys, mc.keysOff, stride); err != nil {
		return nil, err
	}
	return m, nil
}

func parseLegacyMotion(data []byte) (*Motion, error) {
	r := newReader(data, 0, "HD_MOTION header")
	r.pos = chunkSignatureSize
	keyCount := int(r.uint32())
	trackCount := int(r.uint32())
	m := &Motion{NumKeys: keyCount}
	m.FirstFrame = int(r.uint32())
	m.Duration = int(r.uint32())
	m.NumFrames = int(r.uint32())
	r.uint32() // data size
	if r.err != nil {
		return nil, r.err
	}
	keysEnd := legacyMotionHeaderEnd + keyRecordSize*keyCount
	if keyCount < 0 || keysEnd > len(data) {
		return nil, truncated("keys", legacyMotionHeaderEnd, keyRecordSize*keyCount, len(data)-legacyMotionHeaderEnd)
	}
	tracksEnd := keysEnd + trackRecordSize*trackCount
	if trackCount < 0 || tracksEnd > len(data) {
		return nil, truncated("tracks", keysEnd, trackRecordSize*trackCount, len(data)-keysEnd)
	}
	for i := 0; i < trackCount; i++ {
		tr := newReader(data[keysEnd+trackRecordSize*i:], keysEnd+trackRecordSize*i, "tracks")
		t := &Track{Name: BoneName(tr.fixedString(32)), FirstKey: int(tr.uint32())}
		if tr.err != nil {
			return nil, tr.err
		}
		m.Tracks = append(m.Tracks, t)
	}
	if err := readTrackKeys(m, data[legacyMotionHeaderEnd:keysEnd], legacyMotionHeaderEnd, keyRecordSize); err != nil {
		return nil, err
	}
	return m, nil
}

// readTrackKeys copies NumFrames keys per track out of the shared key
// array, starting at each track's first key.
func readTrackKeys(m *Motion, keys []byte, base, stride int) error {
	for _, t := range m.Tracks {
		if t.FirstKey < 0 || t.FirstKey+m.NumFrames > m.NumKeys {
			return &DecodeError{Kind: ErrTruncatedBuffer, Name: t.Name, Offset: base,
				Detail: fmt.Sprintf("keys %d..%d exceed %d", t.FirstKey, t.FirstKey+m.NumFrames, m.NumKeys)}
		}
		t.Keys = make([]Key, m.NumFrames)
		for f := range t.Keys {
			off := (t.FirstKey + f) * stride
			r := newReader(keys[off:], base+off, "keys")
			t.Keys[f] = readKey(r)
			if r.err != nil {
				return r.err
			}
		}
	}
	return nil
}

func readKey(r *reader) Key {
	var v [7]float32
	r.floats(v[:])
	return Key{X: v[0], Y: v[1], Z: v[2], QX: v[3], QZ: v[4], QY: v[5], QW: v[6]}
}

func keyFromFloats(v []float32) Key {
	return Key{X: v[0], Y: v[1], Z: v[2], QX: v[3], QZ: v[4], QY: v[5], QW: v[6]}
}

// ParseDMot decodes a text motion. Every track must hold numFrames keys.
func ParseDMot(data []byte) (*Motion, error) {
	m := &Motion{}
	numTracks := -1
	var track *Track
	d := newTextDecoder("dmot", map[string]*keyword{
		"numTracks": {Depth: 1, Fn: func(l *textLine) error {
			n, err := l.Int(1)
			numTracks = n
			return err
		}},
		"numFrames": {Depth: 1, Fn: func(l *textLine) error {
			n, err := l.Int(1)
			m.NumFrames = n
			return err
		}},
		"frameRate": {Depth: 1, Fn: func(l *textLine) error {
			n, err := l.Int(1)
			m.FrameRate = n
			return err
		}},
		"track": {Depth: 1, Fn: func(l *textLine) error {
			track = &Track{Name: BoneName(l.Arg(1)), FirstKey: m.NumKeys}
			m.Tracks = append(m.Tracks, track)
			return nil
		}},
		"key": {Depth: 2, Fn: func(l *textLine) error {
			if track == nil {
				return malformed(l.No, "key outside of a track block")
			}
			v, err := l.Floats(1, 7)
			if err != nil {
				return err
			}
			track.Keys = append(track.Keys, keyFromFloats(v))
			m.NumKeys++
			return nil
		}},
	})
	if err := d.run(data); err != nil {
		return nil, err
	}
	if numTracks >= 0 && numTracks != len(m.Tracks) {
		log.Printf("hd: dmot declares %d tracks, found %d", numTracks, len(m.Tracks))
	}
	for _, t := range m.Tracks {
		if len(t.Keys) != m.NumFrames {
			return nil, &DecodeError{Kind: ErrMalformedTextBlock, Offset: -1, Name: t.Name,
				Detail: fmt.Sprintf("%d keys for %d frames", len(t.Keys), m.NumFrames)}
		}
	}
	return m, nil
}
