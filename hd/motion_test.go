package hd

import (
	"errors"
	"testing"
)

func keyRecords(n int) []byte {
	var b []byte
	for i := 0; i < n; i++ {
		b = append(b, Float32s(float32(i), 0, 0, 0, 0, 0, 1)...)
	}
	return b
}

func trackRecord(name string, first int32) []byte {
	return Concat(FixedString(name, 32), Int32s(first))
}

func testMotion(second int32) []byte {
	return NewChunkWriter("motion").
		AddInt32("numFrames", 10).
		AddInt32("duration", 333).
		AddInt32("numKeys", 20).
		AddInt32("numTracks", 2).
		AddInt32("numEvents", 1).
		Add("keys", keyRecords(20)).
		Add("tracks", Concat(trackRecord("Hips", 0), trackRecord("Spine", second))).
		Add("events", make([]byte, 40)).
		Bytes()
}

func TestParseMotion(t *testing.T) {
	m, err := ParseMotion(testMotion(10))
	if err != nil {
		t.Fatal("ParseMotion", err)
	}
	if len(m.Tracks) != 2 || m.NumFrames != 10 || m.Duration != 333 {
		t.Fatal("motion", len(m.Tracks), m.NumFrames)
	}
	for _, tr := range m.Tracks {
		if len(tr.Keys) != 10 {
			t.Error("keys", tr.Name, len(tr.Keys))
		}
	}
	if k := m.Track("Spine").Keys[3]; k.X != 13 || k.QW != 1 {
		t.Error("shared key array", k)
	}

	keys, err := m.Frame(10)
	if err != nil || keys[0].X != 9 || keys[1].X != 19 {
		t.Error("frame 10", keys, err)
	}
	if _, err := m.Frame(11); !errors.Is(err, ErrFrameOutOfRange) {
		t.Error("frame 11", err)
	}
	if _, err := m.Frame(0); !errors.Is(err, ErrFrameOutOfRange) {
		t.Error("frame 0", err)
	}
}

func TestParseMotionKeyRange(t *testing.T) {
	_, err := ParseMotion(testMotion(11))
	if !errors.Is(err, ErrTruncatedBuffer) {
		t.Error("first key past numKeys", err)
	}
}

func TestParseLegacyMotion(t *testing.T) {
	data := Concat(
		FixedString("HD_MOTION", 20),
		Uint32s(6, 2, 0, 100, 3, 0),
		keyRecords(6),
		trackRecord("Hips", 3),
		trackRecord("Head", 0),
	)
	m, err := ParseMotion(data)
	if err != nil {
		t.Fatal("ParseMotion", err)
	}
	if m.NumFrames != 3 || len(m.Tracks) != 2 || m.Duration != 100 {
		t.Fatal("legacy header", m.NumFrames, len(m.Tracks))
	}
	if m.Tracks[0].Name != "Hips" || m.Tracks[0].Keys[2].X != 5 || m.Tracks[1].Keys[0].X != 0 {
		t.Error("legacy keys", m.Tracks[0], m.Tracks[1])
	}

	_, err = ParseMotion(data[:len(data)-10])
	if !errors.Is(err, ErrTruncatedBuffer) {
		t.Error("truncated tracks", err)
	}
}

func TestParseDMot(t *testing.T) {
	src := `HD_DATA_TXT
motion
{
	numTracks 2;
	numFrames 2;
	frameRate 30;
	track Hips
	{
		key 0 1 0 0 0 0 1;
		key 0 2 0 0 0 0 1;
	}
	track "Spine"
	{
		key 0 0 0 0 0 0 1;
		key 0 0 0 0.5 0 0 1;
	}
}
`
	m, err := ParseDMot([]byte(src))
	if err != nil {
		t.Fatal("ParseDMot", err)
	}
	if m.FrameRate != 30 || m.NumFrames != 2 || len(m.Tracks) != 2 {
		t.Fatal("header", m.FrameRate, m.NumFrames, len(m.Tracks))
	}
	if m.Track("Spine").Keys[1].QX != 0.5 || m.Track("Hips").Keys[1].Y != 2 {
		t.Error("keys", m.Tracks[0].Keys, m.Tracks[1].Keys)
	}

	short := `HD_DATA_TXT
motion
{
	numFrames 3;
	track Hips
	{
		key 0 1 0 0 0 0 1;
	}
}
`
	if _, err := ParseDMot([]byte(short)); !errors.Is(err, ErrMalformedTextBlock) {
		t.Error("missing keys", err)
	}
}
