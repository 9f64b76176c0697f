package hd

import (
	"bytes"
	"encoding/hex"
)

// Signature identifies the container an input buffer uses.
type Signature int

const (
	Unrecognized Signature = iota
	BinaryChunk
	TextUTF8
	TextUTF16
	LegacyMotion
)

var (
	magicChunk     = []byte("HD_CHUNK")
	magicText      = []byte("HD_DATA_TXT")
	magicTextUTF16 = []byte("\xFF\xFEH\x00D\x00_\x00D\x00A\x00T\x00A\x00_\x00T\x00X\x00T\x00")
	magicMotion    = []byte("HD_MOTION\x00")
	bomUTF8        = []byte("\xEF\xBB\xBF")
)

func (s Signature) String() string {
	switch s {
	case BinaryChunk:
		return "HD_CHUNK"
	case TextUTF8:
		return "HD_DATA_TXT"
	case TextUTF16:
		return "HD_DATA_TXT (UTF-16)"
	case LegacyMotion:
		return "HD_MOTION"
	}
	return "unrecognized"
}

// Sniff classifies data by its leading magic bytes. First match wins.
func Sniff(data []byte) Signature {
	switch {
	case bytes.HasPrefix(data, magicChunk):
		return BinaryChunk
	case bytes.HasPrefix(data, magicText), bytes.HasPrefix(data, append(bomUTF8, magicText...)):
		return TextUTF8
	case bytes.HasPrefix(data, magicTextUTF16):
		return TextUTF16
	case bytes.HasPrefix(data, magicMotion):
		return LegacyMotion
	}
	return Unrecognized
}

func unsupported(data []byte, expected string) error {
	head := data
	if len(head) > 16 {
		head = head[:16]
	}
	return &DecodeError{Kind: ErrUnsupportedFormat, Offset: 0,
		Detail: "expected " + expected + ", got [" + hex.EncodeToString(head) + "]"}
}
