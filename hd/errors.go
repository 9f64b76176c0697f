package hd

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Use errors.Is to test a returned error against them.
var (
	ErrUnsupportedFormat       = errors.New("unsupported format")
	ErrWrongAssetType          = errors.New("wrong asset type")
	ErrUnknownProperty         = errors.New("unknown property")
	ErrMissingDependency       = errors.New("missing dependency")
	ErrTruncatedBuffer         = errors.New("truncated buffer")
	ErrDanglingParentReference = errors.New("dangling parent reference")
	ErrCyclicHierarchy         = errors.New("cyclic hierarchy")
	ErrMalformedTextBlock      = errors.New("malformed text block")
	ErrFrameOutOfRange         = errors.New("frame out of range")
)

// DecodeError carries the location of a decode failure.
type DecodeError struct {
	Kind   error
	Offset int // byte offset, -1 if unknown
	Line   int // 1-based text line, 0 if unknown
	Name   string
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString("hd: ")
	sb.WriteString(e.Kind.Error())
	if e.Name != "" {
		fmt.Fprintf(&sb, " %q", e.Name)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&sb, " at offset %d", e.Offset)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d", e.Line)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *DecodeError) Is(target error) bool {
	return target == e.Kind
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func truncated(name string, off int, need, have int) error {
	return &DecodeError{Kind: ErrTruncatedBuffer, Name: name, Offset: off,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have)}
}

func malformed(line int, format string, args ...interface{}) error {
	return &DecodeError{Kind: ErrMalformedTextBlock, Offset: -1, Line: line, Detail: fmt.Sprintf(format, args...)}
}
