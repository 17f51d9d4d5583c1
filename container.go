/*

The outer container format: an 8-byte magic, a declared inner length, four
ignored bytes, and the inner frame stream.

*/

package csdemo

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic is the expected 8-byte ASCII magic at the start of every demo file.
var Magic = [8]byte{'H', 'L', '2', 'D', 'E', 'M', 'O', 0}

// Header layout: 8-byte magic + 4-byte declared inner length + 4 ignored pad
// bytes. (spec.md's prose says "2 pad bytes" but its own worked example --
// a 16-byte buffer with declared=100 yielding MismatchedLength{buffer_len:0,
// expected_len:102} -- only holds if the header consumes all 16 bytes; we
// follow the worked example, see DESIGN.md.)
const containerHeaderLen = 8 + 4 + 4 // magic + declared-len + pad

// Container-level errors.
var (
	ErrMissingHeader    = errors.New("csdemo: buffer shorter than the container header")
	ErrInvalidMagic     = errors.New("csdemo: invalid magic bytes")
	ErrMismatchedLength = errors.New("csdemo: inner length does not match the declared length")
)

// MismatchedLengthError carries the details of a length mismatch so callers
// can report exactly what was expected versus what was found.
type MismatchedLengthError struct {
	BufferLen   int
	ExpectedLen int
}

func (e *MismatchedLengthError) Error() string {
	return fmt.Sprintf("csdemo: mismatched length: buffer_len=%d, expected_len=%d", e.BufferLen, e.ExpectedLen)
}

func (e *MismatchedLengthError) Unwrap() error { return ErrMismatchedLength }

// Container is the parsed outer envelope of a demo file: the magic and the
// inner byte slice (which is the concatenated frame stream described in
// frame.go, declared inner length + 2 bytes long). Inner borrows directly from the
// caller's buffer; no copy is made.
type Container struct {
	Magic [8]byte
	Inner []byte
}

// ParseContainer parses buf as a Container.
//
// Invariant: len(buf) >= 16 and len(Inner) == declared-length + 2.
func ParseContainer(buf []byte) (*Container, error) {
	if len(buf) < containerHeaderLen {
		return nil, ErrMissingHeader
	}

	var c Container
	copy(c.Magic[:], buf[:8])
	if c.Magic != Magic {
		return nil, ErrInvalidMagic
	}

	declared := binary.LittleEndian.Uint32(buf[8:12])
	// buf[12:16] are ignored padding bytes.
	inner := buf[containerHeaderLen:]

	expected := int(declared) + 2
	if len(inner) != expected {
		return nil, &MismatchedLengthError{BufferLen: len(inner), ExpectedLen: expected}
	}

	c.Inner = inner
	return &c, nil
}
