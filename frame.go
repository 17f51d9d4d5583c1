/*

The frame iterator: splits a container's inner byte stream into (cmd, tick,
compressed, payload) frames.

*/

package csdemo

import (
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

// Frame-level errors.
var (
	// ErrNotEnoughBytes is returned when a frame's declared payload size
	// exceeds what remains in the stream.
	ErrNotEnoughBytes = errors.New("csdemo: not enough bytes for frame payload")
)

// FrameParseError wraps the cause of a failure to parse the next frame. Per
// spec.md §7, this ends the FrameIter: downstream sees plain exhaustion, not
// a propagated error, matching a real demo's lack of an end marker.
type FrameParseError struct {
	Cause error
}

func (e *FrameParseError) Error() string { return fmt.Sprintf("csdemo: frame parse: %v", e.Cause) }
func (e *FrameParseError) Unwrap() error { return e.Cause }

// FrameDecompressError is reported per-frame and is never fatal to the
// iterator; it is surfaced through a frame's Decompress method only.
type FrameDecompressError struct {
	Cause error
}

func (e *FrameDecompressError) Error() string {
	return fmt.Sprintf("csdemo: snappy decompress: %v", e.Cause)
}
func (e *FrameDecompressError) Unwrap() error { return e.Cause }

const compressedFlag = 0x40

// Frame is one unit of demo payload.
type Frame struct {
	Cmd        DemoCommand
	Tick       int32
	Compressed bool
	Payload    []byte // Copied out of the iterator's source slice; not shared with it.
}

// Decompress returns the frame's logical payload: Payload itself if the
// frame isn't compressed, or its snappy-decompressed form otherwise. scratch
// may be reused across calls (and across frames) to avoid reallocating; pass
// nil to always allocate fresh.
func (f *Frame) Decompress(scratch []byte) ([]byte, error) {
	if !f.Compressed {
		return f.Payload, nil
	}
	out, err := snappy.Decode(scratch, f.Payload)
	if err != nil {
		return nil, &FrameDecompressError{Cause: err}
	}
	return out, nil
}

// FrameIter iterates the frames of a container's inner byte stream in file
// order. On a parse error Next returns that error once, wrapped in a
// FrameParseError, and the iterator ends: every later call reports plain
// exhaustion.
type FrameIter struct {
	r    *BitReader
	done bool
}

// NewFrameIter returns a FrameIter over inner (typically Container.Inner).
func NewFrameIter(inner []byte) *FrameIter {
	return &FrameIter{r: NewBitReader(inner)}
}

// Next returns the next frame, or ok=false when the stream is exhausted
// (either legitimately, via input exhaustion, or because a parse error
// truncated the remaining buffer).
func (it *FrameIter) Next() (frame Frame, ok bool, err error) {
	if it.done || it.r.EOF() {
		return Frame{}, false, nil
	}

	rawCmd, e := it.r.ReadVarUint32()
	if e != nil {
		it.done = true
		return Frame{}, false, &FrameParseError{Cause: e}
	}
	tick, e := it.r.ReadVarUint32()
	if e != nil {
		it.done = true
		return Frame{}, false, &FrameParseError{Cause: e}
	}
	size, e := it.r.ReadVarUint32()
	if e != nil {
		it.done = true
		return Frame{}, false, &FrameParseError{Cause: e}
	}

	cmd, e := parseDemoCommand(rawCmd &^ compressedFlag)
	if e != nil {
		it.done = true
		return Frame{}, false, &FrameParseError{Cause: e}
	}

	payload, e := it.r.ReadNBytes(int(size))
	if e != nil {
		it.done = true
		return Frame{}, false, &FrameParseError{Cause: ErrNotEnoughBytes}
	}

	return Frame{
		Cmd:        cmd,
		Tick:       int32(tick),
		Compressed: rawCmd&compressedFlag != 0,
		Payload:    payload,
	}, true, nil
}
