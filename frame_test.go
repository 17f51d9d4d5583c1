package csdemo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameIterSingleFrame(t *testing.T) {
	// Scenario 2 (spec.md §8): varints 7, 128, 0, then trailing 0xff.
	it := NewFrameIter([]byte{0x07, 0x80, 0x01, 0x00, 0xff})

	f, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, CmdPacket, f.Cmd)
	require.Equal(t, int32(128), f.Tick)
	require.Equal(t, 0, len(f.Payload))
	require.False(t, f.Compressed)
}

func TestFrameIterUnknownCommandEndsIteration(t *testing.T) {
	// cmd 0x7e (62 once the compressed bit is cleared), tick 0, size 0.
	it := NewFrameIter([]byte{0xfe, 0x00, 0x00, 0x00})
	_, ok, err := it.Next()
	require.False(t, ok)
	require.Error(t, err)

	// Further calls report clean exhaustion, never a repeated error.
	_, ok, err = it.Next()
	require.False(t, ok)
	require.NoError(t, err)
}

func TestFrameIterCompressedFlag(t *testing.T) {
	it := NewFrameIter([]byte{0x07 | compressedFlag, 0x01, 0x00})
	f, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, f.Compressed)
}
