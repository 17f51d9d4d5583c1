package fieldpath

import (
	"testing"

	"github.com/csdemo-go/csdemo"
	"github.com/stretchr/testify/require"
)

func TestHuffmanTableCoversEveryCode(t *testing.T) {
	seen := make(map[byte]bool)
	for _, e := range huffmanTable {
		if e.length != 0 {
			seen[e.symbol] = true
		}
	}
	for _, e := range symbolLengths {
		require.True(t, seen[e.symbol], "symbol %d never appears in the table", e.symbol)
	}
}

func TestHuffmanCodeLengthsFitWithinPeekWidth(t *testing.T) {
	for _, e := range symbolLengths {
		require.LessOrEqual(t, int(e.length), huffmanBits)
	}
}

func TestHuffmanShortCodesSurviveLongerFills(t *testing.T) {
	// Reversed-code planting must keep every short code's fill range intact:
	// for each symbol, re-deriving its own index from its canonical code has
	// to land back on that symbol, not on a longer code that overwrote it.
	counts := make(map[byte]int)
	for _, e := range huffmanTable {
		if e.length != 0 {
			counts[e.symbol]++
		}
	}
	for _, e := range symbolLengths {
		want := 1 << (huffmanBits - uint(e.length))
		require.Equal(t, want, counts[e.symbol], "symbol %d's fill range was partially overwritten", e.symbol)
	}
}

func TestFieldPathStartsAtSentinel(t *testing.T) {
	p := newFieldPath()
	require.Equal(t, int32(1), p.Len())
	require.Equal(t, int32(-1), p.At(0))
}

func TestApplyOpPlusOneEliminatesSentinel(t *testing.T) {
	p := newFieldPath()
	r := csdemo.NewBitReader(nil)
	require.NoError(t, applyOp(0, &p, r))
	require.Equal(t, int32(0), p.At(0))
}

func TestApplyOpPushOnePacked4GrowsDepth(t *testing.T) {
	p := newFieldPath()
	// Op 6 reads a 4-bit right delta with no leading bool prefix.
	r := csdemo.NewBitReader([]byte{0x05})
	require.NoError(t, applyOp(6, &p, r))
	require.Equal(t, int32(2), p.Len())
	require.Equal(t, int32(5), p.At(1))
}

func TestApplyOpPopAllButOneResetsToDepthOne(t *testing.T) {
	p := newFieldPath()
	require.NoError(t, push(&p, 3))
	require.NoError(t, push(&p, 4))
	require.NoError(t, applyOp(31, &p, csdemo.NewBitReader(nil)))
	require.Equal(t, int32(1), p.Len())
	require.Equal(t, int32(0), p.At(0)) // -1 sentinel incremented by the residual +1.
}

func TestApplyOpUnknownSymbolIsBadOp(t *testing.T) {
	p := newFieldPath()
	err := applyOp(200, &p, csdemo.NewBitReader(nil))
	require.ErrorIs(t, err, ErrBadOp)
}

func TestEveryOpKeepsPathWellFormed(t *testing.T) {
	// Apply each of the 39 ops to a mid-stream path state with an all-zero
	// bit source (every embedded count, delta, and zig-zag reads as zero)
	// and check the §8 invariant: 0 <= last < 7 afterwards.
	for sym := byte(0); sym < 39; sym++ {
		p := FieldPath{path: [maxDepth]int32{2, 3, 4}, last: 2}
		r := csdemo.NewBitReader(make([]byte, 64))
		err := applyOp(sym, &p, r)
		if err != nil {
			// Pop ops that would shrink past the root legitimately refuse.
			require.ErrorIs(t, err, ErrBadOp, "symbol %d", sym)
			continue
		}
		require.GreaterOrEqual(t, p.last, int32(0), "symbol %d", sym)
		require.Less(t, p.last, int32(maxDepth), "symbol %d", sym)
	}
}

func TestReadFieldPathsTerminatesOnSymbol39(t *testing.T) {
	// The table is indexed by the raw next-bits peek (low bits = next bits
	// to read), so any table index whose entry is symbol 39 already IS a
	// valid peek value for it; its low `length` bits are what the stream
	// needs to supply.
	var value uint32
	var length byte
	for i, e := range huffmanTable {
		if e.symbol == 39 && e.length != 0 {
			value = uint32(i)
			length = e.length
			break
		}
	}
	require.NotZero(t, length)

	r := csdemo.NewBitReader([]byte{byte(value)})
	paths, err := ReadFieldPaths(r)
	require.NoError(t, err)
	require.Empty(t, paths)
}
