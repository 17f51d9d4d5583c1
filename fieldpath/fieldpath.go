package fieldpath

import (
	"errors"
	"fmt"

	"github.com/csdemo-go/csdemo"
)

// maxDepth is the fixed capacity of a field path: at most 7 levels address
// any leaf in a schema tree.
const maxDepth = 7

// FieldPath is a fixed-capacity path into a schema tree: path[0:last+1] are
// the live entries, everything past last is stale from a previous pop.
type FieldPath struct {
	path [maxDepth]int32
	last int32 // Index of the last live entry; path has last+1 entries.
}

// newFieldPath returns the path engine's start state: a single -1 sentinel
// entry, eliminated by the first op (every op sequence begins with an
// increment of the tail).
func newFieldPath() FieldPath {
	return FieldPath{path: [maxDepth]int32{-1}, last: 0}
}

// Len reports how many entries are live.
func (p FieldPath) Len() int32 { return p.last + 1 }

// At returns the i'th entry.
func (p FieldPath) At(i int32) int32 { return p.path[i] }

// Entries returns the live entries as a slice, for callers that need to walk
// a schema tree by index.
func (p FieldPath) Entries() []int32 {
	return append([]int32(nil), p.path[:p.last+1]...)
}

// ErrBadOp is returned when the decoded huffman symbol is one of 0..38 but
// hits a path state its operation can't apply to (e.g. popping past depth).
var ErrBadOp = errors.New("fieldpath: operation inapplicable to current path")

// ReadFieldPaths decodes a full sequence of field paths from r, stopping at
// the huffman terminator symbol (39). Any other decode failure is a
// genuine protocol error (spec.md §4.7: "any other panic path is a decoder
// bug").
func ReadFieldPaths(r *csdemo.BitReader) ([]FieldPath, error) {
	var out []FieldPath
	cur := newFieldPath()

	for {
		sym, err := readSymbol(r)
		if err != nil {
			return nil, err
		}
		if sym == 39 {
			return out, nil
		}
		if err := applyOp(sym, &cur, r); err != nil {
			return nil, err
		}
		out = append(out, cur)
	}
}

func readSymbol(r *csdemo.BitReader) (byte, error) {
	// Near the end of the stream fewer than huffmanBits may remain; peek
	// whatever is left and zero-pad the rest, since every valid code the
	// table can still match at that point is shorter than the full width.
	avail := uint(r.BitsLeft())
	if avail > huffmanBits {
		avail = huffmanBits
	}
	if avail == 0 {
		return 0, fmt.Errorf("fieldpath: %w: no bits remain", ErrBadOp)
	}
	// partial's low bits are the real upcoming stream bits; any bits above
	// avail are implicitly zero, which only matters for codes longer than
	// avail -- and those can't legally match this close to the end.
	partial, err := r.PeekNBits(avail)
	if err != nil {
		return 0, err
	}
	e := huffmanTable[partial]
	if e.length == 0 || uint(e.length) > avail {
		return 0, fmt.Errorf("fieldpath: %w: no huffman code matches peek %#x", ErrBadOp, partial)
	}
	if _, err := r.ReadNBits(uint(e.length)); err != nil {
		return 0, err
	}
	return e.symbol, nil
}

func zigzag32(r *csdemo.BitReader) (int32, error) {
	return r.ReadVarInt32()
}

// applyOp mutates cur according to the operation named by sym, per the
// category table in spec.md §4.7.
func applyOp(sym byte, cur *FieldPath, r *csdemo.BitReader) error {
	switch sym {
	// Plus N (0-4): increment tail by 1/2/3/4, or ubit-var-fp + 5.
	case 0:
		cur.path[cur.last]++
	case 1:
		cur.path[cur.last] += 2
	case 2:
		cur.path[cur.last] += 3
	case 3:
		cur.path[cur.last] += 4
	case 4:
		n, err := r.ReadUBitVarFP()
		if err != nil {
			return err
		}
		cur.path[cur.last] += int32(n) + 5

	// Push-one, left delta, right delta (5-12).
	case 5:
		return pushOne(cur, r, 0, ubitVarFPDelta)
	case 6:
		return pushOne(cur, r, 0, packedDelta(4))
	case 7:
		return pushOne(cur, r, 1, ubitVarFPDelta)
	case 8:
		return pushOne(cur, r, 1, packedDelta(3))
	case 9:
		return pushOne(cur, r, -1, ubitVarFPDelta)
	case 10:
		return pushOne(cur, r, -1, packedDelta(3))
	case 11:
		return pushOne(cur, r, -2, ubitVarFPDelta)
	case 12:
		return pushOne(cur, r, -2, packedDelta(3))

	// Push-two / push-three, pack5 (13-24).
	case 13:
		return pushN(cur, r, 2, 0)
	case 14:
		return pushN(cur, r, 2, 1)
	case 15:
		n, err := r.ReadUBitVar()
		if err != nil {
			return err
		}
		return pushN(cur, r, 2, int32(n)+2)
	case 16:
		return pushNPack5(cur, r, 2)
	case 17:
		return pushN(cur, r, 3, 0)
	case 18:
		return pushN(cur, r, 3, 1)
	case 19:
		n, err := r.ReadUBitVar()
		if err != nil {
			return err
		}
		return pushN(cur, r, 3, int32(n)+2)
	case 20:
		return pushNPack5(cur, r, 3)
	case 21, 22, 23, 24:
		return pushNPack5(cur, r, sym-18) // 3,4,5,6 entries.

	// Push-N and non-topological (25-26).
	case 25:
		n, err := r.ReadUBitVar()
		if err != nil {
			return err
		}
		cur.path[cur.last]++
		for i := int32(0); i < int32(n); i++ {
			if err := push(cur, 0); err != nil {
				return err
			}
		}
		return nil
	case 26:
		n, err := r.ReadUBitVar()
		if err != nil {
			return err
		}
		cur.path[cur.last]++
		for i := int32(0); i < int32(n); i++ {
			if err := push(cur, 0); err != nil {
				return err
			}
		}
		for i := int32(0); i <= cur.last; i++ {
			d, err := zigzag32(r)
			if err != nil {
				return err
			}
			cur.path[i] += d
		}
		return nil

	// Pop-one / pop-all-but-one / pop-N (27-34).
	case 27:
		return popAdjust(cur, 1, 0)
	case 28:
		n, err := r.ReadUBitVarFP()
		if err != nil {
			return err
		}
		return popAdjust(cur, 1, int32(n)+1)
	case 29:
		return popN(cur, r, 3, 1)
	case 30:
		return popN(cur, r, 6, 1)
	case 31:
		if cur.last == 0 {
			return ErrBadOp
		}
		cur.last = 0
		cur.path[1], cur.path[2], cur.path[3], cur.path[4], cur.path[5], cur.path[6] = 0, 0, 0, 0, 0, 0
		cur.path[0]++
		return nil
	case 32:
		return popAdjustN(cur, r, 3)
	case 33:
		return popAdjustN(cur, r, 6)
	case 34:
		d, err := zigzag32(r)
		if err != nil {
			return err
		}
		if cur.last == 0 {
			return ErrBadOp
		}
		cur.last--
		cur.path[cur.last] += d
		return nil

	// Non-topographical (35-38).
	case 35, 36, 37:
		for i := int32(0); i <= cur.last; i++ {
			d, err := zigzag32(r)
			if err != nil {
				return err
			}
			cur.path[i] += d
		}
		return nil
	case 38:
		n, err := r.ReadNBits(4)
		if err != nil {
			return err
		}
		delta := int32(n) - 7
		for i := int32(0); i <= cur.last; i++ {
			cur.path[i] += delta
		}
		return nil

	default:
		return fmt.Errorf("fieldpath: %w: symbol %d", ErrBadOp, sym)
	}
	return nil
}

func ubitVarFPDelta(r *csdemo.BitReader) (int32, error) {
	n, err := r.ReadUBitVarFP()
	return int32(n), err
}

func packedDelta(bits uint) func(*csdemo.BitReader) (int32, error) {
	return func(r *csdemo.BitReader) (int32, error) {
		n, err := r.ReadNBits(bits)
		return int32(n), err
	}
}

func push(cur *FieldPath, v int32) error {
	if cur.last+1 >= maxDepth {
		return ErrBadOp
	}
	cur.last++
	cur.path[cur.last] = v
	return nil
}

func pushOne(cur *FieldPath, r *csdemo.BitReader, leftDelta int32, readRight func(*csdemo.BitReader) (int32, error)) error {
	cur.path[cur.last] += leftDelta
	right, err := readRight(r)
	if err != nil {
		return err
	}
	return push(cur, right)
}

func pushN(cur *FieldPath, r *csdemo.BitReader, n int32, leftDelta int32) error {
	cur.path[cur.last] += leftDelta
	for i := int32(0); i < n; i++ {
		if err := push(cur, 0); err != nil {
			return err
		}
	}
	return nil
}

func pushNPack5(cur *FieldPath, r *csdemo.BitReader, n byte) error {
	for i := byte(0); i < n; i++ {
		v, err := r.ReadNBits(5)
		if err != nil {
			return err
		}
		if err := push(cur, int32(v)); err != nil {
			return err
		}
	}
	return nil
}

func popAdjust(cur *FieldPath, n int32, delta int32) error {
	if cur.last-n+1 < 0 {
		return ErrBadOp
	}
	for i := int32(0); i < n; i++ {
		cur.path[cur.last] = 0
		cur.last--
	}
	cur.path[cur.last] += delta
	return nil
}

func popN(cur *FieldPath, r *csdemo.BitReader, bits uint, bias int32) error {
	v, err := r.ReadNBits(bits)
	if err != nil {
		return err
	}
	return popAdjust(cur, int32(v)+bias, 0)
}

func popAdjustN(cur *FieldPath, r *csdemo.BitReader, bits uint) error {
	n, err := r.ReadNBits(bits)
	if err != nil {
		return err
	}
	if cur.last-int32(n) < 0 {
		return ErrBadOp
	}
	for i := uint(0); i < uint(n); i++ {
		cur.path[cur.last] = 0
		cur.last--
	}
	d, err := zigzag32(r)
	if err != nil {
		return err
	}
	cur.path[cur.last] += d
	return nil
}
