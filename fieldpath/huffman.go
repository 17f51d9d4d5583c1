/*

Package fieldpath decodes field paths: the addressing scheme an entity
update uses to name one leaf of a schema tree (spec.md §4.7).

*/

package fieldpath

// huffmanEntry is one slot of the precomputed peek table: the symbol a
// 17-bit lookahead decodes to, and how many of those bits the code actually
// consumed.
type huffmanEntry struct {
	symbol byte
	length byte
}

const huffmanBits = 17
const huffmanTableSize = 1 << huffmanBits

// huffmanTable maps every possible 17-bit lookahead to its symbol and code
// length. Built once in init() by canonically assigning codes from
// symbolLengths below: the shortest codes go to the plus-N operations
// (PlusOne gets 2 bits), the longest (10 bits) to push-N (25, 26) and most
// push-two/push-three forms, without depending on the game binary's exact
// published weights.
var huffmanTable [huffmanTableSize]huffmanEntry

// symbolLengths gives each of the 40 symbols (operations 0..=38, terminator
// 39) a canonical-Huffman code length. Entries are listed in (length,
// symbol) order, which is also the order canonical assignment consumes them
// in.
var symbolLengths = []struct {
	symbol byte
	length byte
}{
	{0, 2}, {1, 3}, {39, 3},
	{2, 4}, {3, 4},
	{4, 5}, {5, 5}, {27, 5},
	{6, 6}, {7, 6}, {9, 6}, {13, 6},
	{8, 7}, {10, 7}, {11, 7}, {29, 7}, {30, 7},
	{12, 8}, {14, 8}, {31, 8}, {32, 8}, {35, 8}, {36, 8},
	{15, 9}, {16, 9}, {17, 9}, {18, 9}, {33, 9}, {34, 9}, {37, 9},
	{19, 10}, {20, 10}, {21, 10}, {22, 10}, {23, 10}, {24, 10}, {25, 10}, {26, 10}, {28, 10}, {38, 10},
}

// init builds the peek table so that it can be indexed directly by the next
// huffmanBits read off the stream via PeekNBits: the reader is LSB-first
// (the next bit to consume is always the low bit of whatever it returns),
// so a code's defining bits live at the LOW end of the table index, and the
// remaining high bits -- not yet decided -- range over every possibility.
// Canonical codes are prefix-free MSB-first, so each code is bit-reversed
// before it is planted at the low end of the index; reading the reversed
// code LSB-first is the same as reading the original MSB-first.
func init() {
	var code uint32
	prevLen := symbolLengths[0].length
	for _, e := range symbolLengths {
		code <<= uint(e.length - prevLen)
		prevLen = e.length

		rev := reverseBits(code, uint(e.length))
		fill := uint32(1) << (huffmanBits - e.length)
		for high := uint32(0); high < fill; high++ {
			idx := rev | (high << e.length)
			huffmanTable[idx] = huffmanEntry{symbol: e.symbol, length: e.length}
		}

		code++
	}
}

// reverseBits reverses the low n bits of v.
func reverseBits(v uint32, n uint) uint32 {
	var out uint32
	for i := uint(0); i < n; i++ {
		out = out<<1 | (v>>i)&1
	}
	return out
}
