package stringtable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csdemo-go/csdemo/wire"
)

// bitWriter builds little-endian bit-packed test payloads, mirroring the
// LSB-first order csdemo.BitReader consumes them in.
type bitWriter struct {
	buf  []byte
	cur  uint64
	bits uint
}

func (w *bitWriter) write(v uint32, n uint) {
	w.cur |= uint64(v) << w.bits
	w.bits += n
	for w.bits >= 8 {
		w.buf = append(w.buf, byte(w.cur))
		w.cur >>= 8
		w.bits -= 8
	}
}

func (w *bitWriter) writeBool(b bool) {
	if b {
		w.write(1, 1)
	} else {
		w.write(0, 1)
	}
}

func (w *bitWriter) writeString(s string) {
	for i := 0; i < len(s); i++ {
		w.write(uint32(s[i]), 8)
	}
	w.write(0, 8)
}

func (w *bitWriter) bytes() []byte {
	if w.bits > 0 {
		w.buf = append(w.buf, byte(w.cur))
		w.cur, w.bits = 0, 0
	}
	return w.buf
}

// buildEntries packs (key, value) records the way Table.apply expects them:
// consecutive indices, whole keys (no history references), 17-bit value byte
// counts.
func buildEntries(entries []Entry) []byte {
	var w bitWriter
	for _, e := range entries {
		w.writeBool(true) // index = previous + 1
		w.writeBool(true) // key present
		w.writeBool(false)
		w.writeString(e.Key)
		if e.Value != nil {
			w.writeBool(true)
			w.write(uint32(len(e.Value)), 17)
			for _, b := range e.Value {
				w.write(uint32(b), 8)
			}
		} else {
			w.writeBool(false)
		}
	}
	return w.bytes()
}

func TestCreateDecodesBitPackedEntries(t *testing.T) {
	want := []Entry{
		{Key: "54", Value: []byte{0xde, 0xad}},
		{Key: "55", Value: []byte{0xbe}},
		{Key: "200", Value: nil},
	}

	reg := NewRegistry()
	tbl, err := reg.Create(&wire.CreateStringTable{
		Name:       "instancebaseline",
		NumEntries: int32(len(want)),
		StringData: buildEntries(want),
	})
	require.NoError(t, err)
	require.Equal(t, want, tbl.Entries())

	got, ok := reg.ByName("instancebaseline")
	require.True(t, ok)
	require.Same(t, tbl, got)
}

func TestCreateResolvesHistoryReferencedKeys(t *testing.T) {
	// Second entry's key back-references the first's 9-char prefix.
	var w bitWriter
	w.writeBool(true) // index 0
	w.writeBool(true)
	w.writeBool(false)
	w.writeString("downtown_a")
	w.writeBool(false)

	w.writeBool(true) // index 1
	w.writeBool(true)
	w.writeBool(true) // history reference
	w.write(0, 5)     // window position 0
	w.write(9, 5)     // prefix length 9
	w.writeString("b")
	w.writeBool(false)

	reg := NewRegistry()
	tbl, err := reg.Create(&wire.CreateStringTable{
		Name:       "t",
		NumEntries: 2,
		StringData: w.bytes(),
	})
	require.NoError(t, err)

	entries := tbl.Entries()
	require.Equal(t, "downtown_a", entries[0].Key)
	require.Equal(t, "downtown_b", entries[1].Key)
}

func TestUpdatePatchesExistingEntriesInPlace(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Create(&wire.CreateStringTable{
		Name:       "t",
		NumEntries: 2,
		StringData: buildEntries([]Entry{
			{Key: "a", Value: []byte{1}},
			{Key: "b", Value: []byte{2}},
		}),
	})
	require.NoError(t, err)

	// Patch index 0's value, leaving its key untouched.
	var w bitWriter
	w.writeBool(true)  // index 0
	w.writeBool(false) // no key
	w.writeBool(true)
	w.write(1, 17)
	w.write(9, 8)

	tbl, err := reg.Update(&wire.UpdateStringTable{TableID: 0, NumChangedEntries: 1, StringData: w.bytes()})
	require.NoError(t, err)

	entries := tbl.Entries()
	require.Equal(t, Entry{Key: "a", Value: []byte{9}}, entries[0])
	require.Equal(t, Entry{Key: "b", Value: []byte{2}}, entries[1])
}

func TestUpdateUnknownTableIDErrors(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Update(&wire.UpdateStringTable{TableID: 3})
	require.ErrorIs(t, err, ErrUnknownTableID)
}

func TestFixedSizeValuesReadExactBitRuns(t *testing.T) {
	var w bitWriter
	w.writeBool(true)
	w.writeBool(true)
	w.writeBool(false)
	w.writeString("k")
	w.writeBool(true)
	w.write(0x2a, 6) // 6-bit fixed payload

	reg := NewRegistry()
	tbl, err := reg.Create(&wire.CreateStringTable{
		Name:              "t",
		NumEntries:        1,
		UserDataFixedSize: true,
		UserDataSizeBits:  6,
		StringData:        w.bytes(),
	})
	require.NoError(t, err)
	require.Equal(t, []byte{0x2a}, tbl.Entries()[0].Value)
}

func TestApplySnapshotReplacesWholeTable(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Create(&wire.CreateStringTable{Name: "instancebaseline"})
	require.NoError(t, err)

	tbl := reg.ApplySnapshot(wire.SnapshotStringTable{
		Name: "instancebaseline",
		Items: []wire.StringTableItem{
			{Str: "54", Data: []byte{1, 2}},
		},
	})
	require.Equal(t, []Entry{{Key: "54", Value: []byte{1, 2}}}, tbl.Entries())
}
