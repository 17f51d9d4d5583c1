/*
Package stringtable maintains the string tables a demo's network stream
builds up incrementally: created with a bit-packed entry snapshot, then
patched in place by later update messages. The decoder cares about exactly
one of them -- "instancebaseline", whose entries key raw per-class baseline
bytes by class-id -- but the entry encoding is shared by every table, so the
whole mechanism lives here.
*/
package stringtable

import (
	"errors"
	"fmt"

	"github.com/golang/snappy"

	"github.com/csdemo-go/csdemo"
	"github.com/csdemo-go/csdemo/wire"
)

// ErrUnknownTableID is returned when an update references a table id no
// create message established.
var ErrUnknownTableID = errors.New("stringtable: update for unknown table id")

// keyHistorySize is the depth of the sliding key-prefix window the entry
// encoding references back into.
const keyHistorySize = 32

// Entry is one (key, value) pair of a table. Value is nil for entries whose
// updates never carried user data.
type Entry struct {
	Key   string
	Value []byte
}

// Table is one live string table, updated in place as the stream patches it.
type Table struct {
	Name  string
	Flags int32

	userDataFixedSize    bool
	userDataSizeBits     int32
	usingVarintBitcounts bool

	entries map[int32]*Entry
	order   []int32 // Entry indices in first-seen order.
}

// Entries returns the table's entries in first-seen index order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.order))
	for _, idx := range t.order {
		out = append(out, *t.entries[idx])
	}
	return out
}

// EntryAt returns the entry stored at a wire index, if any.
func (t *Table) EntryAt(index int32) (Entry, bool) {
	e, ok := t.entries[index]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Registry tracks every table created so far, addressable both by name and
// by creation-order id (the id update messages reference).
type Registry struct {
	tables []*Table
	byName map[string]*Table
}

// NewRegistry returns an empty table registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Table)}
}

// ByName returns the named table, if created.
func (reg *Registry) ByName(name string) (*Table, bool) {
	t, ok := reg.byName[name]
	return t, ok
}

// Create builds a new table from a CSVCMsg_CreateStringTable message,
// decoding its initial bit-packed entry snapshot, and registers it under
// the next creation-order id.
func (reg *Registry) Create(msg *wire.CreateStringTable) (*Table, error) {
	t := &Table{
		Name:                 msg.Name,
		Flags:                msg.Flags,
		userDataFixedSize:    msg.UserDataFixedSize,
		userDataSizeBits:     msg.UserDataSizeBits,
		usingVarintBitcounts: msg.UsingVarintBitcounts,
		entries:              make(map[int32]*Entry),
	}

	data := msg.StringData
	if msg.DataCompressed {
		out, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("stringtable: %q snapshot: %w", msg.Name, err)
		}
		data = out
	}

	if err := t.apply(data, msg.NumEntries); err != nil {
		return nil, err
	}

	reg.tables = append(reg.tables, t)
	reg.byName[t.Name] = t
	return t, nil
}

// Update patches an existing table with a CSVCMsg_UpdateStringTable message
// and returns the table it touched.
func (reg *Registry) Update(msg *wire.UpdateStringTable) (*Table, error) {
	if msg.TableID < 0 || int(msg.TableID) >= len(reg.tables) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTableID, msg.TableID)
	}
	t := reg.tables[msg.TableID]
	if err := t.apply(msg.StringData, msg.NumChangedEntries); err != nil {
		return nil, err
	}
	return t, nil
}

// apply decodes numEntries bit-packed entry records out of data and merges
// them into the table. The encoding per record:
//
//	index:  1 bit "previous+1", else a varint delta from the previous index (+2)
//	key:    1 bit presence; if present, 1 bit history-reference flag --
//	        set means a (5-bit window position, 5-bit prefix length)
//	        back-reference followed by the suffix string, clear means a
//	        whole zero-terminated string
//	value:  1 bit presence; if present, a bit length that is either the
//	        table's fixed size, or (optional snappy bit when the table
//	        flags allow it, then) a byte count as u-bit-var or 17 bits
func (t *Table) apply(data []byte, numEntries int32) error {
	r := csdemo.NewBitReader(data)
	history := make([]string, 0, keyHistorySize)
	index := int32(-1)

	for i := int32(0); i < numEntries; i++ {
		consecutive, err := r.ReadBoolean()
		if err != nil {
			return fmt.Errorf("stringtable: %q entry %d index: %w", t.Name, i, err)
		}
		if consecutive {
			index++
		} else {
			delta, err := r.ReadVarUint32()
			if err != nil {
				return fmt.Errorf("stringtable: %q entry %d index: %w", t.Name, i, err)
			}
			index += int32(delta) + 2
		}

		entry, known := t.entries[index]
		if !known {
			entry = &Entry{}
			t.entries[index] = entry
			t.order = append(t.order, index)
		}

		hasKey, err := r.ReadBoolean()
		if err != nil {
			return fmt.Errorf("stringtable: %q entry %d key flag: %w", t.Name, i, err)
		}
		if hasKey {
			key, err := readKey(r, history)
			if err != nil {
				return fmt.Errorf("stringtable: %q entry %d key: %w", t.Name, i, err)
			}
			entry.Key = key
			if len(history) == keyHistorySize {
				history = history[1:]
			}
			history = append(history, key)
		}

		hasValue, err := r.ReadBoolean()
		if err != nil {
			return fmt.Errorf("stringtable: %q entry %d value flag: %w", t.Name, i, err)
		}
		if hasValue {
			value, err := t.readValue(r)
			if err != nil {
				return fmt.Errorf("stringtable: %q entry %d value: %w", t.Name, i, err)
			}
			entry.Value = value
		}
	}
	return nil
}

func readKey(r *csdemo.BitReader, history []string) (string, error) {
	useHistory, err := r.ReadBoolean()
	if err != nil {
		return "", err
	}
	if !useHistory {
		return r.ReadString(0)
	}

	pos, err := r.ReadNBits(5)
	if err != nil {
		return "", err
	}
	size, err := r.ReadNBits(5)
	if err != nil {
		return "", err
	}
	suffix, err := r.ReadString(0)
	if err != nil {
		return "", err
	}

	if int(pos) >= len(history) {
		// The window slot hasn't filled yet; the suffix is the whole key.
		return suffix, nil
	}
	prefix := history[pos]
	if int(size) < len(prefix) {
		prefix = prefix[:size]
	}
	return prefix + suffix, nil
}

func (t *Table) readValue(r *csdemo.BitReader) ([]byte, error) {
	if t.userDataFixedSize {
		// Fixed-size payloads are a raw bit run, not whole bytes.
		bits := t.userDataSizeBits
		value := make([]byte, 0, (bits+7)/8)
		for bits > 0 {
			n := uint(bits)
			if n > 8 {
				n = 8
			}
			v, err := r.ReadNBits(n)
			if err != nil {
				return nil, err
			}
			value = append(value, byte(v))
			bits -= int32(n)
		}
		return value, nil
	}

	compressed := false
	if t.Flags&tableFlagDataCompressed != 0 {
		c, err := r.ReadBoolean()
		if err != nil {
			return nil, err
		}
		compressed = c
	}

	var size uint32
	if t.usingVarintBitcounts {
		v, err := r.ReadUBitVar()
		if err != nil {
			return nil, err
		}
		size = v
	} else {
		v, err := r.ReadNBits(17)
		if err != nil {
			return nil, err
		}
		size = v
	}

	value, err := r.ReadNBytes(int(size))
	if err != nil {
		return nil, err
	}
	if compressed {
		out, err := snappy.Decode(nil, value)
		if err != nil {
			return nil, err
		}
		value = out
	}
	return value, nil
}

// tableFlagDataCompressed marks tables whose variable-size values each carry
// a leading "this one is snappy-compressed" bit.
const tableFlagDataCompressed = 0x1

// ApplySnapshot replaces the named table's entries with a CDemoStringTables
// snapshot table (the whole-table form a StringTables frame or FullPacket
// carries). Unknown tables are created fresh with snapshot-only defaults.
func (reg *Registry) ApplySnapshot(snap wire.SnapshotStringTable) *Table {
	t, ok := reg.byName[snap.Name]
	if !ok {
		t = &Table{Name: snap.Name, Flags: snap.Flags, entries: make(map[int32]*Entry)}
		reg.tables = append(reg.tables, t)
		reg.byName[t.Name] = t
	}
	t.entries = make(map[int32]*Entry, len(snap.Items))
	t.order = t.order[:0]
	for i, item := range snap.Items {
		idx := int32(i)
		t.entries[idx] = &Entry{Key: item.Str, Value: item.Data}
		t.order = append(t.order, idx)
	}
	return t
}
