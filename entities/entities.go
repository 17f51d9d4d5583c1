/*

Package entities reconstructs live entity state from packet-entities
messages: creation with baseline-then-delta application, and subsequent
in-place updates (spec.md §4.8).

*/

package entities

import (
	"errors"
	"fmt"

	"github.com/csdemo-go/csdemo"
	"github.com/csdemo-go/csdemo/fieldpath"
	"github.com/csdemo-go/csdemo/sendtables"
	"github.com/csdemo-go/csdemo/wire"
)

// ErrBadUpdateTag is returned when a packet-entities entry carries a 2-bit
// tag other than {00, 01, 10, 11}'s three defined meanings.
var ErrBadUpdateTag = errors.New("entities: invalid entity update tag")

// Class names a serializer by its networked class-id.
type Class struct {
	ID         int32
	Name       string
	Serializer *sendtables.Serializer
}

// Entity is one live networked object: just enough to route further
// updates to the right serializer.
type Entity struct {
	ID      int32
	ClassID int32
}

// EntityProp is one resolved, decoded leaf value on an entity, the unit the
// caller actually wants out of an update.
type EntityProp struct {
	PropID int32
	Name   string
	Value  csdemo.Variant
}

// EntityState is everything one packet-entities entry produced for one
// entity: its identity plus whatever props the update touched.
type EntityState struct {
	EntityID  int32
	ClassID   int32
	ClassName string
	Deleted   bool
	Props     []EntityProp
}

// Context holds the live entity table, the class table built from the last
// CDemoClassInfo, and per-class instance baselines.
type Context struct {
	classes   map[int32]*Class
	entities  map[int32]*Entity
	baselines map[int32][]byte // class-id -> raw baseline entity-update bytes.
	props     *sendtables.PropController
	skipClass func(name string) bool
}

// NewContext returns an empty entity context. skipClass, if non-nil, names
// classes whose updates should be dropped entirely (spec.md §4.8:
// decode_entity_update returns None for filtered-out classes).
func NewContext(props *sendtables.PropController, skipClass func(string) bool) *Context {
	return &Context{
		classes:   make(map[int32]*Class),
		entities:  make(map[int32]*Entity),
		baselines: make(map[int32][]byte),
		props:     props,
		skipClass: skipClass,
	}
}

// SetClasses installs the class-id -> name -> serializer table decoded from
// a CDemoClassInfo message plus the already-built per-serializer-name map.
func (c *Context) SetClasses(ci *wire.ClassInfo, serializers map[string]*sendtables.Serializer) {
	for _, e := range ci.Classes {
		c.classes[e.ClassID] = &Class{ID: e.ClassID, Name: e.Name, Serializer: serializers[e.Name]}
	}
}

// SetBaseline records the raw instance-baseline bytes for a class-id, taken
// from the "instancebaseline" string table (keyed by class-id as a decimal
// string in that table, resolved by the caller).
func (c *Context) SetBaseline(classID int32, raw []byte) {
	c.baselines[classID] = raw
}

// Baseline returns the raw baseline bytes recorded for a class-id, if any.
func (c *Context) Baseline(classID int32) ([]byte, bool) {
	b, ok := c.baselines[classID]
	return b, ok
}

// CreateEntity reads the fixed class-id/serial/unknown header spec.md §4.8
// describes and registers a new live entity.
func (c *Context) CreateEntity(id int32, r *csdemo.BitReader) (int32, error) {
	classID, err := r.ReadNBits(8)
	if err != nil {
		return 0, err
	}
	if _, err := r.ReadNBits(17); err != nil { // serial
		return 0, err
	}
	if _, err := r.ReadVarUint32(); err != nil { // unknown
		return 0, err
	}
	c.entities[id] = &Entity{ID: id, ClassID: int32(classID)}
	return int32(classID), nil
}

// DecodeEntityUpdate applies n paths worth of field updates to entity id,
// returning the resulting EntityState, or ok=false if the entity's class is
// filtered out.
func (c *Context) DecodeEntityUpdate(id int32, r *csdemo.BitReader, paths []fieldpath.FieldPath) (EntityState, bool, error) {
	ent, known := c.entities[id]
	if !known {
		return EntityState{}, false, fmt.Errorf("entities: update for unknown entity %d", id)
	}
	class, known := c.classes[ent.ClassID]
	if !known || class.Serializer == nil {
		return EntityState{}, false, fmt.Errorf("entities: update for unknown class %d", ent.ClassID)
	}

	state := EntityState{EntityID: id, ClassID: ent.ClassID, ClassName: class.Name}

	for _, p := range paths {
		field := resolveField(class.Serializer, p)
		if field == nil {
			continue
		}
		switch field.Category {
		case sendtables.FieldValue:
		case sendtables.FieldVector:
			// A path naming the vector itself carries its new length.
			if _, err := sendtables.Decode(field.IndexDecoder, nil, r); err != nil {
				return EntityState{}, false, err
			}
			continue
		case sendtables.FieldPointer:
			if _, err := sendtables.Decode(field.PointerDecoder, nil, r); err != nil {
				return EntityState{}, false, err
			}
			continue
		default:
			continue
		}

		v, err := sendtables.Decode(field.Decoder, field.QuantizedFloat, r)
		if err != nil {
			return EntityState{}, false, err
		}

		var pathArr [7]int32
		entries := p.Entries()
		copy(pathArr[:], entries)
		info, ok := c.props.Lookup(field.PropID, pathArr, int32(len(entries)))
		if ok {
			state.Props = append(state.Props, EntityProp{PropID: info.ID, Name: info.Name, Value: v})
		}
	}

	// Filtering happens only after every path's bits were consumed: a
	// filtered entity still advances the reader so the next entity in the
	// packet stays bit-aligned.
	if c.skipClass != nil && c.skipClass(class.Name) {
		return EntityState{}, false, nil
	}

	return state, true, nil
}

// resolveField walks ser down p's entries, following Array/Vector/
// Serializer/Pointer wrappers as it goes, and returns the leaf Field the
// path ultimately names.
func resolveField(ser *sendtables.Serializer, p fieldpath.FieldPath) *sendtables.Field {
	if ser == nil || p.Len() == 0 {
		return nil
	}
	idx := p.At(0)
	if idx < 0 || int(idx) >= len(ser.Fields) {
		return nil
	}
	f := ser.Fields[idx]

	for i := int32(1); i < p.Len(); i++ {
		switch f.Category {
		case sendtables.FieldArray, sendtables.FieldVector:
			f = f.Element
		case sendtables.FieldSerializer, sendtables.FieldPointer:
			if f.Inner == nil {
				return nil
			}
			next := p.At(i)
			if next < 0 || int(next) >= len(f.Inner.Fields) {
				return nil
			}
			f = f.Inner.Fields[next]
			continue
		default:
			return f
		}
	}
	return f
}

// DeleteEntity removes id from the live table.
func (c *Context) DeleteEntity(id int32) {
	delete(c.entities, id)
}

// readUpdatedEntry is the packet-entities inner loop for one entry: it
// advances the running signed entity id and dispatches on the 2-bit tag.
func readUpdatedEntry(r *csdemo.BitReader, lastID int32) (id int32, tag uint32, err error) {
	delta, err := r.ReadUBitVar()
	if err != nil {
		return 0, 0, err
	}
	id = lastID + 1 + int32(delta)
	tag, err = r.ReadNBits(2)
	return id, tag, err
}

// Entry tags, per spec.md §4.8.
const (
	TagUpdate  = 0b00
	TagDelete  = 0b01
	TagCreate  = 0b10
	TagDelete2 = 0b11
)

// DecodePacketEntities walks a whole packet-entities payload, applying
// create/update/delete entries in order and returning one EntityState per
// surviving entry (deletions are reported with Deleted=true and no props).
func (c *Context) DecodePacketEntities(pe *wire.PacketEntities) ([]EntityState, error) {
	r := csdemo.NewBitReader(pe.EntityData)
	var out []EntityState
	lastID := int32(-1)

	for i := int32(0); i < pe.UpdatedEntries; i++ {
		id, tag, err := readUpdatedEntry(r, lastID)
		if err != nil {
			return out, err
		}
		lastID = id

		switch tag {
		case TagDelete, TagDelete2:
			c.DeleteEntity(id)
			out = append(out, EntityState{EntityID: id, Deleted: true})

		case TagCreate:
			if pe.UpdateBaseline {
				if _, err := readBaselineIfPresent(c, id, r); err != nil {
					return out, err
				}
			}
			classID, err := c.CreateEntity(id, r)
			if err != nil {
				return out, err
			}
			// Decode the class baseline into the same entity first (spec.md
			// §9, "baselines before deltas"); its result is discarded, only
			// the create's own delta below is emitted.
			if baseline, ok := c.baselines[classID]; ok {
				br := csdemo.NewBitReader(baseline)
				if paths, err := fieldpath.ReadFieldPaths(br); err == nil {
					_, _, _ = c.DecodeEntityUpdate(id, br, paths)
				}
			}
			paths, err := fieldpath.ReadFieldPaths(r)
			if err != nil {
				return out, err
			}
			st, ok, err := c.DecodeEntityUpdate(id, r, paths)
			if err != nil {
				return out, err
			}
			if ok {
				out = append(out, st)
			}

		case TagUpdate:
			if pe.HasPVSVisBits > 0 {
				// Two PVS visibility bits precede the update; a set low bit
				// discards the subsequent update unconditionally.
				vis, err := r.ReadNBits(2)
				if err != nil {
					return out, err
				}
				if vis&1 != 0 {
					continue
				}
			}
			paths, err := fieldpath.ReadFieldPaths(r)
			if err != nil {
				return out, err
			}
			st, ok, err := c.DecodeEntityUpdate(id, r, paths)
			if err != nil {
				return out, err
			}
			if ok {
				out = append(out, st)
			}

		default:
			return out, ErrBadUpdateTag
		}
	}

	return out, nil
}

// readBaselineIfPresent is a hook point for demos that ship an updated
// per-entity baseline inline rather than through the instancebaseline
// string table; current builds don't exercise this path, so it is a no-op
// until a fixture demonstrates its wire shape.
func readBaselineIfPresent(c *Context, id int32, r *csdemo.BitReader) (bool, error) {
	return false, nil
}
