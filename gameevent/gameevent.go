/*

Package gameevent projects raw game-event wire values into named, typed
fields (spec.md §4.9).

*/

package gameevent

import (
	"fmt"

	"github.com/csdemo-go/csdemo/wire"
)

// UserId is a player-slot reference carried by many event key fields
// (attacker, victim, assister, ...). It is a distinct type from a bare
// int32 so parsers can't accidentally cross-assign a plain count field.
type UserId int32

// RawValueKind selects which field of RawValue is meaningful.
type RawValueKind uint8

// RawValueKind values, one per wire.GameEventKeyValue.Type (1..=9).
const (
	RawString RawValueKind = iota + 1
	RawFloat
	RawLong
	RawShort
	RawByte
	RawBool
	RawUint64
	RawWString
	RawLocal // Type 9: a local/context value the engine never populates meaningfully.
)

// RawValue is the untyped sum a key value decodes to before a parser
// projects it into a named field.
type RawValue struct {
	Kind   RawValueKind
	Str    string
	Float  float32
	Long   int32
	Short  int16
	Byte   uint8
	Bool   bool
	Uint64 uint64
}

func rawValueOf(kv wire.GameEventKeyValue) RawValue {
	switch kv.Type {
	case 1:
		return RawValue{Kind: RawString, Str: kv.ValString}
	case 2:
		return RawValue{Kind: RawFloat, Float: kv.ValFloat}
	case 3:
		return RawValue{Kind: RawLong, Long: kv.ValLong}
	case 4:
		return RawValue{Kind: RawShort, Short: kv.ValShort}
	case 5:
		return RawValue{Kind: RawByte, Byte: kv.ValByte}
	case 6:
		return RawValue{Kind: RawBool, Bool: kv.ValBool}
	case 7:
		return RawValue{Kind: RawUint64, Uint64: kv.ValUint64}
	case 8:
		return RawValue{Kind: RawWString, Str: kv.ValWString}
	default:
		return RawValue{Kind: RawLocal}
	}
}

// AsUserId projects v as a UserId, falling back to 0 for any non-integral
// kind (a malformed descriptor, not something a well-formed demo produces).
func (v RawValue) AsUserId() UserId {
	switch v.Kind {
	case RawShort:
		return UserId(v.Short)
	case RawLong:
		return UserId(v.Long)
	case RawByte:
		return UserId(v.Byte)
	default:
		return 0
	}
}

func (v RawValue) asInt32() int32 {
	switch v.Kind {
	case RawLong:
		return v.Long
	case RawShort:
		return int32(v.Short)
	case RawByte:
		return int32(v.Byte)
	default:
		return 0
	}
}

func (v RawValue) asBool() bool {
	if v.Kind == RawBool {
		return v.Bool
	}
	return v.asInt32() != 0
}

func (v RawValue) asString() string {
	if v.Kind == RawString || v.Kind == RawWString {
		return v.Str
	}
	return ""
}

// Event is one decoded, named game event: its descriptor name, its typed
// fields (if a registered parser knew the shape), and any positional
// values the parser didn't expect.
type Event struct {
	Name      string
	Fields    map[string]RawValue
	Remaining map[string]RawValue
}

// Field looks up a named field's raw value.
func (e Event) Field(name string) (RawValue, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

// Typed projections over named fields. Each returns the zero value when the
// field is absent or its wire kind doesn't project; callers that need to
// distinguish use Field directly.

// UserId projects a named field as a player-slot reference.
func (e Event) UserId(name string) UserId {
	v, _ := e.Fields[name]
	return v.AsUserId()
}

// Int projects a named field as an int32.
func (e Event) Int(name string) int32 {
	v, _ := e.Fields[name]
	return v.asInt32()
}

// Bool projects a named field as a bool.
func (e Event) Bool(name string) bool {
	v, _ := e.Fields[name]
	return v.asBool()
}

// Str projects a named field as a string.
func (e Event) Str(name string) string {
	v, _ := e.Fields[name]
	return v.asString()
}

// Float projects a named field as a float32.
func (e Event) Float(name string) float32 {
	v, _ := e.Fields[name]
	if v.Kind == RawFloat {
		return v.Float
	}
	return 0
}

// Descriptors indexes the name->keys table a CMsgSource1LegacyGameEventList
// message carries, letting the mapper turn a positional key-value array
// back into named fields.
type Descriptors struct {
	byID map[int32]wire.GameEventDescriptor
}

// NewDescriptors builds a lookup table from a decoded descriptor-list
// message.
func NewDescriptors(list *wire.GameEventListMsg) *Descriptors {
	d := &Descriptors{byID: make(map[int32]wire.GameEventDescriptor, len(list.Descriptors))}
	for _, desc := range list.Descriptors {
		d.byID[desc.EventID] = desc
	}
	return d
}

// Decode resolves one event instance against its descriptor and the parser
// registry, returning the named event. An unknown event-id is reported as
// an error so the caller can log-and-skip per spec.md §4.9, rather than
// silently dropped here.
func (d *Descriptors) Decode(msg *wire.GameEventMsg) (Event, error) {
	desc, ok := d.byID[msg.EventID]
	if !ok {
		return Event{}, fmt.Errorf("gameevent: unknown event id %d", msg.EventID)
	}

	fields := make(map[string]RawValue, len(msg.Keys))
	remaining := make(map[string]RawValue)
	for i, kv := range msg.Keys {
		name := fmt.Sprintf("key%d", i)
		if i < len(desc.Keys) {
			name = desc.Keys[i].Name
		}
		raw := rawValueOf(kv)
		if parser, ok := parserRegistry[desc.Name]; ok && parser.knows(name) {
			fields[name] = raw
		} else {
			remaining[name] = raw
		}
	}

	return Event{Name: desc.Name, Fields: fields, Remaining: remaining}, nil
}
