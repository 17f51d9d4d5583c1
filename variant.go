/*

The Variant sum type: the tagged union every primitive decoder produces.

*/

package csdemo

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// VariantKind selects which field of Variant is meaningful.
type VariantKind uint8

// Variant kinds.
const (
	VarBool VariantKind = iota
	VarU8
	VarI16
	VarI32
	VarU32
	VarU64
	VarF32
	VarString
	VarVec2
	VarVec3
	VarStringArr
	VarU32Arr
	VarU64Arr
	VarSticker
)

// Vec2 is a two-component float vector.
type Vec2 [2]float32

// Vec3 is a three-component float vector.
type Vec3 [3]float32

// Sticker describes one weapon-skin sticker slot. None of the sendtables
// primitive decoders produces one.
type Sticker struct {
	ID       uint32
	Wear     float32
	Scale    float32
	Rotation float32
}

// Variant is a tagged union over every value shape a primitive decoder can
// produce. Exactly one field is meaningful, selected by Kind.
type Variant struct {
	Kind VariantKind

	Bool    bool
	U8      uint8
	I16     int16
	I32     int32
	U32     uint32
	U64     uint64
	F32     float32
	Str     string
	Vec2    Vec2
	Vec3    Vec3
	StrArr  []string
	U32Arr  []uint32
	U64Arr  []uint64
	Sticker []Sticker
}

// String renders the Variant's active value for debugging/logging.
func (v Variant) String() string {
	switch v.Kind {
	case VarBool:
		return fmt.Sprintf("%v", v.Bool)
	case VarU8:
		return fmt.Sprintf("%d", v.U8)
	case VarI16:
		return fmt.Sprintf("%d", v.I16)
	case VarI32:
		return fmt.Sprintf("%d", v.I32)
	case VarU32:
		return fmt.Sprintf("%d", v.U32)
	case VarU64:
		return fmt.Sprintf("%d", v.U64)
	case VarF32:
		return fmt.Sprintf("%g", v.F32)
	case VarString:
		return v.Str
	case VarVec2:
		return fmt.Sprintf("%v", v.Vec2)
	case VarVec3:
		return fmt.Sprintf("%v", v.Vec3)
	case VarStringArr:
		return fmt.Sprintf("%v", v.StrArr)
	case VarU32Arr:
		return fmt.Sprintf("%v", v.U32Arr)
	case VarU64Arr:
		return fmt.Sprintf("%v", v.U64Arr)
	case VarSticker:
		return fmt.Sprintf("%v", v.Sticker)
	default:
		return "<unknown variant>"
	}
}

// BoolVariant, I32Variant, etc. are small constructors used by the primitive
// decoders so call sites read as "what kind of value did I just decode"
// rather than raw struct literals.
func BoolVariant(b bool) Variant     { return Variant{Kind: VarBool, Bool: b} }
func U8Variant(v uint8) Variant      { return Variant{Kind: VarU8, U8: v} }
func I16Variant(v int16) Variant     { return Variant{Kind: VarI16, I16: v} }
func I32Variant(v int32) Variant     { return Variant{Kind: VarI32, I32: v} }
func U32Variant(v uint32) Variant    { return Variant{Kind: VarU32, U32: v} }
func U64Variant(v uint64) Variant    { return Variant{Kind: VarU64, U64: v} }
func F32Variant(v float32) Variant   { return Variant{Kind: VarF32, F32: v} }
func StringVariant(v string) Variant { return Variant{Kind: VarString, Str: v} }
func Vec2Variant(v Vec2) Variant     { return Variant{Kind: VarVec2, Vec2: v} }
func Vec3Variant(v Vec3) Variant     { return Variant{Kind: VarVec3, Vec3: v} }

// decodeLossyUTF8 decodes b as UTF-8, replacing invalid sequences instead of
// failing, the same lossy-decode role golang.org/x/text plays for player and
// header strings in icza-screp.
func decodeLossyUTF8(b []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), b)
	if err != nil {
		// Fall back to Go's native (also lossy, replacement-rune based) conversion.
		return string(b)
	}
	return string(out)
}
