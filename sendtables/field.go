/*

The Field tree: the decoded shape of a flattened-serializer schema.

*/

package sendtables

// FieldCategory selects which of Field's variant-specific members apply.
type FieldCategory uint8

// Field categories, assigned in the priority order spec.md §4.5 names:
// pointer, then vector, then array, then value.
const (
	FieldNone FieldCategory = iota
	FieldValue
	FieldArray
	FieldVector
	FieldSerializer
	FieldPointer
)

// Field is one node of a schema tree: a leaf Value, a fixed-length Array, a
// variable-length Vector, an embedded Serializer, or a Pointer to one.
// Array and Vector always have exactly one Element; Serializer and Pointer
// route through Inner's Fields by integer index (spec.md §3 invariant).
type Field struct {
	Category FieldCategory

	// FieldValue:
	Decoder        Decoder
	Name           string // Leaf's own var-name.
	FullName       string // ser.name + "." + leaf.name
	PropID         int32
	ShouldParse    bool
	QuantizedFloat *QuantizedFloat // Only set when Decoder == DecQuantizedFloat.

	// FieldArray:
	Element *Field
	Length  int32

	// FieldVector:
	IndexDecoder Decoder // Always DecUnsigned in practice; kept explicit per spec.md §3.

	// FieldSerializer / FieldPointer:
	Inner *Serializer

	// FieldPointer only: which decoder reads the existence bit / rules value.
	PointerDecoder Decoder
}

// Serializer is a named, ordered list of Field descriptors.
type Serializer struct {
	Name    string
	Version int32
	Fields  []*Field
}

// Clone deep-copies s so that embedding it into multiple parent fields never
// creates a shared, mutable subtree -- see spec.md §9 "Cyclic schema graphs":
// serializers reference each other by name, and we resolve those references
// by cloning instead of keeping a cyclic/graph structure.
func (s *Serializer) Clone() *Serializer {
	if s == nil {
		return nil
	}
	out := &Serializer{Name: s.Name, Version: s.Version, Fields: make([]*Field, len(s.Fields))}
	for i, f := range s.Fields {
		out.Fields[i] = f.Clone()
	}
	return out
}

// Clone deep-copies f.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	out := *f
	out.Element = f.Element.Clone()
	out.Inner = f.Inner.Clone()
	return &out
}
