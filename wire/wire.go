/*
Package wire decodes the handful of top-level fields the demo decoder needs
out of the protobuf messages embedded in a demo file.

spec.md places "the source schema of the protobuf messages" out of scope,
assuming any proto codec is available. This package is that codec, but
instead of generated protoc-gen-go bindings (this exercise's build never
invokes protoc) it walks the wire format directly with
google.golang.org/protobuf/encoding/protowire -- the same official module a
generated client would depend on, just without the generated struct layer.
Field numbers below are the ones published in Valve's demo.proto /
netmessages.proto / networkbasetypes.proto for the relevant messages; see
DESIGN.md for the tradeoff this makes against full generated bindings.
*/
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrTruncated is returned when a message's bytes end in the middle of a
// field.
type ErrTruncated struct {
	Message string
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("wire: truncated %s message", e.Message)
}

// walkFields calls fn once per top-level field in b, in wire order, passing
// the field number, wire type, and the bytes that follow the field's tag.
// fn consumes the field's value with one of the protowire.Consume* helpers
// and returns how many bytes it consumed; a negative count aborts the walk
// with ErrTruncated.
func walkFields(msgName string, b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (n int)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return &ErrTruncated{Message: msgName}
		}
		b = b[n:]

		consumed := fn(num, typ, b)
		if consumed < 0 {
			return &ErrTruncated{Message: msgName}
		}
		b = b[consumed:]
	}
	return nil
}

// consumeByType advances past one field's value of the given wire type,
// returning the number of bytes consumed (or -1 on error).
func consumeByType(typ protowire.Type, b []byte) int {
	switch typ {
	case protowire.VarintType:
		_, n := protowire.ConsumeVarint(b)
		return n
	case protowire.Fixed32Type:
		_, n := protowire.ConsumeFixed32(b)
		return n
	case protowire.Fixed64Type:
		_, n := protowire.ConsumeFixed64(b)
		return n
	case protowire.BytesType:
		_, n := protowire.ConsumeBytes(b)
		return n
	default:
		n := protowire.ConsumeFieldValue(0, typ, b)
		return n
	}
}

func consumeVarint(b []byte) (uint64, int) {
	return protowire.ConsumeVarint(b)
}

func consumeBytes(b []byte) ([]byte, int) {
	return protowire.ConsumeBytes(b)
}

func consumeString(b []byte) (string, int) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return "", n
	}
	return string(v), n
}
