/*

Package parser drives the whole decode: it walks a container's frame
stream, routes each frame's demo-command, unpacks the sub-messages a
Packet/SignonPacket/FullPacket frame carries, and feeds everything into
either the eager pass (ParseAll) or the lazy pass (NewLazyParser) (spec.md
§4.10-4.11).

*/

package parser

import (
	"fmt"

	"github.com/csdemo-go/csdemo"
)

// dispatchPacket consumes the payload of a Packet/SignonPacket/FullPacket
// frame: repeatedly (msg-type: u-bit-var, size: varint, bytes: size) while
// at least one byte of bits remains, routing bytes to handler by
// csdemo.NetMessageKindOf(msg-type).
func dispatchPacket(payload []byte, handle func(kind csdemo.NetMessageKind, body []byte) error) error {
	r := csdemo.NewBitReader(payload)
	for r.BitsLeft() >= 8 {
		kindID, err := r.ReadUBitVar()
		if err != nil {
			return fmt.Errorf("parser: packet message header: %w", err)
		}
		size, err := r.ReadVarUint32()
		if err != nil {
			return fmt.Errorf("parser: packet message size: %w", err)
		}
		body, err := r.ReadNBytes(int(size))
		if err != nil {
			return fmt.Errorf("parser: packet message body: %w", err)
		}
		if err := handle(csdemo.NetMessageKindOf(int32(kindID)), body); err != nil {
			return err
		}
	}
	return nil
}
