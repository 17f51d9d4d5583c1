/*
Package csdemo is a decoder of a Source-2-era competitive shooter's binary
demo (replay) format.

csdemo turns the raw bytes of a demo file into two synchronized lazy
sequences: typed game events (round start, kills, weapon fire, ...) and
per-tick entity states (snapshots of networked game object properties). It
does not write demos, capture network traffic live, render anything, or
simulate game logic -- it only decodes what the server already sent.

The package is organized bottom-up:

  - csdemo (this package) -- the bit-level stream primitives (BitReader),
    the outer Container/Frame format, and the Variant value type every
    decoder eventually produces.
  - csdemo/wire -- minimal field access into the demo's embedded protobuf
    messages.
  - csdemo/sendtables -- the flattened-serializer schema builder, the
    primitive value decoders, and the quantised-float codec.
  - csdemo/fieldpath -- the Huffman-coded field-path engine that drives
    entity delta decoding.
  - csdemo/stringtable -- the incrementally-patched string tables, notably
    the instance-baseline table.
  - csdemo/entities -- entity/class bookkeeping and baseline reconstruction.
  - csdemo/gameevent -- the game-event descriptor-to-typed-record mapper.
  - csdemo/parser -- the packet dispatcher and the eager/lazy parse
    entrypoints most callers want.

# High-level usage

For most callers, csdemo/parser is the only package that needs to be
imported directly:

	import "github.com/csdemo-go/csdemo/parser"

	out, err := parser.ParseAll(data)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("map:", out.Header.MapName)
	fmt.Println("events:", len(out.Events))

# Low-level usage

To walk the container and frame structure directly:

	c, err := csdemo.ParseContainer(data)
	if err != nil {
		log.Fatal(err)
	}
	it := csdemo.NewFrameIter(c.Inner)
	for {
		f, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		payload, err := f.Decompress(nil)
		...
	}
*/
package csdemo
