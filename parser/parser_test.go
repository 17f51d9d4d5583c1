package parser

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csdemo-go/csdemo"
	"github.com/csdemo-go/csdemo/gameevent"
)

// appendVarint appends a base-128 varint the same way protowire (and our
// own BitReader.ReadVarUint32) expects it.
func appendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func appendTag(b []byte, field int, wireType int) []byte {
	return appendVarint(b, uint64(field)<<3|uint64(wireType))
}

func appendString(b []byte, field int, s string) []byte {
	b = appendTag(b, field, 2)
	b = appendVarint(b, uint64(len(s)))
	return append(b, s...)
}

func appendBytes(b []byte, field int, v []byte) []byte {
	b = appendTag(b, field, 2)
	b = appendVarint(b, uint64(len(v)))
	return append(b, v...)
}

func appendVarintField(b []byte, field int, v uint64) []byte {
	b = appendTag(b, field, 0)
	return appendVarint(b, v)
}

// buildFileHeader returns a minimal CDemoFileHeader protobuf payload
// carrying just a map name (field 5).
func buildFileHeader(mapName string) []byte {
	var b []byte
	b = appendString(b, 5, mapName)
	return b
}

// buildFileInfo returns a minimal CDemoFileInfo protobuf payload carrying
// just a tick count (field 2).
func buildFileInfo(ticks uint64) []byte {
	var b []byte
	b = appendVarintField(b, 2, ticks)
	return b
}

// bitWriter packs values LSB-first, the order dispatchPacket's BitReader
// consumes them in.
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

func (w *bitWriter) writeUBitVar(v uint32) {
	switch {
	case v < 1<<4:
		w.write(v, 6)
	case v < 1<<8:
		w.write(0x10|(v&0xf), 6)
		w.write(v>>4, 4)
	case v < 1<<12:
		w.write(0x20|(v&0xf), 6)
		w.write(v>>4, 8)
	default:
		w.write(0x30|(v&0xf), 6)
		w.write(v>>4, 28)
	}
}

func (w *bitWriter) writeVarint(v uint64) {
	for v >= 0x80 {
		w.write(uint32(v)|0x80, 8)
		v >>= 7
	}
	w.write(uint32(v), 8)
}

func (w *bitWriter) writeBytes(b []byte) {
	for _, c := range b {
		w.write(uint32(c), 8)
	}
}

func (w *bitWriter) bytes() []byte {
	if w.bits > 0 {
		w.buf = append(w.buf, byte(w.cur))
		w.cur, w.bits = 0, 0
	}
	return w.buf
}

// buildPacket assembles a Packet frame payload out of (message-id, body)
// pairs: u-bit-var id, varint size, size bytes, repeated.
func buildPacket(msgs ...struct {
	id   uint32
	body []byte
}) []byte {
	var w bitWriter
	for _, m := range msgs {
		w.writeUBitVar(m.id)
		w.writeVarint(uint64(len(m.body)))
		w.writeBytes(m.body)
	}
	return w.bytes()
}

func packetMsg(id uint32, body []byte) struct {
	id   uint32
	body []byte
} {
	return struct {
		id   uint32
		body []byte
	}{id: id, body: body}
}

// appendFrame appends one (cmd varint, tick varint, size varint, payload)
// frame to buf, per spec.md §3/§6.
func appendFrame(buf []byte, cmd csdemo.DemoCommand, tick uint32, payload []byte) []byte {
	buf = appendVarint(buf, uint64(cmd))
	buf = appendVarint(buf, uint64(tick))
	buf = appendVarint(buf, uint64(len(payload)))
	return append(buf, payload...)
}

// buildDemo wraps inner frame bytes in the 16-byte container header (spec.md
// §3/§6: 8-byte magic, u32 LE declared length, 4 reserved bytes).
func buildDemo(inner []byte) []byte {
	buf := append([]byte(nil), csdemo.Magic[:]...)
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(inner)-2))
	buf = append(buf, lenBuf...)
	buf = append(buf, 0, 0, 0, 0)
	return append(buf, inner...)
}

func wrapFrames(frames ...[]byte) []byte {
	var inner []byte
	for _, f := range frames {
		inner = append(inner, f...)
	}
	inner = append(inner, 0, 0) // pad to satisfy declared-length+2.
	return buildDemo(inner)
}

func minimalDemoBytes() []byte {
	return wrapFrames(
		appendFrame(nil, csdemo.CmdFileHeader, 0, buildFileHeader("de_ancient")),
		appendFrame(nil, csdemo.CmdFileInfo, 100, buildFileInfo(64000)),
	)
}

func TestParseAllReadsHeaderAndInfo(t *testing.T) {
	out, err := ParseAll(minimalDemoBytes())
	require.NoError(t, err)
	require.NotNil(t, out.Header)
	require.Equal(t, "de_ancient", out.Header.MapName)
	require.NotNil(t, out.Info)
	require.EqualValues(t, 64000, out.Info.PlaybackTicks)
	require.Empty(t, out.Events)
	require.Empty(t, out.EntityStates)
}

func TestParseAllRequiresHeaderAndInfo(t *testing.T) {
	_, err := ParseAll(wrapFrames())
	require.ErrorIs(t, err, ErrNoDataFrame)

	_, err = ParseAll(wrapFrames(
		appendFrame(nil, csdemo.CmdFileInfo, 0, buildFileInfo(1)),
	))
	require.ErrorIs(t, err, ErrMissingFileHeader)

	_, err = ParseAll(wrapFrames(
		appendFrame(nil, csdemo.CmdFileHeader, 0, buildFileHeader("de_mirage")),
	))
	require.ErrorIs(t, err, ErrMissingFileInfo)
}

func TestParseAllTruncatedTailEndsAsEOFNotError(t *testing.T) {
	// A frame-parse failure (here: a trailing frame header whose command code
	// maps to nothing and which is cut off before its size varint) must
	// surface as incomplete output, not a top-level error (spec.md §7).
	var inner []byte
	inner = appendFrame(inner, csdemo.CmdFileHeader, 0, buildFileHeader("de_mirage"))
	inner = appendFrame(inner, csdemo.CmdFileInfo, 0, buildFileInfo(1))
	inner = append(inner, 0xfe, 0x00, 0x00) // unknown demo-command code.

	out, err := ParseAll(buildDemo(inner))
	require.NoError(t, err)
	require.NotNil(t, out.Header)
	require.Equal(t, "de_mirage", out.Header.MapName)
}

func TestTickMessagesEmitTickEvents(t *testing.T) {
	tick := func(v uint64) []byte { return appendVarintField(nil, 1, v) }

	demo := wrapFrames(
		appendFrame(nil, csdemo.CmdFileHeader, 0, buildFileHeader("de_ancient")),
		appendFrame(nil, csdemo.CmdPacket, 1, buildPacket(
			packetMsg(4, tick(100)),
			packetMsg(4, tick(250)),
		)),
		appendFrame(nil, csdemo.CmdFileInfo, 250, buildFileInfo(250)),
	)

	out, err := ParseAll(demo)
	require.NoError(t, err)
	require.Len(t, out.Events, 2)
	require.Equal(t, EventTick, out.Events[0].Kind)
	require.EqualValues(t, 100, out.Events[0].Tick)
	require.Equal(t, EventTick, out.Events[1].Kind)
	require.EqualValues(t, 250, out.Events[1].Tick)
}

func TestEndOfMatchPlayersPopulateTable(t *testing.T) {
	var player []byte
	player = appendVarintField(player, 1, 3)          // user-id
	player = appendVarintField(player, 2, 7656119800) // xuid
	player = appendString(player, 3, "player-one")
	player = appendVarintField(player, 4, 2) // team
	player = appendVarintField(player, 5, 1) // color
	body := appendBytes(nil, 1, player)

	demo := wrapFrames(
		appendFrame(nil, csdemo.CmdFileHeader, 0, buildFileHeader("de_ancient")),
		appendFrame(nil, csdemo.CmdPacket, 1, buildPacket(packetMsg(369, body))),
		appendFrame(nil, csdemo.CmdFileInfo, 1, buildFileInfo(1)),
	)

	out, err := ParseAll(demo)
	require.NoError(t, err)
	require.Equal(t, map[gameevent.UserId]Player{
		3: {XUID: 7656119800, Name: "player-one", Team: 2, Color: 1},
	}, out.PlayerInfo)
}

func TestServerRankUpdateSurfacesAsTypedEvent(t *testing.T) {
	var update []byte
	update = appendVarintField(update, 1, 42) // account-id
	update = appendVarintField(update, 2, 9)  // rank-old
	update = appendVarintField(update, 3, 10) // rank-new
	body := appendBytes(nil, 1, update)

	demo := wrapFrames(
		appendFrame(nil, csdemo.CmdFileHeader, 0, buildFileHeader("de_ancient")),
		appendFrame(nil, csdemo.CmdPacket, 1, buildPacket(packetMsg(351, body))),
		appendFrame(nil, csdemo.CmdFileInfo, 1, buildFileInfo(1)),
	)

	out, err := ParseAll(demo)
	require.NoError(t, err)
	require.Len(t, out.Events, 1)
	ev := out.Events[0]
	require.Equal(t, EventRankUpdate, ev.Kind)
	require.Len(t, ev.RankUpdate.Updates, 1)
	require.EqualValues(t, 42, ev.RankUpdate.Updates[0].AccountID)
	require.EqualValues(t, 10, ev.RankUpdate.Updates[0].RankNew)
}

// buildBaselineStringData packs a single (class-id key, baseline bytes)
// entry in the bit-packed string-table entry encoding.
func buildBaselineStringData(key string, value []byte) []byte {
	var w bitWriter
	w.write(1, 1) // index = previous + 1
	w.write(1, 1) // key present
	w.write(0, 1) // no history reference
	for i := 0; i < len(key); i++ {
		w.write(uint32(key[i]), 8)
	}
	w.write(0, 8)
	w.write(1, 1) // value present
	w.write(uint32(len(value)), 17)
	w.writeBytes(value)
	return w.bytes()
}

func TestInstanceBaselineTableFeedsEntityBaselines(t *testing.T) {
	baseline := []byte{0xaa, 0xbb, 0xcc}
	var create []byte
	create = appendString(create, 1, "instancebaseline")
	create = appendVarintField(create, 2, 1) // num-entries
	create = appendBytes(create, 7, buildBaselineStringData("54", baseline))

	m := newMachine()
	require.NoError(t, m.handleNetMessage(csdemo.MsgSvcCreateStringTable, create))

	got, ok := m.ctx.Baseline(54)
	require.True(t, ok)
	require.Equal(t, baseline, got)
}

func TestLazyParserMatchesEagerPass(t *testing.T) {
	tickMsg := appendVarintField(nil, 1, 100)
	demo := wrapFrames(
		appendFrame(nil, csdemo.CmdFileHeader, 0, buildFileHeader("de_ancient")),
		appendFrame(nil, csdemo.CmdPacket, 1, buildPacket(packetMsg(4, tickMsg))),
		appendFrame(nil, csdemo.CmdFileInfo, 100, buildFileInfo(64000)),
	)

	eager, err := ParseAll(demo)
	require.NoError(t, err)

	lazy, err := NewLazyParser(demo)
	require.NoError(t, err)

	var lazyEvents []DemoEvent
	ev := lazy.Events()
	for {
		e, ok, err := ev.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		lazyEvents = append(lazyEvents, e)
	}
	require.Equal(t, eager.Events, lazyEvents)

	var lazyStates EntityTickList
	en := lazy.Entities()
	for {
		tick, st, ok, err := en.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		lazyStates = lazyStates.append(TickedState{Tick: tick, State: st})
	}
	require.Equal(t, eager.EntityStates, lazyStates)

	require.Equal(t, eager.Header, lazy.FileHeader())
	require.Equal(t, eager.Info, lazy.FileInfo())
	require.Equal(t, eager.PlayerInfo, lazy.PlayerInfo())
}

func TestLazyAccessorsDoNotAdvanceTheIterators(t *testing.T) {
	demo := wrapFrames(
		appendFrame(nil, csdemo.CmdFileHeader, 0, buildFileHeader("de_ancient")),
		appendFrame(nil, csdemo.CmdPacket, 1, buildPacket(packetMsg(4, appendVarintField(nil, 1, 100)))),
		appendFrame(nil, csdemo.CmdFileInfo, 100, buildFileInfo(64000)),
	)
	lazy, err := NewLazyParser(demo)
	require.NoError(t, err)

	// The re-scanning accessors must not consume the shared frame cursor.
	require.NotNil(t, lazy.FileHeader())
	require.NotNil(t, lazy.FileInfo())
	require.NotNil(t, lazy.FileHeader()) // not cached; scans again.

	// The tick event is still there for the events iterator.
	ev := lazy.Events()
	_, ok, err := ev.Next()
	require.NoError(t, err)
	require.True(t, ok)
}
