/*

The lazy pass: two buffering iterators (events, entities) driven off the
same frame stream, producing the same sequences ParseAll collects eagerly
but without holding the whole demo's output in memory at once.

*/

package parser

import (
	"github.com/csdemo-go/csdemo"
	"github.com/csdemo-go/csdemo/entities"
	"github.com/csdemo-go/csdemo/gameevent"
	"github.com/csdemo-go/csdemo/wire"
)

// LazyParser drives a demo's frame stream on demand: each call to an
// iterator's Next advances just far enough to refill that iterator's
// buffer, running the same decode machine ParseAll drives eagerly. The
// one-shot accessors (FileHeader, FileInfo, PlayerInfo) re-scan the frame
// stream from the top on every call instead of caching (spec.md §6).
type LazyParser struct {
	inner []byte // The container's frame stream, for re-scanning accessors.

	it      *csdemo.FrameIter
	m       *machine
	scratch []byte
	done    bool

	eventBuf  []DemoEvent
	entityBuf []TickedState
}

// NewLazyParser returns a LazyParser over buf's container.
func NewLazyParser(buf []byte) (*LazyParser, error) {
	c, err := csdemo.ParseContainer(buf)
	if err != nil {
		return nil, err
	}
	return &LazyParser{
		inner: c.Inner,
		it:    csdemo.NewFrameIter(c.Inner),
		m:     newMachine(),
	}, nil
}

// scanFrames walks a fresh frame iterator over the whole stream, calling fn
// per decompressed frame until it reports done. Frame-parse errors end the
// scan as plain exhaustion; per-frame decompression failures skip the frame.
func (lp *LazyParser) scanFrames(fn func(cmd csdemo.DemoCommand, payload []byte) (done bool)) {
	it := csdemo.NewFrameIter(lp.inner)
	var scratch []byte
	for {
		frame, ok, err := it.Next()
		if err != nil || !ok {
			return
		}
		payload, err := frame.Decompress(scratch)
		if err != nil {
			continue
		}
		scratch = payload
		if fn(frame.Cmd, payload) {
			return
		}
	}
}

// FileHeader scans the frame stream for the file header and returns it, or
// nil if the stream has none. The result is not cached; every call re-scans.
func (lp *LazyParser) FileHeader() *wire.FileHeader {
	var header *wire.FileHeader
	lp.scanFrames(func(cmd csdemo.DemoCommand, payload []byte) bool {
		if cmd != csdemo.CmdFileHeader {
			return false
		}
		h, err := wire.UnmarshalFileHeader(payload)
		if err != nil {
			return true
		}
		header = h
		return true
	})
	return header
}

// FileInfo scans the frame stream for the trailing file-info block and
// returns it, or nil if the stream has none. Not cached.
func (lp *LazyParser) FileInfo() *wire.FileInfo {
	var info *wire.FileInfo
	lp.scanFrames(func(cmd csdemo.DemoCommand, payload []byte) bool {
		if cmd != csdemo.CmdFileInfo {
			return false
		}
		fi, err := wire.UnmarshalFileInfo(payload)
		if err != nil {
			return true
		}
		info = fi
		return true
	})
	return info
}

// PlayerInfo scans the frame stream for end-of-match player data and
// returns the assembled player table. Not cached.
func (lp *LazyParser) PlayerInfo() map[gameevent.UserId]Player {
	players := make(map[gameevent.UserId]Player)
	lp.scanFrames(func(cmd csdemo.DemoCommand, payload []byte) bool {
		switch cmd {
		case csdemo.CmdPacket, csdemo.CmdSignonPacket, csdemo.CmdFullPacket:
		default:
			return false
		}
		_ = dispatchPacket(payload, func(kind csdemo.NetMessageKind, body []byte) error {
			if kind != csdemo.MsgUMEndOfMatchAllPlayersData {
				return nil
			}
			data, err := wire.UnmarshalEndOfMatchAllPlayersData(body)
			if err != nil {
				return nil
			}
			for _, acct := range data.Players {
				players[gameevent.UserId(acct.UserID)] = Player{
					XUID:  acct.XUID,
					Name:  acct.Name,
					Team:  acct.Team,
					Color: acct.Color,
				}
			}
			return nil
		})
		return false
	})
	return players
}

// advance pulls and processes one more frame through the shared machine,
// buffering whatever it produced. It returns ok=false once the frame stream
// is exhausted.
func (lp *LazyParser) advance() (ok bool, err error) {
	if lp.done {
		return false, nil
	}
	frame, ok, err := lp.it.Next()
	if err != nil {
		// Mirrors ParseAll: a frame-parse error ends the stream as plain
		// exhaustion, not a propagated iterator error (spec.md §7).
		lp.done = true
		return false, nil
	}
	if !ok {
		lp.done = true
		return false, nil
	}

	payload, err := frame.Decompress(lp.scratch)
	if err != nil {
		logf("parser: %v", err)
		return true, nil // Per-frame decompression failure: skip, keep going.
	}
	lp.scratch = payload

	if err := lp.m.handleFrame(frame.Cmd, payload); err != nil {
		lp.done = true
		return false, err
	}

	lp.eventBuf = append(lp.eventBuf, lp.m.takeEvents()...)
	lp.entityBuf = append(lp.entityBuf, lp.m.takeStates()...)
	return true, nil
}

// EventsIter yields decoded demo events lazily.
type EventsIter struct{ lp *LazyParser }

// Events returns an iterator over this parser's demo events.
func (lp *LazyParser) Events() *EventsIter { return &EventsIter{lp: lp} }

// Next returns the next event, or ok=false once both the buffer and the
// underlying frame stream are exhausted.
func (it *EventsIter) Next() (DemoEvent, bool, error) {
	for len(it.lp.eventBuf) == 0 {
		ok, err := it.lp.advance()
		if err != nil {
			return DemoEvent{}, false, err
		}
		if !ok {
			return DemoEvent{}, false, nil
		}
	}
	ev := it.lp.eventBuf[0]
	it.lp.eventBuf = it.lp.eventBuf[1:]
	return ev, true, nil
}

// EntitiesIter yields (tick, entity state) pairs lazily.
type EntitiesIter struct{ lp *LazyParser }

// Entities returns an iterator over this parser's entity states.
func (lp *LazyParser) Entities() *EntitiesIter { return &EntitiesIter{lp: lp} }

// Next returns the next state and the tick it was decoded under, or
// ok=false once exhausted.
func (it *EntitiesIter) Next() (int32, entities.EntityState, bool, error) {
	for len(it.lp.entityBuf) == 0 {
		ok, err := it.lp.advance()
		if err != nil {
			return 0, entities.EntityState{}, false, err
		}
		if !ok {
			return 0, entities.EntityState{}, false, nil
		}
	}
	ts := it.lp.entityBuf[0]
	it.lp.entityBuf = it.lp.entityBuf[1:]
	return ts.Tick, ts.State, true, nil
}
