/*

The eager pass: walks an entire demo in one go and collects everything into
a FirstPassOutput (spec.md §4.11).

*/

package parser

import (
	"errors"
	"fmt"

	"github.com/csdemo-go/csdemo"
	"github.com/csdemo-go/csdemo/entities"
	"github.com/csdemo-go/csdemo/gameevent"
	"github.com/csdemo-go/csdemo/wire"
)

// First-pass assembly errors: the stream ended before producing the frames
// a complete demo always carries.
var (
	ErrMissingFileHeader = errors.New("parser: demo ended without a file header")
	ErrMissingFileInfo   = errors.New("parser: demo ended without a file info block")
	ErrNoDataFrame       = errors.New("parser: demo carried no frames at all")
)

// FirstPassError wraps the demo-command and underlying cause of a failure
// during the eager pass, so callers can tell a malformed schema from a
// malformed entity update.
type FirstPassError struct {
	Cmd   csdemo.DemoCommand
	Cause error
}

func (e *FirstPassError) Error() string {
	return fmt.Sprintf("parser: first pass at %s: %v", e.Cmd, e.Cause)
}
func (e *FirstPassError) Unwrap() error { return e.Cause }

// DemoEventKind selects which payload of a DemoEvent is meaningful.
type DemoEventKind uint8

// Demo event kinds.
const (
	EventGameEvent DemoEventKind = iota
	EventTick
	EventServerInfo
	EventRankUpdate
	EventRankReveal
)

// DemoEvent is one entry of the demo's event stream: a decoded game event,
// a tick advance, or one of the typed server/user messages the dispatcher
// surfaces directly (spec.md §4.10). Tick is the tick the event was decoded
// under (-1 before the first net-tick message).
type DemoEvent struct {
	Kind DemoEventKind
	Tick int32

	GameEvent  *gameevent.Event       // EventGameEvent
	ServerInfo *wire.ServerInfo       // EventServerInfo
	RankUpdate *wire.ServerRankUpdate // EventRankUpdate
	RankReveal *wire.RankReveal       // EventRankReveal
}

// Player is one connected player's identity, keyed by user-id in the
// player table.
type Player struct {
	XUID  uint64
	Name  string
	Team  int32
	Color int32
}

// TickEntities groups every entity state decoded under one tick.
type TickEntities struct {
	Tick   int32
	States []entities.EntityState
}

// EntityTickList is the eager pass's per-tick grouping of entity states, in
// tick order.
type EntityTickList []TickEntities

// StateCount returns the total number of entity states across all ticks.
func (l EntityTickList) StateCount() int {
	n := 0
	for _, te := range l {
		n += len(te.States)
	}
	return n
}

// append adds one ticked state, starting a new bucket whenever the tick
// advances past the current one.
func (l EntityTickList) append(ts TickedState) EntityTickList {
	if n := len(l); n > 0 && l[n-1].Tick == ts.Tick {
		l[n-1].States = append(l[n-1].States, ts.State)
		return l
	}
	return append(l, TickEntities{Tick: ts.Tick, States: []entities.EntityState{ts.State}})
}

// FirstPassOutput is everything ParseAll collects from one demo.
type FirstPassOutput struct {
	Header       *wire.FileHeader
	Info         *wire.FileInfo
	Events       []DemoEvent
	PlayerInfo   map[gameevent.UserId]Player
	EntityStates EntityTickList
}

// ParseAll runs the eager pass over the entire demo stored in buf and
// returns everything it collected. The first packet-level error aborts the
// pass; a frame-parse error merely ends it (spec.md §7).
func ParseAll(buf []byte) (*FirstPassOutput, error) {
	c, err := csdemo.ParseContainer(buf)
	if err != nil {
		return nil, err
	}

	m := newMachine()
	it := csdemo.NewFrameIter(c.Inner)
	out := &FirstPassOutput{}
	var scratch []byte
	frames := 0

	for {
		frame, ok, err := it.Next()
		if err != nil {
			// A frame-parse error ends the frame iterator; downstream sees
			// plain exhaustion rather than a propagated failure, so the
			// eager pass returns whatever it collected so far instead of
			// an error (spec.md §7).
			break
		}
		if !ok {
			break
		}
		frames++

		payload, err := frame.Decompress(scratch)
		if err != nil {
			logf("parser: %v", err)
			continue // Per-frame decompression failures are non-fatal (spec.md §4.2).
		}
		scratch = payload

		if err := m.handleFrame(frame.Cmd, payload); err != nil {
			return nil, &FirstPassError{Cmd: frame.Cmd, Cause: err}
		}

		out.Events = append(out.Events, m.takeEvents()...)
		for _, ts := range m.takeStates() {
			out.EntityStates = out.EntityStates.append(ts)
		}
	}

	if frames == 0 {
		return nil, ErrNoDataFrame
	}
	if m.header == nil {
		return nil, ErrMissingFileHeader
	}
	if m.info == nil {
		return nil, ErrMissingFileInfo
	}

	out.Header = m.header
	out.Info = m.info
	out.PlayerInfo = m.playerInfo()
	return out, nil
}
