/*

The decode machine both passes drive: one frame in, zero or more demo events
and ticked entity states out. The eager pass drains it once per frame into a
FirstPassOutput; the lazy pass drains it into its iterator buffers.

*/

package parser

import (
	"log"
	"strconv"

	"github.com/csdemo-go/csdemo"
	"github.com/csdemo-go/csdemo/entities"
	"github.com/csdemo-go/csdemo/gameevent"
	"github.com/csdemo-go/csdemo/sendtables"
	"github.com/csdemo-go/csdemo/stringtable"
	"github.com/csdemo-go/csdemo/wire"
)

// Verbose gates the package's log output for recoverable per-unit
// conditions (game events with an unknown event id, out-of-order ticks,
// per-frame decompression failures, non-numeric baseline keys).
var Verbose = false

func logf(format string, args ...any) {
	if Verbose {
		log.Printf(format, args...)
	}
}

// baselineTableName is the string table whose entries key per-class
// instance baselines by decimal class-id.
const baselineTableName = "instancebaseline"

// TickedState is one entity state stamped with the tick it was decoded
// under.
type TickedState struct {
	Tick  int32
	State entities.EntityState
}

// machine is the per-demo decode state shared by the eager and lazy passes.
type machine struct {
	props       *sendtables.PropController
	serializers map[string]*sendtables.Serializer
	descriptors *gameevent.Descriptors
	ctx         *entities.Context
	tables      *stringtable.Registry

	header  *wire.FileHeader
	info    *wire.FileInfo
	players map[gameevent.UserId]Player

	currentTick int32

	// Per-frame production, drained by the driving pass.
	events []DemoEvent
	states []TickedState
}

func newMachine() *machine {
	props := sendtables.NewPropController()
	return &machine{
		props:       props,
		ctx:         entities.NewContext(props, nil),
		tables:      stringtable.NewRegistry(),
		players:     make(map[gameevent.UserId]Player),
		currentTick: -1,
	}
}

// handleFrame routes one decompressed frame payload. Produced events and
// entity states accumulate in m.events / m.states until the caller drains
// them.
func (m *machine) handleFrame(cmd csdemo.DemoCommand, payload []byte) error {
	switch cmd {
	case csdemo.CmdFileHeader:
		h, err := wire.UnmarshalFileHeader(payload)
		if err != nil {
			return err
		}
		m.header = h

	case csdemo.CmdFileInfo:
		fi, err := wire.UnmarshalFileInfo(payload)
		if err != nil {
			return err
		}
		m.info = fi

	case csdemo.CmdClassInfo:
		ci, err := wire.UnmarshalClassInfo(payload)
		if err != nil {
			return err
		}
		m.ctx.SetClasses(ci, m.serializers)

	case csdemo.CmdSendTables:
		fs, err := wire.UnmarshalFlattenedSerializer(payload)
		if err != nil {
			return err
		}
		b := sendtables.NewBuilder(fs, m.props)
		sers, err := b.BuildAll()
		if err != nil {
			return err
		}
		m.serializers = sers

	case csdemo.CmdStringTables:
		st, err := wire.UnmarshalDemoStringTables(payload)
		if err != nil {
			return err
		}
		for _, snap := range st.Tables {
			t := m.tables.ApplySnapshot(snap)
			m.syncBaselines(t)
		}

	case csdemo.CmdPacket, csdemo.CmdSignonPacket, csdemo.CmdFullPacket:
		return dispatchPacket(payload, m.handleNetMessage)

	default:
		// Every other demo command (sync-tick, console commands, user
		// commands, save games, ...) carries nothing the decoder surfaces.
	}
	return nil
}

func (m *machine) handleNetMessage(kind csdemo.NetMessageKind, body []byte) error {
	switch kind {
	case csdemo.MsgNetTick:
		nt, err := wire.UnmarshalNetTick(body)
		if err != nil {
			return err
		}
		tick := int32(nt.Tick)
		if tick < m.currentTick {
			// Ticks are non-decreasing on well-formed demos; an ill-formed
			// one gets a soft warning, not an abort.
			logf("parser: tick went backwards: %d -> %d", m.currentTick, tick)
		}
		m.currentTick = tick
		m.events = append(m.events, DemoEvent{Kind: EventTick, Tick: tick})

	case csdemo.MsgSvcServerInfo:
		si, err := wire.UnmarshalServerInfo(body)
		if err != nil {
			return err
		}
		m.events = append(m.events, DemoEvent{Kind: EventServerInfo, Tick: m.currentTick, ServerInfo: si})

	case csdemo.MsgSvcCreateStringTable:
		msg, err := wire.UnmarshalCreateStringTable(body)
		if err != nil {
			return err
		}
		t, err := m.tables.Create(msg)
		if err != nil {
			return err
		}
		m.syncBaselines(t)

	case csdemo.MsgSvcUpdateStringTable:
		msg, err := wire.UnmarshalUpdateStringTable(body)
		if err != nil {
			return err
		}
		t, err := m.tables.Update(msg)
		if err != nil {
			return err
		}
		m.syncBaselines(t)

	case csdemo.MsgSvcPacketEntities:
		pe, err := wire.UnmarshalPacketEntities(body)
		if err != nil {
			return err
		}
		states, err := m.ctx.DecodePacketEntities(pe)
		if err != nil {
			return err
		}
		for _, st := range states {
			m.states = append(m.states, TickedState{Tick: m.currentTick, State: st})
		}

	case csdemo.MsgSvcGameEventList, csdemo.MsgGEGameEventList:
		list, err := wire.UnmarshalGameEventList(body)
		if err != nil {
			return err
		}
		m.descriptors = gameevent.NewDescriptors(list)

	case csdemo.MsgSvcGameEvent, csdemo.MsgGEGameEvent:
		if m.descriptors == nil {
			return nil
		}
		msg, err := wire.UnmarshalGameEvent(body)
		if err != nil {
			return err
		}
		ev, err := m.descriptors.Decode(msg)
		if err != nil {
			logf("parser: %v", err)
			return nil
		}
		m.events = append(m.events, DemoEvent{Kind: EventGameEvent, Tick: m.currentTick, GameEvent: &ev})

	case csdemo.MsgUMServerRankUpdate:
		ru, err := wire.UnmarshalServerRankUpdate(body)
		if err != nil {
			return err
		}
		m.events = append(m.events, DemoEvent{Kind: EventRankUpdate, Tick: m.currentTick, RankUpdate: ru})

	case csdemo.MsgUMRankReveal:
		rr, err := wire.UnmarshalRankReveal(body)
		if err != nil {
			return err
		}
		m.events = append(m.events, DemoEvent{Kind: EventRankReveal, Tick: m.currentTick, RankReveal: rr})

	case csdemo.MsgUMEndOfMatchAllPlayersData:
		data, err := wire.UnmarshalEndOfMatchAllPlayersData(body)
		if err != nil {
			return err
		}
		for _, acct := range data.Players {
			m.players[gameevent.UserId(acct.UserID)] = Player{
				XUID:  acct.XUID,
				Name:  acct.Name,
				Team:  acct.Team,
				Color: acct.Color,
			}
		}

	default:
		// Unknown / uninterpreted net-message kinds are skipped, matching
		// NetMessageKind's open-set contract.
	}
	return nil
}

// syncBaselines pushes a just-touched instancebaseline table's entries into
// the entity context, keyed by the decimal class-id each entry's key spells.
func (m *machine) syncBaselines(t *stringtable.Table) {
	if t.Name != baselineTableName {
		return
	}
	for _, e := range t.Entries() {
		if e.Value == nil {
			continue
		}
		classID, err := strconv.Atoi(e.Key)
		if err != nil {
			logf("parser: non-numeric %s key %q", baselineTableName, e.Key)
			continue
		}
		m.ctx.SetBaseline(int32(classID), e.Value)
	}
}

// takeEvents returns and clears the machine's buffered events.
func (m *machine) takeEvents() []DemoEvent {
	out := m.events
	m.events = nil
	return out
}

// takeStates returns and clears the machine's buffered entity states.
func (m *machine) takeStates() []TickedState {
	out := m.states
	m.states = nil
	return out
}

// playerInfo snapshots the player table.
func (m *machine) playerInfo() map[gameevent.UserId]Player {
	out := make(map[gameevent.UserId]Player, len(m.players))
	for id, p := range m.players {
		out[id] = p
	}
	return out
}
