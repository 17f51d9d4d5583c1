/*

The network-message enum: numeric ids inside a Packet/SignonPacket/FullPacket
frame mapped to symbolic net-, svc-, game-event-, user-message-, and
temp-entity- categories.

*/

package csdemo

// NetMessageKind is the symbolic kind of one message inside a packet frame.
// Unlike DemoCommand this is an open set: unknown numeric ids are skipped by
// the packet dispatcher rather than treated as fatal (spec.md §4.10).
type NetMessageKind int

// Known network message kinds, grouped by the protocol family that defines
// their numeric id space.
const (
	MsgUnknown NetMessageKind = iota

	// net_ (transport-level) messages.
	MsgNetTick
	MsgNetStringCmd
	MsgNetSetConVar
	MsgNetSignonState

	// svc_ (server→client) messages.
	MsgSvcServerInfo
	MsgSvcClassInfo
	MsgSvcCreateStringTable
	MsgSvcUpdateStringTable
	MsgSvcPacketEntities
	MsgSvcGameEvent
	MsgSvcGameEventList

	// CS_UM_ (user) messages.
	MsgUMSayText2
	MsgUMServerRankUpdate
	MsgUMRankReveal
	MsgUMEndOfMatchAllPlayersData

	// GE_ wrapper messages carrying the game-event descriptor list / instances
	// (the demo format nests these inside a generic svc_ carrier, but the
	// dispatcher treats them as their own kind per spec.md §4.10).
	MsgGEGameEventList
	MsgGEGameEvent

	// TE_ temp-entity messages (accepted, not interpreted in-core).
	MsgTempEntities
)

// Numeric ids as they appear on the wire, mapped to their symbolic kind.
// Unknown ids are simply absent from this map. The Source 1 legacy
// game-event carrier ids (25, 30) are kept alongside the GE_ wrapper ids
// (205, 207) because demos from different builds multiplex either.
var netMessageIds = map[int32]NetMessageKind{
	4:   MsgNetTick,
	5:   MsgNetStringCmd,
	6:   MsgNetSetConVar,
	7:   MsgNetSignonState,
	25:  MsgSvcGameEvent,
	30:  MsgSvcGameEventList,
	40:  MsgSvcServerInfo,
	42:  MsgSvcClassInfo,
	44:  MsgSvcCreateStringTable,
	45:  MsgSvcUpdateStringTable,
	55:  MsgSvcPacketEntities,
	205: MsgGEGameEventList,
	207: MsgGEGameEvent,
	118: MsgUMSayText2,
	351: MsgUMServerRankUpdate,
	363: MsgUMRankReveal,
	369: MsgUMEndOfMatchAllPlayersData,
}

// NetMessageKindOf maps a numeric message-type id to its symbolic kind.
// MsgUnknown is returned for ids this decoder does not recognize; per
// spec.md §4.10 that is never a fatal condition, only a skip.
func NetMessageKindOf(id int32) NetMessageKind {
	if k, ok := netMessageIds[id]; ok {
		return k
	}
	return MsgUnknown
}
