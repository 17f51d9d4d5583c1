package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// FileHeader is the decoded CDemoFileHeader message.
type FileHeader struct {
	DemoFileStamp   string
	NetworkProtocol int32
	ServerName      string
	ClientName      string
	MapName         string
	GameDirectory   string
	DemoVersionName string
	BuildNum        uint32
}

// UnmarshalFileHeader decodes a CDemoFileHeader message.
func UnmarshalFileHeader(b []byte) (*FileHeader, error) {
	var h FileHeader
	err := walkFields("CDemoFileHeader", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeString(b)
			h.DemoFileStamp = v
			return n
		case 2:
			v, n := consumeVarint(b)
			h.NetworkProtocol = int32(v)
			return n
		case 3:
			v, n := consumeString(b)
			h.ServerName = v
			return n
		case 4:
			v, n := consumeString(b)
			h.ClientName = v
			return n
		case 5:
			v, n := consumeString(b)
			h.MapName = v
			return n
		case 6:
			v, n := consumeString(b)
			h.GameDirectory = v
			return n
		case 11:
			v, n := consumeString(b)
			h.DemoVersionName = v
			return n
		case 13:
			v, n := consumeVarint(b)
			h.BuildNum = uint32(v)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &h, err
}

// FileInfo is the decoded CDemoFileInfo message (the trailing file-info
// block).
type FileInfo struct {
	PlaybackTime   float32
	PlaybackTicks  int32
	PlaybackFrames int32
}

// UnmarshalFileInfo decodes a CDemoFileInfo message.
func UnmarshalFileInfo(b []byte) (*FileInfo, error) {
	var fi FileInfo
	err := walkFields("CDemoFileInfo", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := protowire.ConsumeFixed32(b)
			fi.PlaybackTime = decodeFloat32(v)
			return n
		case 2:
			v, n := consumeVarint(b)
			fi.PlaybackTicks = int32(v)
			return n
		case 3:
			v, n := consumeVarint(b)
			fi.PlaybackFrames = int32(v)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &fi, err
}

// ClassInfoEntry is one class-id/name/table-name triple.
type ClassInfoEntry struct {
	ClassID   int32
	Name      string
	TableName string
}

// ClassInfo is the decoded CDemoClassInfo message.
type ClassInfo struct {
	Classes []ClassInfoEntry
}

// UnmarshalClassInfo decodes a CDemoClassInfo message.
func UnmarshalClassInfo(b []byte) (*ClassInfo, error) {
	var ci ClassInfo
	err := walkFields("CDemoClassInfo", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			entry, err := unmarshalClassInfoEntry(v)
			if err != nil {
				return -1
			}
			ci.Classes = append(ci.Classes, entry)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &ci, err
}

func unmarshalClassInfoEntry(b []byte) (ClassInfoEntry, error) {
	var e ClassInfoEntry
	err := walkFields("class_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			e.ClassID = int32(v)
			return n
		case 2:
			v, n := consumeString(b)
			e.Name = v
			return n
		case 3:
			v, n := consumeString(b)
			e.TableName = v
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return e, err
}

// FlattenedSerializerField is one field descriptor in the flattened
// serializer's field pool.
type FlattenedSerializerField struct {
	VarTypeSym          int32
	VarNameSym          int32
	BitCount            int32
	LowValue            float32
	HighValue           float32
	EncodeFlags         int32
	FieldSerializerName int32 // Index into symbols, -1 if absent.
	FieldSerializerVer  int32
	SendNodeSym         int32
	VarEncoderSym       int32 // Index into symbols, -1 if absent.
}

// FlattenedSerializerDef is one named serializer referencing fields by index.
type FlattenedSerializerDef struct {
	NameSym     int32
	Version     int32
	FieldsIndex []int32
}

// FlattenedSerializer is the decoded CSVCMsg_FlattenedSerializer message: a
// symbol pool, a pool of field descriptors, and a list of named serializers.
type FlattenedSerializer struct {
	Symbols     []string
	Fields      []FlattenedSerializerField
	Serializers []FlattenedSerializerDef
}

// Symbol resolves a symbol index, returning "" for an absent (-1) index.
func (fs *FlattenedSerializer) Symbol(idx int32) string {
	if idx < 0 || int(idx) >= len(fs.Symbols) {
		return ""
	}
	return fs.Symbols[idx]
}

// UnmarshalFlattenedSerializer decodes a CSVCMsg_FlattenedSerializer message.
func UnmarshalFlattenedSerializer(b []byte) (*FlattenedSerializer, error) {
	fs := &FlattenedSerializer{}
	err := walkFields("CSVCMsg_FlattenedSerializer", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeString(b)
			fs.Symbols = append(fs.Symbols, v)
			return n
		case 2:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			f, err := unmarshalSerializerField(v)
			if err != nil {
				return -1
			}
			fs.Fields = append(fs.Fields, f)
			return n
		case 3:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			def, err := unmarshalSerializerDef(v)
			if err != nil {
				return -1
			}
			fs.Serializers = append(fs.Serializers, def)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return fs, err
}

func unmarshalSerializerField(b []byte) (FlattenedSerializerField, error) {
	f := FlattenedSerializerField{FieldSerializerName: -1, VarEncoderSym: -1}
	err := walkFields("ProtoFlattenedSerializerField_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			f.VarTypeSym = int32(v)
			return n
		case 2:
			v, n := consumeVarint(b)
			f.VarNameSym = int32(v)
			return n
		case 3:
			v, n := consumeVarint(b)
			f.BitCount = int32(v)
			return n
		case 4:
			v, n := protowire.ConsumeFixed32(b)
			f.LowValue = decodeFloat32(v)
			return n
		case 5:
			v, n := protowire.ConsumeFixed32(b)
			f.HighValue = decodeFloat32(v)
			return n
		case 6:
			v, n := consumeVarint(b)
			f.EncodeFlags = int32(v)
			return n
		case 7:
			v, n := consumeVarint(b)
			f.FieldSerializerName = int32(v)
			return n
		case 8:
			v, n := consumeVarint(b)
			f.FieldSerializerVer = int32(v)
			return n
		case 9:
			v, n := consumeVarint(b)
			f.SendNodeSym = int32(v)
			return n
		case 10:
			v, n := consumeVarint(b)
			f.VarEncoderSym = int32(v)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return f, err
}

func unmarshalSerializerDef(b []byte) (FlattenedSerializerDef, error) {
	var d FlattenedSerializerDef
	err := walkFields("ProtoFlattenedSerializer_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			d.NameSym = int32(v)
			return n
		case 2:
			v, n := consumeVarint(b)
			d.Version = int32(v)
			return n
		case 3:
			v, n := consumeVarint(b)
			d.FieldsIndex = append(d.FieldsIndex, int32(v))
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return d, err
}

// PacketEntities is the decoded CSVCMsg_PacketEntities message.
type PacketEntities struct {
	UpdatedEntries int32
	IsDelta        bool
	UpdateBaseline bool
	HasPVSVisBits  int32
	EntityData     []byte
}

// UnmarshalPacketEntities decodes a CSVCMsg_PacketEntities message.
func UnmarshalPacketEntities(b []byte) (*PacketEntities, error) {
	var pe PacketEntities
	err := walkFields("CSVCMsg_PacketEntities", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 2:
			v, n := consumeVarint(b)
			pe.UpdatedEntries = int32(v)
			return n
		case 3:
			v, n := consumeVarint(b)
			pe.IsDelta = v != 0
			return n
		case 4:
			v, n := consumeVarint(b)
			pe.UpdateBaseline = v != 0
			return n
		case 7:
			v, n := consumeBytes(b)
			pe.EntityData = v
			return n
		case 9:
			v, n := consumeVarint(b)
			pe.HasPVSVisBits = int32(v)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &pe, err
}

// GameEventKeyDescriptor is one named, typed key in a game-event descriptor.
type GameEventKeyDescriptor struct {
	Type int32
	Name string
}

// GameEventDescriptor describes the shape of one kind of game event.
type GameEventDescriptor struct {
	EventID int32
	Name    string
	Keys    []GameEventKeyDescriptor
}

// GameEventListMsg is the decoded descriptor-list message.
type GameEventListMsg struct {
	Descriptors []GameEventDescriptor
}

// UnmarshalGameEventList decodes a CMsgSource1LegacyGameEventList message.
func UnmarshalGameEventList(b []byte) (*GameEventListMsg, error) {
	var m GameEventListMsg
	err := walkFields("CMsgSource1LegacyGameEventList", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			d, err := unmarshalGameEventDescriptor(v)
			if err != nil {
				return -1
			}
			m.Descriptors = append(m.Descriptors, d)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &m, err
}

func unmarshalGameEventDescriptor(b []byte) (GameEventDescriptor, error) {
	var d GameEventDescriptor
	err := walkFields("descriptor_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			d.EventID = int32(v)
			return n
		case 2:
			v, n := consumeString(b)
			d.Name = v
			return n
		case 3:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			k, err := unmarshalGameEventKeyDescriptor(v)
			if err != nil {
				return -1
			}
			d.Keys = append(d.Keys, k)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return d, err
}

func unmarshalGameEventKeyDescriptor(b []byte) (GameEventKeyDescriptor, error) {
	var k GameEventKeyDescriptor
	err := walkFields("key_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			k.Type = int32(v)
			return n
		case 2:
			v, n := consumeString(b)
			k.Name = v
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return k, err
}

// GameEventKeyValue is one positional, typed value in a game-event instance.
// Exactly one of the value fields is meaningful, selected by Type (spec.md
// §4.9: types 1..=9 decode into a RawValue sum).
type GameEventKeyValue struct {
	Type       int32
	ValString  string
	ValFloat   float32
	ValLong    int32
	ValShort   int16
	ValByte    uint8
	ValBool    bool
	ValUint64  uint64
	ValWString string
}

// GameEventMsg is one decoded game-event instance.
type GameEventMsg struct {
	EventID int32
	Keys    []GameEventKeyValue
}

// UnmarshalGameEvent decodes a CMsgSource1LegacyGameEvent message.
func UnmarshalGameEvent(b []byte) (*GameEventMsg, error) {
	var m GameEventMsg
	err := walkFields("CMsgSource1LegacyGameEvent", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			m.EventID = int32(v)
			return n
		case 2:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			k, err := unmarshalGameEventKeyValue(v)
			if err != nil {
				return -1
			}
			m.Keys = append(m.Keys, k)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &m, err
}

func unmarshalGameEventKeyValue(b []byte) (GameEventKeyValue, error) {
	var k GameEventKeyValue
	err := walkFields("key_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			k.Type = int32(v)
			return n
		case 2:
			v, n := consumeString(b)
			k.ValString = v
			return n
		case 3:
			v, n := protowire.ConsumeFixed32(b)
			k.ValFloat = decodeFloat32(v)
			return n
		case 4:
			v, n := consumeVarint(b)
			k.ValLong = int32(v)
			return n
		case 5:
			v, n := consumeVarint(b)
			k.ValShort = int16(v)
			return n
		case 6:
			v, n := consumeVarint(b)
			k.ValByte = uint8(v)
			return n
		case 7:
			v, n := consumeVarint(b)
			k.ValBool = v != 0
			return n
		case 8:
			v, n := consumeVarint(b)
			k.ValUint64 = v
			return n
		case 9:
			v, n := consumeString(b)
			k.ValWString = v
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return k, err
}

// ServerInfo is the decoded CSVCMsg_ServerInfo message.
type ServerInfo struct {
	Protocol     int32
	ServerCount  int32
	MaxClients   int32
	MaxClasses   int32
	TickInterval float32
	GameDir      string
	MapName      string
	HostName     string
}

// UnmarshalServerInfo decodes a CSVCMsg_ServerInfo message.
func UnmarshalServerInfo(b []byte) (*ServerInfo, error) {
	var si ServerInfo
	err := walkFields("CSVCMsg_ServerInfo", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			si.Protocol = int32(v)
			return n
		case 2:
			v, n := consumeVarint(b)
			si.ServerCount = int32(v)
			return n
		case 10:
			v, n := consumeVarint(b)
			si.MaxClients = int32(v)
			return n
		case 11:
			v, n := consumeVarint(b)
			si.MaxClasses = int32(v)
			return n
		case 13:
			v, n := protowire.ConsumeFixed32(b)
			si.TickInterval = decodeFloat32(v)
			return n
		case 14:
			v, n := consumeString(b)
			si.GameDir = v
			return n
		case 15:
			v, n := consumeString(b)
			si.MapName = v
			return n
		case 17:
			v, n := consumeString(b)
			si.HostName = v
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &si, err
}

// CreateStringTable is the decoded CSVCMsg_CreateStringTable message. Its
// StringData payload is the bit-packed entry stream the stringtable package
// decodes; everything else here parameterizes that decode.
type CreateStringTable struct {
	Name                 string
	NumEntries           int32
	UserDataFixedSize    bool
	UserDataSize         int32
	UserDataSizeBits     int32
	Flags                int32
	StringData           []byte
	DataCompressed       bool
	UsingVarintBitcounts bool
}

// UnmarshalCreateStringTable decodes a CSVCMsg_CreateStringTable message.
func UnmarshalCreateStringTable(b []byte) (*CreateStringTable, error) {
	var st CreateStringTable
	err := walkFields("CSVCMsg_CreateStringTable", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeString(b)
			st.Name = v
			return n
		case 2:
			v, n := consumeVarint(b)
			st.NumEntries = int32(v)
			return n
		case 3:
			v, n := consumeVarint(b)
			st.UserDataFixedSize = v != 0
			return n
		case 4:
			v, n := consumeVarint(b)
			st.UserDataSize = int32(v)
			return n
		case 5:
			v, n := consumeVarint(b)
			st.UserDataSizeBits = int32(v)
			return n
		case 6:
			v, n := consumeVarint(b)
			st.Flags = int32(v)
			return n
		case 7:
			v, n := consumeBytes(b)
			st.StringData = v
			return n
		case 8:
			v, n := consumeVarint(b)
			st.DataCompressed = v != 0
			return n
		case 9:
			v, n := consumeVarint(b)
			st.UsingVarintBitcounts = v != 0
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &st, err
}

// UpdateStringTable is the decoded CSVCMsg_UpdateStringTable message,
// referencing an already-created table by its creation-order id.
type UpdateStringTable struct {
	TableID           int32
	NumChangedEntries int32
	StringData        []byte
}

// UnmarshalUpdateStringTable decodes a CSVCMsg_UpdateStringTable message.
func UnmarshalUpdateStringTable(b []byte) (*UpdateStringTable, error) {
	var st UpdateStringTable
	err := walkFields("CSVCMsg_UpdateStringTable", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			st.TableID = int32(v)
			return n
		case 2:
			v, n := consumeVarint(b)
			st.NumChangedEntries = int32(v)
			return n
		case 3:
			v, n := consumeBytes(b)
			st.StringData = v
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &st, err
}

// StringTableItem is one (key, data) entry of a snapshot string table.
type StringTableItem struct {
	Str  string
	Data []byte
}

// SnapshotStringTable is one table of a CDemoStringTables frame: a plain
// protobuf snapshot of a whole table's entries, unlike the bit-packed
// incremental CSVCMsg_CreateStringTable/UpdateStringTable stream.
type SnapshotStringTable struct {
	Name  string
	Flags int32
	Items []StringTableItem
}

// DemoStringTables is the decoded CDemoStringTables frame payload.
type DemoStringTables struct {
	Tables []SnapshotStringTable
}

// UnmarshalDemoStringTables decodes a CDemoStringTables frame payload.
func UnmarshalDemoStringTables(b []byte) (*DemoStringTables, error) {
	var m DemoStringTables
	err := walkFields("CDemoStringTables", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			t, err := unmarshalSnapshotStringTable(v)
			if err != nil {
				return -1
			}
			m.Tables = append(m.Tables, t)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &m, err
}

func unmarshalSnapshotStringTable(b []byte) (SnapshotStringTable, error) {
	var t SnapshotStringTable
	err := walkFields("table_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			item, err := unmarshalStringTableItem(v)
			if err != nil {
				return -1
			}
			t.Items = append(t.Items, item)
			return n
		case 3:
			v, n := consumeString(b)
			t.Name = v
			return n
		case 4:
			v, n := consumeVarint(b)
			t.Flags = int32(v)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return t, err
}

func unmarshalStringTableItem(b []byte) (StringTableItem, error) {
	var item StringTableItem
	err := walkFields("items_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeString(b)
			item.Str = v
			return n
		case 2:
			v, n := consumeBytes(b)
			item.Data = v
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return item, err
}

// NetTick is the decoded CNETMsg_Tick message.
type NetTick struct {
	Tick uint32
}

// UnmarshalNetTick decodes a CNETMsg_Tick message.
func UnmarshalNetTick(b []byte) (*NetTick, error) {
	var nt NetTick
	err := walkFields("CNETMsg_Tick", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			nt.Tick = uint32(v)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &nt, err
}

// RankUpdate is one per-player rank change inside a
// CCSUsrMsg_ServerRankUpdate message.
type RankUpdate struct {
	AccountID  int32
	RankOld    int32
	RankNew    int32
	NumWins    int32
	RankChange float32
}

// ServerRankUpdate is the decoded CCSUsrMsg_ServerRankUpdate message.
type ServerRankUpdate struct {
	Updates []RankUpdate
}

// UnmarshalServerRankUpdate decodes a CCSUsrMsg_ServerRankUpdate message.
func UnmarshalServerRankUpdate(b []byte) (*ServerRankUpdate, error) {
	var m ServerRankUpdate
	err := walkFields("CCSUsrMsg_ServerRankUpdate", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			u, err := unmarshalRankUpdate(v)
			if err != nil {
				return -1
			}
			m.Updates = append(m.Updates, u)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &m, err
}

func unmarshalRankUpdate(b []byte) (RankUpdate, error) {
	var u RankUpdate
	err := walkFields("RankUpdate_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			u.AccountID = int32(v)
			return n
		case 2:
			v, n := consumeVarint(b)
			u.RankOld = int32(v)
			return n
		case 3:
			v, n := consumeVarint(b)
			u.RankNew = int32(v)
			return n
		case 4:
			v, n := consumeVarint(b)
			u.NumWins = int32(v)
			return n
		case 5:
			v, n := protowire.ConsumeFixed32(b)
			u.RankChange = decodeFloat32(v)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return u, err
}

// RankReveal is the decoded CCSUsrMsg_ServerRankRevealAll message.
type RankReveal struct {
	SecondsTillShutdown int32
}

// UnmarshalRankReveal decodes a CCSUsrMsg_ServerRankRevealAll message.
func UnmarshalRankReveal(b []byte) (*RankReveal, error) {
	var m RankReveal
	err := walkFields("CCSUsrMsg_ServerRankRevealAll", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			m.SecondsTillShutdown = int32(v)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &m, err
}

// EndOfMatchAllPlayersData is the decoded CS_UM_EndOfMatchAllPlayersData
// message.
type EndOfMatchAllPlayersData struct {
	Players []PlayerAccountInfo
}

// PlayerAccountInfo is one player's end-of-match account summary.
type PlayerAccountInfo struct {
	UserID int32
	XUID   uint64
	Name   string
	Team   int32
	Color  int32
}

// UnmarshalEndOfMatchAllPlayersData decodes a
// CS_UM_EndOfMatchAllPlayersData message.
func UnmarshalEndOfMatchAllPlayersData(b []byte) (*EndOfMatchAllPlayersData, error) {
	var m EndOfMatchAllPlayersData
	err := walkFields("CCSUsrMsg_EndOfMatchAllPlayersData", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeBytes(b)
			if n < 0 {
				return n
			}
			p, err := unmarshalPlayerAccountInfo(v)
			if err != nil {
				return -1
			}
			m.Players = append(m.Players, p)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return &m, err
}

func unmarshalPlayerAccountInfo(b []byte) (PlayerAccountInfo, error) {
	var p PlayerAccountInfo
	err := walkFields("PlayerAccountInfo_t", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			v, n := consumeVarint(b)
			p.UserID = int32(v)
			return n
		case 2:
			v, n := consumeVarint(b)
			p.XUID = v
			return n
		case 3:
			v, n := consumeString(b)
			p.Name = v
			return n
		case 4:
			v, n := consumeVarint(b)
			p.Team = int32(v)
			return n
		case 5:
			v, n := consumeVarint(b)
			p.Color = int32(v)
			return n
		default:
			return consumeByType(typ, b)
		}
	})
	return p, err
}

func decodeFloat32(bits uint32) float32 {
	return math.Float32frombits(bits)
}
